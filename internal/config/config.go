package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverRedis  = "redis"
)

type Config struct {
	AppPort   string
	LogLevel  string
	LogFormat string

	StorageDriver string
	SQLitePath    string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisPass string
	RedisDB   int

	IdempTTLSecs int

	JWTSecret    string
	SessionTTL   time.Duration
	WorkspaceTTL time.Duration

	OTPDelay    time.Duration
	UploadDelay time.Duration
	StatusDelay time.Duration

	StrictStatusTransitions bool
	PaymentLinkBase         string
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("STORAGE_DRIVER", DriverSQLite)
	v.SetDefault("SQLITE_PATH", "leads.db")

	v.SetDefault("MYSQL_HOST", "mysql")
	v.SetDefault("MYSQL_PORT", "3306")
	v.SetDefault("MYSQL_DB", "leads")
	v.SetDefault("MYSQL_USER", "leads")
	v.SetDefault("MYSQL_PASS", "leads")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("IDEMPOTENCY_TTL_SECONDS", 300)

	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("WORKSPACE_TTL", "30m")

	v.SetDefault("OTP_DELAY", "1s")
	v.SetDefault("UPLOAD_DELAY", "1500ms")
	v.SetDefault("STATUS_DELAY", "500ms")

	v.SetDefault("STRICT_STATUS_TRANSITIONS", false)
	v.SetDefault("PAYMENT_LINK_BASE", "https://pay.lendingdesk.in/p/")
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	defaults(v)

	return &Config{
		AppPort:   v.GetString("APP_PORT"),
		LogLevel:  strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat: strings.ToLower(v.GetString("LOG_FORMAT")),

		StorageDriver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		SQLitePath:    v.GetString("SQLITE_PATH"),

		MySQLHost: v.GetString("MYSQL_HOST"),
		MySQLPort: v.GetString("MYSQL_PORT"),
		MySQLDB:   v.GetString("MYSQL_DB"),
		MySQLUser: v.GetString("MYSQL_USER"),
		MySQLPass: v.GetString("MYSQL_PASS"),

		RedisAddr: v.GetString("REDIS_ADDR"),
		RedisPass: v.GetString("REDIS_PASSWORD"),
		RedisDB:   v.GetInt("REDIS_DB"),

		IdempTTLSecs: v.GetInt("IDEMPOTENCY_TTL_SECONDS"),

		JWTSecret:    v.GetString("JWT_SECRET"),
		SessionTTL:   v.GetDuration("SESSION_TTL"),
		WorkspaceTTL: v.GetDuration("WORKSPACE_TTL"),

		OTPDelay:    v.GetDuration("OTP_DELAY"),
		UploadDelay: v.GetDuration("UPLOAD_DELAY"),
		StatusDelay: v.GetDuration("STATUS_DELAY"),

		StrictStatusTransitions: v.GetBool("STRICT_STATUS_TRANSITIONS"),
		PaymentLinkBase:         v.GetString("PAYMENT_LINK_BASE"),
	}
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.StorageDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	case DriverMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case DriverRedis:
		if c.RedisAddr == "" {
			return errors.New("STORAGE_DRIVER=redis needs REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("missing JWT_SECRET")
	}
	if c.SessionTTL <= 0 || c.WorkspaceTTL <= 0 {
		return errors.New("SESSION_TTL and WORKSPACE_TTL must be positive")
	}
	if c.OTPDelay < 0 || c.UploadDelay < 0 || c.StatusDelay < 0 {
		return errors.New("simulated delays must not be negative")
	}
	return nil
}

// RedisEnabled reports whether a redis server is configured for idempotency.
func (c *Config) RedisEnabled() bool { return c.RedisAddr != "" }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN returns the connection string for the configured SQL driver.
func (c *Config) DSN() string {
	if c.StorageDriver == DriverMySQL {
		return c.MySQLDSN()
	}
	return c.SQLitePath
}
