package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httpadp "lead-origination/internal/adapter/http"
	authmw "lead-origination/internal/adapter/middleware"
	mysqlrepo "lead-origination/internal/adapter/repository/mysql"
	redisrepo "lead-origination/internal/adapter/repository/redis"
	"lead-origination/internal/config"
	"lead-origination/internal/domain/kv"
	domain "lead-origination/internal/domain/lead"
	"lead-origination/internal/infrastructure/cache"
	"lead-origination/internal/infrastructure/db"
	"lead-origination/internal/logger"
	"lead-origination/internal/mockverify"
	"lead-origination/internal/scheduler"
	authuc "lead-origination/internal/usecase/auth"
	leaduc "lead-origination/internal/usecase/lead"
	"lead-origination/internal/usecase/wizard"
)

// retryWithBackoff retries operation with doubling delays.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay
	for i := 0; i < maxRetries; i++ {
		if err = operation(); err == nil {
			return nil
		}
		if i < maxRetries-1 {
			log.Warn(operationName+" failed, retrying",
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Duration("next_retry_in", delay))
			time.Sleep(delay)
			delay *= 2
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// redis serves idempotency, and storage when STORAGE_DRIVER=redis
	var rdb *goredis.Client
	if cfg.RedisEnabled() {
		err := retryWithBackoff(func() (err error) {
			rdb, err = cache.OpenRedis(ctx, cache.RedisOptions{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPass,
				DB:       cfg.RedisDB,
			})
			return err
		}, 5, time.Second, log, "redis connection")
		if err != nil {
			log.Fatal("redis unavailable", zap.Error(err))
		}
		defer func() { _ = rdb.Close() }()
		log.Info("redis connected", zap.String("addr", cfg.RedisAddr))
	}

	store, storeProbe, closeStore, err := openStore(ctx, cfg, rdb, log)
	if err != nil {
		log.Fatal("storage unavailable", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	defer closeStore()

	probes := map[string]httpadp.Probe{"storage": storeProbe}
	if rdb != nil {
		probes["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	opts := []leaduc.Option{
		leaduc.WithLogger(log.Named("leads")),
		leaduc.WithStatusDelay(cfg.StatusDelay),
		leaduc.WithPaymentLinkBase(cfg.PaymentLinkBase),
	}
	if cfg.StrictStatusTransitions {
		opts = append(opts, leaduc.WithPolicy(domain.PipelineTransitions))
	}
	leads := leaduc.NewUsecase(store, opts...)
	if err := leads.Load(ctx); err != nil {
		log.Fatal("load leads failed", zap.Error(err))
	}

	sched := scheduler.New(log.Named("scheduler"))
	defer sched.Close()

	svc := mockverify.New()
	wz := wizard.NewSequencer(leads, wizard.Services{PAN: svc, OTP: svc, Documents: svc}, sched, wizard.Config{
		OTPDelay:     cfg.OTPDelay,
		UploadDelay:  cfg.UploadDelay,
		WorkspaceTTL: cfg.WorkspaceTTL,
	}, log.Named("wizard"))
	auth := authuc.NewUsecase(store, svc, svc, log.Named("auth"))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.RequestID(), logger.RequestLogger(log), middleware.Recover())

	httpadp.Register(e, httpadp.Deps{
		Leads:    leads,
		Wizard:   wz,
		Auth:     auth,
		Tokens:   authmw.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL),
		Redis:    rdb,
		IdempTTL: time.Duration(cfg.IdempTTLSecs) * time.Second,
		Probes:   probes,
		Log:      log.Named("idempotency"),
	})

	addr := ":" + cfg.AppPort
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("storage", cfg.StorageDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openStore builds the kv.Store for the configured driver, a probe for
// /health, and its close func.
func openStore(ctx context.Context, cfg *config.Config, rdb *goredis.Client, log *zap.Logger) (kv.Store, httpadp.Probe, func(), error) {
	if cfg.StorageDriver == config.DriverRedis {
		if rdb == nil {
			return nil, nil, nil, errors.New("redis storage needs REDIS_ADDR")
		}
		probe := func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		return redisrepo.NewKVStore(rdb, redisrepo.DefaultPrefix), probe, func() {}, nil
	}

	gdb, err := db.OpenGorm(cfg.StorageDriver, cfg.DSN(), log.Named("gorm"))
	if err != nil {
		return nil, nil, nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, nil, nil, err
	}
	closeFn := func() { _ = sqlDB.Close() }

	repo := mysqlrepo.NewKVStore(gdb)
	if err := repo.Migrate(ctx); err != nil {
		closeFn()
		return nil, nil, nil, fmt.Errorf("migrate kv_entries: %w", err)
	}
	return repo, sqlDB.PingContext, closeFn, nil
}
