package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func mockedMySQL(t *testing.T) (sqlmock.Sqlmock, gorm.Dialector) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return mock, mysql.New(mysql.Config{Conn: conn, SkipInitializeWithVersion: true})
}

func TestOpenGormWithDialector_Ping(t *testing.T) {
	cases := []struct {
		name    string
		pingErr error
		wantErr bool
	}{
		{name: "reachable"},
		{name: "ping refused", pingErr: errors.New("connection refused"), wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock, dial := mockedMySQL(t)
			mock.ExpectPing().WillReturnError(tc.pingErr)

			gdb, err := OpenGormWithDialector(dial)
			if tc.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if !tc.wantErr && gdb == nil {
				t.Fatal("nil *gorm.DB without error")
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestOpenGormWithDialector_PoolAndProbe(t *testing.T) {
	mock, dial := mockedMySQL(t)
	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("gone away"))

	gdb, err := OpenGormWithDialector(dial)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, _ := gdb.DB()
	if got := sqlDB.Stats().MaxOpenConnections; got != 30 {
		t.Fatalf("MaxOpenConnections = %d, want 30", got)
	}

	// the /health storage probe is sqlDB.PingContext
	if err := sqlDB.PingContext(context.Background()); err == nil {
		t.Fatal("probe should surface the failed ping")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOpenGorm_SQLiteSingleWriter(t *testing.T) {
	gdb, err := OpenGorm("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared", nil)
	if err != nil {
		t.Fatalf("OpenGorm sqlite: %v", err)
	}
	sqlDB, _ := gdb.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	if got := sqlDB.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("MaxOpenConnections = %d, want 1", got)
	}
}

func TestOpenGorm_UnknownDriver(t *testing.T) {
	for _, driver := range []string{"postgres", "redis", ""} {
		if _, err := OpenGorm(driver, "dsn", nil); err == nil {
			t.Fatalf("OpenGorm(%q): expected error", driver)
		}
	}
}
