package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"lead-origination/internal/domain/kv"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openKVStore(t *testing.T) *KVStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	s := NewKVStore(db)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func TestKVStore_GetMissing(t *testing.T) {
	s := openKVStore(t)
	_, err := s.Get(context.Background(), kv.KeyLeads)
	if !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("want kv.ErrNotFound, got %v", err)
	}
}

func TestKVStore_SetGetOverwrite(t *testing.T) {
	s := openKVStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, kv.KeyLeads, []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, kv.KeyLeads, []byte(`[{"id":"a"},{"id":"b"}]`)); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	raw, err := s.Get(ctx, kv.KeyLeads)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	var got []map[string]string
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 || got[1]["id"] != "b" {
		t.Fatalf("unexpected value: %s", raw)
	}

	var n int64
	s.db.Model(&kvEntry{}).Count(&n)
	if n != 1 {
		t.Fatalf("rows = %d, want 1 (upsert)", n)
	}
}

func TestKVStore_Delete(t *testing.T) {
	s := openKVStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, kv.KeyUser, []byte(`{"email":"x"}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Delete(ctx, kv.KeyUser); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, kv.KeyUser); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("after delete want ErrNotFound, got %v", err)
	}
	// deleting a missing key is not an error
	if err := s.Delete(ctx, kv.KeyUser); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}
