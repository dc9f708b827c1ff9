package redis

import (
	"context"
	"errors"
	"testing"

	"lead-origination/internal/domain/kv"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newStore(t *testing.T) (*KVStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewKVStore(rdb, ""), mr
}

func TestKVStore_RoundTrip(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, kv.KeyLeads); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, kv.KeyLeads, []byte(`[]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, _ := mr.Get(DefaultPrefix + kv.KeyLeads); got != "[]" {
		t.Fatalf("raw value = %q", got)
	}
	b, err := s.Get(ctx, kv.KeyLeads)
	if err != nil || string(b) != "[]" {
		t.Fatalf("Get = %q, %v", b, err)
	}
	if err := s.Delete(ctx, kv.KeyLeads); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if mr.Exists(DefaultPrefix + kv.KeyLeads) {
		t.Fatal("key still present after delete")
	}
}

func TestKVStore_ServerDown(t *testing.T) {
	s, mr := newStore(t)
	mr.Close()

	_, err := s.Get(context.Background(), kv.KeyUser)
	if err == nil || errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("want transport error, got %v", err)
	}
}
