package kvmock

import (
	"context"
	"errors"
	"testing"

	"lead-origination/internal/domain/kv"
)

func TestStore_Defaults(t *testing.T) {
	m := &Store{}
	ctx := context.Background()
	if _, err := m.Get(ctx, "k"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("Get default err = %v", err)
	}
	if err := m.Set(ctx, "k", nil); err != nil {
		t.Fatalf("Set default err = %v", err)
	}
	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete default err = %v", err)
	}
}

func TestStore_DelegatesToFns(t *testing.T) {
	boom := errors.New("boom")
	var gotKey string
	m := &Store{
		SetFn: func(_ context.Context, key string, _ []byte) error {
			gotKey = key
			return boom
		},
	}
	if err := m.Set(context.Background(), kv.KeyLeads, []byte("[]")); !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	if gotKey != kv.KeyLeads {
		t.Fatalf("SetFn key = %q", gotKey)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	in := []byte("v1")
	_ = m.Set(ctx, "k", in)
	in[0] = 'X' // caller mutation must not leak in
	_ = m.Set(ctx, "k", []byte("v2"))

	got, err := m.Get(ctx, "k")
	if err != nil || string(got) != "v2" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if m.Writes("k") != 2 {
		t.Fatalf("Writes = %d, want 2", m.Writes("k"))
	}
	_ = m.Delete(ctx, "k")
	if _, err := m.Get(ctx, "k"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("after delete err = %v", err)
	}
}
