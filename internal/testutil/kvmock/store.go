package kvmock

import (
	"context"
	"sync"

	"lead-origination/internal/domain/kv"
)

// Store is a function-backed mock that satisfies kv.Store.
type Store struct {
	GetFn    func(ctx context.Context, key string) ([]byte, error)
	SetFn    func(ctx context.Context, key string, value []byte) error
	DeleteFn func(ctx context.Context, key string) error
}

func (m *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, key)
	}
	return nil, kv.ErrNotFound
}

func (m *Store) Set(ctx context.Context, key string, value []byte) error {
	if m.SetFn != nil {
		return m.SetFn(ctx, key, value)
	}
	return nil
}

func (m *Store) Delete(ctx context.Context, key string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, key)
	}
	return nil
}

// Memory is an in-process kv.Store that counts writes per key.
type Memory struct {
	mu     sync.Mutex
	data   map[string][]byte
	writes map[string]int
}

func NewMemory() *Memory {
	return &Memory{data: map[string][]byte{}, writes: map[string]int{}}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	m.writes[key]++
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Writes reports how many times key was written.
func (m *Memory) Writes(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[key]
}

var (
	_ kv.Store = (*Store)(nil)
	_ kv.Store = (*Memory)(nil)
)
