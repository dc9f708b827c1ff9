package kv

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("kv: key not found")

// Logical slots persisted by the service.
const (
	KeyUser  = "user"
	KeyLeads = "leads"
)

// Store is a load-all / save-all key-value slot store. Values are opaque
// JSON documents; Set overwrites the whole value.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
