package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// RedisOptions is the subset of redis.Options the lead desk configures.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// OpenRedis dials addr and pings it once, bounded by ctx and pingTimeout.
// The client is closed again when the ping fails.
func OpenRedis(ctx context.Context, o RedisOptions) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{
		Addr:     o.Addr,
		Password: o.Password,
		DB:       o.DB,
		PoolSize: o.PoolSize,
	})
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := r.Ping(pingCtx).Err(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("ping redis %s: %w", o.Addr, err)
	}
	return r, nil
}
