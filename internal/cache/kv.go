package cache

import (
	"context"
	"time"
)

// KV defines the key-value store contract the cache layers are built on.
// Every method is a single atomic operation at the store level.
// Implementations must be safe for concurrent use by multiple goroutines.
type KV interface {
	Set(ctx context.Context, key string, value []byte) error
	SetEX(ctx context.Context, key string, ttl time.Duration, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Incr(ctx context.Context, key string) (int64, error)
	RPush(ctx context.Context, key string, values ...string) (int64, error)
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	Delete(ctx context.Context, key string) error
	FlushDB(ctx context.Context) error
	Close() error
}
