package cache

import (
	"context"

	"github.com/jmgilman/go/errors"
)

const (
	BackendBolt  = "bolt"
	BackendRedis = "redis"
)

// ConnectOptions selects and addresses a KV backend.
type ConnectOptions struct {
	Backend   string
	Socket    string
	RedisAddr string
	RedisDB   int
}

// Connect returns a KV for the configured backend after checking that it
// answers. The bolt backend is reached through the store daemon's socket.
func Connect(ctx context.Context, opts ConnectOptions) (KV, error) {
	switch opts.Backend {
	case BackendBolt, "":
		c := NewClient(opts.Socket)
		if err := c.Ping(ctx); err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		r, err := DialRedis(ctx, opts.RedisAddr, opts.RedisDB)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, errors.Newf(errors.CodeInvalidConfig, "unknown store backend %q", opts.Backend)
	}
}
