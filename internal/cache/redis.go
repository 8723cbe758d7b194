package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements KV on a Redis server. Expiry uses native Redis TTLs,
// so expired keys simply read as ErrNotFound.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedis wraps an existing client. The RedisStore owns it from then on.
func NewRedis(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// DialRedis connects to addr and verifies the connection with PING.
func DialRedis(ctx context.Context, addr string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, unavailable(err, "ping")
	}
	return NewRedis(rdb), nil
}

// translate maps redis replies onto the package's sentinels. Anything that is
// not a server reply is a transport failure.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	var rerr redis.Error
	if errors.As(err, &rerr) {
		msg := rerr.Error()
		switch {
		case strings.HasPrefix(msg, "WRONGTYPE"):
			return ErrWrongType
		case strings.Contains(msg, "not an integer"):
			return ErrNotInteger
		}
		return err
	}
	return unavailable(err, op)
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, translate(err, OpGet)
	}
	return v, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return translate(r.rdb.Set(ctx, key, value, 0).Err(), OpSet)
}

func (r *RedisStore) SetEX(ctx context.Context, key string, ttl time.Duration, value []byte) error {
	return translate(r.rdb.SetEx(ctx, key, value, ttl).Err(), OpSetEX)
}

func (r *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	n, err := r.rdb.Incr(ctx, key).Result()
	return n, translate(err, OpIncr)
}

func (r *RedisStore) RPush(ctx context.Context, key string, values ...string) (int64, error) {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	n, err := r.rdb.RPush(ctx, key, args...).Result()
	return n, translate(err, OpRPush)
}

func (r *RedisStore) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	items, err := r.rdb.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, translate(err, OpLRange)
	}
	return items, nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return translate(r.rdb.Del(ctx, key).Err(), OpDelete)
}

func (r *RedisStore) FlushDB(ctx context.Context) error {
	return translate(r.rdb.FlushDB(ctx).Err(), OpFlushDB)
}

func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
