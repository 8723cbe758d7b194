package cache_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paxxchal/alx-backend-storage/internal/cache"
)

func newRedis(t *testing.T) (*cache.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := cache.DialRedis(context.Background(), mr.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r, mr
}

func TestRedisStoreOperations(t *testing.T) {
	ctx := context.Background()
	r, mr := newRedis(t)

	require.NoError(t, r.Set(ctx, "k", []byte("v")))
	got, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	_, err = r.Get(ctx, "missing")
	assert.ErrorIs(t, err, cache.ErrNotFound)

	n, err := r.Incr(ctx, "count")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = r.RPush(ctx, "l", "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	items, err := r.LRange(ctx, "l", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, items)

	require.NoError(t, r.SetEX(ctx, "ttl", 10*time.Second, []byte("x")))
	mr.FastForward(10 * time.Second)
	_, err = r.Get(ctx, "ttl")
	assert.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, r.Delete(ctx, "k"))
	require.NoError(t, r.FlushDB(ctx))
	assert.Empty(t, mr.Keys())
}

func TestRedisStoreReplyErrors(t *testing.T) {
	ctx := context.Background()
	r, _ := newRedis(t)

	require.NoError(t, r.Set(ctx, "word", []byte("abc")))
	_, err := r.Incr(ctx, "word")
	assert.ErrorIs(t, err, cache.ErrNotInteger)

	_, err = r.RPush(ctx, "word", "x")
	assert.ErrorIs(t, err, cache.ErrWrongType)
}

func TestRedisStoreUnavailable(t *testing.T) {
	ctx := context.Background()

	// Reserve a port and release it so nothing is listening there.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	r := cache.NewRedis(redis.NewClient(&redis.Options{Addr: addr, MaxRetries: -1}))
	defer r.Close()

	err = r.Set(ctx, "k", []byte("v"))
	require.Error(t, err)
	assert.True(t, cache.IsUnavailable(err))

	_, err = r.Get(ctx, "k")
	assert.True(t, cache.IsUnavailable(err))
	assert.False(t, cache.IsMiss(err))

	_, err = cache.DialRedis(ctx, addr, 0)
	assert.True(t, cache.IsUnavailable(err))
}
