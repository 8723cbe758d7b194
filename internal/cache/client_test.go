package cache_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paxxchal/alx-backend-storage/internal/cache"
	"github.com/paxxchal/alx-backend-storage/internal/cache/cachetest"
)

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, clock := cachetest.NewStore(t)
	c := cache.NewClient(cachetest.ServeSocket(t, s))

	require.NoError(t, c.Ping(ctx))

	require.NoError(t, c.Set(ctx, "k", []byte("hello")))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	n, err := c.Incr(ctx, "n")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = c.RPush(ctx, "l", "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	items, err := c.LRange(ctx, "l", 1, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, items)

	require.NoError(t, c.SetEX(ctx, "ttl", 2*time.Second, []byte("soon gone")))
	clock.Advance(2 * time.Second)
	_, err = c.Get(ctx, "ttl")
	assert.ErrorIs(t, err, cache.ErrExpired)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, c.FlushDB(ctx))
	items, err = c.LRange(ctx, "l", 0, -1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestClientEmptyValueIsHit(t *testing.T) {
	ctx := context.Background()
	s, _ := cachetest.NewStore(t)
	c := cache.NewClient(cachetest.ServeSocket(t, s))

	require.NoError(t, c.Set(ctx, "empty", []byte{}))
	got, err := c.Get(ctx, "empty")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestClientServerErrors(t *testing.T) {
	ctx := context.Background()
	s, _ := cachetest.NewStore(t)
	c := cache.NewClient(cachetest.ServeSocket(t, s))

	require.NoError(t, c.Set(ctx, "word", []byte("abc")))
	_, err := c.Incr(ctx, "word")
	assert.ErrorIs(t, err, cache.ErrNotInteger)

	_, err = c.LRange(ctx, "word", 0, -1)
	assert.ErrorIs(t, err, cache.ErrWrongType)
	assert.False(t, cache.IsUnavailable(err))
}

func TestClientUnavailable(t *testing.T) {
	c := cache.NewClient(filepath.Join(t.TempDir(), "missing.sock"))

	err := c.Set(context.Background(), "k", []byte("v"))
	require.Error(t, err)
	assert.True(t, cache.IsUnavailable(err))

	_, err = c.Get(context.Background(), "k")
	assert.True(t, cache.IsUnavailable(err))
	assert.False(t, cache.IsMiss(err))
}

func TestConnect(t *testing.T) {
	ctx := context.Background()
	s, _ := cachetest.NewStore(t)
	sock := cachetest.ServeSocket(t, s)

	kv, err := cache.Connect(ctx, cache.ConnectOptions{Backend: cache.BackendBolt, Socket: sock})
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "k", []byte("v")))

	_, err = cache.Connect(ctx, cache.ConnectOptions{Backend: cache.BackendBolt, Socket: sock + ".gone"})
	assert.True(t, cache.IsUnavailable(err))

	_, err = cache.Connect(ctx, cache.ConnectOptions{Backend: "memcached"})
	assert.Error(t, err)
	assert.False(t, cache.IsUnavailable(err))
}
