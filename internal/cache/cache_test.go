package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paxxchal/alx-backend-storage/internal/cache"
	"github.com/paxxchal/alx-backend-storage/internal/cache/cachetest"
)

func TestStoreSetAndGet(t *testing.T) {
	ctx := context.Background()
	s, _ := cachetest.NewStore(t)

	require.NoError(t, s.Set(ctx, "k", []byte("v1")))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, s.Set(ctx, "k", []byte("v2")))
	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestStoreGetMissing(t *testing.T) {
	s, _ := cachetest.NewStore(t)

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, cache.ErrNotFound)
	assert.True(t, cache.IsMiss(err))
}

func TestStoreSetEXExpires(t *testing.T) {
	ctx := context.Background()
	s, clock := cachetest.NewStore(t)

	require.NoError(t, s.SetEX(ctx, "k", 10*time.Second, []byte("fresh")))

	clock.Advance(9 * time.Second)
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("fresh"), got)

	clock.Advance(time.Second)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrExpired)
	assert.True(t, cache.IsMiss(err))
}

func TestStoreSetClearsExpiry(t *testing.T) {
	ctx := context.Background()
	s, clock := cachetest.NewStore(t)

	require.NoError(t, s.SetEX(ctx, "k", time.Second, []byte("a")))
	require.NoError(t, s.Set(ctx, "k", []byte("b")))
	clock.Advance(time.Hour)

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), got)
}

func TestStoreSetEXRequiresTTL(t *testing.T) {
	s, _ := cachetest.NewStore(t)

	err := s.SetEX(context.Background(), "k", 0, []byte("v"))
	assert.Error(t, err)
}

func TestStoreIncr(t *testing.T) {
	ctx := context.Background()
	s, _ := cachetest.NewStore(t)

	for want := int64(1); want <= 3; want++ {
		n, err := s.Incr(ctx, "counter")
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	got, err := s.Get(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), got)
}

func TestStoreIncrKeepsExpiry(t *testing.T) {
	ctx := context.Background()
	s, clock := cachetest.NewStore(t)

	require.NoError(t, s.SetEX(ctx, "n", 5*time.Second, []byte("41")))
	n, err := s.Incr(ctx, "n")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	clock.Advance(5 * time.Second)
	_, err = s.Get(ctx, "n")
	assert.ErrorIs(t, err, cache.ErrExpired)

	// An expired counter starts over.
	n, err = s.Incr(ctx, "n")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestStoreIncrNotInteger(t *testing.T) {
	ctx := context.Background()
	s, _ := cachetest.NewStore(t)

	require.NoError(t, s.Set(ctx, "k", []byte("abc")))
	_, err := s.Incr(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrNotInteger)
}

func TestStoreLists(t *testing.T) {
	ctx := context.Background()
	s, _ := cachetest.NewStore(t)

	n, err := s.RPush(ctx, "l", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	n, err = s.RPush(ctx, "l", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	tests := []struct {
		name        string
		start, stop int64
		want        []string
	}{
		{name: "all", start: 0, stop: -1, want: []string{"a", "b", "c"}},
		{name: "prefix", start: 0, stop: 1, want: []string{"a", "b"}},
		{name: "negative start", start: -2, stop: -1, want: []string{"b", "c"}},
		{name: "stop past end", start: 1, stop: 100, want: []string{"b", "c"}},
		{name: "start past end", start: 5, stop: 10, want: []string{}},
		{name: "start after stop", start: 2, stop: 1, want: []string{}},
		{name: "start before beginning", start: -100, stop: 0, want: []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.LRange(ctx, "l", tt.start, tt.stop)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStoreLRangeMissing(t *testing.T) {
	s, _ := cachetest.NewStore(t)

	got, err := s.LRange(context.Background(), "none", 0, -1)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestStoreWrongType(t *testing.T) {
	ctx := context.Background()
	s, _ := cachetest.NewStore(t)

	_, err := s.RPush(ctx, "l", "x")
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "str", []byte("x")))

	_, err = s.Get(ctx, "l")
	assert.ErrorIs(t, err, cache.ErrWrongType)
	_, err = s.Incr(ctx, "l")
	assert.ErrorIs(t, err, cache.ErrWrongType)
	_, err = s.RPush(ctx, "str", "y")
	assert.ErrorIs(t, err, cache.ErrWrongType)
	_, err = s.LRange(ctx, "str", 0, -1)
	assert.ErrorIs(t, err, cache.ErrWrongType)
}

func TestStoreDeleteAndFlush(t *testing.T) {
	ctx := context.Background()
	s, _ := cachetest.NewStore(t)

	require.NoError(t, s.Set(ctx, "a", []byte("1")))
	require.NoError(t, s.Set(ctx, "b", []byte("2")))

	require.NoError(t, s.Delete(ctx, "a"))
	_, err := s.Get(ctx, "a")
	assert.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, s.FlushDB(ctx))
	_, err = s.Get(ctx, "b")
	assert.ErrorIs(t, err, cache.ErrNotFound)

	// The store is usable after a flush.
	require.NoError(t, s.Set(ctx, "c", []byte("3")))
}

func TestStoreSweep(t *testing.T) {
	ctx := context.Background()
	s, clock := cachetest.NewStore(t)

	require.NoError(t, s.SetEX(ctx, "short", time.Second, []byte("x")))
	require.NoError(t, s.SetEX(ctx, "long", time.Hour, []byte("y")))
	require.NoError(t, s.Set(ctx, "forever", []byte("z")))

	clock.Advance(time.Minute)
	n, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.Get(ctx, "short")
	assert.ErrorIs(t, err, cache.ErrNotFound)
	_, err = s.Get(ctx, "long")
	assert.NoError(t, err)
}
