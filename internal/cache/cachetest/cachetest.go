// Package cachetest provides store fixtures for tests.
package cachetest

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/paxxchal/alx-backend-storage/internal/cache"
)

// NewStore opens a bolt store in a temp dir, driven by a fake clock.
func NewStore(t testing.TB) (*cache.Store, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	s, err := cache.Open(filepath.Join(t.TempDir(), "cache.bbolt"), cache.Options{Clock: clock})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, clock
}

// ServeSocket serves kv on a fresh unix socket and returns its path.
func ServeSocket(t testing.TB, kv cache.KV) string {
	t.Helper()
	// Socket paths are length limited, so stay out of the long test temp dir.
	dir, err := os.MkdirTemp("", "kv")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	sock := filepath.Join(dir, "s.sock")
	l, err := net.Listen("unix", sock)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = cache.Serve(ctx, l, kv)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return sock
}
