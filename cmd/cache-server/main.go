package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/paxxchal/alx-backend-storage/internal/cache"
	"github.com/paxxchal/alx-backend-storage/internal/config"
	"github.com/paxxchal/alx-backend-storage/internal/logger"
)

func main() {
	if err := logger.InitFromEnv(); err != nil {
		panic(err)
	}
	defer logger.Close()

	cfgPath := ""
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Errorf("Failed to load config: %v", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Errorf("Invalid configuration: %v", err)
		os.Exit(1)
	}
	sweep, _ := cfg.GetSweepInterval()

	sock := cfg.Store.Socket
	// Ensure socket dir exists and remove stale socket
	_ = os.MkdirAll(filepath.Dir(sock), 0o755)
	_ = os.MkdirAll(filepath.Dir(cfg.Store.DBPath), 0o755)
	_ = os.Remove(sock)

	l, err := net.Listen("unix", sock)
	if err != nil {
		logger.Errorf("Failed to listen on %s: %v", sock, err)
		os.Exit(1)
	}
	_ = os.Chmod(sock, 0o600)

	store, err := cache.Open(cfg.Store.DBPath, cache.Options{Bucket: "kv"})
	if err != nil {
		logger.Errorf("Failed to open store %s: %v", cfg.Store.DBPath, err)
		_ = l.Close()
		os.Exit(1)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweepLoop(ctx, store, sweep)

	logger.Infof("Store daemon listening on %s (db %s)", sock, cfg.Store.DBPath)
	if err := cache.Serve(ctx, l, store); err != nil {
		logger.Errorf("serve error: %v", err)
	}
	logger.Infof("Store daemon stopped")
}

// sweepLoop drops expired entries from disk every interval. Reads already
// treat them as absent; this only reclaims space.
func sweepLoop(ctx context.Context, store *cache.Store, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			n, err := store.Sweep(ctx)
			if err != nil {
				logger.Warnf("sweep failed: %v", err)
				continue
			}
			if n > 0 {
				logger.Debugf("swept %d expired entries", n)
			}
		case <-ctx.Done():
			return
		}
	}
}
