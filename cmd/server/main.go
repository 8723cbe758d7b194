package main

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/paxxchal/alx-backend-storage/internal/cache"
	"github.com/paxxchal/alx-backend-storage/internal/config"
	"github.com/paxxchal/alx-backend-storage/internal/logger"
	"github.com/paxxchal/alx-backend-storage/internal/store"
	tools "github.com/paxxchal/alx-backend-storage/internal/tools"
	web "github.com/paxxchal/alx-backend-storage/internal/web"
)

const daemonBinary = "alx-storage-cache"

func main() {
	if err := logger.InitFromEnv(); err != nil {
		panic(err)
	}
	defer logger.Close()

	logger.Infof("Starting storage MCP server")

	cfgPath := ""
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Errorf("Failed to load config: %v", err)
		panic(err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Errorf("Invalid configuration: %v", err)
		panic(err)
	}
	ttl, _ := cfg.GetContentTTL()

	ctx := context.Background()
	kv, err := connectStore(ctx, cfg)
	if err != nil {
		logger.Errorf("Failed to connect to store: %v", err)
		panic(err)
	}
	defer kv.Close()
	logger.Infof("Connected to %s store", cfg.Store.Backend)

	c, err := store.NewInstrumented(ctx, kv)
	if err != nil {
		logger.Errorf("Failed to initialize cache: %v", err)
		panic(err)
	}
	contents := web.NewContentCache(kv, web.NewFetcher().Get, web.WithTTL(ttl))
	logger.Infof("Initialized cache and content cache (ttl %s)", ttl)

	s := server.NewMCPServer(
		"Storage MCP",
		"0.1.0",
		server.WithRecovery(),
		server.WithToolCapabilities(false),
	)

	toolFetch := mcp.NewTool("web-fetch",
		mcp.WithDescription(multiline(
			"Fetches content from a specified URL through a short-lived cache",
			"\nFunctionality:",
			"- Counts every request for the URL, cached or not",
			"- Serves the cached content while it is fresh, otherwise fetches it again",
			"- Returns the title, description, links and text of the page",
			"\nUsage notes:",
			"- The URL must be a fully-formed valid URL starting with http:// or https://",
			"- This tool is read-only and does not modify any files",
		)),
		mcp.WithString("url", mcp.Required(), mcp.Description("The URL to fetch content from")),
	)
	s.AddTool(toolFetch, tools.WebFetchHandler(contents))

	toolStore := mcp.NewTool("cache-store",
		mcp.WithDescription("Stores a value under a new random key and returns the key. Every call is counted and recorded."),
		mcp.WithString("value", mcp.Required(), mcp.Description("The value to store")),
		mcp.WithString("kind", mcp.Description("One of text, bytes, int, float (default text)")),
	)
	s.AddTool(toolStore, tools.CacheStoreHandler(c))

	toolRetrieve := mcp.NewTool("cache-retrieve",
		mcp.WithDescription("Reads the value stored under a key, decoded as the requested kind."),
		mcp.WithString("key", mcp.Required(), mcp.Description("The key returned by cache-store")),
		mcp.WithString("as", mcp.Description("One of text, bytes, int, float (default text)")),
	)
	s.AddTool(toolRetrieve, tools.CacheRetrieveHandler(c))

	toolReplay := mcp.NewTool("cache-replay",
		mcp.WithDescription("Prints the recorded calls of an instrumented operation."),
		mcp.WithString("operation", mcp.Description("Operation name (default "+store.StoreOp+")")),
	)
	s.AddTool(toolReplay, tools.CacheReplayHandler(c))
	logger.Infof("Registered web-fetch, cache-store, cache-retrieve and cache-replay tools")

	logger.Infof("Starting MCP server on stdio")
	if err := server.ServeStdio(s); err != nil {
		logger.Errorf("server error: %v", err)
	}
}

// multiline joins lines with newlines for tool descriptions.
func multiline(lines ...string) string { return strings.Join(lines, "\n") }

// connectStore connects to the configured backend. For bolt, the store
// daemon is started if it is not answering yet.
func connectStore(ctx context.Context, cfg *config.Config) (cache.KV, error) {
	opts := cfg.ConnectOptions()
	kv, err := cache.Connect(ctx, opts)
	if err == nil || opts.Backend != cache.BackendBolt {
		return kv, err
	}

	logger.Warnf("Store daemon not reachable at %s: %v, attempting to start it", opts.Socket, err)
	if startErr := startCacheDaemon(); startErr != nil {
		logger.Errorf("Failed to start store daemon: %v", startErr)
		return nil, err
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if kv, err = cache.Connect(ctx, opts); err == nil {
			return kv, nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return nil, err
}

func startCacheDaemon() error {
	candidates := []string{}
	// Next to this executable first, then PATH, then the working directory.
	if exePath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exePath), daemonBinary))
	}
	if path, err := exec.LookPath(daemonBinary); err == nil {
		candidates = append(candidates, path)
	}
	candidates = append(candidates, "./"+daemonBinary)

	for _, bin := range candidates {
		if _, err := os.Stat(bin); err != nil {
			continue
		}
		cmd := exec.Command(bin)
		cmd.Env = os.Environ()
		return cmd.Start()
	}
	return exec.ErrNotFound
}
