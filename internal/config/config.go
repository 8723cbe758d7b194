package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/paxxchal/alx-backend-storage/internal/cache"
)

// Environment variables overriding file settings.
const (
	EnvSocket    = "ALX_STORAGE_CACHE_SOCK"
	EnvDBPath    = "ALX_STORAGE_CACHE_DB"
	EnvBackend   = "ALX_STORAGE_BACKEND"
	EnvRedisAddr = "ALX_STORAGE_REDIS_ADDR"
	EnvRedisDB   = "ALX_STORAGE_REDIS_DB"
)

// Config represents the application configuration
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Content ContentConfig `yaml:"content"`
}

// StoreConfig selects and addresses the key-value store
type StoreConfig struct {
	Backend string      `yaml:"backend"` // "bolt" or "redis"
	Socket  string      `yaml:"socket"`
	DBPath  string      `yaml:"db_path"`
	Sweep   string      `yaml:"sweep_interval"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig addresses a Redis server
type RedisConfig struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
}

// ContentConfig tunes the URL content cache
type ContentConfig struct {
	TTL         string `yaml:"ttl"`
	Concurrency int    `yaml:"concurrency"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	c := &Config{}
	c.setDefaults()
	return c
}

// Load loads configuration from a YAML file. An empty path skips the file.
// Environment overrides are applied after the file.
func Load(path string) (*Config, error) {
	var config Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("parsing config YAML: %w", err)
		}
	}

	config.setDefaults()
	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) setDefaults() {
	if c.Store.Backend == "" {
		c.Store.Backend = "bolt"
	}
	if c.Store.Socket == "" {
		c.Store.Socket = filepath.Join(cacheDir(), "cache.sock")
	}
	if c.Store.DBPath == "" {
		c.Store.DBPath = filepath.Join(cacheDir(), "cache.bbolt")
	}
	if c.Store.Sweep == "" {
		c.Store.Sweep = "1m"
	}
	if c.Store.Redis.Addr == "" {
		c.Store.Redis.Addr = "localhost:6379"
	}
	if c.Content.TTL == "" {
		c.Content.TTL = "10s"
	}
	if c.Content.Concurrency == 0 {
		c.Content.Concurrency = 4
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvSocket); v != "" {
		c.Store.Socket = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Store.DBPath = v
	}
	if v := os.Getenv(EnvBackend); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Store.Redis.Addr = v
	}
	if v := os.Getenv(EnvRedisDB); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvRedisDB, err)
		}
		c.Store.Redis.DB = db
	}
	return nil
}

// GetContentTTL parses and returns the content cache TTL
func (c *Config) GetContentTTL() (time.Duration, error) {
	return time.ParseDuration(c.Content.TTL)
}

// GetSweepInterval parses and returns how often expired entries are swept
func (c *Config) GetSweepInterval() (time.Duration, error) {
	return time.ParseDuration(c.Store.Sweep)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "bolt":
		if c.Store.Socket == "" {
			return fmt.Errorf("store socket is required")
		}
	case "redis":
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("redis address is required")
		}
		if c.Store.Redis.DB < 0 {
			return fmt.Errorf("invalid redis db: %d", c.Store.Redis.DB)
		}
	default:
		return fmt.Errorf("store backend must be 'bolt' or 'redis', got: %s", c.Store.Backend)
	}

	ttl, err := c.GetContentTTL()
	if err != nil {
		return fmt.Errorf("invalid content TTL format: %w", err)
	}
	if ttl <= 0 {
		return fmt.Errorf("content TTL must be positive, got: %s", c.Content.TTL)
	}

	if _, err := c.GetSweepInterval(); err != nil {
		return fmt.Errorf("invalid sweep interval format: %w", err)
	}

	if c.Content.Concurrency < 1 {
		return fmt.Errorf("content concurrency must be at least 1, got: %d", c.Content.Concurrency)
	}

	return nil
}

func cacheDir() string {
	home, _ := os.UserHomeDir()
	if home == "" {
		home = "."
	}
	return filepath.Join(home, ".cache", "alx-storage")
}

// ConnectOptions returns the store connection settings
func (c *Config) ConnectOptions() cache.ConnectOptions {
	return cache.ConnectOptions{
		Backend:   c.Store.Backend,
		Socket:    c.Store.Socket,
		RedisAddr: c.Store.Redis.Addr,
		RedisDB:   c.Store.Redis.DB,
	}
}
