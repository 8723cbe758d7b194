package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/paxxchal/alx-backend-storage/internal/cache"
	"github.com/paxxchal/alx-backend-storage/internal/config"
	"github.com/paxxchal/alx-backend-storage/internal/logger"
	"github.com/paxxchal/alx-backend-storage/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "cachectl",
	Short: "Inspect and drive the instrumented key-value cache",
	Long:  "CLI for storing and retrieving values, replaying call history and fetching URLs through the content cache.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetOutput(os.Stderr)
		return logger.SetLevel(viper.GetString("log_level"))
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (YAML)")
	rootCmd.PersistentFlags().String("backend", "", "store backend: bolt or redis")
	rootCmd.PersistentFlags().String("socket", "", "store daemon socket path")
	rootCmd.PersistentFlags().String("redis-addr", "", "redis address")
	rootCmd.PersistentFlags().String("log-level", "warning", "log level")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("backend", rootCmd.PersistentFlags().Lookup("backend"))
	viper.BindPFlag("socket", rootCmd.PersistentFlags().Lookup("socket"))
	viper.BindPFlag("redis_addr", rootCmd.PersistentFlags().Lookup("redis-addr"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	viper.SetEnvPrefix("ALX_STORAGE")
	viper.AutomaticEnv()
}

// loadConfig reads the config file and lets flags override it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return nil, err
	}
	if v := viper.GetString("backend"); v != "" {
		cfg.Store.Backend = v
	}
	if v := viper.GetString("socket"); v != "" {
		cfg.Store.Socket = v
	}
	if v := viper.GetString("redis_addr"); v != "" {
		cfg.Store.Redis.Addr = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openCache attaches to the configured store without flushing it.
func openCache(ctx context.Context) (*store.Instrumented, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	kv, err := cache.Connect(ctx, cfg.ConnectOptions())
	if err != nil {
		return nil, nil, err
	}
	return store.Instrument(store.Attach(kv)), cfg, nil
}
