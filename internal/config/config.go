package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from flags, files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	LogLevel string `mapstructure:"log_level"`

	Endpoint              string        `mapstructure:"api_endpoint"`
	AccessKey             string        `mapstructure:"api_access_key"`
	TimeoutSeconds        int64         `mapstructure:"api_timeout_seconds"`
	ConnectTimeoutSeconds int64         `mapstructure:"api_connect_timeout_seconds"`
	Timeout               time.Duration `mapstructure:"-"`
	ConnectTimeout        time.Duration `mapstructure:"-"`
	HeadersFile           string        `mapstructure:"headers_file"`
	UserAgent             string        `mapstructure:"user_agent"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	HistoryTTLSeconds      int64         `mapstructure:"history_ttl_seconds"`
	HistoryCleanupSeconds  int64         `mapstructure:"history_cleanup_interval_seconds"`
	HistoryTTL             time.Duration `mapstructure:"-"`
	HistoryCleanupInterval time.Duration `mapstructure:"-"`
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"endpoint":     "api_endpoint",
	"access-key":   "api_access_key",
	"timeout":      "api_timeout_seconds",
	"log-level":    "log_level",
	"headers-file": "headers_file",
}

// Load reads configuration from environment variables, configs/.env and any
// of the known flags present in fs. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "apicall")
	v.SetDefault("log_level", "info")
	v.SetDefault("api_endpoint", "https://rest.messagebird.com")
	v.SetDefault("api_access_key", "")
	v.SetDefault("api_timeout_seconds", 10)
	v.SetDefault("api_connect_timeout_seconds", 2)
	v.SetDefault("headers_file", "")
	v.SetDefault("user_agent", "")
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/history.db")
	v.SetDefault("history_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("history_cleanup_interval_seconds", int64((time.Hour)/time.Second))

	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("api_endpoint is required")
	}
	if cfg.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid api_timeout_seconds (must be positive seconds)")
	}
	if cfg.ConnectTimeoutSeconds < 0 {
		return nil, fmt.Errorf("invalid api_connect_timeout_seconds (must not be negative)")
	}
	cfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	cfg.ConnectTimeout = time.Duration(cfg.ConnectTimeoutSeconds) * time.Second

	if cfg.HistoryTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid history_ttl_seconds (must be positive seconds)")
	}
	if cfg.HistoryCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid history_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.HistoryTTL = time.Duration(cfg.HistoryTTLSeconds) * time.Second
	cfg.HistoryCleanupInterval = time.Duration(cfg.HistoryCleanupSeconds) * time.Second

	return &cfg, nil
}

// Redacted returns a copy safe to log, with the access key masked.
func (c Config) Redacted() Config {
	if c.AccessKey != "" {
		c.AccessKey = "***"
	}
	return c
}
