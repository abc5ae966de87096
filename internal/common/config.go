// Package common provides shared utilities for Tally
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Tally
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	PriceFeed   PriceFeedConfig `toml:"price_feed"`
	Display     DisplayConfig   `toml:"display"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Storage backends.
const (
	BackendBadger  = "badger"
	BackendMemory  = "memory"
	BackendSurreal = "surrealdb"
)

// StorageConfig selects and configures the record store backend.
// Path is used by the badger backend; the address/credential fields by surrealdb.
type StorageConfig struct {
	Backend   string `toml:"backend"`
	Path      string `toml:"path"`
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Format   string   `toml:"format"`
	Outputs  []string `toml:"outputs"`
	FilePath string   `toml:"file_path"`
}

// PriceFeedConfig configures the simulated unit-price drift task.
type PriceFeedConfig struct {
	Enabled     bool    `toml:"enabled"`
	Interval    string  `toml:"interval"`
	MaxDriftPct float64 `toml:"max_drift_pct"`

	// WritesPerSecond caps price writes so a large tick does not starve the store.
	WritesPerSecond int `toml:"writes_per_second"`
}

// GetInterval parses and returns the tick interval
func (c *PriceFeedConfig) GetInterval() time.Duration {
	d, err := time.ParseDuration(c.Interval)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetWritesPerSecond returns the write rate cap, defaulting to 20.
func (c *PriceFeedConfig) GetWritesPerSecond() int {
	if c.WritesPerSecond <= 0 {
		return 20
	}
	return c.WritesPerSecond
}

// DisplayConfig holds the user settings consumed by the external formatter.
type DisplayConfig struct {
	CurrencyCode string `toml:"currency_code"`
	Locale       string `toml:"locale"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Backend:   BackendBadger,
			Path:      "data/records",
			Address:   "ws://localhost:8000/rpc",
			Namespace: "tally",
			Database:  "tally",
			Username:  "root",
			Password:  "root",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "console",
			Outputs:  []string{"console"},
			FilePath: "./logs/tally.log",
		},
		PriceFeed: PriceFeedConfig{
			Enabled:         false,
			Interval:        "30s",
			MaxDriftPct:     1.5,
			WritesPerSecond: 20,
		},
		Display: DisplayConfig{
			CurrencyCode: "INR",
			Locale:       "en-IN",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	normalizeConfig(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("TALLY_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("TALLY_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("TALLY_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("TALLY_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("TALLY_DATA_PATH"); path != "" {
		config.Storage.Path = filepath.Join(path, "records")
	}

	if backend := os.Getenv("TALLY_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = backend
	}

	if addr := os.Getenv("TALLY_SURREAL_ADDRESS"); addr != "" {
		config.Storage.Address = addr
	}

	if v := os.Getenv("TALLY_PRICE_FEED_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.PriceFeed.Enabled = b
		}
	}

	if v := os.Getenv("TALLY_PRICE_FEED_INTERVAL"); v != "" {
		config.PriceFeed.Interval = v
	}

	if v := os.Getenv("TALLY_CURRENCY"); v != "" {
		config.Display.CurrencyCode = v
	}

	if v := os.Getenv("TALLY_LOCALE"); v != "" {
		config.Display.Locale = v
	}
}

// normalizeConfig cleans up values that are compared case-sensitively elsewhere.
func normalizeConfig(config *Config) {
	config.Storage.Backend = strings.ToLower(strings.TrimSpace(config.Storage.Backend))
	if config.Storage.Backend == "" {
		config.Storage.Backend = BackendBadger
	}
	config.Display.CurrencyCode = strings.ToUpper(strings.TrimSpace(config.Display.CurrencyCode))
	if config.Display.CurrencyCode == "" {
		config.Display.CurrencyCode = "INR"
	}
	if config.PriceFeed.MaxDriftPct < 0 {
		config.PriceFeed.MaxDriftPct = -config.PriceFeed.MaxDriftPct
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// StorageAddress describes where records live, for the banner and startup logs.
func (c *Config) StorageAddress() string {
	switch c.Storage.Backend {
	case BackendSurreal:
		return c.Storage.Address
	case BackendMemory:
		return "memory"
	default:
		return c.Storage.Path
	}
}
