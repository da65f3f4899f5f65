// Package config provides configuration loading for boardd.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Tracker TrackerConfig `koanf:"tracker"`
	Cache   CacheConfig   `koanf:"cache"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// TrackerConfig configures the external ticket-tracking API client.
type TrackerConfig struct {
	Endpoint string        `koanf:"endpoint"`
	Token    string        `koanf:"token"`
	Timeout  time.Duration `koanf:"timeout"`
}

// CacheConfig configures the cache store and TTL classes.
type CacheConfig struct {
	// IssuesTTL is the lifetime of near-real-time issue lists.
	IssuesTTL time.Duration `koanf:"issues_ttl"`
	// ConfigTTL is the lifetime of slow-changing workflow/label data.
	ConfigTTL time.Duration `koanf:"config_ttl"`
	// IdentityTTL is the lifetime of identity/permission data. Zero
	// means never cached (always re-fetch).
	IdentityTTL time.Duration `koanf:"identity_ttl"`
	// DurablePath is the SQLite file backing the durable tier. Empty
	// disables durability (volatile tier only).
	DurablePath string `koanf:"durable_path"`
	// JanitorInterval is how often expired entries are purged. Zero
	// disables the janitor.
	JanitorInterval time.Duration `koanf:"janitor_interval"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`
	// Format is json or console.
	Format string `koanf:"format"`
}

// Default returns the built-in defaults, overridden by file and
// environment during Load.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8480,
		},
		Tracker: TrackerConfig{
			Endpoint: "https://api.linear.app/graphql",
			Timeout:  30 * time.Second,
		},
		Cache: CacheConfig{
			IssuesTTL:       3 * time.Minute,
			ConfigTTL:       20 * time.Minute,
			IdentityTTL:     0,
			JanitorInterval: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration for programmer and operator errors.
// Invalid TTLs fail loudly here rather than degrading to "never
// expires" deeper in the stack.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Tracker.Endpoint == "" {
		return fmt.Errorf("tracker.endpoint is required")
	}
	if c.Tracker.Timeout <= 0 {
		return fmt.Errorf("tracker.timeout must be positive, got %v", c.Tracker.Timeout)
	}
	if c.Cache.IssuesTTL <= 0 {
		return fmt.Errorf("cache.issues_ttl must be positive, got %v", c.Cache.IssuesTTL)
	}
	if c.Cache.ConfigTTL <= 0 {
		return fmt.Errorf("cache.config_ttl must be positive, got %v", c.Cache.ConfigTTL)
	}
	if c.Cache.IdentityTTL < 0 {
		return fmt.Errorf("cache.identity_ttl must be >= 0, got %v", c.Cache.IdentityTTL)
	}
	if c.Cache.JanitorInterval < 0 {
		return fmt.Errorf("cache.janitor_interval must be >= 0, got %v", c.Cache.JanitorInterval)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
