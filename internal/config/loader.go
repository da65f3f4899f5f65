package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envPrefix guards which environment variables the loader consumes.
const envPrefix = "BOARDD_"

// Load reads configuration with the following precedence, highest
// last:
//
//  1. Built-in defaults
//  2. YAML config file (default ~/.config/boardd/config.yaml)
//  3. Environment variables (BOARDD_SERVER_PORT, BOARDD_TRACKER_TOKEN, ...)
//
// A missing config file is fine; defaults plus environment then apply.
// An unreadable or malformed file is an error.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "boardd", "config.yaml")
	}

	if _, err := os.Stat(configPath); err == nil {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	}

	// Environment variables override the file. The transformer maps
	// BOARDD_SERVER_PORT -> server.port, BOARDD_CACHE_ISSUES_TTL ->
	// cache.issues_ttl, and so on: the first underscore separates the
	// section, the rest stay joined as the field name.
	if err := k.Load(env.Provider(envPrefix, ".", transformEnv), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// transformEnv maps an environment variable name to a koanf key path.
//
//	BOARDD_SERVER_PORT        -> server.port
//	BOARDD_TRACKER_TOKEN      -> tracker.token
//	BOARDD_CACHE_ISSUES_TTL   -> cache.issues_ttl
//	BOARDD_LOGGING_LEVEL      -> logging.level
func transformEnv(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	section, field, found := strings.Cut(s, "_")
	if !found {
		return s
	}
	return section + "." + field
}
