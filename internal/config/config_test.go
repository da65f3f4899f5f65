package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	// Point at a non-existent file so only defaults apply.
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8480, cfg.Server.Port)
	assert.Equal(t, 3*time.Minute, cfg.Cache.IssuesTTL)
	assert.Equal(t, 20*time.Minute, cfg.Cache.ConfigTTL)
	assert.Zero(t, cfg.Cache.IdentityTTL)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9999
cache:
  issues_ttl: 5m
  durable_path: /var/lib/boardd/cache.db
logging:
  level: debug
  format: console
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Cache.IssuesTTL)
	assert.Equal(t, "/var/lib/boardd/cache.db", cfg.Cache.DurablePath)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Unspecified fields keep their defaults.
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 20*time.Minute, cfg.Cache.ConfigTTL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9999
`)

	t.Setenv("BOARDD_SERVER_PORT", "7070")
	t.Setenv("BOARDD_TRACKER_TOKEN", "lin_api_test")
	t.Setenv("BOARDD_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "lin_api_test", cfg.Tracker.Token)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfigFile(t, "server: [not: valid")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	path := writeConfigFile(t, `
cache:
  issues_ttl: 0s
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "issues_ttl")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "missing tracker endpoint",
			mutate:  func(c *Config) { c.Tracker.Endpoint = "" },
			wantErr: "tracker.endpoint",
		},
		{
			name:    "zero issues ttl degrades to infinite and must be rejected",
			mutate:  func(c *Config) { c.Cache.IssuesTTL = 0 },
			wantErr: "issues_ttl",
		},
		{
			name:    "negative identity ttl",
			mutate:  func(c *Config) { c.Cache.IdentityTTL = -time.Second },
			wantErr: "identity_ttl",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestTransformEnv(t *testing.T) {
	assert.Equal(t, "server.port", transformEnv("BOARDD_SERVER_PORT"))
	assert.Equal(t, "cache.issues_ttl", transformEnv("BOARDD_CACHE_ISSUES_TTL"))
	assert.Equal(t, "tracker.token", transformEnv("BOARDD_TRACKER_TOKEN"))
}
