package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int64(10*1024*1024), cfg.App.MaxFileSize)
	assert.Equal(t, "json", cfg.App.DefaultFormat)
	assert.Equal(t, 60*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "memory", cfg.Server.RateLimit.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Vault.WatchInterval)
	assert.Equal(t, 25, cfg.Jobs.MaxResults)
	assert.NotEmpty(t, cfg.Observability.ServiceInstance)
}

func TestDefaultsUseProviderKeyFallbacks(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gemini-from-env")
	t.Setenv("RAPIDAPI_KEY", "rapid-from-env")
	t.Setenv("WAZIVO_SERVER_APIKEYS", "k1, k2 ,")

	cfg := Defaults()
	assert.Equal(t, "gemini-from-env", cfg.AI.APIKey)
	assert.Equal(t, "rapid-from-env", cfg.Jobs.JSearch.APIKey)
	assert.Equal(t, []string{"k1", "k2"}, cfg.Server.APIKeys)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing port", func(c *Config) { c.Server.Port = "" }, "server port is required"},
		{"zero AI timeout", func(c *Config) { c.AI.Timeout = 0 }, "AI timeout must be positive"},
		{"negative text length", func(c *Config) { c.App.MinURLTextLength = -1 }, "cannot be negative"},
		{"zero file size", func(c *Config) { c.App.MaxFileSize = 0 }, "app.maxFileSize"},
		{"reader without URL", func(c *Config) { c.Fetch.Reader.BaseURL = "" }, "fetch.reader.baseURL"},
		{"redis without URL", func(c *Config) { c.Server.RateLimit.Backend = "redis" }, "redisURL is required"},
		{"unknown backend", func(c *Config) { c.Server.RateLimit.Backend = "memcached" }, "invalid rate limit backend"},
		{"bad default format", func(c *Config) { c.App.DefaultFormat = "yaml" }, "invalid default format"},
		{"zero job results", func(c *Config) { c.Jobs.MaxResults = 0 }, "jobs.maxResults"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("missing AI key is allowed", func(t *testing.T) {
		cfg := Defaults()
		cfg.AI.APIKey = ""
		assert.NoError(t, cfg.Validate())
	})
}

func TestLoadConfigFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9090"
  rateLimit:
    requestsPerMin: 30
app:
  defaultFormat: markdown
jobs:
  maxResults: 15
`), 0600))

	t.Setenv("WAZIVO_SERVER_HOST", "0.0.0.0")

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 30, cfg.Server.RateLimit.RequestsPerMin)
	assert.Equal(t, "markdown", cfg.App.DefaultFormat)
	assert.Equal(t, 15, cfg.Jobs.MaxResults)
	assert.Equal(t, 10, cfg.Server.RateLimit.BurstCapacity, "unset keys keep their defaults")
}

func TestLoadConfigFromRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  maxFileSize: -1\n"), 0600))

	_, err := LoadConfigFrom(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	_, err = LoadConfigFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
