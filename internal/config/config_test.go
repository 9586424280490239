package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8086, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, 3, cfg.Pipeline.BatchSize)
	assert.Equal(t, 3, cfg.Completion.MaxRetries)
	assert.Equal(t, time.Second, cfg.Completion.BaseDelay)
	assert.NoError(t, cfg.Validate())
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8086, cfg.Server.Port)
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
completion:
  model: custom-model
cache:
  driver: sqlite
  sqlite:
    path: /tmp/test.db
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "custom-model", cfg.Completion.Model)
	assert.Equal(t, "sqlite", cfg.Cache.Driver)
	assert.Equal(t, "/tmp/test.db", cfg.Cache.SQLite.Path)
	// Untouched sections keep their defaults.
	assert.Equal(t, 3, cfg.Pipeline.BatchSize)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "7777")
	t.Setenv("COMPLETION_MODEL", "env-model")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("REDIS_URL", "redis://cache.internal:6379")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "env-model", cfg.Completion.Model)
	assert.Equal(t, "sk-test", cfg.Completion.APIKey)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, "cache.internal:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
}

func TestExplicitAPIKeyWinsOverOpenAIKey(t *testing.T) {
	t.Setenv("COMPLETION_API_KEY", "explicit")
	t.Setenv("OPENAI_API_KEY", "fallback")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.Completion.APIKey)
}

func TestDatabaseURLSelectsSQLite(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite:/var/lib/courses.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Cache.Driver)
	assert.Equal(t, "/var/lib/courses.db", cfg.Cache.SQLite.Path)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad driver", func(c *Config) { c.Cache.Driver = "etcd" }},
		{"bad batch size", func(c *Config) { c.Pipeline.BatchSize = 0 }},
		{"bad retries", func(c *Config) { c.Completion.MaxRetries = 0 }},
		{"missing base url", func(c *Config) { c.Completion.BaseURL = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
