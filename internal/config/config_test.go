package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":5175", cfg.App.HTTP.Address())
	assert.Equal(t, BackendSQLite, cfg.Cache.Persist)
	assert.Equal(t, 5*time.Second, cfg.Providers.StageTimeout)
	assert.Equal(t, CacheSize{Capacity: 10000, TTL: 2 * time.Hour}, cfg.Cache.Sessions)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, NewDefaultConfig(), cfg)
}

func TestLoad_OverridesAndExpandsEnv(t *testing.T) {
	t.Setenv("LINKDLE_TEST_KEY", "sk-test")
	path := writeConfig(t, `
app:
  log_level: debug
  http:
    port: 8080
cache:
  persist: badger
  badger_path: /tmp/cache
  vectors:
    capacity: 50
    ttl: 2h
providers:
  stage_timeout: 3s
  embedding:
    backend: openai
    api_key: ${LINKDLE_TEST_KEY}
    similarity_scale: 15
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 8080, cfg.App.HTTP.Port)
	assert.Equal(t, BackendBadger, cfg.Cache.Persist)
	assert.Equal(t, CacheSize{Capacity: 50, TTL: 2 * time.Hour}, cfg.Cache.Vectors)
	assert.Equal(t, 3*time.Second, cfg.Providers.StageTimeout)
	assert.Equal(t, "sk-test", cfg.Providers.Embedding.APIKey)
	assert.Equal(t, 15.0, cfg.Providers.Embedding.SimilarityScale)

	// Untouched sections keep their defaults.
	assert.Equal(t, NewDefaultConfig().Cache.Words, cfg.Cache.Words)
	assert.Equal(t, 384, cfg.Providers.Embedding.Dimensions)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "app: [unclosed"))
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.App.LogLevel = "loud" }},
		{"port out of range", func(c *Config) { c.App.HTTP.Port = 70000 }},
		{"unknown persist backend", func(c *Config) { c.Cache.Persist = "redis" }},
		{"badger without path", func(c *Config) {
			c.Cache.Persist = BackendBadger
			c.Cache.BadgerPath = ""
		}},
		{"zero cache capacity", func(c *Config) { c.Cache.Outcomes.Capacity = 0 }},
		{"zero session capacity", func(c *Config) { c.Cache.Sessions.Capacity = 0 }},
		{"similarity scale below range", func(c *Config) { c.Providers.Embedding.SimilarityScale = 10 }},
		{"similarity scale above range", func(c *Config) { c.Providers.Embedding.SimilarityScale = 21 }},
		{"ollama without model", func(c *Config) { c.Providers.Embedding.Backend = BackendOllama }},
		{"generative ollama unsupported", func(c *Config) { c.Providers.Generative.Backend = BackendOllama }},
		{"missing stage timeout", func(c *Config) { c.Providers.StageTimeout = 0 }},
		{"enabled dictionary without timeout", func(c *Config) { c.Providers.Dictionary.Timeout = 0 }},
		{"missing salt", func(c *Config) { c.Daily.Salt = "" }},
		{"dev secret in production", func(c *Config) { c.Server.Production = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_DisabledProviderNeedsNoTimeout(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Providers.ConceptNet = HTTPProvider{Enabled: false}
	assert.NoError(t, cfg.Validate())
}
