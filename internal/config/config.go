// Package config holds the server configuration: YAML with environment
// variable expansion, validated with ozzo-validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Backends for cache persistence and providers.
const (
	BackendNone   = "none"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendOpenAI = "openai"
	BackendOllama = "ollama"
)

// Config represents the application configuration.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Server    ServerConfig    `yaml:"server"`
	SQLite    SQLiteConfig    `yaml:"sqlite"`
	Cache     CacheConfig     `yaml:"cache"`
	Providers ProvidersConfig `yaml:"providers"`
	Daily     DailyConfig     `yaml:"daily"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{&c.App, &c.Server, &c.SQLite, &c.Cache, &c.Providers, &c.Daily} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	LogLevel string     `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *AppConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.In("trace", "debug", "info", "warn", "error", "disabled")),
	); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP listener configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the listen address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ServerConfig holds HTTP API behavior: CORS, auth cookies, timeouts.
type ServerConfig struct {
	ClientOrigin   string        `yaml:"client_origin"`
	JWTSecret      string        `yaml:"jwt_secret"`
	JWTExpiresDays int           `yaml:"jwt_expires_days"`
	CookieName     string        `yaml:"cookie_name"`
	Production     bool          `yaml:"production"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.ClientOrigin, validation.Required),
		validation.Field(&c.JWTSecret, validation.Required),
		validation.Field(&c.JWTExpiresDays, validation.Required, validation.Min(1)),
		validation.Field(&c.CookieName, validation.Required),
		validation.Field(&c.RequestTimeout, validation.Required),
	); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if c.Production && c.JWTSecret == DevJWTSecret {
		return errors.New("server: jwt_secret must be set in production")
	}
	return nil
}

// DevJWTSecret is the development default; refused when production is set.
const DevJWTSecret = "dev_secret_change_me"

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// CacheSize bounds one cache.
type CacheSize struct {
	Capacity int           `yaml:"capacity"`
	TTL      time.Duration `yaml:"ttl"`
}

// Validate validates a cache size.
func (c CacheSize) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.TTL, validation.Min(time.Duration(0))),
	)
}

// CacheConfig holds per-cache sizes and snapshot persistence.
//
// Persist selects where snapshots go:
//   - "none":   caches live only in memory.
//   - "sqlite": the cache_snapshots table of the main database.
//   - "badger": a BadgerDB directory at BadgerPath.
//
// Sessions bounds the in-memory game sessions and is never persisted; its TTL
// counts from a session's last use.
type CacheConfig struct {
	Persist       string        `yaml:"persist"`
	BadgerPath    string        `yaml:"badger_path"`
	SaveInterval  time.Duration `yaml:"save_interval"`
	Words         CacheSize     `yaml:"words"`
	Definitions   CacheSize     `yaml:"definitions"`
	Relationships CacheSize     `yaml:"relationships"`
	Vectors       CacheSize     `yaml:"vectors"`
	Outcomes      CacheSize     `yaml:"outcomes"`
	Sessions      CacheSize     `yaml:"sessions"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Persist, validation.Required, validation.In(BackendNone, BackendSQLite, BackendBadger)),
		validation.Field(&c.BadgerPath, validation.When(c.Persist == BackendBadger, validation.Required)),
		validation.Field(&c.SaveInterval, validation.Min(time.Duration(0))),
		validation.Field(&c.Words),
		validation.Field(&c.Definitions),
		validation.Field(&c.Relationships),
		validation.Field(&c.Vectors),
		validation.Field(&c.Outcomes),
		validation.Field(&c.Sessions),
	); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}

// ProvidersConfig configures the external relationship providers.
type ProvidersConfig struct {
	StageTimeout time.Duration    `yaml:"stage_timeout"`
	Dictionary   HTTPProvider     `yaml:"dictionary"`
	ConceptNet   HTTPProvider     `yaml:"conceptnet"`
	Embedding    EmbeddingConfig  `yaml:"embedding"`
	Generative   GenerativeConfig `yaml:"generative"`
}

// Validate validates the providers configuration.
func (c *ProvidersConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.StageTimeout, validation.Required),
		validation.Field(&c.Dictionary),
		validation.Field(&c.ConceptNet),
		validation.Field(&c.Embedding),
		validation.Field(&c.Generative),
	); err != nil {
		return fmt.Errorf("providers: %w", err)
	}
	return nil
}

// HTTPProvider configures a plain HTTP provider. An empty URL selects the
// public endpoint.
type HTTPProvider struct {
	Enabled bool          `yaml:"enabled"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Validate validates an HTTP provider.
func (c HTTPProvider) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Timeout, validation.When(c.Enabled, validation.Required)),
	)
}

// EmbeddingConfig configures the embedding backend.
type EmbeddingConfig struct {
	Backend         string  `yaml:"backend"`
	URL             string  `yaml:"url"`
	APIKey          string  `yaml:"api_key"`
	Model           string  `yaml:"model"`
	Dimensions      int     `yaml:"dimensions"`
	RatePerMinute   int     `yaml:"rate_per_minute"`
	SimilarityScale float64 `yaml:"similarity_scale"`
	MaxConcurrent   int64   `yaml:"max_concurrent"`
}

// Validate validates the embedding configuration.
func (c EmbeddingConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendNone, BackendOpenAI, BackendOllama)),
		validation.Field(&c.Model, validation.When(c.Backend == BackendOllama, validation.Required)),
		validation.Field(&c.Dimensions, validation.Min(0)),
		validation.Field(&c.RatePerMinute, validation.Min(0)),
		validation.Field(&c.SimilarityScale, validation.Required, validation.Min(15.0), validation.Max(20.0)),
	)
}

// GenerativeConfig configures the generative backend.
type GenerativeConfig struct {
	Backend string `yaml:"backend"`
	URL     string `yaml:"url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// Validate validates the generative configuration.
func (c GenerativeConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendNone, BackendOpenAI)),
	)
}

// DailyConfig configures puzzle-of-the-day selection.
type DailyConfig struct {
	Salt        string `yaml:"salt"`
	PuzzlesFile string `yaml:"puzzles_file"`
}

// Validate validates the daily configuration.
func (c *DailyConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Salt, validation.Required),
	)
}

// NewDefaultConfig returns a Config with defaults suitable for local play.
func NewDefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			LogLevel: "info",
			HTTP:     HTTPConfig{Port: 5175},
		},
		Server: ServerConfig{
			ClientOrigin:   "http://localhost:5173",
			JWTSecret:      DevJWTSecret,
			JWTExpiresDays: 14,
			CookieName:     "linkdle_token",
			RequestTimeout: 30 * time.Second,
		},
		SQLite: SQLiteConfig{Path: "./data/app.db"},
		Cache: CacheConfig{
			Persist:       BackendSQLite,
			BadgerPath:    "./data/cache",
			SaveInterval:  5 * time.Minute,
			Words:         CacheSize{Capacity: 1000, TTL: 24 * time.Hour},
			Definitions:   CacheSize{Capacity: 1000, TTL: 24 * time.Hour},
			Relationships: CacheSize{Capacity: 500, TTL: 24 * time.Hour},
			Vectors:       CacheSize{Capacity: 2000, TTL: 7 * 24 * time.Hour},
			Outcomes:      CacheSize{Capacity: 1000, TTL: time.Hour},
			Sessions:      CacheSize{Capacity: 10000, TTL: 2 * time.Hour},
		},
		Providers: ProvidersConfig{
			StageTimeout: 5 * time.Second,
			Dictionary:   HTTPProvider{Enabled: true, Timeout: 5 * time.Second},
			ConceptNet:   HTTPProvider{Enabled: true, Timeout: 5 * time.Second},
			Embedding: EmbeddingConfig{
				Backend:         BackendNone,
				Dimensions:      384,
				RatePerMinute:   3000,
				SimilarityScale: 20,
				MaxConcurrent:   4,
			},
			Generative: GenerativeConfig{Backend: BackendNone},
		},
		Daily: DailyConfig{Salt: "local_dev_salt"},
	}
}

// Load reads filename over the defaults, expanding ${VAR} references, and
// validates the result. A missing file yields the validated defaults.
func Load(filename string) (*Config, error) {
	cfg := NewDefaultConfig()

	data, err := os.ReadFile(filename)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	default:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
