// Package config provides application configuration management using environment variables.
// It uses github.com/kelseyhightower/envconfig for loading configuration from environment variables
// with support for validation, default values, and environment-specific helpers.
//
// # Basic Usage
//
// Load configuration from environment variables:
//
//	cfg, err := config.Load("APP")
//	if err != nil {
//		log.Fatalf("Failed to load configuration: %v", err)
//	}
//
//	// Validate configuration
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid configuration: %v", err)
//	}
//
// # Environment Variables
//
// The following environment variables are supported (using "APP" prefix):
//
// Basic configuration:
//   - APP_ENVIRONMENT: Environment (local, development, staging, production; default: local)
//
// Server configuration:
//   - APP_SERVER_PORT: Server port (default: 8080)
//   - APP_SERVER_HOST: Server host (default: localhost)
//   - APP_SERVER_READ_TIMEOUT: Read timeout (default: 1000ms)
//   - APP_SERVER_IDLE_TIMEOUT: Idle timeout (default: 3s)
//   - APP_SHUTDOWN_TIMEOUT: Shutdown timeout (default: 30s)
//
// Resolver configuration:
//   - APP_RESOLVER_MUSICBRAINZ_PACE_MS: minimum interval between MusicBrainz requests (default: 1100ms)
//   - APP_RESOLVER_SOFT_RATE_LIMIT_PER_SECOND: token-bucket rate applied to Wikidata/Wikipedia/Nominatim/Photon (default: 2)
//   - APP_RESOLVER_BATCH_INTER_RESOLVE_SLEEP_MS: sleep between sequential resolves in a batch (default: 500ms)
//   - APP_RESOLVER_MAX_BATCH_SIZE: artist names accepted per batch request (default: 50)
//
// Cache configuration:
//   - APP_CACHE_REDIS_ADDR: Redis address; empty falls back to the in-memory cache
//   - APP_CACHE_REDIS_PASSWORD: Redis password
//   - APP_CACHE_REDIS_DB: Redis logical database index (default: 0)
//   - APP_CACHE_TTL: cache entry time-to-live (default: 720h, i.e. 30 days)
//
// Logging configuration:
//   - APP_LOGGING_LEVEL: Log level (debug, info, warn, error, default: info)
//   - APP_LOGGING_FORMAT: Log format (json, text, default: json)
//   - APP_LOGGING_STRUCTURED: Enable structured logging (default: true)
//   - APP_LOGGING_INCLUDE_CALLER: Include caller information (default: false)
//
// # Environment Helpers
//
// Use environment detection helpers:
//
//	if cfg.IsDevelopment() {
//		// Development-specific logic
//	}
//
//	if cfg.IsProduction() {
//		// Production-specific logic
//	}
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config represents the application configuration loaded from environment variables.
type Config struct {
	// Server configuration
	Server ServerConfig

	// Resolver configuration
	Resolver ResolverConfig

	// Cache configuration
	Cache CacheConfig

	// Logging configuration
	Logging LoggingConfig

	// Environment
	Environment string `envconfig:"ENVIRONMENT" default:"local"`

	// Shutdown timeout in seconds
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// ServerConfig represents server-specific configuration.
type ServerConfig struct {
	// Port to listen on
	Port int `envconfig:"SERVER_PORT" default:"8080"`

	// Host to bind to
	Host string `envconfig:"SERVER_HOST" default:"localhost"`

	// Read header timeout in milliseconds
	ReadHeaderTimeout time.Duration `envconfig:"SERVER_READ_HEADER_TIMEOUT" default:"500ms"`

	// Read timeout in milliseconds
	ReadTimeout time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"1000ms"`

	// Idle timeout in seconds
	IdleTimeout time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"3s"`

	// Allowed CORS origins
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:9000"`
}

// ResolverConfig tunes the pacing of the fallback chain's upstream clients.
type ResolverConfig struct {
	// MusicBrainzPaceMS is the minimum interval between successive
	// MusicBrainz requests, enforced uniformly across search, area-context,
	// and relationship lookups (spec.md §4.5).
	MusicBrainzPaceMS time.Duration `envconfig:"RESOLVER_MUSICBRAINZ_PACE_MS" default:"1100ms"`

	// SoftRateLimitPerSecond bounds the Wikidata, Wikipedia, Nominatim, and
	// Photon clients, each of which gets its own independent token bucket
	// at this rate.
	SoftRateLimitPerSecond float64 `envconfig:"RESOLVER_SOFT_RATE_LIMIT_PER_SECOND" default:"2"`

	// BatchInterResolveSleepMS is the pause the batch handler takes between
	// sequential resolves of uncached artists (spec.md §4.10).
	BatchInterResolveSleepMS time.Duration `envconfig:"RESOLVER_BATCH_INTER_RESOLVE_SLEEP_MS" default:"500ms"`

	// MaxBatchSize truncates an incoming artist-name batch (spec.md §4.10).
	MaxBatchSize int `envconfig:"RESOLVER_MAX_BATCH_SIZE" default:"50"`
}

// CacheConfig selects and tunes the persistence layer for resolved
// locations. An empty RedisAddr falls back to the in-memory cache.
type CacheConfig struct {
	RedisAddr     string        `envconfig:"CACHE_REDIS_ADDR"`
	RedisPassword string        `envconfig:"CACHE_REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"CACHE_REDIS_DB" default:"0"`
	TTL           time.Duration `envconfig:"CACHE_TTL" default:"720h"`
}

// LoggingConfig represents logging-specific configuration.
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `envconfig:"LOGGING_LEVEL" default:"info"`

	// Log format (json, text)
	Format string `envconfig:"LOGGING_FORMAT" default:"json"`

	// Enable structured logging
	Structured bool `envconfig:"LOGGING_STRUCTURED" default:"true"`

	// Include caller information
	IncludeCaller bool `envconfig:"LOGGING_INCLUDE_CALLER" default:"false"`
}

// Load loads configuration from environment variables.
// The prefix parameter is used to namespace environment variables.
// For example, with prefix "APP", environment variables like APP_SERVER_PORT will be loaded.
//
// Example:
//
//	cfg, err := config.Load("APP")
//	if err != nil {
//		return fmt.Errorf("failed to load config: %w", err)
//	}
func Load(prefix string) (*Config, error) {
	var cfg Config

	// Process environment variables with the given prefix
	err := envconfig.Process(prefix, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// envconfig prefixes a nested block's keys with its field name
	// (APP_SERVER_SERVER_PORT); the block tags already carry that stem, so
	// each block is processed again against the bare prefix (APP_SERVER_PORT).
	for _, block := range []any{&cfg.Server, &cfg.Resolver, &cfg.Cache, &cfg.Logging} {
		if err := envconfig.Process(prefix, block); err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
	}

	return &cfg, nil
}

// Validate validates the configuration according to the following rules:
//   - Server port: 1-65535 range
//   - Environment: local, development, staging, or production
//   - Log level: debug, info, warn, or error
//   - Log format: json or text
//   - Resolver soft rate limit: positive
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validEnvironments := []string{"local", "development", "staging", "production"}
	valid := false

	for _, env := range validEnvironments {
		if c.Environment == env {
			valid = true

			break
		}
	}

	if !valid {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	valid = false

	for _, level := range validLogLevels {
		if c.Logging.Level == level {
			valid = true

			break
		}
	}

	if !valid {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validLogFormats := []string{"json", "text"}
	valid = false

	for _, format := range validLogFormats {
		if c.Logging.Format == format {
			valid = true

			break
		}
	}

	if !valid {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Resolver.SoftRateLimitPerSecond <= 0 {
		return fmt.Errorf("invalid resolver soft rate limit: %f", c.Resolver.SoftRateLimitPerSecond)
	}

	return nil
}

// IsDevelopment returns true if the environment is "development".
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if the environment is "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsStaging returns true if the environment is "staging".
func (c *Config) IsStaging() bool {
	return c.Environment == "staging"
}

// IsLocal returns true if the environment is "local".
func (c *Config) IsLocal() bool {
	return c.Environment == "local"
}
