package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		want    *Config
		wantErr error
	}{
		{
			name:    "load with default values",
			envVars: map[string]string{},
			want: &Config{
				Environment:     "local",
				ShutdownTimeout: 30 * time.Second,
				Server: ServerConfig{
					Port:              8080,
					Host:              "localhost",
					ReadHeaderTimeout: 500 * time.Millisecond,
					ReadTimeout:       1 * time.Second,
					IdleTimeout:       3 * time.Second,
					AllowedOrigins:    []string{"http://localhost:9000"},
				},
				Resolver: ResolverConfig{
					MusicBrainzPaceMS:        1100 * time.Millisecond,
					SoftRateLimitPerSecond:   2,
					BatchInterResolveSleepMS: 500 * time.Millisecond,
					MaxBatchSize:             50,
				},
				Cache: CacheConfig{
					RedisDB: 0,
					TTL:     720 * time.Hour,
				},
				Logging: LoggingConfig{
					Level:         "info",
					Format:        "json",
					Structured:    true,
					IncludeCaller: false,
				},
			},
			wantErr: nil,
		},
		{
			name: "load with custom values",
			envVars: map[string]string{
				"ENVIRONMENT":                             "production",
				"SHUTDOWN_TIMEOUT":                        "15s",
				"SERVER_PORT":                              "9090",
				"SERVER_HOST":                               "0.0.0.0",
				"SERVER_READ_HEADER_TIMEOUT":                "200ms",
				"SERVER_READ_TIMEOUT":                       "2s",
				"SERVER_IDLE_TIMEOUT":                       "45s",
				"RESOLVER_MUSICBRAINZ_PACE_MS":              "1500ms",
				"RESOLVER_SOFT_RATE_LIMIT_PER_SECOND":       "3",
				"RESOLVER_BATCH_INTER_RESOLVE_SLEEP_MS":     "750ms",
				"RESOLVER_MAX_BATCH_SIZE":                   "25",
				"CACHE_REDIS_ADDR":                          "localhost:6379",
				"CACHE_REDIS_DB":                            "2",
				"CACHE_TTL":                                 "48h",
				"LOGGING_LEVEL":                              "debug",
				"LOGGING_FORMAT":                             "text",
			},
			want: &Config{
				Environment:     "production",
				ShutdownTimeout: 15 * time.Second,
				Server: ServerConfig{
					Port:              9090,
					Host:              "0.0.0.0",
					ReadHeaderTimeout: 200 * time.Millisecond,
					ReadTimeout:       2 * time.Second,
					IdleTimeout:       45 * time.Second,
					AllowedOrigins:    []string{"http://localhost:9000"},
				},
				Resolver: ResolverConfig{
					MusicBrainzPaceMS:        1500 * time.Millisecond,
					SoftRateLimitPerSecond:   3,
					BatchInterResolveSleepMS: 750 * time.Millisecond,
					MaxBatchSize:             25,
				},
				Cache: CacheConfig{
					RedisAddr: "localhost:6379",
					RedisDB:   2,
					TTL:       48 * time.Hour,
				},
				Logging: LoggingConfig{
					Level:         "debug",
					Format:        "text",
					Structured:    true,
					IncludeCaller: false,
				},
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				t.Setenv("APP_"+key, value)
			}

			got, err := Load("APP")
			if tt.wantErr != nil {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid development config",
			config: &Config{
				Environment: "development",
				Server:      ServerConfig{Port: 8080, AllowedOrigins: []string{"http://localhost:9000"}},
				Resolver:    ResolverConfig{SoftRateLimitPerSecond: 2},
				Logging:     LoggingConfig{Level: "info", Format: "json"},
			},
			wantErr: false,
		},
		{
			name: "invalid server port",
			config: &Config{
				Environment: "development",
				Server:      ServerConfig{Port: 0},
				Resolver:    ResolverConfig{SoftRateLimitPerSecond: 2},
				Logging:     LoggingConfig{Level: "info", Format: "json"},
			},
			wantErr: true,
		},
		{
			name: "invalid environment",
			config: &Config{
				Environment: "staging-ish",
				Server:      ServerConfig{Port: 8080},
				Resolver:    ResolverConfig{SoftRateLimitPerSecond: 2},
				Logging:     LoggingConfig{Level: "info", Format: "json"},
			},
			wantErr: true,
		},
		{
			name: "invalid log level",
			config: &Config{
				Environment: "local",
				Server:      ServerConfig{Port: 8080},
				Resolver:    ResolverConfig{SoftRateLimitPerSecond: 2},
				Logging:     LoggingConfig{Level: "verbose", Format: "json"},
			},
			wantErr: true,
		},
		{
			name: "non-positive soft rate limit",
			config: &Config{
				Environment: "local",
				Server:      ServerConfig{Port: 8080},
				Resolver:    ResolverConfig{SoftRateLimitPerSecond: 0},
				Logging:     LoggingConfig{Level: "info", Format: "json"},
			},
			wantErr: true,
		},
		{
			name: "valid local config",
			config: &Config{
				Environment: "local",
				Server:      ServerConfig{Port: 8080},
				Resolver:    ResolverConfig{SoftRateLimitPerSecond: 2},
				Logging:     LoggingConfig{Level: "info", Format: "json"},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
