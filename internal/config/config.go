// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the service. The listen address and
// the GraphQL path are fixed and not configurable.
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Server
	Pretty       bool          `envconfig:"SERVER_PRETTY" default:"false"`
	Timeout      time.Duration `envconfig:"SERVER_TIMEOUT" default:"10s"`
	MaxBodyBytes int64         `envconfig:"SERVER_MAX_BODY_BYTES" default:"1048576"`
	CORSOrigins  []string      `envconfig:"SERVER_CORS_ORIGINS"`
	Gzip         bool          `envconfig:"SERVER_GZIP" default:"true"`

	// GraphQL
	Introspection  bool `envconfig:"GRAPHQL_INTROSPECTION" default:"true"`
	QueryCacheSize int  `envconfig:"GRAPHQL_QUERY_CACHE_SIZE" default:"1000"`
	MaxConcurrency int  `envconfig:"GRAPHQL_MAX_CONCURRENCY" default:"0"`

	// Telemetry
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"gqlhello"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.QueryCacheSize < 0 {
		return nil, fmt.Errorf("loading config: GRAPHQL_QUERY_CACHE_SIZE must not be negative")
	}
	if cfg.MaxConcurrency < 0 {
		return nil, fmt.Errorf("loading config: GRAPHQL_MAX_CONCURRENCY must not be negative")
	}
	return &cfg, nil
}
