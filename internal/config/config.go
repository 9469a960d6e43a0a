// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

// Package config defines the Ambler service configuration and its
// layered loader (defaults, optional YAML file, environment variables).
package config

import (
	"fmt"
	"time"

	"github.com/ambler-app/ambler/internal/rank"
)

// Config is the root service configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Engine     rank.Config      `koanf:"engine"`
	Cache      CacheConfig      `koanf:"cache"`
	Overpass   OverpassConfig   `koanf:"overpass"`
	Commercial CommercialConfig `koanf:"commercial"`
	SpatialDB  SpatialDBConfig  `koanf:"spatialdb"`
	Bayes      BayesConfig      `koanf:"bayes"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	// Host is the listen address.
	Host string `koanf:"host"`

	// Port is the listen port.
	Port int `koanf:"port"`

	// ReadTimeout, WriteTimeout, and ShutdownTimeout bound request
	// handling and graceful shutdown.
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins lists allowed CORS origins. Empty allows none.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitRequests per RateLimitWindow per client IP.
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (trace..panic).
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller includes caller file:line in log output.
	Caller bool `koanf:"caller"`
}

// CacheConfig holds the ranking result cache settings.
type CacheConfig struct {
	// Enabled toggles the result cache.
	Enabled bool `koanf:"enabled"`

	// Capacity is the maximum number of cached results.
	Capacity int `koanf:"capacity"`

	// TTL is how long a cached result stays fresh.
	TTL time.Duration `koanf:"ttl"`
}

// OverpassConfig holds the OpenStreetMap Overpass provider settings.
type OverpassConfig struct {
	// Enabled toggles the provider.
	Enabled bool `koanf:"enabled"`

	// URL is the Overpass API interpreter endpoint.
	URL string `koanf:"url"`

	// Timeout bounds a single Overpass query.
	Timeout time.Duration `koanf:"timeout"`

	// RatePerSecond throttles outbound queries; public Overpass
	// instances enforce strict fair-use limits.
	RatePerSecond float64 `koanf:"rate_per_second"`
}

// CommercialConfig holds the commercial places API provider settings.
type CommercialConfig struct {
	// Enabled toggles the provider.
	Enabled bool `koanf:"enabled"`

	// URL is the places API base URL.
	URL string `koanf:"url"`

	// APIKey authenticates requests.
	APIKey string `koanf:"api_key"`

	// Timeout bounds a single request.
	Timeout time.Duration `koanf:"timeout"`
}

// SpatialDBConfig holds the local DuckDB place database settings.
type SpatialDBConfig struct {
	// Enabled toggles the provider.
	Enabled bool `koanf:"enabled"`

	// Path is the DuckDB database file. Empty means in-memory.
	Path string `koanf:"path"`

	// MaxMemory caps DuckDB memory usage (e.g. "1GB").
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count. Zero uses all CPUs.
	Threads int `koanf:"threads"`
}

// BayesConfig holds the probabilistic annotation collaborator settings.
type BayesConfig struct {
	// Enabled toggles annotation merging.
	Enabled bool `koanf:"enabled"`

	// URL is the collaborator's base URL.
	URL string `koanf:"url"`

	// Timeout bounds a single annotation call. The collaborator is
	// advisory: on timeout or failure the result ships unannotated.
	Timeout time.Duration `koanf:"timeout"`
}

// defaultConfig returns the built-in defaults. They are applied first
// and then overridden by the config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			ShutdownTimeout:   15 * time.Second,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Engine: *rank.DefaultConfig(),
		Cache: CacheConfig{
			Enabled:  true,
			Capacity: 1024,
			TTL:      5 * time.Minute,
		},
		Overpass: OverpassConfig{
			Enabled:       true,
			URL:           "https://overpass-api.de/api/interpreter",
			Timeout:       25 * time.Second,
			RatePerSecond: 1,
		},
		Commercial: CommercialConfig{
			Enabled: false,
			Timeout: 5 * time.Second,
		},
		SpatialDB: SpatialDBConfig{
			Enabled:   false,
			Path:      "/data/ambler.duckdb",
			MaxMemory: "1GB",
		},
		Bayes: BayesConfig{
			Enabled: false,
			Timeout: 2 * time.Second,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Server.RateLimitRequests < 0 {
		return fmt.Errorf("rate limit requests must be non-negative, got %d", c.Server.RateLimitRequests)
	}

	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	if !c.Overpass.Enabled && !c.Commercial.Enabled && !c.SpatialDB.Enabled {
		return fmt.Errorf("at least one place provider must be enabled")
	}
	if c.Overpass.Enabled {
		if c.Overpass.URL == "" {
			return fmt.Errorf("overpass URL is required when the provider is enabled")
		}
		if c.Overpass.RatePerSecond <= 0 {
			return fmt.Errorf("overpass rate must be positive, got %f", c.Overpass.RatePerSecond)
		}
	}
	if c.Commercial.Enabled {
		if c.Commercial.URL == "" {
			return fmt.Errorf("commercial places URL is required when the provider is enabled")
		}
		if c.Commercial.APIKey == "" {
			return fmt.Errorf("commercial places API key is required when the provider is enabled")
		}
	}
	if c.Bayes.Enabled && c.Bayes.URL == "" {
		return fmt.Errorf("bayes collaborator URL is required when enabled")
	}

	if c.Cache.Enabled {
		if c.Cache.Capacity <= 0 {
			return fmt.Errorf("cache capacity must be positive, got %d", c.Cache.Capacity)
		}
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache TTL must be positive, got %s", c.Cache.TTL)
		}
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
