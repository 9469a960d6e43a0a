// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with defaults: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("default logging = %+v", cfg.Logging)
	}
	if !cfg.Overpass.Enabled || cfg.Overpass.URL == "" {
		t.Errorf("overpass defaults = %+v", cfg.Overpass)
	}
	if cfg.Engine.MaxRadiusKm != 5.0 {
		t.Errorf("engine defaults not applied: %+v", cfg.Engine)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AMBLER_SERVER_PORT", "9090")
	t.Setenv("AMBLER_LOGGING_LEVEL", "debug")
	t.Setenv("AMBLER_ENGINE_MAX_RADIUS_KM", "3.5")
	t.Setenv("AMBLER_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Engine.MaxRadiusKm != 3.5 {
		t.Errorf("max radius = %v, want 3.5", cfg.Engine.MaxRadiusKm)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Server.CORSOrigins) != 2 ||
		cfg.Server.CORSOrigins[0] != want[0] || cfg.Server.CORSOrigins[1] != want[1] {
		t.Errorf("cors origins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 7070
cache:
  enabled: true
  capacity: 64
  ttl: 30s
bayes:
  enabled: true
  url: http://bayes.internal:9000
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Cache.Capacity != 64 || cfg.Cache.TTL != 30*time.Second {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if !cfg.Bayes.Enabled || cfg.Bayes.URL != "http://bayes.internal:9000" {
		t.Errorf("bayes = %+v", cfg.Bayes)
	}
	// File values lose to env values.
	t.Setenv("AMBLER_SERVER_PORT", "7171")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7171 {
		t.Errorf("env must override file: port = %d, want 7171", cfg.Server.Port)
	}
}

func TestEnvTransform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"AMBLER_SERVER_PORT", "server.port"},
		{"AMBLER_SERVER_RATE_LIMIT_REQUESTS", "server.rate_limit_requests"},
		{"AMBLER_OVERPASS_RATE_PER_SECOND", "overpass.rate_per_second"},
		{"AMBLER_ENGINE_MAX_RADIUS_KM", "engine.max_radius_km"},
		{"AMBLER_UNKNOWN_THING", ""},
	}
	for _, tt := range tests {
		if got := envTransform(tt.in); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"no providers", func(c *Config) {
			c.Overpass.Enabled = false
			c.Commercial.Enabled = false
			c.SpatialDB.Enabled = false
		}},
		{"overpass without url", func(c *Config) { c.Overpass.URL = "" }},
		{"commercial without key", func(c *Config) {
			c.Commercial.Enabled = true
			c.Commercial.URL = "https://places.example"
			c.Commercial.APIKey = ""
		}},
		{"bayes without url", func(c *Config) { c.Bayes.Enabled = true }},
		{"bad engine", func(c *Config) { c.Engine.NearKm = 10 }},
		{"zero cache capacity", func(c *Config) { c.Cache.Capacity = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
