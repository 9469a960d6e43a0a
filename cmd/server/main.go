// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

// Package main is the entry point for the Ambler server.
//
// Ambler recommends walkable points of interest around a search center.
// It fetches candidate places from configurable providers (OpenStreetMap
// Overpass, a commercial places API, a local DuckDB import), ranks them
// with a deterministic scoring pipeline, and serves the result over a
// small REST API.
//
// # Application Architecture
//
// The server initializes components in this order:
//
//  1. Configuration: layered defaults, YAML file, environment (koanf v2)
//  2. Logging: zerolog, JSON or console format
//  3. Ranking engine: filter, score, and order candidate places
//  4. Providers: the enabled place data sources
//  5. Result cache: LRU+TTL over identical searches
//  6. Annotator (optional): the probabilistic re-ranking collaborator
//  7. HTTP server: chi router with the recommend and health endpoints
//
// # Configuration
//
// Configuration is loaded via koanf v2 with layered sources (highest
// priority wins): environment variables (AMBLER_ prefix), a config file
// (AMBLER_CONFIG or ./config.yaml), and built-in defaults.
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: it stops
// accepting connections, waits for in-flight requests up to the
// configured shutdown timeout, then closes the providers.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ambler-app/ambler/internal/api"
	"github.com/ambler-app/ambler/internal/bayes"
	"github.com/ambler-app/ambler/internal/cache"
	"github.com/ambler-app/ambler/internal/config"
	"github.com/ambler-app/ambler/internal/logging"
	"github.com/ambler-app/ambler/internal/providers"
	"github.com/ambler-app/ambler/internal/rank"
)

// Build metadata, injected via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logging.Init(logCfg)
	logging.Info().
		Str("version", version).
		Str("commit", commit).
		Msg("starting ambler")

	engine, err := rank.NewEngine(&cfg.Engine, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build ranking engine")
	}

	fetcher, closeProviders, err := buildProviders(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build providers")
	}
	defer closeProviders()

	var results *cache.ResultCache
	if cfg.Cache.Enabled {
		results = cache.New(cfg.Cache.Capacity, cfg.Cache.TTL)
	}

	var annotator api.Annotator
	if cfg.Bayes.Enabled {
		annotator = bayes.NewClient(cfg.Bayes, logging.Logger())
		logging.Info().Str("url", cfg.Bayes.URL).Msg("annotation collaborator enabled")
	}

	handler := api.NewHandler(engine, fetcher, annotator, results)
	mw := api.NewMiddleware(api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
		RateLimitRequests:  cfg.Server.RateLimitRequests,
		RateLimitWindow:    cfg.Server.RateLimitWindow,
	})
	router := api.NewRouter(handler, mw)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if results != nil {
		go cacheJanitor(ctx, results, cfg.Cache.TTL)
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("http server listening")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logging.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("http server failed")
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
	logging.Info().Msg("application stopped gracefully")
}

// buildProviders wires the enabled place sources into one fetcher and
// returns a close function for those holding resources.
func buildProviders(cfg *config.Config) (*providers.Multi, func(), error) {
	var (
		sources []providers.Provider
		closers []func() error
	)

	if cfg.Overpass.Enabled {
		sources = append(sources, providers.NewOverpass(cfg.Overpass))
		logging.Info().Str("url", cfg.Overpass.URL).Msg("overpass provider enabled")
	}
	if cfg.Commercial.Enabled {
		sources = append(sources, providers.NewCommercial(cfg.Commercial))
		logging.Info().Msg("commercial provider enabled")
	}
	if cfg.SpatialDB.Enabled {
		spatial, err := providers.NewSpatialDB(cfg.SpatialDB)
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, spatial)
		closers = append(closers, spatial.Close)
		logging.Info().Str("path", cfg.SpatialDB.Path).Msg("spatial database provider enabled")
	}

	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logging.Warn().Err(err).Msg("provider close failed")
			}
		}
	}
	return providers.NewMulti(logging.Logger(), sources...), closeAll, nil
}

// cacheJanitor evicts expired result cache entries on a fixed cadence.
func cacheJanitor(ctx context.Context, results *cache.ResultCache, ttl time.Duration) {
	interval := ttl
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := results.CleanupExpired(); n > 0 {
				logging.Debug().Int("evicted", n).Msg("expired cache entries removed")
			}
		}
	}
}
