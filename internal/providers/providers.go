// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

// Package providers implements the place data sources that feed the
// ranking engine: the OpenStreetMap Overpass API, a commercial places
// API, and a local DuckDB spatial import. Each provider normalizes its
// payload into rank.RawPlace records with the well-known tag keys; the
// engine never sees provider-specific shapes.
package providers

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ambler-app/ambler/internal/metrics"
	"github.com/ambler-app/ambler/internal/rank"
)

// Provider fetches candidate places around a search center.
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// Fetch returns raw places within radiusKm of center. Category is
	// a hint for narrowing the upstream query; the engine re-checks it.
	Fetch(ctx context.Context, center rank.LatLon, radiusKm float64, category rank.Category) ([]rank.RawPlace, error)
}

// Multi fans a fetch out to several providers and concatenates their
// results. A provider failure is logged and skipped rather than failing
// the whole fetch; Multi errors only when every provider fails.
type Multi struct {
	providers []Provider
	logger    zerolog.Logger
}

// NewMulti builds a Multi over the enabled providers.
func NewMulti(logger zerolog.Logger, providers ...Provider) *Multi {
	return &Multi{
		providers: providers,
		logger:    logger.With().Str("component", "providers").Logger(),
	}
}

// Fetch queries all providers sequentially. Order is stable (the
// configured provider order) so downstream de-duplication keeps the
// same record across identical requests.
func (m *Multi) Fetch(ctx context.Context, center rank.LatLon, radiusKm float64, category rank.Category) ([]rank.RawPlace, error) {
	var out []rank.RawPlace
	var lastErr error
	succeeded := 0

	for _, p := range m.providers {
		start := time.Now()
		places, err := p.Fetch(ctx, center, radiusKm, category)
		metrics.RecordProviderFetch(p.Name(), len(places), time.Since(start), err)
		if err != nil {
			lastErr = err
			m.logger.Warn().Err(err).Str("provider", p.Name()).Msg("provider fetch failed")
			continue
		}
		succeeded++
		out = append(out, places...)
	}

	if succeeded == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}
