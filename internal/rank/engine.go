// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

package rank

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/ambler-app/ambler/internal/geo"
)

// Engine is the synchronous ranking pipeline: filter, score, order,
// explain. It performs no I/O and keeps no per-request state, so a
// single Engine is safe for concurrent use.
type Engine struct {
	cfg    *Config
	logger zerolog.Logger
}

// NewEngine validates the configuration and builds an engine. The
// config is cloned so later mutation by the caller cannot affect
// in-flight ranking.
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ranking config: %w", err)
	}
	return &Engine{
		cfg:    cfg.Clone(),
		logger: logger.With().Str("component", "rank").Logger(),
	}, nil
}

// EffectiveRadiusKm exposes the search radius for a preference set so
// callers can scope provider fetches to what the pipeline will keep.
func (e *Engine) EffectiveRadiusKm(prefs Preferences) float64 {
	return e.effectiveRadiusKm(prefs)
}

// Rank runs the full pipeline over a raw batch. The same batch and
// preferences always produce the same result, including reason order;
// input slice order only breaks exact ties through the deterministic
// tie break. An empty outcome is a valid result, not an error.
func (e *Engine) Rank(batch []RawPlace, prefs Preferences) RankingResult {
	outcome := e.applyFilters(batch, prefs)

	result := RankingResult{
		VegFilterWarning: outcome.vegFilterWarning,
		Strategy:         e.strategyFor(outcome.places),
		Debug: DebugCounters{
			RawCount:       outcome.rawCount,
			PostDedupCount: outcome.postDedupCount,
			EligibleCount:  len(outcome.places),
			FilterDrops:    outcome.drops,
		},
	}
	if len(outcome.places) == 0 {
		result.Others = []ScoredPlace{}
		return result
	}

	profile, vibeSet := ProfileFor(prefs.Vibe)
	radius := e.effectiveRadiusKm(prefs)
	bc := newBatchContext(outcome.places)

	scored := make([]ScoredPlace, 0, len(outcome.places))
	for i := range outcome.places {
		p := &outcome.places[i]
		d := geo.DistanceKm(prefs.SearchCenter.Lat, prefs.SearchCenter.Lon, p.Lat, p.Lon)
		signals := extractSignals(p, prefs, profile, vibeSet, bc, e.cfg)

		sp := ScoredPlace{
			ID:          p.ID,
			Name:        p.Name,
			Lat:         p.Lat,
			Lon:         p.Lon,
			Source:      p.Source,
			DistanceKm:  d,
			WalkMins:    geo.WalkMinutes(d),
			VegFriendly: signals.vegFriendly,
			OpenStatus:  signals.openStatus,
			score:       e.scorePlace(signals, d, radius, profile.Weights),
			signals:     signals,
		}
		sp.Reasons = e.buildReasons(&sp, prefs, profile, vibeSet)
		scored = append(scored, sp)
	}

	less := e.less(result.Strategy)
	sort.SliceStable(scored, func(i, j int) bool {
		return less(&scored[i], &scored[j])
	})

	if e.cfg.ShortlistSize > 0 && len(scored) > e.cfg.ShortlistSize {
		scored = scored[:e.cfg.ShortlistSize]
	}

	result.Recommended = &scored[0]
	result.Others = scored[1:]

	e.logger.Debug().
		Int("raw", result.Debug.RawCount).
		Int("eligible", result.Debug.EligibleCount).
		Str("strategy", result.Strategy.String()).
		Str("top", result.Recommended.Name).
		Msg("ranked batch")
	return result
}
