// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

package rank

import "fmt"

// Config contains all tunables for the ranking engine. Every value has a
// production default; Validate rejects configurations that would break
// scoring invariants (score bounds, curve monotonicity).
type Config struct {
	// MaxRadiusKm is the configured search radius. The effective radius
	// of a request is min(MaxRadiusKm, walk-derived distance).
	MaxRadiusKm float64 `json:"max_radius_km" koanf:"max_radius_km"`

	// NearKm and MidKm are the distance-curve breakpoints: a steep
	// segment to NearKm, a moderate linear decay to MidKm, and a sharp
	// decay from MidKm to the effective radius.
	NearKm float64 `json:"near_km" koanf:"near_km"`
	MidKm  float64 `json:"mid_km" koanf:"mid_km"`

	// DedupPrecision is the number of coordinate decimals used in the
	// de-duplication key (4 decimals ~ 11 m).
	DedupPrecision int `json:"dedup_precision" koanf:"dedup_precision"`

	// ShrinkageM is the Bayesian shrinkage constant: ratings backed by
	// fewer than ~M reviews are pulled toward the batch mean.
	ShrinkageM float64 `json:"shrinkage_m" koanf:"shrinkage_m"`

	// NoRatingPenalty scales the completeness-derived quality proxy so
	// a place with no genuine rating can never outrank an equally
	// complete place that has one.
	NoRatingPenalty float64 `json:"no_rating_penalty" koanf:"no_rating_penalty"`

	// Comparator selects the total-order strategy: "auto" picks per
	// batch by data source, "weighted" and "lexicographic" force one.
	Comparator string `json:"comparator" koanf:"comparator"`

	// QualityBand, PopularityBand, and VibeBand are the indifference
	// thresholds of the lexicographic comparator. Differences inside a
	// band defer to the next criterion.
	QualityBand    float64 `json:"quality_band" koanf:"quality_band"`
	PopularityBand float64 `json:"popularity_band" koanf:"popularity_band"`
	VibeBand       float64 `json:"vibe_band" koanf:"vibe_band"`

	// VibeFloorCommercial and VibeFloorOpen are the minimum vibe
	// affinities below which a place is excluded when a vibe is set.
	// The commercial path uses the stricter floor.
	VibeFloorCommercial float64 `json:"vibe_floor_commercial" koanf:"vibe_floor_commercial"`
	VibeFloorOpen       float64 `json:"vibe_floor_open" koanf:"vibe_floor_open"`

	// VibeReasonThreshold is the affinity above which the vibe-match
	// reason is surfaced to the user.
	VibeReasonThreshold float64 `json:"vibe_reason_threshold" koanf:"vibe_reason_threshold"`

	// WalkableReasonKm is the distance under which the "Walkable"
	// fallback reason applies.
	WalkableReasonKm float64 `json:"walkable_reason_km" koanf:"walkable_reason_km"`

	// MaxReasons bounds the reason list per place.
	MaxReasons int `json:"max_reasons" koanf:"max_reasons"`

	// ShortlistSize caps the ranked tail returned to callers. Zero
	// means unbounded.
	ShortlistSize int `json:"shortlist_size" koanf:"shortlist_size"`
}

// Comparator strategy names accepted by Config.Comparator.
const (
	ComparatorAuto          = "auto"
	ComparatorWeighted      = "weighted"
	ComparatorLexicographic = "lexicographic"
)

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxRadiusKm:         5.0,
		NearKm:              0.5,
		MidKm:               2.0,
		DedupPrecision:      4,
		ShrinkageM:          30,
		NoRatingPenalty:     0.8,
		Comparator:          ComparatorAuto,
		QualityBand:         0.3,
		PopularityBand:      0.15,
		VibeBand:            0.1,
		VibeFloorCommercial: 0.35,
		VibeFloorOpen:       0.2,
		VibeReasonThreshold: 0.75,
		WalkableReasonKm:    1.5,
		MaxReasons:          3,
		ShortlistSize:       10,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.MaxRadiusKm <= 0 {
		return fmt.Errorf("max_radius_km must be positive, got %f", c.MaxRadiusKm)
	}
	if c.NearKm <= 0 || c.MidKm <= c.NearKm || c.MaxRadiusKm <= c.MidKm {
		return fmt.Errorf("distance curve breakpoints must satisfy 0 < near (%f) < mid (%f) < max radius (%f)",
			c.NearKm, c.MidKm, c.MaxRadiusKm)
	}
	if c.DedupPrecision < 0 || c.DedupPrecision > 8 {
		return fmt.Errorf("dedup_precision must be in [0, 8], got %d", c.DedupPrecision)
	}
	if c.ShrinkageM < 0 {
		return fmt.Errorf("shrinkage_m must be non-negative, got %f", c.ShrinkageM)
	}
	if c.NoRatingPenalty <= 0 || c.NoRatingPenalty > 1 {
		return fmt.Errorf("no_rating_penalty must be in (0, 1], got %f", c.NoRatingPenalty)
	}
	switch c.Comparator {
	case ComparatorAuto, ComparatorWeighted, ComparatorLexicographic:
	default:
		return fmt.Errorf("comparator must be one of auto, weighted, lexicographic; got %q", c.Comparator)
	}
	if c.QualityBand < 0 || c.PopularityBand < 0 || c.VibeBand < 0 {
		return fmt.Errorf("indifference bands must be non-negative")
	}
	for _, floor := range []float64{c.VibeFloorCommercial, c.VibeFloorOpen} {
		if floor < 0 || floor > 1 {
			return fmt.Errorf("vibe floors must be in [0, 1], got %f", floor)
		}
	}
	if c.VibeReasonThreshold < 0 || c.VibeReasonThreshold > 1 {
		return fmt.Errorf("vibe_reason_threshold must be in [0, 1], got %f", c.VibeReasonThreshold)
	}
	if c.MaxReasons < 1 {
		return fmt.Errorf("max_reasons must be at least 1, got %d", c.MaxReasons)
	}
	if c.ShortlistSize < 0 {
		return fmt.Errorf("shortlist_size must be non-negative, got %d", c.ShortlistSize)
	}
	return nil
}

// Clone returns a copy of the configuration. All fields are value types,
// so a shallow copy is a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}
