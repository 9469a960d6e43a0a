// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

package rank

import (
	"fmt"
	"math"
	"strconv"
)

// Strategy identifies which ordering the engine applied to a batch.
type Strategy int

const (
	// StrategyWeighted orders by the composite 0..100 score.
	StrategyWeighted Strategy = iota
	// StrategyLexicographic orders by quality, popularity, and vibe in
	// turn, treating values within an indifference band as tied.
	StrategyLexicographic
)

func (s Strategy) String() string {
	switch s {
	case StrategyWeighted:
		return "weighted"
	case StrategyLexicographic:
		return "lexicographic"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the strategy by name so API payloads stay
// readable and stable if the enum is ever reordered.
func (s Strategy) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(s.String())), nil
}

// UnmarshalJSON accepts the names MarshalJSON emits.
func (s *Strategy) UnmarshalJSON(b []byte) error {
	name, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("strategy must be a string: %w", err)
	}
	switch name {
	case "lexicographic":
		*s = StrategyLexicographic
	default:
		*s = StrategyWeighted
	}
	return nil
}

// strategyFor resolves the configured comparator for a batch. In auto
// mode the commercial provider's richer trust signals justify the
// lexicographic ordering; sparse open-data batches use the weighted
// score, which degrades more gracefully when signals are missing.
func (e *Engine) strategyFor(batch []RawPlace) Strategy {
	switch e.cfg.Comparator {
	case ComparatorWeighted:
		return StrategyWeighted
	case ComparatorLexicographic:
		return StrategyLexicographic
	}
	for i := range batch {
		if batch[i].Source != SourceCommercial {
			return StrategyWeighted
		}
	}
	if len(batch) == 0 {
		return StrategyWeighted
	}
	return StrategyLexicographic
}

// tieBreak is the shared deterministic tail of both orderings: nearer
// first, then name, then ID. Two inputs differing only in slice order
// must produce identical output order.
func tieBreak(a, b *ScoredPlace) bool {
	if a.DistanceKm != b.DistanceKm {
		return a.DistanceKm < b.DistanceKm
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}

// lessWeighted orders by composite score descending, falling through to
// the deterministic tie break.
func lessWeighted(a, b *ScoredPlace) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return tieBreak(a, b)
}

// lessLexicographic orders by quality, then popularity, then vibe
// affinity, each descending with an indifference band: differences
// smaller than the band do not count as a win and defer to the next
// criterion. Places the criteria cannot separate fall through to the
// deterministic tie break.
func (e *Engine) lessLexicographic(a, b *ScoredPlace) bool {
	if d := a.signals.quality10 - b.signals.quality10; math.Abs(d) >= e.cfg.QualityBand {
		return d > 0
	}
	if d := a.signals.popularity01 - b.signals.popularity01; math.Abs(d) >= e.cfg.PopularityBand {
		return d > 0
	}
	if d := a.signals.vibeAffinity - b.signals.vibeAffinity; math.Abs(d) >= e.cfg.VibeBand {
		return d > 0
	}
	return tieBreak(a, b)
}

// less returns the comparator for the chosen strategy.
func (e *Engine) less(strategy Strategy) func(a, b *ScoredPlace) bool {
	if strategy == StrategyLexicographic {
		return e.lessLexicographic
	}
	return lessWeighted
}
