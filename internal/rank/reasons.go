// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

package rank

import (
	"fmt"
	"sort"
	"strings"
)

// Reason priorities. Lower value wins when trimming to MaxReasons.
const (
	priorityVibe = iota
	priorityQuality
	priorityPopularity
	priorityOpenness
	priorityDistance
	priorityDietary
	priorityCompleteness
)

type reasonCandidate struct {
	priority int
	text     string
}

// Thresholds above which a signal is worth mentioning to the user.
const (
	reasonQuality10Min    = 8.0
	reasonPopularityMin   = 0.7
	reasonWalkableKm      = 1.5
	reasonRatingCountHigh = 100
)

// buildReasons produces the 1..MaxReasons human-readable explanations
// for a scored place. Candidates are collected from the strongest
// signals, ordered by fixed priority, and trimmed; a place with nothing
// notable still gets the generic fallback so the list is never empty.
func (e *Engine) buildReasons(p *ScoredPlace, prefs Preferences, profile VibeProfile, vibeSet bool) []string {
	s := p.signals
	candidates := make([]reasonCandidate, 0, 6)

	if vibeSet && s.vibeAffinity >= e.cfg.VibeReasonThreshold {
		text := fmt.Sprintf("Matches %s vibe", prefs.Vibe)
		if s.vibeKeyword != "" {
			text = fmt.Sprintf("Matches %s vibe: %s", prefs.Vibe, s.vibeKeyword)
		}
		candidates = append(candidates, reasonCandidate{priorityVibe, text})
	}

	if s.hasRating && s.quality10 >= reasonQuality10Min {
		text := fmt.Sprintf("Highly rated (%.1f)", s.rawRating)
		if s.ratingN >= reasonRatingCountHigh {
			text = fmt.Sprintf("Highly rated (%.1f, %d reviews)", s.rawRating, int(s.ratingN))
		}
		candidates = append(candidates, reasonCandidate{priorityQuality, text})
	}

	if s.hasPopularity && s.popularity01 >= reasonPopularityMin {
		candidates = append(candidates, reasonCandidate{priorityPopularity, "Popular spot"})
	}

	if s.openStatus == OpenStatusOpen {
		candidates = append(candidates, reasonCandidate{priorityOpenness, "Open 24/7"})
	}

	if p.DistanceKm <= e.cfg.WalkableReasonKm {
		text := fmt.Sprintf("Close by: %.1f km (~%d min walk)", p.DistanceKm, p.WalkMins)
		candidates = append(candidates, reasonCandidate{priorityDistance, text})
	}

	if prefs.VegOnly && s.vegFriendly {
		candidates = append(candidates, reasonCandidate{priorityDietary, "Veg-friendly"})
	}

	if s.completenessFields >= wellDocumentedFields && s.completenessPoints >= wellDocumentedPoints {
		text := "Well documented"
		if len(s.completenessLabels) > 0 {
			text = "Well documented (" + strings.Join(s.completenessLabels, ", ") + ")"
		}
		candidates = append(candidates, reasonCandidate{priorityCompleteness, text})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].priority < candidates[j].priority
	})
	if len(candidates) > e.cfg.MaxReasons {
		candidates = candidates[:e.cfg.MaxReasons]
	}

	reasons := make([]string, 0, len(candidates))
	for _, c := range candidates {
		reasons = append(reasons, c.text)
	}

	// Fallbacks keep the list non-empty: generic match first, plus the
	// walkability note when the place is within an easy stroll.
	if len(reasons) == 0 {
		reasons = append(reasons, "Matches your search")
		if p.DistanceKm < reasonWalkableKm {
			reasons = append(reasons, "Walkable")
		}
	}
	return reasons
}
