// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

package rank

import "math"

// Distance curve anchor points on the 0..1 proximity scale. The curve
// rewards the first half kilometer heavily, degrades gently through the
// comfortable-walk band, then falls off toward the radius edge.
const (
	distNearFloor = 0.90 // proximity at the near boundary (0.5 km)
	distMidFloor  = 0.40 // proximity at the mid boundary (2 km)
)

// proximity01 maps distance to a 0..1 closeness value using the
// three-segment piecewise-linear curve:
//
//	0 .. NearKm       : 1.00 -> 0.90
//	NearKm .. MidKm   : 0.90 -> 0.40
//	MidKm .. radiusKm : 0.40 -> 0.00
//
// radiusKm is the effective radius for this query, so a place exactly on
// the cutoff scores zero proximity rather than a radius-dependent value.
func (e *Engine) proximity01(distanceKm, radiusKm float64) float64 {
	near, mid := e.cfg.NearKm, e.cfg.MidKm
	switch {
	case distanceKm <= 0:
		return 1.0
	case distanceKm <= near:
		return 1.0 - (1.0-distNearFloor)*(distanceKm/near)
	case distanceKm <= mid:
		return distNearFloor - (distNearFloor-distMidFloor)*((distanceKm-near)/(mid-near))
	case distanceKm < radiusKm:
		return distMidFloor * (1.0 - (distanceKm-mid)/(radiusKm-mid))
	default:
		return 0.0
	}
}

// clamp01 pins v to the unit interval.
func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// scorePlace combines the extracted signals into the 0..100 composite
// score. Weights come from the active vibe profile (or the neutral
// profile); each signal is on the unit interval, so the weighted sum
// normalized by the weight total lands on 0..1 before scaling.
func (e *Engine) scorePlace(s signalSet, distanceKm, radiusKm float64, w SignalWeights) float64 {
	prox := e.proximity01(distanceKm, radiusKm)

	dietary := 0.0
	if s.vegFriendly {
		dietary = 1.0
	}
	openness := 0.0
	switch {
	case s.openStatus == OpenStatusOpen:
		openness = 1.0
	case s.hasHours:
		openness = 0.5
	}

	sum := w.Quality*clamp01(s.quality01) +
		w.Distance*prox +
		w.Dietary*dietary +
		w.Openness*openness +
		w.Completeness*clamp01(s.completeness01) +
		w.Price*clamp01(s.price01) +
		w.Vibe*clamp01(s.vibeAffinity)

	total := w.Sum()
	if total <= 0 {
		return 0
	}
	score := 100 * sum / total
	return math.Max(0, math.Min(100, score))
}
