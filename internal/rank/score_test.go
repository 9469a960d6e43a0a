// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

package rank

import (
	"math"
	"testing"
)

func TestProximityCurve(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	radius := 5.0

	tests := []struct {
		name string
		km   float64
		want float64
	}{
		{"at center", 0, 1.0},
		{"near boundary", 0.5, 0.90},
		{"mid boundary", 2.0, 0.40},
		{"at radius", 5.0, 0.0},
		{"beyond radius", 6.0, 0.0},
		// Linear midpoints of each segment.
		{"near segment midpoint", 0.25, 0.95},
		{"mid segment midpoint", 1.25, 0.65},
		{"far segment midpoint", 3.5, 0.20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := e.proximity01(tt.km, radius); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("proximity01(%v) = %v, want %v", tt.km, got, tt.want)
			}
		})
	}
}

func TestProximityMonotonic(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	radius := 5.0
	prev := math.Inf(1)
	for km := 0.0; km <= radius; km += 0.05 {
		got := e.proximity01(km, radius)
		if got > prev {
			t.Fatalf("proximity increased at %v km: %v > %v", km, got, prev)
		}
		prev = got
	}
}

func TestScorePlaceBounds(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	w := neutralWeights

	perfect := signalSet{
		vegFriendly:    true,
		openStatus:     OpenStatusOpen,
		completeness01: 1,
		quality01:      1,
		price01:        1,
		vibeAffinity:   1,
	}
	if got := e.scorePlace(perfect, 0, 5.0, w); math.Abs(got-100) > 1e-9 {
		t.Errorf("perfect signals at center = %v, want 100", got)
	}

	worst := signalSet{openStatus: OpenStatusUnknown}
	if got := e.scorePlace(worst, 5.0, 5.0, w); got != 0 {
		t.Errorf("zero signals at radius edge = %v, want 0", got)
	}
}

func TestScorePlaceDistanceDominates(t *testing.T) {
	t.Parallel()

	// With identical signals, the nearer place must score strictly
	// higher anywhere inside the radius.
	e := newTestEngine(t, nil)
	s := signalSet{quality01: 0.7, completeness01: 0.5, price01: 0.5, vibeAffinity: 0.5}

	near := e.scorePlace(s, 0.2, 5.0, neutralWeights)
	mid := e.scorePlace(s, 1.0, 5.0, neutralWeights)
	far := e.scorePlace(s, 4.5, 5.0, neutralWeights)
	if !(near > mid && mid > far) {
		t.Errorf("scores not ordered by distance: near=%v mid=%v far=%v", near, mid, far)
	}
}
