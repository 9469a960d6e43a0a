// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

package metrics

import (
	"errors"
	"testing"
	"time"
)

// The recorder helpers drive package-level promauto collectors, so these
// tests assert they do not panic on every path rather than inspecting
// counter values (which accumulate across the test binary).

func TestRecordAPIRequest(t *testing.T) {
	RecordAPIRequest("POST", "/api/v1/recommend", "200", 25*time.Millisecond)
	RecordAPIRequest("GET", "/api/v1/health/live", "503", time.Millisecond)
}

func TestRecordRanking(t *testing.T) {
	RecordRanking("weighted", 42, false, false, 3*time.Millisecond)
	RecordRanking("lexicographic", 0, true, false, time.Millisecond)
	RecordRanking("weighted", 10, false, true, time.Millisecond)
}

func TestRecordFilterDrops(t *testing.T) {
	RecordFilterDrops(map[string]int{"dedup": 3, "radius": 0, "dietary": 2})
	RecordFilterDrops(nil)
}

func TestRecordProviderFetch(t *testing.T) {
	RecordProviderFetch("overpass", 57, 800*time.Millisecond, nil)
	RecordProviderFetch("commercial", 0, 100*time.Millisecond, errors.New("upstream 502"))
}

func TestRecordAnnotationCall(t *testing.T) {
	RecordAnnotationCall(40*time.Millisecond, nil)
	RecordAnnotationCall(5*time.Millisecond, errors.New("circuit open"))
}

func TestRecordDBQuery(t *testing.T) {
	RecordDBQuery("bbox_select", 2*time.Millisecond, nil)
	RecordDBQuery("bbox_select", time.Millisecond, errors.New("table missing"))
}
