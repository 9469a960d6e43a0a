// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ambler-app/ambler/internal/config"
	"github.com/ambler-app/ambler/internal/rank"
)

func testOverpassConfig(url string) config.OverpassConfig {
	return config.OverpassConfig{
		Enabled:       true,
		URL:           url,
		Timeout:       5 * time.Second,
		RatePerSecond: 100, // fast enough that tests never block on the limiter
	}
}

func TestBuildOverpassQuery(t *testing.T) {
	t.Parallel()

	center := rank.LatLon{Lat: 13.0418, Lon: 80.2341}

	t.Run("category hint narrows selectors", func(t *testing.T) {
		t.Parallel()
		q := buildOverpassQuery(center, 1.5, rank.CategoryCafe)
		if !strings.HasPrefix(q, "[out:json][timeout:25];(") {
			t.Errorf("query missing header: %q", q)
		}
		if !strings.HasSuffix(q, ");out center;") {
			t.Errorf("query missing footer: %q", q)
		}
		if !strings.Contains(q, "around:1500,13.041800,80.234100") {
			t.Errorf("query missing around clause: %q", q)
		}
		if !strings.Contains(q, `cafe`) {
			t.Errorf("cafe query missing cafe selector: %q", q)
		}
		if strings.Contains(q, "supermarket") {
			t.Errorf("cafe query leaked grocery selector: %q", q)
		}
	})

	t.Run("no category uses broad selectors", func(t *testing.T) {
		t.Parallel()
		q := buildOverpassQuery(center, 2.0, rank.CategoryNone)
		for _, want := range []string{"restaurant", "supermarket", "park", "viewpoint"} {
			if !strings.Contains(q, want) {
				t.Errorf("broad query missing %q: %q", want, q)
			}
		}
	})

	t.Run("queries nodes and ways", func(t *testing.T) {
		t.Parallel()
		q := buildOverpassQuery(center, 1.0, rank.CategoryScenic)
		if !strings.Contains(q, "node[") || !strings.Contains(q, "way[") {
			t.Errorf("query should cover both nodes and ways: %q", q)
		}
	})
}

func TestNormalizeOverpassElement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		el       overpassElement
		wantOK   bool
		wantID   string
		wantLat  float64
		wantTags int
	}{
		{
			name: "named node",
			el: overpassElement{
				Type: "node", ID: 42, Lat: 13.05, Lon: 80.24,
				Tags: map[string]string{"name": "Saravana Bhavan", "amenity": "restaurant"},
			},
			wantOK: true, wantID: "node/42", wantLat: 13.05, wantTags: 1,
		},
		{
			name: "way uses center coordinate",
			el: overpassElement{
				Type: "way", ID: 7, Center: &overpassCenter{Lat: 13.06, Lon: 80.25},
				Tags: map[string]string{"name": "Marina Park", "leisure": "park"},
			},
			wantOK: true, wantID: "way/7", wantLat: 13.06, wantTags: 1,
		},
		{
			name: "unnamed element skipped",
			el: overpassElement{
				Type: "node", ID: 9, Lat: 13.05, Lon: 80.24,
				Tags: map[string]string{"amenity": "restaurant"},
			},
			wantOK: false,
		},
		{
			name: "zero coordinate skipped",
			el: overpassElement{
				Type: "node", ID: 10,
				Tags: map[string]string{"name": "Null Island Cafe"},
			},
			wantOK: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := normalizeOverpassElement(tc.el)
			if ok != tc.wantOK {
				t.Fatalf("normalizeOverpassElement() ok = %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if got.ID != tc.wantID {
				t.Errorf("ID = %q, want %q", got.ID, tc.wantID)
			}
			if got.Lat != tc.wantLat {
				t.Errorf("Lat = %v, want %v", got.Lat, tc.wantLat)
			}
			if got.Source != rank.SourceOSM {
				t.Errorf("Source = %v, want SourceOSM", got.Source)
			}
			if len(got.Tags) != tc.wantTags {
				t.Errorf("len(Tags) = %d, want %d (name must be stripped)", len(got.Tags), tc.wantTags)
			}
			if _, hasName := got.Tags["name"]; hasName {
				t.Error("Tags should not carry the name key")
			}
		})
	}
}

func TestOverpassFetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error = %v", err)
		}
		if data := r.PostFormValue("data"); !strings.Contains(data, "out:json") {
			t.Errorf("form data is not a QL query: %q", data)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"elements": [
				{"type": "node", "id": 1, "lat": 13.045, "lon": 80.235,
				 "tags": {"name": "Amethyst Cafe", "amenity": "cafe", "opening_hours": "Mo-Su 08:00-22:00"}},
				{"type": "node", "id": 2, "lat": 13.046, "lon": 80.236,
				 "tags": {"amenity": "cafe"}},
				{"type": "way", "id": 3, "center": {"lat": 13.047, "lon": 80.237},
				 "tags": {"name": "Semmozhi Garden", "leisure": "garden"}}
			]
		}`))
	}))
	defer srv.Close()

	p := NewOverpass(testOverpassConfig(srv.URL))
	got, err := p.Fetch(context.Background(), testCenter(), 1.5, rank.CategoryNone)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Fetch() returned %d places, want 2 (unnamed skipped)", len(got))
	}
	if got[0].Name != "Amethyst Cafe" || got[0].Tag(rank.TagOpeningHours) != "Mo-Su 08:00-22:00" {
		t.Errorf("first place = %+v, want Amethyst Cafe with opening hours tag", got[0])
	}
	if got[1].ID != "way/3" || got[1].Lat != 13.047 {
		t.Errorf("second place = %+v, want way/3 at its center", got[1])
	}
}

func TestOverpassFetchUpstreamError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewOverpass(testOverpassConfig(srv.URL))
	if _, err := p.Fetch(context.Background(), testCenter(), 1.5, rank.CategoryNone); err == nil {
		t.Fatal("Fetch() error = nil, want error on non-200 status")
	}
}
