// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

package providers

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ambler-app/ambler/internal/config"
	"github.com/ambler-app/ambler/internal/rank"
)

func newTestSpatialDB(t *testing.T) *SpatialDBProvider {
	t.Helper()

	db, err := NewSpatialDB(config.SpatialDBConfig{
		Enabled:   true,
		Path:      filepath.Join(t.TempDir(), "test.duckdb"),
		MaxMemory: "256MB",
		Threads:   1,
	})
	if err != nil {
		t.Fatalf("NewSpatialDB() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func TestSpatialDBIngestAndFetch(t *testing.T) {
	db := newTestSpatialDB(t)
	ctx := context.Background()

	places := []rank.RawPlace{
		{ID: "osm/1", Name: "Ponni Mess", Lat: 13.0420, Lon: 80.2345, Source: rank.SourceSpatialDB,
			Tags: map[string]string{rank.TagAmenity: "restaurant", rank.TagCuisine: "south_indian"}},
		{ID: "osm/2", Name: "Besant Gardens", Lat: 13.0500, Lon: 80.2400, Source: rank.SourceSpatialDB,
			Tags: map[string]string{rank.TagLeisure: "garden"}},
		{ID: "osm/3", Name: "Far Away Diner", Lat: 14.5000, Lon: 81.5000, Source: rank.SourceSpatialDB},
	}
	if err := db.Ingest(ctx, places); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	got, err := db.Fetch(ctx, rank.LatLon{Lat: 13.0418, Lon: 80.2341}, 2.0, rank.CategoryNone)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Fetch() returned %d places, want 2 inside the bounding box", len(got))
	}

	byID := make(map[string]rank.RawPlace, len(got))
	for _, p := range got {
		if p.Source != rank.SourceSpatialDB {
			t.Errorf("place %s Source = %v, want SourceSpatialDB", p.ID, p.Source)
		}
		byID[p.ID] = p
	}
	mess, ok := byID["osm/1"]
	if !ok {
		t.Fatal("osm/1 missing from bbox result")
	}
	if mess.Tag(rank.TagCuisine) != "south_indian" {
		t.Errorf("tags did not survive the round trip: %v", mess.Tags)
	}
	if _, far := byID["osm/3"]; far {
		t.Error("place outside the bounding box was returned")
	}
}

func TestSpatialDBIngestReplacesByID(t *testing.T) {
	db := newTestSpatialDB(t)
	ctx := context.Background()

	first := []rank.RawPlace{{ID: "osm/9", Name: "Old Name", Lat: 13.0420, Lon: 80.2345}}
	if err := db.Ingest(ctx, first); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	second := []rank.RawPlace{{ID: "osm/9", Name: "New Name", Lat: 13.0420, Lon: 80.2345}}
	if err := db.Ingest(ctx, second); err != nil {
		t.Fatalf("re-Ingest() error = %v", err)
	}

	got, err := db.Fetch(ctx, rank.LatLon{Lat: 13.0418, Lon: 80.2341}, 2.0, rank.CategoryNone)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Fetch() returned %d places, want 1 after replace", len(got))
	}
	if got[0].Name != "New Name" {
		t.Errorf("Name = %q, want New Name", got[0].Name)
	}
}
