// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

package providers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/goccy/go-json"

	"github.com/ambler-app/ambler/internal/config"
	"github.com/ambler-app/ambler/internal/geo"
	"github.com/ambler-app/ambler/internal/metrics"
	"github.com/ambler-app/ambler/internal/rank"
)

// spatialSchema holds pre-ingested places. Tags are stored as a JSON
// text blob so imports can carry arbitrary key sets without migrations.
const spatialSchema = `
CREATE TABLE IF NOT EXISTS places (
    id       VARCHAR PRIMARY KEY,
    name     VARCHAR NOT NULL,
    lat      DOUBLE NOT NULL,
    lon      DOUBLE NOT NULL,
    tags     VARCHAR
);
CREATE INDEX IF NOT EXISTS idx_places_lat ON places(lat);
CREATE INDEX IF NOT EXISTS idx_places_lon ON places(lon);
`

// SpatialDBProvider serves places from a local DuckDB file. It is the
// offline complement to the network providers: bulk OSM extracts get
// ingested once and queried by bounding box afterwards.
type SpatialDBProvider struct {
	conn *sql.DB
}

// NewSpatialDB opens (or creates) the DuckDB place database and
// ensures the schema exists.
func NewSpatialDB(cfg config.SpatialDBConfig) (*SpatialDBProvider, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", dir, err)
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, threads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open spatial database: %w", err)
	}
	if _, err := conn.Exec(spatialSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize spatial schema: %w", err)
	}

	return &SpatialDBProvider{conn: conn}, nil
}

// Name implements Provider.
func (p *SpatialDBProvider) Name() string { return "spatialdb" }

// Fetch implements Provider. The bounding box pre-filter keeps the
// query on the lat/lon indexes; exact radius filtering happens in the
// ranking pipeline.
func (p *SpatialDBProvider) Fetch(ctx context.Context, center rank.LatLon, radiusKm float64, category rank.Category) ([]rank.RawPlace, error) {
	minLat, minLon, maxLat, maxLon := geo.BoundingBox(center.Lat, center.Lon, radiusKm)

	start := time.Now()
	rows, err := p.conn.QueryContext(ctx,
		`SELECT id, name, lat, lon, tags
		   FROM places
		  WHERE lat BETWEEN ? AND ?
		    AND lon BETWEEN ? AND ?`,
		minLat, maxLat, minLon, maxLon)
	metrics.RecordDBQuery("places_bbox", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("spatial bbox query: %w", err)
	}
	defer rows.Close()

	var places []rank.RawPlace
	for rows.Next() {
		var (
			place   rank.RawPlace
			tagJSON sql.NullString
		)
		if err := rows.Scan(&place.ID, &place.Name, &place.Lat, &place.Lon, &tagJSON); err != nil {
			return nil, fmt.Errorf("scan place row: %w", err)
		}
		place.Source = rank.SourceSpatialDB
		if tagJSON.Valid && tagJSON.String != "" {
			if err := json.Unmarshal([]byte(tagJSON.String), &place.Tags); err != nil {
				// A malformed tag blob degrades one row, not the batch.
				place.Tags = nil
			}
		}
		places = append(places, place)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate place rows: %w", err)
	}
	return places, nil
}

// Ingest bulk-loads places, replacing rows with matching IDs. It is
// used by import tooling, not the request path.
func (p *SpatialDBProvider) Ingest(ctx context.Context, places []rank.RawPlace) error {
	tx, err := p.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ingest: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO places (id, name, lat, lon, tags) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare ingest: %w", err)
	}
	defer stmt.Close()

	start := time.Now()
	for _, place := range places {
		var tagJSON any
		if len(place.Tags) > 0 {
			b, err := json.Marshal(place.Tags)
			if err != nil {
				return fmt.Errorf("marshal tags for %s: %w", place.ID, err)
			}
			tagJSON = string(b)
		}
		if _, err := stmt.ExecContext(ctx, place.ID, place.Name, place.Lat, place.Lon, tagJSON); err != nil {
			return fmt.Errorf("insert place %s: %w", place.ID, err)
		}
	}
	err = tx.Commit()
	metrics.RecordDBQuery("places_ingest", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("commit ingest: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (p *SpatialDBProvider) Close() error {
	return p.conn.Close()
}
