// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

// Package main is the bulk place importer. It loads a JSON-lines
// export (one place per line, the rank.RawPlace shape) into the local
// DuckDB spatial database so the server can serve offline extracts.
//
// Usage:
//
//	ambler-import -file places.jsonl
//
// The spatial database path comes from the regular configuration
// (AMBLER_SPATIALDB_PATH or config.yaml). Re-importing the same file is
// idempotent: rows replace by place ID.
package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/ambler-app/ambler/internal/config"
	"github.com/ambler-app/ambler/internal/logging"
	"github.com/ambler-app/ambler/internal/providers"
	"github.com/ambler-app/ambler/internal/rank"
)

// batchSize bounds one ingest transaction. Large extracts stream in
// chunks so a failure loses at most one batch.
const batchSize = 5000

func main() {
	filePath := flag.String("file", "", "JSON-lines place export to import")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logging.Init(logCfg)

	if *filePath == "" {
		logging.Fatal().Msg("missing -file argument")
	}

	db, err := providers.NewSpatialDB(cfg.SpatialDB)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open spatial database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn().Err(err).Msg("close spatial database")
		}
	}()

	f, err := os.Open(*filePath)
	if err != nil {
		logging.Fatal().Err(err).Str("file", *filePath).Msg("failed to open import file")
	}
	defer f.Close()

	start := time.Now()
	imported, skipped, err := importFile(context.Background(), db, f)
	if err != nil {
		logging.Fatal().Err(err).Msg("import failed")
	}
	logging.Info().
		Int("imported", imported).
		Int("skipped", skipped).
		Dur("elapsed", time.Since(start)).
		Msg("import complete")
}

// importFile streams places from r into the spatial database. Lines
// that fail to parse or lack the mandatory fields are skipped with a
// warning rather than aborting a multi-hour import.
func importFile(ctx context.Context, db *providers.SpatialDBProvider, r *os.File) (imported, skipped int, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	batch := make([]rank.RawPlace, 0, batchSize)
	line := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := db.Ingest(ctx, batch); err != nil {
			return err
		}
		imported += len(batch)
		logging.Info().Int("imported", imported).Msg("progress")
		batch = batch[:0]
		return nil
	}

	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var place rank.RawPlace
		if err := json.Unmarshal(raw, &place); err != nil {
			logging.Warn().Err(err).Int("line", line).Msg("skipping malformed line")
			skipped++
			continue
		}
		if place.ID == "" || place.Name == "" || (place.Lat == 0 && place.Lon == 0) {
			logging.Warn().Int("line", line).Msg("skipping place without id, name, or coordinates")
			skipped++
			continue
		}
		place.Source = rank.SourceSpatialDB

		batch = append(batch, place)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return imported, skipped, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return imported, skipped, err
	}
	return imported, skipped, flush()
}
