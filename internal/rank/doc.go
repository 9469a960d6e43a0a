// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

// Package rank implements the point-of-interest ranking pipeline:
// de-duplication, hard eligibility filters, per-place signal extraction,
// composite scoring, comparator-based ordering, and human-readable
// reason generation.
//
// The pipeline is synchronous, deterministic, and free of I/O. Callers
// fetch candidate places from providers, hand the raw batch to
// Engine.Rank with the user's preferences, and optionally merge external
// probability annotations into the result afterwards.
package rank
