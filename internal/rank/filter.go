// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

package rank

import (
	"math"
	"strconv"
	"strings"

	"github.com/ambler-app/ambler/internal/geo"
)

// Filter stage names used in drop counters and metrics labels.
const (
	stageDedup    = "dedup"
	stageCategory = "category"
	stageQuality  = "quality_presence"
	stageRadius   = "radius"
	stageDietary  = "dietary"
	stageVibe     = "vibe_floor"
)

// categoryKeywords maps each category to the type/text keywords a place
// must match when that category is the hard filter. Matching inspects the
// amenity, leisure, shop, and tourism tags plus the cuisine text.
var categoryKeywords = map[Category][]string{
	CategoryRestaurant: {
		"restaurant", "bistro", "bar", "pub", "fast_food", "food_court",
		"diner", "eatery", "biergarten",
	},
	CategoryCafe: {
		"cafe", "coffee", "tea", "bakery", "coffee_shop", "juice",
	},
	CategoryGrocery: {
		"supermarket", "grocery", "convenience", "greengrocer",
		"marketplace", "deli",
	},
	CategoryScenic: {
		"park", "garden", "viewpoint", "beach", "nature", "attraction",
		"temple", "church", "monument", "waterfront",
	},
	CategoryIndoor: {
		"museum", "library", "gallery", "cinema", "theatre", "mall",
		"arcade", "aquarium", "planetarium",
	},
}

// typeText concatenates the tags that describe what kind of place this
// is. Name is deliberately excluded: "Park Street Cafe" is not a park.
func typeText(p *RawPlace) string {
	parts := make([]string, 0, 5)
	for _, key := range []string{TagAmenity, TagLeisure, TagShop, TagTourism, TagCuisine} {
		if v := p.Tag(key); v != "" {
			parts = append(parts, strings.ToLower(v))
		}
	}
	return strings.Join(parts, " ")
}

// matchesCategory reports whether the place's type text matches the
// keyword set for a category.
func matchesCategory(p *RawPlace, cat Category) bool {
	text := typeText(p)
	if text == "" {
		return false
	}
	for _, kw := range categoryKeywords[cat] {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// categoryOf infers a place's category from its type text, in the fixed
// category order so inference is deterministic. Returns CategoryNone
// when nothing matches.
func categoryOf(p *RawPlace) Category {
	for _, cat := range []Category{
		CategoryRestaurant, CategoryCafe, CategoryGrocery,
		CategoryScenic, CategoryIndoor,
	} {
		if matchesCategory(p, cat) {
			return cat
		}
	}
	return CategoryNone
}

// dedupKey builds the composite de-duplication key: lowercased name plus
// coordinates rounded to the configured precision. Providers often return
// the same physical place under several tag sets; rounding to 4 decimals
// (~11 m) collapses those without merging distinct neighbors.
func dedupKey(p *RawPlace, precision int) string {
	scale := math.Pow10(precision)
	lat := math.Round(p.Lat*scale) / scale
	lon := math.Round(p.Lon*scale) / scale

	var b strings.Builder
	b.WriteString(strings.ToLower(strings.TrimSpace(p.Name)))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(lat, 'f', precision, 64))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(lon, 'f', precision, 64))
	return b.String()
}

// Dedup removes near-identical records, keeping the first seen. Running
// it twice is a no-op. Exposed for providers that merge multiple pages
// before handing the batch to the engine.
func Dedup(places []RawPlace, precision int) []RawPlace {
	seen := make(map[string]struct{}, len(places))
	out := make([]RawPlace, 0, len(places))
	for i := range places {
		key := dedupKey(&places[i], precision)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, places[i])
	}
	return out
}

// filterOutcome is the result of the single-pass eligibility pipeline.
type filterOutcome struct {
	places           []RawPlace
	rawCount         int
	postDedupCount   int
	vegFilterWarning bool
	drops            map[string]int
}

// effectiveRadiusKm computes the hard cutoff: the tighter of the
// configured search radius and the preference-derived max walk distance.
func (e *Engine) effectiveRadiusKm(prefs Preferences) float64 {
	radius := e.cfg.MaxRadiusKm
	if prefs.MaxWalkMinutes > 0 {
		if walk := geo.MaxWalkDistanceKm(prefs.MaxWalkMinutes); walk < radius {
			radius = walk
		}
	}
	return radius
}

// applyFilters runs the eligibility pipeline in its fixed order: dedup,
// category, quality presence, radius, dietary, vibe floor. Hard-filtered
// places are excluded before scoring; only the dietary filter carries the
// documented degradation to a warning.
func (e *Engine) applyFilters(batch []RawPlace, prefs Preferences) filterOutcome {
	out := filterOutcome{
		rawCount: len(batch),
		drops:    make(map[string]int),
	}

	// 1. Dedup: keep first-seen per composite key.
	deduped := Dedup(batch, e.cfg.DedupPrecision)
	out.postDedupCount = len(deduped)
	out.drops[stageDedup] = len(batch) - len(deduped)

	radius := e.effectiveRadiusKm(prefs)

	kept := make([]RawPlace, 0, len(deduped))
	for i := range deduped {
		p := &deduped[i]

		// 2. Hard category filter.
		if prefs.Category != CategoryNone && !matchesCategory(p, prefs.Category) {
			out.drops[stageCategory]++
			continue
		}

		// 3. Hard quality-presence filter: the commercial provider
		// always supplies a trust signal, so a commercial record with
		// neither rating nor popularity is excluded outright.
		if p.Source == SourceCommercial && !p.HasAnyTag(TagRating, TagPopularity) {
			out.drops[stageQuality]++
			continue
		}

		// 4. Hard radius/walk-time cutoff (not merely downweighted).
		d := geo.DistanceKm(prefs.SearchCenter.Lat, prefs.SearchCenter.Lon, p.Lat, p.Lon)
		if d > radius {
			out.drops[stageRadius]++
			continue
		}

		kept = append(kept, deduped[i])
	}

	// 5. Hard dietary filter, applied over the hard-filter survivors.
	if prefs.VegOnly {
		veg := make([]RawPlace, 0, len(kept))
		for i := range kept {
			if dietarySignal(&kept[i]) {
				veg = append(veg, kept[i])
			}
		}
		switch {
		case len(veg) > 0:
			out.drops[stageDietary] = len(kept) - len(veg)
			kept = veg
		case len(kept) > 0:
			// Degradation: an honestly-labeled imperfect result beats
			// a silently empty one.
			out.vegFilterWarning = true
		}
	}

	// 6. Soft vibe-confidence floor: excludes strong anti-affinity when
	// a vibe is set. Commercial records use the stricter floor. Runs
	// last, so a degraded dietary result can still be floored to empty.
	if profile, vibeSet := ProfileFor(prefs.Vibe); vibeSet && prefs.Vibe != VibeNone {
		floored := make([]RawPlace, 0, len(kept))
		for i := range kept {
			p := &kept[i]
			affinity, _ := vibeSignal(p, profile, placeCategoryFor(prefs, categoryOf(p)))
			floor := e.cfg.VibeFloorOpen
			if p.Source == SourceCommercial {
				floor = e.cfg.VibeFloorCommercial
			}
			if affinity < floor {
				out.drops[stageVibe]++
				continue
			}
			floored = append(floored, kept[i])
		}
		kept = floored
	}

	out.places = kept
	return out
}
