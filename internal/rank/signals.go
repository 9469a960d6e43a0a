// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

package rank

import (
	"sort"
	"strconv"
	"strings"
)

// signalSet holds the per-place extractor outputs. Signals are computed
// once per place and reused by the scorer, the comparator, and the
// reason generator so explanations always describe the numbers that
// actually ranked the place.
type signalSet struct {
	vegFriendly bool

	openStatus OpenStatus
	hasHours   bool

	completenessPoints float64 // weighted, 0-10
	completenessFields int
	completeness01     float64
	completenessLabels []string

	quality01 float64 // scoring scale
	quality10 float64 // 0-10 scale used by comparator banding
	hasRating bool
	rawRating float64
	ratingN   float64

	popularity01  float64
	hasPopularity bool

	price01 float64 // affordability: cheap = 1, expensive = 0, unknown = 0.5

	vibeAffinity float64
	vibeKeyword  string // first positive keyword hit, for the reason label

	inferredCategory Category
}

// batchContext carries batch-level statistics the extractors need:
// the mean raw rating used as the shrinkage prior.
type batchContext struct {
	meanRating float64
	ratedCount int
}

// newBatchContext computes batch statistics over the post-filter set.
// When no place carries a rating the prior falls back to the midpoint
// of the 0-10 scale.
func newBatchContext(places []RawPlace) batchContext {
	var sum float64
	var n int
	for i := range places {
		if r, ok := parseRating(&places[i]); ok {
			sum += r
			n++
		}
	}
	bc := batchContext{ratedCount: n}
	if n > 0 {
		bc.meanRating = sum / float64(n)
	} else {
		bc.meanRating = 5.0
	}
	return bc
}

// vegKeywords are matched case-insensitively against the place name and
// tag values. The regional names come from the original corpus of known
// vegetarian chains.
var vegKeywords = []string{
	"vegan", "vegetarian", "pure veg", "plant based", "plant-based",
	"saravana", "murugan", "ananda", "bhavan",
}

// dietarySignal reports whether a place carries a positive vegetarian or
// vegan signal in its diet tags, cuisine, or name.
func dietarySignal(p *RawPlace) bool {
	for _, key := range []string{TagDietVeg, TagDietVegan} {
		switch strings.ToLower(p.Tag(key)) {
		case "yes", "only":
			return true
		}
	}

	// South Indian cuisine is overwhelmingly vegetarian-friendly and is
	// counted as a positive signal alongside the explicit labels.
	cuisine := strings.ToLower(p.Tag(TagCuisine))
	for _, c := range []string{"vegetarian", "vegan", "south_indian"} {
		if strings.Contains(cuisine, c) {
			return true
		}
	}

	haystack := strings.ToLower(p.Name) + " " + cuisine
	for _, kw := range vegKeywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

// opennessSignal inspects the opening_hours tag. A 24/7 marker is the
// only case reported as definitively open; any other non-empty value is
// a weak "has defined hours" positive. No calendar evaluation happens.
func opennessSignal(p *RawPlace) (OpenStatus, bool) {
	hours := p.Tag(TagOpeningHours)
	if hours == "" {
		return OpenStatusUnknown, false
	}
	if strings.Contains(hours, "24/7") || strings.Contains(strings.ToLower(hours), "24 hours") {
		return OpenStatusOpen, true
	}
	return OpenStatusUnknown, true
}

// completenessWeights assigns points per documented field. The maximum
// is 10; six points or three fields counts as well-documented.
var completenessWeights = []struct {
	keys   []string
	points float64
	label  string
}{
	{[]string{TagOpeningHours}, 3, "hours"},
	{[]string{TagWebsite, "contact:website"}, 2, "website"},
	{[]string{TagPhone, "contact:phone"}, 2, "phone"},
	{[]string{TagStreet, "addr:full"}, 2, "address"},
	{[]string{TagCuisine}, 1, "cuisine"},
}

const (
	completenessMaxPoints = 10.0
	wellDocumentedFields  = 3
	wellDocumentedPoints  = 6.0
)

// completenessSignal counts documented fields and returns the weighted
// points, the field count, and the labels of present fields in a fixed
// order (for the "well documented" reason).
func completenessSignal(p *RawPlace) (points float64, fields int, labels []string) {
	for _, cw := range completenessWeights {
		if p.HasAnyTag(cw.keys...) {
			points += cw.points
			fields++
			labels = append(labels, cw.label)
		}
	}
	return points, fields, labels
}

// parseRating returns the provider rating on the 0-10 scale.
func parseRating(p *RawPlace) (float64, bool) {
	return parseTagFloat(p, TagRating, 0, 10)
}

// parseTagFloat parses a numeric tag value clamped to [lo, hi].
func parseTagFloat(p *RawPlace, key string, lo, hi float64) (float64, bool) {
	raw := p.Tag(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v, true
}

// qualitySignal computes the quality estimate. With a provider rating it
// applies Bayesian shrinkage toward the batch mean:
//
//	shrunk = (v/(v+m))*R + (m/(v+m))*C
//
// where v is the rating count, R the raw rating, C the batch mean, and m
// the shrinkage constant. A five-star single-review place is pulled hard
// toward the mean; a 500-review place barely moves. Without a rating the
// completeness proxy applies, scaled down by the no-rating penalty so it
// can never outrank genuine signal of equal completeness.
func qualitySignal(p *RawPlace, completeness01 float64, bc batchContext, cfg *Config) (q01, q10, raw, n float64, hasRating bool) {
	if r, ok := parseRating(p); ok {
		v := 0.0
		if c, ok := parseTagFloat(p, TagRatingCount, 0, 1e9); ok {
			v = c
		}
		m := cfg.ShrinkageM
		shrunk := r
		if v+m > 0 {
			shrunk = (v/(v+m))*r + (m/(v+m))*bc.meanRating
		}
		return shrunk / 10, shrunk, r, v, true
	}

	proxy10 := completeness01 * 10 * cfg.NoRatingPenalty
	return proxy10 / 10, proxy10, 0, 0, false
}

// popularitySignal reads the normalized provider popularity (0-1).
func popularitySignal(p *RawPlace) (float64, bool) {
	return parseTagFloat(p, TagPopularity, 0, 1)
}

// priceSignal maps the 1-4 price tier to an affordability score:
// tier 1 scores 1.0, tier 4 scores 0. Unknown tiers are neutral.
func priceSignal(p *RawPlace) float64 {
	tier, ok := parseTagFloat(p, TagPriceTier, 1, 4)
	if !ok {
		return 0.5
	}
	return 1 - (tier-1)/3
}

// Affinity bonus caps: keyword hits can shift the static category
// affinity, but only within these bounds.
const (
	vibeKeywordBonus   = 0.15
	vibeBonusCap       = 0.30
	vibeKeywordPenalty = 0.20
	vibePenaltyCap     = 0.40
	vibeEveningBonus   = 0.10
)

// vibeSignal computes the 0-1 vibe affinity: the profile's static
// category affinity plus bounded keyword bonuses and penalties, plus the
// evening bonus for profiles that reward late-opening places. Returns
// the affinity and the first positive keyword hit for the reason label.
func vibeSignal(p *RawPlace, profile VibeProfile, placeCategory Category) (float64, string) {
	base := 0.5
	if a, ok := profile.CategoryAffinity[placeCategory]; ok {
		base = a
	}

	haystack := tagHaystack(p)

	var bonus float64
	var firstHit string
	for _, kw := range profile.PositiveKeywords {
		if strings.Contains(haystack, kw) {
			if firstHit == "" {
				firstHit = strings.ReplaceAll(kw, "_", " ")
			}
			bonus += vibeKeywordBonus
			if bonus >= vibeBonusCap {
				bonus = vibeBonusCap
				break
			}
		}
	}

	var penalty float64
	for _, kw := range profile.NegativeKeywords {
		if strings.Contains(haystack, kw) {
			penalty += vibeKeywordPenalty
			if penalty >= vibePenaltyCap {
				penalty = vibePenaltyCap
				break
			}
		}
	}

	affinity := base + bonus - penalty
	if profile.EveningBonus && opensLate(p.Tag(TagOpeningHours)) {
		affinity += vibeEveningBonus
	}

	if affinity < 0 {
		affinity = 0
	}
	if affinity > 1 {
		affinity = 1
	}
	return affinity, firstHit
}

// tagHaystack joins the lowercased name and tag values for keyword
// matching. Keys are visited in sorted order so the haystack (and with
// it the whole ranking) is identical across calls; map iteration order
// must never leak into output.
func tagHaystack(p *RawPlace) string {
	keys := make([]string, 0, len(p.Tags))
	for k := range p.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(strings.ToLower(p.Name))
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(strings.ToLower(p.Tags[k]))
	}
	return b.String()
}

// opensLate reports whether the opening-hours text suggests evening
// service: a 24/7 marker or any closing time at or after 21:00. This is
// a text scan, not calendar evaluation, so it stays deterministic.
func opensLate(hours string) bool {
	if hours == "" {
		return false
	}
	if strings.Contains(hours, "24/7") {
		return true
	}
	// Look for "-HH" closing hours like "11:00-23:00".
	for i := 0; i+2 < len(hours); i++ {
		if hours[i] != '-' {
			continue
		}
		h1, h2 := hours[i+1], hours[i+2]
		if h1 < '0' || h1 > '9' || h2 < '0' || h2 > '9' {
			continue
		}
		hh := int(h1-'0')*10 + int(h2-'0')
		if hh >= 21 || hh == 0 {
			return true
		}
	}
	return false
}

// extractSignals runs all extractors for one place.
func extractSignals(p *RawPlace, prefs Preferences, profile VibeProfile, vibeSet bool, bc batchContext, cfg *Config) signalSet {
	var s signalSet

	s.vegFriendly = dietarySignal(p)
	s.openStatus, s.hasHours = opennessSignal(p)

	points, fields, labels := completenessSignal(p)
	s.completenessPoints = points
	s.completenessFields = fields
	s.completeness01 = points / completenessMaxPoints
	s.completenessLabels = labels

	s.quality01, s.quality10, s.rawRating, s.ratingN, s.hasRating =
		qualitySignal(p, s.completeness01, bc, cfg)

	s.popularity01, s.hasPopularity = popularitySignal(p)
	s.price01 = priceSignal(p)

	s.inferredCategory = categoryOf(p)

	if vibeSet {
		s.vibeAffinity, s.vibeKeyword = vibeSignal(p, profile, placeCategoryFor(prefs, s.inferredCategory))
	} else {
		// Neutral constant: leaving vibe unset must not zero out the
		// vibe share of the total score.
		s.vibeAffinity = 0.5
	}

	return s
}

// placeCategoryFor picks the category used for affinity lookup: the hard
// category preference when set (every surviving place matched it), else
// the category inferred from the place's own tags.
func placeCategoryFor(prefs Preferences, inferred Category) Category {
	if prefs.Category != CategoryNone {
		return prefs.Category
	}
	return inferred
}
