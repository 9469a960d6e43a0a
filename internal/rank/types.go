// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

package rank

import "strings"

// Source identifies which provider supplied a place record. Most of the
// engine is source-agnostic; the quality-presence hard filter and the
// comparator selection are the two provider-aware paths.
type Source int

const (
	// SourceOSM is the public OpenStreetMap/Overpass query service.
	SourceOSM Source = iota
	// SourceSpatialDB is the local spatial database import.
	SourceSpatialDB
	// SourceCommercial is a commercial places API with first-class
	// quality fields (rating, rating count, popularity, price tier).
	SourceCommercial
)

// String returns a human-readable source name.
func (s Source) String() string {
	switch s {
	case SourceOSM:
		return "osm"
	case SourceSpatialDB:
		return "spatialdb"
	case SourceCommercial:
		return "commercial"
	default:
		return "unknown"
	}
}

// Category is the hard place-type filter. The empty category means
// "no category filter".
type Category string

const (
	CategoryNone       Category = ""
	CategoryRestaurant Category = "restaurant"
	CategoryCafe       Category = "cafe"
	CategoryGrocery    Category = "grocery"
	CategoryScenic     Category = "scenic"
	CategoryIndoor     Category = "indoor"
)

// ParseCategory returns the Category for a string value. The empty string
// parses to CategoryNone; unknown values are rejected.
func ParseCategory(s string) (Category, bool) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryNone:
		return CategoryNone, true
	case CategoryRestaurant:
		return CategoryRestaurant, true
	case CategoryCafe:
		return CategoryCafe, true
	case CategoryGrocery:
		return CategoryGrocery, true
	case CategoryScenic:
		return CategoryScenic, true
	case CategoryIndoor:
		return CategoryIndoor, true
	default:
		return CategoryNone, false
	}
}

// Vibe is the soft atmosphere preference. It biases scoring and may apply
// a confidence floor, but is never a hard category. Empty means unset.
type Vibe string

const (
	VibeNone     Vibe = ""
	VibeInsta    Vibe = "insta"
	VibeWork     Vibe = "work"
	VibeRomantic Vibe = "romantic"
	VibeBudget   Vibe = "budget"
	VibeLively   Vibe = "lively"
)

// ParseVibe returns the Vibe for a string value. The empty string parses
// to VibeNone; unknown values are rejected.
func ParseVibe(s string) (Vibe, bool) {
	switch Vibe(strings.ToLower(strings.TrimSpace(s))) {
	case VibeNone:
		return VibeNone, true
	case VibeInsta:
		return VibeInsta, true
	case VibeWork:
		return VibeWork, true
	case VibeRomantic:
		return VibeRomantic, true
	case VibeBudget:
		return VibeBudget, true
	case VibeLively:
		return VibeLively, true
	default:
		return VibeNone, false
	}
}

// OpenStatus is the simplified open-now signal. The engine only claims
// "open" for an explicit 24/7 marker; everything else is "unknown".
// True opening-hours calendar evaluation is deliberately out of scope.
type OpenStatus string

const (
	OpenStatusOpen    OpenStatus = "open"
	OpenStatusUnknown OpenStatus = "unknown"
)

// LatLon is a WGS84 coordinate pair.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Well-known optional tag keys. Providers normalize their payloads into
// these keys; everything else in the tag bag passes through untouched.
// A missing key yields "no signal", never an error.
const (
	TagRating       = "rating"       // provider rating, 0-10 scale
	TagRatingCount  = "rating_count" // number of ratings behind TagRating
	TagPopularity   = "popularity"   // provider popularity, 0-1 scale
	TagPriceTier    = "price_tier"   // 1 (cheap) to 4 (expensive)
	TagOpeningHours = "opening_hours"
	TagWebsite      = "website"
	TagPhone        = "phone"
	TagStreet       = "addr:street"
	TagCuisine      = "cuisine"
	TagAmenity      = "amenity"
	TagLeisure      = "leisure"
	TagShop         = "shop"
	TagTourism      = "tourism"
	TagDietVeg      = "diet:vegetarian"
	TagDietVegan    = "diet:vegan"
)

// RawPlace is a single untrusted place record from any provider.
// Records are constructed once per provider response, treated as
// immutable, and discarded after ranking. Name and coordinates are a
// precondition enforced by the data-fetch layer; the engine does not
// re-validate them.
type RawPlace struct {
	// ID is unique within a batch (provider-scoped identifier).
	ID string `json:"id"`

	// Name is the display name. Records without a name are rejected
	// upstream and never reach the engine.
	Name string `json:"name"`

	// Lat and Lon are WGS84 degrees.
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	// Source identifies the supplying provider.
	Source Source `json:"source"`

	// Tags is the free-form provider tag bag. Keys are provider-specific;
	// the well-known Tag* constants document the keys the engine reads.
	Tags map[string]string `json:"tags,omitempty"`
}

// Tag returns the value for a tag key, or the empty string when absent.
func (p *RawPlace) Tag(key string) string {
	if p.Tags == nil {
		return ""
	}
	return p.Tags[key]
}

// HasAnyTag reports whether any of the given keys has a non-empty value.
func (p *RawPlace) HasAnyTag(keys ...string) bool {
	for _, k := range keys {
		if p.Tag(k) != "" {
			return true
		}
	}
	return false
}

// Preferences is the validated user input driving filtering and scoring.
type Preferences struct {
	// Category is the hard type filter; CategoryNone disables it.
	Category Category `json:"category,omitempty"`

	// MaxWalkMinutes bounds the walk-time radius (5-60). It maps to a
	// maximum walk distance at the fixed 4.5 km/h pace. Zero disables
	// the walk constraint (the configured search radius still applies).
	MaxWalkMinutes int `json:"max_walk_minutes,omitempty"`

	// VegOnly requires a positive dietary signal, with the documented
	// degradation to a warning when it would empty the result.
	VegOnly bool `json:"veg_only,omitempty"`

	// Vibe is the optional soft atmosphere preference.
	Vibe Vibe `json:"vibe,omitempty"`

	// SearchCenter is the point distances are measured from.
	SearchCenter LatLon `json:"search_center"`
}

// Annotation is an optional per-place probability estimate from the
// external probabilistic re-ranking collaborator. It is merged into an
// already-ranked result by ID lookup and never re-sorts the list.
type Annotation struct {
	// Probability is the posterior mean P(user likes place).
	Probability float64 `json:"probability"`

	// P10 and P90 bound the credible interval.
	P10 float64 `json:"p10"`
	P90 float64 `json:"p90"`

	// Confidence is 1 - (P90 - P10); narrower intervals score higher.
	Confidence float64 `json:"confidence"`
}

// ScoredPlace is a ranked output record: the display fields of the raw
// place plus derived distance, signals, and reasons.
type ScoredPlace struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`

	// Source is the supplying provider, carried through for display.
	Source Source `json:"-"`

	// DistanceKm is the great-circle distance from the search center.
	DistanceKm float64 `json:"distance_km"`

	// WalkMins is the estimated walk time at the fixed pace.
	WalkMins int `json:"walk_mins"`

	// Reasons is an ordered list of 1 to 3 short justification strings.
	// It is never empty for a place present in output.
	Reasons []string `json:"reasons"`

	// VegFriendly is the dietary signal.
	VegFriendly bool `json:"veg_friendly"`

	// OpenStatus is "open" (24/7 marker) or "unknown".
	OpenStatus OpenStatus `json:"open_status"`

	// Annotation is the optional external probability estimate, set by
	// MergeAnnotations. Nil when the collaborator supplied none.
	Annotation *Annotation `json:"annotation,omitempty"`

	// score is the internal rank key in [0,100]. Not exposed: clients
	// must rely on list order, not raw numbers.
	score float64

	// signals keeps the extractor outputs for comparator banding and
	// reason generation.
	signals signalSet
}

// Score exposes the internal rank key for tests and debug snapshots.
// It is intentionally absent from the JSON envelope.
func (s *ScoredPlace) Score() float64 { return s.score }

// DebugCounters are read-only pipeline counters for operational logging.
type DebugCounters struct {
	// RawCount is the batch size before any processing.
	RawCount int `json:"raw_count"`

	// PostDedupCount is the batch size after de-duplication.
	PostDedupCount int `json:"post_dedup_count"`

	// EligibleCount is the batch size after all hard filters.
	EligibleCount int `json:"eligible_count"`

	// FilterDrops counts exclusions per pipeline stage.
	FilterDrops map[string]int `json:"filter_drops,omitempty"`
}

// RankingResult is the engine output: a single top recommendation plus
// the ranked tail. An empty result (no recommendation) is a valid
// outcome, not an error.
type RankingResult struct {
	// Recommended is the global top choice, or nil when the filtered
	// set is empty.
	Recommended *ScoredPlace `json:"recommended,omitempty"`

	// Others is the ranked tail: everything after Recommended, in rank
	// order. Recommended is never repeated here.
	Others []ScoredPlace `json:"others"`

	// VegFilterWarning is set when the dietary hard filter would have
	// emptied the result and was degraded to a warning instead.
	VegFilterWarning bool `json:"veg_filter_warning,omitempty"`

	// Strategy names the comparator variant that produced the order.
	Strategy Strategy `json:"strategy"`

	// Debug carries the pipeline counters.
	Debug DebugCounters `json:"debug"`
}

// DebugView is the read-only introspection snapshot consumed by
// operational logging: counters plus a top-5 preview of the final order.
type DebugView struct {
	RawCount       int      `json:"raw_count"`
	PostDedupCount int      `json:"post_dedup_count"`
	EligibleCount  int      `json:"eligible_count"`
	Strategy       string   `json:"strategy"`
	TopPreview     []string `json:"top_preview"`
}

// Snapshot builds the debug/introspection view of a result.
func (r *RankingResult) Snapshot() DebugView {
	v := DebugView{
		RawCount:       r.Debug.RawCount,
		PostDedupCount: r.Debug.PostDedupCount,
		EligibleCount:  r.Debug.EligibleCount,
		Strategy:       r.Strategy.String(),
	}

	preview := make([]string, 0, 5)
	if r.Recommended != nil {
		preview = append(preview, r.Recommended.Name)
	}
	for i := range r.Others {
		if len(preview) >= 5 {
			break
		}
		preview = append(preview, r.Others[i].Name)
	}
	v.TopPreview = preview
	return v
}
