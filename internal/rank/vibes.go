// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

package rank

// SignalWeights is a vibe profile's weight distribution over the scoring
// signals. Weights are relative: the scorer divides by their sum, so a
// profile never needs to sum to any particular total.
type SignalWeights struct {
	// Quality weights the (shrunk) rating or its completeness proxy.
	Quality float64 `json:"quality"`

	// Distance weights the three-segment proximity curve.
	Distance float64 `json:"distance"`

	// Dietary weights the veg-friendliness signal.
	Dietary float64 `json:"dietary"`

	// Openness weights the open-status signal.
	Openness float64 `json:"openness"`

	// Completeness weights the documentation-completeness signal.
	Completeness float64 `json:"completeness"`

	// Price weights the affordability signal from the price tier tag.
	Price float64 `json:"price"`

	// Vibe weights the vibe-affinity signal. When no vibe is selected
	// the affinity degrades to a neutral constant rather than zeroing
	// out this share of the total.
	Vibe float64 `json:"vibe"`
}

// Sum returns the total of all weights.
func (w SignalWeights) Sum() float64 {
	return w.Quality + w.Distance + w.Dietary + w.Openness +
		w.Completeness + w.Price + w.Vibe
}

// VibeProfile is the static per-vibe scoring configuration. Profiles are
// built once at process start and never mutated; lookups return copies of
// immutable data.
type VibeProfile struct {
	// Vibe is the profile key.
	Vibe Vibe

	// Weights is the signal weight distribution for this vibe.
	Weights SignalWeights

	// CategoryAffinity maps each category to a 0-1 base affinity.
	// Categories absent from the map read as the neutral 0.5.
	CategoryAffinity map[Category]float64

	// PositiveKeywords add a bounded affinity bonus when found in the
	// place name or tag values.
	PositiveKeywords []string

	// NegativeKeywords subtract affinity when found.
	NegativeKeywords []string

	// EveningBonus marks profiles that reward late-opening places.
	EveningBonus bool
}

// neutralWeights is the profile used when the user leaves vibe unset.
var neutralWeights = SignalWeights{
	Quality:      30,
	Distance:     35,
	Dietary:      5,
	Openness:     5,
	Completeness: 10,
	Price:        5,
	Vibe:         10,
}

// vibeProfiles is the process-wide frozen lookup table. Category
// affinities follow the collaborator model's affinity matrix so the two
// ranking paths agree on what each vibe means.
var vibeProfiles = map[Vibe]VibeProfile{
	VibeInsta: {
		Vibe: VibeInsta,
		Weights: SignalWeights{
			Quality: 25, Distance: 25, Dietary: 3, Openness: 5,
			Completeness: 12, Price: 5, Vibe: 25,
		},
		CategoryAffinity: map[Category]float64{
			CategoryCafe: 0.95, CategoryRestaurant: 0.8, CategoryScenic: 0.9,
			CategoryIndoor: 0.7, CategoryGrocery: 0.3,
		},
		PositiveKeywords: []string{
			"rooftop", "viewpoint", "garden", "terrace", "gallery",
			"art", "boutique", "dessert", "bakery",
		},
		NegativeKeywords: []string{"fast_food", "petrol", "parking", "warehouse"},
	},
	VibeWork: {
		Vibe: VibeWork,
		Weights: SignalWeights{
			Quality: 20, Distance: 30, Dietary: 3, Openness: 12,
			Completeness: 15, Price: 5, Vibe: 15,
		},
		CategoryAffinity: map[Category]float64{
			CategoryCafe: 0.95, CategoryRestaurant: 0.5, CategoryIndoor: 0.7,
			CategoryScenic: 0.3, CategoryGrocery: 0.2,
		},
		PositiveKeywords: []string{
			"wifi", "wlan", "coffee", "library", "coworking", "quiet", "study",
		},
		NegativeKeywords: []string{"nightclub", "bar", "pub", "arcade"},
	},
	VibeRomantic: {
		Vibe: VibeRomantic,
		Weights: SignalWeights{
			Quality: 30, Distance: 20, Dietary: 3, Openness: 5,
			Completeness: 10, Price: 2, Vibe: 30,
		},
		CategoryAffinity: map[Category]float64{
			CategoryRestaurant: 0.95, CategoryScenic: 0.85, CategoryCafe: 0.7,
			CategoryIndoor: 0.6, CategoryGrocery: 0.1,
		},
		PositiveKeywords: []string{
			"fine_dining", "wine", "candle", "garden", "rooftop",
			"viewpoint", "riverside", "terrace",
		},
		NegativeKeywords: []string{"fast_food", "food_court", "takeaway", "arcade"},
		EveningBonus:     true,
	},
	VibeBudget: {
		Vibe: VibeBudget,
		Weights: SignalWeights{
			Quality: 15, Distance: 30, Dietary: 5, Openness: 5,
			Completeness: 5, Price: 25, Vibe: 15,
		},
		CategoryAffinity: map[Category]float64{
			CategoryGrocery: 0.9, CategoryCafe: 0.7, CategoryRestaurant: 0.6,
			CategoryIndoor: 0.5, CategoryScenic: 0.8,
		},
		PositiveKeywords: []string{
			"street_food", "fast_food", "canteen", "market", "mess",
			"food_court", "stall",
		},
		NegativeKeywords: []string{"fine_dining", "luxury", "premium"},
	},
	VibeLively: {
		Vibe: VibeLively,
		Weights: SignalWeights{
			Quality: 22, Distance: 23, Dietary: 3, Openness: 10,
			Completeness: 7, Price: 5, Vibe: 30,
		},
		CategoryAffinity: map[Category]float64{
			CategoryRestaurant: 0.85, CategoryCafe: 0.6, CategoryIndoor: 0.8,
			CategoryScenic: 0.5, CategoryGrocery: 0.2,
		},
		PositiveKeywords: []string{
			"bar", "pub", "nightclub", "music", "food_court", "arcade",
			"cinema", "beach",
		},
		NegativeKeywords: []string{"library", "temple", "church", "quiet"},
		EveningBonus:     true,
	},
}

// ProfileFor returns the profile for a vibe. For VibeNone (or an unknown
// vibe) it returns a neutral profile with ok=false: neutral weights, no
// keywords, and no category bias.
func ProfileFor(v Vibe) (VibeProfile, bool) {
	if p, ok := vibeProfiles[v]; ok {
		return p, true
	}
	return VibeProfile{Vibe: VibeNone, Weights: neutralWeights}, false
}

// Vibes lists the configured vibe keys in a fixed order.
func Vibes() []Vibe {
	return []Vibe{VibeInsta, VibeWork, VibeRomantic, VibeBudget, VibeLively}
}
