// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/ambler-app/ambler/internal/config"
	"github.com/ambler-app/ambler/internal/rank"
)

// categorySelectors maps a category hint to Overpass QL tag selectors.
// The engine re-applies the category filter after normalization, so
// these only narrow the upstream query.
var categorySelectors = map[rank.Category][]string{
	rank.CategoryRestaurant: {`["amenity"~"restaurant|fast_food|bar|pub|food_court|biergarten"]`},
	rank.CategoryCafe:       {`["amenity"~"cafe|juice_bar"]`, `["shop"~"bakery|coffee|tea"]`},
	rank.CategoryGrocery:    {`["shop"~"supermarket|convenience|greengrocer|deli"]`, `["amenity"="marketplace"]`},
	rank.CategoryScenic:     {`["leisure"~"park|garden"]`, `["tourism"~"viewpoint|attraction"]`, `["natural"="beach"]`},
	rank.CategoryIndoor:     {`["tourism"~"museum|gallery|aquarium"]`, `["amenity"~"cinema|theatre|library|arcade"]`},
}

// broadSelectors is the query set when no category hint is given.
var broadSelectors = []string{
	`["amenity"~"restaurant|fast_food|cafe|bar|pub|food_court|marketplace|cinema|theatre|library"]`,
	`["shop"~"supermarket|convenience|greengrocer|bakery|deli"]`,
	`["leisure"~"park|garden"]`,
	`["tourism"~"viewpoint|attraction|museum|gallery"]`,
}

// OverpassProvider queries the public Overpass API for OSM places.
// Outbound queries are throttled; public Overpass instances enforce
// strict fair-use limits and ban aggressive clients.
type OverpassProvider struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewOverpass builds the Overpass provider from config.
func NewOverpass(cfg config.OverpassConfig) *OverpassProvider {
	return &OverpassProvider{
		endpoint: cfg.URL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
	}
}

// Name implements Provider.
func (p *OverpassProvider) Name() string { return "overpass" }

// overpassResponse is the wire shape of an Overpass JSON reply.
type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *overpassCenter   `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Fetch implements Provider. It waits for the rate limiter, runs one
// around-radius query, and normalizes named elements.
func (p *OverpassProvider) Fetch(ctx context.Context, center rank.LatLon, radiusKm float64, category rank.Category) ([]rank.RawPlace, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("overpass rate limit wait: %w", err)
	}

	query := buildOverpassQuery(center, radiusKm, category)
	form := url.Values{"data": {query}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("overpass returned %d: %s", resp.StatusCode, string(body))
	}

	var decoded overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("overpass decode: %w", err)
	}

	places := make([]rank.RawPlace, 0, len(decoded.Elements))
	for _, el := range decoded.Elements {
		if place, ok := normalizeOverpassElement(el); ok {
			places = append(places, place)
		}
	}
	return places, nil
}

// buildOverpassQuery renders the around-radius QL query. Ways and
// relations come back with "out center" so they carry a representative
// coordinate.
func buildOverpassQuery(center rank.LatLon, radiusKm float64, category rank.Category) string {
	selectors, ok := categorySelectors[category]
	if !ok {
		selectors = broadSelectors
	}
	radiusM := int(radiusKm * 1000)

	var b strings.Builder
	b.WriteString("[out:json][timeout:25];(")
	for _, sel := range selectors {
		for _, kind := range []string{"node", "way"} {
			fmt.Fprintf(&b, "%s%s(around:%d,%.6f,%.6f);", kind, sel, radiusM, center.Lat, center.Lon)
		}
	}
	b.WriteString(");out center;")
	return b.String()
}

// normalizeOverpassElement converts one OSM element to a RawPlace.
// Unnamed elements are skipped: the engine requires a display name and
// anonymous geometry is useless as a recommendation.
func normalizeOverpassElement(el overpassElement) (rank.RawPlace, bool) {
	name := el.Tags["name"]
	if name == "" {
		return rank.RawPlace{}, false
	}

	lat, lon := el.Lat, el.Lon
	if el.Center != nil {
		lat, lon = el.Center.Lat, el.Center.Lon
	}
	if lat == 0 && lon == 0 {
		return rank.RawPlace{}, false
	}

	tags := make(map[string]string, len(el.Tags))
	for k, v := range el.Tags {
		if k == "name" {
			continue
		}
		tags[k] = v
	}

	return rank.RawPlace{
		ID:     fmt.Sprintf("%s/%d", el.Type, el.ID),
		Name:   name,
		Lat:    lat,
		Lon:    lon,
		Source: rank.SourceOSM,
		Tags:   tags,
	}, true
}
