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
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/ambler-app/ambler/internal/config"
	"github.com/ambler-app/ambler/internal/logging"
	"github.com/ambler-app/ambler/internal/rank"
)

// CommercialProvider queries a commercial places API (Foursquare-style
// search endpoint) and normalizes its first-class quality fields into
// the well-known tag keys. Calls run behind a circuit breaker so a slow
// or failing upstream cannot cascade into every recommendation request.
type CommercialProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[[]rank.RawPlace]
}

// NewCommercial builds the commercial provider from config.
func NewCommercial(cfg config.CommercialConfig) *CommercialProvider {
	cb := gobreaker.NewCircuitBreaker[[]rank.RawPlace](gobreaker.Settings{
		Name:        "commercial-places",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})

	return &CommercialProvider{
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cb: cb,
	}
}

// Name implements Provider.
func (p *CommercialProvider) Name() string { return "commercial" }

// commercialResponse is the wire shape of a places search reply.
type commercialResponse struct {
	Results []commercialPlace `json:"results"`
}

type commercialPlace struct {
	ID       string `json:"fsq_id"`
	Name     string `json:"name"`
	Geocodes struct {
		Main struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"main"`
	} `json:"geocodes"`
	Rating     float64 `json:"rating"`     // 0-10
	Popularity float64 `json:"popularity"` // 0-1
	Price      int     `json:"price"`      // 1-4
	Stats      struct {
		TotalRatings int `json:"total_ratings"`
	} `json:"stats"`
	Hours struct {
		Display string `json:"display"`
	} `json:"hours"`
	Website  string `json:"website"`
	Tel      string `json:"tel"`
	Location struct {
		Address string `json:"address"`
	} `json:"location"`
	Categories []struct {
		Name string `json:"name"`
	} `json:"categories"`
}

// Fetch implements Provider.
func (p *CommercialProvider) Fetch(ctx context.Context, center rank.LatLon, radiusKm float64, category rank.Category) ([]rank.RawPlace, error) {
	return p.cb.Execute(func() ([]rank.RawPlace, error) {
		return p.search(ctx, center, radiusKm, category)
	})
}

func (p *CommercialProvider) search(ctx context.Context, center rank.LatLon, radiusKm float64, category rank.Category) ([]rank.RawPlace, error) {
	q := url.Values{}
	q.Set("ll", fmt.Sprintf("%.6f,%.6f", center.Lat, center.Lon))
	q.Set("radius", strconv.Itoa(int(radiusKm*1000)))
	q.Set("limit", "50")
	if category != rank.CategoryNone {
		q.Set("query", string(category))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.baseURL+"/places/search?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("commercial request: %w", err)
	}
	req.Header.Set("Authorization", p.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("commercial search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("commercial API returned %d: %s", resp.StatusCode, string(body))
	}

	var decoded commercialResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("commercial decode: %w", err)
	}

	places := make([]rank.RawPlace, 0, len(decoded.Results))
	for _, cp := range decoded.Results {
		if place, ok := normalizeCommercialPlace(cp); ok {
			places = append(places, place)
		}
	}
	return places, nil
}

// normalizeCommercialPlace maps the API's first-class fields onto the
// well-known tag keys the signal extractors read.
func normalizeCommercialPlace(cp commercialPlace) (rank.RawPlace, bool) {
	if cp.Name == "" || cp.ID == "" {
		return rank.RawPlace{}, false
	}
	lat, lon := cp.Geocodes.Main.Latitude, cp.Geocodes.Main.Longitude
	if lat == 0 && lon == 0 {
		return rank.RawPlace{}, false
	}

	tags := make(map[string]string, 8)
	if cp.Rating > 0 {
		tags[rank.TagRating] = strconv.FormatFloat(cp.Rating, 'f', 1, 64)
	}
	if cp.Stats.TotalRatings > 0 {
		tags[rank.TagRatingCount] = strconv.Itoa(cp.Stats.TotalRatings)
	}
	if cp.Popularity > 0 {
		tags[rank.TagPopularity] = strconv.FormatFloat(cp.Popularity, 'f', 3, 64)
	}
	if cp.Price >= 1 && cp.Price <= 4 {
		tags[rank.TagPriceTier] = strconv.Itoa(cp.Price)
	}
	if cp.Hours.Display != "" {
		tags[rank.TagOpeningHours] = cp.Hours.Display
	}
	if cp.Website != "" {
		tags[rank.TagWebsite] = cp.Website
	}
	if cp.Tel != "" {
		tags[rank.TagPhone] = cp.Tel
	}
	if cp.Location.Address != "" {
		tags[rank.TagStreet] = cp.Location.Address
	}
	if len(cp.Categories) > 0 {
		// The category names double as cuisine/type text for the
		// keyword matchers.
		names := make([]string, 0, len(cp.Categories))
		for _, c := range cp.Categories {
			if c.Name != "" {
				names = append(names, c.Name)
			}
		}
		if len(names) > 0 {
			tags[rank.TagCuisine] = strings.ToLower(strings.Join(names, ";"))
		}
	}

	return rank.RawPlace{
		ID:     "fsq/" + cp.ID,
		Name:   cp.Name,
		Lat:    lat,
		Lon:    lon,
		Source: rank.SourceCommercial,
		Tags:   tags,
	}, true
}
