// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/ambler-app/ambler/internal/cache"
	"github.com/ambler-app/ambler/internal/providers"
	"github.com/ambler-app/ambler/internal/rank"
)

type stubProvider struct {
	places []rank.RawPlace
	err    error
	calls  int
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Fetch(context.Context, rank.LatLon, float64, rank.Category) ([]rank.RawPlace, error) {
	s.calls++
	return s.places, s.err
}

type stubAnnotator struct {
	calls int
}

func (s *stubAnnotator) Annotate(_ context.Context, result *rank.RankingResult, _ rank.Preferences) {
	s.calls++
	if result.Recommended != nil {
		result.Recommended.Annotation = &rank.Annotation{Probability: 0.9, P10: 0.8, P90: 0.95, Confidence: 0.85}
	}
}

func stubPlaces() []rank.RawPlace {
	return []rank.RawPlace{
		{ID: "node/1", Name: "Corner Cafe", Lat: 13.0430, Lon: 80.2341, Source: rank.SourceOSM,
			Tags: map[string]string{rank.TagAmenity: "cafe", rank.TagRating: "8.5", rank.TagRatingCount: "120"}},
		{ID: "node/2", Name: "Park Bakery", Lat: 13.0480, Lon: 80.2341, Source: rank.SourceOSM,
			Tags: map[string]string{rank.TagShop: "bakery", rank.TagRating: "7.0", rank.TagRatingCount: "40"}},
	}
}

// newTestServer wires a full router over stub collaborators.
func newTestServer(t *testing.T, provider providers.Provider, annotator Annotator, results *cache.ResultCache) *httptest.Server {
	t.Helper()

	engine, err := rank.NewEngine(nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	fetcher := providers.NewMulti(zerolog.Nop(), provider)
	handler := NewHandler(engine, fetcher, annotator, results)
	mw := NewMiddleware(MiddlewareConfig{
		CORSAllowedOrigins: []string{"https://app.example"},
		RateLimitRequests:  1000,
		RateLimitWindow:    time.Minute,
	})

	srv := httptest.NewServer(NewRouter(handler, mw).Setup())
	t.Cleanup(srv.Close)
	return srv
}

func postRecommend(t *testing.T, srv *httptest.Server, body string) (*http.Response, APIResponse) {
	t.Helper()

	resp, err := http.Post(srv.URL+"/api/v1/recommend", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /recommend error = %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var envelope APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp, envelope
}

func TestRecommendFromProviders(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{places: stubPlaces()}
	srv := newTestServer(t, provider, nil, nil)

	resp, envelope := postRecommend(t, srv, `{"center": {"lat": 13.0418, "lon": 80.2341}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !envelope.Success {
		t.Fatalf("envelope = %+v, want success", envelope)
	}
	if resp.Header.Get("ETag") == "" {
		t.Error("successful response missing ETag")
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("response missing X-Request-ID")
	}

	data, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("re-marshal data: %v", err)
	}
	var result rank.RankingResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Recommended == nil || result.Recommended.Name != "Corner Cafe" {
		t.Errorf("recommended = %+v, want Corner Cafe (closer, better rated)", result.Recommended)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
}

func TestRecommendInlineBatchSkipsProviders(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{places: stubPlaces()}
	srv := newTestServer(t, provider, nil, nil)

	body := `{
		"center": {"lat": 13.0418, "lon": 80.2341},
		"preferences": {"category": "cafe"},
		"places": [
			{"id": "x/1", "name": "Inline Cafe", "lat": 13.0430, "lon": 80.2341,
			 "tags": {"amenity": "cafe"}}
		]
	}`
	resp, envelope := postRecommend(t, srv, body)
	if resp.StatusCode != http.StatusOK || !envelope.Success {
		t.Fatalf("status = %d, envelope = %+v, want 200 success", resp.StatusCode, envelope)
	}
	if provider.calls != 0 {
		t.Errorf("provider calls = %d, want 0 for inline batch", provider.calls)
	}
}

func TestRecommendValidation(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubProvider{}, nil, nil)

	tests := []struct {
		name string
		body string
	}{
		{"latitude out of range", `{"center": {"lat": 200, "lon": 80.2341}}`},
		{"unknown vibe", `{"center": {"lat": 13.0, "lon": 80.0}, "preferences": {"vibe": "spooky"}}`},
		{"walk minutes too small", `{"center": {"lat": 13.0, "lon": 80.0}, "preferences": {"max_walk_minutes": 2}}`},
		{"malformed json", `{"center": `},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			resp, envelope := postRecommend(t, srv, tc.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if envelope.Success || envelope.Error == nil {
				t.Errorf("envelope = %+v, want error", envelope)
			}
		})
	}
}

func TestRecommendProviderFailure(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubProvider{err: errors.New("all upstreams down")}, nil, nil)

	resp, envelope := postRecommend(t, srv, `{"center": {"lat": 13.0418, "lon": 80.2341}}`)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != ErrCodeProviderError {
		t.Errorf("error = %+v, want %s", envelope.Error, ErrCodeProviderError)
	}
}

func TestRecommendCachesResults(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{places: stubPlaces()}
	srv := newTestServer(t, provider, nil, cache.New(16, time.Minute))

	body := `{"center": {"lat": 13.0418, "lon": 80.2341}}`
	if _, envelope := postRecommend(t, srv, body); !envelope.Success {
		t.Fatalf("first request failed: %+v", envelope)
	}
	_, second := postRecommend(t, srv, body)
	if !second.Success {
		t.Fatalf("second request failed: %+v", second)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1 (second request served from cache)", provider.calls)
	}
	if second.Meta == nil || !second.Meta.Cached {
		t.Errorf("second response meta = %+v, want cached flag", second.Meta)
	}
}

func TestRecommendAnnotates(t *testing.T) {
	t.Parallel()

	annotator := &stubAnnotator{}
	srv := newTestServer(t, &stubProvider{places: stubPlaces()}, annotator, nil)

	_, envelope := postRecommend(t, srv, `{"center": {"lat": 13.0418, "lon": 80.2341}}`)
	if !envelope.Success {
		t.Fatalf("request failed: %+v", envelope)
	}
	if annotator.calls != 1 {
		t.Fatalf("annotator calls = %d, want 1", annotator.calls)
	}

	data, _ := json.Marshal(envelope.Data)
	var result rank.RankingResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Recommended.Annotation == nil || result.Recommended.Annotation.Probability != 0.9 {
		t.Errorf("annotation = %+v, want probability 0.9", result.Recommended.Annotation)
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubProvider{}, nil, nil)

	for _, path := range []string{"/api/v1/health/live", "/api/v1/health/ready"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubProvider{}, nil, nil)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /metrics status = %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundEnvelope(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubProvider{}, nil, nil)

	resp, err := http.Get(srv.URL + "/api/v1/nope")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	var envelope APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Error == nil || envelope.Error.Code != ErrCodeNotFound {
		t.Errorf("error = %+v, want %s", envelope.Error, ErrCodeNotFound)
	}
}

func TestRequestIDHonored(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubProvider{places: stubPlaces()}, nil, nil)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/recommend",
		strings.NewReader(`{"center": {"lat": 13.0418, "lon": 80.2341}}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "trace-me-123")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request error = %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); got != "trace-me-123" {
		t.Errorf("X-Request-ID = %q, want trace-me-123", got)
	}
}
