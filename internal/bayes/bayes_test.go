// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

package bayes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/ambler-app/ambler/internal/config"
	"github.com/ambler-app/ambler/internal/rank"
)

func testBayesConfig(url string) config.BayesConfig {
	return config.BayesConfig{
		Enabled: true,
		URL:     url,
		Timeout: 5 * time.Second,
	}
}

func testResult() *rank.RankingResult {
	return &rank.RankingResult{
		Recommended: &rank.ScoredPlace{ID: "node/1", Name: "Top Pick", DistanceKm: 0.4},
		Others: []rank.ScoredPlace{
			{ID: "node/2", Name: "Runner Up", DistanceKm: 0.9},
		},
		Strategy: rank.StrategyWeighted,
	}
}

func TestAnnotateMergesEnvelopes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/annotate" {
			t.Errorf("got %s %s, want POST /v1/annotate", r.Method, r.URL.Path)
		}
		var req annotateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Places) != 2 {
			t.Errorf("request carried %d places, want 2", len(req.Places))
		}
		if req.Strategy != "weighted" {
			t.Errorf("request strategy = %q, want weighted", req.Strategy)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"annotations": [
				{"id": "node/1", "probability": 0.82, "p10": 0.71, "p90": 0.90, "confidence": 0.81},
				{"id": "node/2", "probability": 0.55, "p10": 0.30, "p90": 0.78, "confidence": 0.52}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(testBayesConfig(srv.URL), zerolog.Nop())
	result := testResult()
	c.Annotate(context.Background(), result, rank.Preferences{})

	if result.Recommended.Annotation == nil {
		t.Fatal("recommended place left unannotated")
	}
	if got := result.Recommended.Annotation.Probability; got != 0.82 {
		t.Errorf("recommended probability = %v, want 0.82", got)
	}
	if result.Others[0].Annotation == nil || result.Others[0].Annotation.Confidence != 0.52 {
		t.Errorf("runner-up annotation = %+v, want confidence 0.52", result.Others[0].Annotation)
	}
}

func TestAnnotateDegradesOnFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(testBayesConfig(srv.URL), zerolog.Nop())
	result := testResult()
	c.Annotate(context.Background(), result, rank.Preferences{})

	if result.Recommended.Annotation != nil {
		t.Error("failed annotator must leave the result unannotated")
	}
	if len(result.Others) != 1 || result.Others[0].Annotation != nil {
		t.Errorf("others mutated on failure: %+v", result.Others)
	}
}

func TestAnnotateSkipsPartialEnvelopes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"annotations": [{"id": "node/2", "probability": 0.4, "p10": 0.2, "p90": 0.6, "confidence": 0.6}]}`))
	}))
	defer srv.Close()

	c := NewClient(testBayesConfig(srv.URL), zerolog.Nop())
	result := testResult()
	c.Annotate(context.Background(), result, rank.Preferences{})

	if result.Recommended.Annotation != nil {
		t.Error("recommended place should stay unannotated when the collaborator skips it")
	}
	if result.Others[0].Annotation == nil {
		t.Error("annotated place lost its envelope")
	}
}

func TestAnnotateEmptyResultNoCall(t *testing.T) {
	t.Parallel()

	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(testBayesConfig(srv.URL), zerolog.Nop())
	c.Annotate(context.Background(), &rank.RankingResult{Others: []rank.ScoredPlace{}}, rank.Preferences{})
	if called {
		t.Error("empty result should not reach the collaborator")
	}
}
