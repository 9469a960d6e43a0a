// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

// Package bayes talks to the probabilistic annotation collaborator.
// The collaborator re-scores a ranked shortlist and returns per-place
// probability envelopes; it is strictly advisory, so every failure mode
// degrades to the unannotated result.
package bayes

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/ambler-app/ambler/internal/config"
	"github.com/ambler-app/ambler/internal/metrics"
	"github.com/ambler-app/ambler/internal/rank"
)

// Client calls the annotation collaborator over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[map[string]rank.Annotation]
	logger     zerolog.Logger
}

// NewClient builds the collaborator client from config.
func NewClient(cfg config.BayesConfig, logger zerolog.Logger) *Client {
	logger = logger.With().Str("component", "bayes").Logger()

	cb := gobreaker.NewCircuitBreaker[map[string]rank.Annotation](gobreaker.Settings{
		Name:        "bayes-annotator",
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
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})

	return &Client{
		baseURL: cfg.URL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cb:     cb,
		logger: logger,
	}
}

// annotateRequest is the collaborator's input: the ranked shortlist
// plus the preferences and strategy that produced it.
type annotateRequest struct {
	Places   []annotatePlace  `json:"places"`
	Prefs    rank.Preferences `json:"prefs"`
	Strategy string           `json:"strategy"`
}

type annotatePlace struct {
	ID         string  `json:"id"`
	Score      float64 `json:"score"`
	DistanceKm float64 `json:"distance_km"`
}

// annotateResponse carries one envelope per place the collaborator
// chose to annotate. Places it skips stay unannotated.
type annotateResponse struct {
	Annotations []struct {
		ID          string  `json:"id"`
		Probability float64 `json:"probability"`
		P10         float64 `json:"p10"`
		P90         float64 `json:"p90"`
		Confidence  float64 `json:"confidence"`
	} `json:"annotations"`
}

// Annotate fetches probability envelopes for a ranking result and
// merges them in place. It never fails the request: on any error the
// result is returned unannotated with a warning logged.
func (c *Client) Annotate(ctx context.Context, result *rank.RankingResult, prefs rank.Preferences) {
	if result == nil || result.Recommended == nil {
		return
	}

	start := time.Now()
	annotations, err := c.cb.Execute(func() (map[string]rank.Annotation, error) {
		return c.fetch(ctx, result, prefs)
	})
	metrics.RecordAnnotationCall(time.Since(start), err)
	if err != nil {
		c.logger.Warn().Err(err).Msg("annotation collaborator unavailable, shipping unannotated result")
		return
	}

	rank.MergeAnnotations(result, annotations)
}

func (c *Client) fetch(ctx context.Context, result *rank.RankingResult, prefs rank.Preferences) (map[string]rank.Annotation, error) {
	shortlist := make([]annotatePlace, 0, 1+len(result.Others))
	shortlist = append(shortlist, annotatePlaceFrom(*result.Recommended))
	for _, p := range result.Others {
		shortlist = append(shortlist, annotatePlaceFrom(p))
	}

	body, err := json.Marshal(annotateRequest{
		Places:   shortlist,
		Prefs:    prefs,
		Strategy: result.Strategy.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode annotation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/annotate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("annotation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("annotation call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("annotator returned %d: %s", resp.StatusCode, string(respBody))
	}

	var decoded annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("annotation decode: %w", err)
	}

	annotations := make(map[string]rank.Annotation, len(decoded.Annotations))
	for _, a := range decoded.Annotations {
		annotations[a.ID] = rank.Annotation{
			Probability: a.Probability,
			P10:         a.P10,
			P90:         a.P90,
			Confidence:  a.Confidence,
		}
	}
	return annotations, nil
}

func annotatePlaceFrom(p rank.ScoredPlace) annotatePlace {
	return annotatePlace{
		ID:         p.ID,
		Score:      p.Score(),
		DistanceKm: p.DistanceKm,
	}
}
