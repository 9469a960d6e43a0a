// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/ambler-app/ambler/internal/bayes"
	"github.com/ambler-app/ambler/internal/cache"
	"github.com/ambler-app/ambler/internal/logging"
	"github.com/ambler-app/ambler/internal/metrics"
	"github.com/ambler-app/ambler/internal/providers"
	"github.com/ambler-app/ambler/internal/rank"
	"github.com/ambler-app/ambler/internal/validation"
)

// maxRequestBody bounds the recommend request body. Inline batches are
// the only large payload and 2 MiB fits thousands of places.
const maxRequestBody = 2 << 20

// Annotator augments a ranked result with probability envelopes. It is
// satisfied by *bayes.Client; a nil Annotator disables annotation.
type Annotator interface {
	Annotate(ctx context.Context, result *rank.RankingResult, prefs rank.Preferences)
}

var _ Annotator = (*bayes.Client)(nil)

// Handler carries the wired collaborators for the HTTP endpoints.
type Handler struct {
	engine    *rank.Engine
	fetcher   *providers.Multi
	annotator Annotator
	results   *cache.ResultCache
}

// NewHandler wires the handler. annotator and results may be nil to
// disable annotation and caching respectively.
func NewHandler(engine *rank.Engine, fetcher *providers.Multi, annotator Annotator, results *cache.ResultCache) *Handler {
	return &Handler{
		engine:    engine,
		fetcher:   fetcher,
		annotator: annotator,
		results:   results,
	}
}

// recommendRequest is the POST /api/v1/recommend body.
type recommendRequest struct {
	// Center is the search center.
	Center struct {
		Lat float64 `json:"lat" validate:"latitude"`
		Lon float64 `json:"lon" validate:"longitude"`
	} `json:"center"`

	// Preferences tune filtering and ranking. All fields optional.
	Preferences struct {
		Category       string `json:"category" validate:"omitempty,category"`
		MaxWalkMinutes int    `json:"max_walk_minutes" validate:"omitempty,min=5,max=60"`
		VegOnly        bool   `json:"veg_only"`
		Vibe           string `json:"vibe" validate:"omitempty,vibe"`
	} `json:"preferences"`

	// Places optionally supplies the batch inline, bypassing the
	// providers. Used by integration tests and offline evaluation.
	Places []rank.RawPlace `json:"places,omitempty"`
}

// recommendCacheKey is the cache identity of a recommend request.
// Inline batches are never cached.
type recommendCacheKey struct {
	Center rank.LatLon      `json:"center"`
	Prefs  rank.Preferences `json:"prefs"`
}

// Recommend handles POST /api/v1/recommend.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	log := logging.Ctx(r.Context())

	var req recommendRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		rw.BadRequest("Invalid JSON body: " + err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	// Unknown values were rejected by validation above.
	category, _ := rank.ParseCategory(req.Preferences.Category)
	vibe, _ := rank.ParseVibe(req.Preferences.Vibe)

	prefs := rank.Preferences{
		Category:       category,
		MaxWalkMinutes: req.Preferences.MaxWalkMinutes,
		VegOnly:        req.Preferences.VegOnly,
		Vibe:           vibe,
		SearchCenter:   rank.LatLon{Lat: req.Center.Lat, Lon: req.Center.Lon},
	}

	// Inline batches skip fetching and caching: they are test and
	// evaluation traffic with no reuse across requests.
	if req.Places != nil {
		result := h.rankAndAnnotate(r, req.Places, prefs)
		rw.Success(result)
		return
	}

	if h.results != nil {
		key, err := cache.Key(recommendCacheKey{Center: prefs.SearchCenter, Prefs: prefs})
		if err == nil {
			if cached, ok := h.results.Get(key); ok {
				rw.MarkCached()
				rw.Success(cached)
				return
			}
			value, err := h.results.GetOrCompute(key, func() (interface{}, error) {
				return h.fetchAndRank(r, prefs)
			})
			if err != nil {
				rw.ProviderError(err)
				return
			}
			rw.Success(value)
			return
		}
		log.Warn().Err(err).Msg("cache key derivation failed, bypassing cache")
	}

	result, err := h.fetchAndRank(r, prefs)
	if err != nil {
		rw.ProviderError(err)
		return
	}
	rw.Success(result)
}

// fetchAndRank pulls the batch from the providers and runs the full
// pipeline.
func (h *Handler) fetchAndRank(r *http.Request, prefs rank.Preferences) (*rank.RankingResult, error) {
	radius := h.engine.EffectiveRadiusKm(prefs)
	batch, err := h.fetcher.Fetch(r.Context(), prefs.SearchCenter, radius, prefs.Category)
	if err != nil {
		return nil, err
	}
	return h.rankAndAnnotate(r, batch, prefs), nil
}

func (h *Handler) rankAndAnnotate(r *http.Request, batch []rank.RawPlace, prefs rank.Preferences) *rank.RankingResult {
	start := time.Now()
	result := h.engine.Rank(batch, prefs)
	metrics.RecordRanking(result.Strategy.String(), result.Debug.RawCount,
		result.Recommended == nil, result.VegFilterWarning, time.Since(start))
	metrics.RecordFilterDrops(result.Debug.FilterDrops)

	if h.annotator != nil && result.Recommended != nil {
		h.annotator.Annotate(r.Context(), &result, prefs)
	}
	return &result
}

// HealthLive handles GET /api/v1/health/live. Liveness is process-up.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "ok"})
}

// HealthReady handles GET /api/v1/health/ready. The service is ready
// once its collaborators are wired; providers degrade per request, so
// readiness does not probe them.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.engine == nil || h.fetcher == nil {
		rw.ServiceUnavailable("Engine not initialized")
		return
	}
	rw.Success(map[string]string{"status": "ready"})
}
