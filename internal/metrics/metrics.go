// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

// Package metrics declares the Prometheus instrumentation for Ambler:
// API endpoint latency and throughput, ranking pipeline outcomes,
// provider fetch performance, the annotation collaborator, and cache
// efficiency. The ranking engine itself stays side-effect free; all
// recording happens at the API and provider layers.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Ranking pipeline metrics.
	RankingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankings_total",
			Help: "Total number of ranking runs by comparator strategy",
		},
		[]string{"strategy"},
	)

	RankingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranking_duration_seconds",
			Help:    "Duration of a full ranking run in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
	)

	RankingBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranking_batch_size",
			Help:    "Raw candidate count per ranking run",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500},
		},
	)

	RankingFilterDrops = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_filter_drops_total",
			Help: "Candidates excluded per filter pipeline stage",
		},
		[]string{"stage"},
	)

	RankingVegDegradations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ranking_veg_degradations_total",
			Help: "Ranking runs where the dietary filter degraded to a warning",
		},
	)

	RankingEmptyResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ranking_empty_results_total",
			Help: "Ranking runs that produced no recommendation",
		},
	)

	// Place provider metrics.
	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Total place-provider fetches by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Place-provider fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	ProviderPlacesFetched = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_places_fetched",
			Help:    "Places returned per provider fetch",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"provider"},
	)

	// Annotation collaborator metrics.
	AnnotationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "annotation_requests_total",
			Help: "Annotation collaborator calls by outcome",
		},
		[]string{"outcome"},
	)

	AnnotationRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "annotation_request_duration_seconds",
			Help:    "Annotation collaborator call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Result cache metrics.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "result_cache_hits_total",
			Help: "Total ranking result cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "result_cache_misses_total",
			Help: "Total ranking result cache misses",
		},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "result_cache_evictions_total",
			Help: "Total ranking result cache evictions",
		},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "result_cache_entries",
			Help: "Current number of cached ranking results",
		},
	)

	// Spatial database metrics.
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRanking records the outcome of one ranking run.
func RecordRanking(strategy string, rawCount int, empty, vegDegraded bool, duration time.Duration) {
	RankingsTotal.WithLabelValues(strategy).Inc()
	RankingDuration.Observe(duration.Seconds())
	RankingBatchSize.Observe(float64(rawCount))
	if empty {
		RankingEmptyResults.Inc()
	}
	if vegDegraded {
		RankingVegDegradations.Inc()
	}
}

// RecordFilterDrops records per-stage exclusion counts from a ranking run.
func RecordFilterDrops(drops map[string]int) {
	for stage, n := range drops {
		if n > 0 {
			RankingFilterDrops.WithLabelValues(stage).Add(float64(n))
		}
	}
}

// RecordProviderFetch records one place-provider fetch.
func RecordProviderFetch(provider string, places int, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	ProviderRequestsTotal.WithLabelValues(provider, outcome).Inc()
	ProviderRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
	if err == nil {
		ProviderPlacesFetched.WithLabelValues(provider).Observe(float64(places))
	}
}

// RecordAnnotationCall records one annotation collaborator call.
func RecordAnnotationCall(duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	AnnotationRequestsTotal.WithLabelValues(outcome).Inc()
	AnnotationRequestDuration.Observe(duration.Seconds())
}

// RecordDBQuery records one spatial database query.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}
