// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	SourcePersonalized = "personalized"
	SourceFallback     = "fallback"

	StageRecalculate = "recalculate"
	StageRegenerate  = "regenerate"
	StagePersist     = "persist"
)

var (
	RatingsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratings_written_total",
			Help: "Total number of successful rating upserts",
		},
		[]string{"outcome"}, // "created", "updated"
	)

	RecommendationsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_generated_total",
			Help: "Total number of recommendation entries produced",
		},
		[]string{"source"},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_generation_duration_seconds",
			Help:    "Time spent computing a recommendation list",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	AggregateRecalculations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "movie_aggregate_recalculations_total",
			Help: "Total number of completed movie aggregate recalculations",
		},
	)

	SideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rating_side_effect_failures_total",
			Help: "Failures of follow-up work after a successful rating write",
		},
		[]string{"stage"},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_cache_requests_total",
			Help: "Movie cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "route"},
	)
)

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordGenerated counts the personalized and fallback entries of one generated list.
func RecordGenerated(personalized, fallback int, duration time.Duration) {
	if personalized > 0 {
		RecommendationsGenerated.WithLabelValues(SourcePersonalized).Add(float64(personalized))
	}
	if fallback > 0 {
		RecommendationsGenerated.WithLabelValues(SourceFallback).Add(float64(fallback))
	}
	GenerationDuration.Observe(duration.Seconds())
}
