// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

// Package metrics holds the Prometheus collectors shared by the favorites
// server and the favsync agent.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "popfeast_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB favorites queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "popfeast_duckdb_query_errors_total",
			Help: "Total number of DuckDB favorites query errors",
		},
		[]string{"operation"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "popfeast_api_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "popfeast_api_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "popfeast_api_active_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	APIRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "popfeast_api_rate_limited_total",
			Help: "Requests refused by the per-IP rate limiter",
		},
	)

	// Favorites Engine Metrics
	FavoritesToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "popfeast_favorites_toggles_total",
			Help: "Favorite toggles by outcome (added, removed, queued, rejected, invalid, error)",
		},
		[]string{"outcome"},
	)

	FavoritesQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "popfeast_favorites_queue_depth",
			Help: "Pending operations waiting for the remote",
		},
	)

	FavoritesFlushOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "popfeast_favorites_flush_operations_total",
			Help: "Queued operations sent during flushes by result (success, failure)",
		},
		[]string{"result"},
	)

	FavoritesFlushDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "popfeast_favorites_flush_duration_seconds",
			Help:    "Duration of queue flush passes",
			Buckets: prometheus.DefBuckets,
		},
	)

	FavoritesListSource = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "popfeast_favorites_list_source_total",
			Help: "Where getFavorites answers came from (cache, remote, fallback)",
		},
		[]string{"source"},
	)

	FavoritesRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "popfeast_favorites_background_refreshes_total",
			Help: "Detached cache refreshes by result (success, failure, stale)",
		},
		[]string{"result"},
	)

	// Connectivity Metrics
	ConnectivityOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "popfeast_connectivity_online",
			Help: "1 when the favorites server answered the last probe",
		},
	)

	ConnectivityRestored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "popfeast_connectivity_restored_total",
			Help: "Offline to online transitions",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "popfeast_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "popfeast_circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker by result (success, failure, rejected)",
		},
		[]string{"name", "result"},
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "popfeast_circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "popfeast_circuit_breaker_state_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordDBQuery records a favorites query.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordAPIRequest records one served HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimited counts a request refused by the rate limiter.
func RecordRateLimited() {
	APIRateLimited.Inc()
}

// RecordToggle counts a toggle outcome.
func RecordToggle(outcome string) {
	FavoritesToggles.WithLabelValues(outcome).Inc()
}

// RecordFlush records one flush pass.
func RecordFlush(succeeded, failed int, duration time.Duration) {
	FavoritesFlushOps.WithLabelValues("success").Add(float64(succeeded))
	FavoritesFlushOps.WithLabelValues("failure").Add(float64(failed))
	FavoritesFlushDuration.Observe(duration.Seconds())
}

// SetQueueDepth publishes the current queue length.
func SetQueueDepth(n int) {
	FavoritesQueueDepth.Set(float64(n))
}

// RecordListSource counts where a favorites list was served from.
func RecordListSource(source string) {
	FavoritesListSource.WithLabelValues(source).Inc()
}

// RecordRefresh counts a detached refresh result.
func RecordRefresh(result string) {
	FavoritesRefreshes.WithLabelValues(result).Inc()
}

// SetOnline publishes connectivity and counts restorations.
func SetOnline(online, restored bool) {
	if online {
		ConnectivityOnline.Set(1)
	} else {
		ConnectivityOnline.Set(0)
	}
	if restored {
		ConnectivityRestored.Inc()
	}
}
