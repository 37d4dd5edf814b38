// AEOPulse - Content Site and AI Engine Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aeopulse

// Package metrics holds the Prometheus collectors exported on /metrics.
//
// Collectors are registered with the default registry through promauto, so
// importing the package is enough to expose them. Record* helpers keep label
// handling in one place.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aeo_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aeo_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aeo_http_active_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aeo_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"route"},
	)

	// Connector Metrics
	ConnectorRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aeo_connector_requests_total",
			Help: "Total number of upstream analytics API calls",
		},
		[]string{"connector", "result"}, // result: "success", "error"
	)

	ConnectorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aeo_connector_request_duration_seconds",
			Help:    "Duration of upstream analytics API calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"connector"},
	)

	ConnectorRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aeo_connector_retries_total",
			Help: "Total number of retried upstream calls",
		},
		[]string{"connector"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aeo_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aeo_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aeo_circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aeo_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Visit Store Metrics
	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aeo_store_query_duration_seconds",
			Help:    "Duration of visit store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	StoreQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aeo_store_query_errors_total",
			Help: "Total number of failed visit store operations",
		},
		[]string{"backend", "operation"},
	)

	VisitsTracked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aeo_visits_tracked_total",
			Help: "Total number of classified page visits",
		},
		[]string{"engine", "source_type", "stored"},
	)

	VisitsPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aeo_visits_purged_total",
			Help: "Total number of visits removed by retention",
		},
	)

	// Dashboard Metrics
	DashboardSectionStatus = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aeo_dashboard_sections_total",
			Help: "Dashboard sections built, by outcome",
		},
		[]string{"section", "status"},
	)

	DashboardBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aeo_dashboard_build_duration_seconds",
			Help:    "Time to assemble the dashboard stats",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aeo_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aeo_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	// Citation Metrics
	CitationQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aeo_citation_queries_total",
			Help: "Total number of citation test queries sent to answer engines",
		},
		[]string{"vendor", "result"}, // result: "cited", "not_cited", "error"
	)

	// Auth Metrics
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aeo_login_attempts_total",
			Help: "Total number of admin login attempts",
		},
		[]string{"result"},
	)
)

// RecordAPIRequest records an HTTP request metric.
func RecordAPIRequest(method, route string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight HTTP requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordConnectorCall records one upstream call, including its retries.
func RecordConnectorCall(connector string, duration time.Duration, err error) {
	ConnectorDuration.WithLabelValues(connector).Observe(duration.Seconds())
	result := "success"
	if err != nil {
		result = "error"
	}
	ConnectorRequests.WithLabelValues(connector, result).Inc()
}

// RecordStoreQuery records a visit store operation.
func RecordStoreQuery(backend, operation string, duration time.Duration, err error) {
	StoreQueryDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
	if err != nil {
		StoreQueryErrors.WithLabelValues(backend, operation).Inc()
	}
}

// RecordVisit counts a classified visit.
func RecordVisit(engine, sourceType string, stored bool) {
	if engine == "" {
		engine = "none"
	}
	VisitsTracked.WithLabelValues(engine, sourceType, strconv.FormatBool(stored)).Inc()
}

// RecordCacheLookup counts a cache hit or miss.
func RecordCacheLookup(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
		return
	}
	CacheMisses.WithLabelValues(cache).Inc()
}

// RecordCitation counts one vendor answer in a citation test.
func RecordCitation(vendor string, cited bool, err error) {
	result := "not_cited"
	switch {
	case err != nil:
		result = "error"
	case cited:
		result = "cited"
	}
	CitationQueries.WithLabelValues(vendor, result).Inc()
}

// RecordLogin counts an admin login attempt.
func RecordLogin(success bool) {
	if success {
		LoginAttempts.WithLabelValues("success").Inc()
		return
	}
	LoginAttempts.WithLabelValues("failure").Inc()
}
