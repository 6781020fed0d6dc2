// Package metrics provides the process-wide Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// sizeBuckets spans 100 B to 1 GB.
var sizeBuckets = prometheus.ExponentialBuckets(100, 10, 8)

// HTTP server metrics. The path label is the normalized route, never the raw URL.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests served, by method, route and status",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency; AI-backed routes can take tens of seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"method", "path", "status"})

	HTTPRequestSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_size_bytes",
		Help:    "HTTP request body size",
		Buckets: sizeBuckets,
	}, []string{"method", "path"})

	HTTPResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_size_bytes",
		Help:    "HTTP response body size",
		Buckets: sizeBuckets,
	}, []string{"method", "path"})

	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_active_connections",
		Help: "Requests currently being served",
	})
)

// Digest pipeline metrics.
var (
	NewsArticlesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "news_articles_fetched_total",
		Help: "News articles returned by the search feed, per company",
	}, []string{"company"})

	NewsFetchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "news_fetch_errors_total",
		Help: "Failed news searches, per company",
	}, []string{"company"})

	// DigestArticlesTotal has result "success" or "failure".
	DigestArticlesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "digest_articles_total",
		Help: "Articles run through highlight extraction and formatting",
	}, []string{"company", "result"})

	DigestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "digest_duration_seconds",
		Help:    "Time taken to build one company digest",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	}, []string{"company"})

	// ContentFetchAttemptsTotal has result "success", "failure" or "skipped".
	ContentFetchAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "content_fetch_attempts_total",
		Help: "Full article text fetch attempts",
	}, []string{"result"})

	ContentFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "content_fetch_duration_seconds",
		Help:    "Time taken to fetch and extract one article page",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 8),
	})

	ContentFetchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "content_fetch_size_bytes",
		Help:    "Extracted article text size",
		Buckets: prometheus.ExponentialBuckets(100, 2, 18),
	})
)

// Upstream resilience metrics, labeled by breaker name.
var (
	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Current circuit breaker state (0 closed, 1 half-open, 2 open)",
	}, []string{"breaker"})

	CircuitBreakerTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circuit_breaker_transitions_total",
		Help: "Circuit breaker state changes, by target state",
	}, []string{"breaker", "to"})
)

// RecordHTTPRequest records one served request. Zero sizes are not observed.
func RecordHTTPRequest(method, path, status string, duration time.Duration, requestSize, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	}
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordCircuitBreakerState records a breaker moving to state (0..2) named to.
func RecordCircuitBreakerState(breaker string, state int, to string) {
	CircuitBreakerState.WithLabelValues(breaker).Set(float64(state))
	CircuitBreakerTransitionsTotal.WithLabelValues(breaker, to).Inc()
}
