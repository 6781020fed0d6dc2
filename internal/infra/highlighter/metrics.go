package highlighter

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ExtractionMetricsRecorder records provider-level extraction metrics.
// Tests inject a mock instead of the Prometheus implementation.
type ExtractionMetricsRecorder interface {
	// RecordDuration records one provider call, labelled by outcome.
	RecordDuration(provider string, success bool, duration time.Duration)

	// RecordHighlights records how many highlights one call produced.
	RecordHighlights(provider string, count int)

	// RecordRateLimitWait records time spent waiting on the client-side limiter.
	RecordRateLimitWait(provider string, wait time.Duration)
}

// PrometheusExtractionMetrics implements ExtractionMetricsRecorder with Prometheus.
type PrometheusExtractionMetrics struct {
	duration   *prometheus.HistogramVec
	highlights *prometheus.HistogramVec
	wait       *prometheus.HistogramVec
}

var (
	prometheusMetricsInstance *PrometheusExtractionMetrics
	prometheusMetricsOnce     sync.Once
)

// getOrCreateHistogramVec returns the registered collector when one with the
// same descriptor already exists.
func getOrCreateHistogramVec(opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(opts, labels)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.HistogramVec)
		}
		return promauto.NewHistogramVec(opts, labels)
	}
	return h
}

// NewPrometheusExtractionMetrics returns the process-wide recorder.
// Metrics are registered once so repeated construction in tests is safe.
func NewPrometheusExtractionMetrics() *PrometheusExtractionMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusExtractionMetrics{
			duration: getOrCreateHistogramVec(prometheus.HistogramOpts{
				Name:    "highlight_extraction_duration_seconds",
				Help:    "Time taken by a provider to extract highlights",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
			}, []string{"provider", "result"}),
			highlights: getOrCreateHistogramVec(prometheus.HistogramOpts{
				Name:    "highlight_extraction_count",
				Help:    "Number of highlights returned per extraction",
				Buckets: []float64{0, 1, 2, 3, 4, 5, 8, 10},
			}, []string{"provider"}),
			wait: getOrCreateHistogramVec(prometheus.HistogramOpts{
				Name:    "highlight_rate_limit_wait_seconds",
				Help:    "Time spent waiting for the provider rate limiter",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 30},
			}, []string{"provider"}),
		}
	})
	return prometheusMetricsInstance
}

// RecordDuration implements ExtractionMetricsRecorder.
func (p *PrometheusExtractionMetrics) RecordDuration(provider string, success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	p.duration.WithLabelValues(provider, result).Observe(duration.Seconds())
}

// RecordHighlights implements ExtractionMetricsRecorder.
func (p *PrometheusExtractionMetrics) RecordHighlights(provider string, count int) {
	p.highlights.WithLabelValues(provider).Observe(float64(count))
}

// RecordRateLimitWait implements ExtractionMetricsRecorder.
func (p *PrometheusExtractionMetrics) RecordRateLimitWait(provider string, wait time.Duration) {
	p.wait.WithLabelValues(provider).Observe(wait.Seconds())
}
