package ai

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for provider health and orchestration.
var (
	// providerProbeTotal counts health probes per provider and resulting status.
	providerProbeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_provider_probe_total",
			Help: "Total number of AI provider health probes",
		},
		[]string{"provider", "status"},
	)

	// providerStatus exposes the last known status (0 healthy, 1 degraded, 2 unhealthy).
	providerStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ai_provider_status",
			Help: "Last known AI provider status (0=healthy, 1=degraded, 2=unhealthy)",
		},
		[]string{"provider"},
	)

	// providerProbeDuration tracks probe response times.
	providerProbeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_provider_probe_duration_seconds",
			Help:    "AI provider health probe duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	// operationTotal counts orchestrated calls by the provider that settled them.
	operationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_operation_total",
			Help: "Total number of orchestrated AI operations",
		},
		[]string{"operation", "provider", "result"}, // result: success|fallback_success|failure
	)

	// operationDuration tracks end-to-end orchestrated call duration.
	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_operation_duration_seconds",
			Help:    "Orchestrated AI operation duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)

	// fallbackTotal counts switches from primary to fallback.
	fallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_fallback_total",
			Help: "Total number of fallback attempts after a primary failure",
		},
		[]string{"operation", "from", "to"},
	)
)

// MetricsRecorder receives health and orchestration events.
type MetricsRecorder interface {
	RecordProbe(h ProviderHealth)
	RecordOperation(operation, provider, result string, duration time.Duration)
	RecordFallback(operation, from, to string)
}

// PrometheusMetrics records events into the package's Prometheus collectors.
type PrometheusMetrics struct{}

// RecordProbe records the outcome of one health probe.
func (PrometheusMetrics) RecordProbe(h ProviderHealth) {
	providerProbeTotal.WithLabelValues(h.ServiceName, h.Status.String()).Inc()
	providerStatus.WithLabelValues(h.ServiceName).Set(float64(h.Status))
	if h.ResponseTime != nil {
		providerProbeDuration.WithLabelValues(h.ServiceName).Observe(h.ResponseTime.Seconds())
	}
}

// RecordOperation records one orchestrated call.
// provider is empty when no provider settled the call.
func (PrometheusMetrics) RecordOperation(operation, provider, result string, duration time.Duration) {
	if provider == "" {
		provider = "none"
	}
	operationTotal.WithLabelValues(operation, provider, result).Inc()
	operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordFallback records a switch from one provider to another.
func (PrometheusMetrics) RecordFallback(operation, from, to string) {
	fallbackTotal.WithLabelValues(operation, from, to).Inc()
}

// NoopMetrics discards all events.
type NoopMetrics struct{}

func (NoopMetrics) RecordProbe(ProviderHealth)                            {}
func (NoopMetrics) RecordOperation(string, string, string, time.Duration) {}
func (NoopMetrics) RecordFallback(string, string, string)                 {}
