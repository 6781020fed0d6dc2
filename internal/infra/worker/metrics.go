package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"company-pulse/internal/pkg/config"
)

// WorkerMetrics tracks scheduled digest runs.
type WorkerMetrics struct {
	*config.ConfigMetrics

	RunsTotal            *prometheus.CounterVec
	RunDurationSeconds   prometheus.Histogram
	CompaniesTotal       *prometheus.CounterVec
	PostsGeneratedTotal  prometheus.Counter
	LastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics registers the worker metrics on the default registry.
func NewWorkerMetrics() *WorkerMetrics {
	return newWorkerMetrics(prometheus.DefaultRegisterer)
}

func newWorkerMetrics(reg prometheus.Registerer) *WorkerMetrics {
	factory := promauto.With(reg)
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetricsWith("worker", reg),
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_digest_runs_total",
			Help: "Total number of scheduled digest runs by status",
		}, []string{"status"}),
		RunDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_digest_run_duration_seconds",
			Help:    "Duration of one pass over the watchlist",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),
		CompaniesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_digest_companies_total",
			Help: "Companies processed by scheduled runs, by result",
		}, []string{"result"}),
		PostsGeneratedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "worker_digest_posts_generated_total",
			Help: "Total number of platform posts generated by scheduled runs",
		}),
		LastSuccessTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "worker_digest_last_success_timestamp",
			Help: "Unix timestamp of the last successful digest run",
		}),
	}
}

// RecordRun records one finished run.
func (m *WorkerMetrics) RecordRun(status string, seconds float64) {
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDurationSeconds.Observe(seconds)
	if status == "success" {
		m.LastSuccessTimestamp.SetToCurrentTime()
	}
}

// RecordCompanies records per-company outcomes of one run.
func (m *WorkerMetrics) RecordCompanies(succeeded, failed int) {
	m.CompaniesTotal.WithLabelValues("success").Add(float64(succeeded))
	m.CompaniesTotal.WithLabelValues("failure").Add(float64(failed))
}

// RecordPosts adds generated posts.
func (m *WorkerMetrics) RecordPosts(count int) {
	m.PostsGeneratedTotal.Add(float64(count))
}
