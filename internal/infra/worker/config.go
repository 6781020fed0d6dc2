// Package worker holds the scheduled digest worker's configuration, metrics
// and health endpoints.
package worker

import (
	"log/slog"
	"time"

	"company-pulse/internal/pkg/config"
)

// WorkerConfig configures the scheduled digest worker.
type WorkerConfig struct {
	// CronSchedule is a five-field cron expression, evaluated in Timezone.
	CronSchedule string
	Timezone     string
	// DigestTimeout bounds one full pass over the watchlist.
	DigestTimeout time.Duration
	HealthPort    int
	MetricsPort   int
	WatchlistFile string
	// OutputDir receives one JSON file per company digest.
	OutputDir string
	// RunOnStart triggers one pass immediately after startup.
	RunOnStart bool
}

// DefaultConfig returns the worker defaults: every day at 07:00 UTC.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:  "0 7 * * *",
		Timezone:      "UTC",
		DigestTimeout: 30 * time.Minute,
		HealthPort:    9091,
		MetricsPort:   9090,
		WatchlistFile: "watchlist.yaml",
		OutputDir:     "digests",
	}
}

// LoadConfigFromEnv reads the worker variables. It never fails: invalid
// values are logged, counted in metrics and replaced by their defaults.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) *WorkerConfig {
	def := DefaultConfig()
	var fallbacks []string

	track := func(field string, warnings []string) {
		if len(warnings) == 0 {
			return
		}
		fallbacks = append(fallbacks, field)
		for _, w := range warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", w))
		}
	}

	schedule := config.LoadEnvWithFallback("CRON_SCHEDULE", def.CronSchedule, config.ValidateCronSchedule)
	track("cron_schedule", schedule.Warnings)
	tz := config.LoadEnvWithFallback("WORKER_TIMEZONE", def.Timezone, config.ValidateTimezone)
	track("timezone", tz.Warnings)
	timeout := config.LoadEnvDuration("DIGEST_TIMEOUT", def.DigestTimeout, config.DurationBetween(time.Minute, 4*time.Hour))
	track("digest_timeout", timeout.Warnings)
	healthPort := config.LoadEnvInt("WORKER_HEALTH_PORT", def.HealthPort, config.IntBetween(1024, 65535))
	track("health_port", healthPort.Warnings)
	metricsPort := config.LoadEnvInt("WORKER_METRICS_PORT", def.MetricsPort, config.IntBetween(1024, 65535))
	track("metrics_port", metricsPort.Warnings)
	runOnStart := config.LoadEnvBool("WORKER_RUN_ON_START", def.RunOnStart)
	track("run_on_start", runOnStart.Warnings)

	metrics.Observe(fallbacks)

	return &WorkerConfig{
		CronSchedule:  schedule.Value,
		Timezone:      tz.Value,
		DigestTimeout: timeout.Value,
		HealthPort:    healthPort.Value,
		MetricsPort:   metricsPort.Value,
		WatchlistFile: config.LoadEnvString("WATCHLIST_FILE", def.WatchlistFile),
		OutputDir:     config.LoadEnvString("WORKER_OUTPUT_DIR", def.OutputDir),
		RunOnStart:    runOnStart.Value,
	}
}
