package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"company-pulse/internal/app"
	"company-pulse/internal/config"
	"company-pulse/internal/handler/http/respond"
	"company-pulse/internal/infra/notifier"
	workerPkg "company-pulse/internal/infra/worker"
	"company-pulse/internal/observability/logging"
	"company-pulse/internal/observability/tracing"
	"company-pulse/internal/usecase/digest"
)

func main() {
	logger := initLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp := tracing.Setup(tracing.ConfigFromEnv("company-pulse-worker", os.Getenv("VERSION")))
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("digest_timeout", workerConfig.DigestTimeout),
		slog.String("watchlist_file", workerConfig.WatchlistFile),
		slog.String("output_dir", workerConfig.OutputDir),
		slog.Int("health_port", workerConfig.HealthPort))

	watchlist, err := config.LoadWatchlist(workerConfig.WatchlistFile)
	if err != nil {
		logger.Error("failed to load watchlist", slog.Any("error", err))
		os.Exit(1)
	}
	writer, err := workerPkg.NewDigestWriter(workerConfig.OutputDir)
	if err != nil {
		logger.Error("failed to prepare output directory", slog.Any("error", err))
		os.Exit(1)
	}

	notifyCfg, notifyWarnings := notifier.LoadConfigFromEnv()
	for _, w := range notifyWarnings {
		logger.Warn("Configuration fallback applied",
			slog.String("component", "notifier"),
			slog.String("warning", w))
	}
	notify := notifier.New(notifyCfg, logger)

	stack, _, err := app.LoadAIStack(logger)
	if err != nil {
		logger.Error("failed to configure AI providers", slog.Any("error", err))
		os.Exit(1)
	}
	pipeline, err := app.LoadDigestPipeline(logger, stack.Service)
	if err != nil {
		logger.Error("failed to configure digest pipeline", slog.Any("error", err))
		os.Exit(1)
	}
	go stack.Monitor.Start(ctx)

	startMetricsServer(ctx, logger, workerConfig.MetricsPort, stack.Service)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	healthServer.AddCheck("ai_providers", stack.Ready)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	job := &digestJob{
		logger:    logger,
		svc:       pipeline.Service,
		targets:   watchlist.Companies,
		writer:    writer,
		notify:    notify,
		metrics:   workerMetrics,
		timeout:   workerConfig.DigestTimeout,
		parentCtx: ctx,
	}
	startCronWorker(ctx, logger, job, workerConfig, healthServer)
}

// initLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// startCronWorker schedules job and blocks until ctx is canceled, then waits
// for a running pass to finish.
func startCronWorker(ctx context.Context, logger *slog.Logger, job *digestJob, cfg *workerPkg.WorkerConfig, healthServer *workerPkg.HealthServer) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddJob(cfg.CronSchedule, job); err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	if cfg.RunOnStart {
		go job.Run()
	}

	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone),
		slog.Int("companies", len(job.targets)))

	<-ctx.Done()
	healthServer.SetReady(false)
	logger.Info("worker stopping, waiting for running digest")
	<-c.Stop().Done()
	job.wait()
	logger.Info("worker stopped")
}

// digestJob runs one pass over the watchlist. It implements cron.Job.
type digestJob struct {
	logger    *slog.Logger
	svc       *digest.Service
	targets   []digest.WatchTarget
	writer    *workerPkg.DigestWriter
	notify    notifier.Notifier
	metrics   *workerPkg.WorkerMetrics
	timeout   time.Duration
	parentCtx context.Context

	mu      sync.Mutex
	running sync.WaitGroup
}

// Run is serialized so a RunOnStart pass and a scheduled pass never overlap.
func (j *digestJob) Run() {
	j.running.Add(1)
	defer j.running.Done()
	j.mu.Lock()
	defer j.mu.Unlock()

	start := time.Now()
	j.logger.Info("digest run started", slog.Int("companies", len(j.targets)))

	ctx, cancel := context.WithTimeout(j.parentCtx, j.timeout)
	defer cancel()

	summary, err := j.svc.RunAll(ctx, j.targets)
	posts := 0
	if summary != nil {
		for _, d := range summary.Digests {
			for _, a := range d.Articles {
				if a.Content != nil {
					posts += len(a.Content.Posts)
				}
			}
			if nerr := j.notify.NotifyDigest(ctx, d); nerr != nil {
				j.logger.Warn("digest notification failed",
					slog.String("company", d.Company),
					slog.Any("error", respond.SanitizeError(nerr)))
			}
			path, werr := j.writer.Write(d)
			if werr != nil {
				j.logger.Error("failed to write digest",
					slog.String("company", d.Company),
					slog.Any("error", werr))
				continue
			}
			j.logger.Info("digest written",
				slog.String("company", d.Company),
				slog.String("path", path),
				slog.Int64("processed", d.Stats.Processed),
				slog.Int64("failed", d.Stats.Failed))
		}
		j.metrics.RecordCompanies(len(summary.Digests), len(summary.Failed))
		j.metrics.RecordPosts(posts)
	}

	status := "success"
	if err != nil {
		status = "failure"
		j.logger.Error("digest run failed", slog.Any("error", respond.SanitizeError(err)))
	}
	j.metrics.RecordRun(status, time.Since(start).Seconds())
	if summary != nil {
		j.logger.Info("digest run completed",
			slog.String("status", status),
			slog.Int("digests", len(summary.Digests)),
			slog.Int("failed_companies", len(summary.Failed)),
			slog.Int("posts", posts),
			slog.Duration("duration", time.Since(start)))
	}
}

func (j *digestJob) wait() {
	j.running.Wait()
}
