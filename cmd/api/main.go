package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"company-pulse/internal/app"
	"company-pulse/internal/config"
	hhttp "company-pulse/internal/handler/http"
	"company-pulse/internal/handler/http/pulse"
	"company-pulse/internal/handler/http/requestid"
	"company-pulse/internal/observability/logging"
	"company-pulse/internal/observability/tracing"
	pkgconfig "company-pulse/internal/pkg/config"
)

func main() {
	logger := initLogger()
	version := getVersion()

	tp := tracing.Setup(tracing.ConfigFromEnv("company-pulse-api", version))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error("tracer shutdown failed", slog.Any("error", err))
		}
	}()

	serverCfg := loadServerConfig(logger)

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

	components := setupServer(logger, serverCfg, stack, pipeline, version)
	runServer(logger, serverCfg, stack, components, version)
}

// initLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// getVersion returns VERSION or "dev".
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// loadServerConfig reads API_* variables, logging and counting fallbacks.
func loadServerConfig(logger *slog.Logger) *config.ServerConfig {
	cfg, fallbacks := config.LoadServerConfig()
	for _, field := range fallbacks {
		logger.Warn("Configuration fallback applied",
			slog.String("component", "api"),
			slog.String("field", field))
	}
	pkgconfig.NewConfigMetrics("api").Observe(fallbacks)
	return cfg
}

// ServerComponents holds what the server needs at runtime and on shutdown.
type ServerComponents struct {
	Handler http.Handler
	Limiter *hhttp.IPRateLimiter
}

// setupServer registers routes and wraps them in the middleware chain.
func setupServer(logger *slog.Logger, cfg *config.ServerConfig, stack *app.AIStack, pipeline *app.DigestPipeline, version string) *ServerComponents {
	mux := setupRoutes(logger, stack, pipeline, version)

	limiter := hhttp.NewIPRateLimiter(hhttp.IPRateLimiterConfig{
		RequestsPerMinute: cfg.RateLimitRPM,
		Burst:             cfg.RateLimitBurst,
		TrustForwardedFor: cfg.TrustForwardedFor,
	})
	logger.Info("rate limiting initialized",
		slog.Int("requests_per_minute", cfg.RateLimitRPM),
		slog.Int("burst", cfg.RateLimitBurst),
		slog.Bool("trust_forwarded_for", cfg.TrustForwardedFor))

	return &ServerComponents{
		Handler: applyMiddleware(logger, cfg, mux, limiter),
		Limiter: limiter,
	}
}

// setupRoutes mounts the probes, metrics and v1 API.
func setupRoutes(logger *slog.Logger, stack *app.AIStack, pipeline *app.DigestPipeline, version string) *http.ServeMux {
	checks := map[string]hhttp.Check{"ai_providers": stack.Ready}

	mux := http.NewServeMux()
	mux.Handle("GET /health", &hhttp.HealthHandler{Version: version, Checks: checks})
	mux.Handle("GET /health/ai", hhttp.NewAIHealthHandler(stack.Service))
	mux.Handle("GET /ready", &hhttp.ReadyHandler{Checks: checks})
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	pulse.Register(mux, stack.Service, pipeline.Service, pipeline.News, logger)
	return mux
}

// applyMiddleware wraps handler, outermost first:
// tracing, request id, rate limit, recovery, logging, body limit, timeout, metrics.
func applyMiddleware(logger *slog.Logger, cfg *config.ServerConfig, handler http.Handler, limiter *hhttp.IPRateLimiter) http.Handler {
	h := hhttp.MetricsMiddleware(handler)
	h = hhttp.Timeout(cfg.RequestTimeout)(h)
	h = hhttp.LimitRequestBody(cfg.MaxBodyBytes)(h)
	h = hhttp.Logging(logger)(h)
	h = hhttp.Recover(logger)(h)
	h = limiter.Middleware(h)
	h = requestid.Middleware(h)
	return tracing.Middleware(h)
}

// runServer starts the health monitor and HTTP server and blocks until
// SIGINT or SIGTERM, then shuts both down.
func runServer(logger *slog.Logger, cfg *config.ServerConfig, stack *app.AIStack, components *ServerComponents, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go stack.Monitor.Start(ctx)
	go components.Limiter.Cleanup(ctx, time.Minute)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.Addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	cancel()
	logger.Info("server stopped")
}
