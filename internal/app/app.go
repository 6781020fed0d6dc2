// Package app assembles the AI provider stack and the digest pipeline from
// configuration. The api, worker and CLI binaries share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"company-pulse/internal/config"
	"company-pulse/internal/infra/fetcher"
	"company-pulse/internal/infra/formatter"
	"company-pulse/internal/infra/highlighter"
	"company-pulse/internal/infra/newsfeed"
	pkgconfig "company-pulse/internal/pkg/config"
	"company-pulse/internal/usecase/ai"
	"company-pulse/internal/usecase/digest"
)

// ErrNoHealthyProvider is reported by readiness checks while no provider can serve.
var ErrNoHealthyProvider = errors.New("no healthy AI provider")

// AIStack is the wired provider stack.
type AIStack struct {
	Registry     *ai.ProviderRegistry
	Monitor      *ai.HealthMonitor
	Orchestrator *ai.FallbackOrchestrator
	Service      *ai.Service
}

// BuildProviders creates the provider clients enabled by cfg, in
// registration order.
func BuildProviders(cfg *config.AIConfig) ([]ai.ProviderClient, error) {
	if cfg.Mode == config.ModeSimulated {
		return []ai.ProviderClient{
			highlighter.NewSimulated(highlighter.ClaudeName, 0),
			highlighter.NewSimulated(highlighter.OpenAIName, 0),
		}, nil
	}

	metrics := highlighter.NewPrometheusExtractionMetrics()
	var clients []ai.ProviderClient
	if cfg.AnthropicAPIKey != "" {
		hc := applyOverrides(highlighter.DefaultClaudeConfig(cfg.AnthropicAPIKey), cfg.ClaudeModel, cfg)
		c, err := highlighter.NewClaude(hc, highlighter.WithMetrics(metrics))
		if err != nil {
			return nil, fmt.Errorf("claude provider: %w", err)
		}
		clients = append(clients, c)
	}
	if cfg.OpenAIAPIKey != "" {
		hc := applyOverrides(highlighter.DefaultOpenAIConfig(cfg.OpenAIAPIKey), cfg.OpenAIModel, cfg)
		c, err := highlighter.NewOpenAI(hc, highlighter.WithMetrics(metrics))
		if err != nil {
			return nil, fmt.Errorf("openai provider: %w", err)
		}
		clients = append(clients, c)
	}
	if len(clients) == 0 {
		return nil, fmt.Errorf("no AI provider configured")
	}
	return clients, nil
}

func applyOverrides(hc highlighter.Config, model string, cfg *config.AIConfig) highlighter.Config {
	if model != "" {
		hc.Model = model
	}
	hc.Timeout = cfg.RequestTimeout
	hc.DegradedLatency = cfg.DegradedLatency
	hc.RequestsPerSecond = cfg.RateLimitRPS
	hc.Burst = cfg.RateLimitBurst
	return hc
}

// NewAIStack wires registry, health monitor, fallback orchestrator and the
// content service for the given clients.
func NewAIStack(cfg *config.AIConfig, clients ...ai.ProviderClient) (*AIStack, error) {
	registry, err := ai.NewProviderRegistry(clients...)
	if err != nil {
		return nil, err
	}
	metrics := ai.PrometheusMetrics{}
	monitor, err := ai.NewHealthMonitor(registry, ai.HealthMonitorConfig{
		Interval:        cfg.HealthCheckInterval,
		PreferenceOrder: cfg.PreferenceOrder,
		ProbeTimeout:    cfg.ProbeTimeout,
	}, ai.WithHealthMetrics(metrics))
	if err != nil {
		return nil, err
	}
	orchestrator, err := ai.NewFallbackOrchestrator(monitor, registry, ai.WithOrchestratorMetrics(metrics))
	if err != nil {
		return nil, err
	}
	svc, err := ai.NewService(orchestrator, formatter.NewTemplate())
	if err != nil {
		return nil, err
	}
	return &AIStack{
		Registry:     registry,
		Monitor:      monitor,
		Orchestrator: orchestrator,
		Service:      svc,
	}, nil
}

// LoadAIStack reads the AI configuration from the environment and wires the stack.
func LoadAIStack(logger *slog.Logger) (*AIStack, *config.AIConfig, error) {
	cfg, warnings, err := config.LoadAIConfig()
	logWarnings(logger, "ai", warnings)
	if err != nil {
		return nil, nil, err
	}
	clients, err := BuildProviders(cfg)
	if err != nil {
		return nil, nil, err
	}
	stack, err := NewAIStack(cfg, clients...)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("AI providers configured",
		slog.String("mode", cfg.Mode),
		slog.Any("providers", stack.Registry.Names()),
		slog.Any("preference_order", cfg.PreferenceOrder),
		slog.Duration("health_check_interval", cfg.HealthCheckInterval))
	return stack, cfg, nil
}

// Ready reports ErrNoHealthyProvider while the snapshot has no primary.
func (s *AIStack) Ready(ctx context.Context) error {
	snap, err := s.Monitor.GetSnapshot(ctx, false)
	if err != nil {
		return err
	}
	if !snap.HasPrimary() {
		return ErrNoHealthyProvider
	}
	return nil
}

// DigestOptions configures the news and content fetchers feeding the digest.
type DigestOptions struct {
	News    newsfeed.Config
	Content fetcher.Config
	Digest  digest.Config
}

// LoadDigestOptions reads NEWS_*, CONTENT_FETCH_* and DIGEST_* variables.
func LoadDigestOptions() (DigestOptions, []string, error) {
	var w pkgconfig.Warnings

	contentCfg, contentWarnings, err := fetcher.LoadConfigFromEnv()
	w = append(w, contentWarnings...)
	if err != nil {
		return DigestOptions{}, w, err
	}

	newsDef := newsfeed.DefaultConfig()
	digestDef := digest.DefaultConfig()
	return DigestOptions{
		News: newsfeed.Config{
			BaseURL:   pkgconfig.LoadEnvString("NEWS_FEED_URL", newsDef.BaseURL),
			Language:  pkgconfig.LoadEnvString("NEWS_LANGUAGE", newsDef.Language),
			Region:    pkgconfig.LoadEnvString("NEWS_REGION", newsDef.Region),
			UserAgent: newsDef.UserAgent,
		},
		Content: contentCfg,
		Digest: digest.Config{
			ContentParallelism: contentCfg.Parallelism,
			EnhanceThreshold:   contentCfg.Threshold,
			ProcessParallelism: pkgconfig.Add(&w, pkgconfig.LoadEnvInt("DIGEST_PARALLELISM", digestDef.ProcessParallelism, pkgconfig.IntBetween(1, 20))),
			DefaultMaxArticles: pkgconfig.Add(&w, pkgconfig.LoadEnvInt("DIGEST_MAX_ARTICLES", digestDef.DefaultMaxArticles, pkgconfig.IntBetween(1, 50))),
		},
	}, w, nil
}

// DigestPipeline is the digest service plus the news search it runs on,
// which the API also serves directly.
type DigestPipeline struct {
	Service *digest.Service
	News    *newsfeed.GoogleNewsFetcher
}

// NewDigestPipeline wires the news search, optional full-text fetcher and
// processor into a digest service.
func NewDigestPipeline(opts DigestOptions, processor digest.ArticleProcessor) *DigestPipeline {
	client := &http.Client{Timeout: 30 * time.Second}
	news := newsfeed.NewGoogleNewsFetcher(client, opts.News)

	var content digest.ContentFetcher
	if opts.Content.Enabled {
		content = fetcher.NewReadabilityFetcher(opts.Content)
	}
	return &DigestPipeline{
		Service: digest.NewService(news, content, processor, opts.Digest),
		News:    news,
	}
}

// LoadDigestPipeline reads the digest options from the environment and wires
// the pipeline around processor.
func LoadDigestPipeline(logger *slog.Logger, processor digest.ArticleProcessor) (*DigestPipeline, error) {
	opts, warnings, err := LoadDigestOptions()
	logWarnings(logger, "digest", warnings)
	if err != nil {
		return nil, err
	}
	logger.Info("digest pipeline configured",
		slog.String("news_language", opts.News.Language),
		slog.String("news_region", opts.News.Region),
		slog.Bool("content_fetch_enabled", opts.Content.Enabled),
		slog.Int("content_fetch_threshold", opts.Content.Threshold),
		slog.Int("process_parallelism", opts.Digest.ProcessParallelism))
	return NewDigestPipeline(opts, processor), nil
}

func logWarnings(logger *slog.Logger, component string, warnings []string) {
	for _, w := range warnings {
		logger.Warn("Configuration fallback applied",
			slog.String("component", component),
			slog.String("warning", w))
	}
}
