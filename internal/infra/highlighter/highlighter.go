// Package highlighter provides the AI provider clients that extract highlights
// from news articles. Claude (Anthropic) and OpenAI clients share one calling
// engine: client-side rate limiting, a named circuit breaker and retry with
// backoff around every extraction. Simulated serves local runs without keys.
package highlighter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"company-pulse/internal/domain/entity"
	"company-pulse/internal/pkg/requestctx"
	"company-pulse/internal/resilience/circuitbreaker"
	"company-pulse/internal/resilience/retry"
	"company-pulse/internal/usecase/ai"
	"company-pulse/internal/utils/text"
)

// ErrCircuitOpen is returned while a provider's circuit breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker open")

// Option customizes a provider client.
type Option func(*engine)

// WithRetryConfig overrides the retry policy for extraction calls.
func WithRetryConfig(cfg retry.Config) Option {
	return func(e *engine) { e.retryConfig = cfg }
}

// WithCircuitBreaker overrides the breaker configuration.
func WithCircuitBreaker(cfg circuitbreaker.Config) Option {
	return func(e *engine) { e.breaker = circuitbreaker.New(cfg) }
}

// WithMetrics overrides the metrics recorder.
func WithMetrics(m ExtractionMetricsRecorder) Option {
	return func(e *engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// completeFunc sends one prompt to a provider and returns the raw reply text.
type completeFunc func(ctx context.Context, prompt string) (string, error)

// engine holds the calling discipline shared by the live clients.
type engine struct {
	name        string
	cfg         Config
	breaker     *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
	limiter     *RateLimiter
	metrics     ExtractionMetricsRecorder
}

func newEngine(name string, cfg Config, breaker circuitbreaker.Config, opts []Option) *engine {
	e := &engine{
		name:        name,
		cfg:         cfg,
		breaker:     circuitbreaker.New(breaker),
		retryConfig: retry.AIAPIConfig(),
		limiter:     NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
		metrics:     NewPrometheusExtractionMetrics(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// extract runs complete under the rate limiter, breaker and retry policy and
// parses the reply.
func (e *engine) extract(ctx context.Context, req ai.HighlightRequest, complete completeFunc) ([]entity.NewsHighlight, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	requestID := requestctx.FromContextOrNew(ctx)
	prompt := buildPrompt(req, e.cfg.MaxInputChars, e.cfg.MaxHighlights)
	if n := text.CountRunes(req.Text); n > e.cfg.MaxInputChars {
		slog.Warn("article text truncated for provider",
			slog.String("provider", e.name),
			slog.String("request_id", requestID),
			slog.Int("original_length", n),
			slog.Int("max_length", e.cfg.MaxInputChars))
	}

	slog.InfoContext(ctx, "Starting highlight extraction",
		slog.String("provider", e.name),
		slog.String("request_id", requestID),
		slog.String("company", req.CompanyName),
		slog.Int("prompt_length", text.CountRunes(prompt)))

	start := time.Now()
	var highlights []entity.NewsHighlight

	err := retry.WithBackoff(ctx, e.retryConfig, func() error {
		wait, err := e.limiter.Wait(ctx)
		if err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
		if wait > time.Millisecond {
			e.metrics.RecordRateLimitWait(e.name, wait)
		}

		result, err := circuitbreaker.Do(e.breaker, func() ([]entity.NewsHighlight, error) {
			reply, err := complete(ctx, prompt)
			if err != nil {
				return nil, err
			}
			return parseHighlights(reply)
		})
		if err != nil {
			if circuitbreaker.IsRejected(err) {
				slog.Warn("provider circuit breaker open, request rejected",
					slog.String("provider", e.name),
					slog.String("circuit", e.breaker.Name()),
					slog.String("state", e.breaker.State().String()))
				return fmt.Errorf("%s unavailable: %w", e.name, ErrCircuitOpen)
			}
			return err
		}

		highlights = result
		return nil
	})

	duration := time.Since(start)
	e.metrics.RecordDuration(e.name, err == nil, duration)

	if err != nil {
		slog.ErrorContext(ctx, "Highlight extraction failed",
			slog.String("provider", e.name),
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s extract highlights: %w", e.name, err)
	}

	e.metrics.RecordHighlights(e.name, len(highlights))
	slog.InfoContext(ctx, "Highlight extraction completed",
		slog.String("provider", e.name),
		slog.String("request_id", requestID),
		slog.Int("highlights", len(highlights)),
		slog.Duration("duration", duration))

	return highlights, nil
}

// probe times ping and maps the outcome to a health status. It never fails.
func (e *engine) probe(ctx context.Context, ping func(context.Context) error) ai.ProviderHealth {
	checkedAt := time.Now()
	if e.breaker.IsOpen() {
		return ai.Unhealthy(e.name, checkedAt, ErrCircuitOpen.Error())
	}

	start := time.Now()
	err := ping(ctx)
	elapsed := time.Since(start)

	h := ai.ProviderHealth{
		ServiceName:   e.name,
		Status:        ai.StatusHealthy,
		ResponseTime:  &elapsed,
		LastCheckedAt: checkedAt,
	}
	switch {
	case err != nil:
		h.Status = ai.StatusUnhealthy
		h.Error = err.Error()
	case elapsed > e.cfg.DegradedLatency:
		h.Status = ai.StatusDegraded
		h.Error = fmt.Sprintf("slow response: %s", elapsed.Round(time.Millisecond))
	case e.breaker.State() == gobreaker.StateHalfOpen:
		h.Status = ai.StatusDegraded
		h.Error = "circuit breaker half-open"
	}
	return h
}

// httpError converts a status-carrying client error into a retry.HTTPError so
// the retry policy can classify it.
func httpError(statusCode int, err error) error {
	return &retry.HTTPError{StatusCode: statusCode, Message: err.Error(), Err: err}
}
