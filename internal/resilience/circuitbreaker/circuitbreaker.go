// Package circuitbreaker guards calls to upstream services (AI provider APIs,
// the news search feed, publisher sites and chat webhooks) with
// github.com/sony/gobreaker. Breakers trip on a failure ratio once a minimum
// number of requests has been seen, and report every state change as a log
// line and a Prometheus gauge.
package circuitbreaker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"company-pulse/internal/observability/metrics"
)

// Config describes one breaker.
type Config struct {
	Name string

	// MaxRequests is how many probes pass while half-open.
	MaxRequests uint32

	// Interval clears the closed-state counts; zero never clears them.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration

	// FailureThreshold is the failure ratio (0..1) that trips the breaker.
	FailureThreshold float64

	// MinRequests must be reached before the ratio is considered.
	MinRequests uint32
}

func profile(name string, probes uint32, interval, timeout time.Duration, ratio float64, minRequests uint32) Config {
	return Config{
		Name:             name,
		MaxRequests:      probes,
		Interval:         interval,
		Timeout:          timeout,
		FailureThreshold: ratio,
		MinRequests:      minRequests,
	}
}

// DefaultConfig trips at 60% failures over at least five requests.
func DefaultConfig(name string) Config {
	return profile(name, 3, 30*time.Second, time.Minute, 0.6, 5)
}

// ClaudeAPIConfig guards the Anthropic Messages API.
func ClaudeAPIConfig() Config { return DefaultConfig("claude-api") }

// OpenAIAPIConfig guards the OpenAI chat completions API.
func OpenAIAPIConfig() Config { return DefaultConfig("openai-api") }

// NewsFeedConfig guards the news search feed, which tolerates more failures.
func NewsFeedConfig() Config {
	return profile("news-feed", 5, time.Minute, 2*time.Minute, 0.7, 10)
}

// ContentFetchConfig is shared by all publisher sites. They fail
// independently, so the breaker trips late and reopens soon.
func ContentFetchConfig() Config {
	return profile("content-fetch", 3, time.Minute, 5*time.Minute, 0.8, 10)
}

// WebhookConfig guards one chat webhook destination.
func WebhookConfig(name string) Config {
	return profile(name, 1, 5*time.Minute, 5*time.Minute, 0.5, 3)
}

// CircuitBreaker wraps a gobreaker.CircuitBreaker.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New creates a breaker for cfg and publishes its initial closed state.
func New(cfg Config) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return shouldTrip(counts, cfg)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			metrics.RecordCircuitBreakerState(name, stateValue(to), to.String())
		},
	}
	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)

	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		name:    cfg.Name,
	}
}

func shouldTrip(counts gobreaker.Counts, cfg Config) bool {
	if counts.Requests == 0 || counts.Requests < cfg.MinRequests {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
}

func stateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Execute runs fn through the breaker. While open it fails fast with
// gobreaker.ErrOpenState; while half-open and saturated with
// gobreaker.ErrTooManyRequests.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

// Do is Execute with a typed result.
func Do[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

// IsRejected reports whether err means the breaker refused to run the call.
func IsRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// Counts returns the request counts of the current generation.
func (cb *CircuitBreaker) Counts() gobreaker.Counts {
	return cb.breaker.Counts()
}

func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
