// Package retry re-runs failed upstream calls with capped exponential backoff.
// Only transient failures are retried: network timeouts, dropped connections,
// 5xx, 408 and 429 responses. A 429 carrying Retry-After stretches the next
// wait to what the server asked for, up to MaxRetryAfter.
package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// MaxRetryAfter caps how long a server-requested pause may delay one retry.
const MaxRetryAfter = 30 * time.Second

// Config describes one retry policy.
type Config struct {
	// Name labels log lines, e.g. "news_feed".
	Name string

	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// JitterFraction adds up to this fraction of the delay at random (0..1).
	JitterFraction float64
}

func profile(name string, attempts int, initial, maxDelay time.Duration) Config {
	return Config{
		Name:           name,
		MaxAttempts:    attempts,
		InitialDelay:   initial,
		MaxDelay:       maxDelay,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// DefaultConfig is three attempts starting at one second.
func DefaultConfig() Config { return profile("default", 3, time.Second, 30*time.Second) }

// NewsFeedConfig is used for news search feeds, which fail transiently but are cheap to repeat.
func NewsFeedConfig() Config { return profile("news_feed", 5, time.Second, 30*time.Second) }

// AIAPIConfig is used for highlight extraction calls. Every attempt is billed.
func AIAPIConfig() Config { return profile("ai_api", 3, 2*time.Second, 10*time.Second) }

// ContentFetchConfig is used for full article downloads.
func ContentFetchConfig() Config { return profile("content_fetch", 3, time.Second, 10*time.Second) }

// WebhookConfig is used for Slack and Discord deliveries.
func WebhookConfig() Config { return profile("webhook", 3, 2*time.Second, 15*time.Second) }

// ExhaustedError is returned when every attempt failed with a retryable error.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// WithBackoff calls fn until it succeeds, returns a non-retryable error, runs
// out of attempts, or ctx ends. A non-retryable error is returned as is.
func WithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	attempts := max(cfg.MaxAttempts, 1)
	delay := cfg.InitialDelay

	var lastErr error
	for attempt := 1; ; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			if attempt > 1 {
				slog.Info("operation succeeded after retry",
					slog.String("policy", cfg.Name),
					slog.Int("attempt", attempt))
			}
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			return &ExhaustedError{Attempts: attempt, Err: lastErr}
		}

		wait := addJitter(delay, cfg.JitterFraction)
		if ra := serverDelay(lastErr); ra > wait {
			wait = ra
		}
		slog.Warn("operation failed, retrying",
			slog.String("policy", cfg.Name),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Duration("delay", wait),
			slog.Any("error", lastErr))

		if err := sleep(ctx, wait); err != nil {
			return fmt.Errorf("retry aborted after %d attempts: %w", attempt, errors.Join(err, lastErr))
		}
		delay = nextDelay(delay, cfg)
	}
}

func nextDelay(d time.Duration, cfg Config) time.Duration {
	mult := cfg.Multiplier
	if mult < 1 {
		mult = 1
	}
	next := time.Duration(float64(d) * mult)
	if cfg.MaxDelay > 0 && next > cfg.MaxDelay {
		next = cfg.MaxDelay
	}
	return next
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// serverDelay is the Retry-After carried by an HTTPError in err's chain, if any.
func serverDelay(err error) time.Duration {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return min(httpErr.RetryAfter, MaxRetryAfter)
	}
	return 0
}

// IsRetryable reports whether err looks transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode >= 500 && httpErr.StatusCode < 600:
			return true
		case httpErr.StatusCode == http.StatusTooManyRequests,
			httpErr.StatusCode == http.StatusRequestTimeout:
			return true
		default:
			return false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

// HTTPError is a non-success response from an upstream service.
// Err optionally keeps the client error it was derived from.
type HTTPError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// ParseRetryAfter reads a Retry-After header given either in seconds or as an
// HTTP date. Unparseable or past values yield zero.
func ParseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs * float64(time.Second))
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}

func addJitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 || d <= 0 {
		return d
	}
	fraction = min(fraction, 1.0)
	// #nosec G404 -- backoff jitter does not need a cryptographic source.
	return d + time.Duration(rand.Float64()*float64(d)*fraction)
}
