package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"company-pulse/internal/resilience/circuitbreaker"
	"company-pulse/internal/resilience/retry"
)

// webhook posts JSON payloads to one chat webhook URL.
type webhook struct {
	name        string
	url         string
	client      *http.Client
	limiter     *rate.Limiter
	breaker     *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

// Option customizes a Slack or Discord notifier.
type Option func(*webhook)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(w *webhook) { w.client = c }
}

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(cfg retry.Config) Option {
	return func(w *webhook) { w.retryConfig = cfg }
}

// WithRateLimit overrides the delivery rate.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(w *webhook) { w.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

func newWebhook(name, url string, timeout time.Duration, perSecond float64, burst int, opts []Option) *webhook {
	w := &webhook{
		name:        name,
		url:         url,
		client:      &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Limit(perSecond), burst),
		breaker:     circuitbreaker.New(circuitbreaker.WebhookConfig(name + "-webhook")),
		retryConfig: retry.WebhookConfig(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// post delivers payload, waiting for the rate limiter first.
func (w *webhook) post(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: marshal payload: %w", w.name, err)
	}
	if err := w.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: rate limiter: %w", w.name, err)
	}

	err = retry.WithBackoff(ctx, w.retryConfig, func() error {
		_, err := circuitbreaker.Do(w.breaker, func() (struct{}, error) {
			return struct{}{}, w.send(ctx, body)
		})
		if circuitbreaker.IsRejected(err) {
			slog.Warn("webhook circuit breaker open, delivery rejected",
				slog.String("service", w.name))
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("%s notification failed: %w", w.name, err)
	}
	return nil
}

func (w *webhook) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &retry.HTTPError{
		StatusCode: resp.StatusCode,
		Message:    string(bytes.TrimSpace(respBody)),
		RetryAfter: retry.ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
	}
}
