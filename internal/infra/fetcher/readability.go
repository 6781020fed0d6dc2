// Package fetcher retrieves full article text for news items whose feed
// snippet is too short to extract highlights from.
package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"company-pulse/internal/resilience/circuitbreaker"
	"company-pulse/internal/resilience/retry"
)

// ReadabilityFetcher extracts article text with the Mozilla Readability algorithm.
// Targets and every redirect hop are checked against private networks.
// It is safe for concurrent use.
type ReadabilityFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	guard          urlGuard
	cfg            Config
}

// Option customizes a ReadabilityFetcher.
type Option func(*ReadabilityFetcher)

// WithTransport replaces the HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *ReadabilityFetcher) { f.client.Transport = rt }
}

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(cfg retry.Config) Option {
	return func(f *ReadabilityFetcher) { f.retryConfig = cfg }
}

// WithCircuitBreaker overrides the circuit breaker settings.
func WithCircuitBreaker(cfg circuitbreaker.Config) Option {
	return func(f *ReadabilityFetcher) { f.circuitBreaker = circuitbreaker.New(cfg) }
}

// NewReadabilityFetcher creates a fetcher for cfg.
func NewReadabilityFetcher(cfg Config, opts ...Option) *ReadabilityFetcher {
	f := &ReadabilityFetcher{
		circuitBreaker: circuitbreaker.New(circuitbreaker.ContentFetchConfig()),
		retryConfig:    retry.ContentFetchConfig(),
		guard:          urlGuard{denyPrivate: cfg.DenyPrivateIPs, resolver: net.DefaultResolver},
		cfg:            cfg,
	}
	f.client = &http.Client{
		Timeout: 3 * cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		},
		CheckRedirect: f.checkRedirect,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Enabled reports whether enhancement is switched on.
func (f *ReadabilityFetcher) Enabled() bool {
	return f.cfg.Enabled
}

// Threshold returns the feed text length at which fetching is skipped.
func (f *ReadabilityFetcher) Threshold() int {
	return f.cfg.Threshold
}

func (f *ReadabilityFetcher) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= f.cfg.MaxRedirects {
		return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
	}
	if err := f.guard.check(req.Context(), req.URL.String()); err != nil {
		return fmt.Errorf("redirect target validation failed: %w", err)
	}
	return nil
}

// FetchContent downloads urlStr and returns its readable text.
func (f *ReadabilityFetcher) FetchContent(ctx context.Context, urlStr string) (string, error) {
	if err := f.guard.check(ctx, urlStr); err != nil {
		return "", err
	}

	var text string
	err := retry.WithBackoff(ctx, f.retryConfig, func() error {
		var err error
		text, err = circuitbreaker.Do(f.circuitBreaker, func() (string, error) {
			return f.doFetch(ctx, urlStr)
		})
		return err
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

func (f *ReadabilityFetcher) doFetch(ctx context.Context, urlStr string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return "", fmt.Errorf("%w: request exceeded %v", ErrTimeout, f.cfg.Timeout)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Err != nil {
			return "", urlErr.Err
		}
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodySize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > f.cfg.MaxBodySize {
		return "", fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, f.cfg.MaxBodySize)
	}

	pageURL := resp.Request.URL
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadabilityFailed, err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("%w: no readable content found", ErrReadabilityFailed)
	}
	slog.Debug("article content extracted",
		slog.String("url", urlStr),
		slog.Int("length", len(text)))
	return text, nil
}
