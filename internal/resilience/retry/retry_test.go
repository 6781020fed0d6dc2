package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fast(attempts int) Config {
	return Config{
		Name:         "test",
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}
}

var errServer = &HTTPError{StatusCode: http.StatusInternalServerError, Message: "Server Error"}

func TestWithBackoff_FirstAttemptSucceeds(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), fast(3), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithBackoff_RecoversAfterTransientFailures(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), fast(3), func() error {
		calls++
		if calls < 3 {
			return errServer
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithBackoff_Exhausted(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), fast(3), func() error {
		calls++
		return errServer
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.ErrorIs(t, err, errServer)
}

func TestWithBackoff_NonRetryableReturnedAsIs(t *testing.T) {
	badRequest := &HTTPError{StatusCode: http.StatusBadRequest, Message: "Bad Request"}
	calls := 0
	err := WithBackoff(context.Background(), fast(3), func() error {
		calls++
		return badRequest
	})
	assert.Same(t, badRequest, err)
	assert.Equal(t, 1, calls)
}

func TestWithBackoff_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), Config{}, func() error {
		calls++
		return errServer
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithBackoff_ContextCanceledDuringWait(t *testing.T) {
	cfg := Config{MaxAttempts: 5, InitialDelay: time.Second, MaxDelay: time.Second, Multiplier: 1}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := WithBackoff(ctx, cfg, func() error {
		calls++
		cancel()
		return errServer
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, errServer)
}

func TestWithBackoff_HonorsRetryAfter(t *testing.T) {
	cfg := fast(2)
	calls := 0
	start := time.Now()
	err := WithBackoff(context.Background(), cfg, func() error {
		calls++
		if calls == 1 {
			return &HTTPError{StatusCode: http.StatusTooManyRequests, RetryAfter: 40 * time.Millisecond}
		}
		return nil
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestNextDelay(t *testing.T) {
	cfg := Config{MaxDelay: 50 * time.Millisecond, Multiplier: 2}
	assert.Equal(t, 20*time.Millisecond, nextDelay(10*time.Millisecond, cfg))
	assert.Equal(t, 50*time.Millisecond, nextDelay(40*time.Millisecond, cfg))

	cfg.Multiplier = 0
	assert.Equal(t, 10*time.Millisecond, nextDelay(10*time.Millisecond, cfg))
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"500", &HTTPError{StatusCode: 500}, true},
		{"503 wrapped", fmt.Errorf("feed: %w", &HTTPError{StatusCode: 503}), true},
		{"429", &HTTPError{StatusCode: 429}, true},
		{"408", &HTTPError{StatusCode: 408}, true},
		{"400", &HTTPError{StatusCode: 400}, false},
		{"404", &HTTPError{StatusCode: 404}, false},
		{"net timeout", timeoutErr{}, true},
		{"connection refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
		{"connection reset", syscall.ECONNRESET, true},
		{"truncated body", io.ErrUnexpectedEOF, true},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("x: %w", context.DeadlineExceeded), false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 10, 21, 7, 28, 0, 0, time.UTC)

	assert.Equal(t, 2*time.Second, ParseRetryAfter("2", now))
	assert.Equal(t, 500*time.Millisecond, ParseRetryAfter(" 0.5 ", now))
	assert.Equal(t, 90*time.Second, ParseRetryAfter("Wed, 21 Oct 2026 07:29:30 GMT", now))
	assert.Zero(t, ParseRetryAfter("Wed, 21 Oct 2026 07:00:00 GMT", now))
	assert.Zero(t, ParseRetryAfter("", now))
	assert.Zero(t, ParseRetryAfter("-3", now))
	assert.Zero(t, ParseRetryAfter("soon", now))
}

func TestServerDelayCapped(t *testing.T) {
	err := fmt.Errorf("slack: %w", &HTTPError{StatusCode: 429, RetryAfter: time.Hour})
	assert.Equal(t, MaxRetryAfter, serverDelay(err))
	assert.Zero(t, serverDelay(errors.New("x")))
}

func TestHTTPError(t *testing.T) {
	clientErr := errors.New("rate_limit_error")
	err := fmt.Errorf("claude: %w", &HTTPError{StatusCode: 429, Message: "Too Many Requests", Err: clientErr})

	assert.ErrorIs(t, err, clientErr)
	assert.Equal(t, "HTTP 500: Internal Server Error",
		(&HTTPError{StatusCode: 500, Message: "Internal Server Error"}).Error())
}

func TestAddJitter(t *testing.T) {
	d := 100 * time.Millisecond
	seen := map[time.Duration]bool{}
	for range 20 {
		got := addJitter(d, 0.2)
		assert.GreaterOrEqual(t, got, d)
		assert.LessOrEqual(t, got, 120*time.Millisecond)
		seen[got] = true
	}
	assert.Greater(t, len(seen), 1)
	assert.Equal(t, d, addJitter(d, 0))
}

func TestProfiles(t *testing.T) {
	tests := []struct {
		cfg      Config
		name     string
		attempts int
	}{
		{DefaultConfig(), "default", 3},
		{NewsFeedConfig(), "news_feed", 5},
		{AIAPIConfig(), "ai_api", 3},
		{ContentFetchConfig(), "content_fetch", 3},
		{WebhookConfig(), "webhook", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.cfg.Name)
			assert.Equal(t, tt.attempts, tt.cfg.MaxAttempts)
			assert.LessOrEqual(t, tt.cfg.InitialDelay, tt.cfg.MaxDelay)
		})
	}
}
