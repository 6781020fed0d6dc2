package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"company-pulse/internal/domain/entity"
	"company-pulse/internal/resilience/retry"
	"company-pulse/internal/usecase/ai"
	"company-pulse/internal/usecase/digest"
)

func sampleDigest() *digest.Digest {
	article := func(title, url, highlight string) *ai.ProcessedArticle {
		return &ai.ProcessedArticle{
			Article: &entity.NewsArticle{Title: title, URL: url},
			Highlights: &ai.HighlightResult{
				Highlights: []entity.NewsHighlight{{Text: highlight, Importance: 4, Category: "financial"}},
				Provider:   "claude",
			},
			Content: &ai.SocialContent{Posts: map[entity.Platform]entity.PlatformPost{
				entity.PlatformTwitter:  {Platform: entity.PlatformTwitter, Content: "post"},
				entity.PlatformLinkedIn: {Platform: entity.PlatformLinkedIn, Content: "post"},
			}},
		}
	}
	return &digest.Digest{
		Company: "Acme Corp",
		Articles: []*ai.ProcessedArticle{
			article("Acme reports record revenue", "https://news.example.com/revenue", "Revenue grew 40%."),
			article("Acme opens Berlin office", "https://news.example.com/berlin", "Acme expands to Germany."),
		},
		Failures:    []digest.ArticleFailure{{URL: "https://news.example.com/cfo", Error: "all providers failed"}},
		Stats:       digest.Stats{Fetched: 3, Processed: 2, Failed: 1},
		GeneratedAt: time.Date(2026, 1, 12, 7, 0, 0, 0, time.UTC),
	}
}

func fastOptions(client *http.Client) []Option {
	return []Option{
		WithHTTPClient(client),
		WithRateLimit(1000, 10),
		WithRetryConfig(retry.Config{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}),
	}
}

func TestBuildSlackPayload(t *testing.T) {
	p := BuildSlackPayload(sampleDigest())

	assert.Equal(t, "Acme Corp news digest: 2 articles", p.Text)
	require.Len(t, p.Blocks, 5)
	assert.Contains(t, p.Blocks[0].Text.Text, "3 articles fetched, 2 processed, 1 failed")
	assert.Equal(t, "divider", p.Blocks[1].Type)
	assert.Contains(t, p.Blocks[2].Text.Text, "*<https://news.example.com/revenue|Acme reports record revenue>*")
	assert.Contains(t, p.Blocks[2].Text.Text, "Revenue grew 40%.")
	assert.Contains(t, p.Blocks[2].Text.Text, "_2 posts ready_")
	assert.Equal(t, "context", p.Blocks[4].Type)
	assert.Contains(t, p.Blocks[4].Elements[0].Text, "1 articles failed")
}

func TestBuildSlackPayload_LimitsArticles(t *testing.T) {
	d := sampleDigest()
	for len(d.Articles) < 8 {
		d.Articles = append(d.Articles, d.Articles[0])
	}
	p := BuildSlackPayload(d)
	assert.Len(t, p.Blocks, 2+topArticles+1)
}

func TestBuildDiscordPayload(t *testing.T) {
	p := BuildDiscordPayload(sampleDigest())

	require.Len(t, p.Embeds, 1)
	e := p.Embeds[0]
	assert.Equal(t, "Acme Corp news digest", e.Title)
	assert.Equal(t, "2026-01-12T07:00:00Z", e.Timestamp)
	require.Len(t, e.Fields, 2)
	assert.Equal(t, "Acme opens Berlin office", e.Fields[1].Name)
	assert.Equal(t, "Acme expands to Germany.\nhttps://news.example.com/berlin", e.Fields[1].Value)
}

func TestSlack_NotifyDigest(t *testing.T) {
	var got SlackPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	s := NewSlack(server.URL, time.Second, fastOptions(server.Client())...)
	require.NoError(t, s.NotifyDigest(context.Background(), sampleDigest()))
	assert.Equal(t, "Acme Corp news digest: 2 articles", got.Text)
}

func TestDiscord_RetriesServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	d := NewDiscord(server.URL, time.Second, fastOptions(server.Client())...)
	require.NoError(t, d.NotifyDigest(context.Background(), sampleDigest()))
	assert.Equal(t, int32(2), calls.Load())
}

func TestWebhook_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("no_service"))
	}))
	defer server.Close()

	s := NewSlack(server.URL, time.Second, fastOptions(server.Client())...)
	err := s.NotifyDigest(context.Background(), sampleDigest())
	require.Error(t, err)

	var httpErr *retry.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, "no_service", httpErr.Message)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWebhook_RateLimitedCarriesRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0.01")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	s := NewSlack(server.URL, time.Second, fastOptions(server.Client())...)
	err := s.NotifyDigest(context.Background(), sampleDigest())
	require.Error(t, err)

	var httpErr *retry.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
	assert.Equal(t, 10*time.Millisecond, httpErr.RetryAfter)
}

type recordingNotifier struct {
	calls int
	err   error
}

func (r *recordingNotifier) NotifyDigest(context.Context, *digest.Digest) error {
	r.calls++
	return r.err
}

func TestMulti(t *testing.T) {
	failing := &recordingNotifier{err: errors.New("slack down")}
	ok := &recordingNotifier{}

	err := Multi{failing, ok}.NotifyDigest(context.Background(), sampleDigest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slack down")
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, ok.calls)

	assert.NoError(t, Noop{}.NotifyDigest(context.Background(), nil))
}

func TestValidateWebhookURLs(t *testing.T) {
	assert.NoError(t, ValidateSlackURL("https://hooks.slack.com/services/T000/B000/XXXX"))
	assert.Error(t, ValidateSlackURL("http://hooks.slack.com/services/T000"))
	assert.Error(t, ValidateSlackURL("https://evil.example.com/services/T000"))
	assert.NoError(t, ValidateDiscordURL("https://discord.com/api/webhooks/1/abc"))
	assert.Error(t, ValidateDiscordURL("https://discord.com/channels/1"))
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T000/B000/XXXX")
	t.Setenv("DISCORD_WEBHOOK_URL", "https://example.com/hook")
	t.Setenv("NOTIFY_TIMEOUT", "5s")

	cfg, warnings := LoadConfigFromEnv()
	assert.Equal(t, "https://hooks.slack.com/services/T000/B000/XXXX", cfg.SlackWebhookURL)
	assert.Empty(t, cfg.DiscordWebhookURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	require.Len(t, warnings, 1)
	assert.True(t, strings.HasPrefix(warnings[0], "DISCORD_WEBHOOK_URL"))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.IsType(t, &Slack{}, New(cfg, logger))
	assert.IsType(t, Noop{}, New(Config{}, logger))
	assert.IsType(t, Multi{}, New(Config{SlackWebhookURL: "https://a", DiscordWebhookURL: "https://b", Timeout: time.Second}, logger))
}
