// Package newsfeed retrieves company news from search feeds.
// It uses gofeed to parse the feed and goquery to reduce HTML snippets to text,
// with the shared circuit breaker and retry policies around every request.
package newsfeed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"company-pulse/internal/domain/entity"
	"company-pulse/internal/resilience/circuitbreaker"
	"company-pulse/internal/resilience/retry"
)

// DefaultBaseURL is the Google News RSS search endpoint.
const DefaultBaseURL = "https://news.google.com/rss/search"

// ErrEmptyCompanyName is returned when no company name is given.
var ErrEmptyCompanyName = errors.New("company name is required")

// Config controls how the search feed is addressed.
type Config struct {
	BaseURL   string
	Language  string // hl, e.g. "en-US"
	Region    string // gl, e.g. "US"
	UserAgent string
}

// DefaultConfig returns the US English Google News configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Language:  "en-US",
		Region:    "US",
		UserAgent: "CompanyPulseBot",
	}
}

// GoogleNewsFetcher searches Google News for a company and returns its articles.
type GoogleNewsFetcher struct {
	client         *http.Client
	cfg            Config
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	now            func() time.Time
}

// Option customizes a GoogleNewsFetcher.
type Option func(*GoogleNewsFetcher)

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(cfg retry.Config) Option {
	return func(f *GoogleNewsFetcher) { f.retryConfig = cfg }
}

// WithCircuitBreaker overrides the circuit breaker settings.
func WithCircuitBreaker(cfg circuitbreaker.Config) Option {
	return func(f *GoogleNewsFetcher) { f.circuitBreaker = circuitbreaker.New(cfg) }
}

// NewGoogleNewsFetcher creates a fetcher using client for HTTP.
func NewGoogleNewsFetcher(client *http.Client, cfg Config, opts ...Option) *GoogleNewsFetcher {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Language == "" {
		cfg.Language = def.Language
	}
	if cfg.Region == "" {
		cfg.Region = def.Region
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	f := &GoogleNewsFetcher{
		client:         client,
		cfg:            cfg,
		circuitBreaker: circuitbreaker.New(circuitbreaker.NewsFeedConfig()),
		retryConfig:    retry.NewsFeedConfig(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SearchURL builds the feed URL for an exact-phrase search on companyName.
func (f *GoogleNewsFetcher) SearchURL(companyName string) string {
	lang := strings.SplitN(f.cfg.Language, "-", 2)[0]
	q := url.Values{}
	q.Set("q", `"`+companyName+`"`)
	q.Set("hl", f.cfg.Language)
	q.Set("gl", f.cfg.Region)
	q.Set("ceid", f.cfg.Region+":"+lang)
	return f.cfg.BaseURL + "?" + q.Encode()
}

// FetchCompanyNews returns up to limit articles about companyName, newest first.
// A limit of zero or less returns everything the feed carries.
func (f *GoogleNewsFetcher) FetchCompanyNews(ctx context.Context, companyName string, limit int) ([]entity.NewsArticle, error) {
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return nil, ErrEmptyCompanyName
	}
	feedURL := f.SearchURL(companyName)

	var articles []entity.NewsArticle
	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		var err error
		articles, err = circuitbreaker.Do(f.circuitBreaker, func() ([]entity.NewsArticle, error) {
			return f.doFetch(ctx, feedURL)
		})
		if circuitbreaker.IsRejected(err) {
			slog.Warn("news feed circuit breaker open, request rejected",
				slog.String("service", "news-feed"),
				slog.String("company", companyName),
				slog.String("state", f.circuitBreaker.State().String()))
		}
		return err
	})
	if retryErr != nil {
		return nil, fmt.Errorf("fetch news for %s: %w", companyName, retryErr)
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}

	slog.Debug("company news fetched",
		slog.String("company", companyName),
		slog.Int("count", len(articles)))
	return articles, nil
}

func (f *GoogleNewsFetcher) doFetch(ctx context.Context, feedURL string) ([]entity.NewsArticle, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = f.cfg.UserAgent
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, &retry.HTTPError{StatusCode: httpErr.StatusCode, Message: httpErr.Status, Err: err}
		}
		return nil, err
	}

	articles := make([]entity.NewsArticle, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it.Link == "" {
			continue
		}
		pubAt := f.now()
		if it.PublishedParsed != nil {
			pubAt = *it.PublishedParsed
		}

		content := it.Content
		if content == "" {
			content = it.Description
		}

		title, source := splitSource(strings.TrimSpace(it.Title))
		articles = append(articles, entity.NewsArticle{
			Title:       title,
			URL:         it.Link,
			Source:      source,
			Content:     StripHTML(content),
			PublishedAt: pubAt,
		})
	}
	return articles, nil
}

// splitSource separates the " - Publisher" suffix Google News appends to titles.
func splitSource(title string) (string, string) {
	i := strings.LastIndex(title, " - ")
	if i <= 0 {
		return title, ""
	}
	return strings.TrimSpace(title[:i]), strings.TrimSpace(title[i+3:])
}

// StripHTML returns the visible text of an HTML fragment with whitespace collapsed.
// Input that fails to parse is returned unchanged.
func StripHTML(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
