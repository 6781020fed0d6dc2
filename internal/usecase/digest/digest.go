// Package digest builds per-company social post digests: it searches the news
// for each watched company, enriches short articles with their full text and
// turns every article into platform posts.
package digest

import (
	"context"
	"errors"
	"time"

	"company-pulse/internal/domain/entity"
	"company-pulse/internal/usecase/ai"
)

// ErrNoTargets is returned by RunAll when the watchlist is empty.
var ErrNoTargets = errors.New("no companies to process")

// NewsFetcher searches the news for a company.
type NewsFetcher interface {
	FetchCompanyNews(ctx context.Context, companyName string, limit int) ([]entity.NewsArticle, error)
}

// ContentFetcher downloads the full text of an article.
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (string, error)
}

// ArticleProcessor turns one article into highlights and posts.
type ArticleProcessor interface {
	ProcessArticle(ctx context.Context, article *entity.NewsArticle, companyName string, platforms []string, tone entity.Tone) (*ai.ProcessedArticle, error)
}

// WatchTarget is one company on the watchlist.
type WatchTarget struct {
	Name        string      `json:"name" yaml:"name"`
	Platforms   []string    `json:"platforms" yaml:"platforms"`
	Tone        entity.Tone `json:"tone,omitempty" yaml:"tone"`
	MaxArticles int         `json:"max_articles,omitempty" yaml:"max_articles"`
}

// ArticleFailure records why one article produced no posts.
type ArticleFailure struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Error string `json:"error"`
}

// Stats summarizes one digest run.
type Stats struct {
	Fetched   int           `json:"fetched"`
	Enhanced  int64         `json:"enhanced"`
	Processed int64         `json:"processed"`
	Failed    int64         `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// Digest is the output of one company run. Articles keep the news order,
// newest first; failed articles are listed separately.
type Digest struct {
	Company     string                 `json:"company"`
	Articles    []*ai.ProcessedArticle `json:"articles"`
	Failures    []ArticleFailure       `json:"failures,omitempty"`
	Stats       Stats                  `json:"stats"`
	GeneratedAt time.Time              `json:"generated_at"`
}
