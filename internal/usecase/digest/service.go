package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"company-pulse/internal/domain/entity"
	"company-pulse/internal/observability/metrics"
	"company-pulse/internal/usecase/ai"
	"company-pulse/internal/utils/text"
)

// Config bounds the pipeline's concurrency and enhancement behavior.
type Config struct {
	// ContentParallelism bounds concurrent full-text downloads.
	ContentParallelism int
	// ProcessParallelism bounds concurrent AI calls; providers are rate limited.
	ProcessParallelism int
	// EnhanceThreshold is the article length, in characters, at or above which
	// no full-text download is attempted.
	EnhanceThreshold int
	// DefaultMaxArticles applies to targets that do not set MaxArticles.
	DefaultMaxArticles int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		ContentParallelism: 10,
		ProcessParallelism: 3,
		EnhanceThreshold:   1500,
		DefaultMaxArticles: 5,
	}
}

// Service runs the news-to-posts pipeline for watched companies.
type Service struct {
	news      NewsFetcher
	content   ContentFetcher
	processor ArticleProcessor
	cfg       Config
	now       func() time.Time
}

// NewService creates a digest service. content may be nil to disable enhancement.
func NewService(news NewsFetcher, content ContentFetcher, processor ArticleProcessor, cfg Config) *Service {
	def := DefaultConfig()
	if cfg.ContentParallelism <= 0 {
		cfg.ContentParallelism = def.ContentParallelism
	}
	if cfg.ProcessParallelism <= 0 {
		cfg.ProcessParallelism = def.ProcessParallelism
	}
	if cfg.EnhanceThreshold < 0 {
		cfg.EnhanceThreshold = def.EnhanceThreshold
	}
	if cfg.DefaultMaxArticles <= 0 {
		cfg.DefaultMaxArticles = def.DefaultMaxArticles
	}
	return &Service{
		news:      news,
		content:   content,
		processor: processor,
		cfg:       cfg,
		now:       time.Now,
	}
}

// RunCompany builds the digest for one company.
//
// A failed news search fails the run. A failed article is logged, counted in
// Stats.Failed and listed in Failures; the other articles still complete.
// Context cancellation aborts the whole run.
func (s *Service) RunCompany(ctx context.Context, target WatchTarget) (*Digest, error) {
	logger := slog.Default()
	start := s.now()

	company := strings.TrimSpace(target.Name)
	if company == "" {
		return nil, &entity.ValidationError{Field: "name", Message: "company name is required"}
	}
	limit := target.MaxArticles
	if limit <= 0 {
		limit = s.cfg.DefaultMaxArticles
	}

	articles, err := s.news.FetchCompanyNews(ctx, company, limit)
	if err != nil {
		metrics.RecordNewsFetchError(company)
		return nil, fmt.Errorf("fetch news for %s: %w", company, err)
	}
	if len(articles) > limit {
		articles = articles[:limit]
	}
	metrics.RecordNewsFetched(company, len(articles))

	stats := Stats{Fetched: len(articles)}
	results := make([]*ai.ProcessedArticle, len(articles))
	var (
		mu       sync.Mutex
		failures []ArticleFailure
	)

	contentSem := make(chan struct{}, s.cfg.ContentParallelism)
	processSem := make(chan struct{}, s.cfg.ProcessParallelism)
	eg, egCtx := errgroup.WithContext(ctx)

	for i := range articles {
		article := articles[i]
		eg.Go(func() error {
			contentSem <- struct{}{}
			enhanced := s.enhanceContent(egCtx, &article)
			<-contentSem
			if enhanced {
				atomic.AddInt64(&stats.Enhanced, 1)
			}

			processSem <- struct{}{}
			defer func() { <-processSem }()

			processed, err := s.processor.ProcessArticle(egCtx, &article, company, target.Platforms, target.Tone)
			if err != nil {
				// A provider's own timeout is an article failure. Only the
				// run's context ending aborts the digest.
				if ctxErr := egCtx.Err(); ctxErr != nil {
					return errors.Join(ctxErr, err)
				}
				atomic.AddInt64(&stats.Failed, 1)
				metrics.RecordDigestArticle(company, false)
				logger.Warn("article processing failed, skipping article",
					slog.String("company", company),
					slog.String("url", article.URL),
					slog.String("title", article.Title),
					slog.Any("error", err))

				mu.Lock()
				failures = append(failures, ArticleFailure{URL: article.URL, Title: article.Title, Error: err.Error()})
				mu.Unlock()
				return nil
			}

			atomic.AddInt64(&stats.Processed, 1)
			metrics.RecordDigestArticle(company, true)
			results[i] = processed
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("digest for %s aborted: %w", company, err)
	}

	done := make([]*ai.ProcessedArticle, 0, len(results))
	for _, r := range results {
		if r != nil {
			done = append(done, r)
		}
	}

	stats.Duration = s.now().Sub(start)
	metrics.RecordDigestDuration(company, stats.Duration)
	logger.Info("company digest completed",
		slog.String("company", company),
		slog.Int("fetched", stats.Fetched),
		slog.Int64("enhanced", stats.Enhanced),
		slog.Int64("processed", stats.Processed),
		slog.Int64("failed", stats.Failed),
		slog.Duration("duration", stats.Duration))

	return &Digest{
		Company:     company,
		Articles:    done,
		Failures:    failures,
		Stats:       stats,
		GeneratedAt: s.now(),
	}, nil
}

// RunSummary is the result of one pass over the watchlist.
type RunSummary struct {
	Digests []*Digest         `json:"digests"`
	Failed  map[string]string `json:"failed,omitempty"`
}

// RunAll builds digests for every target, one company at a time.
// A company that fails is recorded in Failed and the run moves on;
// only context cancellation stops it early.
func (s *Service) RunAll(ctx context.Context, targets []WatchTarget) (*RunSummary, error) {
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}
	summary := &RunSummary{Failed: map[string]string{}}
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		d, err := s.RunCompany(ctx, t)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			slog.Error("company digest failed",
				slog.String("company", t.Name),
				slog.Any("error", err))
			summary.Failed[t.Name] = err.Error()
			continue
		}
		summary.Digests = append(summary.Digests, d)
	}
	return summary, nil
}

// enhanceContent replaces short article text with the full page text when a
// content fetcher is configured. It never fails; on any problem the feed text
// is kept. Reports whether the text was replaced.
func (s *Service) enhanceContent(ctx context.Context, article *entity.NewsArticle) bool {
	if s.content == nil {
		return false
	}
	feedLength := text.CountRunes(article.Content)
	if feedLength >= s.cfg.EnhanceThreshold {
		metrics.RecordContentFetchSkipped()
		return false
	}

	start := time.Now()
	full, err := s.content.FetchContent(ctx, article.URL)
	elapsed := time.Since(start)
	if err != nil {
		slog.Warn("content fetch failed, using feed text",
			slog.String("url", article.URL),
			slog.Any("error", err),
			slog.Duration("fetch_duration", elapsed))
		metrics.RecordContentFetchFailed(elapsed)
		return false
	}

	fetchedLength := text.CountRunes(full)
	metrics.RecordContentFetchSuccess(elapsed, len(full))
	if fetchedLength <= feedLength {
		slog.Debug("fetched content shorter than feed text, keeping feed text",
			slog.String("url", article.URL),
			slog.Int("feed_length", feedLength),
			slog.Int("fetched_length", fetchedLength))
		return false
	}
	article.Content = full
	return true
}
