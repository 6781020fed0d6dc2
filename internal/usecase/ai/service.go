package ai

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"company-pulse/internal/domain/entity"
	"company-pulse/internal/pkg/requestctx"
)

const (
	opExtractHighlights = "extract_highlights"
	opFormatContent     = "format_content"

	// formatterService names the formatting collaborator in errors.
	formatterService = "content-formatter"
)

// HighlightResult is the outcome of highlight extraction.
type HighlightResult struct {
	Highlights   []entity.NewsHighlight `json:"highlights"`
	Provider     string                 `json:"provider"`
	FallbackUsed bool                   `json:"fallback_used"`
}

// SocialContent holds generated posts keyed by platform.
type SocialContent struct {
	Posts          map[entity.Platform]entity.PlatformPost `json:"posts"`
	ProcessingTime time.Duration                           `json:"processing_time"`
}

// ProcessedArticle is the result of the full article pipeline.
type ProcessedArticle struct {
	Article    *entity.NewsArticle `json:"article"`
	Highlights *HighlightResult    `json:"highlights"`
	Content    *SocialContent      `json:"content"`
}

// Service turns news articles into highlights and social posts.
// It validates input, delegates provider work to a FallbackOrchestrator and
// formatting to a ContentFormatter, and returns every failure as *AIServiceError.
type Service struct {
	orchestrator *FallbackOrchestrator
	formatter    ContentFormatter
}

// NewService creates a content orchestration service.
func NewService(orchestrator *FallbackOrchestrator, formatter ContentFormatter) (*Service, error) {
	if orchestrator == nil {
		return nil, newError(KindConfiguration, "", "service requires a fallback orchestrator", nil)
	}
	if formatter == nil {
		return nil, newError(KindConfiguration, formatterService, "service requires a content formatter", nil)
	}
	return &Service{orchestrator: orchestrator, formatter: formatter}, nil
}

// ExtractHighlights extracts highlights from article through the best provider.
//
// The result is sorted by importance, highest first; ties keep provider order.
// An empty result fails with ValidationFailed.
func (s *Service) ExtractHighlights(ctx context.Context, article *entity.NewsArticle, companyName string) (*HighlightResult, error) {
	requestID := requestctx.FromContextOrNew(ctx)

	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return nil, newError(KindValidationFailed, "", "highlight extraction rejected input", ErrEmptyCompanyName)
	}
	if err := article.Validate(); err != nil {
		slog.Warn("Invalid article for highlight extraction",
			slog.String("request_id", requestID),
			slog.Any("error", err))
		return nil, normalizeError(err, "", opExtractHighlights)
	}

	slog.Info("Extracting highlights",
		slog.String("request_id", requestID),
		slog.String("company", companyName),
		slog.String("url", article.URL))

	req := HighlightRequest{
		CompanyName: companyName,
		Title:       article.Title,
		Text:        article.Text(),
		URL:         article.URL,
	}
	exec, err := Execute(ctx, s.orchestrator, opExtractHighlights,
		func(ctx context.Context, c ProviderClient) ([]entity.NewsHighlight, error) {
			return c.ExtractHighlights(ctx, req)
		})
	if err != nil {
		slog.Error("Highlight extraction failed",
			slog.String("request_id", requestID),
			slog.String("company", companyName),
			slog.Any("error", err))
		return nil, normalizeError(err, "", opExtractHighlights)
	}

	if len(exec.Value) == 0 {
		slog.Warn("Provider returned no highlights",
			slog.String("request_id", requestID),
			slog.String("provider", exec.Provider))
		return nil, newError(KindValidationFailed, exec.Provider, "highlight extraction returned no highlights", ErrEmptyHighlights)
	}

	highlights := append([]entity.NewsHighlight(nil), exec.Value...)
	sort.SliceStable(highlights, func(i, j int) bool {
		return highlights[i].Importance > highlights[j].Importance
	})

	slog.Info("Highlights extracted",
		slog.String("request_id", requestID),
		slog.String("provider", exec.Provider),
		slog.Bool("fallback_used", exec.FallbackUsed),
		slog.Int("count", len(highlights)),
		slog.Duration("duration", exec.Duration))

	return &HighlightResult{
		Highlights:   highlights,
		Provider:     exec.Provider,
		FallbackUsed: exec.FallbackUsed,
	}, nil
}

// GenerateSocialContent formats highlights into one post per valid platform.
//
// Unsupported platform names are dropped silently; duplicates collapse. If
// nothing is left the call fails with ValidationFailed wrapping
// ErrNoValidPlatforms.
func (s *Service) GenerateSocialContent(ctx context.Context, highlights []entity.NewsHighlight, companyName string, platforms []string, tone entity.Tone) (*SocialContent, error) {
	requestID := requestctx.FromContextOrNew(ctx)
	start := time.Now()

	if len(highlights) == 0 {
		return nil, newError(KindValidationFailed, "", "content generation rejected input", ErrEmptyHighlights)
	}
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return nil, newError(KindValidationFailed, "", "content generation rejected input", ErrEmptyCompanyName)
	}
	valid := FilterPlatforms(platforms)
	if len(valid) == 0 {
		slog.Warn("No valid platforms requested",
			slog.String("request_id", requestID),
			slog.Any("platforms", platforms))
		return nil, newError(KindValidationFailed, "", "content generation rejected input", ErrNoValidPlatforms)
	}
	if tone == "" {
		tone = entity.DefaultTone
	}

	posts, err := s.formatter.Format(ctx, FormatRequest{
		CompanyName: companyName,
		Highlights:  highlights,
		Platforms:   valid,
		Tone:        tone,
	})
	if err != nil {
		slog.Error("Content formatting failed",
			slog.String("request_id", requestID),
			slog.Any("error", err))
		return nil, normalizeError(err, formatterService, opFormatContent)
	}

	byPlatform := make(map[entity.Platform]entity.PlatformPost, len(posts))
	for _, p := range posts {
		byPlatform[p.Platform] = p
	}

	content := &SocialContent{
		Posts:          byPlatform,
		ProcessingTime: time.Since(start),
	}
	slog.Info("Social content generated",
		slog.String("request_id", requestID),
		slog.String("company", companyName),
		slog.Int("posts", len(byPlatform)),
		slog.Duration("processing_time", content.ProcessingTime))

	return content, nil
}

// ProcessArticle extracts highlights and then generates posts from them.
// A failed extraction returns before any formatting is attempted.
func (s *Service) ProcessArticle(ctx context.Context, article *entity.NewsArticle, companyName string, platforms []string, tone entity.Tone) (*ProcessedArticle, error) {
	highlights, err := s.ExtractHighlights(ctx, article, companyName)
	if err != nil {
		return nil, err
	}
	content, err := s.GenerateSocialContent(ctx, highlights.Highlights, companyName, platforms, tone)
	if err != nil {
		return nil, err
	}
	return &ProcessedArticle{
		Article:    article,
		Highlights: highlights,
		Content:    content,
	}, nil
}

// Health returns the provider health snapshot.
func (s *Service) Health(ctx context.Context, forceRefresh bool) (*HealthSnapshot, error) {
	snap, err := s.orchestrator.Monitor().GetSnapshot(ctx, forceRefresh)
	if err != nil {
		return nil, normalizeError(err, "", "health check")
	}
	return snap, nil
}

// FilterPlatforms keeps supported platforms in first-seen order, without duplicates.
func FilterPlatforms(names []string) []entity.Platform {
	seen := make(map[entity.Platform]bool, len(names))
	out := make([]entity.Platform, 0, len(names))
	for _, n := range names {
		p, ok := entity.ParsePlatform(n)
		if !ok || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
