package pulse

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"company-pulse/internal/domain/entity"
	"company-pulse/internal/handler/http/respond"
	"company-pulse/internal/usecase/ai"
	"company-pulse/internal/usecase/digest"
)

// maxNewsLimit caps the limit query parameter of the news endpoint.
const maxNewsLimit = 50

// ContentService is the content orchestration surface used by the handlers.
type ContentService interface {
	ExtractHighlights(ctx context.Context, article *entity.NewsArticle, companyName string) (*ai.HighlightResult, error)
	GenerateSocialContent(ctx context.Context, highlights []entity.NewsHighlight, companyName string, platforms []string, tone entity.Tone) (*ai.SocialContent, error)
	ProcessArticle(ctx context.Context, article *entity.NewsArticle, companyName string, platforms []string, tone entity.Tone) (*ai.ProcessedArticle, error)
}

// DigestRunner builds a digest for one company.
type DigestRunner interface {
	RunCompany(ctx context.Context, target digest.WatchTarget) (*digest.Digest, error)
}

// NewsSearcher returns recent news for a company.
type NewsSearcher interface {
	FetchCompanyNews(ctx context.Context, companyName string, limit int) ([]entity.NewsArticle, error)
}

// HighlightsHandler serves POST /v1/highlights.
type HighlightsHandler struct{ Svc ContentService }

func (h HighlightsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req HighlightsRequest
	if err := respond.DecodeJSON(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.Article == nil {
		badRequest(w, "article is required")
		return
	}

	result, err := h.Svc.ExtractHighlights(r.Context(), req.Article.toEntity(), req.CompanyName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, result)
}

// ContentHandler serves POST /v1/content.
type ContentHandler struct{ Svc ContentService }

func (h ContentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if err := respond.DecodeJSON(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	tone, err := entity.ParseTone(req.Tone)
	if err != nil {
		writeError(w, r, err)
		return
	}

	content, err := h.Svc.GenerateSocialContent(r.Context(), req.Highlights, req.CompanyName, req.Platforms, tone)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, content)
}

// ProcessHandler serves POST /v1/articles/process.
type ProcessHandler struct{ Svc ContentService }

func (h ProcessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := respond.DecodeJSON(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.Article == nil {
		badRequest(w, "article is required")
		return
	}
	tone, err := entity.ParseTone(req.Tone)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.Svc.ProcessArticle(r.Context(), req.Article.toEntity(), req.CompanyName, req.Platforms, tone)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, result)
}

// DigestHandler serves POST /v1/companies/digest.
type DigestHandler struct {
	Runner DigestRunner
	Logger *slog.Logger
}

func (h DigestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req DigestRequest
	if err := respond.DecodeJSON(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if strings.TrimSpace(req.CompanyName) == "" {
		badRequest(w, "company_name is required")
		return
	}
	if req.MaxArticles < 0 || req.MaxArticles > maxNewsLimit {
		badRequest(w, "max_articles must be between 0 and "+strconv.Itoa(maxNewsLimit))
		return
	}
	tone, err := entity.ParseTone(req.Tone)
	if err != nil {
		writeError(w, r, err)
		return
	}
	platforms := req.Platforms
	if len(platforms) == 0 {
		for _, p := range entity.SupportedPlatforms() {
			platforms = append(platforms, string(p))
		}
	}

	d, err := h.Runner.RunCompany(r.Context(), digest.WatchTarget{
		Name:        req.CompanyName,
		Platforms:   platforms,
		Tone:        tone,
		MaxArticles: req.MaxArticles,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if h.Logger != nil {
		h.Logger.Info("digest served",
			slog.String("company", d.Company),
			slog.Int("articles", len(d.Articles)),
			slog.Int64("failed", d.Stats.Failed))
	}
	respond.JSON(w, http.StatusOK, d)
}

// NewsHandler serves GET /v1/companies/{name}/news[?limit=N].
type NewsHandler struct{ News NewsSearcher }

func (h NewsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		badRequest(w, "company name is required")
		return
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxNewsLimit {
			badRequest(w, "limit must be between 1 and "+strconv.Itoa(maxNewsLimit))
			return
		}
		limit = n
	}

	articles, err := h.News.FetchCompanyNews(r.Context(), name, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if articles == nil {
		articles = []entity.NewsArticle{}
	}
	respond.JSON(w, http.StatusOK, NewsResponse{Company: name, Articles: articles})
}
