// Package pulse provides the HTTP handlers for highlight extraction, post
// generation, article processing and company digests.
package pulse

import (
	"time"

	"company-pulse/internal/domain/entity"
)

// ArticleDTO is the article payload accepted by the processing endpoints.
type ArticleDTO struct {
	Title       string    `json:"title" example:"Acme opens Berlin office"`
	URL         string    `json:"url" example:"https://news.example.com/acme-berlin"`
	Source      string    `json:"source,omitempty" example:"Reuters"`
	Content     string    `json:"content" example:"Acme opened a new office in Berlin..."`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

func (d *ArticleDTO) toEntity() *entity.NewsArticle {
	if d == nil {
		return nil
	}
	return &entity.NewsArticle{
		Title:       d.Title,
		URL:         d.URL,
		Source:      d.Source,
		Content:     d.Content,
		PublishedAt: d.PublishedAt,
	}
}

// HighlightsRequest is the body of POST /v1/highlights.
type HighlightsRequest struct {
	Article     *ArticleDTO `json:"article"`
	CompanyName string      `json:"company_name"`
}

// ContentRequest is the body of POST /v1/content.
type ContentRequest struct {
	Highlights  []entity.NewsHighlight `json:"highlights"`
	CompanyName string                 `json:"company_name"`
	Platforms   []string               `json:"platforms"`
	Tone        string                 `json:"tone,omitempty"`
}

// ProcessRequest is the body of POST /v1/articles/process.
type ProcessRequest struct {
	Article     *ArticleDTO `json:"article"`
	CompanyName string      `json:"company_name"`
	Platforms   []string    `json:"platforms"`
	Tone        string      `json:"tone,omitempty"`
}

// DigestRequest is the body of POST /v1/companies/digest.
type DigestRequest struct {
	CompanyName string   `json:"company_name"`
	Platforms   []string `json:"platforms"`
	Tone        string   `json:"tone,omitempty"`
	MaxArticles int      `json:"max_articles,omitempty"`
}

// NewsResponse is returned by GET /v1/companies/{name}/news.
type NewsResponse struct {
	Company  string               `json:"company"`
	Articles []entity.NewsArticle `json:"articles"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Kind    string   `json:"kind,omitempty"`
	Service []string `json:"service,omitempty"`
}
