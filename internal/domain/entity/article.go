// Package entity defines the core domain entities and validation logic for the application.
// It contains the business objects that flow through the news-to-post pipeline
// (articles, highlights, platform posts) along with their validation rules and domain errors.
package entity

import (
	"strings"
	"time"
)

// NewsArticle represents a single piece of company news retrieved from a news source.
// Content is the text handed to highlight extraction; it may be the feed description
// or the full article body when content enhancement succeeded.
type NewsArticle struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source,omitempty"`
	Content     string    `json:"content"`
	PublishedAt time.Time `json:"published_at"`
}

// Text returns the article text used for highlight extraction.
// The title is prepended so that short feed descriptions still carry the headline.
func (a *NewsArticle) Text() string {
	title := strings.TrimSpace(a.Title)
	content := strings.TrimSpace(a.Content)
	switch {
	case title == "":
		return content
	case content == "":
		return title
	case strings.HasPrefix(content, title):
		return content
	default:
		return title + "\n\n" + content
	}
}

// Validate checks that the article carries enough text to extract highlights from.
func (a *NewsArticle) Validate() error {
	if a == nil {
		return invalid("article", "article is required")
	}
	if strings.TrimSpace(a.Title) == "" && strings.TrimSpace(a.Content) == "" {
		return invalid("article", "article title or content is required")
	}
	if a.URL != "" && len(a.URL) > maxURLLength {
		return invalid("url", "longer than %d bytes", maxURLLength)
	}
	return nil
}
