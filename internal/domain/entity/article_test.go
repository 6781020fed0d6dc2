package entity

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewsArticle_Text(t *testing.T) {
	tests := []struct {
		name     string
		article  NewsArticle
		expected string
	}{
		{
			name:     "title and content",
			article:  NewsArticle{Title: "Acme raises $10M", Content: "Acme announced a Series A."},
			expected: "Acme raises $10M\n\nAcme announced a Series A.",
		},
		{
			name:     "content already starts with title",
			article:  NewsArticle{Title: "Acme raises $10M", Content: "Acme raises $10M in funding"},
			expected: "Acme raises $10M in funding",
		},
		{
			name:     "title only",
			article:  NewsArticle{Title: "  Acme raises $10M "},
			expected: "Acme raises $10M",
		},
		{
			name:     "content only",
			article:  NewsArticle{Content: "Body"},
			expected: "Body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.article.Text())
		})
	}
}

func TestNewsArticle_Validate(t *testing.T) {
	tests := []struct {
		name    string
		article *NewsArticle
		wantErr bool
	}{
		{name: "nil article", article: nil, wantErr: true},
		{name: "empty article", article: &NewsArticle{}, wantErr: true},
		{name: "whitespace only", article: &NewsArticle{Title: " ", Content: "\n"}, wantErr: true},
		{name: "title only", article: &NewsArticle{Title: "Acme"}, wantErr: false},
		{name: "content only", article: &NewsArticle{Content: "Acme"}, wantErr: false},
		{
			name:    "url too long",
			article: &NewsArticle{Title: "Acme", URL: "https://example.com/" + strings.Repeat("a", maxURLLength)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.article.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrValidationFailed))
				return
			}
			assert.NoError(t, err)
		})
	}
}
