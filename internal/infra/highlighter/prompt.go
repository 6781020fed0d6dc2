package highlighter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"company-pulse/internal/domain/entity"
	"company-pulse/internal/usecase/ai"
	"company-pulse/internal/utils/text"
)

// ErrMalformedResponse is returned when a provider reply is not a highlight list.
var ErrMalformedResponse = errors.New("malformed highlight response")

const truncationNote = "\n...(truncated)"

// buildPrompt renders the extraction instructions for one article.
func buildPrompt(req ai.HighlightRequest, maxInputChars, maxHighlights int) string {
	body := text.Truncate(req.Text, maxInputChars, truncationNote)

	var b strings.Builder
	fmt.Fprintf(&b, "You analyse news about the company %q for its social media team.\n", req.CompanyName)
	fmt.Fprintf(&b, "Extract up to %d key highlights from the article below.\n", maxHighlights)
	b.WriteString("Respond with a JSON array only, no prose, where every element is\n")
	b.WriteString(`{"text": "<one sentence>", "importance": <1-5, 5 = most important>, "category": "<financial|product|partnership|leadership|legal|market|general>"}`)
	b.WriteString("\n\n")
	if req.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", req.Title)
	}
	if req.URL != "" {
		fmt.Fprintf(&b, "Source: %s\n", req.URL)
	}
	b.WriteString("Article:\n")
	b.WriteString(body)
	return b.String()
}

type rawHighlight struct {
	Text       string  `json:"text"`
	Importance float64 `json:"importance"`
	Category   string  `json:"category"`
}

// parseHighlights decodes a provider reply into highlights.
// Markdown code fences and surrounding prose are tolerated; entries without
// text are dropped and importance is clamped.
func parseHighlights(reply string) ([]entity.NewsHighlight, error) {
	payload := strings.TrimSpace(reply)
	start := strings.Index(payload, "[")
	end := strings.LastIndex(payload, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON array in reply", ErrMalformedResponse)
	}

	var raw []rawHighlight
	if err := json.Unmarshal([]byte(payload[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	highlights := make([]entity.NewsHighlight, 0, len(raw))
	for _, r := range raw {
		t := strings.TrimSpace(r.Text)
		if t == "" {
			continue
		}
		category := strings.ToLower(strings.TrimSpace(r.Category))
		if category == "" {
			category = "general"
		}
		highlights = append(highlights, entity.NewsHighlight{
			Text:       t,
			Importance: entity.ClampImportance(r.Importance),
			Category:   category,
		})
	}
	return highlights, nil
}
