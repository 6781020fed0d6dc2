// Package formatter turns extracted highlights into platform-specific social
// media posts using tone templates, hashtags and per-platform length limits.
package formatter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"company-pulse/internal/domain/entity"
	"company-pulse/internal/usecase/ai"
	"company-pulse/internal/utils/text"
)

var (
	// ErrNoHighlights is returned when there is nothing to format.
	ErrNoHighlights = errors.New("no highlights to format")
	// ErrUnsupportedPlatform is returned for platforms without a template.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

const ellipsis = "…"

// platformStyle controls how much of the highlight list a platform gets.
type platformStyle struct {
	maxHighlights int
	maxHashtags   int
	bullet        string
}

var styles = map[entity.Platform]platformStyle{
	entity.PlatformTwitter:   {maxHighlights: 1, maxHashtags: 2, bullet: ""},
	entity.PlatformLinkedIn:  {maxHighlights: 5, maxHashtags: 5, bullet: "• "},
	entity.PlatformFacebook:  {maxHighlights: 3, maxHashtags: 3, bullet: "• "},
	entity.PlatformInstagram: {maxHighlights: 3, maxHashtags: 8, bullet: "✨ "},
}

var leadIns = map[entity.Tone]string{
	entity.ToneProfessional: "Update from %s:",
	entity.ToneCasual:       "Quick news from %s 👀",
	entity.ToneEnthusiastic: "Big news from %s! 🎉",
	entity.ToneInformative:  "%s news briefing:",
}

// Template is a ContentFormatter backed by fixed templates.
type Template struct{}

// NewTemplate creates a template formatter.
func NewTemplate() *Template {
	return &Template{}
}

// Format implements ai.ContentFormatter. Highlights are expected in priority
// order; posts come back in the order of req.Platforms.
func (t *Template) Format(ctx context.Context, req ai.FormatRequest) ([]entity.PlatformPost, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(req.Highlights) == 0 {
		return nil, ErrNoHighlights
	}

	posts := make([]entity.PlatformPost, 0, len(req.Platforms))
	for _, p := range req.Platforms {
		style, ok := styles[p]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, p)
		}
		posts = append(posts, compose(p, style, req))
	}
	return posts, nil
}

func compose(p entity.Platform, style platformStyle, req ai.FormatRequest) entity.PlatformPost {
	lead, ok := leadIns[req.Tone]
	if !ok {
		lead = leadIns[entity.DefaultTone]
	}
	header := fmt.Sprintf(lead, req.CompanyName)

	n := min(style.maxHighlights, len(req.Highlights))
	lines := make([]string, 0, n)
	for _, h := range req.Highlights[:n] {
		lines = append(lines, style.bullet+h.Text)
	}
	body := strings.Join(lines, "\n")

	tags := Hashtags(req.CompanyName, req.Highlights, style.maxHashtags)
	footer := strings.Join(tags, " ")

	limit := p.CharacterLimit()
	fixed := text.CountRunes(header) + 2
	if footer != "" {
		fixed += text.CountRunes(footer) + 2
	}
	// Drop hashtags before the body when the limit is too tight for both.
	if fixed >= limit {
		tags, footer = nil, ""
		fixed = text.CountRunes(header) + 2
	}
	body = text.Truncate(body, limit-fixed, ellipsis)

	parts := []string{header, body}
	if footer != "" {
		parts = append(parts, footer)
	}
	content := text.Truncate(strings.Join(parts, "\n\n"), limit, ellipsis)

	if tags == nil {
		tags = []string{}
	}
	return entity.PlatformPost{
		Platform:       p,
		Content:        content,
		Hashtags:       tags,
		CharacterCount: text.CountRunes(content),
	}
}

// Hashtags builds up to limit hashtags: the company name first, then highlight
// categories in first-seen order.
func Hashtags(companyName string, highlights []entity.NewsHighlight, limit int) []string {
	seen := make(map[string]bool)
	tags := make([]string, 0, limit)
	add := func(s string) {
		tag := hashtag(s)
		if tag == "" || seen[strings.ToLower(tag)] || len(tags) >= limit {
			return
		}
		seen[strings.ToLower(tag)] = true
		tags = append(tags, tag)
	}

	add(companyName)
	for _, h := range highlights {
		if h.Category != "general" {
			add(h.Category)
		}
	}
	return tags
}

// hashtag converts "acme corp." to "#AcmeCorp".
func hashtag(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return ""
	}
	return "#" + b.String()
}
