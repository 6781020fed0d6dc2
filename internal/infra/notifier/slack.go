package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"company-pulse/internal/usecase/digest"
	"company-pulse/internal/utils/text"
)

// Slack Block Kit limits.
const (
	slackMaxSectionText = 3000
	slackMaxFallback    = 150
)

// SlackPayload is an Incoming Webhook message in Block Kit form.
type SlackPayload struct {
	Text   string       `json:"text"`
	Blocks []SlackBlock `json:"blocks"`
}

// SlackBlock is one Block Kit block.
type SlackBlock struct {
	Type     string      `json:"type"`
	Text     *SlackText  `json:"text,omitempty"`
	Elements []SlackText `json:"elements,omitempty"`
}

// SlackText is a Block Kit text object.
type SlackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Slack posts digests to a Slack Incoming Webhook, at most one message per second.
type Slack struct {
	hook *webhook
}

// NewSlack creates a Slack notifier for webhookURL.
func NewSlack(webhookURL string, timeout time.Duration, opts ...Option) *Slack {
	return &Slack{hook: newWebhook("slack", webhookURL, timeout, 1, 1, opts)}
}

// NotifyDigest implements Notifier.
func (s *Slack) NotifyDigest(ctx context.Context, d *digest.Digest) error {
	if err := s.hook.post(ctx, BuildSlackPayload(d)); err != nil {
		return err
	}
	slog.Info("Slack notification sent",
		slog.String("company", d.Company),
		slog.Int("articles", len(d.Articles)))
	return nil
}

// BuildSlackPayload renders d as a header section, one section per top
// article with its leading highlight, and a context footer.
func BuildSlackPayload(d *digest.Digest) SlackPayload {
	header := fmt.Sprintf("*%s news digest*\n%s", d.Company, statsLine(d))
	blocks := []SlackBlock{
		{Type: "section", Text: &SlackText{Type: "mrkdwn", Text: header}},
		{Type: "divider"},
	}

	for i, a := range d.Articles {
		if i == topArticles {
			break
		}
		var b strings.Builder
		fmt.Fprintf(&b, "*<%s|%s>*", a.Article.URL, a.Article.Title)
		if a.Highlights != nil && len(a.Highlights.Highlights) > 0 {
			fmt.Fprintf(&b, "\n%s", a.Highlights.Highlights[0].Text)
		}
		if a.Content != nil {
			fmt.Fprintf(&b, "\n_%d posts ready_", len(a.Content.Posts))
		}
		blocks = append(blocks, SlackBlock{
			Type: "section",
			Text: &SlackText{Type: "mrkdwn", Text: text.Truncate(b.String(), slackMaxSectionText, "...")},
		})
	}

	footer := "Generated " + d.GeneratedAt.UTC().Format(time.RFC3339)
	if n := len(d.Failures); n > 0 {
		footer += fmt.Sprintf(" • %d articles failed", n)
	}
	blocks = append(blocks, SlackBlock{
		Type:     "context",
		Elements: []SlackText{{Type: "mrkdwn", Text: footer}},
	})

	return SlackPayload{
		Text:   text.Truncate(fmt.Sprintf("%s news digest: %d articles", d.Company, len(d.Articles)), slackMaxFallback, "..."),
		Blocks: blocks,
	}
}
