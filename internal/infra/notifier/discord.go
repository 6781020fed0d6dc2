package notifier

import (
	"context"
	"log/slog"
	"time"

	"company-pulse/internal/usecase/digest"
	"company-pulse/internal/utils/text"
)

// Discord embed limits.
const (
	discordMaxTitle      = 256
	discordMaxFieldName  = 256
	discordMaxFieldValue = 1024
	discordColor         = 0x2F80ED
)

// DiscordPayload is a webhook execute request.
type DiscordPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed is one rich embed.
type DiscordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Fields      []DiscordField `json:"fields,omitempty"`
	Timestamp   string         `json:"timestamp"`
}

// DiscordField is one embed field.
type DiscordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Discord posts digests to a Discord webhook, at most two messages per second.
type Discord struct {
	hook *webhook
}

// NewDiscord creates a Discord notifier for webhookURL.
func NewDiscord(webhookURL string, timeout time.Duration, opts ...Option) *Discord {
	return &Discord{hook: newWebhook("discord", webhookURL, timeout, 2, 2, opts)}
}

// NotifyDigest implements Notifier.
func (n *Discord) NotifyDigest(ctx context.Context, d *digest.Digest) error {
	if err := n.hook.post(ctx, BuildDiscordPayload(d)); err != nil {
		return err
	}
	slog.Info("Discord notification sent",
		slog.String("company", d.Company),
		slog.Int("articles", len(d.Articles)))
	return nil
}

// BuildDiscordPayload renders d as one embed with a field per top article.
func BuildDiscordPayload(d *digest.Digest) DiscordPayload {
	embed := DiscordEmbed{
		Title:       text.Truncate(d.Company+" news digest", discordMaxTitle, "..."),
		Description: statsLine(d),
		Color:       discordColor,
		Timestamp:   d.GeneratedAt.UTC().Format(time.RFC3339),
	}
	for i, a := range d.Articles {
		if i == topArticles {
			break
		}
		value := a.Article.URL
		if a.Highlights != nil && len(a.Highlights.Highlights) > 0 {
			value = a.Highlights.Highlights[0].Text + "\n" + value
		}
		embed.Fields = append(embed.Fields, DiscordField{
			Name:  text.Truncate(a.Article.Title, discordMaxFieldName, "..."),
			Value: text.Truncate(value, discordMaxFieldValue, "..."),
		})
	}
	return DiscordPayload{Embeds: []DiscordEmbed{embed}}
}
