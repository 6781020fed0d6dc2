package notifier

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	pkgconfig "company-pulse/internal/pkg/config"
)

// Config selects the chat destinations. An empty URL disables that destination.
type Config struct {
	SlackWebhookURL   string
	DiscordWebhookURL string
	Timeout           time.Duration
}

// LoadConfigFromEnv reads SLACK_WEBHOOK_URL, DISCORD_WEBHOOK_URL and
// NOTIFY_TIMEOUT. Malformed URLs are dropped with a warning.
func LoadConfigFromEnv() (Config, []string) {
	var w pkgconfig.Warnings
	cfg := Config{
		SlackWebhookURL:   pkgconfig.LoadEnvString("SLACK_WEBHOOK_URL", ""),
		DiscordWebhookURL: pkgconfig.LoadEnvString("DISCORD_WEBHOOK_URL", ""),
		Timeout:           pkgconfig.Add(&w, pkgconfig.LoadEnvDuration("NOTIFY_TIMEOUT", 30*time.Second, pkgconfig.DurationBetween(time.Second, 2*time.Minute))),
	}
	if cfg.SlackWebhookURL != "" {
		if err := ValidateSlackURL(cfg.SlackWebhookURL); err != nil {
			w = append(w, err.Error())
			cfg.SlackWebhookURL = ""
		}
	}
	if cfg.DiscordWebhookURL != "" {
		if err := ValidateDiscordURL(cfg.DiscordWebhookURL); err != nil {
			w = append(w, err.Error())
			cfg.DiscordWebhookURL = ""
		}
	}
	return cfg, w
}

// New builds the notifier for cfg: Noop, a single destination, or Multi.
func New(cfg Config, logger *slog.Logger) Notifier {
	var all Multi
	if cfg.SlackWebhookURL != "" {
		all = append(all, NewSlack(cfg.SlackWebhookURL, cfg.Timeout))
	}
	if cfg.DiscordWebhookURL != "" {
		all = append(all, NewDiscord(cfg.DiscordWebhookURL, cfg.Timeout))
	}
	logger.Info("digest notifications configured",
		slog.Bool("slack", cfg.SlackWebhookURL != ""),
		slog.Bool("discord", cfg.DiscordWebhookURL != ""))

	switch len(all) {
	case 0:
		return Noop{}
	case 1:
		return all[0]
	default:
		return all
	}
}

// ValidateSlackURL accepts https://hooks.slack.com/services/... only.
func ValidateSlackURL(raw string) error {
	return validateWebhookURL("SLACK_WEBHOOK_URL", raw, "hooks.slack.com", "/services/")
}

// ValidateDiscordURL accepts https://discord.com/api/webhooks/... only.
func ValidateDiscordURL(raw string) error {
	return validateWebhookURL("DISCORD_WEBHOOK_URL", raw, "discord.com", "/api/webhooks/")
}

func validateWebhookURL(field, raw, host, pathPrefix string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL", field)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("%s must use https", field)
	}
	if u.Host != host {
		return fmt.Errorf("%s host must be %s", field, host)
	}
	if !strings.HasPrefix(u.Path, pathPrefix) {
		return fmt.Errorf("%s path must start with %s", field, pathPrefix)
	}
	return nil
}
