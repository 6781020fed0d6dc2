package highlighter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"company-pulse/internal/domain/entity"
	"company-pulse/internal/resilience/circuitbreaker"
	"company-pulse/internal/usecase/ai"
)

// ClaudeName is the provider name used in health snapshots and errors.
const ClaudeName = "claude"

// Claude extracts highlights with Anthropic's Messages API.
type Claude struct {
	client anthropic.Client
	*engine
}

// NewClaude creates a Claude provider client.
func NewClaude(cfg Config, opts ...Option) (*Claude, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid claude configuration: %w", err)
	}

	// The SDK's own retries are disabled; the engine's retry policy applies.
	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}

	slog.Info("Initialized Claude highlighter",
		slog.String("model", cfg.Model),
		slog.Int("max_highlights", cfg.MaxHighlights),
		slog.Float64("requests_per_second", cfg.RequestsPerSecond))

	return &Claude{
		client: anthropic.NewClient(reqOpts...),
		engine: newEngine(ClaudeName, cfg, circuitbreaker.ClaudeAPIConfig(), opts),
	}, nil
}

// Name implements ai.ProviderClient.
func (c *Claude) Name() string { return ClaudeName }

// ExtractHighlights implements ai.ProviderClient.
func (c *Claude) ExtractHighlights(ctx context.Context, req ai.HighlightRequest) ([]entity.NewsHighlight, error) {
	return c.extract(ctx, req, c.complete)
}

// ProbeHealth implements ai.ProviderClient by listing models, which is cheap
// and authenticated.
func (c *Claude) ProbeHealth(ctx context.Context) ai.ProviderHealth {
	return c.probe(ctx, func(ctx context.Context) error {
		_, err := c.client.Models.List(ctx, anthropic.ModelListParams{})
		if err != nil {
			return classifyClaudeError(err)
		}
		return nil
	})
}

func (c *Claude) complete(ctx context.Context, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: int64(c.cfg.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude api error: %w", classifyClaudeError(err))
	}
	if len(message.Content) == 0 {
		return "", fmt.Errorf("claude api returned empty response")
	}
	block, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("claude api returned unexpected response type")
	}
	return block.Text, nil
}

func classifyClaudeError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return httpError(apiErr.StatusCode, err)
	}
	return err
}
