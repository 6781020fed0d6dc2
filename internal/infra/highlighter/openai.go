package highlighter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"company-pulse/internal/domain/entity"
	"company-pulse/internal/resilience/circuitbreaker"
	"company-pulse/internal/usecase/ai"
)

// OpenAIName is the provider name used in health snapshots and errors.
const OpenAIName = "openai"

const systemPrompt = "You extract structured highlights from company news and answer with JSON only."

// OpenAI extracts highlights with the Chat Completions API.
type OpenAI struct {
	client *openai.Client
	*engine
}

// NewOpenAI creates an OpenAI provider client.
func NewOpenAI(cfg Config, opts ...Option) (*OpenAI, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid openai configuration: %w", err)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	slog.Info("Initialized OpenAI highlighter",
		slog.String("model", cfg.Model),
		slog.Int("max_highlights", cfg.MaxHighlights),
		slog.Float64("requests_per_second", cfg.RequestsPerSecond))

	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		engine: newEngine(OpenAIName, cfg, circuitbreaker.OpenAIAPIConfig(), opts),
	}, nil
}

// Name implements ai.ProviderClient.
func (o *OpenAI) Name() string { return OpenAIName }

// ExtractHighlights implements ai.ProviderClient.
func (o *OpenAI) ExtractHighlights(ctx context.Context, req ai.HighlightRequest) ([]entity.NewsHighlight, error) {
	return o.extract(ctx, req, o.complete)
}

// ProbeHealth implements ai.ProviderClient by listing models.
func (o *OpenAI) ProbeHealth(ctx context.Context) ai.ProviderHealth {
	return o.probe(ctx, func(ctx context.Context) error {
		_, err := o.client.ListModels(ctx)
		if err != nil {
			return classifyOpenAIError(err)
		}
		return nil
	})
}

func (o *OpenAI) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.cfg.Model,
		MaxTokens: o.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", classifyOpenAIError(err))
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai api returned empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return httpError(apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return httpError(reqErr.HTTPStatusCode, err)
	}
	return err
}
