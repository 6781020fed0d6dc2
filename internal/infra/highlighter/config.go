package highlighter

import (
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// defaultMaxInputChars caps the article text sent to a provider.
	defaultMaxInputChars = 10000

	// defaultMaxHighlights is how many highlights a provider is asked for.
	defaultMaxHighlights = 5
)

// ErrMissingAPIKey is returned when a live provider is configured without a key.
var ErrMissingAPIKey = errors.New("api key is required")

// Config holds the settings shared by the live provider clients.
type Config struct {
	// APIKey authenticates against the provider.
	APIKey string

	// Model is the provider model identifier.
	Model string

	// BaseURL overrides the provider endpoint. Empty uses the SDK default.
	BaseURL string

	// MaxTokens bounds the response size.
	MaxTokens int

	// Timeout bounds one extraction call including retries.
	Timeout time.Duration

	// MaxInputChars truncates article text before prompting. Default: 10000.
	MaxInputChars int

	// MaxHighlights is the number of highlights requested. Default: 5.
	MaxHighlights int

	// DegradedLatency is the probe latency above which the provider is reported degraded.
	DegradedLatency time.Duration

	// RequestsPerSecond and Burst configure the client-side rate limiter.
	RequestsPerSecond float64
	Burst             int
}

// DefaultClaudeConfig returns defaults for the Anthropic client.
func DefaultClaudeConfig(apiKey string) Config {
	return Config{
		APIKey:            apiKey,
		Model:             string(anthropic.ModelClaudeSonnet4_5_20250929),
		MaxTokens:         1024,
		Timeout:           60 * time.Second,
		MaxInputChars:     defaultMaxInputChars,
		MaxHighlights:     defaultMaxHighlights,
		DegradedLatency:   3 * time.Second,
		RequestsPerSecond: 2,
		Burst:             4,
	}
}

// DefaultOpenAIConfig returns defaults for the OpenAI client.
func DefaultOpenAIConfig(apiKey string) Config {
	return Config{
		APIKey:            apiKey,
		Model:             openai.GPT4oMini,
		MaxTokens:         1024,
		Timeout:           60 * time.Second,
		MaxInputChars:     defaultMaxInputChars,
		MaxHighlights:     defaultMaxHighlights,
		DegradedLatency:   3 * time.Second,
		RequestsPerSecond: 2,
		Burst:             4,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.MaxInputChars <= 0 {
		return fmt.Errorf("max input chars must be positive, got %d", c.MaxInputChars)
	}
	if c.MaxHighlights <= 0 {
		return fmt.Errorf("max highlights must be positive, got %d", c.MaxHighlights)
	}
	if c.DegradedLatency <= 0 {
		return fmt.Errorf("degraded latency must be positive, got %v", c.DegradedLatency)
	}
	if c.RequestsPerSecond <= 0 || c.Burst <= 0 {
		return fmt.Errorf("rate limit must be positive, got %.2f rps burst %d", c.RequestsPerSecond, c.Burst)
	}
	return nil
}
