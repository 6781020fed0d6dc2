package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAIConfig_LiveWithKeys(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("OPENAI_API_KEY", "sk-openai-test")
	t.Setenv("AI_PREFERENCE_ORDER", "OpenAI, claude")
	t.Setenv("AI_HEALTH_CHECK_INTERVAL", "1m")

	cfg, warnings, err := LoadAIConfig()
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, ModeLive, cfg.Mode)
	assert.Equal(t, []string{"openai", "claude"}, cfg.PreferenceOrder)
	assert.Equal(t, time.Minute, cfg.HealthCheckInterval)
	assert.Equal(t, []string{"claude", "openai"}, cfg.EnabledProviders())
}

func TestLoadAIConfig_Simulated(t *testing.T) {
	t.Setenv("AI_PROVIDER_MODE", "Simulated")

	cfg, _, err := LoadAIConfig()
	require.NoError(t, err)
	assert.Equal(t, ModeSimulated, cfg.Mode)
	assert.Equal(t, []string{"claude", "openai"}, cfg.EnabledProviders())
}

func TestLoadAIConfig_LiveWithoutKeys(t *testing.T) {
	t.Setenv("AI_PROVIDER_MODE", "live")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	_, _, err := LoadAIConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
}

func TestLoadAIConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("AI_PROVIDER_MODE", "simulated")
	t.Setenv("AI_HEALTH_CHECK_INTERVAL", "1s")
	t.Setenv("AI_RATE_LIMIT_BURST", "lots")

	cfg, warnings, err := LoadAIConfig()
	require.NoError(t, err)

	def := DefaultAIConfig()
	assert.Equal(t, def.HealthCheckInterval, cfg.HealthCheckInterval)
	assert.Equal(t, def.RateLimitBurst, cfg.RateLimitBurst)
	assert.Len(t, warnings, 2)
}

func TestLoadAIConfig_OnlyOpenAIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-openai-test")

	cfg, _, err := LoadAIConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"openai"}, cfg.EnabledProviders())
}

func TestAIConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AIConfig)
		wantErr string
	}{
		{"valid", func(c *AIConfig) {}, ""},
		{"unknown mode", func(c *AIConfig) { c.Mode = "mock" }, "AI_PROVIDER_MODE"},
		{"probe longer than interval", func(c *AIConfig) {
			c.ProbeTimeout = time.Minute
			c.HealthCheckInterval = 30 * time.Second
		}, "AI_PROBE_TIMEOUT"},
		{"zero probe timeout", func(c *AIConfig) { c.ProbeTimeout = 0 }, "AI_PROBE_TIMEOUT"},
		{"zero rate", func(c *AIConfig) { c.RateLimitRPS = 0 }, "rate limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultAIConfig()
			cfg.AnthropicAPIKey = "sk-ant-test"
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
