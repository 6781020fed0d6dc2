// Package config loads application configuration from the environment and
// configuration files.
package config

import (
	"fmt"
	"strings"
	"time"

	pkgconfig "company-pulse/internal/pkg/config"
)

// Provider modes.
const (
	// ModeLive talks to the real provider APIs; a provider is registered only
	// when its API key is set.
	ModeLive = "live"
	// ModeSimulated registers offline providers for local runs and demos.
	ModeSimulated = "simulated"
)

// AIConfig configures the provider stack and its health monitoring.
type AIConfig struct {
	Mode string

	AnthropicAPIKey string
	ClaudeModel     string
	OpenAIAPIKey    string
	OpenAIModel     string

	// HealthCheckInterval is the snapshot TTL and the background refresh period.
	HealthCheckInterval time.Duration
	// PreferenceOrder breaks ties between equally healthy providers.
	PreferenceOrder []string
	ProbeTimeout    time.Duration
	// DegradedLatency is the probe latency above which a provider is degraded.
	DegradedLatency time.Duration
	// RequestTimeout bounds one extraction call including transport retries.
	RequestTimeout time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
}

// DefaultAIConfig returns the defaults used when no variable is set.
func DefaultAIConfig() AIConfig {
	return AIConfig{
		Mode:                ModeLive,
		HealthCheckInterval: 5 * time.Minute,
		PreferenceOrder:     []string{"claude", "openai"},
		ProbeTimeout:        10 * time.Second,
		DegradedLatency:     3 * time.Second,
		RequestTimeout:      60 * time.Second,
		RateLimitRPS:        2,
		RateLimitBurst:      4,
	}
}

// LoadAIConfig reads the AI_* and provider key variables.
// Malformed values fall back to defaults and are returned as warnings;
// a configuration that cannot run is an error.
func LoadAIConfig() (*AIConfig, []string, error) {
	def := DefaultAIConfig()
	var w pkgconfig.Warnings

	cfg := &AIConfig{
		Mode:                strings.ToLower(pkgconfig.LoadEnvString("AI_PROVIDER_MODE", def.Mode)),
		AnthropicAPIKey:     pkgconfig.LoadEnvString("ANTHROPIC_API_KEY", ""),
		ClaudeModel:         pkgconfig.LoadEnvString("CLAUDE_MODEL", ""),
		OpenAIAPIKey:        pkgconfig.LoadEnvString("OPENAI_API_KEY", ""),
		OpenAIModel:         pkgconfig.LoadEnvString("OPENAI_MODEL", ""),
		HealthCheckInterval: pkgconfig.Add(&w, pkgconfig.LoadEnvDuration("AI_HEALTH_CHECK_INTERVAL", def.HealthCheckInterval, pkgconfig.DurationBetween(5*time.Second, 24*time.Hour))),
		PreferenceOrder:     normalizeNames(pkgconfig.LoadEnvList("AI_PREFERENCE_ORDER", def.PreferenceOrder)),
		ProbeTimeout:        pkgconfig.Add(&w, pkgconfig.LoadEnvDuration("AI_PROBE_TIMEOUT", def.ProbeTimeout, pkgconfig.ValidatePositiveDuration)),
		DegradedLatency:     pkgconfig.Add(&w, pkgconfig.LoadEnvDuration("AI_DEGRADED_LATENCY", def.DegradedLatency, pkgconfig.ValidatePositiveDuration)),
		RequestTimeout:      pkgconfig.Add(&w, pkgconfig.LoadEnvDuration("AI_REQUEST_TIMEOUT", def.RequestTimeout, pkgconfig.ValidatePositiveDuration)),
		RateLimitRPS:        pkgconfig.Add(&w, pkgconfig.LoadEnvFloat("AI_RATE_LIMIT_RPS", def.RateLimitRPS, pkgconfig.ValidatePositiveFloat)),
		RateLimitBurst:      pkgconfig.Add(&w, pkgconfig.LoadEnvInt("AI_RATE_LIMIT_BURST", def.RateLimitBurst, pkgconfig.IntBetween(1, 100))),
	}

	if err := cfg.Validate(); err != nil {
		return nil, w, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return cfg, w, nil
}

// Validate checks that the configuration can produce at least one provider.
func (c *AIConfig) Validate() error {
	switch c.Mode {
	case ModeSimulated:
	case ModeLive:
		if c.AnthropicAPIKey == "" && c.OpenAIAPIKey == "" {
			return fmt.Errorf("live mode requires ANTHROPIC_API_KEY or OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("AI_PROVIDER_MODE must be %q or %q, got %q", ModeLive, ModeSimulated, c.Mode)
	}
	if c.HealthCheckInterval <= 0 {
		return fmt.Errorf("AI_HEALTH_CHECK_INTERVAL must be positive")
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("AI_PROBE_TIMEOUT must be positive")
	}
	if c.ProbeTimeout >= c.HealthCheckInterval {
		return fmt.Errorf("AI_PROBE_TIMEOUT (%v) must be shorter than AI_HEALTH_CHECK_INTERVAL (%v)", c.ProbeTimeout, c.HealthCheckInterval)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("AI rate limit must be positive")
	}
	return nil
}

// EnabledProviders lists the providers this configuration registers, in
// registration order.
func (c *AIConfig) EnabledProviders() []string {
	if c.Mode == ModeSimulated {
		return []string{"claude", "openai"}
	}
	var names []string
	if c.AnthropicAPIKey != "" {
		names = append(names, "claude")
	}
	if c.OpenAIAPIKey != "" {
		names = append(names, "openai")
	}
	return names
}

func normalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, strings.ToLower(n))
	}
	return out
}
