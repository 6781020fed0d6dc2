package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadServerConfig_Defaults(t *testing.T) {
	cfg, fallbacks := LoadServerConfig()
	assert.Equal(t, DefaultServerConfig(), *cfg)
	assert.Empty(t, fallbacks)
}

func TestLoadServerConfig_Overrides(t *testing.T) {
	t.Setenv("API_ADDR", ":9000")
	t.Setenv("API_REQUEST_TIMEOUT", "90s")
	t.Setenv("API_RATE_LIMIT_RPM", "120")
	t.Setenv("API_TRUST_FORWARDED_FOR", "true")

	cfg, fallbacks := LoadServerConfig()
	assert.Empty(t, fallbacks)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 90*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 120, cfg.RateLimitRPM)
	assert.True(t, cfg.TrustForwardedFor)
}

func TestLoadServerConfig_Fallbacks(t *testing.T) {
	t.Setenv("API_REQUEST_TIMEOUT", "1h")
	t.Setenv("API_MAX_BODY_BYTES", "12")
	t.Setenv("API_RATE_LIMIT_BURST", "lots")

	cfg, fallbacks := LoadServerConfig()
	def := DefaultServerConfig()
	assert.Equal(t, def.RequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, def.MaxBodyBytes, cfg.MaxBodyBytes)
	assert.Equal(t, def.RateLimitBurst, cfg.RateLimitBurst)
	assert.ElementsMatch(t, []string{"request_timeout", "max_body_bytes", "rate_limit_burst"}, fallbacks)
}
