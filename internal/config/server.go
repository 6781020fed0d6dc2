package config

import (
	"time"

	pkgconfig "company-pulse/internal/pkg/config"
)

// ServerConfig configures the HTTP API process.
type ServerConfig struct {
	Addr              string
	RequestTimeout    time.Duration
	ShutdownTimeout   time.Duration
	MaxBodyBytes      int64
	RateLimitRPM      int
	RateLimitBurst    int
	TrustForwardedFor bool
}

// DefaultServerConfig listens on :8080 with a 60s request budget, 1 MiB
// bodies and 60 requests per minute per client.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            ":8080",
		RequestTimeout:  60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxBodyBytes:    1 << 20,
		RateLimitRPM:    60,
		RateLimitBurst:  10,
	}
}

// LoadServerConfig reads API_* variables. It never fails; the returned
// fields name every variable that fell back to its default.
func LoadServerConfig() (*ServerConfig, []string) {
	def := DefaultServerConfig()
	var fallbacks []string
	track := func(field string, warnings []string) {
		if len(warnings) > 0 {
			fallbacks = append(fallbacks, field)
		}
	}

	timeout := pkgconfig.LoadEnvDuration("API_REQUEST_TIMEOUT", def.RequestTimeout, pkgconfig.DurationBetween(time.Second, 10*time.Minute))
	track("request_timeout", timeout.Warnings)
	shutdown := pkgconfig.LoadEnvDuration("API_SHUTDOWN_TIMEOUT", def.ShutdownTimeout, pkgconfig.DurationBetween(time.Second, 2*time.Minute))
	track("shutdown_timeout", shutdown.Warnings)
	body := pkgconfig.LoadEnvInt64("API_MAX_BODY_BYTES", def.MaxBodyBytes, func(v int64) error {
		return pkgconfig.IntBetween(1<<10, 32<<20)(int(v))
	})
	track("max_body_bytes", body.Warnings)
	rpm := pkgconfig.LoadEnvInt("API_RATE_LIMIT_RPM", def.RateLimitRPM, pkgconfig.IntBetween(1, 100000))
	track("rate_limit_rpm", rpm.Warnings)
	burst := pkgconfig.LoadEnvInt("API_RATE_LIMIT_BURST", def.RateLimitBurst, pkgconfig.IntBetween(1, 10000))
	track("rate_limit_burst", burst.Warnings)
	trust := pkgconfig.LoadEnvBool("API_TRUST_FORWARDED_FOR", false)
	track("trust_forwarded_for", trust.Warnings)

	return &ServerConfig{
		Addr:              pkgconfig.LoadEnvString("API_ADDR", def.Addr),
		RequestTimeout:    timeout.Value,
		ShutdownTimeout:   shutdown.Value,
		MaxBodyBytes:      body.Value,
		RateLimitRPM:      rpm.Value,
		RateLimitBurst:    burst.Value,
		TrustForwardedFor: trust.Value,
	}, fallbacks
}
