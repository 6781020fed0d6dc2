package fetcher

import (
	"fmt"
	"time"

	pkgconfig "company-pulse/internal/pkg/config"
)

// Config controls full-article fetching.
type Config struct {
	// Enabled switches enhancement off without removing the fetcher.
	Enabled bool
	// Threshold is the feed text length, in characters, at or above which no fetch happens.
	Threshold int
	// Timeout bounds one HTTP request.
	Timeout time.Duration
	// Parallelism bounds concurrent fetches in the digest pipeline.
	Parallelism int
	// MaxBodySize is enforced while reading, not from Content-Length.
	MaxBodySize  int64
	MaxRedirects int
	// DenyPrivateIPs blocks targets and redirects into private networks.
	DenyPrivateIPs bool
	UserAgent      string
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:        true,
		Threshold:      1500,
		Timeout:        10 * time.Second,
		Parallelism:    10,
		MaxBodySize:    10 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		UserAgent:      "CompanyPulseBot/1.0",
	}
}

// Validate rejects configurations that would disable the safety limits.
func (c Config) Validate() error {
	if c.Threshold < 0 {
		return fmt.Errorf("threshold must be non-negative, got %d", c.Threshold)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.Parallelism < 1 || c.Parallelism > 50 {
		return fmt.Errorf("parallelism must be between 1 and 50, got %d", c.Parallelism)
	}
	const minBody, maxBody = int64(1024), int64(100 * 1024 * 1024)
	if c.MaxBodySize < minBody || c.MaxBodySize > maxBody {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBody, maxBody, c.MaxBodySize)
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}
	return nil
}

// LoadConfigFromEnv reads CONTENT_FETCH_* variables over DefaultConfig.
// Unparseable values fall back to the default and are reported as warnings.
func LoadConfigFromEnv() (Config, []string, error) {
	def := DefaultConfig()
	var w pkgconfig.Warnings

	cfg := Config{
		Enabled:        pkgconfig.Add(&w, pkgconfig.LoadEnvBool("CONTENT_FETCH_ENABLED", def.Enabled)),
		Threshold:      pkgconfig.Add(&w, pkgconfig.LoadEnvInt("CONTENT_FETCH_THRESHOLD", def.Threshold, nil)),
		Timeout:        pkgconfig.Add(&w, pkgconfig.LoadEnvDuration("CONTENT_FETCH_TIMEOUT", def.Timeout, pkgconfig.ValidatePositiveDuration)),
		Parallelism:    pkgconfig.Add(&w, pkgconfig.LoadEnvInt("CONTENT_FETCH_PARALLELISM", def.Parallelism, nil)),
		MaxBodySize:    pkgconfig.Add(&w, pkgconfig.LoadEnvInt64("CONTENT_FETCH_MAX_BODY_SIZE", def.MaxBodySize, nil)),
		MaxRedirects:   pkgconfig.Add(&w, pkgconfig.LoadEnvInt("CONTENT_FETCH_MAX_REDIRECTS", def.MaxRedirects, nil)),
		DenyPrivateIPs: pkgconfig.Add(&w, pkgconfig.LoadEnvBool("CONTENT_FETCH_DENY_PRIVATE_IPS", def.DenyPrivateIPs)),
		UserAgent:      pkgconfig.LoadEnvString("CONTENT_FETCH_USER_AGENT", def.UserAgent),
	}
	if err := cfg.Validate(); err != nil {
		return cfg, w, fmt.Errorf("content fetch configuration: %w", err)
	}
	return cfg, w, nil
}
