package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"company-pulse/internal/domain/entity"
	"company-pulse/internal/usecase/digest"
)

// Watchlist is the set of companies the worker builds digests for.
//
//	companies:
//	  - name: Acme Corp
//	    platforms: [linkedin, twitter]
//	    tone: enthusiastic
//	    max_articles: 3
type Watchlist struct {
	Companies []digest.WatchTarget `yaml:"companies"`
}

// LoadWatchlist reads and validates a watchlist file.
// The path comes from WATCHLIST_FILE or a command-line flag.
func LoadWatchlist(path string) (*Watchlist, error) {
	// #nosec G304 -- operator-supplied path
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read watchlist: %w", err)
	}
	return ParseWatchlist(data)
}

// ParseWatchlist decodes and validates watchlist YAML.
func ParseWatchlist(data []byte) (*Watchlist, error) {
	var wl Watchlist
	if err := yaml.Unmarshal(data, &wl); err != nil {
		return nil, fmt.Errorf("failed to parse watchlist: %w", err)
	}
	if err := wl.validate(); err != nil {
		return nil, fmt.Errorf("watchlist validation failed: %w", err)
	}
	return &wl, nil
}

func (w *Watchlist) validate() error {
	if len(w.Companies) == 0 {
		return fmt.Errorf("at least one company is required")
	}
	seen := make(map[string]bool, len(w.Companies))
	for i := range w.Companies {
		c := &w.Companies[i]
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return fmt.Errorf("companies[%d]: name is required", i)
		}
		key := strings.ToLower(c.Name)
		if seen[key] {
			return fmt.Errorf("companies[%d]: duplicate company %q", i, c.Name)
		}
		seen[key] = true

		if len(c.Platforms) == 0 {
			for _, p := range entity.SupportedPlatforms() {
				c.Platforms = append(c.Platforms, string(p))
			}
		}
		tone, err := entity.ParseTone(string(c.Tone))
		if err != nil {
			return fmt.Errorf("companies[%d]: %w", i, err)
		}
		c.Tone = tone
		if c.MaxArticles < 0 {
			return fmt.Errorf("companies[%d]: max_articles must not be negative", i)
		}
	}
	return nil
}
