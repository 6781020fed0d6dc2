// Package main is a command-line front end to the content pipeline.
//
// Usage:
//
//	pulse-process -company "Acme Corp" -article article.json [-platforms linkedin,twitter] [-tone casual] [-output json]
//	cat article.json | pulse-process -company "Acme Corp"
//	pulse-process -company "Acme Corp" -digest [-max 3]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"company-pulse/internal/app"
	"company-pulse/internal/domain/entity"
	"company-pulse/internal/observability/logging"
	"company-pulse/internal/usecase/ai"
	"company-pulse/internal/usecase/digest"
)

// options are the parsed command-line flags.
type options struct {
	company     string
	articlePath string
	digest      bool
	platforms   []string
	tone        entity.Tone
	maxArticles int
	output      string
	timeout     time.Duration
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	logger := logging.New(stderr, logging.OptionsFromEnv())
	slog.SetDefault(logger)

	stack, _, err := app.LoadAIStack(logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to configure AI providers: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	var result any
	if opts.digest {
		result, err = runDigest(ctx, logger, stack, opts)
	} else {
		result, err = runArticle(ctx, stack, opts, stdin)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if opts.output == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(stderr, "Error: failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}
	switch r := result.(type) {
	case *ai.ProcessedArticle:
		writeArticleText(stdout, r)
	case *digest.Digest:
		writeDigestText(stdout, r)
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("pulse-process", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		opts      options
		platforms string
		tone      string
	)
	fs.StringVar(&opts.company, "company", "", "Company the news is about (required)")
	fs.StringVar(&opts.articlePath, "article", "-", "Article JSON file, or - for stdin")
	fs.BoolVar(&opts.digest, "digest", false, "Search the news for -company and process every article")
	fs.StringVar(&platforms, "platforms", "", "Comma-separated platforms (default: all)")
	fs.StringVar(&tone, "tone", "", "Post tone: professional, casual, enthusiastic or informative")
	fs.IntVar(&opts.maxArticles, "max", 3, "Articles per digest (1-50)")
	fs.StringVar(&opts.output, "output", "text", "Output format: text or json")
	fs.DurationVar(&opts.timeout, "timeout", 5*time.Minute, "Overall time limit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts.company = strings.TrimSpace(opts.company)
	if opts.company == "" {
		return nil, errors.New("-company is required")
	}
	if opts.output != "text" && opts.output != "json" {
		return nil, fmt.Errorf("invalid -output %q (must be text or json)", opts.output)
	}
	if opts.maxArticles < 1 || opts.maxArticles > 50 {
		return nil, fmt.Errorf("-max must be between 1 and 50, got %d", opts.maxArticles)
	}
	if opts.timeout <= 0 {
		return nil, errors.New("-timeout must be positive")
	}
	t, err := entity.ParseTone(tone)
	if err != nil {
		return nil, err
	}
	opts.tone = t

	for _, p := range strings.Split(platforms, ",") {
		if p = strings.TrimSpace(p); p != "" {
			opts.platforms = append(opts.platforms, p)
		}
	}
	if len(opts.platforms) == 0 {
		for _, p := range entity.SupportedPlatforms() {
			opts.platforms = append(opts.platforms, string(p))
		}
	}
	return &opts, nil
}

func runArticle(ctx context.Context, stack *app.AIStack, opts *options, stdin io.Reader) (*ai.ProcessedArticle, error) {
	article, err := readArticle(opts.articlePath, stdin)
	if err != nil {
		return nil, err
	}
	return stack.Service.ProcessArticle(ctx, article, opts.company, opts.platforms, opts.tone)
}

func runDigest(ctx context.Context, logger *slog.Logger, stack *app.AIStack, opts *options) (*digest.Digest, error) {
	pipeline, err := app.LoadDigestPipeline(logger, stack.Service)
	if err != nil {
		return nil, err
	}
	return pipeline.Service.RunCompany(ctx, digest.WatchTarget{
		Name:        opts.company,
		Platforms:   opts.platforms,
		Tone:        opts.tone,
		MaxArticles: opts.maxArticles,
	})
}

// readArticle decodes one entity.NewsArticle from path, or stdin for "-".
func readArticle(path string, stdin io.Reader) (*entity.NewsArticle, error) {
	r := stdin
	if path != "-" {
		// #nosec G304 -- operator-supplied path
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open article: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	var article entity.NewsArticle
	if err := json.NewDecoder(r).Decode(&article); err != nil {
		return nil, fmt.Errorf("decode article: %w", err)
	}
	return &article, nil
}

func writeArticleText(w io.Writer, p *ai.ProcessedArticle) {
	fmt.Fprintf(w, "%s\n", p.Article.Title)
	if p.Article.URL != "" {
		fmt.Fprintf(w, "%s\n", p.Article.URL)
	}
	provider := p.Highlights.Provider
	if p.Highlights.FallbackUsed {
		provider += " (fallback)"
	}
	fmt.Fprintf(w, "\nHighlights via %s:\n", provider)
	for i, h := range p.Highlights.Highlights {
		fmt.Fprintf(w, "%d. [%s, %.1f] %s\n", i+1, h.Category, h.Importance, h.Text)
	}

	platforms := make([]string, 0, len(p.Content.Posts))
	for pl := range p.Content.Posts {
		platforms = append(platforms, string(pl))
	}
	sort.Strings(platforms)
	for _, pl := range platforms {
		post := p.Content.Posts[entity.Platform(pl)]
		fmt.Fprintf(w, "\n--- %s (%d chars) ---\n%s\n", pl, post.CharacterCount, post.Content)
	}
}

func writeDigestText(w io.Writer, d *digest.Digest) {
	fmt.Fprintf(w, "Digest for %s (%s)\n", d.Company, d.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Articles: %d fetched, %d processed, %d failed, %d enhanced\n",
		d.Stats.Fetched, d.Stats.Processed, d.Stats.Failed, d.Stats.Enhanced)
	for _, a := range d.Articles {
		fmt.Fprintf(w, "\n==============================\n")
		writeArticleText(w, a)
	}
	if len(d.Failures) > 0 {
		fmt.Fprintf(w, "\nFailed articles:\n")
		for _, f := range d.Failures {
			fmt.Fprintf(w, "- %s: %s\n", f.URL, f.Error)
		}
	}
}
