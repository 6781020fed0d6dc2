package worker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"company-pulse/internal/usecase/digest"
)

// DigestWriter stores each digest as an indented JSON file named
// <company-slug>-<UTC timestamp>.json.
type DigestWriter struct {
	dir string
}

// NewDigestWriter creates dir if needed.
func NewDigestWriter(dir string) (*DigestWriter, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &DigestWriter{dir: dir}, nil
}

// Write stores d and returns the file path. The file is written to a
// temporary name first so readers never see a partial digest.
func (w *DigestWriter) Write(d *digest.Digest) (string, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode digest: %w", err)
	}
	name := fmt.Sprintf("%s-%s.json", Slug(d.Company), d.GeneratedAt.UTC().Format("20060102T150405Z"))
	path := filepath.Join(w.dir, name)

	tmp, err := os.CreateTemp(w.dir, ".digest-*")
	if err != nil {
		return "", fmt.Errorf("create digest file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("write digest file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("close digest file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("rename digest file: %w", err)
	}
	return path, nil
}

// Slug lowercases name and joins its letter and digit runs with '-'.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	if b.Len() == 0 {
		return "company"
	}
	return b.String()
}
