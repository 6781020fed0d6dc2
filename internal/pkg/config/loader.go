// Package config provides environment variable loaders with validation and
// fallback. A loader never fails: an unset variable yields the default, and a
// value that does not parse or validate yields the default plus a warning the
// caller is expected to log.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Result is one loaded value and any fallback warnings raised while loading it.
type Result[T any] struct {
	Value           T
	Warnings        []string
	FallbackApplied bool
}

// Warnings collects warnings from several results.
type Warnings []string

// Add appends r's warnings and returns r.Value.
func Add[T any](w *Warnings, r Result[T]) T {
	*w = append(*w, r.Warnings...)
	return r.Value
}

// LoadEnvString returns the variable's value, or defaultValue when unset or empty.
func LoadEnvString(envKey, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v
	}
	return defaultValue
}

// LoadEnvList splits a comma-separated variable, dropping empty entries.
// An unset variable yields a copy of defaultValue.
func LoadEnvList(envKey string, defaultValue []string) []string {
	raw := os.Getenv(envKey)
	if strings.TrimSpace(raw) == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadEnvWithFallback loads a string and falls back to defaultValue when
// validate rejects it. validate may be nil.
func LoadEnvWithFallback(envKey, defaultValue string, validate func(string) error) Result[string] {
	return load(envKey, defaultValue, func(s string) (string, error) { return s, nil }, validate)
}

// LoadEnvDuration loads a Go duration string such as "30s" or "5m".
func LoadEnvDuration(envKey string, defaultValue time.Duration, validate func(time.Duration) error) Result[time.Duration] {
	return load(envKey, defaultValue, time.ParseDuration, validate)
}

// LoadEnvInt loads a base-10 integer.
func LoadEnvInt(envKey string, defaultValue int, validate func(int) error) Result[int] {
	return load(envKey, defaultValue, strconv.Atoi, validate)
}

// LoadEnvInt64 loads a base-10 64-bit integer.
func LoadEnvInt64(envKey string, defaultValue int64, validate func(int64) error) Result[int64] {
	return load(envKey, defaultValue, func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	}, validate)
}

// LoadEnvFloat loads a floating point number.
func LoadEnvFloat(envKey string, defaultValue float64, validate func(float64) error) Result[float64] {
	return load(envKey, defaultValue, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	}, validate)
}

// LoadEnvBool loads a boolean in any form strconv.ParseBool accepts.
func LoadEnvBool(envKey string, defaultValue bool) Result[bool] {
	return load(envKey, defaultValue, strconv.ParseBool, nil)
}

func load[T any](envKey string, defaultValue T, parse func(string) (T, error), validate func(T) error) Result[T] {
	raw := strings.TrimSpace(os.Getenv(envKey))
	if raw == "" {
		return Result[T]{Value: defaultValue}
	}

	v, err := parse(raw)
	if err == nil && validate != nil {
		err = validate(v)
	}
	if err != nil {
		return Result[T]{
			Value: defaultValue,
			Warnings: []string{fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'",
				envKey, raw, err, defaultValue)},
			FallbackApplied: true,
		}
	}
	return Result[T]{Value: v}
}
