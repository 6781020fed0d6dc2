package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"company-pulse/internal/domain/entity"
)

// ErrorKind classifies every failure surfaced by the AI orchestration layer.
// The set is closed; callers branch on it instead of matching messages.
type ErrorKind string

const (
	// KindConfiguration: the layer was constructed without usable providers.
	KindConfiguration ErrorKind = "ConfigurationError"
	// KindNoProviderAvailable: the health snapshot has no usable primary.
	KindNoProviderAvailable ErrorKind = "NoProviderAvailable"
	// KindAllProvidersFailed: primary and fallback both failed for one call.
	KindAllProvidersFailed ErrorKind = "AllProvidersFailed"
	// KindValidationFailed: input or output failed validation.
	KindValidationFailed ErrorKind = "ValidationFailed"
	// KindProviderOperationFailed: a single provider's raw failure.
	KindProviderOperationFailed ErrorKind = "ProviderOperationFailed"
)

// Reasons attached to ValidationFailed errors.
var (
	// ErrNoValidPlatforms is the cause when platform filtering leaves nothing.
	ErrNoValidPlatforms = errors.New("no valid platforms requested")
	// ErrEmptyHighlights is the cause when extraction or formatting gets no highlights.
	ErrEmptyHighlights = errors.New("no highlights")
	// ErrEmptyCompanyName is the cause when the company name is blank.
	ErrEmptyCompanyName = errors.New("company name cannot be empty")
)

// AIServiceError is the single error shape returned to callers of this package.
type AIServiceError struct {
	Kind    ErrorKind
	Service string // provider name(s) involved, comma separated; empty if none
	Message string
	Cause   error
}

func newError(kind ErrorKind, service, message string, cause error) *AIServiceError {
	return &AIServiceError{Kind: kind, Service: service, Message: message, Cause: cause}
}

// Error implements the error interface.
func (e *AIServiceError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Service != "" {
		b.WriteString(" [")
		b.WriteString(e.Service)
		b.WriteString("]")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *AIServiceError) Unwrap() error {
	return e.Cause
}

// Services splits Service into individual provider names.
func (e *AIServiceError) Services() []string {
	if e.Service == "" {
		return nil
	}
	return strings.Split(e.Service, ",")
}

// KindOf returns the kind of the outermost AIServiceError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var aiErr *AIServiceError
	if errors.As(err, &aiErr) {
		return aiErr.Kind, true
	}
	return "", false
}

// IsKind reports whether err's outermost AIServiceError has the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// wrapProviderError attributes a raw provider failure to its provider.
func wrapProviderError(provider, operation string, err error) *AIServiceError {
	return newError(KindProviderOperationFailed, provider, operation+" failed", err)
}

// allProvidersFailed combines the per-attempt errors of one logical call.
func allProvidersFailed(operation string, providers []string, errs []error) *AIServiceError {
	return newError(
		KindAllProvidersFailed,
		strings.Join(providers, ","),
		fmt.Sprintf("%s failed on %d provider(s)", operation, len(providers)),
		errors.Join(errs...),
	)
}

// normalizeError converts any failure into an AIServiceError.
// AIServiceErrors pass through unchanged; validation errors become
// ValidationFailed; anything else is attributed to service.
func normalizeError(err error, service, operation string) error {
	if err == nil {
		return nil
	}
	var aiErr *AIServiceError
	if errors.As(err, &aiErr) {
		return aiErr
	}
	if errors.Is(err, entity.ErrValidationFailed) {
		return newError(KindValidationFailed, "", operation+" rejected input", err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return newError(KindProviderOperationFailed, service, operation+" interrupted", err)
	}
	return newError(KindProviderOperationFailed, service, operation+" failed", err)
}
