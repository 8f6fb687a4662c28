package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingSource marks a required source document that is absent.
	// Missing proceedings degrade to media-only output; missing media
	// fails the session.
	ErrMissingSource = errors.New("missing source document")
	// ErrExternalTool marks failures of external engines and services.
	ErrExternalTool = errors.New("external tool error")
	// ErrValidation marks inputs that violate a stage's preconditions.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks unusable configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks missing auxiliary resources (reference data, audio).
	ErrNotFound = errors.New("not found")
	// ErrResourceExhausted marks insufficient cache space before invoking
	// the alignment engine; it aborts only that session's alignment.
	ErrResourceExhausted = errors.New("resource exhausted")
	// ErrTransient marks retryable failures.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later status classification. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// MarkerOf names the sentinel an error is tagged with, for log fields and
// operator-facing summaries. Untagged errors report "unknown".
func MarkerOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingSource):
		return "missing_source"
	case errors.Is(err, ErrExternalTool):
		return "external_tool"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrResourceExhausted):
		return "resource_exhausted"
	case errors.Is(err, ErrTransient):
		return "transient"
	default:
		return "unknown"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
