package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFetchExhausted = errors.New("fetch retries exhausted")
	ErrFetchFailed    = errors.New("fetch failed")
	ErrParse          = errors.New("parse error")
	ErrCacheWrite     = errors.New("cache write failed")
	ErrRenderSkip     = errors.New("channel skipped")
	ErrValidation     = errors.New("validation error")
	ErrConfiguration  = errors.New("configuration error")
	ErrNotFound       = errors.New("not found")
	ErrTimeout        = errors.New("timeout")
	ErrTransient      = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
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

// IsFatal reports whether err must abort a pipeline run before anything is
// published. Cache write failures and render skips are reported but tolerated.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCacheWrite) || errors.Is(err, ErrRenderSkip) {
		return false
	}
	return true
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
