// Package faults defines the error taxonomy shared by every pipeline stage.
//
// Errors are tagged with one of the exported sentinel markers so callers can
// classify a failure without inspecting message text: validation and
// not-found faults abort before any processing, parse faults are recovered
// per record, and IO faults abort the run because a partial export misleads
// the downstream importer.
package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks bad CLI arguments or a malformed/inverted date range.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks missing Fitbit data under the given path.
	ErrNotFound = errors.New("not found")
	// ErrParse marks a malformed record or source file. Recoverable.
	ErrParse = errors.New("parse error")
	// ErrIO marks an unwritable export path or a failed write. Fatal.
	ErrIO = errors.New("io error")
)

// Kind names the classification of an error for logs and the run catalog.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrIO):
		return "io"
	default:
		return "unknown"
	}
}

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
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
		return "converter failure"
	}
	return strings.Join(parts, ": ")
}
