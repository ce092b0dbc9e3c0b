// Package faults defines the error markers shared by the planner, the mover,
// and the CLI, plus the Wrap helper that tags an error with stage context.
package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSourceRoot marks a systemic failure: the scan root is missing or unreadable.
	ErrSourceRoot = errors.New("source root unavailable")

	// ErrUnreadable marks a per-file failure; the file is excluded and the run continues.
	ErrUnreadable = errors.New("file unreadable")

	// ErrTransfer marks a photo that could not be copied or moved into place.
	ErrTransfer = errors.New("transfer failed")

	// ErrLocked reports that another process holds the target lock.
	ErrLocked = errors.New("target locked")

	ErrConfiguration = errors.New("configuration error")
	ErrValidation    = errors.New("validation error")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
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

// ExitCode maps an error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrValidation):
		return 2
	case errors.Is(err, ErrLocked):
		return 3
	default:
		return 1
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
		return "failure"
	}
	return strings.Join(parts, ": ")
}
