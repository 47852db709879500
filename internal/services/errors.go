// Package services holds the error taxonomy shared by the recovery pipeline
// and the external tool clients beneath it.
package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExternalTool marks a non-zero exit from a metadata tool.
	ErrExternalTool = errors.New("external tool error")
	// ErrTimeout marks an external process that was force-killed at its deadline.
	ErrTimeout = errors.New("timeout")
	// ErrValidation marks input that failed a pipeline validity check.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks unusable configuration discovered at startup.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks a path that vanished between scan and apply.
	ErrNotFound = errors.New("not found")
	// ErrCheckpointCorrupt marks a checkpoint file that could not be decoded.
	// Loading must fail loudly on this rather than silently starting over.
	ErrCheckpointCorrupt = errors.New("checkpoint corrupt")
)

// Wrap builds an error message that includes operation context while tagging
// it with the provided marker for later outcome classification. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsTimeout reports whether err carries the timeout marker.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
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
