// Package storage provides the data persistence layer for the fraud desk.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/fraud-desk/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrUnknownStatus      = errors.New("unknown case status")
	ErrInvalidSnapshotTag = errors.New("invalid snapshot tag")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateStatus only rejects anything when strict is set.
func validateStatus(status model.CaseStatus, strict bool) error {
	if strict && !status.IsKnown() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	return nil
}

// validateSnapshotTag rejects tags that could escape the snapshots directory.
func validateSnapshotTag(tag string) error {
	if err := validateString(tag, "tag"); err != nil {
		return err
	}
	if strings.Contains(tag, "/") || strings.Contains(tag, "\\") || strings.Contains(tag, "..") {
		return fmt.Errorf("%w: cannot contain path separators", ErrInvalidSnapshotTag)
	}
	return nil
}
