// Package apperrors defines the error taxonomy shared by services and
// handlers. None of these errors are transient; callers surface them to the
// client and never retry.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound signals an unknown identifier.
	ErrNotFound = errors.New("not found")
	// ErrForbidden signals an ownership or role mismatch.
	ErrForbidden = errors.New("forbidden")
)

// ContentViolationError is returned when a text field contains personal
// contact information that must stay off the platform.
type ContentViolationError struct {
	Field      string
	Violations []string
}

func (e *ContentViolationError) Error() string {
	return fmt.Sprintf("field %q contains forbidden personal information: %s. Sharing personal contact details is not allowed on the platform",
		e.Field, strings.Join(e.Violations, ", "))
}

// NotFound wraps ErrNotFound with a resource description so handlers can
// match it with errors.Is while keeping a useful message.
func NotFound(resource, id string) error {
	return fmt.Errorf("%s with ID %s %w", resource, id, ErrNotFound)
}

// Forbidden wraps ErrForbidden with a reason.
func Forbidden(reason string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, reason)
}
