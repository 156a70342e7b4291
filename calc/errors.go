/*
errors.go - Error taxonomy shared by the engines

PURPOSE:
  Two failure classes exist, per the engine boundary contract:
  1. Validation errors - malformed or logically inconsistent input,
     always detected before any arithmetic begins
  2. Lookup errors - a correction-index factor is unavailable; surfaced
     instead of silently defaulting to 1, which would corrupt the result

  Engines never catch-and-suppress; every failure reaches the caller with
  enough detail to identify the offending field.

USAGE:
  Callers classify with errors.Is:

    if errors.Is(err, calc.ErrValidation) { ... 400 ... }
    if errors.Is(err, calc.ErrLookup)     { ... 422 ... }

SEE ALSO:
  - index.go: producers of LookupError
  - api/handlers.go: maps these onto HTTP status codes
*/
package calc

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the class of all input-validation failures.
	ErrValidation = errors.New("invalid input")

	// ErrLookup is returned when an external correction-index factor is
	// unavailable for a requested (index, month) pair.
	ErrLookup = errors.New("correction factor unavailable")

	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("record not found")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError identifies the offending input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError for a field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// LookupError reports a missing correction factor.
type LookupError struct {
	Index IndexCode
	Month string // YYYY-MM
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no %s factor for %s", e.Index, e.Month)
}

func (e *LookupError) Unwrap() error { return ErrLookup }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
