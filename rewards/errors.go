/*
errors.go - Centralized error types for the rewards engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers (API layer, store) wrap these errors with additional context.

ERROR CATEGORIES:
  1. Validation errors - inputs outside the engine's domain
  2. Redemption errors - balance shortages
  3. Ledger errors - idempotency and persistence failures

USAGE:
  Match with errors.Is():

    if errors.Is(err, rewards.ErrInsufficientPoints) {
        // map to HTTP 422
    }

SEE ALSO:
  - redemption.go: returns InsufficientPointsError
  - ledger.go: returns ErrDuplicateIdempotencyKey
*/
package rewards

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned for inputs outside the engine's
	// domain: negative point totals, negative visit counts, or quiz
	// scores outside [0, 100]. The computation aborts with no partial
	// result.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientPoints is returned when a redemption's cost
	// exceeds the available balance, or when a ledger transaction
	// would drive a balance negative.
	ErrInsufficientPoints = errors.New("insufficient points")

	// ErrDuplicateIdempotencyKey is returned when a ledger transaction
	// with the same idempotency key already exists. This is expected
	// behavior for retried accruals.
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

	// ErrVisitorNotFound is returned when a referenced visitor doesn't exist.
	ErrVisitorNotFound = errors.New("visitor not found")

	// ErrRewardNotFound is returned when a referenced catalog reward doesn't exist.
	ErrRewardNotFound = errors.New("reward not found")

	// ErrBookingNotFound is returned when a referenced booking doesn't exist.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrInvalidStatusTransition is returned for illegal booking status
	// changes (e.g. confirming a cancelled booking).
	ErrInvalidStatusTransition = errors.New("invalid booking status transition")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidInputError reports which field was out of domain.
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// InsufficientPointsError provides details about a point shortage.
type InsufficientPointsError struct {
	VisitorID VisitorID
	Available Points
	Requested Points
	Shortfall Points
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: available %d, requested %d, shortfall %d",
		e.Available, e.Requested, e.Shortfall)
}

func (e *InsufficientPointsError) Unwrap() error {
	return ErrInsufficientPoints
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInsufficientPoints) ||
		errors.Is(err, ErrDuplicateIdempotencyKey) ||
		errors.Is(err, ErrInvalidStatusTransition)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrVisitorNotFound) ||
		errors.Is(err, ErrRewardNotFound) ||
		errors.Is(err, ErrBookingNotFound)
}
