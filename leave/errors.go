/*
errors.go - Centralized error taxonomy for the leave engine

PURPOSE:
  All validator and workflow failures are returned as typed errors, never
  panicked, so the calling layer can render field-level or toast-level
  messages. Wrapping errors carry the context the UI needs (shortfall
  amounts, attempted transitions) and unwrap to the sentinels below.

ERROR CATEGORIES:
  1. Validation errors - a candidate request was rejected; nothing changed
  2. Transition errors - a workflow transition was not applicable
  3. Store errors - lookup misses and write conflicts

USAGE:
  if errors.Is(err, leave.ErrInsufficientBalance) {
      var ib *leave.InsufficientBalanceError
      errors.As(err, &ib) // ib.Shortfall for display
  }
*/
package leave

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDateRange is returned when end precedes start, or a
	// half-day request spans more than one date.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrBackdatedRequest is returned when a request starts before today
	// and the policy does not allow retroactive leave.
	ErrBackdatedRequest = errors.New("request starts in the past")

	// ErrNotEligible is returned when the employee has not cleared the
	// applicability window, or the policy is inactive or scoped to another
	// department.
	ErrNotEligible = errors.New("employee not eligible for this leave type")

	// ErrOverlappingRequest is returned when the candidate conflicts with
	// an existing pending or approved request.
	ErrOverlappingRequest = errors.New("overlapping leave request")

	// ErrInsufficientBalance is returned when requested days exceed the
	// available balance.
	ErrInsufficientBalance = errors.New("insufficient leave balance")

	// ErrMissingDocuments is returned when the policy requires attachments
	// and none were supplied.
	ErrMissingDocuments = errors.New("supporting documents required")

	// ErrInvalidTransition is returned for transitions from terminal or
	// inapplicable states.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrPastApprovedCancellation is returned when cancelling an approved
	// leave whose start date has already passed.
	ErrPastApprovedCancellation = errors.New("approved leave already started, cannot cancel")

	// ErrRequestNotFound is returned when a request id does not exist.
	ErrRequestNotFound = errors.New("leave request not found")

	// ErrEmployeeNotFound is returned by the directory collaborator.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrConflict is returned when a concurrent write invalidated the
	// transition. The caller retries once with fresh state; a second
	// conflict surfaces to the user.
	ErrConflict = errors.New("concurrent modification conflict")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientBalanceError carries the shortfall so the caller can render it.
type InsufficientBalanceError struct {
	EmployeeID string
	Available  decimal.Decimal
	Requested  decimal.Decimal
	Shortfall  decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: available %s, requested %s, shortfall %s",
		e.Available, e.Requested, e.Shortfall)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// InvalidTransitionError names the attempted transition.
type InvalidTransitionError struct {
	RequestID RequestID
	From      Status
	Attempted string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s request %s in status %s", e.Attempted, e.RequestID, e.From)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is due to invalid client input
// rather than an engine or storage failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrBackdatedRequest) ||
		errors.Is(err, ErrNotEligible) ||
		errors.Is(err, ErrOverlappingRequest) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrMissingDocuments) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrPastApprovedCancellation)
}

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRequestNotFound) || errors.Is(err, ErrEmployeeNotFound)
}

// IsRetryable reports whether the operation might succeed on retry with
// fresh state.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}
