// Package common defines shared constants and sentinel errors used across
// notehub layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound        = errors.New("not found")
	ErrDuplicateContent  = errors.New("duplicate note content")
	ErrDuplicateUsername = errors.New("username already taken")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")

	// Validation errors. Wrapped with a caller-facing message, e.g.
	// fmt.Errorf("%w: content exceeds 500 characters", ErrValidation).
	ErrValidation = errors.New("validation error")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")

	// ErrPartialFailure marks a failure on the second leg of the
	// note-insert/owner-link write pair. The transaction rolls back, but the
	// error stays distinct so operators can spot the reconciliation path.
	ErrPartialFailure = errors.New("partial failure")

	// ErrUnavailable marks a storage call that exhausted its timeout.
	// Eligible for caller-side retry with backoff.
	ErrUnavailable = errors.New("storage unavailable")
)
