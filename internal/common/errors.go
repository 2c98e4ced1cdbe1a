// Package common provides shared error types and retry helpers used across
// the service.
package common

import (
	"errors"
	"fmt"
)

// Error taxonomy. The HTTP layer owns the mapping to status codes; components
// below it only wrap these sentinels.
var (
	// ErrValidation marks bad or missing request fields.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a named resource that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrRateLimited marks upstream model throttling.
	ErrRateLimited = errors.New("upstream rate limited")
	// ErrUnavailable marks upstream network failures, timeouts and 5xx.
	ErrUnavailable = errors.New("upstream unavailable")
	// ErrUnauthorized marks bad upstream credentials.
	ErrUnauthorized = errors.New("upstream unauthorized")
	// ErrInvalidResponse marks an empty or unparseable upstream payload.
	ErrInvalidResponse = errors.New("invalid upstream response")
	// ErrExtractionIncomplete marks receipt parsing that produced too few
	// fields to build a transaction.
	ErrExtractionIncomplete = errors.New("receipt extraction incomplete")
)

// Validationf wraps ErrValidation with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// RetryableError wraps an error with explicit retry metadata. Errors not
// wrapped this way are retried unless they match a non-retryable sentinel.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether a failed upstream call is worth repeating.
// Auth and validation failures never are; rate limits and transient
// unavailability are.
func IsRetryable(err error) bool {
	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalidResponse) {
		return false
	}
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable)
}
