package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is a stable machine-parseable error category. Callers dispatch
// on codes, never on message text.
type ErrorCode string

const (
	// Validation errors: caller-fixable, surfaced immediately, never retried.
	ErrInvalidSymbol   ErrorCode = "INVALID_SYMBOL"
	ErrInvalidPeriod   ErrorCode = "INVALID_PERIOD"
	ErrInvalidOverride ErrorCode = "INVALID_OVERRIDE"
	ErrUnknownProfile  ErrorCode = "UNKNOWN_PROFILE"
	ErrUnknownUniverse ErrorCode = "UNKNOWN_UNIVERSE"

	// Upstream errors.
	ErrDataFetch   ErrorCode = "DATA_FETCH_ERROR" // retryable transport failure
	ErrRanker      ErrorCode = "RANKER_ERROR"     // non-fatal, falls back to rules
	ErrRateLimited ErrorCode = "RATE_LIMITED"

	// Data quality.
	ErrInsufficientData ErrorCode = "INSUFFICIENT_DATA"

	// Internal.
	ErrCalculation ErrorCode = "CALCULATION_ERROR"
)

// Error is the categorical error returned at the per-symbol core boundary.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError creates a categorical error without a cause.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError creates a categorical error wrapping an upstream cause.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the error code, or CALCULATION_ERROR for foreign errors.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCalculation
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// IsRetryable reports whether the error class is worth another attempt.
// Invalid symbols and other validation failures are not.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case ErrDataFetch, ErrRateLimited:
		return true
	}
	return false
}
