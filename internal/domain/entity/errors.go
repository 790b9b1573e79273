package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
// Handlers map these to HTTP status codes; nothing below the handler
// layer knows about HTTP.
var (
	// ErrInvalidInput indicates that the provided input is invalid
	// (empty text, oversized text, malformed request). Raised before any
	// quota or credit is consumed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrQuotaExhausted indicates that a guest caller has used up the
	// daily summarization allowance.
	ErrQuotaExhausted = errors.New("daily quota exhausted")

	// ErrInsufficientCredits indicates that an account has no credits left.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrUnsupportedFormat indicates an upload in a format the extractor
	// cannot handle.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrPayloadTooLarge indicates an upload exceeding the configured
	// maximum file size. Raised before extraction is attempted.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrEmptyInput indicates that the text was blank after normalization.
	ErrEmptyInput = errors.New("empty input")

	// ErrEngineUnavailable indicates that the selected summarization
	// strategy's backing resource failed to initialize. Safe to retry later.
	ErrEngineUnavailable = errors.New("summarization engine unavailable")

	// ErrSummarization wraps unexpected downstream summarization failures.
	// The original cause is preserved for logging but not surfaced to callers.
	ErrSummarization = errors.New("summarization failed")

	// ErrAccountNotFound indicates that a referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountInactive indicates that the account exists but is disabled.
	ErrAccountInactive = errors.New("account inactive")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Unwrap makes ValidationError match ErrInvalidInput in errors.Is checks.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
