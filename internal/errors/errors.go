// Package errors defines the coded error taxonomy used across verdict.
package errors

import (
	"errors"
	"fmt"
)

// Code is a stable error code string.
type Code string

const (
	EUsage Code = "E_USAGE"

	// EConfig marks missing or invalid configuration (credentials, endpoints).
	// Always fatal at startup.
	EConfig Code = "E_CONFIG"

	// EProviderUnavailable marks transport failures, timeouts, 429 and 5xx
	// responses that persisted after retries were exhausted.
	EProviderUnavailable Code = "E_PROVIDER_UNAVAILABLE"

	// EProviderAuth marks a provider rejecting the configured credentials (401/403).
	EProviderAuth Code = "E_PROVIDER_AUTH"

	// EAmbiguousClaim marks text the claim parser could not classify. It is
	// reported as a warning; the claim still gets a NotEnoughEvidence verdict.
	EAmbiguousClaim Code = "E_AMBIGUOUS_CLAIM"
)

// Error is the standard error type for verdict errors.
type Error struct {
	Code  Code
	Msg   string
	Cause error
}

// Error returns the stable error format: "CODE: message[: cause]".
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Msg: msg}
}

// Newf creates a new Error with a formatted message.
func Newf(code Code, format string, args ...interface{}) error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates a new Error wrapping an underlying error.
func Wrap(code Code, msg string, err error) error {
	return &Error{Code: code, Msg: msg, Cause: err}
}

// GetCode extracts the error code from an error, or empty string if err is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsTransient reports whether err is a provider fault that a later run could clear.
func IsTransient(err error) bool {
	return GetCode(err) == EProviderUnavailable
}

// IsConfig reports whether err is a configuration fault.
func IsConfig(err error) bool {
	return GetCode(err) == EConfig
}
