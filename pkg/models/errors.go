package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies provider failures so callers can decide whether to
// retry, degrade, or surface the error to the user.
type ErrorKind string

const (
	ErrInvalidInput ErrorKind = "invalid_input"
	ErrNotFound     ErrorKind = "not_found"
	ErrRateLimited  ErrorKind = "rate_limited"
	ErrUnauthorized ErrorKind = "unauthorized"
	ErrServer       ErrorKind = "server"
	ErrTimeout      ErrorKind = "timeout"
	ErrConnection   ErrorKind = "connection"
	ErrConfig       ErrorKind = "config"
	ErrMalformed    ErrorKind = "malformed"
)

// ProviderError is the single error type returned by every external adapter.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a typed provider error
func NewProviderError(provider string, kind ErrorKind, message string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Message: message, Err: err}
}

// KindOf returns the error kind, or empty string for foreign errors.
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// IsRetryable reports whether the failure is transient. Rate limits, server
// errors, timeouts and connection failures are retried; everything else is
// terminal for the attempt.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case ErrRateLimited, ErrServer, ErrTimeout, ErrConnection:
		return true
	default:
		return false
	}
}
