// internal/engine/errors.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Common engine errors
var (
	ErrInvalidURL   = errors.New("invalid URL")
	ErrTimeout      = errors.New("request timeout")
	ErrNetworkError = errors.New("network error")
	ErrBadStatus    = errors.New("unexpected HTTP status")
	ErrParseError   = errors.New("failed to parse response")
	ErrNoResults    = errors.New("no results")
	ErrDisabled     = errors.New("component disabled")
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	ErrCodeFetchFailure    ErrorCode = "FETCH_FAILURE"
	ErrCodeTimeout         ErrorCode = "TIMEOUT"
	ErrCodeParseFailure    ErrorCode = "PARSE_FAILURE"
	ErrCodeResolverFailure ErrorCode = "RESOLVER_FAILURE"
	ErrCodeValidation      ErrorCode = "VALIDATION"
)

// EngineError wraps errors with additional context.
// None of these errors reach the caller of an extraction: they are
// logged and turned into degraded output.
type EngineError struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Details    map[string]interface{}
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches the target
func (e *EngineError) Is(target error) bool {
	if t, ok := target.(*EngineError); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

// NewEngineError creates a new EngineError
func NewEngineError(code ErrorCode, message string, err error) *EngineError {
	return &EngineError{
		Code:       code,
		Message:    message,
		Underlying: err,
		Details:    make(map[string]interface{}),
	}
}

// WithDetail adds a detail to the error
func (e *EngineError) WithDetail(key string, value interface{}) *EngineError {
	e.Details[key] = value
	return e
}

// CodeOf returns the ErrorCode carried by err, or "" when err is not an EngineError
func CodeOf(err error) ErrorCode {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// ClassifyTransportError maps an error returned by http.Client.Do to an EngineError
func ClassifyTransportError(message string, err error) *EngineError {
	if IsTimeout(err) {
		return NewEngineError(ErrCodeTimeout, message, errors.Join(ErrTimeout, err))
	}
	return NewEngineError(ErrCodeFetchFailure, message, errors.Join(ErrNetworkError, err))
}

// IsTimeout reports whether err is a deadline or network timeout
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
