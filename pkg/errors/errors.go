// SPDX-License-Identifier: Apache-2.0
// Package errors provides typed error handling with rich context for Genesis.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies Genesis errors for monitoring and recovery.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeInvalidInput indicates the input was invalid. Reserved for
	// programmer errors; runtime agent failures use the codes below.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeTimeout indicates an agent invocation exceeded its deadline.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeTransport indicates the invocation transport failed.
	CodeTransport ErrorCode = "TRANSPORT_ERROR"

	// CodeAgentError indicates the agent itself returned a failure.
	CodeAgentError ErrorCode = "AGENT_ERROR"

	// CodeAgentUnavailable indicates one agent's invocation failed or
	// timed out; the coordination call continues without it.
	CodeAgentUnavailable ErrorCode = "AGENT_UNAVAILABLE"

	// CodeAllAgentsUnavailable indicates every requested agent failed
	// and a degraded response was produced.
	CodeAllAgentsUnavailable ErrorCode = "ALL_AGENTS_UNAVAILABLE"

	// CodeLLMError indicates an LLM provider error.
	CodeLLMError ErrorCode = "LLM_ERROR"
)

// CoordError is a typed error with rich context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type CoordError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]interface{}
	Attributes  map[string]string
	Recoverable bool
}

// Error implements the error interface.
func (e *CoordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *CoordError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *CoordError) MarshalJSON() ([]byte, error) {
	type Alias CoordError
	return json.Marshal(&struct {
		Message     string `json:"message"`
		Code        string `json:"code"`
		Err         string `json:"error,omitempty"`
		Recoverable bool   `json:"recoverable"`
		*Alias
	}{
		Message:     e.Error(),
		Code:        string(e.Code),
		Err:         fmt.Sprintf("%v", e.Err),
		Recoverable: e.Recoverable,
		Alias:       (*Alias)(e),
	})
}

// New creates a new CoordError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *CoordError {
	return &CoordError{
		Code:       code,
		Message:    msg,
		Err:        cause,
		Context:    make(map[string]interface{}),
		Attributes: make(map[string]string),
	}
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *CoordError) WithContext(key string, value interface{}) *CoordError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithAttribute adds a string attribute for OTEL traces.
// Returns the error for method chaining.
func (e *CoordError) WithAttribute(key, value string) *CoordError {
	if e.Attributes == nil {
		e.Attributes = make(map[string]string)
	}
	e.Attributes[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
// Returns the error for method chaining.
func (e *CoordError) WithRecoverable(recoverable bool) *CoordError {
	e.Recoverable = recoverable
	return e
}

// AsCoordError attempts to convert an error to a CoordError.
// Returns the error as CoordError if it is one, or wraps it otherwise.
func AsCoordError(err error) *CoordError {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*CoordError); ok {
		return ce
	}
	return New(CodeInternal, "wrapped error", err)
}

// CodeOf returns the code of err, or CodeInternal for untyped errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if ce, ok := err.(*CoordError); ok {
		return ce.Code
	}
	return CodeInternal
}

// IsTimeout reports whether err carries the timeout code.
func IsTimeout(err error) bool {
	return CodeOf(err) == CodeTimeout
}

// RecoverableString returns "true" or "false" as a string for observability.
func (e *CoordError) RecoverableString() string {
	if e.Recoverable {
		return "true"
	}
	return "false"
}
