package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"

	// Orchestration specific errors
	ErrMisconfigured      ErrorCode = "MISCONFIGURED"
	ErrUpstreamFailure    ErrorCode = "UPSTREAM_FAILURE"
	ErrInvalidModelOutput ErrorCode = "INVALID_MODEL_OUTPUT"
)

// How much of the raw model output to keep in diagnostics.
const modelOutputPrefixLen = 200

// DomainError represents a domain-specific error. Dependency names the
// upstream service for UPSTREAM_FAILURE class errors.
type DomainError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Dependency string    `json:"dependency,omitempty"`
	Err        error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code       string `json:"code"`
		Message    string `json:"message"`
		Dependency string `json:"dependency,omitempty"`
	}{
		Code:       string(e.Code),
		Message:    e.Message,
		Dependency: e.Dependency,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(ErrInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(ErrInternal, message, err)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(ErrUnauthorized, message, nil)
}

// NewMisconfiguredError reports a required setting that is absent. This
// surfaces at call time, not at startup, so the setting name matters.
func NewMisconfiguredError(setting string) *DomainError {
	return NewError(ErrMisconfigured, fmt.Sprintf("required configuration %s is not set", setting), nil)
}

// NewUpstreamError reports a failed call to a dependency. detail carries
// the upstream response body or transport error text.
func NewUpstreamError(dependency, detail string, err error) *DomainError {
	e := NewError(ErrUpstreamFailure, fmt.Sprintf("%s request failed: %s", dependency, detail), err)
	e.Dependency = dependency
	return e
}

// NewInvalidModelOutputError reports completion output that is not valid
// JSON, keeping a truncated prefix of the raw content for diagnostics.
func NewInvalidModelOutputError(raw string) *DomainError {
	prefix := raw
	if len(prefix) > modelOutputPrefixLen {
		prefix = prefix[:modelOutputPrefixLen]
	}
	e := NewError(ErrInvalidModelOutput, fmt.Sprintf("model output is not valid JSON: %q", prefix), nil)
	e.Dependency = "completion"
	return e
}
