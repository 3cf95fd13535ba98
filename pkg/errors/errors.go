// Package errors provides structured error types for routegraph.
//
// Errors carry a machine-readable [Code] so that the CLI and the HTTP service
// can decide how to report a failure without string matching:
//   - NOT_FOUND: the upstream resource is absent (normally resolved to empty)
//   - UPSTREAM_*: the PBX API could not be reached or refused the request
//   - RESOURCE_LIMIT_EXCEEDED: a paginated listing grew past its cap
//   - LOCAL_PARSE_FAILURE: a response body could not be interpreted
//   - INVALID_* / FORBIDDEN: caller input was rejected
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "domain is required")
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeUpstreamUnavailable, origErr, "all hosts failed for %s", path)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidDomain Code = "INVALID_DOMAIN"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Upstream errors
	ErrCodeUpstreamUnavailable   Code = "UPSTREAM_UNAVAILABLE"
	ErrCodeUpstreamRejected      Code = "UPSTREAM_REJECTED"
	ErrCodeResourceLimitExceeded Code = "RESOURCE_LIMIT_EXCEEDED"
	ErrCodeLocalParseFailure     Code = "LOCAL_PARSE_FAILURE"

	// Authorization errors
	ErrCodeForbidden Code = "FORBIDDEN"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)

	// Status is the upstream HTTP status for ErrCodeUpstreamRejected.
	Status int
	// Detail is the upstream response body for ErrCodeUpstreamRejected.
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Rejected creates an ErrCodeUpstreamRejected error preserving the upstream
// status and response body.
func Rejected(status int, body string) *Error {
	return &Error{
		Code:    ErrCodeUpstreamRejected,
		Message: fmt.Sprintf("API Error: %s", body),
		Status:  status,
		Detail:  body,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to the status code the HTTP service responds with.
// Rejected upstream requests keep the upstream status when it is a client error.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Code {
	case ErrCodeInvalidInput, ErrCodeInvalidDomain, ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeUpstreamRejected:
		if e.Status >= 400 && e.Status < 500 {
			return e.Status
		}
		return http.StatusBadGateway
	case ErrCodeResourceLimitExceeded:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
