// Package apierrors defines the error taxonomy surfaced by the HTTP API.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries an HTTP status, a human readable message and optional
// field-level details. The wrapped cause is logged but never serialized.
type Error struct {
	Status  int
	Message string
	Details []string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Invalid reports malformed identifiers or missing required fields (400).
func Invalid(message string, details ...string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message, Details: details}
}

// Unauthorized reports missing, invalid or expired credentials (401).
func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// Forbidden reports an authenticated caller acting on a resource it does not own (403).
func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

// NotFound reports an absent resource or user (404).
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// Conflict reports a duplicate unique field (409).
func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

// TooManyRequests reports a caller exceeding a rate limit (429).
func TooManyRequests(message string) *Error {
	return &Error{Status: http.StatusTooManyRequests, Message: message}
}

// Unavailable reports a dependency that cannot serve requests right now (503).
func Unavailable(message string, cause error) *Error {
	return &Error{Status: http.StatusServiceUnavailable, Message: message, Err: cause}
}

// Internal reports a store or asset-service failure (500).
func Internal(message string, cause error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: message, Err: cause}
}

// As converts any error into an *Error. Errors outside the taxonomy become Internal.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal("internal server error", err)
}
