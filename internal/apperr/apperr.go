// Package apperr defines the error taxonomy shared by services and the HTTP
// layer. Services return *Error values; handlers map them to status codes
// with Status and client-safe messages with Message, so no handler ever
// matches on error strings.
package apperr

import (
	"errors"
	"net/http"
)

// Error kinds.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL"
)

// Error carries a machine-readable code, a client-safe message, the HTTP
// status to respond with, and an optional wrapped cause for logging. The
// cause is never sent to clients.
type Error struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a 400 error for malformed or missing input.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Status: http.StatusBadRequest}
}

// Unauthorized returns a 401 error for missing or invalid credentials.
func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg, Status: http.StatusUnauthorized}
}

// Forbidden returns a 403 error for an authenticated but disallowed request.
func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg, Status: http.StatusForbidden}
}

// NotFound returns a 404 error for an absent entity.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg, Status: http.StatusNotFound}
}

// Conflict returns a 409 error for a request contradicting current state.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg, Status: http.StatusConflict}
}

// Internal wraps an unexpected error as a 500. The cause is kept for logs;
// clients only ever see the generic message.
func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: "internal server error", Status: http.StatusInternalServerError, Err: err}
}

// Status returns the HTTP status for err, 500 for anything untyped.
func Status(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

// Message returns the client-safe message for err. Untyped errors are
// redacted to the generic internal message.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// Is reports whether err is an *Error with the given code.
func Is(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
