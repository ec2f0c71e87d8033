// Package errs defines the typed errors handlers and guards return. The central error
// handler turns them into JSON responses; nothing else decides the response shape.
package errs

import (
	"fmt"
	"net/http"
)

// Error is an error that carries the HTTP status it should be reported with.
type Error struct {
	Status  int
	Message string
	Fields  interface{} // optional per-field details, e.g. validation failures
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error with the given status and message.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func BadRequest(message string) *Error   { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *Error    { return New(http.StatusForbidden, message) }
func NotFound(message string) *Error     { return New(http.StatusNotFound, message) }
func Conflict(message string) *Error     { return New(http.StatusConflict, message) }

// Validation reports a request whose fields broke one or more rules.
func Validation(fields interface{}, err error) *Error {
	return &Error{Status: http.StatusBadRequest, Message: "Validation failed", Fields: fields, Err: err}
}

// Internal wraps an unexpected failure. Its cause is logged but never sent to clients.
func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "Internal Server Error", Err: err}
}
