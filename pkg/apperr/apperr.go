// Package apperr carries an HTTP status alongside a client-safe message so
// services can fail with intent and handlers can answer with one call.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Error is a failure the client is allowed to see. Err, when set, is the
// internal cause; it is logged but never serialised.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap attaches an internal cause to e.
func (e *Error) Wrap(err error) *Error {
	return &Error{Status: e.Status, Message: e.Message, Err: err}
}

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func BadRequest(message string) *Error   { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *Error    { return New(http.StatusForbidden, message) }
func NotFound(message string) *Error     { return New(http.StatusNotFound, message) }
func Conflict(message string) *Error     { return New(http.StatusConflict, message) }
func BadGateway(message string) *Error   { return New(http.StatusBadGateway, message) }

// Internal hides err behind a generic 500 message.
func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "Internal server error", Err: err}
}

// From classifies any error. *Error passes through, a missing gorm record is
// a 404 and everything else is an internal error.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{Status: http.StatusNotFound, Message: "Resource not found", Err: err}
	}
	return Internal(err)
}

// Status reports the HTTP status From would assign to err.
func Status(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return From(err).Status
}
