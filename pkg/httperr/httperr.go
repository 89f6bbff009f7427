// Package httperr defines the typed error values the engine hands back to
// callers and their translation to HTTP responses. Business rejections are
// expected outcomes, so they carry stable machine-readable codes that
// clients branch on rather than parsing message text.
package httperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine-readable error identifier.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeNotFound     Code = "not_found"
	CodeInternal     Code = "internal_error"

	// Attendance business rejections. These are routine outcomes, not
	// faults; handlers map them to 4xx and clients are expected to
	// branch on them.
	CodeAlreadyCheckedIn  Code = "already_checked_in"
	CodeAlreadyCheckedOut Code = "already_checked_out"
	CodeNoCheckInFound    Code = "no_check_in_found"
)

// Error pairs a code with a human-readable message.
type Error struct {
	Code    Code
	Message string
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.wrapped }

// New creates an error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, wrapped: err}
}

// CodeOf extracts the code from err, or CodeInternal for unknown errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Status maps an error code to an HTTP status.
func Status(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyCheckedIn, CodeAlreadyCheckedOut:
		return http.StatusConflict
	case CodeNoCheckInFound:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
