package commentary

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is a machine-readable error classification.
type ErrorCode string

const (
	CodeInvalidReference  ErrorCode = "invalid_reference"
	CodeInvalidInput      ErrorCode = "invalid_input"
	CodeForbidden         ErrorCode = "forbidden"
	CodeInvalidTransition ErrorCode = "invalid_transition"
	CodeConflict          ErrorCode = "conflict"
	CodeNotFound          ErrorCode = "not_found"
)

// Error is a structured service error. Every error carries enough
// detail for the calling interface to render an actionable message.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`

	// Field names the offending input field for validation errors.
	Field string `json:"field,omitempty"`

	// CurrentStatus is set on transition and conflict errors so the
	// caller can refresh and decide the next action.
	CurrentStatus Status `json:"currentStatus,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AsError unwraps a structured service error.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// HTTPStatus maps a service error to its HTTP status code.
func HTTPStatus(err error) int {
	e, ok := AsError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch e.Code {
	case CodeInvalidReference, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeForbidden:
		return http.StatusForbidden
	case CodeInvalidTransition:
		return http.StatusConflict
	case CodeConflict:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func errInvalidReference(field, msg string) *Error {
	return &Error{Code: CodeInvalidReference, Field: field, Message: msg}
}

func errInvalidInput(field, msg string) *Error {
	return &Error{Code: CodeInvalidInput, Field: field, Message: msg}
}

func errForbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

func errInvalidTransition(from, to Status) *Error {
	return &Error{
		Code:          CodeInvalidTransition,
		Message:       fmt.Sprintf("no transition defined from %s to %s", from, to),
		CurrentStatus: from,
	}
}

func errConflict(id string, expected Status) *Error {
	return &Error{
		Code:          CodeConflict,
		Message:       fmt.Sprintf("entry %s changed status since it was read (expected %s); refresh and retry", id, expected),
		CurrentStatus: expected,
	}
}

func errNotFound(id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("entry %s not found", id)}
}
