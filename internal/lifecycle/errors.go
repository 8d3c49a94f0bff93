package lifecycle

import (
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidInput         Code = "INVALID_INPUT"
	CodeForbiddenRole        Code = "FORBIDDEN_ROLE"
	CodeNotFound             Code = "NOT_FOUND"
	CodeForbiddenNotAssigned Code = "FORBIDDEN_NOT_ASSIGNED"
	CodeInvalidState         Code = "INVALID_STATE"
	CodeInvalidCode          Code = "INVALID_CODE"
	CodeConflict             Code = "CONFLICT"
	CodeInternal             Code = "INTERNAL"
)

var codeStatuses = map[Code]int{
	CodeInvalidInput:         http.StatusBadRequest,
	CodeForbiddenRole:        http.StatusForbidden,
	CodeNotFound:             http.StatusNotFound,
	CodeForbiddenNotAssigned: http.StatusForbidden,
	CodeInvalidState:         http.StatusUnprocessableEntity,
	CodeInvalidCode:          http.StatusBadRequest,
	CodeConflict:             http.StatusConflict,
	CodeInternal:             http.StatusInternalServerError,
}

// Error is a rejected or failed transition. Message is safe to show to the
// caller, Err holds the underlying cause for logs.
type Error struct {
	Code    Code
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code Code, message string) *Error {
	return &Error{Code: code, Status: codeStatuses[code], Message: message}
}

func internalError(message string, err error) *Error {
	return &Error{Code: CodeInternal, Status: http.StatusInternalServerError, Message: message, Err: err}
}

const (
	msgUnexpected = "An unexpected error occurred"
	msgNotFound   = "Order not found"
	msgConflict   = "Order was modified concurrently, please retry"
)
