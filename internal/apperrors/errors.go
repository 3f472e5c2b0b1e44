package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrInternal     = errors.New("internal error")
)

// AppError carries an HTTP status and a client-safe message. Err, if set,
// keeps the underlying cause for logs and errors.Is checks; it is never
// serialized to the client.
type AppError struct {
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func BadRequest(message string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Message: message, Err: ErrBadRequest}
}

func Unauthorized(message string) *AppError {
	return &AppError{Status: http.StatusUnauthorized, Message: message, Err: ErrUnauthorized}
}

func Forbidden(message string) *AppError {
	return &AppError{Status: http.StatusForbidden, Message: message, Err: ErrForbidden}
}

func NotFound(message string) *AppError {
	return &AppError{Status: http.StatusNotFound, Message: message, Err: ErrNotFound}
}

func Internal(message string, err error) *AppError {
	return &AppError{Status: http.StatusInternalServerError, Message: message, Err: err}
}

// HTTPStatus maps err to a response status, defaulting to 500 for anything
// that is not an *AppError.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// ClientMessage returns the message safe to expose in a response body.
// Uncategorized errors never leak their detail.
func ClientMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Something went wrong!"
}
