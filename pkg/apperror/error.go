package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, message, nil)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message, nil)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, nil)
}

func Conflict(message string) *AppError {
	return New(http.StatusConflict, message, nil)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "Internal Server Error", err)
}

// Unavailable is used for network failures talking to the Tarabaho API.
// The cause is appended to the message so the user sees what went wrong.
func Unavailable(message string, err error) *AppError {
	if err != nil {
		message = fmt.Sprintf("%s: %v", message, err)
	}
	return New(http.StatusBadGateway, message, err)
}

// Validation reports client-side validation failures keyed by field name.
func Validation(message string, fields map[string]string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
		Fields:  fields,
	}
}

// CodeOf returns the HTTP status carried by err, or 0 when err is not an AppError.
func CodeOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return 0
}

func IsNotFound(err error) bool {
	return CodeOf(err) == http.StatusNotFound
}

func IsUnauthorized(err error) bool {
	return CodeOf(err) == http.StatusUnauthorized
}
