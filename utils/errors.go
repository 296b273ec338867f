package utils

import (
	"errors"
	"net/http"
)

// ApiError carries the HTTP status a failure should surface as.
type ApiError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ApiError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ApiError) Unwrap() error {
	return e.Err
}

func NewApiError(status int, message string) *ApiError {
	return &ApiError{StatusCode: status, Message: message}
}

func BadRequest(message string) *ApiError {
	return NewApiError(http.StatusBadRequest, message)
}

func Unauthorized(message string) *ApiError {
	return NewApiError(http.StatusUnauthorized, message)
}

func Forbidden(message string) *ApiError {
	return NewApiError(http.StatusForbidden, message)
}

func NotFound(message string) *ApiError {
	return NewApiError(http.StatusNotFound, message)
}

func Conflict(message string) *ApiError {
	return NewApiError(http.StatusConflict, message)
}

// Internal hides err from the caller; the message is generic.
func Internal(message string, err error) *ApiError {
	return &ApiError{StatusCode: http.StatusInternalServerError, Message: message, Err: err}
}

// StatusOf returns the status carried by err, or 500.
func StatusOf(err error) int {
	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return http.StatusInternalServerError
}
