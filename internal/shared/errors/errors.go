// Package errors provides the application-level error type the HTTP layer
// maps to a status code and body, instead of handling raw Go errors.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType distinguishes the three HTTP-visible outcomes this service
// produces, per SPEC_FULL.md §7: a bad request, a not-found source, or an
// internal failure.
type ErrorType string

const (
	ErrorTypeBadRequest ErrorType = "bad_request"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeInternal   ErrorType = "internal_error"
)

// AppError carries an ErrorType and HTTP status code alongside the
// message. No handler or orchestrator code constructs one: the conversion
// endpoints report failures as 200-status plain-text bodies through
// convert.Result.
type AppError struct {
	Type    ErrorType
	Message string
	Code    int
	Details string
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func NewBadRequestError(message string, details ...string) *AppError {
	return &AppError{Type: ErrorTypeBadRequest, Message: message, Code: http.StatusBadRequest, Details: firstOrEmpty(details)}
}

func NewNotFoundError(message string, details ...string) *AppError {
	return &AppError{Type: ErrorTypeNotFound, Message: message, Code: http.StatusNotFound, Details: firstOrEmpty(details)}
}

func NewInternalError(message string, details ...string) *AppError {
	return &AppError{Type: ErrorTypeInternal, Message: message, Code: http.StatusInternalServerError, Details: firstOrEmpty(details)}
}

func firstOrEmpty(details []string) string {
	if len(details) > 0 {
		return details[0]
	}
	return ""
}

// IsAppError reports whether err is, or wraps, an *AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts the *AppError from err, or nil if it isn't one.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
