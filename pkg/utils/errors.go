package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an application error. Conflict and NotFound are expected
// under concurrent access and are handled as normal control flow by callers.
type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindValidation   ErrorKind = "validation"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindUpstream     ErrorKind = "upstream_unavailable"
	KindInternal     ErrorKind = "internal"
)

// CustomError represents a custom application error
type CustomError struct {
	Kind    ErrorKind `json:"kind"`
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
}

func (e *CustomError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// KindOf returns the ErrorKind of err, or KindInternal for unclassified errors
func KindOf(err error) ErrorKind {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindInternal
}

// HTTPStatus maps err to the HTTP status code handlers should return
func HTTPStatus(err error) int {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return http.StatusInternalServerError
}

// Common error constructors
func NewNotFoundError(detail string) *CustomError {
	return &CustomError{
		Kind:    KindNotFound,
		Code:    http.StatusNotFound,
		Message: "Resource not found",
		Detail:  detail,
	}
}

func NewConflictError(detail string) *CustomError {
	return &CustomError{
		Kind:    KindConflict,
		Code:    http.StatusConflict,
		Message: "Status conflict",
		Detail:  detail,
	}
}

func NewValidationError(detail string) *CustomError {
	return &CustomError{
		Kind:    KindValidation,
		Code:    http.StatusBadRequest,
		Message: "Validation failed",
		Detail:  detail,
	}
}

func NewUnauthorizedError(detail string) *CustomError {
	return &CustomError{
		Kind:    KindUnauthorized,
		Code:    http.StatusUnauthorized,
		Message: "Authentication required",
		Detail:  detail,
	}
}

func NewForbiddenError(detail string) *CustomError {
	return &CustomError{
		Kind:    KindForbidden,
		Code:    http.StatusForbidden,
		Message: "Access denied",
		Detail:  detail,
	}
}

// NewUpstreamError marks a failed or timed-out call to the AI backend or the
// interview agent. Extraction and matching recover from it via fallback.
func NewUpstreamError(detail string) *CustomError {
	return &CustomError{
		Kind:    KindUpstream,
		Code:    http.StatusBadGateway,
		Message: "Upstream service unavailable",
		Detail:  detail,
	}
}

func NewInternalServerError(message string) *CustomError {
	return &CustomError{
		Kind:    KindInternal,
		Code:    http.StatusInternalServerError,
		Message: message,
	}
}
