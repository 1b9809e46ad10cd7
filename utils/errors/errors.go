package errors

import (
	"fmt"
	"net/http"
)

// APIError represents a custom error type for API responses
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Details string `json:"details,omitempty"`
}

// Error returns the error message
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code, message string, status int, details ...string) *APIError {
	err := &APIError{
		Code:    code,
		Message: message,
		Status:  status,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

var (
	ErrInvalidInput    = NewAPIError("INVALID_INPUT", "Invalid request data", http.StatusBadRequest)
	ErrUnauthorized    = NewAPIError("UNAUTHORIZED", "Authentication required", http.StatusUnauthorized)
	ErrForbidden       = NewAPIError("FORBIDDEN", "You are not allowed to modify this resource", http.StatusForbidden)
	ErrNotFound        = NewAPIError("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrInternal        = NewAPIError("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)
	ErrConflict        = NewAPIError("CONFLICT", "Resource conflict", http.StatusConflict)
	ErrPayloadTooLarge = NewAPIError("PAYLOAD_TOO_LARGE", "Uploaded file is too large", http.StatusRequestEntityTooLarge)
)

// Wrap returns err unchanged when it already is an *APIError, otherwise it
// builds a new one carrying err's text as details.
func Wrap(err error, code, message string, status int) *APIError {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr
	}
	if err == nil {
		return NewAPIError(code, message, status)
	}
	return NewAPIError(code, message, status, err.Error())
}

// Invalid is a 400 with a caller-facing message.
func Invalid(code, message string) *APIError {
	return NewAPIError(code, message, http.StatusBadRequest)
}

// Internal is a 500 whose details are logged but never sent to clients.
func Internal(err error, code string) *APIError {
	return Wrap(err, code, ErrInternal.Message, http.StatusInternalServerError)
}

// NotFound is a 404 naming the missing resource.
func NotFound(what string) *APIError {
	return NewAPIError("NOT_FOUND", what+" not found", http.StatusNotFound)
}
