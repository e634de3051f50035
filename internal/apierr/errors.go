// Package apierr gives cmd/fpserver's HTTP handlers a uniform error
// shape, trimmed from the teacher's internal/errors to five codes:
// page/record lookups, malformed requests, record-validation failures,
// storage faults, and page conflicts. The handlers return only the
// bad-request, validation and internal-error codes.
package apierr

import "fmt"

// APIError is a standardized error response.
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Status  int       `json:"-"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NotFound creates a NOT_FOUND error, e.g. a missing page or record.
func NotFound(resource string) *APIError {
	return &APIError{Code: ErrNotFound, Message: fmt.Sprintf("%s not found", resource), Status: ErrNotFound.StatusCode()}
}

// BadRequest creates a BAD_REQUEST error for malformed request bodies.
func BadRequest(message string) *APIError {
	return &APIError{Code: ErrBadRequest, Message: message, Status: ErrBadRequest.StatusCode()}
}

// ValidationError creates a VALIDATION_ERROR for a record that fails
// fingerprint.Record.Validate, tagging the offending field when known.
func ValidationError(field, message string) *APIError {
	return &APIError{Code: ErrValidation, Message: message, Field: field, Status: ErrValidation.StatusCode()}
}

// InternalError creates an INTERNAL_ERROR for store/cache faults.
func InternalError(message string) *APIError {
	return &APIError{Code: ErrInternalError, Message: message, Status: ErrInternalError.StatusCode()}
}

// Conflict creates a CONFLICT error, e.g. a page write race lost to
// another inserter.
func Conflict(resource string) *APIError {
	return &APIError{Code: ErrConflict, Message: fmt.Sprintf("%s is in a conflicting state", resource), Status: ErrConflict.StatusCode()}
}
