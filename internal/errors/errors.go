package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a dashboard error code.
type ErrorCode string

const (
	ErrValidation     ErrorCode = "VALIDATION_ERROR" // 400
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"  // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"        // 404
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"   // 404
	ErrStorage        ErrorCode = "STORAGE_ERROR"    // 500
	ErrInternal       ErrorCode = "INTERNAL"         // 500
)

// DashError represents a structured error with code, status, and details.
type DashError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	// cause is the underlying failure for 5xx errors. It is reported as
	// diagnostic detail and never shown for 4xx errors.
	cause error
}

// Error implements the error interface.
func (e *DashError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *DashError) Unwrap() error {
	return e.cause
}

// Diagnostic returns the underlying cause message for server-side failures.
// Client errors (4xx) return an empty string.
func (e *DashError) Diagnostic() string {
	if e.Status < 500 {
		return ""
	}
	if e.cause != nil {
		return e.cause.Error()
	}
	return e.Message
}

// NewValidation creates a 400 error for a draft or patch missing required fields
// or carrying out-of-range values.
func NewValidation(msg string, fields ...string) *DashError {
	err := &DashError{
		Code:    ErrValidation,
		Status:  400,
		Message: msg,
	}
	if len(fields) > 0 {
		err.Details = map[string]any{"fields": fields}
	}
	return err
}

// NewInvalidRequest creates a 400 error for malformed request parameters.
func NewInvalidRequest(msg string) *DashError {
	return &DashError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for an id absent from its collection.
// label is the human name of the record kind, e.g. "Excel sheet".
func NewNotFound(label, id string) *DashError {
	return &DashError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found", label),
		Details: map[string]any{"id": id},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *DashError {
	return &DashError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewStorage creates a 500 error for a failed read or write of the storage medium.
func NewStorage(msg string, err error) *DashError {
	return &DashError{
		Code:    ErrStorage,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *DashError {
	return &DashError{
		Code:    ErrInternal,
		Status:  500,
		Message: "internal error",
		cause:   err,
	}
}

// As returns err as a *DashError, wrapping unknown errors as internal.
func As(err error) *DashError {
	var dErr *DashError
	if stderrors.As(err, &dErr) {
		return dErr
	}
	return NewInternal(err)
}

// Is checks if an error is a DashError with the given code.
func Is(err error, code ErrorCode) bool {
	var dErr *DashError
	if stderrors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
