package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a timecapsule error code.
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"   // 400
	ErrNotFound        ErrorCode = "NOT_FOUND"         // 404
	ErrMessageTooLarge ErrorCode = "MESSAGE_TOO_LARGE" // 413
	ErrInvalidOpenDate ErrorCode = "INVALID_OPEN_DATE" // 500, stored date cannot be parsed
	ErrInternal        ErrorCode = "INTERNAL"          // 500
)

// CapsuleError represents a structured error with code, status, and details.
type CapsuleError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *CapsuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *CapsuleError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *CapsuleError {
	return &CapsuleError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when no capsule carries the given id.
func NewNotFound(id string) *CapsuleError {
	return &CapsuleError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("capsule not found: %s", id),
		Details: map[string]any{"capsule_id": id},
	}
}

// NewMessageTooLarge creates a 413 error when a message exceeds the configured limit.
func NewMessageTooLarge(max, actual int) *CapsuleError {
	return &CapsuleError{
		Code:    ErrMessageTooLarge,
		Status:  413,
		Message: fmt.Sprintf("message exceeds maximum size: %d chars (max %d)", actual, max),
		Details: map[string]any{"max_chars": max, "actual_chars": actual},
	}
}

// NewInvalidOpenDate creates a 500 error for a stored open_date that does not parse.
// Dates are not validated on store, so this surfaces on read.
func NewInvalidOpenDate(id, openDate string, err error) *CapsuleError {
	return &CapsuleError{
		Code:    ErrInvalidOpenDate,
		Status:  500,
		Message: fmt.Sprintf("capsule %s has malformed open_date %q", id, openDate),
		Details: map[string]any{"capsule_id": id, "open_date": openDate},
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *CapsuleError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &CapsuleError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// Is checks if an error is, or wraps, a CapsuleError with the given code.
func Is(err error, code ErrorCode) bool {
	var cErr *CapsuleError
	if stderrors.As(err, &cErr) {
		return cErr.Code == code
	}
	return false
}

// As returns the CapsuleError in err's chain, wrapping anything else as internal.
func As(err error) *CapsuleError {
	var cErr *CapsuleError
	if stderrors.As(err, &cErr) {
		return cErr
	}
	return NewInternal(err)
}
