package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrConflict
	ErrInvalidInterval
	ErrIntegration
	ErrInternal
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
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

// Error constructors
func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

// Conflict is returned when a booking overlaps an existing one for the
// same doctor and date.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    ErrConflict,
		Message: message,
	}
}

// InvalidInterval is returned when a booking's start time is not strictly
// before its end time.
func InvalidInterval(message string) *AppError {
	return &AppError{
		Code:    ErrInvalidInterval,
		Message: message,
	}
}

// Integration marks a cross-subsystem inconsistency, e.g. a booking with no
// matching history row. These are never swallowed.
func Integration(message string, err error) *AppError {
	return &AppError{
		Code:    ErrIntegration,
		Message: message,
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// Code extracts the ErrorCode from err, or ErrInternal if err is not an AppError.
func Code(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

func IsConflict(err error) bool {
	return Code(err) == ErrConflict
}

func IsInvalidInterval(err error) bool {
	return Code(err) == ErrInvalidInterval
}

func IsNotFound(err error) bool {
	return Code(err) == ErrNotFound
}
