package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"
	// ErrorTypeBadRequest indicates a bad request
	ErrorTypeBadRequest ErrorType = "BAD_REQUEST"
	// ErrorTypeConflict indicates a conflict
	ErrorTypeConflict ErrorType = "CONFLICT"
	// ErrorTypeInternal indicates an internal error
	ErrorTypeInternal ErrorType = "INTERNAL"
	// ErrorTypeConfig indicates missing or invalid configuration
	ErrorTypeConfig ErrorType = "CONFIG"
	// ErrorTypeInvalidData indicates source data that cannot be imported
	ErrorTypeInvalidData ErrorType = "INVALID_DATA"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error returns the error message
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new application error
func New(errorType ErrorType, message string) error {
	return &AppError{
		Type:    errorType,
		Message: message,
	}
}

// Wrap wraps an error with an application error
func Wrap(errorType ErrorType, message string, err error) error {
	return &AppError{
		Type:    errorType,
		Message: message,
		Err:     err,
	}
}

// NotFound creates a not found error
func NotFound(message string) error {
	return New(ErrorTypeNotFound, message)
}

// BadRequest creates a bad request error
func BadRequest(message string) error {
	return New(ErrorTypeBadRequest, message)
}

// Conflict creates a conflict error
func Conflict(message string) error {
	return New(ErrorTypeConflict, message)
}

// Internal creates an internal error
func Internal(message string) error {
	return New(ErrorTypeInternal, message)
}

// Config creates a configuration error
func Config(message string) error {
	return New(ErrorTypeConfig, message)
}

// InvalidData creates an invalid source data error
func InvalidData(message string) error {
	return New(ErrorTypeInvalidData, message)
}

// TypeOf returns the ErrorType of err, or ErrorTypeInternal when err is not an AppError.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsBadRequest checks if an error is a bad request error
func IsBadRequest(err error) bool {
	return isType(err, ErrorTypeBadRequest)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	return isType(err, ErrorTypeConflict)
}

// IsInternal checks if an error is an internal error
func IsInternal(err error) bool {
	return isType(err, ErrorTypeInternal)
}

// IsConfig checks if an error is a configuration error
func IsConfig(err error) bool {
	return isType(err, ErrorTypeConfig)
}

// IsInvalidData checks if an error is an invalid data error
func IsInvalidData(err error) bool {
	return isType(err, ErrorTypeInvalidData)
}

// IsDuplicateError checks if an error is a duplicate key error
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "UNIQUE constraint") ||
		strings.Contains(errStr, "duplicate entry")
}

// IsForeignKeyError checks if an error is a foreign key violation
func IsForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "violates foreign key constraint") ||
		strings.Contains(errStr, "FOREIGN KEY constraint failed")
}
