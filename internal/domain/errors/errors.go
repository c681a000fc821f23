package errors

import (
	"net/http"

	"atelier/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// Predefined error types.
//
// The three token-lifecycle errors are expected user-facing outcomes and keep
// stable business codes: the client maps each one to a distinct retry
// affordance. They must never collapse into a generic failure.
var (
	// Token lifecycle errors
	ErrInvalidToken = NewBaseError(
		http.StatusNotFound,
		"INVALID_TOKEN",
		"This link is not valid. Request a new one to continue.",
		"",
	)

	ErrTokenExpired = NewBaseError(
		http.StatusGone,
		"TOKEN_EXPIRED",
		"This link has expired. Request a new one to continue.",
		"",
	)

	ErrTokenAlreadyUsed = NewBaseError(
		http.StatusConflict,
		"TOKEN_ALREADY_USED",
		"This link was already used, possibly on another device.",
		"",
	)

	// Account precondition errors
	ErrUserExists = NewBaseError(
		http.StatusConflict,
		"USER_EXISTS",
		"An account already exists for this email. Try signing in instead.",
		"",
	)

	ErrUserNotFound = NewBaseError(
		http.StatusNotFound,
		"USER_NOT_FOUND",
		"No account exists for this email. Try registering instead.",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"The request input is invalid.",
		"",
	)

	// Identity provider errors
	ErrSessionMintFailed = NewBaseError(
		http.StatusInternalServerError,
		"SESSION_MINT_FAILED",
		"Could not establish a session. Please try again.",
		"",
	)

	// General errors
	ErrUnauthorized = NewBaseError(
		http.StatusUnauthorized,
		"UNAUTHORIZED",
		"Access denied.",
		"",
	)

	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Something went wrong. Please try again.",
		"",
	)
)

// StorageError represents a token or profile store failure. The underlying
// cause is logged server-side; clients only see the generic message.
type StorageError struct {
	err     error
	details string
}

// NewStorageError creates a storage-related error
func NewStorageError(err error, details string) AppError {
	return &StorageError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *StorageError) Error() string {
	return errors.Wrap(e.err, "storage operation failed").Error()
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *StorageError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *StorageError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *StorageError) ErrorCode() string {
	return "STORAGE_FAILED"
}

// Message returns the user-friendly error message
func (e *StorageError) Message() string {
	return "Something went wrong. Please try again."
}

// Details returns detailed error information
func (e *StorageError) Details() string {
	return e.details
}
