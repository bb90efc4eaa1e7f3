package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes, grouped by the failure category they belong to
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Missing input
	ErrMissingInput ErrorCode = "MISSING_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// I/O failures
	ErrIO           ErrorCode = "IO"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
	ErrFileCopy     ErrorCode = "FILE_COPY"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrArchiveWrite ErrorCode = "ARCHIVE_WRITE"

	// External process failures
	ErrSignerNotFound      ErrorCode = "SIGNER_NOT_FOUND"
	ErrSignerFailed        ErrorCode = "SIGNER_FAILED"
	ErrSignerOutputMissing ErrorCode = "SIGNER_OUTPUT_MISSING"
)

// Category groups error codes into the failure classes the build reports on.
type Category string

const (
	CategoryMissingInput    Category = "missing-input"
	CategoryIO              Category = "io"
	CategoryExternalProcess Category = "external-process"
	CategoryConfig          Category = "config"
	CategoryOther           Category = "other"
)

// CategoryOf maps an error code onto its failure category
func CategoryOf(code ErrorCode) Category {
	switch code {
	case ErrMissingInput, ErrNotFound:
		return CategoryMissingInput
	case ErrIO, ErrDirCreate, ErrFileCopy, ErrFileWrite, ErrArchiveWrite:
		return CategoryIO
	case ErrSignerNotFound, ErrSignerFailed, ErrSignerOutputMissing:
		return CategoryExternalProcess
	case ErrConfigLoad, ErrConfigParse:
		return CategoryConfig
	default:
		return CategoryOther
	}
}

// KsmmError represents a structured error with code and details
type KsmmError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *KsmmError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *KsmmError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a KsmmError carrying the same code
func (e *KsmmError) Is(target error) bool {
	var targetErr *KsmmError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new KsmmError with the given code and message
func New(code ErrorCode, message string) *KsmmError {
	return &KsmmError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new KsmmError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *KsmmError {
	return &KsmmError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a KsmmError
func Wrap(err error, code ErrorCode, message string) *KsmmError {
	if err == nil {
		return nil
	}
	return &KsmmError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *KsmmError {
	if err == nil {
		return nil
	}
	return &KsmmError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *KsmmError) WithDetail(key string, value interface{}) *KsmmError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var ksmmErr *KsmmError
	if errors.As(err, &ksmmErr) {
		return ksmmErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a KsmmError
func GetErrorCode(err error) ErrorCode {
	var ksmmErr *KsmmError
	if errors.As(err, &ksmmErr) {
		return ksmmErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a KsmmError
func GetErrorDetails(err error) map[string]interface{} {
	var ksmmErr *KsmmError
	if errors.As(err, &ksmmErr) {
		return ksmmErr.Details
	}
	return nil
}
