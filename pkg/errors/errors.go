package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors - fatal, never retried
	ErrConfigLoad          ErrorCode = "CONFIG_LOAD"
	ErrConfigParse         ErrorCode = "CONFIG_PARSE"
	ErrConfigInvalid       ErrorCode = "CONFIG_INVALID"
	ErrNameInvalid         ErrorCode = "NAME_INVALID"
	ErrLatestOverHTTP      ErrorCode = "LATEST_OVER_HTTP"
	ErrSourceNotFound      ErrorCode = "SOURCE_NOT_FOUND"
	ErrArchiveUnsupported  ErrorCode = "ARCHIVE_UNSUPPORTED"
	ErrLatestUnresolvable  ErrorCode = "LATEST_UNRESOLVABLE"

	// Fetch errors - fatal for the current run
	ErrFetchFailed      ErrorCode = "FETCH_FAILED"
	ErrChecksumMismatch ErrorCode = "CHECKSUM_MISMATCH"

	// Lifecycle errors - fatal for the current run
	ErrExtractFailed ErrorCode = "EXTRACT_FAILED"
	ErrHookFailed    ErrorCode = "HOOK_FAILED"
	ErrOwnershipSet  ErrorCode = "OWNERSHIP_SET"

	// Manifest errors
	ErrManifestGenerate ErrorCode = "MANIFEST_GENERATE"
	ErrManifestParse    ErrorCode = "MANIFEST_PARSE"
	ErrManifestWrite    ErrorCode = "MANIFEST_WRITE"

	// FileSystem errors
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrFileCreate    ErrorCode = "FILE_CREATE"
	ErrFileWrite     ErrorCode = "FILE_WRITE"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
	ErrDirCreate     ErrorCode = "DIR_CREATE"
)

// StagehandError represents a structured error with code and details
type StagehandError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *StagehandError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *StagehandError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *StagehandError) Is(target error) bool {
	var targetErr *StagehandError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new StagehandError with the given code and message
func New(code ErrorCode, message string) *StagehandError {
	return &StagehandError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new StagehandError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *StagehandError {
	return &StagehandError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a StagehandError
func Wrap(err error, code ErrorCode, message string) *StagehandError {
	if err == nil {
		return nil
	}
	return &StagehandError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *StagehandError {
	if err == nil {
		return nil
	}
	return &StagehandError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *StagehandError) WithDetail(key string, value interface{}) *StagehandError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var shErr *StagehandError
	if errors.As(err, &shErr) {
		return shErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a StagehandError
func GetErrorCode(err error) ErrorCode {
	var shErr *StagehandError
	if errors.As(err, &shErr) {
		return shErr.Code
	}
	return ErrUnknown
}
