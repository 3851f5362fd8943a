// Package errors provides structured error types for Workdeck with
// error codes, categories, and wrapping support. All failures that cross
// package boundaries are expressed as *AppError so that call sites can
// branch on code rather than on message text.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeCapacity   ErrorType = "capacity"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeLifecycle  ErrorType = "lifecycle"
	ErrorTypeInternal   ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeInvalidPattern     = "ERR_INVALID_PATTERN"
	ErrCodeCapacityExceeded   = "ERR_CAPACITY_EXCEEDED"
	ErrCodeLoopStopped        = "ERR_LOOP_STOPPED"
	ErrCodeConfigInvalid      = "ERR_CONFIG_INVALID"
	ErrCodeImportUnsupported  = "ERR_IMPORT_UNSUPPORTED"
	ErrCodeWorkspaceNotFound  = "ERR_WORKSPACE_NOT_FOUND"
	ErrCodeWorkspaceDuplicate = "ERR_WORKSPACE_DUPLICATE"
	ErrCodeInvalidPath        = "ERR_INVALID_PATH"
	ErrCodeInternalError      = "ERR_INTERNAL"
)

// AppError is a structured error type with context.
type AppError struct {
	Type      ErrorType
	Code      string
	Message   string
	Cause     error
	Component string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Component != "" {
		parts = append(parts, "component:"+e.Component)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithComponent adds component context.
func (e *AppError) WithComponent(component string) *AppError {
	e.Component = component

	return e
}

// Error creation functions

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewCapacityError creates a capacity error.
func NewCapacityError(code, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeCapacity,
		Code:    code,
		Message: message,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewLifecycleError creates a workspace/loop lifecycle error.
func NewLifecycleError(code, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeLifecycle,
		Code:    code,
		Message: message,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Helper constructors for common domain errors

// ErrInvalidPattern signals a redaction pattern that does not compile.
func ErrInvalidPattern(pattern string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Code:    ErrCodeInvalidPattern,
		Message: "invalid redaction pattern: " + pattern,
		Cause:   cause,
	}
}

// ErrCapacityExceeded signals an add beyond the workspace maximum.
func ErrCapacityExceeded(limit int) *AppError {
	return NewCapacityError(
		ErrCodeCapacityExceeded,
		fmt.Sprintf("workspace limit of %d reached", limit),
	)
}

// ErrLoopStopped signals a post to a dispatch loop that has shut down.
func ErrLoopStopped() *AppError {
	return NewLifecycleError(ErrCodeLoopStopped, "dispatch loop is stopped")
}

// ErrWorkspaceDuplicate signals an add of a workspace already registered.
func ErrWorkspaceDuplicate(title string) *AppError {
	return NewValidationError(
		ErrCodeWorkspaceDuplicate,
		"workspace already registered: "+title,
	)
}

// ErrImportUnsupported signals a file the importer registry cannot handle.
func ErrImportUnsupported(ext string) *AppError {
	return NewValidationError(
		ErrCodeImportUnsupported,
		"no importer registered for extension: "+ext,
	)
}

// Predicates for call sites

// IsInvalidPattern checks for the invalid pattern code.
func IsInvalidPattern(err error) bool {
	return hasCode(err, ErrCodeInvalidPattern)
}

// IsCapacityExceeded checks for the capacity exceeded code.
func IsCapacityExceeded(err error) bool {
	return hasCode(err, ErrCodeCapacityExceeded)
}

// IsLoopStopped checks for the loop stopped code.
func IsLoopStopped(err error) bool {
	return hasCode(err, ErrCodeLoopStopped)
}

// IsWorkspaceDuplicate checks for the duplicate workspace code.
func IsWorkspaceDuplicate(err error) bool {
	return hasCode(err, ErrCodeWorkspaceDuplicate)
}

// IsImportUnsupported checks for the unsupported import code.
func IsImportUnsupported(err error) bool {
	return hasCode(err, ErrCodeImportUnsupported)
}

func hasCode(err error, code string) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code == code
	}

	return false
}
