// Package errors provides the error taxonomy and exit codes for the bluesnow CLI.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Exit codes.
const (
	ExitSuccess            = 0
	ExitGeneralError       = 1
	ExitConfigurationError = 2
	ExitDependencyError    = 3
	ExitFilesystemError    = 4
	ExitNotFound           = 5
)

// DetailError captures structured error information.
type DetailError struct {
	// Type is the error category (required).
	Type string

	// Message is the specific description (required).
	Message string

	// Location is the file path the error relates to (optional).
	Location string

	// Hint provides actionable guidance (optional).
	Hint string

	// Cause is the underlying error (optional).
	Cause error
}

// Error implements the error interface.
func (e *DetailError) Error() string {
	var b strings.Builder

	b.WriteString(e.Type)
	if e.Location != "" {
		b.WriteString(" (")
		b.WriteString(e.Location)
		b.WriteString(")")
	}
	b.WriteString(": ")
	b.WriteString(e.Message)

	if e.Hint != "" {
		b.WriteString("\nHint: ")
		b.WriteString(e.Hint)
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *DetailError) Unwrap() error {
	return e.Cause
}

// NewFilesystemError reports a failed filesystem operation on path.
func NewFilesystemError(op, path string, err error) error {
	detail := &DetailError{
		Type:     "filesystem error",
		Message:  op,
		Location: path,
		Cause:    ErrFilesystem,
	}
	if err != nil {
		detail.Message = fmt.Sprintf("%s: %v", op, err)
		detail.Cause = fmt.Errorf("%w: %w", ErrFilesystem, err)
	}
	return detail
}

// NewDependencyInstallError reports a failed dependency materialization.
func NewDependencyInstallError(message string, err error) error {
	detail := &DetailError{
		Type:    "dependency install failed",
		Message: message,
		Hint:    "Check the dependency sources and pip arguments, or re-run with --verbose.",
		Cause:   ErrDependencyInstall,
	}
	if err != nil {
		detail.Cause = fmt.Errorf("%w: %w", ErrDependencyInstall, err)
	}
	return detail
}

// NewCompressionError reports misuse of a streaming compressor.
func NewCompressionError(message string) error {
	return &DetailError{
		Type:    "compression error",
		Message: message,
		Cause:   ErrCompression,
	}
}

// NewConfigurationError reports invalid user input.
func NewConfigurationError(message, hint string) error {
	return &DetailError{
		Type:    "configuration error",
		Message: message,
		Hint:    hint,
		Cause:   ErrConfiguration,
	}
}

// ExitError wraps an error with an exit code.
type ExitError struct {
	Err  error
	Code int

	// Printed is set when the command layer already reported the error.
	Printed bool
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// ExitCodeFromError determines the appropriate exit code for an error.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch {
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrValidation):
		return ExitConfigurationError
	case errors.Is(err, ErrDependencyInstall):
		return ExitDependencyError
	case errors.Is(err, ErrFilesystem):
		return ExitFilesystemError
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	default:
		return ExitGeneralError
	}
}
