package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents a unique error code for categorizing errors
type ErrorCode string

const (
	// Configuration errors (1xxx)
	ErrCodeConfigNotFound ErrorCode = "CHRN1001"
	ErrCodeConfigInvalid  ErrorCode = "CHRN1002"
	ErrCodeTokenMissing   ErrorCode = "CHRN1003"

	// Repository errors (2xxx)
	ErrCodeRepoNotFound ErrorCode = "CHRN2001"
	ErrCodeGit          ErrorCode = "CHRN2002"

	// Version errors (3xxx)
	ErrCodeVersionParse ErrorCode = "CHRN3001"

	// Remote API errors (4xxx)
	ErrCodeRemoteAPI          ErrorCode = "CHRN4001"
	ErrCodeRemoteAuth         ErrorCode = "CHRN4002"
	ErrCodeRateLimited        ErrorCode = "CHRN4003"
	ErrCodeServiceUnavailable ErrorCode = "CHRN4004"
	ErrCodeResponseParsing    ErrorCode = "CHRN4005"

	// File system errors (5xxx)
	ErrCodeFileOperation ErrorCode = "CHRN5001"

	// System errors (9xxx)
	ErrCodeInternal           ErrorCode = "CHRN9001"
	ErrCodeTimeout            ErrorCode = "CHRN9002"
	ErrCodeMaxRetriesExceeded ErrorCode = "CHRN9003"
	ErrCodeUserInput          ErrorCode = "CHRN9004"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "CRITICAL" // System failure, requires immediate attention
	SeverityError    ErrorSeverity = "ERROR"    // Operation failed, but system continues
	SeverityWarning  ErrorSeverity = "WARNING"  // Operation succeeded with issues
	SeverityInfo     ErrorSeverity = "INFO"     // Informational, not an error
)

// AppError represents a structured application error with context
type AppError struct {
	Code        ErrorCode
	Message     string
	Severity    ErrorSeverity
	Context     map[string]interface{}
	Cause       error
	Timestamp   time.Time
	Recoverable bool
	Suggestions []string
}

// Error implements the error interface
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s: %s", e.Code, e.Severity, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\nCaused by: %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}

	return b.String()
}

// Unwrap returns the cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:        code,
		Message:     message,
		Severity:    SeverityError,
		Context:     make(map[string]interface{}),
		Timestamp:   time.Now(),
		Recoverable: false,
	}
}

// Wrap wraps an existing error with AppError
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	appErr := New(code, message)
	appErr.Cause = err

	// If wrapping another AppError, inherit its context
	if ae, ok := err.(*AppError); ok {
		for k, v := range ae.Context {
			appErr.Context[k] = v
		}
	}

	return appErr
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSeverity sets the error severity
func (e *AppError) WithSeverity(severity ErrorSeverity) *AppError {
	e.Severity = severity
	return e
}

// WithSuggestions adds recovery suggestions
func (e *AppError) WithSuggestions(suggestions ...string) *AppError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// AsRecoverable marks the error as recoverable
func (e *AppError) AsRecoverable() *AppError {
	e.Recoverable = true
	return e
}

// Common error constructors

// VersionParseError creates an error for a version that failed semver parsing
func VersionParseError(version string, cause error) *AppError {
	return Wrap(cause, ErrCodeVersionParse, fmt.Sprintf("failed to parse version %q", version)).
		WithContext("version", version).
		WithSuggestions(
			"Tag releases with semantic versions, optionally behind a prefix (v1.2.3, app/1.2.3)",
			"Check the tag_pattern setting if unrelated tags are being picked up",
		)
}

// ConfigError creates a configuration-related error
func ConfigError(message string, field string) *AppError {
	return New(ErrCodeConfigInvalid, message).
		WithContext("field", field).
		WithSuggestions(
			fmt.Sprintf("Check the '%s' configuration value", field),
			"Run 'chronicle init' to regenerate the configuration",
		)
}

// RemoteError creates a forge REST API error
func RemoteError(message string, cause error) *AppError {
	err := New(ErrCodeRemoteAPI, message)
	err.Cause = cause

	if strings.Contains(message, "401") || strings.Contains(message, "403") {
		err.Code = ErrCodeRemoteAuth
		_ = err.WithSuggestions(
			"Check that the forge token is valid and has read access to the repository",
			"Run 'chronicle auth set' to store a token",
		)
	} else if strings.Contains(message, "429") {
		err.Code = ErrCodeRateLimited
		_ = err.AsRecoverable()
	}

	return err
}

// IsRecoverable checks if an error is recoverable
func IsRecoverable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Recoverable
	}
	return false
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}
