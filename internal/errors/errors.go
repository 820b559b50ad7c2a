package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeAI         ErrorType = "ai"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType      `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"cause,omitempty"`
	Context map[string]any `json:"context,omitempty"`

	// Remediation is user-facing text telling the caller what to do next.
	Remediation string `json:"remediation,omitempty"`

	// Violations lists schema problems for INVALID_AI_RESPONSE errors.
	Violations []string `json:"violations,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// newAppError is an unexported helper to create AppError instances
func newAppError(typ ErrorType, code, message string, cause error) *AppError {
	return &AppError{
		Type:    typ,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Error constructors for different types
func NewValidationError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, code, message, cause)
}

func NewIOError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeIO, code, message, cause)
}

func NewAIError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeAI, code, message, cause)
}

func NewNetworkError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeNetwork, code, message, cause)
}

func NewConfigError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeConfig, code, message, cause)
}

func NewInternalError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, code, message, cause)
}

// WithContext adds context to an error
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithRemediation attaches user-facing guidance to an error
func (e *AppError) WithRemediation(text string) *AppError {
	e.Remediation = text
	return e
}

// WithViolations attaches schema violations to an error
func (e *AppError) WithViolations(violations []string) *AppError {
	e.Violations = append([]string(nil), violations...)
	return e
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether any AppError in err's chain carries code.
func HasCode(err error, code string) bool {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// RemediationOf returns the first non-empty remediation text in err's chain.
func RemediationOf(err error) string {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return ""
		}
		if appErr.Remediation != "" {
			return appErr.Remediation
		}
		err = appErr.Cause
	}
	return ""
}

// HasRemediation reports whether err already carries user-facing guidance.
func HasRemediation(err error) bool {
	return RemediationOf(err) != ""
}

// Common error codes
const (
	ErrCodeFileNotFound    = "FILE_NOT_FOUND"
	ErrCodeFileNotReadable = "FILE_NOT_READABLE"
	ErrCodeInvalidFormat   = "INVALID_FORMAT"
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeNetworkTimeout  = "NETWORK_TIMEOUT"
	ErrCodeInvalidConfig   = "INVALID_CONFIG"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeInternal        = "INTERNAL"
)

// Pipeline error codes surfaced to API callers
const (
	ErrCodeInvalidURL           = "INVALID_URL"
	ErrCodeUnsupportedFileType  = "UNSUPPORTED_FILE_TYPE"
	ErrCodeFileTooLarge         = "FILE_TOO_LARGE"
	ErrCodeFetchFailed          = "FETCH_FAILED"
	ErrCodeLoginRequired        = "LOGIN_REQUIRED"
	ErrCodeInsufficientText     = "INSUFFICIENT_TEXT"
	ErrCodeAITimeout            = "AI_TIMEOUT"
	ErrCodeInvalidAIResponse    = "INVALID_AI_RESPONSE"
	ErrCodeAIServiceUnavailable = "AI_SERVICE_UNAVAILABLE"
	ErrCodeRateLimitExceeded    = "RATE_LIMIT_EXCEEDED"
)
