package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrQueueClosed        = errors.New("job queue closed")
	ErrInvalidExecContext = errors.New("invalid query executor context")
)

// ErrorCode is the closed set of failure kinds shared by every layer.
type ErrorCode string

const (
	CodeAIServiceUnavailable ErrorCode = "AI_SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeAPIConfiguration     ErrorCode = "API_CONFIGURATION_ERROR"
	CodeInvalidAIResponse    ErrorCode = "INVALID_AI_RESPONSE"
	CodeAllProvidersFailed   ErrorCode = "ALL_PROVIDERS_FAILED"
	CodeDatabaseOperation    ErrorCode = "DATABASE_OPERATION_FAILED"
	CodeResourceNotFound     ErrorCode = "RESOURCE_NOT_FOUND"
)

// ProviderAttempt records one failed upstream provider in attempt order.
type ProviderAttempt struct {
	Provider string
	Err      error
}

// Error is a classified failure carrying a stable code plus optional
// structured context. Attempts is populated only for CodeAllProvidersFailed.
type Error struct {
	Code     ErrorCode
	Message  string
	Context  map[string]any
	Attempts []ProviderAttempt
	cause    error
}

func (e *Error) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Provider, a.Err))
	}
	return fmt.Sprintf("%s: %s [%s]", e.Code, e.Message, strings.Join(parts, "; "))
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets errors.Is match on any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func NewError(code ErrorCode, msg string, cause error) *Error {
	return &Error{Code: code, Message: msg, cause: cause}
}

func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = map[string]any{}
	}
	e.Context[key] = value
	return e
}

// NewAllProvidersFailed aggregates the ordered per-provider failures after
// every configured provider has been tried.
func NewAllProvidersFailed(attempts []ProviderAttempt) *Error {
	return &Error{
		Code:     CodeAllProvidersFailed,
		Message:  fmt.Sprintf("all %d providers failed", len(attempts)),
		Attempts: attempts,
	}
}

// CodeOf extracts the taxonomy code from err, or "" when err carries none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
