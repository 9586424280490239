package domain

import (
	"errors"
	"fmt"
)

// ErrorType tags domain-specific errors by failure class.
type ErrorType string

const (
	ErrorTypeExtraction ErrorType = "extraction"
	ErrorTypeModel      ErrorType = "model"
	ErrorTypeFormat     ErrorType = "format"
	ErrorTypePipeline   ErrorType = "pipeline"
	ErrorTypeCache      ErrorType = "cache"
)

// DomainError represents a domain-specific error with context.
// Attempts and Status are populated for model errors so callers can see
// how many completion calls were issued and what the upstream replied.
type DomainError struct {
	Type     ErrorType
	Message  string
	Err      error
	Attempts int
	Status   int
}

func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type, e.Message)
	if e.Attempts > 0 {
		msg += fmt.Sprintf(" (attempts=%d, status=%d)", e.Attempts, e.Status)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error.
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// ExtractionError marks an unreadable or unsupported source. Fatal, no fallback.
func ExtractionError(message string, err error) *DomainError {
	return NewError(ErrorTypeExtraction, message, err)
}

// ModelError marks a completion boundary failure. attempts is the number of
// calls issued before giving up; status is the last upstream HTTP status.
func ModelError(message string, err error, attempts, status int) *DomainError {
	e := NewError(ErrorTypeModel, message, err)
	e.Attempts = attempts
	e.Status = status
	return e
}

// FormatError marks model output that could not be coerced to the expected shape.
func FormatError(message string, err error) *DomainError {
	return NewError(ErrorTypeFormat, message, err)
}

// PipelineError marks an unexpected orchestration failure.
func PipelineError(message string, err error) *DomainError {
	return NewError(ErrorTypePipeline, message, err)
}

// CacheError marks a cache read/write failure. Logged by callers, never propagated.
func CacheError(message string, err error) *DomainError {
	return NewError(ErrorTypeCache, message, err)
}

// IsErrorType reports whether err is a DomainError of the given type.
func IsErrorType(err error, t ErrorType) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type == t
	}
	return false
}
