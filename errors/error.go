package errors

import (
	"fmt"
	"maps"
)

// CodedError extends the standard error interface with a code, a retry
// classification and context metadata.
type CodedError interface {
	error

	// Code returns the error code identifying the type of error.
	Code() ErrorCode

	// Classification returns whether the error is retryable or permanent.
	Classification() ErrorClassification

	// Message returns the human-readable error message.
	Message() string

	// Context returns a copy of the attached metadata, or nil when none is attached.
	Context() map[string]any

	// Unwrap returns the wrapped error, or nil.
	Unwrap() error
}

// codedError is the only CodedError implementation. Values are never mutated
// after construction; every With* helper returns a fresh copy.
type codedError struct {
	code           ErrorCode
	classification ErrorClassification
	message        string
	context        map[string]any
	cause          error
}

// Error formats as "[CODE] message" or "[CODE] message: cause".
func (e *codedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.message)
}

func (e *codedError) Code() ErrorCode {
	return e.code
}

func (e *codedError) Classification() ErrorClassification {
	return e.classification
}

func (e *codedError) Message() string {
	return e.message
}

func (e *codedError) Context() map[string]any {
	if e.context == nil {
		return nil
	}
	return maps.Clone(e.context)
}

func (e *codedError) Unwrap() error {
	return e.cause
}

// New creates a CodedError with the default classification for code.
func New(code ErrorCode, message string) CodedError {
	return &codedError{
		code:           code,
		classification: getDefaultClassification(code),
		message:        message,
	}
}

// Newf creates a CodedError with a formatted message.
//
// Example:
//
//	err := errors.Newf(errors.CodeQuotaExhausted, "only %d requests left", remaining)
func Newf(code ErrorCode, format string, args ...any) CodedError {
	return New(code, fmt.Sprintf(format, args...))
}
