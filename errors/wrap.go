package errors

import (
	"fmt"
	"maps"
)

// Wrap wraps err with a code and message while preserving the original error.
//
// If err already carries a CodedError, its classification is preserved.
// Otherwise the default classification for code is used.
//
// Returns nil if err is nil.
//
// Example:
//
//	if err := json.Unmarshal(payload, &repo); err != nil {
//	    return errors.Wrap(err, errors.CodeInvalidResponse, "failed to decode repository")
//	}
func Wrap(err error, code ErrorCode, message string) CodedError {
	if err == nil {
		return nil
	}

	return &codedError{
		code:           code,
		classification: inheritedClassification(err, code),
		message:        message,
		cause:          err,
	}
}

// Wrapf wraps err with a formatted message.
//
// Returns nil if err is nil.
func Wrapf(err error, code ErrorCode, format string, args ...any) CodedError {
	if err == nil {
		return nil
	}

	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WrapWithContext wraps err and attaches context metadata in one step.
// The context map is copied.
//
// Returns nil if err is nil.
//
// Example:
//
//	return errors.WrapWithContext(err, errors.CodeNetwork, "request failed", map[string]any{
//	    "url":    req.URL,
//	    "status": status,
//	})
func WrapWithContext(err error, code ErrorCode, message string, ctx map[string]any) CodedError {
	if err == nil {
		return nil
	}

	return &codedError{
		code:           code,
		classification: inheritedClassification(err, code),
		message:        message,
		context:        maps.Clone(ctx),
		cause:          err,
	}
}

func inheritedClassification(err error, code ErrorCode) ErrorClassification {
	var coded CodedError
	if As(err, &coded) {
		return coded.Classification()
	}
	return getDefaultClassification(code)
}
