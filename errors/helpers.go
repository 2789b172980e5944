package errors

import (
	stderrors "errors"
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// GetCode extracts the ErrorCode from the outermost CodedError in err's chain.
// Returns CodeUnknown if err is nil or carries no code.
//
// Example:
//
//	if errors.GetCode(err) == errors.CodeQuotaExhausted {
//	    // surface the reset time to the caller
//	}
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	var coded CodedError
	if stderrors.As(err, &coded) {
		return coded.Code()
	}

	return CodeUnknown
}

// GetClassification extracts the classification from the outermost CodedError
// in err's chain. Returns ClassificationPermanent if err is nil or carries no
// classification, which prevents retrying unknown failures.
func GetClassification(err error) ErrorClassification {
	if err == nil {
		return ClassificationPermanent
	}

	var coded CodedError
	if stderrors.As(err, &coded) {
		return coded.Classification()
	}

	return ClassificationPermanent
}

// IsRetryable returns true if err is classified as retryable.
func IsRetryable(err error) bool {
	return GetClassification(err).IsRetryable()
}

// ContextValue returns the context field key of the outermost CodedError in
// err's chain.
func ContextValue(err error, key string) (any, bool) {
	var coded CodedError
	if !stderrors.As(err, &coded) {
		return nil, false
	}
	v, ok := coded.Context()[key]
	return v, ok
}
