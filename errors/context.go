package errors

import "maps"

// WithContext returns a copy of err with one context field added.
// Existing fields are preserved.
//
// If err is not a CodedError, it is converted to one with CodeUnknown.
// Returns nil if err is nil.
//
// Example:
//
//	err := errors.New(errors.CodeRateLimit, "rate limited")
//	err = errors.WithContext(err, "retry_after", retryAfter.String())
func WithContext(err error, key string, value any) CodedError {
	if err == nil {
		return nil
	}

	base := asCoded(err)
	ctx := base.Context()
	if ctx == nil {
		ctx = make(map[string]any, 1)
	}
	ctx[key] = value

	return &codedError{
		code:           base.Code(),
		classification: base.Classification(),
		message:        base.Message(),
		context:        ctx,
		cause:          base.Unwrap(),
	}
}

// WithContextMap returns a copy of err with the fields of ctx merged in.
// New fields override existing ones with the same key.
//
// If err is not a CodedError, it is converted to one with CodeUnknown.
// Returns nil if err is nil.
func WithContextMap(err error, ctx map[string]any) CodedError {
	if err == nil {
		return nil
	}

	base := asCoded(err)
	merged := base.Context()
	if merged == nil {
		merged = make(map[string]any, len(ctx))
	}
	maps.Copy(merged, ctx)

	return &codedError{
		code:           base.Code(),
		classification: base.Classification(),
		message:        base.Message(),
		context:        merged,
		cause:          base.Unwrap(),
	}
}

// WithClassification returns a copy of err with its classification overridden.
//
// If err is not a CodedError, it is converted to one with CodeUnknown.
// Returns nil if err is nil.
func WithClassification(err error, classification ErrorClassification) CodedError {
	if err == nil {
		return nil
	}

	base := asCoded(err)
	return &codedError{
		code:           base.Code(),
		classification: classification,
		message:        base.Message(),
		context:        base.Context(),
		cause:          base.Unwrap(),
	}
}

// asCoded returns the outermost CodedError in err's chain, or converts err
// into an unknown, permanent one wrapping it.
func asCoded(err error) CodedError {
	var coded CodedError
	if As(err, &coded) {
		return coded
	}
	return &codedError{
		code:           CodeUnknown,
		classification: ClassificationPermanent,
		message:        err.Error(),
		cause:          err,
	}
}
