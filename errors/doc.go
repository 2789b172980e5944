// Package errors provides the structured error type used across repohealth.
//
// Every failure produced by the data-access layer carries an error code, a
// retry classification and optional context metadata (URL, HTTP status,
// attempt count, reset time). The package stays compatible with the standard
// library: errors.Is, errors.As and errors.Unwrap traverse wrapped chains.
//
// # Quick Start
//
// Creating errors:
//
//	err := errors.New(errors.CodeNotFound, "repository not found")
//	err := errors.Newf(errors.CodeQuotaExhausted, "only %d requests left", remaining)
//
// Wrapping errors:
//
//	resp, err := client.Do(ctx, req, &payload)
//	if err != nil {
//	    return errors.Wrap(err, errors.CodeNetwork, "request failed")
//	}
//
// Adding context:
//
//	err = errors.WithContext(err, "url", req.URL.String())
//	err = errors.WithContext(err, "status", resp.StatusCode)
//
// # Error Codes
//
//   - Remote resource errors: CodeNotFound, CodeUnauthorized, CodeForbidden
//   - Quota errors: CodeRateLimit (remote rejected a call), CodeQuotaExhausted (refused locally)
//   - Transport errors: CodeNetwork, CodeTimeout, CodeUnavailable
//   - Payload errors: CodeInvalidResponse
//   - Caller errors: CodeInvalidInput, CodeInvalidConfig
//   - System errors: CodeInternal, CodeUnknown
//
// # Error Classification
//
// Each code maps to a default classification. Retryable codes describe
// failures that may clear on their own (network, timeout, remote rate limit);
// permanent codes will not succeed on an identical retry. Wrapping preserves
// the classification of the innermost coded error; WithClassification
// overrides it.
//
// # HTTP Surface
//
// ToJSON flattens any error into an ErrorResponse without exposing the wrapped
// chain, and HTTPStatus maps a code onto the response status used by the
// JSON handlers.
package errors
