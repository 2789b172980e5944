package errors

// ErrorCode represents a specific error condition.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Remote resource errors.

	// CodeNotFound indicates the remote resource does not exist or is not visible
	// with the supplied credential.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeUnauthorized indicates the credential was rejected.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// CodeForbidden indicates the credential lacks access to the resource.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// Quota errors.

	// CodeRateLimit indicates the remote API rejected a request for quota reasons.
	CodeRateLimit ErrorCode = "RATE_LIMIT_EXCEEDED"

	// CodeQuotaExhausted indicates the remaining quota is at or below the safety
	// threshold and work was refused before any request was issued.
	CodeQuotaExhausted ErrorCode = "QUOTA_EXHAUSTED"

	// Transport errors.

	// CodeNetwork indicates a connection failure or an unexpected non-200 status.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeTimeout indicates a request exceeded its deadline.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeUnavailable indicates a dependency could not be reached at all.
	CodeUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// Payload errors.

	// CodeInvalidResponse indicates a response body could not be decoded.
	CodeInvalidResponse ErrorCode = "INVALID_RESPONSE"

	// Caller errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// System errors.

	// CodeInternal indicates an internal error occurred.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)
