package errors

import (
	"encoding/json"
)

// ErrorResponse is the flat JSON representation of an error returned by the
// HTTP handlers. The wrapped chain is not included.
type ErrorResponse struct {
	// Code is the error code identifying the type of error.
	Code string `json:"code"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Classification indicates whether the error is retryable or permanent.
	Classification string `json:"classification"`

	// Context contains optional metadata about the error.
	Context map[string]any `json:"context,omitempty"`
}

// ToJSON converts any error to an ErrorResponse.
// Returns nil if err is nil.
//
// Errors without a code are reported as CodeUnknown with their Error() text.
//
// Example:
//
//	func writeError(w http.ResponseWriter, err error) {
//	    w.Header().Set("Content-Type", "application/json")
//	    w.WriteHeader(errors.HTTPStatus(errors.GetCode(err)))
//	    _ = json.NewEncoder(w).Encode(errors.ToJSON(err))
//	}
func ToJSON(err error) *ErrorResponse {
	if err == nil {
		return nil
	}

	message := err.Error()
	var context map[string]any

	var coded CodedError
	if As(err, &coded) {
		message = coded.Message()
		context = coded.Context()
	}

	return &ErrorResponse{
		Code:           string(GetCode(err)),
		Message:        message,
		Classification: string(GetClassification(err)),
		Context:        context,
	}
}

// MarshalJSON lets a CodedError be embedded directly in JSON responses.
func (e *codedError) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(&ErrorResponse{
		Code:           string(e.code),
		Message:        e.message,
		Classification: string(e.classification),
		Context:        e.context,
	})
	if err != nil {
		return nil, Wrap(err, CodeInternal, "failed to marshal error response")
	}
	return data, nil
}
