package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToJSON(t *testing.T) {
	t.Run("coded error", func(t *testing.T) {
		err := WithContext(New(CodeQuotaExhausted, "quota nearly exhausted"), "remaining", 5)
		resp := ToJSON(Wrap(err, CodeQuotaExhausted, "analysis refused"))

		require.Equal(t, "QUOTA_EXHAUSTED", resp.Code)
		require.Equal(t, "analysis refused", resp.Message)
		require.Equal(t, "PERMANENT", resp.Classification)
		require.Nil(t, resp.Context)
	})

	t.Run("context is included", func(t *testing.T) {
		resp := ToJSON(WithContext(New(CodeNotFound, "missing"), "owner", "octocat"))

		require.Equal(t, "octocat", resp.Context["owner"])
	})

	t.Run("standard error", func(t *testing.T) {
		resp := ToJSON(stderrors.New("something went wrong"))

		require.Equal(t, "UNKNOWN", resp.Code)
		require.Equal(t, "something went wrong", resp.Message)
		require.Equal(t, "PERMANENT", resp.Classification)
	})

	t.Run("nil error", func(t *testing.T) {
		require.Nil(t, ToJSON(nil))
	})
}

func TestMarshalJSON(t *testing.T) {
	err := WithContext(New(CodeRateLimit, "rate limited"), "retry_after", "30s")

	data, marshalErr := json.Marshal(err)
	require.NoError(t, marshalErr)
	require.JSONEq(t, `{
		"code": "RATE_LIMIT_EXCEEDED",
		"message": "rate limited",
		"classification": "RETRYABLE",
		"context": {"retry_after": "30s"}
	}`, string(data))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeQuotaExhausted, http.StatusTooManyRequests},
		{CodeRateLimit, http.StatusTooManyRequests},
		{CodeInvalidInput, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeNetwork, http.StatusBadGateway},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeUnknown, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			require.Equal(t, tt.want, HTTPStatus(tt.code))
		})
	}
}

func TestFromHTTPStatus(t *testing.T) {
	require.Equal(t, CodeNotFound, FromHTTPStatus(http.StatusNotFound))
	require.Equal(t, CodeUnauthorized, FromHTTPStatus(http.StatusUnauthorized))
	require.Equal(t, CodeRateLimit, FromHTTPStatus(http.StatusTooManyRequests))
	require.Equal(t, CodeTimeout, FromHTTPStatus(http.StatusGatewayTimeout))
	require.Equal(t, CodeNetwork, FromHTTPStatus(http.StatusInternalServerError))
	require.Equal(t, CodeNetwork, FromHTTPStatus(http.StatusAccepted))
}
