package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/go-github/v67/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/repohealth/errors"
)

// newTestExecutor starts a fake GitHub server running handler and returns an
// Executor pointed at it with a negligible backoff.
func newTestExecutor(t *testing.T, handler http.HandlerFunc, opts ...ExecutorOption) (*Executor, string) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(func() { server.Close() })

	client := github.NewClient(nil)
	baseURL, err := client.BaseURL.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = baseURL

	opts = append([]ExecutorOption{WithBackoff(time.Millisecond)}, opts...)
	return NewExecutor(client, opts...), server.URL
}

func rateLimited(w http.ResponseWriter, reset time.Time) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-RateLimit-Limit", "60")
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"message": "API rate limit exceeded for 127.0.0.1."}`))
}

func TestExecutor_Execute(t *testing.T) {
	t.Parallel()

	t.Run("success on first attempt", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		seen := make(chan *http.Request, 1)
		exec, base := newTestExecutor(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			seen <- r.Clone(context.Background())
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"number": 1}]`))
		})

		o := exec.Execute(context.Background(), Request{
			URL:    base + "/repos/octocat/hello-world/issues",
			Header: http.Header{"Authorization": {"token abc"}},
			Params: map[string]string{"state": "all", "per_page": "100"},
		})

		require.Equal(t, KindSuccess, o.Kind)
		assert.JSONEq(t, `[{"number": 1}]`, string(o.Payload))
		assert.Equal(t, 1, o.Attempts)
		assert.Equal(t, http.StatusOK, o.StatusCode)
		assert.NoError(t, o.Err())
		assert.Equal(t, int32(1), calls.Load())

		got := <-seen
		assert.Equal(t, "token abc", got.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github.v3+json", got.Header.Get("Accept"))
		assert.Equal(t, "per_page=100&state=all", got.URL.RawQuery)
	})

	t.Run("server error exhausts exactly three attempts", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		exec, base := newTestExecutor(t, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message": "boom"}`))
		})

		o := exec.Execute(context.Background(), Request{URL: base + "/repos/o/r"})

		assert.Equal(t, KindTransientFailure, o.Kind)
		assert.Equal(t, 3, o.Attempts)
		assert.Equal(t, http.StatusInternalServerError, o.StatusCode)
		assert.Equal(t, int32(3), calls.Load())

		err := o.Err()
		require.Error(t, err)
		assert.Equal(t, errors.CodeNetwork, errors.GetCode(err))
		assert.True(t, errors.IsRetryable(err))
	})

	t.Run("recovers after transient failures", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		exec, base := newTestExecutor(t, func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(`{"id": 7}`))
		})

		o := exec.Execute(context.Background(), Request{URL: base + "/repos/o/r"})

		require.Equal(t, KindSuccess, o.Kind)
		assert.Equal(t, 3, o.Attempts)
		assert.JSONEq(t, `{"id": 7}`, string(o.Payload))
	})

	t.Run("not found is retried and reported as not found", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		exec, base := newTestExecutor(t, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message": "Not Found"}`))
		})

		o := exec.Execute(context.Background(), Request{URL: base + "/repos/o/missing"})

		assert.Equal(t, KindTransientFailure, o.Kind)
		assert.Equal(t, int32(3), calls.Load())
		assert.Equal(t, errors.CodeNotFound, errors.GetCode(o.Err()))
	})

	t.Run("accepted is retried", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		exec, base := newTestExecutor(t, func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusAccepted)
				_, _ = w.Write([]byte(`{}`))
				return
			}
			_, _ = w.Write([]byte(`{"all": [1, 2], "owner": [0, 1]}`))
		})

		o := exec.Execute(context.Background(), Request{URL: base + "/repos/o/r/stats/participation"})

		require.Equal(t, KindSuccess, o.Kind)
		assert.Equal(t, 2, o.Attempts)
	})

	t.Run("malformed body fails permanently without retry", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		exec, base := newTestExecutor(t, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"name": `))
		})

		o := exec.Execute(context.Background(), Request{URL: base + "/repos/o/r"})

		assert.Equal(t, KindPermanentFailure, o.Kind)
		assert.Equal(t, 1, o.Attempts)
		assert.Equal(t, int32(1), calls.Load())

		err := o.Err()
		assert.Equal(t, errors.CodeInvalidResponse, errors.GetCode(err))
		assert.False(t, errors.IsRetryable(err))
	})

	t.Run("rate limit with distant reset stops immediately", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		exec, base := newTestExecutor(t, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			rateLimited(w, time.Now().Add(time.Hour))
		})

		o := exec.Execute(context.Background(), Request{URL: base + "/repos/o/r"})

		assert.Equal(t, KindRateLimited, o.Kind)
		assert.Equal(t, 1, o.Attempts)
		assert.Equal(t, int32(1), calls.Load())
		assert.Greater(t, o.RetryAfter, 59*time.Minute)

		err := o.Err()
		assert.Equal(t, errors.CodeRateLimit, errors.GetCode(err))
		_, ok := errors.ContextValue(err, "retry_after")
		assert.True(t, ok)
	})

	t.Run("rate limit with imminent reset retries then gives up", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		exec, base := newTestExecutor(t, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			rateLimited(w, time.Now().Add(-time.Second))
		})

		o := exec.Execute(context.Background(), Request{URL: base + "/repos/o/r"})

		assert.Equal(t, KindRateLimited, o.Kind)
		assert.Equal(t, 3, o.Attempts)
		assert.Equal(t, int32(3), calls.Load())
		assert.Equal(t, time.Duration(0), o.RetryAfter)
	})

	t.Run("rate limit with near reset is retried and succeeds", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		exec, base := newTestExecutor(t, func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) == 1 {
				rateLimited(w, time.Now().Add(2*time.Second))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id": 1}`))
		})

		o := exec.Execute(context.Background(), Request{URL: base + "/repos/o/r"})

		require.Equal(t, KindSuccess, o.Kind)
		assert.Equal(t, 2, o.Attempts)
		assert.Equal(t, int32(2), calls.Load())
		assert.JSONEq(t, `{"id": 1}`, string(o.Payload))
	})

	t.Run("too many requests honours retry-after", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		exec, base := newTestExecutor(t, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.Header().Set("Retry-After", "120")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"message": "slow down"}`))
		})

		o := exec.Execute(context.Background(), Request{URL: base + "/repos/o/r"})

		assert.Equal(t, KindRateLimited, o.Kind)
		assert.Equal(t, int32(1), calls.Load())
		assert.Greater(t, o.RetryAfter, DefaultMaxRateLimitWait)
	})

	t.Run("rate limit wait threshold is configurable", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		exec, base := newTestExecutor(t, func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) == 1 {
				rateLimited(w, time.Now().Add(30*time.Second))
				return
			}
			_, _ = w.Write([]byte(`{}`))
		}, WithMaxRateLimitWait(10*time.Second))

		o := exec.Execute(context.Background(), Request{URL: base + "/repos/o/r"})

		assert.Equal(t, KindRateLimited, o.Kind)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("cancelled context makes no request", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		exec, base := newTestExecutor(t, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			_, _ = w.Write([]byte(`{}`))
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		o := exec.Execute(ctx, Request{URL: base + "/repos/o/r"})

		assert.Equal(t, KindTransientFailure, o.Kind)
		assert.ErrorIs(t, o.Cause, context.Canceled)
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("cancellation during backoff ends the loop", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		exec, base := newTestExecutor(t, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			cancel()
			w.WriteHeader(http.StatusServiceUnavailable)
		}, WithBackoff(time.Minute))

		o := exec.Execute(ctx, Request{URL: base + "/repos/o/r"})

		assert.Equal(t, KindTransientFailure, o.Kind)
		assert.Equal(t, int32(1), calls.Load())
		assert.ErrorIs(t, o.Cause, context.Canceled)
	})

	t.Run("max attempts is configurable", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		exec, base := newTestExecutor(t, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}, WithMaxAttempts(5))

		o := exec.Execute(context.Background(), Request{URL: base + "/repos/o/r"})

		assert.Equal(t, 5, o.Attempts)
		assert.Equal(t, int32(5), calls.Load())
	})
}

func TestRequest(t *testing.T) {
	t.Parallel()

	t.Run("key ignores headers", func(t *testing.T) {
		t.Parallel()

		a := Request{URL: "https://api.github.com/repos/o/r", Header: http.Header{"Authorization": {"token a"}}}
		b := Request{URL: "https://api.github.com/repos/o/r"}
		assert.Equal(t, a.Key(), b.Key())
	})

	t.Run("target merges params into existing query", func(t *testing.T) {
		t.Parallel()

		r := Request{URL: "https://api.github.com/repos/o/r/issues?page=2", Params: map[string]string{"state": "all"}}
		got, err := r.target()
		require.NoError(t, err)
		assert.Equal(t, "https://api.github.com/repos/o/r/issues?page=2&state=all", got)
	})

	t.Run("invalid url fails permanently", func(t *testing.T) {
		t.Parallel()

		exec := NewExecutor(github.NewClient(nil))
		o := exec.Execute(context.Background(), Request{URL: "://bad"})

		assert.Equal(t, KindPermanentFailure, o.Kind)
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(o.Err()))
	})
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		n     int
		want  string
	}{
		{name: "short string is unchanged", input: "boom", n: 10, want: "boom"},
		{name: "ascii is cut at n", input: "abcdef", n: 3, want: "abc"},
		{name: "multi-byte rune is not split", input: "abécd", n: 3, want: "ab"},
		{name: "cut on rune boundary keeps rune", input: "abécd", n: 4, want: "abé"},
		{name: "leading wide rune", input: "日本", n: 2, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := truncate(tt.input, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, len(got), tt.n)
		})
	}
}

func TestOutcome_Err(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		outcome  Outcome
		wantCode errors.ErrorCode
	}{
		{
			name:     "rate limited",
			outcome:  Outcome{Kind: KindRateLimited, StatusCode: 403, RetryAfter: time.Minute},
			wantCode: errors.CodeRateLimit,
		},
		{
			name:     "transient without response",
			outcome:  Outcome{Kind: KindTransientFailure},
			wantCode: errors.CodeNetwork,
		},
		{
			name:     "transient deadline",
			outcome:  Outcome{Kind: KindTransientFailure, Cause: context.DeadlineExceeded},
			wantCode: errors.CodeTimeout,
		},
		{
			name:     "transient unauthorized",
			outcome:  Outcome{Kind: KindTransientFailure, StatusCode: 401},
			wantCode: errors.CodeUnauthorized,
		},
		{
			name:     "permanent",
			outcome:  Outcome{Kind: KindPermanentFailure, StatusCode: 200},
			wantCode: errors.CodeInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.outcome.Err()
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.GetCode(err))

			attempts, ok := errors.ContextValue(err, "attempts")
			require.True(t, ok)
			assert.Equal(t, tt.outcome.Attempts, attempts)
		})
	}

	assert.NoError(t, Outcome{Kind: KindSuccess}.Err())
}
