package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/go-github/v67/github"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/jmgilman/go/repohealth/errors"
)

const (
	// DefaultMaxAttempts is the total number of attempts per request.
	DefaultMaxAttempts = 3

	// DefaultBackoff is the fixed delay between attempts.
	DefaultBackoff = 2 * time.Second

	// DefaultMaxRateLimitWait is the longest rate-limit reset the executor
	// will wait out by retrying.
	DefaultMaxRateLimitWait = 60 * time.Second

	// maxLoggedMessage bounds the error text written per failed attempt.
	maxLoggedMessage = 200
)

// Doer executes a Request and classifies the result.
type Doer interface {
	Execute(ctx context.Context, r Request) Outcome
}

// Executor performs GETs through a go-github client with a bounded, fixed
// delay retry policy. It is safe for concurrent use.
type Executor struct {
	client           *github.Client
	maxAttempts      int
	backoff          time.Duration
	maxRateLimitWait time.Duration
	now              func() time.Time
	logger           zerolog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithMaxAttempts sets the total number of attempts. Values below 1 are ignored.
func WithMaxAttempts(n int) ExecutorOption {
	return func(e *Executor) {
		if n >= 1 {
			e.maxAttempts = n
		}
	}
}

// WithBackoff sets the delay between attempts. Non-positive values are ignored.
func WithBackoff(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d > 0 {
			e.backoff = d
		}
	}
}

// WithMaxRateLimitWait sets the longest rate-limit reset that is still
// retried. A rejection asking for a longer wait fails immediately.
func WithMaxRateLimitWait(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d >= 0 {
			e.maxRateLimitWait = d
		}
	}
}

// WithClock sets the time source used to compute rate-limit waits.
func WithClock(now func() time.Time) ExecutorOption {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the logger used for failed attempts.
func WithLogger(logger zerolog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// NewExecutor creates an Executor that sends requests through client.
//
// Requests are built with client but sent on its HTTP client directly, so
// go-github's own rate-limit bookkeeping never short-circuits a retry.
func NewExecutor(client *github.Client, opts ...ExecutorOption) *Executor {
	e := &Executor{
		client:           client,
		maxAttempts:      DefaultMaxAttempts,
		backoff:          DefaultBackoff,
		maxRateLimitWait: DefaultMaxRateLimitWait,
		now:              time.Now,
		logger:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// errStopRetry ends the retry loop early without being retried.
var errStopRetry = errors.New(errors.CodeInternal, "stop retrying")

// Execute performs r and returns its classified outcome.
//
// A 200 with a valid JSON body succeeds immediately. A 200 whose body is not
// valid JSON fails permanently without retry. Rate-limit rejections are
// retried only while the requested wait is within the configured maximum and
// attempts remain. Every other failure is retried until attempts run out.
// Execute never returns a zero Outcome.
func (e *Executor) Execute(ctx context.Context, r Request) Outcome {
	target, err := r.target()
	if err != nil {
		return Outcome{
			Kind:  KindPermanentFailure,
			URL:   r.URL,
			Cause: errors.Wrap(err, errors.CodeInvalidInput, "invalid request URL"),
		}
	}

	var (
		attempts int
		last     Outcome
	)

	backoff := retry.WithMaxRetries(uint64(e.maxAttempts-1), retry.NewConstant(e.backoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		last = e.attempt(ctx, target, r.Header)
		last.Attempts = attempts

		switch last.Kind {
		case KindSuccess:
			return nil
		case KindPermanentFailure:
			e.logFailure(last)
			return errStopRetry
		case KindRateLimited:
			e.logFailure(last)
			if last.RetryAfter > e.maxRateLimitWait || attempts >= e.maxAttempts {
				return errStopRetry
			}
			return retry.RetryableError(last.Cause)
		default:
			e.logFailure(last)
			return retry.RetryableError(last.Cause)
		}
	})

	if attempts == 0 {
		// The context was done before the first attempt.
		return Outcome{Kind: KindTransientFailure, URL: target, Cause: err}
	}
	if err != nil && ctx.Err() != nil && last.Kind == KindTransientFailure {
		last.Cause = err
	}
	return last
}

// attempt issues one GET and classifies the response.
//
// The request is built by go-github but sent on its underlying HTTP client,
// so go-github's client-side rate-limit bookkeeping never blocks an attempt.
// Every retry decision is made here.
func (e *Executor) attempt(ctx context.Context, target string, header http.Header) Outcome {
	req, err := e.client.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return Outcome{
			Kind:  KindPermanentFailure,
			URL:   target,
			Cause: errors.Wrap(err, errors.CodeInvalidInput, "failed to build request"),
		}
	}
	for k, vs := range header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	o := e.send(req.WithContext(ctx))
	o.URL = target
	return o
}

// send performs req and classifies the raw response.
func (e *Executor) send(req *http.Request) Outcome {
	resp, err := e.client.Client().Do(req)
	if err != nil {
		return Outcome{Kind: KindTransientFailure, Cause: err}
	}
	defer resp.Body.Close()

	if err := github.CheckResponse(resp); err != nil {
		return e.classify(resp, err)
	}

	if resp.StatusCode != http.StatusOK {
		// 2xx other than 200, such as 204 from statistics endpoints.
		return Outcome{
			Kind:       KindTransientFailure,
			StatusCode: resp.StatusCode,
			Cause:      errors.Newf(errors.CodeNetwork, "unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Outcome{Kind: KindTransientFailure, StatusCode: resp.StatusCode, Cause: err}
	}

	switch {
	case len(bytes.TrimSpace(body)) == 0:
		return Outcome{
			Kind:       KindPermanentFailure,
			StatusCode: resp.StatusCode,
			Cause:      errors.New(errors.CodeInvalidResponse, "empty response body"),
		}
	case !json.Valid(body):
		return Outcome{
			Kind:       KindPermanentFailure,
			StatusCode: resp.StatusCode,
			Cause:      errors.New(errors.CodeInvalidResponse, "failed to decode response body"),
		}
	default:
		return Outcome{Kind: KindSuccess, Payload: json.RawMessage(body), StatusCode: resp.StatusCode}
	}
}

// classify maps the error go-github derives from a failed response onto an
// Outcome. Rate-limit rejections are checked before generic failures so
// their reset time is preserved.
func (e *Executor) classify(resp *http.Response, err error) Outcome {
	status := resp.StatusCode

	var (
		rateErr   *github.RateLimitError
		abuseErr  *github.AbuseRateLimitError
		accepted  *github.AcceptedError
		remoteErr *github.ErrorResponse
	)

	switch {
	case errors.As(err, &rateErr):
		return e.rateLimited(status, rateErr.Rate.Reset.Time, err)

	case errors.As(err, &abuseErr):
		var wait time.Duration
		if abuseErr.RetryAfter != nil {
			wait = *abuseErr.RetryAfter
		}
		return Outcome{Kind: KindRateLimited, RetryAfter: max(wait, 0), StatusCode: status, Cause: err}

	case errors.As(err, &remoteErr) && isRateLimitResponse(status, remoteErr.Message):
		return e.rateLimited(status, resetTime(resp.Header, e.now()), err)

	case errors.As(err, &accepted):
		// GitHub is still computing statistics; the data may be ready next time.
		return Outcome{Kind: KindTransientFailure, StatusCode: status, Cause: err}

	default:
		return Outcome{Kind: KindTransientFailure, StatusCode: status, Cause: err}
	}
}

func (e *Executor) rateLimited(status int, reset time.Time, cause error) Outcome {
	return Outcome{
		Kind:       KindRateLimited,
		RetryAfter: max(reset.Sub(e.now()), 0),
		StatusCode: status,
		Cause:      cause,
	}
}

func (e *Executor) logFailure(o Outcome) {
	msg := ""
	if o.Cause != nil {
		msg = truncate(o.Cause.Error(), maxLoggedMessage)
	}

	e.logger.Warn().
		Str("url", o.URL).
		Int("status", o.StatusCode).
		Int("attempt", o.Attempts).
		Str("kind", o.Kind.String()).
		Str("error", msg).
		Msg("GitHub request attempt failed")
}

// isRateLimitResponse reports whether a failed response is a quota rejection
// that go-github did not already type as one.
func isRateLimitResponse(status int, message string) bool {
	switch status {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden:
		return strings.Contains(strings.ToLower(message), "rate limit exceeded")
	default:
		return false
	}
}

// resetTime reads the reset instant from X-RateLimit-Reset (unix seconds) or
// Retry-After (seconds). It returns now when neither header is usable.
func resetTime(h http.Header, now time.Time) time.Time {
	if v := h.Get("X-RateLimit-Reset"); v != "" {
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Unix(secs, 0)
		}
	}
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			return now.Add(time.Duration(secs) * time.Second)
		}
	}
	return now
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

var _ Doer = (*Executor)(nil)
