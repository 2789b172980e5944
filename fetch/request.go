package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/jmgilman/go/repohealth/cache"
	"github.com/jmgilman/go/repohealth/errors"
)

// Request describes a single GET against the GitHub REST API.
type Request struct {
	// URL is the absolute endpoint URL without query parameters.
	URL string

	// Header holds headers that replace the client defaults, such as
	// Authorization.
	Header http.Header

	// Params are encoded into the query string.
	Params map[string]string
}

// Key returns the cache key identifying this request. Headers are not part
// of the key.
func (r Request) Key() string {
	return cache.Key(r.URL, r.Params)
}

// target returns the URL with Params merged into any existing query.
func (r Request) target() (string, error) {
	u, err := url.Parse(r.URL)
	if err != nil {
		return "", err
	}
	if len(r.Params) == 0 {
		return u.String(), nil
	}

	q := u.Query()
	for k, v := range r.Params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Kind classifies the result of executing a Request.
type Kind int

const (
	// KindSuccess means the remote answered 200 with a valid JSON body.
	KindSuccess Kind = iota + 1

	// KindRateLimited means the remote refused the request for quota reasons
	// and the retry budget or the acceptable wait was exceeded.
	KindRateLimited

	// KindTransientFailure means every attempt failed with a non-200 status
	// or a transport error.
	KindTransientFailure

	// KindPermanentFailure means retrying cannot help, for example a 200
	// response whose body is not valid JSON.
	KindPermanentFailure
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindRateLimited:
		return "rate_limited"
	case KindTransientFailure:
		return "transient_failure"
	case KindPermanentFailure:
		return "permanent_failure"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of a Request. Outcomes are values and are
// never modified after Execute returns them.
type Outcome struct {
	Kind Kind

	// Payload is the raw JSON body. Set only for KindSuccess.
	Payload json.RawMessage

	// RetryAfter is how long the remote asked the caller to wait. Set only
	// for KindRateLimited.
	RetryAfter time.Duration

	// URL is the requested URL including the query string.
	URL string

	// StatusCode is the HTTP status of the last attempt, or 0 when no
	// response was received.
	StatusCode int

	// Attempts is the number of attempts made.
	Attempts int

	// Cause is the error of the last attempt. Nil for KindSuccess.
	Cause error
}

// Err converts the outcome into a coded error, or nil on success.
//
// Rate-limited outcomes carry CodeRateLimit and a retry_after field.
// Transient failures are coded from the last status (404 becomes
// CodeNotFound, 5xx CodeNetwork) and permanent failures are
// CodeInvalidResponse. Every error carries url, status and attempts.
func (o Outcome) Err() error {
	if o.Kind == KindSuccess {
		return nil
	}

	ctx := map[string]any{
		"url":      o.URL,
		"status":   o.StatusCode,
		"attempts": o.Attempts,
	}

	var (
		code    errors.ErrorCode
		message string
	)
	switch o.Kind {
	case KindRateLimited:
		code, message = errors.CodeRateLimit, "rate limited by GitHub"
		ctx["retry_after"] = o.RetryAfter.String()
	case KindPermanentFailure:
		if errors.GetCode(o.Cause) == errors.CodeInvalidInput {
			return errors.WithContextMap(o.Cause, ctx)
		}
		code, message = errors.CodeInvalidResponse, "invalid response from GitHub"
	default:
		code, message = transientCode(o), "request to GitHub failed"
	}

	if o.Cause == nil {
		return errors.WithContextMap(errors.New(code, message), ctx)
	}
	return errors.WrapWithContext(o.Cause, code, message, ctx)
}

func transientCode(o Outcome) errors.ErrorCode {
	if o.StatusCode != 0 {
		return errors.FromHTTPStatus(o.StatusCode)
	}
	if errors.Is(o.Cause, context.DeadlineExceeded) {
		return errors.CodeTimeout
	}
	return errors.CodeNetwork
}
