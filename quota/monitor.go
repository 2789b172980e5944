package quota

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/go-github/v67/github"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/jmgilman/go/repohealth/errors"
)

const (
	// DefaultMemoSize is the number of credentials whose status is remembered.
	DefaultMemoSize = 32

	// DefaultMemoTTL is how long a remembered status is trusted.
	DefaultMemoTTL = 30 * time.Second

	// DefaultTimeout bounds a single rate_limit query.
	DefaultTimeout = 10 * time.Second
)

// Monitor reports quota status per credential. It is safe for concurrent use.
type Monitor struct {
	client   *github.Client
	memo     *expirable.LRU[string, Status]
	memoSize int
	memoTTL  time.Duration
	timeout  time.Duration
	logger   zerolog.Logger
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithMemoSize sets how many credentials are remembered. Zero disables
// memoization.
func WithMemoSize(n int) Option {
	return func(m *Monitor) {
		if n >= 0 {
			m.memoSize = n
		}
	}
}

// WithMemoTTL sets how long a remembered status is trusted.
func WithMemoTTL(ttl time.Duration) Option {
	return func(m *Monitor) {
		if ttl > 0 {
			m.memoTTL = ttl
		}
	}
}

// WithTimeout bounds each rate_limit query.
func WithTimeout(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Monitor) {
		m.logger = logger
	}
}

// NewMonitor creates a Monitor that queries through client. Requests are
// resolved against client.BaseURL.
func NewMonitor(client *github.Client, opts ...Option) *Monitor {
	m := &Monitor{
		client:   client,
		memoSize: DefaultMemoSize,
		memoTTL:  DefaultMemoTTL,
		timeout:  DefaultTimeout,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.memoSize > 0 {
		m.memo = expirable.NewLRU[string, Status](m.memoSize, nil, m.memoTTL)
	}
	return m
}

// Status returns the core quota for credential. An empty credential queries
// the anonymous quota.
//
// Any failure to obtain the status is returned as CodeUnavailable. Callers
// may proceed without a status at their own risk.
func (m *Monitor) Status(ctx context.Context, credential string) (Status, error) {
	key := identity(credential)
	if m.memo != nil {
		if s, ok := m.memo.Get(key); ok {
			return s, nil
		}
	}

	s, err := m.query(ctx, credential)
	if err != nil {
		m.logger.Warn().Err(err).Msg("failed to query rate limit status")
		return Status{}, err
	}

	m.logger.Debug().
		Int("remaining", s.Remaining).
		Int("limit", s.Limit).
		Time("reset_at", s.ResetAt).
		Msg("rate limit status")

	if m.memo != nil {
		m.memo.Add(key, s)
	}
	return s, nil
}

// Reset forgets every remembered status.
func (m *Monitor) Reset() {
	if m.memo != nil {
		m.memo.Purge()
	}
}

func (m *Monitor) query(ctx context.Context, credential string) (Status, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	req, err := m.client.NewRequest(http.MethodGet, "rate_limit", nil)
	if err != nil {
		return Status{}, errors.Wrap(err, errors.CodeUnavailable, "failed to build rate limit request")
	}
	if credential != "" {
		req.Header.Set("Authorization", "token "+credential)
	}

	var body struct {
		Resources *github.RateLimits `json:"resources"`
	}
	// go-github refuses requests while it believes the quota is spent, so the
	// query goes out on its HTTP client directly.
	status, err := m.send(req.WithContext(ctx), &body)
	if err != nil {
		wrapped := errors.Wrap(err, errors.CodeUnavailable, "failed to query rate limit status")
		return Status{}, errors.WithContext(wrapped, "status", status)
	}

	if body.Resources == nil || body.Resources.Core == nil {
		return Status{}, errors.New(errors.CodeUnavailable, "rate limit response has no core resource")
	}

	core := body.Resources.Core
	return Status{
		Remaining: core.Remaining,
		Limit:     core.Limit,
		ResetAt:   core.Reset.Time,
	}, nil
}

// identity maps a credential onto a memo key so raw tokens are never held
// as map keys.
func identity(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:])
}

// send performs req, checks the response and decodes its body into v. It
// returns the HTTP status, or 0 when no response was received.
func (m *Monitor) send(req *http.Request, v any) (int, error) {
	resp, err := m.client.Client().Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := github.CheckResponse(resp); err != nil {
		return resp.StatusCode, err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resp.StatusCode, err
	}
	return resp.StatusCode, nil
}
