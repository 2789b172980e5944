package repohealth

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jmgilman/go/repohealth/cache"
	"github.com/jmgilman/go/repohealth/errors"
	"github.com/jmgilman/go/repohealth/fetch"
	"github.com/jmgilman/go/repohealth/quota"
)

const (
	// DefaultBaseURL is the GitHub REST API endpoint.
	DefaultBaseURL = "https://api.github.com/"

	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 15 * time.Second
)

// config holds configuration for Client.
type config struct {
	baseURL    string
	token      string
	httpClient *http.Client
	timeout    time.Duration

	store    cache.Store
	shards   int
	cacheTTL time.Duration
	dedupe   bool

	maxAttempts      int
	backoff          time.Duration
	maxRateLimitWait time.Duration

	quotaThreshold int
	quotaTimeout   time.Duration
	memoSize       int
	memoTTL        time.Duration

	fetcher Fetcher
	quota   QuotaChecker

	logger zerolog.Logger
	now    func() time.Time
}

func defaultConfig() *config {
	return &config{
		baseURL:          DefaultBaseURL,
		timeout:          DefaultTimeout,
		cacheTTL:         fetch.DefaultTTL,
		maxAttempts:      fetch.DefaultMaxAttempts,
		backoff:          fetch.DefaultBackoff,
		maxRateLimitWait: fetch.DefaultMaxRateLimitWait,
		quotaThreshold:   quota.DefaultThreshold,
		quotaTimeout:     quota.DefaultTimeout,
		memoSize:         quota.DefaultMemoSize,
		memoTTL:          quota.DefaultMemoTTL,
		logger:           zerolog.Nop(),
		now:              time.Now,
	}
}

// Option configures a Client.
type Option func(*config) error

func invalidOption(field, message string) error {
	return errors.WithContext(errors.New(errors.CodeInvalidInput, message), "field", field)
}

// WithBaseURL sets the REST API endpoint, for example a GitHub Enterprise
// server or a test server. A trailing slash is added when missing.
func WithBaseURL(raw string) Option {
	return func(cfg *config) error {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return invalidOption("base_url", "base URL must be an absolute URL")
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		cfg.baseURL = u.String()
		return nil
	}
}

// WithToken sets the default credential used when a call does not supply
// one. An empty token leaves the client anonymous.
func WithToken(token string) Option {
	return func(cfg *config) error {
		cfg.token = token
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for every request. It takes
// precedence over WithTimeout.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *config) error {
		if client == nil {
			return invalidOption("http_client", "HTTP client cannot be nil")
		}
		cfg.httpClient = client
		return nil
	}
}

// WithTimeout bounds each HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(cfg *config) error {
		if d <= 0 {
			return invalidOption("timeout", "timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithStore sets the response cache. By default a MemoryStore is used, or a
// ShardedStore when WithShards is given.
func WithStore(store cache.Store) Option {
	return func(cfg *config) error {
		if store == nil {
			return invalidOption("store", "store cannot be nil")
		}
		cfg.store = store
		return nil
	}
}

// WithShards selects a ShardedStore with n shards for the default cache.
// Zero selects a single-map MemoryStore.
func WithShards(n int) Option {
	return func(cfg *config) error {
		if n < 0 {
			return invalidOption("shards", "shard count cannot be negative")
		}
		cfg.shards = n
		return nil
	}
}

// WithCacheTTL sets how long successful responses are cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(cfg *config) error {
		if ttl <= 0 {
			return invalidOption("cache_ttl", "cache TTL must be positive")
		}
		cfg.cacheTTL = ttl
		return nil
	}
}

// WithDeduplication collapses concurrent identical fetches into one request.
func WithDeduplication(enabled bool) Option {
	return func(cfg *config) error {
		cfg.dedupe = enabled
		return nil
	}
}

// WithRetryPolicy sets the total attempts per request, the fixed delay
// between attempts and the longest rate-limit reset still worth waiting for.
func WithRetryPolicy(maxAttempts int, backoff, maxRateLimitWait time.Duration) Option {
	return func(cfg *config) error {
		if maxAttempts < 1 {
			return invalidOption("max_attempts", "max attempts must be at least 1")
		}
		if backoff <= 0 {
			return invalidOption("backoff", "backoff must be positive")
		}
		if maxRateLimitWait < 0 {
			return invalidOption("max_rate_limit_wait", "max rate limit wait cannot be negative")
		}
		cfg.maxAttempts = maxAttempts
		cfg.backoff = backoff
		cfg.maxRateLimitWait = maxRateLimitWait
		return nil
	}
}

// WithQuotaThreshold sets the remaining-request count at or below which
// AnalyzeRepository refuses to start.
func WithQuotaThreshold(n int) Option {
	return func(cfg *config) error {
		if n < 0 {
			return invalidOption("quota_threshold", "quota threshold cannot be negative")
		}
		cfg.quotaThreshold = n
		return nil
	}
}

// WithQuotaMemo sets how many credentials' quota status is remembered and
// for how long. A size of zero disables memoization.
func WithQuotaMemo(size int, ttl time.Duration) Option {
	return func(cfg *config) error {
		if size < 0 {
			return invalidOption("memo_size", "memo size cannot be negative")
		}
		if ttl <= 0 {
			return invalidOption("memo_ttl", "memo TTL must be positive")
		}
		cfg.memoSize = size
		cfg.memoTTL = ttl
		return nil
	}
}

// WithQuotaTimeout bounds each quota status query.
func WithQuotaTimeout(d time.Duration) Option {
	return func(cfg *config) error {
		if d <= 0 {
			return invalidOption("quota_timeout", "quota timeout must be positive")
		}
		cfg.quotaTimeout = d
		return nil
	}
}

// WithFetcher replaces the cached fetch layer entirely. Cache and retry
// options are ignored when it is set.
func WithFetcher(f Fetcher) Option {
	return func(cfg *config) error {
		if f == nil {
			return invalidOption("fetcher", "fetcher cannot be nil")
		}
		cfg.fetcher = f
		return nil
	}
}

// WithQuotaChecker replaces the quota monitor.
func WithQuotaChecker(q QuotaChecker) Option {
	return func(cfg *config) error {
		if q == nil {
			return invalidOption("quota_checker", "quota checker cannot be nil")
		}
		cfg.quota = q
		return nil
	}
}

// WithLogger sets the logger passed to every component.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) error {
		cfg.logger = logger
		return nil
	}
}

// WithClock sets the time source used for snapshot timestamps and cache
// expiry.
func WithClock(now func() time.Time) Option {
	return func(cfg *config) error {
		if now == nil {
			return invalidOption("clock", "clock cannot be nil")
		}
		cfg.now = now
		return nil
	}
}
