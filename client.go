package repohealth

import (
	"context"
	"net/http"
	"time"

	"github.com/google/go-github/v67/github"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jmgilman/go/repohealth/cache"
	"github.com/jmgilman/go/repohealth/errors"
	"github.com/jmgilman/go/repohealth/fetch"
	"github.com/jmgilman/go/repohealth/internal/logging"
	"github.com/jmgilman/go/repohealth/quota"
)

// acceptHeader selects the v3 JSON media type.
const acceptHeader = "application/vnd.github.v3+json"

// Client is the entry point for quota checks and repository analysis.
// It owns the response cache and the quota memo; both are cleared by
// ResetCache. A Client is safe for concurrent use.
//
// Cached responses are keyed by URL and query parameters only, never by
// credential. A response fetched with one token, including one for a private
// repository, is served to any other caller of the same Client until it
// expires. A Client shared by several users, such as the one behind the
// serve command, should run with a single token or a short cache TTL.
//
// Example usage:
//
//	client, err := repohealth.New(repohealth.WithToken(os.Getenv("GITHUB_TOKEN")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	snapshot, err := client.AnalyzeRepository(ctx, "octocat", "hello-world", "")
//	if errors.GetCode(err) == errors.CodeQuotaExhausted {
//	    // wait until the reset_at context value
//	}
type Client struct {
	baseURL   string
	token     string
	fetcher   Fetcher
	quota     QuotaChecker
	threshold int
	logger    zerolog.Logger
	now       func() time.Time
}

// New creates a Client.
//
// Without options the client talks to api.github.com anonymously, caches
// successful responses for an hour in memory and retries each request up to
// three times.
func New(opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	var gh *github.Client
	if cfg.fetcher == nil || cfg.quota == nil {
		httpClient := cfg.httpClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: cfg.timeout}
		}

		var err error
		gh, err = newGitHubClient(httpClient, cfg.baseURL)
		if err != nil {
			return nil, err
		}
	}

	if cfg.fetcher == nil {
		store := cfg.store
		if store == nil {
			store = newStore(cfg)
		}

		exec := fetch.NewExecutor(gh,
			fetch.WithMaxAttempts(cfg.maxAttempts),
			fetch.WithBackoff(cfg.backoff),
			fetch.WithMaxRateLimitWait(cfg.maxRateLimitWait),
			fetch.WithClock(cfg.now),
			fetch.WithLogger(cfg.logger.With().Str("component", "executor").Logger()),
		)

		cachedOpts := []fetch.CachedOption{
			fetch.WithTTL(cfg.cacheTTL),
			fetch.WithCachedLogger(cfg.logger.With().Str("component", "cache").Logger()),
		}
		if cfg.dedupe {
			cachedOpts = append(cachedOpts, fetch.WithDeduplication())
		}
		cfg.fetcher = fetch.NewCached(store, exec, cachedOpts...)
	}

	if cfg.quota == nil {
		cfg.quota = quota.NewMonitor(gh,
			quota.WithMemoSize(cfg.memoSize),
			quota.WithMemoTTL(cfg.memoTTL),
			quota.WithTimeout(cfg.quotaTimeout),
			quota.WithLogger(cfg.logger.With().Str("component", "quota").Logger()),
		)
	}

	return &Client{
		baseURL:   cfg.baseURL,
		token:     cfg.token,
		fetcher:   cfg.fetcher,
		quota:     cfg.quota,
		threshold: cfg.quotaThreshold,
		logger:    cfg.logger,
		now:       cfg.now,
	}, nil
}

func newGitHubClient(httpClient *http.Client, baseURL string) (*github.Client, error) {
	gh := github.NewClient(httpClient)
	u, err := gh.BaseURL.Parse(baseURL)
	if err != nil {
		return nil, errors.WithContext(
			errors.Wrap(err, errors.CodeInvalidInput, "invalid base URL"), "base_url", baseURL)
	}
	gh.BaseURL = u
	return gh, nil
}

func newStore(cfg *config) cache.Store {
	if cfg.shards > 0 {
		return cache.NewShardedStore(cfg.shards, cache.WithClock(cfg.now))
	}
	return cache.NewMemoryStore(cache.WithClock(cfg.now))
}

// CheckQuota returns the remaining quota for credential, falling back to the
// client's default token when credential is empty.
// Returns CodeUnavailable when the quota endpoint could not be queried.
func (c *Client) CheckQuota(ctx context.Context, credential string) (quota.Status, error) {
	return c.quota.Status(ctx, c.credential(credential))
}

// AnalyzeRepository fetches everything known about owner/repo.
//
// The quota is checked first. When the remaining quota is at or below the
// configured threshold a CodeQuotaExhausted error carrying reset_at and
// remaining is returned and nothing is fetched. When the quota cannot be
// determined the analysis proceeds anyway.
//
// The repository metadata must be fetched successfully; a missing repository
// yields CodeNotFound. Every other section is best effort and is reported in
// RepositorySnapshot.Missing when it could not be fetched.
func (c *Client) AnalyzeRepository(ctx context.Context, owner, repo, credential string) (*RepositorySnapshot, error) {
	if owner == "" || repo == "" {
		err := errors.New(errors.CodeInvalidInput, "owner and repository are required")
		return nil, errors.WithContextMap(err, map[string]any{"owner": owner, "repo": repo})
	}

	cred := c.credential(credential)
	log := c.logger.With().
		Str("request_id", uuid.NewString()).
		Str("repository", owner+"/"+repo).
		Str("token", logging.MaskToken(cred)).
		Logger()

	status, err := c.quota.Status(ctx, cred)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("quota status unavailable, proceeding")
	case status.Exhausted(c.threshold):
		log.Warn().
			Int("remaining", status.Remaining).
			Time("reset_at", status.ResetAt).
			Msg("quota nearly exhausted, refusing analysis")
		return nil, quotaExhausted(status)
	}

	log.Info().Msg("analyzing repository")
	snapshot, err := c.aggregate(ctx, log, owner, repo, cred)
	if err != nil {
		log.Error().Err(err).Msg("repository analysis failed")
		return nil, err
	}

	log.Info().Strs("missing", snapshot.Missing).Msg("repository analysis complete")
	return snapshot, nil
}

// ResetCache drops every cached response and every memoized quota status.
func (c *Client) ResetCache() {
	c.fetcher.Clear()
	c.quota.Reset()
	c.logger.Info().Msg("cache cleared")
}

// credential resolves the credential for a call: an explicit value wins
// over the client default.
func (c *Client) credential(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return c.token
}

// headers returns the request headers for credential.
func (c *Client) headers(credential string) http.Header {
	h := http.Header{}
	h.Set("Accept", acceptHeader)
	if credential != "" {
		h.Set("Authorization", "token "+credential)
	}
	return h
}

func quotaExhausted(s quota.Status) error {
	err := errors.Newf(errors.CodeQuotaExhausted,
		"GitHub API rate limit nearly exceeded: %d requests left", s.Remaining)
	return errors.WithContextMap(err, map[string]any{
		"remaining": s.Remaining,
		"limit":     s.Limit,
		"reset_at":  s.ResetAt.UTC().Format(time.RFC3339),
	})
}
