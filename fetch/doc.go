// Package fetch issues GitHub REST GETs with a bounded retry policy and
// memoizes successful responses.
//
// Executor performs one logical request: up to three attempts with a fixed
// delay, special handling for rate-limit rejections, and a classified Outcome
// instead of an error. Cached puts a cache.Store in front of an Executor so
// that repeated reads of the same resource within the TTL never reach the
// network. Failures are never cached.
//
// Basic usage:
//
//	client := github.NewClient(&http.Client{Timeout: 15 * time.Second})
//	exec := fetch.NewExecutor(client, fetch.WithLogger(logger))
//	cached := fetch.NewCached(cache.NewMemoryStore(), exec)
//
//	payload, err := cached.Fetch(ctx, fetch.Request{
//		URL:    "https://api.github.com/repos/octocat/hello-world",
//		Header: http.Header{"Authorization": {"token ghp_..."}},
//	})
package fetch
