// Package repohealth fetches, caches and aggregates GitHub REST metadata
// for repository health analysis.
//
// The package sits between application logic and the GitHub API and makes
// that boundary resilient: successful responses are cached for an hour,
// failed requests are retried a bounded number of times, rate-limit
// rejections are honoured, and analyses are refused up front when the
// caller's quota is nearly spent.
//
// # Architecture
//
// The layer is built from small packages, each usable on its own:
//
//  1. cache: deterministic request keys and a concurrency-safe TTL store
//  2. fetch: a retrying request executor and a cache-fronted fetcher
//  3. quota: a memoized rate-limit monitor
//  4. repohealth: the Client, which combines them and aggregates the
//     resources of one repository into a RepositorySnapshot
//
// # Core Types
//
// Client is the entry point. It owns the response cache and the quota memo.
//
// RepositorySnapshot holds everything fetched for one repository. Only the
// repository metadata is guaranteed; contributors, statistics and issues are
// best effort and their absence is recorded in Missing.
//
// Fetcher and QuotaChecker abstract the network-facing components so that
// tests can substitute mocks from the mocks package.
//
// # Error Handling
//
// Every error is a coded error from the errors package:
//
//	snapshot, err := client.AnalyzeRepository(ctx, "octocat", "hello-world", "")
//	switch errors.GetCode(err) {
//	case errors.CodeQuotaExhausted:
//	    resetAt, _ := errors.ContextValue(err, "reset_at")
//	case errors.CodeNotFound:
//	    // repository does not exist or is not visible to the credential
//	}
//
// # Credentials
//
// A credential passed to a call overrides the client default set with
// WithToken. With neither, requests are anonymous and subject to the lower
// unauthenticated quota.
package repohealth
