package repohealth

import (
	"context"
	"encoding/json"

	"github.com/jmgilman/go/repohealth/fetch"
	"github.com/jmgilman/go/repohealth/quota"
)

//go:generate go run github.com/matryer/moq@latest -out mocks/fetcher.go -pkg mocks . Fetcher
//go:generate go run github.com/matryer/moq@latest -out mocks/quota_checker.go -pkg mocks . QuotaChecker

// Fetcher retrieves JSON resources from the GitHub REST API.
//
// The default implementation is *fetch.Cached, which serves repeated reads
// from a TTL cache and retries failed requests. Tests substitute a mock.
type Fetcher interface {
	// Fetch returns the raw JSON payload for r.
	// Returns a coded error (CodeNotFound, CodeRateLimit, CodeNetwork, ...)
	// when the resource could not be obtained.
	Fetch(ctx context.Context, r fetch.Request) (json.RawMessage, error)

	// Clear drops every cached response.
	Clear()
}

// QuotaChecker reports the remaining REST quota for a credential.
//
// The default implementation is *quota.Monitor.
type QuotaChecker interface {
	// Status returns the core quota for credential. An empty credential
	// means anonymous access.
	// Returns CodeUnavailable when the status could not be determined.
	Status(ctx context.Context, credential string) (quota.Status, error)

	// Reset forgets any memoized status.
	Reset()
}

var (
	_ Fetcher      = (*fetch.Cached)(nil)
	_ QuotaChecker = (*quota.Monitor)(nil)
)
