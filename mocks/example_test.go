package mocks_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/repohealth"
	"github.com/jmgilman/go/repohealth/errors"
	"github.com/jmgilman/go/repohealth/fetch"
	"github.com/jmgilman/go/repohealth/mocks"
	"github.com/jmgilman/go/repohealth/quota"
)

// Example test showing how to use FetcherMock and QuotaCheckerMock.
func TestExampleUsingMock(t *testing.T) {
	ctx := context.Background()

	// Serve only the repository metadata; every other resource fails.
	fetcher := &mocks.FetcherMock{
		FetchFunc: func(_ context.Context, r fetch.Request) (json.RawMessage, error) {
			if strings.HasSuffix(r.URL, "/repos/testowner/testrepo") {
				return json.RawMessage(`{"id": 123, "name": "testrepo", "full_name": "testowner/testrepo", "owner": {"login": "testowner"}, "default_branch": "main"}`), nil
			}
			return nil, errors.New(errors.CodeNetwork, "unavailable")
		},
	}
	quotaChecker := &mocks.QuotaCheckerMock{
		StatusFunc: func(_ context.Context, _ string) (quota.Status, error) {
			return quota.Status{Remaining: 4000, Limit: 5000, ResetAt: time.Now().Add(time.Hour)}, nil
		},
	}

	client, err := repohealth.New(
		repohealth.WithFetcher(fetcher),
		repohealth.WithQuotaChecker(quotaChecker),
	)
	require.NoError(t, err)

	snapshot, err := client.AnalyzeRepository(ctx, "testowner", "testrepo", "")

	// Assert behavior
	require.NoError(t, err)
	assert.Equal(t, "testowner", snapshot.Repository.Owner)
	assert.Equal(t, "testrepo", snapshot.Repository.Name)
	assert.Equal(t, "main", snapshot.Repository.DefaultBranch)
	assert.Len(t, fetcher.FetchCalls(), 5)
	assert.Len(t, quotaChecker.StatusCalls(), 1)
}
