package repohealth

import (
	"context"
	"encoding/json"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/google/go-github/v67/github"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/jmgilman/go/repohealth/errors"
	"github.com/jmgilman/go/repohealth/fetch"
)

// Fixed page sizes for the secondary resources.
const (
	contributorsPerPage = "10"
	issuesPerPage       = "100"
)

// aggregate fetches the repository metadata and then, concurrently, the
// contributors, both statistics series and the combined issue listing.
func (c *Client) aggregate(ctx context.Context, log zerolog.Logger, owner, repo, credential string) (*RepositorySnapshot, error) {
	base := c.baseURL + "repos/" + url.PathEscape(owner) + "/" + url.PathEscape(repo)
	header := c.headers(credential)

	ghRepo, err := fetchJSON[github.Repository](ctx, c.fetcher, fetch.Request{URL: base, Header: header})
	if err != nil {
		return nil, primaryError(err, owner, repo)
	}

	snapshot := &RepositorySnapshot{
		Repository:    convertRepository(&ghRepo),
		Contributors:  []ContributorData{},
		CodeFrequency: []CodeFrequencyWeek{},
		Issues:        []IssueData{},
		PullRequests:  []PullRequestData{},
	}

	var (
		mu      sync.Mutex
		missing []string
	)
	absorb := func(section string, err error) {
		log.Warn().
			Err(err).
			Str("section", section).
			Str("code", string(errors.GetCode(err))).
			Msg("secondary resource unavailable")
		mu.Lock()
		missing = append(missing, section)
		mu.Unlock()
	}

	var wg conc.WaitGroup

	wg.Go(func() {
		req := fetch.Request{URL: base + "/contributors", Header: header, Params: map[string]string{"per_page": contributorsPerPage}}
		contributors, err := fetchJSON[[]*github.Contributor](ctx, c.fetcher, req)
		if err != nil {
			absorb(SectionContributors, err)
			return
		}
		snapshot.Contributors = convertContributors(contributors)
	})

	wg.Go(func() {
		req := fetch.Request{URL: base + "/stats/participation", Header: header}
		participation, err := fetchJSON[github.RepositoryParticipation](ctx, c.fetcher, req)
		if err != nil {
			absorb(SectionParticipation, err)
			return
		}
		snapshot.Participation = ParticipationStats{All: participation.All, Owner: participation.Owner}
	})

	wg.Go(func() {
		req := fetch.Request{URL: base + "/stats/code_frequency", Header: header}
		weeks, err := fetchJSON[[][]int64](ctx, c.fetcher, req)
		if err != nil {
			absorb(SectionCodeFrequency, err)
			return
		}
		snapshot.CodeFrequency = convertCodeFrequency(weeks)
	})

	wg.Go(func() {
		req := fetch.Request{
			URL:    base + "/issues",
			Header: header,
			Params: map[string]string{"state": "all", "per_page": issuesPerPage},
		}
		items, err := fetchJSON[[]*github.Issue](ctx, c.fetcher, req)
		if err != nil {
			absorb(SectionIssues, err)
			return
		}
		snapshot.Issues, snapshot.PullRequests = partitionIssues(items)
	})

	wg.Wait()

	slices.Sort(missing)
	snapshot.Missing = missing
	snapshot.FetchedAt = c.now()
	return snapshot, nil
}

// fetchJSON fetches r and decodes the payload into T.
func fetchJSON[T any](ctx context.Context, f Fetcher, r fetch.Request) (T, error) {
	var v T
	payload, err := f.Fetch(ctx, r)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(payload, &v); err != nil {
		return v, errors.WithContext(
			errors.Wrap(err, errors.CodeInvalidResponse, "failed to decode response"), "url", r.URL)
	}
	return v, nil
}

// primaryError maps a failed metadata fetch onto the aggregation error.
// Rate limiting keeps its own code so callers can back off; everything else
// means the repository is not reachable and is reported as not found.
func primaryError(err error, owner, repo string) error {
	fields := map[string]any{"owner": owner, "repo": repo}

	switch errors.GetCode(err) {
	case errors.CodeRateLimit, errors.CodeUnauthorized, errors.CodeTimeout, errors.CodeInvalidResponse:
		return errors.WithContextMap(err, fields)
	default:
		return errors.WrapWithContext(err, errors.CodeNotFound, "repository not found", fields)
	}
}

func convertRepository(r *github.Repository) RepositoryData {
	data := RepositoryData{
		ID:            r.GetID(),
		Name:          r.GetName(),
		FullName:      r.GetFullName(),
		Description:   r.GetDescription(),
		Language:      r.GetLanguage(),
		License:       r.GetLicense().GetName(),
		DefaultBranch: r.GetDefaultBranch(),
		Private:       r.GetPrivate(),
		Fork:          r.GetFork(),
		Archived:      r.GetArchived(),
		Stars:         r.GetStargazersCount(),
		Forks:         r.GetForksCount(),
		OpenIssues:    r.GetOpenIssuesCount(),
		Watchers:      r.GetWatchersCount(),
		HTMLURL:       r.GetHTMLURL(),
		CreatedAt:     r.GetCreatedAt().Time,
		UpdatedAt:     r.GetUpdatedAt().Time,
		PushedAt:      r.GetPushedAt().Time,
	}

	if owner := r.GetOwner(); owner != nil {
		data.Owner = owner.GetLogin()
	}

	return data
}

func convertContributors(in []*github.Contributor) []ContributorData {
	out := make([]ContributorData, 0, len(in))
	for _, c := range in {
		if c == nil {
			continue
		}
		out = append(out, ContributorData{
			Login:         c.GetLogin(),
			Contributions: c.GetContributions(),
			AvatarURL:     c.GetAvatarURL(),
		})
	}
	return out
}

// convertCodeFrequency decodes [week, additions, deletions] triples.
// Malformed rows are skipped.
func convertCodeFrequency(rows [][]int64) []CodeFrequencyWeek {
	out := make([]CodeFrequencyWeek, 0, len(rows))
	for _, row := range rows {
		if len(row) != 3 {
			continue
		}
		out = append(out, CodeFrequencyWeek{
			Week:      time.Unix(row[0], 0).UTC(),
			Additions: int(row[1]),
			Deletions: int(row[2]),
		})
	}
	return out
}

// partitionIssues splits the combined issue listing into issues and pull
// requests. An item is a pull request when it carries a pull_request field.
func partitionIssues(items []*github.Issue) ([]IssueData, []PullRequestData) {
	issues := make([]IssueData, 0, len(items))
	pulls := make([]PullRequestData, 0)

	for _, item := range items {
		if item == nil {
			continue
		}

		if item.IsPullRequest() {
			pr := PullRequestData{
				Number:    item.GetNumber(),
				Title:     item.GetTitle(),
				State:     item.GetState(),
				Author:    item.GetUser().GetLogin(),
				HTMLURL:   item.GetHTMLURL(),
				CreatedAt: item.GetCreatedAt().Time,
				ClosedAt:  timePtr(item.ClosedAt),
			}
			if links := item.GetPullRequestLinks(); links != nil {
				pr.MergedAt = timePtr(links.MergedAt)
			}
			pulls = append(pulls, pr)
			continue
		}

		labels := make([]string, 0, len(item.Labels))
		for _, l := range item.Labels {
			labels = append(labels, l.GetName())
		}

		issues = append(issues, IssueData{
			Number:    item.GetNumber(),
			Title:     item.GetTitle(),
			State:     item.GetState(),
			Author:    item.GetUser().GetLogin(),
			Labels:    labels,
			Comments:  item.GetComments(),
			HTMLURL:   item.GetHTMLURL(),
			CreatedAt: item.GetCreatedAt().Time,
			ClosedAt:  timePtr(item.ClosedAt),
		})
	}

	return issues, pulls
}

func timePtr(ts *github.Timestamp) *time.Time {
	if ts == nil || ts.IsZero() {
		return nil
	}
	t := ts.Time
	return &t
}
