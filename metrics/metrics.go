// Package metrics derives health metrics from a repository snapshot.
//
// Every figure is computed from data already present in a
// repohealth.RepositorySnapshot; nothing here performs I/O. Sections listed
// in RepositorySnapshot.Missing simply contribute zero.
package metrics

import (
	"math"
	"slices"
	"time"

	"github.com/jmgilman/go/repohealth"
)

// MaxScore is the upper bound of Metrics.HealthScore.
const MaxScore = 100

// recentWeeks is the number of trailing participation weeks averaged into
// WeeklyCommits.
const recentWeeks = 4

// Metrics are the figures derived from a snapshot.
type Metrics struct {
	// AvgIssueResolutionHours is the mean time between opening and closing
	// of closed issues. Zero when no issue was closed.
	AvgIssueResolutionHours float64 `json:"avg_issue_resolution_time"`

	// PRFrequency is merged pull requests per week across the span between
	// the first and last merge.
	PRFrequency float64 `json:"pr_frequency"`

	// AvgPRReviewHours is the mean time between opening and merging of
	// merged pull requests.
	AvgPRReviewHours float64 `json:"avg_pr_review_time"`

	// WeeklyCommits is the mean commit count of the last four weeks.
	WeeklyCommits float64 `json:"weekly_commits"`

	// HealthScore is a 0-100 composite score.
	HealthScore int `json:"health_score"`

	MergedPRs     int             `json:"merged_prs"`
	ClosedIssues  int             `json:"closed_issues"`
	MonthlyIssues []MonthlyIssues `json:"monthly_issues"`
}

// MonthlyIssues counts issues opened and closed in one calendar month.
type MonthlyIssues struct {
	Month  time.Time `json:"month"`
	Opened int       `json:"opened"`
	Closed int       `json:"closed"`
}

// Label formats the month as "Jan 2024".
func (m MonthlyIssues) Label() string {
	return m.Month.Format("Jan 2006")
}

// Compute derives Metrics from s. now anchors the recency factor of the
// health score.
func Compute(s *repohealth.RepositorySnapshot, now time.Time) Metrics {
	if s == nil {
		return Metrics{MonthlyIssues: []MonthlyIssues{}}
	}

	m := Metrics{}
	m.AvgIssueResolutionHours, m.ClosedIssues = issueResolution(s.Issues)

	merged := mergedPullRequests(s.PullRequests)
	m.MergedPRs = len(merged)
	m.PRFrequency = prFrequency(merged)
	m.AvgPRReviewHours = prReviewTime(merged)

	m.WeeklyCommits = weeklyCommits(s.Participation.All)
	m.MonthlyIssues = monthlyIssues(s.Issues)
	m.HealthScore = Score(s.Repository, len(s.Contributors), m, now)

	return m
}

func issueResolution(issues []repohealth.IssueData) (avg float64, closed int) {
	var total float64
	for _, issue := range issues {
		if issue.State != "closed" || issue.ClosedAt == nil {
			continue
		}
		total += issue.ClosedAt.Sub(issue.CreatedAt).Hours()
		closed++
	}
	if closed == 0 {
		return 0, 0
	}
	return round(total/float64(closed), 2), closed
}

// mergedPullRequests returns the merged pull requests ordered by merge time.
func mergedPullRequests(prs []repohealth.PullRequestData) []repohealth.PullRequestData {
	var merged []repohealth.PullRequestData
	for _, pr := range prs {
		if pr.Merged() {
			merged = append(merged, pr)
		}
	}
	slices.SortStableFunc(merged, func(a, b repohealth.PullRequestData) int {
		return a.MergedAt.Compare(*b.MergedAt)
	})
	return merged
}

// prFrequency spreads the merged count over the whole days between the first
// and last merge. Merges within a single day report the raw count.
func prFrequency(merged []repohealth.PullRequestData) float64 {
	if len(merged) == 0 {
		return 0
	}

	first := *merged[0].MergedAt
	last := *merged[len(merged)-1].MergedAt
	days := int(last.Sub(first).Hours() / 24)
	if days <= 0 {
		return float64(len(merged))
	}
	return round(float64(len(merged))/(float64(days)/7), 2)
}

func prReviewTime(merged []repohealth.PullRequestData) float64 {
	if len(merged) == 0 {
		return 0
	}

	var total float64
	for _, pr := range merged {
		total += pr.MergedAt.Sub(pr.CreatedAt).Hours()
	}
	return round(total/float64(len(merged)), 2)
}

func weeklyCommits(all []int) float64 {
	if len(all) == 0 {
		return 0
	}

	recent := all[max(0, len(all)-recentWeeks):]
	sum := 0
	for _, n := range recent {
		sum += n
	}
	return round(float64(sum)/float64(len(recent)), 1)
}

// monthlyIssues buckets issues by the UTC month they were opened and closed.
// The result covers every month from the earliest to the latest event,
// including months without activity.
func monthlyIssues(issues []repohealth.IssueData) []MonthlyIssues {
	if len(issues) == 0 {
		return []MonthlyIssues{}
	}

	opened := map[time.Time]int{}
	closed := map[time.Time]int{}
	var first, last time.Time

	observe := func(t time.Time, counts map[time.Time]int) {
		month := monthOf(t)
		counts[month]++
		if first.IsZero() || month.Before(first) {
			first = month
		}
		if last.IsZero() || month.After(last) {
			last = month
		}
	}

	for _, issue := range issues {
		observe(issue.CreatedAt, opened)
		if issue.State == "closed" && issue.ClosedAt != nil {
			observe(*issue.ClosedAt, closed)
		}
	}

	var out []MonthlyIssues
	for month := first; !month.After(last); month = month.AddDate(0, 1, 0) {
		out = append(out, MonthlyIssues{Month: month, Opened: opened[month], Closed: closed[month]})
	}
	return out
}

func monthOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
