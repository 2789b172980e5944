package repohealth

import "time"

// RepositoryData contains repository metadata.
type RepositoryData struct {
	// Identification
	ID       int64  `json:"id"`
	Owner    string `json:"owner"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`

	// Metadata
	Description   string `json:"description"`
	Language      string `json:"language"`
	License       string `json:"license"`
	DefaultBranch string `json:"default_branch"`
	Private       bool   `json:"private"`
	Fork          bool   `json:"fork"`
	Archived      bool   `json:"archived"`

	// Community
	Stars      int `json:"stars"`
	Forks      int `json:"forks"`
	OpenIssues int `json:"open_issues"`
	Watchers   int `json:"watchers"`

	// URL
	HTMLURL string `json:"html_url"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	PushedAt  time.Time `json:"pushed_at"`
}

// ContributorData is one entry of the top contributors list.
type ContributorData struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
	AvatarURL     string `json:"avatar_url"`
}

// ParticipationStats holds weekly commit counts for the last 52 weeks,
// oldest first. Owner counts the repository owner's commits only.
type ParticipationStats struct {
	All   []int `json:"all"`
	Owner []int `json:"owner"`
}

// CodeFrequencyWeek is the number of lines added and deleted in one week.
// Deletions are reported as a non-positive number.
type CodeFrequencyWeek struct {
	Week      time.Time `json:"week"`
	Additions int       `json:"additions"`
	Deletions int       `json:"deletions"`
}

// IssueData contains issue information.
type IssueData struct {
	// Identification
	Number int `json:"number"`

	// Content
	Title string `json:"title"`

	// State and metadata
	State    string   `json:"state"`
	Author   string   `json:"author"`
	Labels   []string `json:"labels"`
	Comments int      `json:"comments"`

	// URL
	HTMLURL string `json:"html_url"`

	// Timestamps
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

// PullRequestData contains pull request information as reported by the
// issues listing.
type PullRequestData struct {
	// Identification
	Number int `json:"number"`

	// Content
	Title string `json:"title"`

	// State and metadata
	State  string `json:"state"`
	Author string `json:"author"`

	// URL
	HTMLURL string `json:"html_url"`

	// Timestamps
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	MergedAt  *time.Time `json:"merged_at,omitempty"`
}

// Merged reports whether the pull request was merged.
func (p PullRequestData) Merged() bool {
	return p.MergedAt != nil
}

// Section names reported in RepositorySnapshot.Missing.
const (
	SectionContributors  = "contributors"
	SectionParticipation = "participation"
	SectionCodeFrequency = "code_frequency"
	SectionIssues        = "issues"
)

// RepositorySnapshot is everything fetched for one repository.
//
// Only Repository is guaranteed. Any other section may be empty when its
// fetch failed; the names of such sections are listed in Missing.
type RepositorySnapshot struct {
	Repository    RepositoryData      `json:"repository"`
	Contributors  []ContributorData   `json:"contributors"`
	Participation ParticipationStats  `json:"participation"`
	CodeFrequency []CodeFrequencyWeek `json:"code_frequency"`
	Issues        []IssueData         `json:"issues"`
	PullRequests  []PullRequestData   `json:"pull_requests"`
	Missing       []string            `json:"missing,omitempty"`
	FetchedAt     time.Time           `json:"fetched_at"`
}
