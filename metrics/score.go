package metrics

import (
	"time"

	"github.com/jmgilman/go/repohealth"
)

// factorMax is the most any single factor contributes.
const factorMax = 20

// Score combines five factors worth up to 20 points each: how recently the
// repository was updated, the number of contributors, the average issue
// resolution time, the merged pull request rate and community interest.
func Score(repo repohealth.RepositoryData, contributors int, m Metrics, now time.Time) int {
	score := recencyPoints(repo.UpdatedAt, now) +
		contributorPoints(contributors) +
		resolutionPoints(m.AvgIssueResolutionHours) +
		prPoints(m.PRFrequency) +
		communityPoints(repo.Stars, repo.Forks)

	return min(score, MaxScore)
}

func recencyPoints(updated, now time.Time) int {
	if updated.IsZero() {
		return 0
	}

	days := int(now.Sub(updated).Hours() / 24)
	switch {
	case days < 7:
		return factorMax
	case days < 30:
		return 15
	case days < 90:
		return 10
	case days < 365:
		return 5
	default:
		return 0
	}
}

func contributorPoints(n int) int {
	switch {
	case n >= 10:
		return factorMax
	case n >= 5:
		return 15
	case n >= 2:
		return 10
	case n >= 1:
		return 5
	default:
		return 0
	}
}

// resolutionPoints scores the average resolution time in hours. No closed
// issues scores nothing.
func resolutionPoints(hours float64) int {
	switch {
	case hours <= 0:
		return 0
	case hours <= 24:
		return factorMax
	case hours <= 72:
		return 15
	case hours <= 168:
		return 10
	case hours <= 720:
		return 5
	default:
		return 0
	}
}

func prPoints(perWeek float64) int {
	switch {
	case perWeek >= 10:
		return factorMax
	case perWeek >= 5:
		return 15
	case perWeek >= 1:
		return 10
	case perWeek > 0:
		return 5
	default:
		return 0
	}
}

func communityPoints(stars, forks int) int {
	switch {
	case stars >= 1000 || forks >= 500:
		return factorMax
	case stars >= 100 || forks >= 50:
		return 15
	case stars >= 10 || forks >= 5:
		return 10
	case stars > 0 || forks > 0:
		return 5
	default:
		return 0
	}
}
