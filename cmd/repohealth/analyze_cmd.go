package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmgilman/go/repohealth"
	"github.com/jmgilman/go/repohealth/internal/server"
	"github.com/jmgilman/go/repohealth/metrics"
)

func newAnalyzeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze <repository>",
		Short: "Analyze a repository",
		Long: `Fetch a repository and print its health metrics.

The repository may be given as owner/repo or as any GitHub URL.

Examples:
  repohealth analyze octocat/hello-world
  repohealth analyze https://github.com/octocat/hello-world --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, err := repohealth.ParseRepositoryURL(args[0])
			if err != nil {
				return err
			}

			client, err := newClient()
			if err != nil {
				return err
			}

			snapshot, err := client.AnalyzeRepository(cmd.Context(), owner, repo, "")
			if err != nil {
				return err
			}

			now := time.Now()
			m := metrics.Compute(snapshot, now)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), server.AnalyzeResponse{RepositorySnapshot: snapshot, Metrics: m})
			}
			printAnalysis(cmd.OutOrStdout(), snapshot, m, now)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the snapshot and metrics as JSON")

	return cmd
}

func printAnalysis(w io.Writer, s *repohealth.RepositorySnapshot, m metrics.Metrics, now time.Time) {
	r := s.Repository

	fmt.Fprintf(w, "%s\n", r.FullName)
	if r.Description != "" {
		fmt.Fprintf(w, "  %s\n", r.Description)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Health score:       %d/%d\n", m.HealthScore, metrics.MaxScore)
	fmt.Fprintf(w, "Stars / forks:      %s / %s\n", humanize.Comma(int64(r.Stars)), humanize.Comma(int64(r.Forks)))
	fmt.Fprintf(w, "Last updated:       %s\n", humanize.RelTime(r.UpdatedAt, now, "ago", "from now"))
	fmt.Fprintf(w, "Contributors:       %d\n", len(s.Contributors))
	fmt.Fprintf(w, "Weekly commits:     %.1f\n", m.WeeklyCommits)
	fmt.Fprintf(w, "Issue resolution:   %.2f hours (%d closed)\n", m.AvgIssueResolutionHours, m.ClosedIssues)
	fmt.Fprintf(w, "Merged PRs / week:  %.2f (%d merged)\n", m.PRFrequency, m.MergedPRs)
	fmt.Fprintf(w, "PR review time:     %.2f hours\n", m.AvgPRReviewHours)

	if len(s.Missing) > 0 {
		fmt.Fprintf(w, "\nUnavailable: %s\n", strings.Join(s.Missing, ", "))
	}
}
