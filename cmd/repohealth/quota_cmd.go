package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmgilman/go/repohealth/quota"
)

func newQuotaCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "quota",
		Short: "Show the remaining API quota",
		Long: `Show how many GitHub API requests the configured token has left.

Examples:
  repohealth quota
  repohealth quota --token ghp_xxx --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			status, err := client.CheckQuota(cmd.Context(), "")
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), status)
			}
			printQuota(cmd.OutOrStdout(), status, cfg.Quota.Threshold, time.Now())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the status as JSON")

	return cmd
}

func printQuota(w io.Writer, s quota.Status, threshold int, now time.Time) {
	fmt.Fprintf(w, "Remaining: %s of %s\n", humanize.Comma(int64(s.Remaining)), humanize.Comma(int64(s.Limit)))
	fmt.Fprintf(w, "Resets:    %s (%s)\n",
		humanize.RelTime(s.ResetAt, now, "ago", "from now"),
		s.ResetAt.Local().Format(time.Kitchen))
	if s.Exhausted(threshold) {
		fmt.Fprintln(w, "Quota nearly exhausted: analyses are refused until the reset.")
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
