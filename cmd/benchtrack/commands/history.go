// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bartekus/benchtrack/cmd/benchtrack/internal/clierr"
	"github.com/bartekus/benchtrack/internal/history"
	"github.com/bartekus/benchtrack/internal/vcs"
)

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history <benchmark>",
		Short: "Show a benchmark's values across the commit history",
		Long: `Show one point per commit, oldest first. Commits without a recorded
value are shown as "-".`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}

			name := args[0]
			records, err := s.store().ReadAll(name)
			if errors.Is(err, os.ErrNotExist) {
				return clierr.Newf(clierr.CodeUsage, "no history recorded for %s", name)
			}
			if err != nil {
				return exitError(err)
			}
			commits, err := s.repo.Commits()
			if err != nil {
				return exitError(err)
			}
			series := history.Reconcile(name, records, vcs.Chronological(commits))

			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(series)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, pt := range series.Points {
				id := vcs.ShortID(pt.Commit, s.cfg.Plot.CommitLabelLen)
				if !pt.Present {
					_, _ = fmt.Fprintf(tw, "%s\t-\t\n", id)
					continue
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", id, strconv.FormatFloat(pt.Value, 'f', -1, 64), pt.Unit)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if series.Orphans > 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "(%d records for commits outside the current history)\n", series.Orphans)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output results in JSON")
	return cmd
}
