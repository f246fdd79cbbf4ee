// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show last run status",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			last, err := s.state().ReadLastRun()
			if err != nil {
				return exitError(err)
			}

			w := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(w)
				encoder.SetIndent("", "  ")
				return encoder.Encode(last)
			}

			if last == nil {
				_, _ = fmt.Fprintln(w, "No run state found.")
				return nil
			}

			_, _ = fmt.Fprintf(w, "Command: %s\n", last.Command)
			_, _ = fmt.Fprintf(w, "Status: %s\n", last.Status)
			if last.Commit != "" {
				_, _ = fmt.Fprintf(w, "Commit: %s\n", last.Commit)
			}
			_, _ = fmt.Fprintf(w, "Benchmarks: %d\n", last.Benchmarks)
			for _, st := range last.Stages {
				line := fmt.Sprintf("  %-20s %s", st.Stage, st.Status)
				if st.Note != "" {
					line += "  " + st.Note
				}
				_, _ = fmt.Fprintln(w, line)
			}
			if len(last.Failed) > 0 {
				_, _ = fmt.Fprintln(w, "Failed:")
				for _, f := range last.Failed {
					_, _ = fmt.Fprintf(w, "  - %s\n", f)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output results in JSON")
	return cmd
}
