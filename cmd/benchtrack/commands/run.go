// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bartekus/benchtrack/cmd/benchtrack/internal/clierr"
	"github.com/bartekus/benchtrack/internal/pipeline"
	"github.com/bartekus/benchtrack/internal/vcs"
)

func newRunCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Build, benchmark the current commit and regenerate the report",
		Long: `Run the full pipeline: build, refuse to continue on a dirty working tree,
run the benchmark executable, append each result to its history, then render
every plot and the report. Equivalent to invoking benchtrack without a command.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, opts)
		},
	}
}

func newReportCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Regenerate plots and the report from stored history",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			p, err := s.pipeline()
			if err != nil {
				return err
			}
			out, err := p.Regenerate(cmd.Context())
			printOutcome(cmd, s, out)
			return exitError(err)
		},
	}
}

func runPipeline(cmd *cobra.Command, opts *globalOptions) error {
	s, err := opts.open(cmd)
	if err != nil {
		return err
	}
	if err := s.cfg.ValidateRun(); err != nil {
		return clierr.Wrap(clierr.CodeUsage, "invalid configuration", err)
	}
	p, err := s.pipeline()
	if err != nil {
		return err
	}

	out, err := p.Run(cmd.Context())
	printOutcome(cmd, s, out)
	return exitError(err)
}

func printOutcome(cmd *cobra.Command, s *session, out *pipeline.Outcome) {
	if out == nil {
		return
	}
	w := cmd.OutOrStdout()
	if out.Recorded > 0 {
		_, _ = fmt.Fprintf(w, "Recorded %d benchmarks at %s\n", out.Recorded, vcs.ShortID(out.Commit, s.cfg.Plot.CommitLabelLen))
	}
	if out.Plots == nil {
		return
	}
	_, _ = fmt.Fprintf(w, "Rendered %d of %d plots\n", len(out.Plots), len(out.Benchmarks))
	if rel, err := filepath.Rel(s.paths.Root, out.ReportFile); err == nil {
		_, _ = fmt.Fprintf(w, "Report: %s\n", filepath.ToSlash(rel))
	}
	for _, name := range out.Failed {
		_, _ = fmt.Fprintf(w, "FAIL: %s\n", name)
	}
}
