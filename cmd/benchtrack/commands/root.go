// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Benchtrack - tracks benchmark results across the commit history of a repository.
It runs a benchmark executable on a clean working tree, appends every result to a per-benchmark history keyed by commit, and renders one plot per benchmark plus a Markdown report linking them.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bartekus/benchtrack/cmd/benchtrack/internal/clierr"
)

// NewRootCmd constructs the benchtrack root Cobra command. Invoked without
// a subcommand it performs a full run.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("BENCHTRACK_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "benchtrack",
		Short: "Benchtrack - benchmark history tracking per commit",
		Long: `Benchtrack runs a benchmark executable against the current commit, appends each
result to its history, and regenerates one plot per benchmark plus a Markdown report.`,
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, opts)
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Wrap(clierr.CodeUsage, "", err)
	})

	opts.register(cmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of benchtrack",
		Args:  usageArgs(cobra.NoArgs),
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "benchtrack version %s\n", version)
		},
	})

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newReportCmd(opts))
	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))
	cmd.AddCommand(newStatusCmd(opts))

	return cmd
}

// usageArgs maps positional argument errors to the usage exit code.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return clierr.Wrap(clierr.CodeUsage, "", err)
		}
		return nil
	}
}
