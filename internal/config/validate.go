// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"strings"
)

// Validate checks settings needed by every command.
func (c *Config) Validate() error {
	for name, dir := range map[string]string{
		"report_dir":  c.ReportDir,
		"results_dir": c.ResultsDir,
		"plots_dir":   c.PlotsDir,
		"report_file": c.ReportFile,
		"state_dir":   c.StateDir,
	} {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
	}

	if strings.TrimSpace(c.Benchmark.Prefix) != c.Benchmark.Prefix || c.Benchmark.Prefix == "" {
		return fmt.Errorf("benchmark.prefix %q must be non-empty without surrounding whitespace", c.Benchmark.Prefix)
	}
	if c.Benchmark.Timeout < 0 {
		return fmt.Errorf("benchmark.timeout must not be negative")
	}
	if c.Build.Timeout < 0 {
		return fmt.Errorf("build.timeout must not be negative")
	}

	switch c.Report.LinkMode {
	case LinkModeRemote, LinkModeRelative:
	default:
		return fmt.Errorf("report.link_mode has invalid value: %s", c.Report.LinkMode)
	}
	if strings.ContainsAny(c.Report.Branch, " \t\n") {
		return fmt.Errorf("report.branch has invalid value: %q", c.Report.Branch)
	}

	switch c.Plot.Theme {
	case ThemeDark, ThemeLight:
	default:
		return fmt.Errorf("plot.theme has invalid value: %s", c.Plot.Theme)
	}
	if c.Plot.WidthInches <= 0 || c.Plot.HeightInches <= 0 {
		return fmt.Errorf("plot dimensions must be positive")
	}
	if c.Plot.CommitLabelLen <= 0 {
		return fmt.Errorf("plot.commit_label_len must be positive")
	}

	return nil
}

// ValidateRun additionally checks what a benchmarking run needs.
func (c *Config) ValidateRun() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Benchmark.Executable) == "" {
		return fmt.Errorf("benchmark.executable is required (set it in %s or pass --bench)", DefaultFileName)
	}
	return nil
}
