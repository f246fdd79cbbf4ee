// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"path/filepath"
	"time"
)

const (
	DefaultReportDir      = "performance_report"
	DefaultStateDir       = ".benchtrack/run"
	DefaultPrefix         = "BM_"
	DefaultBenchTimeout   = 30 * time.Minute
	DefaultBuildTimeout   = 30 * time.Minute
	DefaultBranch         = "master"
	DefaultTitle          = "Performance Report"
	DefaultWidthInches    = 12
	DefaultHeightInches   = 3
	DefaultCommitLabelLen = 6
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills unset fields. Directories nested under the report
// directory follow it when only ReportDir is set.
func ApplyDefaults(cfg *Config) {
	if cfg.ReportDir == "" {
		cfg.ReportDir = DefaultReportDir
	}
	if cfg.ResultsDir == "" {
		cfg.ResultsDir = filepath.Join(cfg.ReportDir, "results")
	}
	if cfg.PlotsDir == "" {
		cfg.PlotsDir = filepath.Join(cfg.ReportDir, "plots")
	}
	if cfg.ReportFile == "" {
		cfg.ReportFile = filepath.Join(cfg.ReportDir, "report.md")
	}
	if cfg.StateDir == "" {
		cfg.StateDir = DefaultStateDir
	}

	if cfg.Benchmark.Timeout == 0 {
		cfg.Benchmark.Timeout = DefaultBenchTimeout
	}
	if cfg.Benchmark.Prefix == "" {
		cfg.Benchmark.Prefix = DefaultPrefix
	}
	if cfg.Build.Timeout == 0 {
		cfg.Build.Timeout = DefaultBuildTimeout
	}

	if cfg.Report.Title == "" {
		cfg.Report.Title = DefaultTitle
	}
	if cfg.Report.LinkMode == "" {
		cfg.Report.LinkMode = LinkModeRemote
	}
	if cfg.Report.Branch == "" {
		cfg.Report.Branch = DefaultBranch
	}

	if cfg.Plot.Theme == "" {
		cfg.Plot.Theme = ThemeDark
	}
	if cfg.Plot.WidthInches == 0 {
		cfg.Plot.WidthInches = DefaultWidthInches
	}
	if cfg.Plot.HeightInches == 0 {
		cfg.Plot.HeightInches = DefaultHeightInches
	}
	if cfg.Plot.CommitLabelLen == 0 {
		cfg.Plot.CommitLabelLen = DefaultCommitLabelLen
	}
}
