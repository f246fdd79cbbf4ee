// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads benchtrack's YAML configuration.
package config

import (
	"path/filepath"
	"time"
)

// DefaultFileName is looked up in the repository root when no explicit
// config path is given.
const DefaultFileName = ".benchtrack.yaml"

// Link modes for the generated report.
const (
	LinkModeRemote   = "remote"
	LinkModeRelative = "relative"
)

// Plot themes.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Config is the complete tracker configuration. Relative paths are
// resolved against the repository root.
type Config struct {
	ReportDir  string `yaml:"report_dir"`
	ResultsDir string `yaml:"results_dir"`
	PlotsDir   string `yaml:"plots_dir"`
	ReportFile string `yaml:"report_file"`
	StateDir   string `yaml:"state_dir"`

	Benchmark BenchmarkConfig `yaml:"benchmark"`
	Build     BuildConfig     `yaml:"build"`
	Gate      GateConfig      `yaml:"gate"`
	Report    ReportConfig    `yaml:"report"`
	Plot      PlotConfig      `yaml:"plot"`
}

// BenchmarkConfig describes the benchmark executable and its output.
type BenchmarkConfig struct {
	Executable string        `yaml:"executable"`
	Args       []string      `yaml:"args"`
	Timeout    time.Duration `yaml:"timeout"`
	Prefix     string        `yaml:"prefix"`
	Strict     bool          `yaml:"strict"`
}

// BuildConfig describes the optional build step run before benchmarking.
type BuildConfig struct {
	Command []string      `yaml:"command"`
	Timeout time.Duration `yaml:"timeout"`
}

// GateConfig tunes the clean working tree check.
type GateConfig struct {
	// Ignore lists repository-relative paths whose changes do not make
	// the tree dirty. The report directory is always included.
	Ignore []string `yaml:"ignore"`
}

// ReportConfig controls how the report links to plot images.
type ReportConfig struct {
	Title    string `yaml:"title"`
	LinkMode string `yaml:"link_mode"`
	Branch   string `yaml:"branch"`
	LinkBase string `yaml:"link_base"`
}

// PlotConfig controls plot appearance.
type PlotConfig struct {
	Theme          string  `yaml:"theme"`
	WidthInches    float64 `yaml:"width_inches"`
	HeightInches   float64 `yaml:"height_inches"`
	CommitLabelLen int     `yaml:"commit_label_len"`
}

// Paths holds absolute output locations.
type Paths struct {
	Root       string
	ReportDir  string
	ResultsDir string
	PlotsDir   string
	ReportFile string
	StateDir   string
}

// Resolve anchors every configured path at root.
func (c *Config) Resolve(root string) Paths {
	abs := func(p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(root, p)
	}
	return Paths{
		Root:       root,
		ReportDir:  abs(c.ReportDir),
		ResultsDir: abs(c.ResultsDir),
		PlotsDir:   abs(c.PlotsDir),
		ReportFile: abs(c.ReportFile),
		StateDir:   abs(c.StateDir),
	}
}

// ExecutablePath returns the benchmark executable anchored at root.
func (c *Config) ExecutablePath(root string) string {
	if c.Benchmark.Executable == "" || filepath.IsAbs(c.Benchmark.Executable) {
		return c.Benchmark.Executable
	}
	return filepath.Join(root, c.Benchmark.Executable)
}
