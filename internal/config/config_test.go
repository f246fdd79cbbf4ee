// SPDX-License-Identifier: AGPL-3.0-or-later
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "performance_report", cfg.ReportDir)
	assert.Equal(t, filepath.Join("performance_report", "results"), cfg.ResultsDir)
	assert.Equal(t, filepath.Join("performance_report", "plots"), cfg.PlotsDir)
	assert.Equal(t, filepath.Join("performance_report", "report.md"), cfg.ReportFile)
	assert.Equal(t, ".benchtrack/run", cfg.StateDir)
	assert.Equal(t, "BM_", cfg.Benchmark.Prefix)
	assert.Equal(t, 30*time.Minute, cfg.Benchmark.Timeout)
	assert.Equal(t, LinkModeRemote, cfg.Report.LinkMode)
	assert.Equal(t, "master", cfg.Report.Branch)
	assert.Equal(t, ThemeDark, cfg.Plot.Theme)
	assert.Equal(t, 6, cfg.Plot.CommitLabelLen)
	require.NoError(t, cfg.Validate())
}

func TestApplyDefaults_NestedDirsFollowReportDir(t *testing.T) {
	cfg := &Config{ReportDir: "perf"}
	ApplyDefaults(cfg)

	assert.Equal(t, filepath.Join("perf", "results"), cfg.ResultsDir)
	assert.Equal(t, filepath.Join("perf", "plots"), cfg.PlotsDir)
	assert.Equal(t, filepath.Join("perf", "report.md"), cfg.ReportFile)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
report_dir: Build
results_dir: Build/performance_results
benchmark:
  executable: build/perf_tests
  args: ["--benchmark_min_time=0.1s"]
  timeout: 5m
  strict: true
build:
  command: ["cmake", "--build", "build"]
gate:
  ignore: [docs]
report:
  link_mode: relative
  branch: main
plot:
  theme: light
`))
	require.NoError(t, err)
	ApplyDefaults(cfg)

	assert.Equal(t, "Build", cfg.ReportDir)
	assert.Equal(t, "Build/performance_results", cfg.ResultsDir)
	assert.Equal(t, filepath.Join("Build", "plots"), cfg.PlotsDir)
	assert.Equal(t, "build/perf_tests", cfg.Benchmark.Executable)
	assert.Equal(t, []string{"--benchmark_min_time=0.1s"}, cfg.Benchmark.Args)
	assert.Equal(t, 5*time.Minute, cfg.Benchmark.Timeout)
	assert.True(t, cfg.Benchmark.Strict)
	assert.Equal(t, []string{"cmake", "--build", "build"}, cfg.Build.Command)
	assert.Equal(t, []string{"docs"}, cfg.Gate.Ignore)
	assert.Equal(t, LinkModeRelative, cfg.Report.LinkMode)
	assert.Equal(t, "main", cfg.Report.Branch)
	assert.Equal(t, ThemeLight, cfg.Plot.Theme)
	require.NoError(t, cfg.ValidateRun())
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("benchmark:\n  executible: x\n"))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	root := t.TempDir()

	t.Run("missing default file yields defaults", func(t *testing.T) {
		cfg, err := Load("", root)
		require.NoError(t, err)
		assert.Equal(t, &Config{}, cfg)
	})

	t.Run("default file in root", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(root, DefaultFileName), []byte("benchmark:\n  prefix: PERF_\n"), 0o600))
		cfg, err := Load("", root)
		require.NoError(t, err)
		assert.Equal(t, "PERF_", cfg.Benchmark.Prefix)
	})

	t.Run("explicit missing file is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(root, "nope.yaml"), root)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty prefix", func(c *Config) { c.Benchmark.Prefix = "" }, "benchmark.prefix"},
		{"padded prefix", func(c *Config) { c.Benchmark.Prefix = " BM_" }, "benchmark.prefix"},
		{"negative timeout", func(c *Config) { c.Benchmark.Timeout = -time.Second }, "benchmark.timeout"},
		{"negative build timeout", func(c *Config) { c.Build.Timeout = -time.Second }, "build.timeout"},
		{"bad link mode", func(c *Config) { c.Report.LinkMode = "absolute" }, "report.link_mode"},
		{"bad branch", func(c *Config) { c.Report.Branch = "a b" }, "report.branch"},
		{"bad theme", func(c *Config) { c.Plot.Theme = "neon" }, "plot.theme"},
		{"zero width", func(c *Config) { c.Plot.WidthInches = -1 }, "plot dimensions"},
		{"bad label length", func(c *Config) { c.Plot.CommitLabelLen = -2 }, "commit_label_len"},
		{"blank results dir", func(c *Config) { c.ResultsDir = " " }, "results_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateRun_RequiresExecutable(t *testing.T) {
	cfg := Default()
	err := cfg.ValidateRun()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "benchmark.executable")

	cfg.Benchmark.Executable = "bench"
	require.NoError(t, cfg.ValidateRun())
}

func TestResolve(t *testing.T) {
	cfg := Default()
	cfg.PlotsDir = "/abs/plots"
	cfg.Benchmark.Executable = "build/bench"

	p := cfg.Resolve("/repo")
	assert.Equal(t, "/repo", p.Root)
	assert.Equal(t, "/repo/performance_report/results", p.ResultsDir)
	assert.Equal(t, "/abs/plots", p.PlotsDir)
	assert.Equal(t, "/repo/performance_report/report.md", p.ReportFile)
	assert.Equal(t, "/repo/.benchtrack/run", p.StateDir)
	assert.Equal(t, "/repo/build/bench", cfg.ExecutablePath("/repo"))

	cfg.Benchmark.Executable = "/opt/bench"
	assert.Equal(t, "/opt/bench", cfg.ExecutablePath("/repo"))
}
