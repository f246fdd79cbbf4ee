// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/bartekus/benchtrack/cmd/benchtrack/internal/clierr"
	"github.com/bartekus/benchtrack/internal/benchexec"
	"github.com/bartekus/benchtrack/internal/config"
	"github.com/bartekus/benchtrack/internal/history"
	"github.com/bartekus/benchtrack/internal/pipeline"
	"github.com/bartekus/benchtrack/internal/plot"
	"github.com/bartekus/benchtrack/internal/report"
	"github.com/bartekus/benchtrack/internal/vcs"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath  string
	repoDir     string
	reportDir   string
	resultsDir  string
	plotsDir    string
	bench       string
	build       string
	timeout     time.Duration
	prefix      string
	strictParse bool
	verbose     bool
}

func (o *globalOptions) register(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&o.configPath, "config", "", "config file (default <repo>/"+config.DefaultFileName+")")
	f.StringVar(&o.repoDir, "repo", ".", "directory inside the git repository to track")
	f.StringVar(&o.reportDir, "report-dir", "", "directory holding the report and, by default, results and plots")
	f.StringVar(&o.resultsDir, "results-dir", "", "directory holding per-benchmark history files")
	f.StringVar(&o.plotsDir, "plots-dir", "", "directory receiving rendered plots")
	f.StringVar(&o.bench, "bench", "", "benchmark executable")
	f.StringVar(&o.build, "build", "", "build command run before benchmarking (split on whitespace)")
	f.DurationVar(&o.timeout, "timeout", 0, "benchmark timeout (default 30m)")
	f.StringVar(&o.prefix, "prefix", "", "name prefix identifying result lines (default BM_)")
	f.BoolVar(&o.strictParse, "strict-parse", false, "fail the run when a result line is malformed")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "enable verbose output")
}

// session is everything a command needs once flags and config are resolved.
type session struct {
	cfg    *config.Config
	paths  config.Paths
	repo   *vcs.GitRepository
	logger *slog.Logger
	cmd    *cobra.Command
}

func (o *globalOptions) open(cmd *cobra.Command) (*session, error) {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	repo, err := vcs.Open(o.repoDir)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeUsage, "", err)
	}
	root := repo.Root()

	cfg, err := config.Load(o.configPath, root)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeUsage, "", err)
	}
	o.override(cmd, cfg)
	config.ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, clierr.Wrap(clierr.CodeUsage, "invalid configuration", err)
	}

	s := &session{
		cfg:    cfg,
		paths:  cfg.Resolve(root),
		repo:   repo,
		logger: logger,
		cmd:    cmd,
	}
	repo.SetIgnore(s.gateIgnore())
	return s, nil
}

// override copies explicitly set flags over file values.
func (o *globalOptions) override(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("report-dir") {
		cfg.ReportDir = o.reportDir
	}
	if changed("results-dir") {
		cfg.ResultsDir = o.resultsDir
	}
	if changed("plots-dir") {
		cfg.PlotsDir = o.plotsDir
	}
	if changed("bench") {
		cfg.Benchmark.Executable = o.bench
	}
	if changed("build") {
		cfg.Build.Command = strings.Fields(o.build)
	}
	if changed("timeout") {
		cfg.Benchmark.Timeout = o.timeout
	}
	if changed("prefix") {
		cfg.Benchmark.Prefix = o.prefix
	}
	if changed("strict-parse") {
		cfg.Benchmark.Strict = o.strictParse
	}
}

// gateIgnore lists the repository-relative paths benchtrack writes to, so
// its own outputs never make the tree dirty, plus the configured extras.
func (s *session) gateIgnore() []string {
	ignore := append([]string(nil), s.cfg.Gate.Ignore...)
	for _, p := range []string{s.paths.ReportDir, s.paths.ResultsDir, s.paths.PlotsDir, s.paths.ReportFile, s.paths.StateDir} {
		rel, err := filepath.Rel(s.paths.Root, p)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		ignore = append(ignore, filepath.ToSlash(rel))
	}
	return ignore
}

func (s *session) store() *history.Store {
	return history.NewStore(s.paths.ResultsDir)
}

func (s *session) state() *pipeline.StateStore {
	return pipeline.NewStateStore(s.paths.StateDir)
}

func (s *session) pipeline() (*pipeline.Pipeline, error) {
	style, err := plot.ThemeStyle(s.cfg.Plot.Theme)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeUsage, "", err)
	}
	style.Width = vg.Length(s.cfg.Plot.WidthInches) * vg.Inch
	style.Height = vg.Length(s.cfg.Plot.HeightInches) * vg.Inch
	style.CommitLabelLen = s.cfg.Plot.CommitLabelLen

	exec := &benchexec.Executor{
		Dir:          s.paths.Root,
		BenchTimeout: s.cfg.Benchmark.Timeout,
		BuildTimeout: s.cfg.Build.Timeout,
	}
	if s.logger.Enabled(s.cmd.Context(), slog.LevelDebug) {
		exec.Progress = s.cmd.ErrOrStderr()
	}

	return &pipeline.Pipeline{
		Repo:     s.repo,
		Exec:     exec,
		Store:    s.store(),
		Renderer: plot.NewRenderer(s.paths.PlotsDir, style),
		Report: &report.Generator{
			Title:          s.cfg.Report.Title,
			OutFile:        s.paths.ReportFile,
			PlotsDir:       s.paths.PlotsDir,
			LinkBase:       s.linkBase(),
			CommitLabelLen: s.cfg.Plot.CommitLabelLen,
		},
		State:  s.state(),
		Logger: s.logger,
		Options: pipeline.Options{
			Executable:   s.cfg.ExecutablePath(s.paths.Root),
			Args:         s.cfg.Benchmark.Args,
			BuildCommand: s.cfg.Build.Command,
			Prefix:       s.cfg.Benchmark.Prefix,
			StrictParse:  s.cfg.Benchmark.Strict,
			ReportFile:   s.paths.ReportFile,
		},
	}, nil
}

func (s *session) linkBase() string {
	if s.cfg.Report.LinkBase != "" {
		return s.cfg.Report.LinkBase
	}
	if s.cfg.Report.LinkMode != config.LinkModeRemote {
		return ""
	}

	remote, err := s.repo.RemoteURL()
	if err != nil {
		if !errors.Is(err, vcs.ErrNoRemote) {
			s.logger.Warn("failed to read origin remote, using relative links", "error", err)
		} else {
			s.logger.Debug("no origin remote, using relative links")
		}
		return ""
	}

	reportRel, err := filepath.Rel(s.paths.Root, filepath.Dir(s.paths.ReportFile))
	if err != nil {
		return ""
	}
	base := report.LinkBase(remote, s.cfg.Report.Branch, reportRel)
	if base == "" {
		s.logger.Warn("origin remote is not a browsable host, using relative links", "remote", remote)
	}
	return base
}
