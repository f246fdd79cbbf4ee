// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pipeline drives a benchmarking run from the clean tree check to
// the assembled report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bartekus/benchtrack/internal/history"
	"github.com/bartekus/benchtrack/internal/plot"
	"github.com/bartekus/benchtrack/internal/report"
	"github.com/bartekus/benchtrack/internal/results"
	"github.com/bartekus/benchtrack/internal/vcs"
)

// Executor runs the build command and the benchmark executable.
type Executor interface {
	Run(ctx context.Context, path string, args ...string) (string, error)
	Build(ctx context.Context, argv []string) error
}

// Renderer draws one reconciled series and returns the written path.
type Renderer interface {
	Render(series *history.Series) (string, error)
}

// ReportWriter writes the assembled report.
type ReportWriter interface {
	Generate(entries []report.Entry) error
}

// Options configures what a run executes.
type Options struct {
	Executable   string
	Args         []string
	BuildCommand []string
	Prefix       string
	StrictParse  bool
	// ReportFile is reported back in the Outcome.
	ReportFile string
}

// Pipeline wires the stages together. All collaborators are injected.
type Pipeline struct {
	Repo     vcs.Repository
	Exec     Executor
	Store    *history.Store
	Renderer Renderer
	Report   ReportWriter
	State    *StateStore
	Logger   *slog.Logger
	Options  Options

	// Now stamps last-run.json; defaults to time.Now.
	Now func() time.Time
}

// Run executes the full pipeline. The returned error joins every failure;
// per-benchmark failures do not stop later benchmarks or the report.
func (p *Pipeline) Run(ctx context.Context) (*Outcome, error) {
	rec := p.newRecorder("run")
	out := &Outcome{ReportFile: p.Options.ReportFile}
	err := p.run(ctx, rec, out)
	p.finish(rec, out, err)
	return out, err
}

// Regenerate redraws plots and the report from stored history without
// building or benchmarking.
func (p *Pipeline) Regenerate(ctx context.Context) (*Outcome, error) {
	rec := p.newRecorder("report")
	out := &Outcome{ReportFile: p.Options.ReportFile}
	err := p.report(ctx, rec, out)
	p.finish(rec, out, err)
	return out, err
}

func (p *Pipeline) run(ctx context.Context, rec *recorder, out *Outcome) error {
	if err := p.precheck(true); err != nil {
		rec.fail(StagePrecheck, err)
		return err
	}
	lock, err := acquireLock(p.lockPath())
	if err != nil {
		rec.fail(StagePrecheck, err)
		return err
	}
	defer p.releaseLock(lock)
	rec.pass(StagePrecheck, "")

	if len(p.Options.BuildCommand) == 0 {
		rec.skip(StageBuild, "no build command configured")
	} else {
		p.log().Info("building", "command", strings.Join(p.Options.BuildCommand, " "))
		if err := p.Exec.Build(ctx, p.Options.BuildCommand); err != nil {
			err = fmt.Errorf("%w: %w", ErrBuildFailure, err)
			rec.fail(StageBuild, err)
			return err
		}
		rec.pass(StageBuild, "")
	}

	commit, err := p.gate()
	if err != nil {
		rec.fail(StageGate, err)
		return err
	}
	out.Commit = commit
	rec.last.Commit = commit
	rec.pass(StageGate, "")

	p.log().Info("running benchmarks", "executable", p.Options.Executable, "commit", vcs.ShortID(commit, 12))
	raw, err := p.Exec.Run(ctx, p.Options.Executable, p.Options.Args...)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrBenchmarkExecution, err)
		rec.fail(StageRun, err)
		return err
	}
	rec.pass(StageRun, "")

	ms, err := p.parse(raw, out)
	if err != nil {
		rec.fail(StageParse, err)
		// Nothing is recorded for this commit, but stored history is
		// still reported.
		if gerr := p.generate(ctx, rec, out); gerr != nil {
			return errors.Join(err, gerr)
		}
		return err
	}
	rec.pass(StageParse, fmt.Sprintf("%d results", len(ms)))

	var failures []error
	werrs := p.Store.AppendAll(commit, ms)
	for _, we := range werrs {
		p.log().Error("failed to append history", "benchmark", we.Benchmark, "error", we.Err)
		rec.failedBenchmark(we.Benchmark)
		failures = append(failures, fmt.Errorf("%w: %w", ErrHistoryWrite, we))
	}
	out.Recorded = len(ms) - len(werrs)
	if len(werrs) > 0 {
		rec.fail(StageAppend, fmt.Errorf("%d of %d benchmarks not recorded", len(werrs), len(ms)))
	} else {
		rec.pass(StageAppend, fmt.Sprintf("%d records", out.Recorded))
	}

	if err := p.generate(ctx, rec, out); err != nil {
		failures = append(failures, err)
	}
	return errors.Join(failures...)
}

func (p *Pipeline) report(ctx context.Context, rec *recorder, out *Outcome) error {
	if err := p.precheck(false); err != nil {
		rec.fail(StagePrecheck, err)
		return err
	}
	lock, err := acquireLock(p.lockPath())
	if err != nil {
		rec.fail(StagePrecheck, err)
		return err
	}
	defer p.releaseLock(lock)
	rec.pass(StagePrecheck, "")

	if commit, err := p.Repo.CurrentCommit(); err == nil {
		out.Commit = commit
		rec.last.Commit = commit
	}

	return p.generate(ctx, rec, out)
}

func (p *Pipeline) precheck(run bool) error {
	switch {
	case p.Repo == nil:
		return errors.New("pipeline: repository is required")
	case p.Store == nil:
		return errors.New("pipeline: history store is required")
	case p.Renderer == nil || p.Report == nil:
		return errors.New("pipeline: renderer and report writer are required")
	}
	if !run {
		return nil
	}
	if p.Exec == nil {
		return errors.New("pipeline: executor is required")
	}
	if p.Options.Executable == "" {
		return errors.New("no benchmark executable configured")
	}
	return nil
}

// gate refuses to attribute results to a commit when tracked files differ
// from it.
func (p *Pipeline) gate() (string, error) {
	changes, err := p.Repo.Changes()
	if err != nil {
		return "", fmt.Errorf("checking working tree: %w", err)
	}
	if len(changes) > 0 {
		return "", fmt.Errorf("%w: %s", ErrDirtyWorkingTree, strings.Join(changes, ", "))
	}
	commit, err := p.Repo.CurrentCommit()
	if err != nil {
		return "", fmt.Errorf("resolving current commit: %w", err)
	}
	return commit, nil
}

func (p *Pipeline) parse(raw string, out *Outcome) ([]results.Measurement, error) {
	prefix := p.Options.Prefix
	if prefix == "" {
		prefix = results.DefaultPrefix
	}

	res, err := results.Parse(raw, prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnparseableOutput, err)
	}

	for _, sk := range res.Skipped {
		p.log().Warn("skipped malformed benchmark line", "line", sk.Line, "reason", sk.Reason, "text", sk.Text)
	}
	for _, name := range res.Duplicates {
		p.log().Warn("benchmark reported more than once, keeping the last value", "benchmark", name)
	}
	out.Skipped = len(res.Skipped)

	if p.Options.StrictParse && len(res.Skipped) > 0 {
		return nil, fmt.Errorf("%w: %d malformed lines, first at %s", ErrUnparseableOutput, len(res.Skipped), res.Skipped[0])
	}

	ms := res.Measurements()
	if len(ms) == 0 {
		return nil, fmt.Errorf("%w: no results with prefix %q", ErrUnparseableOutput, prefix)
	}
	return ms, nil
}

// generate runs DISCOVER through ASSEMBLE over stored history.
func (p *Pipeline) generate(ctx context.Context, rec *recorder, out *Outcome) error {
	names, err := p.Store.ListKnownBenchmarks()
	if err != nil {
		err = fmt.Errorf("%w: discovering benchmarks: %w", ErrRender, err)
		rec.fail(StageDiscover, err)
		return err
	}
	newestFirst, err := p.Repo.Commits()
	if err != nil {
		err = fmt.Errorf("%w: listing commits: %w", ErrRender, err)
		rec.fail(StageDiscover, err)
		return err
	}
	commits := vcs.Chronological(newestFirst)
	out.Benchmarks = names
	rec.pass(StageDiscover, fmt.Sprintf("%d benchmarks over %d commits", len(names), len(commits)))

	var failures []error
	entries := make([]report.Entry, len(names))
	series := make([]*history.Series, len(names))

	readFailures := 0
	for i, name := range names {
		entries[i].Name = name
		records, err := p.Store.ReadAll(name)
		if err != nil {
			p.log().Error("failed to read history", "benchmark", name, "error", err)
			rec.failedBenchmark(name)
			failures = append(failures, fmt.Errorf("%w: %w", ErrRender, err))
			entries[i].Failure = "history file is unreadable"
			readFailures++
			continue
		}
		s := history.Reconcile(name, records, commits)
		if s.Orphans > 0 {
			p.log().Warn("ignoring records for commits outside the current history", "benchmark", name, "records", s.Orphans)
		}
		if present := s.Present(); len(present) > 0 {
			latest := present[len(present)-1]
			entries[i].Latest = &latest
		}
		series[i] = s
	}
	if readFailures > 0 {
		rec.fail(StageReconcile, fmt.Errorf("%d histories unreadable", readFailures))
	} else {
		rec.pass(StageReconcile, "")
	}

	out.Plots = make(map[string]string, len(names))
	renderFailures := 0
	for i, s := range series {
		if s == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			rec.fail(StageRender, err)
			return errors.Join(append(failures, err)...)
		}
		path, err := p.Renderer.Render(s)
		if err != nil {
			p.log().Error("failed to render plot", "benchmark", s.Name, "error", err)
			rec.failedBenchmark(s.Name)
			failures = append(failures, fmt.Errorf("%w: %w", ErrRender, err))
			entries[i].Failure = renderReason(err)
			renderFailures++
			continue
		}
		out.Plots[s.Name] = path
		p.log().Debug("rendered plot", "benchmark", s.Name, "path", path)
	}
	if renderFailures > 0 {
		rec.fail(StageRender, fmt.Errorf("%d plots not rendered", renderFailures))
	} else {
		rec.pass(StageRender, fmt.Sprintf("%d plots", len(out.Plots)))
	}

	if err := p.Report.Generate(entries); err != nil {
		err = fmt.Errorf("%w: assembling report: %w", ErrRender, err)
		rec.fail(StageAssemble, err)
		return errors.Join(append(failures, err)...)
	}
	rec.pass(StageAssemble, "")

	return errors.Join(failures...)
}

func renderReason(err error) string {
	var re *plot.RenderError
	if errors.As(err, &re) {
		return re.Err.Error()
	}
	return err.Error()
}

func (p *Pipeline) lockPath() string {
	return filepath.Join(p.Store.Dir(), LockFileName)
}

func (p *Pipeline) releaseLock(l *runLock) {
	if err := l.release(); err != nil {
		p.log().Warn("failed to release run lock", "error", err)
	}
}

func (p *Pipeline) log() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}

func (p *Pipeline) finish(rec *recorder, out *Outcome, err error) {
	rec.last.Status = "pass"
	if err != nil {
		rec.last.Status = "fail"
	}
	rec.last.Benchmarks = len(out.Benchmarks)
	rec.last.Failed = rec.failedNames()
	out.Failed = rec.last.Failed

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	rec.last.Finished = now().UTC()

	if p.State == nil {
		return
	}
	if werr := p.State.WriteLastRun(rec.last); werr != nil {
		p.log().Warn("failed to write run state", "error", werr)
	}
}

type recorder struct {
	log    *slog.Logger
	last   LastRun
	failed map[string]struct{}
}

func (p *Pipeline) newRecorder(command string) *recorder {
	return &recorder{
		log:    p.log(),
		last:   LastRun{Command: command, Stages: []StageResult{}},
		failed: make(map[string]struct{}),
	}
}

func (r *recorder) pass(stage Stage, note string) {
	r.add(StageResult{Stage: stage, Status: StatusPass, Note: note})
	r.log.Debug("stage passed", "stage", stage, "note", note)
}

func (r *recorder) skip(stage Stage, note string) {
	r.add(StageResult{Stage: stage, Status: StatusSkip, Note: note})
	r.log.Debug("stage skipped", "stage", stage, "note", note)
}

func (r *recorder) fail(stage Stage, err error) {
	r.add(StageResult{Stage: stage, Status: StatusFail, Note: err.Error()})
	r.log.Debug("stage failed", "stage", stage, "error", err)
}

func (r *recorder) add(res StageResult) {
	r.last.Stages = append(r.last.Stages, res)
}

func (r *recorder) failedBenchmark(name string) {
	r.failed[name] = struct{}{}
}

func (r *recorder) failedNames() []string {
	names := make([]string, 0, len(r.failed))
	for name := range r.failed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
