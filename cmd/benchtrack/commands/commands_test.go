// SPDX-License-Identifier: AGPL-3.0-or-later
package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/benchtrack/cmd/benchtrack/internal/clierr"
	"github.com/bartekus/benchtrack/internal/benchexec"
	"github.com/bartekus/benchtrack/internal/pipeline"
)

type fixture struct {
	dir   string
	repo  *gogit.Repository
	bench string
}

func newFixture(t *testing.T, benchOutput string) *fixture {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not available on windows")
	}

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	f := &fixture{dir: dir, repo: repo}
	f.commit(t, "README.md", "engine\n")

	f.bench = filepath.Join(dir, "bench.sh")
	script := fmt.Sprintf("#!/bin/sh\nprintf '%s'\n", benchOutput)
	require.NoError(t, os.WriteFile(f.bench, []byte(script), 0o755))

	// Small plots keep the tests fast.
	cfg := "plot:\n  width_inches: 2\n  height_inches: 1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".benchtrack.yaml"), []byte(cfg), 0o644))
	return f
}

func (f *fixture) commit(t *testing.T, path, content string) {
	t.Helper()
	wt, err := f.repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, path), []byte(content), 0o644))
	_, err = wt.Add(path)
	require.NoError(t, err)
	_, err = wt.Commit("update "+path, &gogit.CommitOptions{
		Author: &object.Signature{Name: "dev", Email: "dev@example.com", When: time.Now()},
	})
	require.NoError(t, err)
}

func (f *fixture) execute(args ...string) (string, error) {
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--repo", f.dir}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (f *fixture) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.dir, rel))
	require.NoError(t, err)
	return string(data)
}

func TestRootCmd_RunThenInspect(t *testing.T) {
	f := newFixture(t, `BM_Sum 45 ns\nnoise\nBM_Mul 12 ns\n`)

	out, err := f.execute("--bench", f.bench)
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded 2 benchmarks at ")
	assert.Contains(t, out, "Report: performance_report/report.md")

	assert.FileExists(t, filepath.Join(f.dir, "performance_report", "plots", "BM_Sum.png"))
	assert.FileExists(t, filepath.Join(f.dir, "performance_report", "plots", "BM_Mul.png"))
	md := f.read(t, "performance_report/report.md")
	assert.Contains(t, md, "![BM_Sum](plots/BM_Sum.png)")

	head, err := f.repo.Head()
	require.NoError(t, err)
	assert.Equal(t, head.Hash().String()+" 45 ns\n", f.read(t, "performance_report/results/BM_Sum.txt"))

	// Outputs written by the first run must not dirty the tree for the next.
	_, err = f.execute("run", "--bench", f.bench)
	require.NoError(t, err)

	out, err = f.execute("list")
	require.NoError(t, err)
	assert.Equal(t, "BM_Mul\nBM_Sum\n", out)

	out, err = f.execute("list", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"benchmarks": ["BM_Mul", "BM_Sum"]}`, out)

	out, err = f.execute("history", "BM_Sum")
	require.NoError(t, err)
	assert.Contains(t, out, head.Hash().String()[:6])
	assert.Contains(t, out, "45")

	out, err = f.execute("status", "--json")
	require.NoError(t, err)
	var last pipeline.LastRun
	require.NoError(t, json.Unmarshal([]byte(out), &last))
	assert.Equal(t, "pass", last.Status)
	assert.Equal(t, head.Hash().String(), last.Commit)
}

func TestRootCmd_HistoryShowsGaps(t *testing.T) {
	f := newFixture(t, `BM_Sum 45 ns\n`)
	_, err := f.execute("--bench", f.bench)
	require.NoError(t, err)

	f.commit(t, "README.md", "engine v2\n")

	out, err := f.execute("history", "BM_Sum")
	require.NoError(t, err)
	assert.Contains(t, out, "-")

	out, err = f.execute("history", "BM_Sum", "--json")
	require.NoError(t, err)
	var series struct {
		Points []struct {
			Present bool `json:"present"`
		} `json:"points"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &series))
	require.Len(t, series.Points, 2)
	assert.True(t, series.Points[0].Present)
	assert.False(t, series.Points[1].Present)
}

func TestRootCmd_DirtyTree(t *testing.T) {
	f := newFixture(t, `BM_Sum 45 ns\n`)
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "README.md"), []byte("edited\n"), 0o644))

	_, err := f.execute("--bench", f.bench)
	require.Error(t, err)
	assert.Equal(t, clierr.CodeDirtyTree, clierr.ExitCodeOf(err))
	assert.Contains(t, err.Error(), "README.md")
	assert.NoFileExists(t, filepath.Join(f.dir, "performance_report", "results", "BM_Sum.txt"))
}

func TestRootCmd_RemoteLinks(t *testing.T) {
	f := newFixture(t, `BM_Sum 45 ns\n`)
	_, err := f.repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{"git@github.com:acme/engine.git"},
	})
	require.NoError(t, err)

	_, err = f.execute("--bench", f.bench)
	require.NoError(t, err)
	assert.Contains(t, f.read(t, "performance_report/report.md"),
		"![BM_Sum](https://github.com/acme/engine/blob/master/performance_report/plots/BM_Sum.png)")
}

func TestRootCmd_ReportOnly(t *testing.T) {
	f := newFixture(t, `BM_Sum 45 ns\n`)
	_, err := f.execute("--bench", f.bench)
	require.NoError(t, err)
	first := f.read(t, "performance_report/report.md")

	out, err := f.execute("report")
	require.NoError(t, err)
	assert.Contains(t, out, "Rendered 1 of 1 plots")
	assert.Equal(t, first, f.read(t, "performance_report/report.md"))
}

func TestRootCmd_ExitCodes(t *testing.T) {
	tests := []struct {
		name string
		out  string
		args func(f *fixture) []string
		want int
	}{
		{"missing executable", `BM_Sum 1 ns\n`, func(f *fixture) []string { return []string{"run"} }, clierr.CodeUsage},
		{"unknown flag", `BM_Sum 1 ns\n`, func(f *fixture) []string { return []string{"--frobnicate"} }, clierr.CodeUsage},
		{"extra argument", `BM_Sum 1 ns\n`, func(f *fixture) []string { return []string{"list", "extra"} }, clierr.CodeUsage},
		{"unknown benchmark", `BM_Sum 1 ns\n`, func(f *fixture) []string { return []string{"history", "BM_Nope"} }, clierr.CodeUsage},
		{"unparseable output", `nothing here\n`, func(f *fixture) []string { return []string{"--bench", f.bench} }, clierr.CodeBenchmark},
		{"strict parse", `BM_Sum 1 ns\nBM_Bad x ns\n`, func(f *fixture) []string { return []string{"--bench", f.bench, "--strict-parse"} }, clierr.CodeBenchmark},
		{"build failure", `BM_Sum 1 ns\n`, func(f *fixture) []string { return []string{"--bench", f.bench, "--build", "false"} }, clierr.CodeBuild},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.out)
			_, err := f.execute(tt.args(f)...)
			require.Error(t, err)
			assert.Equal(t, tt.want, clierr.ExitCodeOf(err), err.Error())
		})
	}
}

func TestExitError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"locked", fmt.Errorf("%w: x", pipeline.ErrLocked), clierr.CodeLocked},
		{"dirty", fmt.Errorf("%w: a.cc", pipeline.ErrDirtyWorkingTree), clierr.CodeDirtyTree},
		{"build", pipeline.ErrBuildFailure, clierr.CodeBuild},
		{"benchmark", pipeline.ErrBenchmarkExecution, clierr.CodeBenchmark},
		{"unparseable", pipeline.ErrUnparseableOutput, clierr.CodeBenchmark},
		{"partial", errors.Join(pipeline.ErrHistoryWrite, pipeline.ErrRender), clierr.CodePartial},
		{"other", errors.New("disk on fire"), clierr.CodeInternal},
		{"already coded", clierr.New(clierr.CodeUsage, "bad"), clierr.CodeUsage},
		{"build with child exit status", fmt.Errorf("%w: %w", pipeline.ErrBuildFailure,
			&benchexec.ExitError{Command: "false", ExitCode: 1, Err: childExit(1)}), clierr.CodeBuild},
		{"benchmark with child exit status", fmt.Errorf("%w: %w", pipeline.ErrBenchmarkExecution,
			&benchexec.ExitError{Command: "./bench", ExitCode: 2, Err: childExit(2)}), clierr.CodeBenchmark},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clierr.ExitCodeOf(exitError(tt.err)))
		})
	}
}

// childExit has the ExitCode method of *exec.ExitError.
type childExit int

func (c childExit) Error() string { return fmt.Sprintf("exit status %d", int(c)) }
func (c childExit) ExitCode() int { return int(c) }
