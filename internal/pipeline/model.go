// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import "time"

// Stage names a step of the pipeline.
type Stage string

const (
	StagePrecheck  Stage = "precheck"
	StageBuild     Stage = "build"
	StageGate      Stage = "gate_clean_tree"
	StageRun       Stage = "run_benchmarks"
	StageParse     Stage = "parse"
	StageAppend    Stage = "append_history"
	StageDiscover  Stage = "discover_benchmarks"
	StageReconcile Stage = "reconcile_each"
	StageRender    Stage = "render_each"
	StageAssemble  Stage = "assemble_report"
)

// StageStatus represents the outcome of a stage.
type StageStatus string

const (
	StatusPass StageStatus = "pass"
	StatusFail StageStatus = "fail"
	StatusSkip StageStatus = "skip"
)

// StageResult records one stage outcome.
// Matches the stages[] entries of last-run.json.
type StageResult struct {
	Stage  Stage       `json:"stage"`
	Status StageStatus `json:"status"`
	Note   string      `json:"note,omitempty"`
}

// LastRun represents the summary of the last execution.
// Matches .benchtrack/run/last-run.json schema.
type LastRun struct {
	Command    string        `json:"command"` // "run" or "report"
	Status     string        `json:"status"`  // "pass" or "fail"
	Commit     string        `json:"commit,omitempty"`
	Benchmarks int           `json:"benchmarks"`
	Stages     []StageResult `json:"stages"`
	Failed     []string      `json:"failed"` // benchmarks with a per-benchmark failure
	Finished   time.Time     `json:"finished"`
}

// Outcome summarises a pipeline invocation for the caller.
type Outcome struct {
	Commit     string
	Recorded   int
	Skipped    int
	Benchmarks []string
	Plots      map[string]string
	Failed     []string
	ReportFile string
}
