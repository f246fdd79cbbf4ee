// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import "errors"

var (
	ErrDirtyWorkingTree   = errors.New("working tree has uncommitted changes")
	ErrBuildFailure       = errors.New("build failed")
	ErrBenchmarkExecution = errors.New("benchmark execution failed")
	ErrUnparseableOutput  = errors.New("benchmark output could not be parsed")
	ErrHistoryWrite       = errors.New("history write failed")
	ErrRender             = errors.New("rendering failed")
	ErrLocked             = errors.New("another run holds the history lock")
)
