// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"

	"github.com/bartekus/benchtrack/cmd/benchtrack/internal/clierr"
	"github.com/bartekus/benchtrack/internal/pipeline"
)

// exitError attaches the process exit code for a pipeline error. The most
// severe failure decides the code when several are joined.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	var ee *clierr.ExitError
	if errors.As(err, &ee) {
		return err
	}

	code := clierr.CodeInternal
	switch {
	case errors.Is(err, pipeline.ErrLocked):
		code = clierr.CodeLocked
	case errors.Is(err, pipeline.ErrDirtyWorkingTree):
		code = clierr.CodeDirtyTree
	case errors.Is(err, pipeline.ErrBuildFailure):
		code = clierr.CodeBuild
	case errors.Is(err, pipeline.ErrBenchmarkExecution), errors.Is(err, pipeline.ErrUnparseableOutput):
		code = clierr.CodeBenchmark
	case errors.Is(err, pipeline.ErrHistoryWrite), errors.Is(err, pipeline.ErrRender):
		code = clierr.CodePartial
	}
	return clierr.Wrap(code, "", err)
}
