// SPDX-License-Identifier: AGPL-3.0-or-later

// Package benchexec runs the external build command and the benchmark
// executable, capturing their output.
package benchexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// tailLines is how much captured output is kept in error messages.
const tailLines = 20

// ExitError describes a command that failed to run to a zero exit status.
type ExitError struct {
	Command  string
	ExitCode int
	TimedOut bool
	Output   string
	Err      error
}

func (e *ExitError) Error() string {
	var b strings.Builder
	switch {
	case e.TimedOut:
		fmt.Fprintf(&b, "%s timed out", e.Command)
	case e.ExitCode > 0:
		fmt.Fprintf(&b, "%s exited with status %d", e.Command, e.ExitCode)
	default:
		fmt.Fprintf(&b, "%s failed: %v", e.Command, e.Err)
	}
	if e.Output != "" {
		b.WriteString("\n")
		b.WriteString(e.Output)
	}
	return b.String()
}

func (e *ExitError) Unwrap() error { return e.Err }

// Executor runs commands from a fixed working directory.
type Executor struct {
	// Dir is the working directory for every command.
	Dir string

	// BenchTimeout bounds the benchmark executable. Zero means no limit.
	BenchTimeout time.Duration

	// BuildTimeout bounds the build command. Zero means no limit.
	BuildTimeout time.Duration

	// Progress, when set, receives stderr of both commands and stdout of
	// the build as they run.
	Progress io.Writer
}

// Run executes the benchmark binary and returns its complete standard
// output. A non-zero exit or timeout is an *ExitError and no output is
// returned, so truncated results are never parsed.
func (e *Executor) Run(ctx context.Context, path string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer

	err := e.run(ctx, e.BenchTimeout, &stdout, &stderr, path, args...)
	if err != nil {
		return "", err
	}
	return stdout.String(), nil
}

// Build runs the build command given as argv. An empty argv is a no-op.
func (e *Executor) Build(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return nil
	}
	var out bytes.Buffer
	return e.run(ctx, e.BuildTimeout, &out, &out, argv[0], argv[1:]...)
}

func (e *Executor) run(ctx context.Context, timeout time.Duration, stdout, stderr *bytes.Buffer, name string, args ...string) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.Dir
	cmd.WaitDelay = 5 * time.Second
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if e.Progress != nil {
		cmd.Stderr = io.MultiWriter(stderr, e.Progress)
		if stdout == stderr {
			cmd.Stdout = cmd.Stderr
		}
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}

	exitErr := &ExitError{
		Command:  commandString(name, args),
		ExitCode: -1,
		Output:   tail(stderr.String(), tailLines),
		Err:      err,
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		exitErr.TimedOut = true
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		exitErr.ExitCode = ee.ExitCode()
	}
	return exitErr
}

func commandString(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// tail keeps the last n lines of output.
func tail(output string, n int) string {
	output = strings.TrimRight(output, "\n")
	if output == "" {
		return ""
	}
	lines := strings.Split(output, "\n")
	if len(lines) <= n {
		return output
	}
	return "...(truncated)...\n" + strings.Join(lines[len(lines)-n:], "\n")
}
