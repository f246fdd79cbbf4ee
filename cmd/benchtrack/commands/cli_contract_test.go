// SPDX-License-Identifier: AGPL-3.0-or-later
package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestCLIContract(t *testing.T) {
	cmd := NewRootCmd()
	b := bytes.NewBufferString("")
	cmd.SetOut(b)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	if err != nil {
		t.Fatalf("root command failed: %v", err)
	}

	out := b.String()

	requiredCommands := []string{
		"completion",
		"help",
		"history",
		"list",
		"report",
		"run",
		"status",
		"version",
	}
	for _, c := range requiredCommands {
		if !strings.Contains(out, c) {
			t.Errorf("expected top-level command %q in root help", c)
		}
	}

	requiredFlags := []string{
		"--config", "--repo", "--report-dir", "--results-dir", "--plots-dir",
		"--bench", "--build", "--timeout", "--prefix", "--strict-parse", "--verbose",
	}
	for _, f := range requiredFlags {
		if !strings.Contains(out, f) {
			t.Errorf("expected persistent flag %q in root help", f)
		}
	}
}

func TestVersion(t *testing.T) {
	t.Setenv("BENCHTRACK_VERSION", "1.2.3")

	cmd := NewRootCmd()
	b := bytes.NewBufferString("")
	cmd.SetOut(b)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if got := b.String(); got != "benchtrack version 1.2.3\n" {
		t.Errorf("got %q", got)
	}
}
