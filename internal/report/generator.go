// SPDX-License-Identifier: AGPL-3.0-or-later

// Package report assembles the Markdown performance report.
package report

import (
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bartekus/benchtrack/internal/history"
	"github.com/bartekus/benchtrack/internal/plot"
	"github.com/bartekus/benchtrack/internal/projection"
	"github.com/bartekus/benchtrack/internal/vcs"
)

// Entry is one benchmark in the report. Latest is nil when the benchmark
// has no usable measurement. A non-empty Failure replaces the plot.
type Entry struct {
	Name    string
	Latest  *history.Point
	Failure string
}

// Generator projects benchmark entries to a single Markdown document.
type Generator struct {
	Title string
	// OutFile is the report path; PlotsDir is where plots are written.
	OutFile  string
	PlotsDir string
	// LinkBase, when set, prefixes every image link.
	LinkBase string
	// CommitLabelLen shortens commit ids in the summary table.
	CommitLabelLen int
}

// Generate writes the report atomically, replacing any previous one.
func (g *Generator) Generate(entries []Entry) error {
	content, err := g.Render(entries)
	if err != nil {
		return err
	}
	if err := projection.AtomicWrite(g.OutFile, []byte(content)); err != nil {
		return fmt.Errorf("writing %s: %w", g.OutFile, err)
	}
	return nil
}

// Render returns the report content. entries must be sorted by name; the
// output depends on nothing else, so identical input yields identical bytes.
func (g *Generator) Render(entries []Entry) (string, error) {
	plotsRel, err := filepath.Rel(filepath.Dir(g.OutFile), g.PlotsDir)
	if err != nil {
		return "", fmt.Errorf("plots directory %s is not reachable from %s: %w", g.PlotsDir, g.OutFile, err)
	}
	plotsRel = filepath.ToSlash(plotsRel)

	var b strings.Builder

	title := g.Title
	if title == "" {
		title = "Performance Report"
	}
	b.WriteString(projection.RenderHeader(1, title))

	if len(entries) == 0 {
		b.WriteString(projection.RenderNote("No benchmarks recorded yet."))
		return finish(&b), nil
	}

	b.WriteString(projection.RenderHeader(2, "Summary"))
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		latest, commit := "-", "-"
		if e.Latest != nil {
			latest = strconv.FormatFloat(e.Latest.Value, 'f', -1, 64) + " " + e.Latest.Unit
			commit = "`" + vcs.ShortID(e.Latest.Commit, g.labelLen()) + "`"
		}
		rows = append(rows, []string{projection.EscapeText(e.Name), latest, commit})
	}
	b.WriteString(projection.RenderTable([]string{"Benchmark", "Latest", "Commit"}, rows))
	b.WriteString("\n")

	var failed []string
	for _, e := range entries {
		if e.Failure != "" {
			failed = append(failed, projection.EscapeText(e.Name))
		}
	}
	if len(failed) > 0 {
		b.WriteString("Plots unavailable:\n\n")
		b.WriteString(projection.RenderList(failed))
		b.WriteString("\n")
	}

	for _, e := range entries {
		b.WriteString(projection.RenderHeader(2, projection.EscapeText(e.Name)))
		if e.Failure != "" {
			b.WriteString(projection.RenderNote("plot unavailable: " + e.Failure))
			continue
		}
		b.WriteString(projection.RenderImage(e.Name, g.link(plotsRel, e.Name)))
	}

	return finish(&b), nil
}

func (g *Generator) link(plotsRel, name string) string {
	file := history.Stem(name) + plot.FileExt
	rel := path.Join(plotsRel, file)
	if g.LinkBase == "" {
		return rel
	}
	return strings.TrimRight(g.LinkBase, "/") + "/" + rel
}

func (g *Generator) labelLen() int {
	if g.CommitLabelLen > 0 {
		return g.CommitLabelLen
	}
	return 6
}

func finish(b *strings.Builder) string {
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// LinkBase returns the URL under which the report directory is browsable
// on the hosting service, or "" when remote is not a recognised host.
// reportRel is the report directory relative to the repository root.
func LinkBase(remote, branch, reportRel string) string {
	browse := vcs.BrowseURL(remote)
	if browse == "" || branch == "" {
		return ""
	}
	reportRel = filepath.ToSlash(filepath.Clean(reportRel))
	switch {
	case reportRel == ".." || strings.HasPrefix(reportRel, "../") || path.IsAbs(reportRel):
		return ""
	case reportRel == ".":
		return browse + "/blob/" + branch
	}
	return browse + "/blob/" + branch + "/" + reportRel
}
