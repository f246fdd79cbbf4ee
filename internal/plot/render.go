// SPDX-License-Identifier: AGPL-3.0-or-later

// Package plot renders reconciled benchmark series as PNG line charts.
package plot

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"path/filepath"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/bartekus/benchtrack/internal/history"
	"github.com/bartekus/benchtrack/internal/projection"
	"github.com/bartekus/benchtrack/internal/vcs"
)

// FileExt is the extension of rendered plots.
const FileExt = ".png"

// ErrEmptySeries is returned for a series with no present points.
var ErrEmptySeries = errors.New("series has no data points")

// RenderError names the benchmark whose plot could not be produced.
type RenderError struct {
	Benchmark string
	Err       error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Benchmark, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Renderer writes one PNG per series into Dir.
type Renderer struct {
	dir   string
	style Style
}

// NewRenderer returns a renderer writing into dir with the given style.
func NewRenderer(dir string, style Style) *Renderer {
	return &Renderer{dir: dir, style: style}
}

// Dir returns the output directory.
func (r *Renderer) Dir() string {
	return r.dir
}

// Path returns where the plot for name is written.
func (r *Renderer) Path(name string) string {
	return filepath.Join(r.dir, history.Stem(name)+FileExt)
}

// Render draws series and writes it to Path(series.Name). Exactly one
// file is written per successful call.
func (r *Renderer) Render(series *history.Series) (string, error) {
	fail := func(err error) (string, error) {
		return "", &RenderError{Benchmark: series.Name, Err: err}
	}

	if err := r.style.validate(); err != nil {
		return fail(err)
	}

	points := series.Present()
	if len(points) == 0 {
		return fail(ErrEmptySeries)
	}

	p, err := r.build(series.Name, points)
	if err != nil {
		return fail(err)
	}

	canvas := vgimg.NewWith(vgimg.UseWH(r.style.Width, r.style.Height), vgimg.UseDPI(r.style.DPI))
	p.Draw(draw.New(canvas))

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(&buf); err != nil {
		return fail(fmt.Errorf("encoding png: %w", err))
	}

	path := r.Path(series.Name)
	if err := projection.AtomicWrite(path, buf.Bytes()); err != nil {
		return fail(err)
	}
	return path, nil
}

func (r *Renderer) build(name string, points []history.Point) (*gplot.Plot, error) {
	s := r.style
	p := gplot.New()

	p.Title.Text = name
	p.Y.Label.Text = points[len(points)-1].Unit

	p.BackgroundColor = s.Background
	p.Title.TextStyle.Color = s.Foreground
	for _, ax := range []*gplot.Axis{&p.X, &p.Y} {
		ax.Color = s.Foreground
		ax.Label.TextStyle.Color = s.Foreground
		ax.Tick.Color = s.Foreground
		ax.Tick.Label.Color = s.Foreground
	}

	xys := make(plotter.XYs, len(points))
	ticks := make([]gplot.Tick, len(points))
	maxY := math.Inf(-1)
	for i, pt := range points {
		xys[i].X = float64(i)
		xys[i].Y = pt.Value
		ticks[i] = gplot.Tick{Value: float64(i), Label: vcs.ShortID(pt.Commit, s.CommitLabelLen)}
		maxY = math.Max(maxY, pt.Value)
	}

	p.X.Tick.Marker = gplot.ConstantTicks(ticks)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	grid := plotter.NewGrid()
	grid.Vertical.Color = s.Grid
	grid.Horizontal.Color = s.Grid
	p.Add(grid)

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, fmt.Errorf("building line: %w", err)
	}
	line.LineStyle.Color = s.Line
	line.LineStyle.Width = s.LineWidth
	p.Add(line)

	if s.GlyphRadius > 0 {
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("building markers: %w", err)
		}
		scatter.GlyphStyle.Color = s.Line
		scatter.GlyphStyle.Radius = s.GlyphRadius
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(scatter)
	}

	p.X.Min = -0.5
	p.X.Max = float64(len(points)) - 0.5

	p.Y.Min = 0
	p.Y.Max = maxY * 1.1
	if p.Y.Max <= p.Y.Min {
		p.Y.Max = p.Y.Min + 1
	}

	return p, nil
}
