// SPDX-License-Identifier: AGPL-3.0-or-later

package plot

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot/vg"
)

// Style is the complete visual configuration of a rendered plot.
type Style struct {
	Width  vg.Length
	Height vg.Length
	DPI    int

	Background color.Color
	Foreground color.Color
	Line       color.Color
	Grid       color.Color
	LineWidth  vg.Length
	// GlyphRadius draws a marker at each point; zero disables markers.
	GlyphRadius vg.Length

	// CommitLabelLen is the number of commit id characters shown per tick.
	CommitLabelLen int
}

// DarkStyle matches a GitHub dark page: near-black background, aqua line
// and a grid on both axes.
func DarkStyle() Style {
	return Style{
		Width:          12 * vg.Inch,
		Height:         3 * vg.Inch,
		DPI:            300,
		Background:     color.RGBA{R: 13, G: 17, B: 23, A: 255},
		Foreground:     color.RGBA{R: 201, G: 209, B: 217, A: 255},
		Line:           color.RGBA{R: 0, G: 255, B: 255, A: 255},
		Grid:           color.RGBA{R: 48, G: 54, B: 61, A: 255},
		LineWidth:      vg.Points(1.5),
		GlyphRadius:    vg.Points(2),
		CommitLabelLen: 6,
	}
}

// LightStyle is the same layout on a white background.
func LightStyle() Style {
	s := DarkStyle()
	s.Background = color.White
	s.Foreground = color.RGBA{R: 36, G: 41, B: 47, A: 255}
	s.Line = color.RGBA{R: 9, G: 105, B: 218, A: 255}
	s.Grid = color.RGBA{R: 208, G: 215, B: 222, A: 255}
	return s
}

// ThemeStyle returns the style registered under name.
func ThemeStyle(name string) (Style, error) {
	switch name {
	case "dark":
		return DarkStyle(), nil
	case "light":
		return LightStyle(), nil
	default:
		return Style{}, fmt.Errorf("unknown plot theme %q", name)
	}
}

func (s Style) validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("invalid plot size %vx%v", s.Width, s.Height)
	}
	if s.DPI <= 0 {
		return fmt.Errorf("invalid dpi %d", s.DPI)
	}
	if s.Background == nil || s.Foreground == nil || s.Line == nil || s.Grid == nil {
		return fmt.Errorf("style colors must all be set")
	}
	return nil
}
