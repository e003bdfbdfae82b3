/*
DESCRIPTION
  Plotting functions for calibration boundaries and pipeline timings.

AUTHORS
  Russell Stanley <russell@ausocean.org>
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2021-2026 the Australian Ocean Lab (AusOcean)

  It is free software: you can redistribute it and/or modify them
  under the terms of the GNU General Public License as published by the
  Free Software Foundation, either version 3 of the License, or (at your
  option) any later version.

  It is distributed in the hope that it will be useful, but WITHOUT
  ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
  FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License
  for more details.

  You should have received a copy of the GNU General Public License
  in gpl.txt.  If not, see http://www.gnu.org/licenses.
*/

package panorama

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// PlotBoundaries plots the boundary rows of both halves against line index
// to dir, superimposing a polynomial fit of degree on each. The gradient of
// the curve is the panorama's radial resolution.
func PlotBoundaries(dir string, b *Boundaries, degree int) error {
	x := make([]float64, b.NumLines())
	for i := range x {
		x[i] = float64(i)
	}

	var lines []interface{}
	for _, h := range []Half{Top, Bottom} {
		fitted, _, err := b.Fit(h, degree)
		if err != nil {
			return fmt.Errorf("could not fit %v boundaries: %w", h, err)
		}
		lines = append(lines,
			h.String()+"(raw)", plotterXY(x, toFloats(b.Rows(h))),
			h.String()+"(fitted)", plotterXY(x, fitted),
		)
	}

	err := plotToFile(
		dir,
		"Calibration Boundaries",
		"Line",
		"Panorama Row",
		func(p *plot.Plot) error {
			return plotutil.AddLinePoints(p, lines...)
		},
	)
	if err != nil {
		return fmt.Errorf("could not plot calibration boundaries: %w", err)
	}
	return nil
}

// PlotTimings plots the per-frame stage durations in t to dir.
func PlotTimings(dir string, t *Timings) error {
	x := make([]float64, t.Len())
	for i := range x {
		x[i] = float64(i)
	}

	err := plotToFile(
		dir,
		"Stage Timings",
		"Frame",
		"Duration (s)",
		func(p *plot.Plot) error {
			return plotutil.AddLinePoints(p,
				StageCrop, plotterXY(x, t.Crop),
				StageUnwrap, plotterXY(x, t.Unwrap),
				StageRectify, plotterXY(x, t.Rectify),
				StageEmit, plotterXY(x, t.Emit),
			)
		},
	)
	if err != nil {
		return fmt.Errorf("could not plot stage timings: %w", err)
	}
	return nil
}

// plotToFile creates a plot with a specified name and x&y titles using the
// provided draw function, and then saves to a PNG file in dir named after
// the plot.
func plotToFile(dir, name, xTitle, yTitle string, draw func(*plot.Plot) error) error {
	p := plot.New()
	p.Title.Text = name
	p.X.Label.Text = xTitle
	p.Y.Label.Text = yTitle
	err := draw(p)
	if err != nil {
		return fmt.Errorf("could not draw plot contents: %w", err)
	}
	if err := p.Save(15*vg.Centimeter, 15*vg.Centimeter, filepath.Join(dir, name+".png")); err != nil {
		return fmt.Errorf("could not save plot: %w", err)
	}
	return nil
}

// plotterXY provides a plotter.XYs type value based on the given x and y data.
func plotterXY(x, y []float64) plotter.XYs {
	xy := make(plotter.XYs, len(x))
	for i := range x {
		xy[i].X = x[i]
		xy[i].Y = y[i]
	}
	return xy
}

func toFloats(s []int) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = float64(v)
	}
	return out
}
