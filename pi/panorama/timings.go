/*
DESCRIPTION
  timings.go provides the Timings type used to record how long each stage of
  the unwrap pipeline takes per frame.

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
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Timings holds the per-frame duration of each pipeline stage in seconds.
type Timings struct {
	Crop    []float64
	Unwrap  []float64
	Rectify []float64
	Emit    []float64
}

// Stage timing names, as used by Summarize.
const (
	StageCrop    = "crop"
	StageUnwrap  = "unwrap"
	StageRectify = "rectify"
	StageEmit    = "emit"
)

// NewTimings returns a new Timings with capacity for n frames.
func NewTimings(n int) *Timings {
	return &Timings{
		Crop:    make([]float64, 0, n),
		Unwrap:  make([]float64, 0, n),
		Rectify: make([]float64, 0, n),
		Emit:    make([]float64, 0, n),
	}
}

// Update appends the stage durations of one frame.
func (t *Timings) Update(crop, unwrap, rectify, emit time.Duration) {
	t.Crop = append(t.Crop, crop.Seconds())
	t.Unwrap = append(t.Unwrap, unwrap.Seconds())
	t.Rectify = append(t.Rectify, rectify.Seconds())
	t.Emit = append(t.Emit, emit.Seconds())
}

// Len returns the number of frames recorded.
func (t *Timings) Len() int { return len(t.Crop) }

// Summary describes the durations of one stage in seconds.
type Summary struct {
	Mean, StdDev, Max float64
}

// Summarize returns a Summary per stage, keyed by stage name. Stages with no
// samples are omitted.
func (t *Timings) Summarize() map[string]Summary {
	out := make(map[string]Summary)
	for name, s := range t.stages() {
		if len(s) == 0 {
			continue
		}
		var sum Summary
		sum.Mean, sum.StdDev = stat.MeanStdDev(s, nil)
		sum.Max = floats.Max(s)
		out[name] = sum
	}
	return out
}

func (t *Timings) stages() map[string][]float64 {
	return map[string][]float64{
		StageCrop:    t.Crop,
		StageUnwrap:  t.Unwrap,
		StageRectify: t.Rectify,
		StageEmit:    t.Emit,
	}
}
