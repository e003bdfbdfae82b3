/*
DESCRIPTION
  timings_test.go provides testing for Timings and the plotting functions.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean)

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
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestSummarize checks timing statistics.
func TestSummarize(t *testing.T) {
	ts := NewTimings(3)
	if len(ts.Summarize()) != 0 {
		t.Error("expected no summaries without samples")
	}

	ts.Update(1*time.Second, 2*time.Second, 3*time.Second, 0)
	ts.Update(3*time.Second, 2*time.Second, 5*time.Second, 0)

	if ts.Len() != 2 {
		t.Fatalf("unexpected length %d", ts.Len())
	}

	sum := ts.Summarize()
	tests := []struct {
		stage           string
		mean, max, sdev float64
	}{
		{stage: StageCrop, mean: 2, max: 3, sdev: math.Sqrt2},
		{stage: StageUnwrap, mean: 2, max: 2, sdev: 0},
		{stage: StageRectify, mean: 4, max: 5, sdev: math.Sqrt2},
		{stage: StageEmit, mean: 0, max: 0, sdev: 0},
	}
	const eps = 1e-9
	for _, test := range tests {
		s, ok := sum[test.stage]
		if !ok {
			t.Errorf("missing summary for %s", test.stage)
			continue
		}
		if math.Abs(s.Mean-test.mean) > eps || math.Abs(s.Max-test.max) > eps || math.Abs(s.StdDev-test.sdev) > eps {
			t.Errorf("unexpected summary for %s: %+v", test.stage, s)
		}
	}
}

// TestPlot checks that our plotting functions correctly plot and save to file.
func TestPlot(t *testing.T) {
	dir := t.TempDir()

	b, err := NewBoundaries([]int{0, 4, 10, 18, 20, 23, 28, 35}, 4)
	if err != nil {
		t.Fatalf("could not create boundaries: %v", err)
	}
	err = PlotBoundaries(dir, b, 2)
	if err != nil {
		t.Errorf("could not plot boundaries: %v", err)
	}

	ts := NewTimings(2)
	ts.Update(time.Millisecond, 5*time.Millisecond, 9*time.Millisecond, time.Millisecond)
	ts.Update(time.Millisecond, 6*time.Millisecond, 8*time.Millisecond, time.Millisecond)
	err = PlotTimings(dir, ts)
	if err != nil {
		t.Errorf("could not plot timings: %v", err)
	}

	for _, name := range []string{"Calibration Boundaries.png", "Stage Timings.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected plot file %s: %v", name, err)
		}
	}
}
