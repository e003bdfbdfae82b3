/*
DESCRIPTION
  stabilize.go provides the mirror centre trajectory and the stabilizer,
  which derives a fresh crop region for every frame from that trajectory.

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
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Point is a mirror centre in source frame pixel coordinates.
type Point struct {
	X, Y float64
}

// Trajectory holds the mirror centre of each frame, indexed by frame number.
type Trajectory []Point

// ReadTrajectory reads one "x,y" pair per line from r. Blank lines are
// ignored.
func ReadTrajectory(r io.Reader) (Trajectory, error) {
	var t Trajectory
	s := bufio.NewScanner(r)
	for n := 1; s.Scan(); n++ {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		p, err := parsePoint(line)
		if err != nil {
			return nil, &ConfigError{Param: "trajectory", Err: fmt.Errorf("line %d: %w", n, err)}
		}
		t = append(t, p)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("could not read trajectory: %w", err)
	}
	return t, nil
}

func parsePoint(s string) (Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return Point{}, fmt.Errorf("expected x,y pair, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return Point{}, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return Point{}, err
	}
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
		return Point{}, fmt.Errorf("centre %q is not finite", s)
	}
	return Point{X: x, Y: y}, nil
}

// LoadTrajectory reads a trajectory from the file at path.
func LoadTrajectory(path string) (Trajectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open trajectory file: %w", err)
	}
	defer f.Close()

	t, err := ReadTrajectory(f)
	if err != nil {
		return nil, fmt.Errorf("could not read trajectory file %s: %w", path, err)
	}
	return t, nil
}

// Stabilizer centres the mirror crop on the tracked mirror centre of each
// frame.
type Stabilizer struct {
	t      Trajectory
	radius int
}

// NewStabilizer returns a Stabilizer cropping squares of side 2*radius
// around the centres in t.
func NewStabilizer(t Trajectory, radius int) *Stabilizer {
	return &Stabilizer{t: t, radius: radius}
}

// Len returns the number of frames the trajectory covers.
func (s *Stabilizer) Len() int { return len(s.t) }

// Region returns the crop region of frame k. A frame beyond the end of the
// trajectory is a configuration error; no earlier centre is reused.
func (s *Stabilizer) Region(k int) (Region, error) {
	if k < 0 || k >= len(s.t) {
		return Region{}, configErrorf("trajectory", "no mirror centre for frame %d, trajectory has %d entries", k, len(s.t))
	}
	c := s.t[k]
	return Region{
		X:    int(math.Round(c.X)) - s.radius,
		Y:    int(math.Round(c.Y)) - s.radius,
		Size: 2 * s.radius,
	}, nil
}
