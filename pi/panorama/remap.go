/*
DESCRIPTION
  remap.go builds the polar to Cartesian resampling map used to unwrap the
  reflection of a spherical mirror into a rectangular panorama.

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

// Package panorama converts frames from a catadioptric (camera and spherical
// mirror) rig into panoramas, and rescales those panoramas piecewise along
// the radial axis into top and bottom stereo bands of uniform angular
// resolution.
package panorama

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// Map holds, for every pixel of a panorama, the fractional source
// coordinate to sample in the square mirror crop. A Map is never modified
// after construction and may be shared between goroutines.
type Map struct {
	Radius int
	X, Y   *mat.Dense
}

// Width returns the panorama width for a mirror of the given radius, that
// being one column per radius unit of arc.
func Width(radius int) int {
	return int(math.Round(2 * math.Pi * float64(radius)))
}

// NewMap returns the resampling map for a mirror crop of side 2*radius.
// The panorama has radius rows and Width(radius) columns. Row 0 samples the
// outer edge of the mirror and each following row moves one pixel toward
// the centre. radius must be positive.
func NewMap(radius int) *Map {
	rows, cols := radius, Width(radius)
	xs := make([]float64, rows*cols)
	ys := make([]float64, rows*cols)

	r := float64(radius)
	for row := 0; row < rows; row++ {
		i := float64(radius - row)
		for j := 0; j < cols; j++ {
			theta := float64(j) / r
			xs[row*cols+j] = r + i*math.Sin(theta)
			ys[row*cols+j] = r + i*math.Cos(theta)
		}
	}

	return &Map{
		Radius: radius,
		X:      mat.NewDense(rows, cols, xs),
		Y:      mat.NewDense(rows, cols, ys),
	}
}

// Size returns the number of rows and columns of the panorama the map
// produces.
func (m *Map) Size() (rows, cols int) {
	return m.X.Dims()
}

// MapCache hands out one Map per radius so that maps are only rebuilt when
// the mirror radius changes. It is safe for concurrent use.
type MapCache struct {
	mu   sync.Mutex
	maps map[int]*Map
}

// Get returns the map for radius, building it on first use.
func (c *MapCache) Get(radius int) *Map {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maps == nil {
		c.maps = make(map[int]*Map)
	}
	m, ok := c.maps[radius]
	if !ok {
		m = NewMap(radius)
		c.maps[radius] = m
	}
	return m
}
