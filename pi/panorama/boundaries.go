/*
DESCRIPTION
  boundaries.go provides the calibration boundaries type (Boundaries), an
  ordered list of panorama rows partitioning the panorama into bands of
  equal angular resolution for the top and bottom mirror regions. Functions
  are provided for reading boundaries from calibration files.

LICENSE
  Copyright (C) 2020-2026 the Australian Ocean Lab (AusOcean)

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
	"os"
	"strconv"
	"strings"
)

// Half selects the top or bottom set of boundaries.
type Half int

const (
	Top Half = iota
	Bottom
)

// String implements fmt.Stringer.
func (h Half) String() string {
	if h == Bottom {
		return "bottom"
	}
	return "top"
}

// Boundaries holds 2*NumLines panorama rows. The first NumLines delimit the
// NumLines-1 top bands and the remainder the NumLines-1 bottom bands.
// Boundaries are immutable once constructed.
type Boundaries struct {
	numLines int
	vals     []int
}

// NewBoundaries returns Boundaries for vals. numLines must be at least 2,
// vals must hold exactly 2*numLines rows, and each half must be strictly
// increasing; a repeated row would give a band with no source rows.
func NewBoundaries(vals []int, numLines int) (*Boundaries, error) {
	if numLines < 2 {
		return nil, configErrorf("num_lines", "need at least 2 lines, got %d", numLines)
	}
	if len(vals) != 2*numLines {
		return nil, configErrorf("boundaries", "expected %d values for %d lines, got %d", 2*numLines, numLines, len(vals))
	}

	for h, half := range [][]int{vals[:numLines], vals[numLines:]} {
		for i, v := range half {
			if v < 0 {
				return nil, configErrorf("boundaries", "%v boundary %d is negative (%d)", Half(h), i, v)
			}
			if i == 0 {
				continue
			}
			switch {
			case v == half[i-1]:
				return nil, configErrorf("boundaries", "%v band %d has zero height (row %d)", Half(h), i-1, v)
			case v < half[i-1]:
				return nil, configErrorf("boundaries", "%v boundaries not increasing at %d (%d after %d)", Half(h), i, v, half[i-1])
			}
		}
	}

	b := &Boundaries{numLines: numLines, vals: make([]int, len(vals))}
	copy(b.vals, vals)
	return b, nil
}

// NumLines returns the number of boundary lines per half.
func (b *Boundaries) NumLines() int { return b.numLines }

// Sections returns the number of bands per half.
func (b *Boundaries) Sections() int { return b.numLines - 1 }

// Rows returns a copy of the boundary rows of half h.
func (b *Boundaries) Rows(h Half) []int {
	out := make([]int, b.numLines)
	copy(out, b.half(h))
	return out
}

// Heights returns the source height of each band of half h.
func (b *Boundaries) Heights(h Half) []int {
	rows := b.half(h)
	out := make([]int, len(rows)-1)
	for i := range out {
		out[i] = rows[i+1] - rows[i]
	}
	return out
}

// Max returns the largest boundary row, which the panorama height must
// reach.
func (b *Boundaries) Max() int {
	return max(b.vals[b.numLines-1], b.vals[len(b.vals)-1])
}

func (b *Boundaries) half(h Half) []int {
	if h == Bottom {
		return b.vals[b.numLines:]
	}
	return b.vals[:b.numLines]
}

// ReadBoundaries reads one integer row per line from r. Blank lines are
// ignored.
func ReadBoundaries(r io.Reader, numLines int) (*Boundaries, error) {
	var vals []int
	s := bufio.NewScanner(r)
	for n := 1; s.Scan(); n++ {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		v, err := strconv.Atoi(line)
		if err != nil {
			return nil, &ConfigError{Param: "boundaries", Err: fmt.Errorf("line %d: %w", n, err)}
		}
		vals = append(vals, v)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("could not read boundaries: %w", err)
	}
	return NewBoundaries(vals, numLines)
}

// LoadBoundaries reads boundaries from the calibration file at path.
func LoadBoundaries(path string, numLines int) (*Boundaries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open calibration file: %w", err)
	}
	defer f.Close()

	b, err := ReadBoundaries(f, numLines)
	if err != nil {
		return nil, fmt.Errorf("could not read calibration file %s: %w", path, err)
	}
	return b, nil
}
