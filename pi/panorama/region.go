/*
DESCRIPTION
  region.go provides the square crop region describing where the mirror
  lies within a raw frame.

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
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Region is the bounding square of the mirror within a raw frame, relative
// to the frame's top left corner.
type Region struct {
	X, Y int
	Size int
}

// FixedRegion returns the region for a rig whose mirror does not move.
func FixedRegion(x, y, size int) Region {
	return Region{X: x, Y: y, Size: size}
}

// Rect returns the region as a rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Size, r.Y+r.Size)
}

// String implements fmt.Stringer.
func (r Region) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Size, r.Size)
}

// Crop returns the part of src covered by r. Images supporting SubImage
// are not copied. A region that is not wholly inside src is a
// configuration error.
func (r Region) Crop(src image.Image) (image.Image, error) {
	b := src.Bounds()
	rect := r.Rect().Add(b.Min)
	if r.Size <= 0 || !rect.In(b) {
		return nil, configErrorf("crop", "region %v exceeds frame %dx%d", r, b.Dx(), b.Dy())
	}

	if s, ok := src.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return s.SubImage(rect), nil
	}
	return imaging.Crop(src, rect), nil
}
