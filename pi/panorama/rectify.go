/*
DESCRIPTION
  rectify.go rescales the calibration bands of a panorama to a fixed height
  and stacks them, producing top and bottom stereo images with uniform
  angular resolution.

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
	"image"

	"golang.org/x/image/draw"
)

// Bands holds the rectified top and bottom stereo images of one frame.
type Bands struct {
	Top, Bottom image.Image
}

// Rectifier assembles Bands from panoramas using fixed calibration
// boundaries. It holds no per-frame state.
type Rectifier struct {
	b             *Boundaries
	sectionHeight int
	scaler        draw.Scaler
}

// NewRectifier returns a Rectifier scaling every band of b to sectionHeight
// rows using interp.
func NewRectifier(b *Boundaries, sectionHeight int, interp Interpolation) (*Rectifier, error) {
	if sectionHeight <= 0 {
		return nil, configErrorf("section_height", "must be positive, got %d", sectionHeight)
	}
	return &Rectifier{b: b, sectionHeight: sectionHeight, scaler: interp.scaler()}, nil
}

// BandHeight returns the height of each rectified image.
func (r *Rectifier) BandHeight() int {
	return r.b.Sections() * r.sectionHeight
}

// Rectify returns the top and bottom bands of pan. Every boundary must lie
// within pan.
func (r *Rectifier) Rectify(pan image.Image) (*Bands, error) {
	b := pan.Bounds()
	if m := r.b.Max(); m > b.Dy() {
		return nil, configErrorf("boundaries", "row %d beyond panorama height %d", m, b.Dy())
	}

	return &Bands{
		Top:    r.band(pan, r.b.half(Top)),
		Bottom: r.band(pan, r.b.half(Bottom)),
	}, nil
}

// band scales each strip [rows[i], rows[i+1]) of pan to the section height
// and stacks the results.
func (r *Rectifier) band(pan image.Image, rows []int) image.Image {
	b := pan.Bounds()
	w := b.Dx()
	dst := newLike(pan, w, r.BandHeight())
	for i := 0; i < len(rows)-1; i++ {
		sr := image.Rect(b.Min.X, b.Min.Y+rows[i], b.Max.X, b.Min.Y+rows[i+1])
		dr := image.Rect(0, i*r.sectionHeight, w, (i+1)*r.sectionHeight)
		r.scaler.Scale(dst, dr, pan, sr, draw.Src, nil)
	}
	return dst
}

// newLike returns a blank image of size w x h with the channel depth of img.
func newLike(img image.Image, w, h int) draw.Image {
	rect := image.Rect(0, 0, w, h)
	if _, ok := img.(*image.Gray); ok {
		return image.NewGray(rect)
	}
	return image.NewNRGBA(rect)
}
