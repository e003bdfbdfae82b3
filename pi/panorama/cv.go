//go:build withcv
// +build withcv

/*
DESCRIPTION
  cv.go provides OpenCV backed implementations of the unwrap and rectify
  stages, using the same Map and Boundaries as the pure Go implementations.

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
	"errors"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var black = color.RGBA{0, 0, 0, 0xff}

// cvInterpolation returns the OpenCV flag for interp.
func cvInterpolation(interp Interpolation) gocv.InterpolationFlags {
	switch interp {
	case Nearest:
		return gocv.InterpolationNearestNeighbor
	case CatmullRom:
		return gocv.InterpolationCubic
	default:
		return gocv.InterpolationLinear
	}
}

// Mats returns the map as a pair of CV_32FC1 mats suitable for gocv.Remap.
// The caller must close both.
func (m *Map) Mats() (gocv.Mat, gocv.Mat) {
	rows, cols := m.Size()
	mx := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32F)
	my := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32F)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			mx.SetFloatAt(r, c, float32(m.X.At(r, c)))
			my.SetFloatAt(r, c, float32(m.Y.At(r, c)))
		}
	}
	return mx, my
}

// CVRemapper unwraps mirror crops with gocv.Remap.
type CVRemapper struct {
	radius     int
	interp     gocv.InterpolationFlags
	mapX, mapY gocv.Mat
}

// NewCVRemapper returns a CVRemapper holding OpenCV copies of m. Close must
// be called to release them.
func NewCVRemapper(m *Map, interp Interpolation) *CVRemapper {
	mx, my := m.Mats()
	return &CVRemapper{radius: m.Radius, interp: cvInterpolation(interp), mapX: mx, mapY: my}
}

// UnwrapMat returns the panorama of src. The caller must close the result.
func (r *CVRemapper) UnwrapMat(src gocv.Mat) (gocv.Mat, error) {
	if src.Empty() {
		return gocv.NewMat(), errors.New("image is empty, cannot unwrap")
	}
	side := 2 * r.radius
	if src.Rows() < side || src.Cols() < side {
		return gocv.NewMat(), configErrorf("radius", "source %dx%d smaller than mirror crop %dx%d", src.Cols(), src.Rows(), side, side)
	}

	dst := gocv.NewMat()
	gocv.Remap(src, &dst, &r.mapX, &r.mapY, r.interp, gocv.BorderConstant, black)
	return dst, nil
}

// Unwrap converts src to a mat, unwraps it and converts the result back.
func (r *CVRemapper) Unwrap(src image.Image) (image.Image, error) {
	m, err := toMat(src)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	pan, err := r.UnwrapMat(m)
	if err != nil {
		return nil, err
	}
	defer pan.Close()
	return pan.ToImage()
}

// Close releases the OpenCV maps.
func (r *CVRemapper) Close() error {
	return errors.Join(r.mapX.Close(), r.mapY.Close())
}

// CVRectifier rectifies panoramas with gocv.Resize.
type CVRectifier struct {
	b             *Boundaries
	sectionHeight int
	interp        gocv.InterpolationFlags
}

// NewCVRectifier returns a CVRectifier scaling every band of b to
// sectionHeight rows.
func NewCVRectifier(b *Boundaries, sectionHeight int, interp Interpolation) (*CVRectifier, error) {
	if sectionHeight <= 0 {
		return nil, configErrorf("section_height", "must be positive, got %d", sectionHeight)
	}
	return &CVRectifier{b: b, sectionHeight: sectionHeight, interp: cvInterpolation(interp)}, nil
}

// RectifyMat returns the top and bottom bands of pan. The caller must close
// both.
func (r *CVRectifier) RectifyMat(pan gocv.Mat) (gocv.Mat, gocv.Mat, error) {
	if m := r.b.Max(); m > pan.Rows() {
		return gocv.NewMat(), gocv.NewMat(), configErrorf("boundaries", "row %d beyond panorama height %d", m, pan.Rows())
	}
	return r.bandMat(pan, r.b.half(Top)), r.bandMat(pan, r.b.half(Bottom)), nil
}

func (r *CVRectifier) bandMat(pan gocv.Mat, rows []int) gocv.Mat {
	cols := pan.Cols()
	dst := gocv.NewMatWithSize(r.b.Sections()*r.sectionHeight, cols, pan.Type())
	resized := gocv.NewMat()
	defer resized.Close()

	for i := 0; i < len(rows)-1; i++ {
		section := pan.Region(image.Rect(0, rows[i], cols, rows[i+1]))
		gocv.Resize(section, &resized, image.Pt(cols, r.sectionHeight), 0, 0, r.interp)
		roi := dst.Region(image.Rect(0, i*r.sectionHeight, cols, (i+1)*r.sectionHeight))
		resized.CopyTo(&roi)
		roi.Close()
		section.Close()
	}
	return dst
}

// Rectify converts pan to a mat, rectifies it and converts the bands back.
func (r *CVRectifier) Rectify(pan image.Image) (*Bands, error) {
	m, err := toMat(pan)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	top, bottom, err := r.RectifyMat(m)
	defer top.Close()
	defer bottom.Close()
	if err != nil {
		return nil, err
	}

	var b Bands
	b.Top, err = top.ToImage()
	if err != nil {
		return nil, fmt.Errorf("could not convert top band: %w", err)
	}
	b.Bottom, err = bottom.ToImage()
	if err != nil {
		return nil, fmt.Errorf("could not convert bottom band: %w", err)
	}
	return &b, nil
}

// toMat converts img to an 8 bit mat, keeping grayscale images single
// channel.
func toMat(img image.Image) (gocv.Mat, error) {
	var (
		m   gocv.Mat
		err error
	)
	if g, ok := img.(*image.Gray); ok {
		m, err = gocv.ImageGrayToMatGray(g)
	} else {
		m, err = gocv.ImageToMatRGB(img)
	}
	if err != nil {
		return m, fmt.Errorf("could not convert image to mat: %w", err)
	}
	return m, nil
}
