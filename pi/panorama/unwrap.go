/*
DESCRIPTION
  unwrap.go applies a resampling Map to a cropped mirror image, producing the
  panorama by interpolated pixel lookup. Source coordinates that fall outside
  the crop are filled with opaque black.

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
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Interpolation selects how fractional source coordinates are sampled.
type Interpolation int

// Supported interpolation policies.
const (
	Linear Interpolation = iota
	Nearest
	CatmullRom
)

// ParseInterpolation returns the Interpolation named by s.
func ParseInterpolation(s string) (Interpolation, error) {
	switch strings.ToLower(s) {
	case "linear", "bilinear", "":
		return Linear, nil
	case "nearest":
		return Nearest, nil
	case "catmullrom", "cubic":
		return CatmullRom, nil
	default:
		return Linear, configErrorf("interpolation", "unknown interpolation %q", s)
	}
}

// String implements fmt.Stringer.
func (i Interpolation) String() string {
	switch i {
	case Linear:
		return "linear"
	case Nearest:
		return "nearest"
	case CatmullRom:
		return "catmullrom"
	default:
		return fmt.Sprintf("Interpolation(%d)", int(i))
	}
}

// scaler returns the x/image/draw scaler implementing i.
func (i Interpolation) scaler() draw.Scaler {
	switch i {
	case Nearest:
		return draw.NearestNeighbor
	case CatmullRom:
		return draw.CatmullRom
	default:
		return draw.BiLinear
	}
}

// Remapper unwraps cropped mirror images using a shared Map.
type Remapper struct {
	m      *Map
	interp Interpolation
}

// NewRemapper returns a Remapper for m. Catmull-Rom is not offered for
// remapping and falls back to bilinear sampling.
func NewRemapper(m *Map, interp Interpolation) *Remapper {
	return &Remapper{m: m, interp: interp}
}

// Unwrap implements unwrapping of src using the Remapper's map.
func (r *Remapper) Unwrap(src image.Image) (image.Image, error) {
	return Unwrap(src, r.m, r.interp)
}

// Unwrap resamples src, a square crop of the mirror, into a panorama using
// m. src must be at least 2*m.Radius pixels on each side. The result has the
// channel depth of src: *image.Gray for grayscale sources, otherwise
// *image.NRGBA.
func Unwrap(src image.Image, m *Map, interp Interpolation) (image.Image, error) {
	b := src.Bounds()
	side := 2 * m.Radius
	if b.Dx() < side || b.Dy() < side {
		return nil, configErrorf("radius", "source %dx%d smaller than mirror crop %dx%d", b.Dx(), b.Dy(), side, side)
	}

	in := newPixbuf(src)
	rows, cols := m.Size()
	out, outPix := in.alloc(cols, rows)

	xs, ys := m.X.RawMatrix(), m.Y.RawMatrix()
	px := make([]uint8, in.ch)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x := xs.Data[row*xs.Stride+col]
			y := ys.Data[row*ys.Stride+col]
			if interp == Nearest {
				in.nearest(x, y, px)
			} else {
				in.linear(x, y, px)
			}
			copy(outPix.pix[row*outPix.stride+col*in.ch:], px)
		}
	}
	return out, nil
}

// pixbuf is a view of the interleaved 8 bit samples of a Gray or NRGBA image.
type pixbuf struct {
	pix    []uint8
	stride int
	ch     int // Samples per pixel, 1 or 4.
	w, h   int
	border []uint8
}

var (
	grayBorder  = []uint8{0}
	nrgbaBorder = []uint8{0, 0, 0, 0xff}
)

// newPixbuf returns a view of img. Images other than *image.Gray and
// *image.NRGBA are converted to *image.NRGBA first.
func newPixbuf(img image.Image) pixbuf {
	switch im := img.(type) {
	case *image.Gray:
		return pixbuf{pix: im.Pix, stride: im.Stride, ch: 1, w: im.Rect.Dx(), h: im.Rect.Dy(), border: grayBorder}
	case *image.NRGBA:
		return pixbuf{pix: im.Pix, stride: im.Stride, ch: 4, w: im.Rect.Dx(), h: im.Rect.Dy(), border: nrgbaBorder}
	default:
		return newPixbuf(imaging.Clone(img))
	}
}

// alloc returns a new image of the same depth as p and a view of it.
func (p pixbuf) alloc(w, h int) (image.Image, pixbuf) {
	r := image.Rect(0, 0, w, h)
	if p.ch == 1 {
		img := image.NewGray(r)
		return img, newPixbuf(img)
	}
	img := image.NewNRGBA(r)
	return img, newPixbuf(img)
}

// at returns sample c at (x, y), or the border value outside the image.
func (p pixbuf) at(x, y, c int) float64 {
	if x < 0 || y < 0 || x >= p.w || y >= p.h {
		return float64(p.border[c])
	}
	return float64(p.pix[y*p.stride+x*p.ch+c])
}

// linear writes the bilinear interpolation of p at (x, y) into px.
func (p pixbuf) linear(x, y float64, px []uint8) {
	fx, fy := math.Floor(x), math.Floor(y)
	x0, y0 := int(fx), int(fy)
	dx, dy := x-fx, y-fy
	for c := 0; c < p.ch; c++ {
		v := (1-dx)*(1-dy)*p.at(x0, y0, c) +
			dx*(1-dy)*p.at(x0+1, y0, c) +
			(1-dx)*dy*p.at(x0, y0+1, c) +
			dx*dy*p.at(x0+1, y0+1, c)
		px[c] = clamp8(v)
	}
}

// nearest writes the sample of p nearest to (x, y) into px.
func (p pixbuf) nearest(x, y float64, px []uint8) {
	x0, y0 := int(math.Round(x)), int(math.Round(y))
	for c := 0; c < p.ch; c++ {
		px[c] = uint8(p.at(x0, y0, c))
	}
}

func clamp8(v float64) uint8 {
	v = math.Round(v)
	switch {
	case v < 0:
		return 0
	case v > 0xff:
		return 0xff
	}
	return uint8(v)
}
