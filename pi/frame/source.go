/*
DESCRIPTION
  source.go defines the Source interface through which the pipeline acquires
  frames, and provides a Source for single still images.

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

// Package frame provides the frame sources and output sinks used by the
// panorama pipeline.
package frame

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// ErrSourceUnavailable is returned, wrapped, when an image or video cannot be
// opened or decoded.
var ErrSourceUnavailable = errors.New("source unavailable")

// Source provides frames in order. Read returns io.EOF once the source is
// exhausted.
type Source interface {
	Read(ctx context.Context) (image.Image, error)
	Close() error
}

// ImageSource is a Source yielding a single still image.
type ImageSource struct {
	img  image.Image
	done bool
}

// NewImageSource decodes the image at path. JPEG, PNG, GIF, TIFF, BMP and
// WebP files are supported.
func NewImageSource(path string) (*ImageSource, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: could not decode %s: %v", ErrSourceUnavailable, path, err)
	}
	return &ImageSource{img: img}, nil
}

// NewStillSource returns an ImageSource yielding img.
func NewStillSource(img image.Image) *ImageSource {
	return &ImageSource{img: img}
}

// Read returns the image on the first call and io.EOF thereafter.
func (s *ImageSource) Read(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.done {
		return nil, io.EOF
	}
	s.done = true
	return s.img, nil
}

// Close implements Source; there is nothing to release.
func (s *ImageSource) Close() error { return nil }
