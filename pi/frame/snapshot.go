/*
DESCRIPTION
  snapshot.go provides a headless preview Sink, which keeps a single
  downscaled image of the latest result on disk.

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

package frame

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// SnapshotSink overwrites one preview image per result, showing the top band
// above the bottom band (or the panorama when there are no bands), scaled to
// fit within maxWidth pixels.
type SnapshotSink struct {
	path     string
	maxWidth uint
}

// NewSnapshotSink returns a SnapshotSink writing to path.
func NewSnapshotSink(path string, maxWidth uint) (*SnapshotSink, error) {
	if _, err := imaging.FormatFromFilename(path); err != nil {
		return nil, fmt.Errorf("unsupported snapshot file %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("could not create snapshot directory: %w", err)
	}
	return &SnapshotSink{path: path, maxWidth: maxWidth}, nil
}

// Put replaces the snapshot with a preview of r. The file is replaced by
// rename so readers never see a partial image.
func (s *SnapshotSink) Put(r *Result) error {
	img := r.Panorama
	if r.Bands != nil {
		img = stack(r.Bands.Top, r.Bands.Bottom)
	}

	b := img.Bounds()
	thumb := resize.Thumbnail(s.maxWidth, uint(b.Dy()), img, resize.Bilinear)

	tmp := filepath.Join(filepath.Dir(s.path), ".tmp-"+filepath.Base(s.path))
	if err := imaging.Save(thumb, tmp); err != nil {
		return fmt.Errorf("could not save snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("could not replace snapshot: %w", err)
	}
	return nil
}

// stack returns top drawn above bottom.
func stack(top, bottom image.Image) image.Image {
	tb, bb := top.Bounds(), bottom.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, max(tb.Dx(), bb.Dx()), tb.Dy()+bb.Dy()))
	draw.Draw(out, image.Rect(0, 0, tb.Dx(), tb.Dy()), top, tb.Min, draw.Src)
	draw.Draw(out, image.Rect(0, tb.Dy(), bb.Dx(), tb.Dy()+bb.Dy()), bottom, bb.Min, draw.Src)
	return out
}

// Close implements Sink.
func (s *SnapshotSink) Close() error { return nil }
