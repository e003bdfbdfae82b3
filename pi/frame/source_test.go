/*
DESCRIPTION
  source_test.go provides testing for the frame sources.

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
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func TestImageSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	want := imaging.New(8, 6, color.NRGBA{10, 20, 30, 255})
	if err := imaging.Save(want, path); err != nil {
		t.Fatalf("could not write test image: %v", err)
	}

	src, err := NewImageSource(path)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	defer src.Close()

	ctx := context.Background()
	img, err := src.Read(ctx)
	if err != nil {
		t.Fatalf("did not expect error on first read: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(8, 6) {
		t.Errorf("unexpected size: got %v, want 8x6", got)
	}
	if _, err := src.Read(ctx); err != io.EOF {
		t.Errorf("expected io.EOF on second read, got %v", err)
	}
}

func TestImageSourceUnavailable(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{filepath.Join(dir, "missing.png"), bad} {
		_, err := NewImageSource(path)
		if !errors.Is(err, ErrSourceUnavailable) {
			t.Errorf("%s: expected ErrSourceUnavailable, got %v", filepath.Base(path), err)
		}
	}
}

func TestStillSourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := NewStillSource(image.NewGray(image.Rect(0, 0, 1, 1)))
	if _, err := src.Read(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestVideoSize(t *testing.T) {
	tests := []struct {
		probe string
		w, h  int
		err   bool
	}{
		{
			probe: `{"streams":[{"codec_type":"audio"},{"codec_type":"video","width":640,"height":480}]}`,
			w:     640,
			h:     480,
		},
		{probe: `{"streams":[{"codec_type":"audio"}]}`, err: true},
		{probe: `{"streams":[{"codec_type":"video","width":0,"height":0}]}`, err: true},
		{probe: `not json`, err: true},
	}

	for i, test := range tests {
		w, h, err := videoSize(test.probe)
		if (err != nil) != test.err {
			t.Errorf("test %d: unexpected error state: %v", i, err)
			continue
		}
		if w != test.w || h != test.h {
			t.Errorf("test %d: got %dx%d, want %dx%d", i, w, h, test.w, test.h)
		}
	}
}
