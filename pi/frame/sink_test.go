/*
DESCRIPTION
  sink_test.go provides testing for the file and snapshot sinks.

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
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/ausocean/utils/logging"
	"github.com/disintegration/imaging"

	"github.com/ausocean/omnicam/pi/panorama"
)

func testResult(n int, bands bool) *Result {
	r := &Result{N: n, Panorama: imaging.New(40, 20, color.NRGBA{255, 0, 0, 255})}
	if bands {
		r.Bands = &panorama.Bands{
			Top:    imaging.New(40, 10, color.NRGBA{0, 255, 0, 255}),
			Bottom: imaging.New(40, 10, color.NRGBA{0, 0, 255, 255}),
		}
	}
	return r
}

func exists(t *testing.T, path string) bool {
	_, err := os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("could not stat %s: %v", path, err)
	}
	return err == nil
}

func TestFileSink(t *testing.T) {
	tests := []struct {
		name         string
		savePanorama bool
		bands        bool
		want         map[string]bool
	}{
		{
			name:  "bands only",
			bands: true,
			want:  map[string]bool{"top": true, "bottom": true, "panorama": false},
		},
		{
			name:         "bands and panorama",
			savePanorama: true,
			bands:        true,
			want:         map[string]bool{"top": true, "bottom": true, "panorama": true},
		},
		{
			name: "panorama only",
			want: map[string]bool{"top": false, "bottom": false, "panorama": true},
		},
	}

	for _, test := range tests {
		dir := filepath.Join(t.TempDir(), "out")
		s, err := NewFileSink(dir, ".png", test.savePanorama, (*logging.TestLogger)(t))
		if err != nil {
			t.Fatalf("%s: could not create sink: %v", test.name, err)
		}
		if err := s.Put(testResult(3, test.bands)); err != nil {
			t.Fatalf("%s: did not expect error: %v", test.name, err)
		}
		for kind, want := range test.want {
			path := filepath.Join(dir, kind+"_frame_3.png")
			if got := exists(t, path); got != want {
				t.Errorf("%s: %s exists = %v, want %v", test.name, kind, got, want)
			}
		}
		if err := s.Close(); err != nil {
			t.Errorf("%s: did not expect error on close: %v", test.name, err)
		}
	}
}

func TestFileSinkContents(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileSink(dir, "png", false, (*logging.TestLogger)(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(testResult(0, true)); err != nil {
		t.Fatal(err)
	}

	img, err := imaging.Open(s.Path("bottom", 0))
	if err != nil {
		t.Fatalf("could not open bottom band: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(40, 10) {
		t.Errorf("unexpected size: got %v, want 40x10", got)
	}
	if r, g, b, _ := img.At(5, 5).RGBA(); r != 0 || g != 0 || b != 0xffff {
		t.Errorf("unexpected bottom band colour: %d %d %d", r, g, b)
	}
}

func TestFileSinkBadFormat(t *testing.T) {
	_, err := NewFileSink(t.TempDir(), "xyz", false, (*logging.TestLogger)(t))
	if !errors.Is(err, panorama.ErrConfig) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestSnapshotSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview", "latest.jpg")
	s, err := NewSnapshotSink(path, 20)
	if err != nil {
		t.Fatalf("could not create sink: %v", err)
	}

	for n := 0; n < 2; n++ {
		if err := s.Put(testResult(n, true)); err != nil {
			t.Fatalf("frame %d: did not expect error: %v", n, err)
		}
	}

	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("could not open snapshot: %v", err)
	}
	// 40x20 stacked bands scaled to fit 20 pixels wide.
	if got := img.Bounds().Size(); got != image.Pt(20, 10) {
		t.Errorf("unexpected snapshot size: got %v, want 20x10", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the snapshot in its directory, got %d entries", len(entries))
	}
}
