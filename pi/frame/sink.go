/*
DESCRIPTION
  sink.go defines the Sink interface receiving processed frames, and
  provides a Sink writing numbered image files.

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
	"strings"

	"github.com/ausocean/utils/logging"
	"github.com/disintegration/imaging"

	"github.com/ausocean/omnicam/pi/panorama"
)

// Result is the output of the pipeline for one frame.
type Result struct {
	N        int             // Frame number, from 0.
	Panorama image.Image     // The unwrapped panorama.
	Bands    *panorama.Bands // Nil when rectification is disabled.
}

// Sink receives results in frame order. A Sink must not modify a Result.
type Sink interface {
	Put(r *Result) error
	Close() error
}

// Canceller is implemented by sinks that can ask the pipeline to stop, such
// as a preview window closed by the operator.
type Canceller interface {
	Cancelled() bool
}

// FileSink writes each result to numbered image files in a directory.
type FileSink struct {
	dir          string
	ext          string
	savePanorama bool
	log          logging.Logger
}

// NewFileSink returns a FileSink writing files with extension ext (e.g.
// "png") into dir, which is created if necessary. If savePanorama is set
// the panorama is written alongside the bands.
func NewFileSink(dir, ext string, savePanorama bool, log logging.Logger) (*FileSink, error) {
	ext = strings.TrimPrefix(ext, ".")
	if _, err := imaging.FormatFromExtension(ext); err != nil {
		return nil, &panorama.ConfigError{Param: "format", Err: err}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create output directory: %w", err)
	}
	return &FileSink{dir: dir, ext: ext, savePanorama: savePanorama, log: log}, nil
}

// Path returns the file path for image kind (top, bottom or panorama) of
// frame n.
func (s *FileSink) Path(kind string, n int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_frame_%d.%s", kind, n, s.ext))
}

// output is one image of a Result destined for its own file.
type output struct {
	kind string
	img  image.Image
}

// Put writes the bands of r, and its panorama if requested. Results without
// bands always have their panorama written.
func (s *FileSink) Put(r *Result) error {
	var outs []output
	if r.Bands != nil {
		outs = append(outs, output{"top", r.Bands.Top}, output{"bottom", r.Bands.Bottom})
	}
	if s.savePanorama || r.Bands == nil {
		outs = append(outs, output{"panorama", r.Panorama})
	}

	for _, o := range outs {
		path := s.Path(o.kind, r.N)
		if err := imaging.Save(o.img, path); err != nil {
			return fmt.Errorf("could not save %s: %w", path, err)
		}
		s.log.Debug("saved image", "path", path)
	}
	return nil
}

// Close implements Sink; files are closed as they are written.
func (s *FileSink) Close() error { return nil }
