//go:build !withcv
// +build !withcv

/*
DESCRIPTION
  open_nocv.go selects the video source and preview sink for builds without
  OpenCV.

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
	"os"
	"path/filepath"

	"github.com/ausocean/utils/logging"
)

// Preview snapshot used in place of windows.
const (
	previewName  = "panorama-preview.png"
	previewWidth = 640
)

// OpenVideo opens the video at path using ffmpeg.
func OpenVideo(ctx context.Context, path string, log logging.Logger) (Source, error) {
	return NewFFmpegSource(ctx, path, log)
}

// NewPreview returns a SnapshotSink writing to the temporary directory, as
// preview windows need OpenCV.
func NewPreview(log logging.Logger) (Sink, error) {
	path := filepath.Join(os.TempDir(), previewName)
	s, err := NewSnapshotSink(path, previewWidth)
	if err != nil {
		return nil, err
	}
	log.Info("preview windows need a withcv build, writing preview snapshots instead", "path", path)
	return s, nil
}
