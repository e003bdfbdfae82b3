//go:build withcv
// +build withcv

/*
DESCRIPTION
  cv.go provides an OpenCV video capture Source and a Sink displaying
  results in OpenCV windows.

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
	"fmt"
	"image"
	"io"
	"sync/atomic"

	"github.com/ausocean/utils/logging"
	"gocv.io/x/gocv"
)

// CVSource is a Source reading a video file with gocv.
type CVSource struct {
	vc  *gocv.VideoCapture
	img gocv.Mat
	log logging.Logger
}

// NewCVSource opens the video at path.
func NewCVSource(path string, log logging.Logger) (*CVSource, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: could not open %s: %v", ErrSourceUnavailable, path, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: could not open %s", ErrSourceUnavailable, path)
	}
	log.Debug("opened video", "path", path,
		"width", vc.Get(gocv.VideoCaptureFrameWidth),
		"height", vc.Get(gocv.VideoCaptureFrameHeight))
	return &CVSource{vc: vc, img: gocv.NewMat(), log: log}, nil
}

// Read returns the next frame, or io.EOF when no frames remain.
func (s *CVSource) Read(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ok := s.vc.Read(&s.img); !ok || s.img.Empty() {
		return nil, io.EOF
	}
	img, err := s.img.ToImage()
	if err != nil {
		return nil, fmt.Errorf("could not convert frame: %w", err)
	}
	return img, nil
}

// Close releases the capture device.
func (s *CVSource) Close() error {
	s.img.Close()
	return s.vc.Close()
}

// Key code that closes the preview.
const keyEsc = 27

// WindowSink shows the bands and panorama of each result in OpenCV windows.
// Pressing escape in any window cancels the pipeline.
type WindowSink struct {
	top, bottom, pan *gocv.Window
	cancelled        atomic.Bool
	log              logging.Logger
}

// NewWindowSink opens the preview windows.
func NewWindowSink(log logging.Logger) *WindowSink {
	return &WindowSink{
		top:    gocv.NewWindow("Top Stereo"),
		bottom: gocv.NewWindow("Bottom Stereo"),
		pan:    gocv.NewWindow("Unwrapped"),
		log:    log,
	}
}

// Put displays r and polls the keyboard.
func (s *WindowSink) Put(r *Result) error {
	if r.Bands != nil {
		if err := show(s.top, r.Bands.Top); err != nil {
			return err
		}
		if err := show(s.bottom, r.Bands.Bottom); err != nil {
			return err
		}
	}
	if err := show(s.pan, r.Panorama); err != nil {
		return err
	}
	if s.pan.WaitKey(10) == keyEsc {
		s.log.Info("preview closed by operator", "frame", r.N)
		s.cancelled.Store(true)
	}
	return nil
}

func show(w *gocv.Window, img image.Image) error {
	m, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return fmt.Errorf("could not convert image for display: %w", err)
	}
	defer m.Close()
	w.IMShow(m)
	return nil
}

// Cancelled implements Canceller.
func (s *WindowSink) Cancelled() bool { return s.cancelled.Load() }

// Close destroys the windows.
func (s *WindowSink) Close() error {
	for _, w := range []*gocv.Window{s.top, s.bottom, s.pan} {
		if err := w.Close(); err != nil {
			return fmt.Errorf("could not close window: %w", err)
		}
	}
	return nil
}
