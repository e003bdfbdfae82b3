/*
DESCRIPTION
  ffmpeg.go provides a video Source that decodes frames with an ffmpeg
  process, reading raw RGB frames from its output pipe.

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
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"sync"

	"github.com/ausocean/utils/logging"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// FFmpegSource is a Source decoding a video file with ffmpeg.
type FFmpegSource struct {
	path   string
	w, h   int
	r      *io.PipeReader
	buf    []byte
	cancel context.CancelFunc
	done   chan error
	once   sync.Once
	log    logging.Logger
}

// NewFFmpegSource starts decoding the video at path. The ffmpeg process is
// stopped when ctx is cancelled or Close is called.
func NewFFmpegSource(ctx context.Context, path string, log logging.Logger) (*FFmpegSource, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	probe, err := ffmpeg.Probe(path)
	if err != nil {
		return nil, fmt.Errorf("%w: could not probe %s: %v", ErrSourceUnavailable, path, err)
	}
	w, h, err := videoSize(probe)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, path, err)
	}
	log.Debug("probed video", "path", path, "width", w, "height", h)

	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()
	s := &FFmpegSource{
		path:   path,
		w:      w,
		h:      h,
		r:      pr,
		buf:    make([]byte, w*h*3),
		cancel: cancel,
		done:   make(chan error, 1),
		log:    log,
	}

	go func() {
		stream := ffmpeg.Input(path).
			Output("pipe:", ffmpeg.KwArgs{"format": "rawvideo", "pix_fmt": "rgb24"}).
			WithOutput(pw)
		stream.Context = ctx
		err := stream.Run()
		pw.CloseWithError(err)
		s.done <- err
	}()

	return s, nil
}

// videoSize returns the dimensions of the first video stream in the JSON
// output of ffprobe.
func videoSize(probe string) (int, int, error) {
	var info struct {
		Streams []struct {
			CodecType string `json:"codec_type"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
		} `json:"streams"`
	}
	if err := json.Unmarshal([]byte(probe), &info); err != nil {
		return 0, 0, fmt.Errorf("could not parse probe output: %w", err)
	}
	for _, s := range info.Streams {
		if s.CodecType == "video" && s.Width > 0 && s.Height > 0 {
			return s.Width, s.Height, nil
		}
	}
	return 0, 0, errors.New("no video stream")
}

// Read returns the next frame as an *image.NRGBA, or io.EOF at the end of
// the video.
func (s *FFmpegSource) Read(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, err := io.ReadFull(s.r, s.buf)
	switch {
	case err == io.EOF:
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return nil, fmt.Errorf("truncated frame in %s: %w", s.path, err)
	case err != nil:
		return nil, fmt.Errorf("could not read frame from %s: %w", s.path, err)
	}

	img := image.NewNRGBA(image.Rect(0, 0, s.w, s.h))
	for i, j := 0, 0; i < len(s.buf); i, j = i+3, j+4 {
		img.Pix[j] = s.buf[i]
		img.Pix[j+1] = s.buf[i+1]
		img.Pix[j+2] = s.buf[i+2]
		img.Pix[j+3] = 0xff
	}
	return img, nil
}

// Close stops ffmpeg and waits for it to exit.
func (s *FFmpegSource) Close() error {
	s.once.Do(func() {
		s.cancel()
		s.r.Close()
		err := <-s.done
		s.log.Debug("ffmpeg exited", "path", s.path, "error", err)
	})
	return nil
}
