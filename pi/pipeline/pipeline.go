/*
DESCRIPTION
  pipeline.go provides the Pipeline, which reads frames from a source,
  crops the mirror, unwraps it into a panorama, rectifies the calibration
  bands and passes the results to sinks in frame order.

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

// Package pipeline drives frames from a source through the panorama stages
// to a set of sinks.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"github.com/ausocean/utils/logging"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/ausocean/omnicam/pi/frame"
	"github.com/ausocean/omnicam/pi/panorama"
)

// State is the position of a Pipeline in its life cycle.
type State int

const (
	Init State = iota
	Ready
	Processing
	Done
	Failed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Init:
		return "init"
	case Ready:
		return "ready"
	case Processing:
		return "processing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type unwrapper interface {
	Unwrap(src image.Image) (image.Image, error)
}

type rectifier interface {
	Rectify(pan image.Image) (*panorama.Bands, error)
}

// maps is shared by all pipelines so that a radius is only computed once per
// process.
var maps panorama.MapCache

// errStopped is returned internally when a sink asks for processing to stop.
var errStopped = errors.New("stopped by sink")

// Pipeline processes the frames of one source.
type Pipeline struct {
	cfg   Config
	src   frame.Source
	sinks []frame.Sink
	log   logging.Logger

	interp panorama.Interpolation
	region panorama.Region
	stab   *panorama.Stabilizer
	unwrap unwrapper
	bounds *panorama.Boundaries

	// The rectifier is built on the first frame when the section height is
	// derived from the panorama height.
	rectOnce sync.Once
	rect     rectifier
	rectErr  error

	mu      sync.Mutex
	state   State
	timings *panorama.Timings
}

// New returns a Ready Pipeline reading from src and writing to sinks. The
// calibration boundaries and trajectory named by cfg are loaded, and the
// remap built, before New returns. The Pipeline takes ownership of src and
// sinks; they are released by Close.
func New(cfg Config, src frame.Source, sinks []frame.Sink, log logging.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	interp, err := panorama.ParseInterpolation(cfg.Interpolation)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:     cfg,
		src:     src,
		sinks:   sinks,
		log:     log,
		interp:  interp,
		region:  panorama.FixedRegion(cfg.OffsetX, cfg.OffsetY, cfg.CropSize),
		timings: panorama.NewTimings(0),
	}

	if cfg.Rectify() {
		p.bounds, err = panorama.LoadBoundaries(cfg.Calibration, cfg.NumLines)
		if err != nil {
			return nil, err
		}
		log.Debug("loaded calibration", "path", cfg.Calibration, "top", p.bounds.Rows(panorama.Top), "bottom", p.bounds.Rows(panorama.Bottom))
	}

	if cfg.Stabilize {
		t, err := panorama.LoadTrajectory(cfg.Trajectory)
		if err != nil {
			return nil, err
		}
		p.stab = panorama.NewStabilizer(t, cfg.Radius())
		log.Debug("loaded trajectory", "path", cfg.Trajectory, "frames", p.stab.Len())
	}

	if !cfg.Unwrapped {
		start := time.Now()
		m := maps.Get(cfg.Radius())
		rows, cols := m.Size()
		log.Debug("built remap", "radius", m.Radius, "rows", rows, "cols", cols, "elapsed", time.Since(start))

		p.unwrap, err = newUnwrapper(cfg.Backend, m, interp)
		if err != nil {
			return nil, err
		}

		// The panorama height is the radius, so the rectifier can be built now.
		if cfg.Rectify() {
			p.rectOnce.Do(func() { p.rect, p.rectErr = p.buildRectifier(m.Radius) })
			if p.rectErr != nil {
				return nil, p.rectErr
			}
		}
	}

	p.state = Ready
	return p, nil
}

// buildRectifier returns the rectifier for panoramas of height h.
func (p *Pipeline) buildRectifier(h int) (rectifier, error) {
	if m := p.bounds.Max(); m > h {
		return nil, &panorama.ConfigError{Param: "boundaries", Err: fmt.Errorf("row %d beyond panorama height %d", m, h)}
	}
	sh := p.cfg.SectionHeight
	if sh == 0 {
		sh = h / p.bounds.Sections()
		p.log.Debug("derived section height", "panorama height", h, "section height", sh)
	}
	return newRectifier(p.cfg.Backend, p.bounds, sh, p.interp)
}

// rectifierFor returns the rectifier for pan, building it on first use.
func (p *Pipeline) rectifierFor(pan image.Image) (rectifier, error) {
	p.rectOnce.Do(func() { p.rect, p.rectErr = p.buildRectifier(pan.Bounds().Dy()) })
	return p.rect, p.rectErr
}

// State returns the current state of the pipeline.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.log.Debug("pipeline state change", "from", p.state, "to", s)
	p.state = s
	p.mu.Unlock()
}

// Timings returns the stage durations of the frames emitted so far.
func (p *Pipeline) Timings() *panorama.Timings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timings
}

// Stats returns timing statistics per stage.
func (p *Pipeline) Stats() map[string]panorama.Summary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timings.Summarize()
}

// job is a frame awaiting processing. A job carrying an error stops the run
// once all earlier frames have been emitted.
type job struct {
	n      int
	img    image.Image
	region panorama.Region
	err    error
}

// result is a processed frame with its stage durations.
type result struct {
	*frame.Result
	crop, unwrap, rectify time.Duration
	err                   error
}

// Run processes frames until the source is exhausted, ctx is cancelled or a
// sink asks to stop, in which cases it returns nil. Any other error stops
// the run and is returned; frames are never skipped. Run may only be called
// once.
func (p *Pipeline) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.state != Ready {
		s := p.state
		p.mu.Unlock()
		return fmt.Errorf("pipeline cannot run in state %v", s)
	}
	p.state = Processing
	p.mu.Unlock()

	var err error
	if p.cfg.Workers > 1 {
		err = p.runConcurrent(ctx)
	} else {
		err = p.runSequential(ctx)
	}

	switch {
	case err == nil, errors.Is(err, errStopped):
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		p.log.Info("processing cancelled", "frames", p.Timings().Len())
	default:
		p.setState(Failed)
		return err
	}
	p.setState(Done)
	return nil
}

func (p *Pipeline) runSequential(ctx context.Context) error {
	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.cancelled() {
			return errStopped
		}
		j := p.next(ctx, n)
		if j == nil {
			return ctx.Err()
		}
		if err := p.emit(p.process(j)); err != nil {
			return err
		}
	}
}

// runConcurrent processes up to Workers frames at once. Frames are read and
// regions derived in order by one goroutine, processed by the workers, and
// reordered before being emitted.
func (p *Pipeline) runConcurrent(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan *job, p.cfg.Workers)
	results := make(chan *result, p.cfg.Workers)

	g.Go(func() error {
		defer close(jobs)
		for n := 0; ; n++ {
			if p.cancelled() {
				return nil
			}
			j := p.next(gctx, n)
			if j == nil {
				return nil
			}
			select {
			case jobs <- j:
			case <-gctx.Done():
				return nil
			}
			if j.err != nil {
				return nil
			}
		}
	})

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Workers; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for j := range jobs {
				select {
				case results <- p.process(j):
				case <-gctx.Done():
					return nil
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	g.Go(func() error {
		pending := make(map[int]*result)
		next := 0
		for r := range results {
			pending[r.N] = r
			for q, ok := pending[next]; ok; q, ok = pending[next] {
				delete(pending, next)
				if err := p.emit(q); err != nil {
					return err
				}
				if p.cancelled() {
					return errStopped
				}
				next++
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// next reads frame n and derives its crop region. It returns nil at the end
// of the source or when ctx is cancelled, and a job carrying the error if
// the frame cannot be read or placed.
func (p *Pipeline) next(ctx context.Context, n int) *job {
	img, err := p.src.Read(ctx)
	switch {
	case errors.Is(err, io.EOF):
		p.log.Debug("end of source", "frames", n)
		return nil
	case err != nil && ctx.Err() != nil:
		return nil
	case err != nil:
		return &job{n: n, err: fmt.Errorf("could not read frame %d: %w", n, err)}
	}

	j := &job{n: n, img: img, region: p.region}
	if p.stab != nil {
		j.region, err = p.stab.Region(n)
		if err != nil {
			j.err = fmt.Errorf("frame %d: %w", n, err)
		}
	}
	return j
}

// process runs the crop, unwrap and rectify stages on one frame.
func (p *Pipeline) process(j *job) *result {
	r := &result{Result: &frame.Result{N: j.n}, err: j.err}
	if r.err != nil {
		return r
	}

	pan := j.img
	if !p.cfg.Unwrapped {
		start := time.Now()
		crop, err := j.region.Crop(j.img)
		if err != nil {
			r.err = fmt.Errorf("frame %d: %w", j.n, err)
			return r
		}
		r.crop = time.Since(start)

		start = time.Now()
		pan, err = p.unwrap.Unwrap(crop)
		if err != nil {
			r.err = fmt.Errorf("could not unwrap frame %d: %w", j.n, err)
			return r
		}
		r.unwrap = time.Since(start)
	}
	r.Panorama = pan

	if p.bounds == nil {
		return r
	}
	rect, err := p.rectifierFor(pan)
	if err != nil {
		r.err = err
		return r
	}
	start := time.Now()
	r.Bands, err = rect.Rectify(pan)
	if err != nil {
		r.err = fmt.Errorf("could not rectify frame %d: %w", j.n, err)
		return r
	}
	r.rectify = time.Since(start)
	return r
}

// emit passes r to every sink and records its timings.
func (p *Pipeline) emit(r *result) error {
	if r.err != nil {
		return r.err
	}

	start := time.Now()
	for i, s := range p.sinks {
		if err := s.Put(r.Result); err != nil {
			return fmt.Errorf("sink %d could not take frame %d: %w", i, r.N, err)
		}
	}
	emit := time.Since(start)

	p.mu.Lock()
	p.timings.Update(r.crop, r.unwrap, r.rectify, emit)
	p.mu.Unlock()
	p.log.Debug("processed frame", "frame", r.N, "crop", r.crop, "unwrap", r.unwrap, "rectify", r.rectify, "emit", emit)
	return nil
}

// cancelled reports whether any sink has asked to stop.
func (p *Pipeline) cancelled() bool {
	for _, s := range p.sinks {
		if c, ok := s.(frame.Canceller); ok && c.Cancelled() {
			p.log.Info("sink requested stop")
			return true
		}
	}
	return false
}

// Close releases the source, the sinks and any backend resources.
func (p *Pipeline) Close() error {
	err := p.src.Close()
	for _, s := range p.sinks {
		err = multierr.Append(err, s.Close())
	}
	if c, ok := p.unwrap.(io.Closer); ok {
		err = multierr.Append(err, c.Close())
	}
	return err
}
