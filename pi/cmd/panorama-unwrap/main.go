/*
DESCRIPTION
  panorama-unwrap unwraps images and videos captured through a spherical
  mirror into panoramas, and rectifies the calibrated top and bottom mirror
  regions into stereo image pairs.

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

// panorama-unwrap unwraps images and videos captured through a spherical
// mirror into panoramas, and rectifies the calibrated top and bottom mirror
// regions into stereo image pairs.
//
// Usage:
//
//	panorama-unwrap [flags] [input]
//
// A preset selects the mode of operation (unwrap, undistort, video or
// stabilized). Parameters are then read from the optional config file and
// finally from flags, so a flag overrides the file, which overrides the
// preset.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/omnicam/pi/frame"
	"github.com/ausocean/omnicam/pi/panorama"
	"github.com/ausocean/omnicam/pi/pipeline"
)

// Logging configuration.
const (
	defaultLogPath = "/var/log/omnicam/panorama.log"
	logMaxSize     = 500 // MB.
	logMaxBackup   = 10
	logMaxAge      = 28 // Days.
	logSuppress    = false
)

const (
	progName   = "panorama-unwrap"
	configName = "panorama.conf"
	fitDegree  = 2
)

// param is a flag for a pipeline parameter. Only parameters set on the
// command line override the preset and config file.
type param struct {
	typ string
	val string
}

func (p *param) String() string     { return p.val }
func (p *param) Set(s string) error { p.val = s; return nil }
func (p *param) IsBoolFlag() bool   { return p.typ == "bool" }

func main() {
	preset := flag.String("preset", "unwrap", "Mode of operation: "+strings.Join(pipeline.Presets(), ", "))
	configFile := flag.String("config", "", "Config file of \"name value\" lines")
	plotDir := flag.String("plot", "", "Directory to write timing and calibration plots to")
	logLevel := flag.Int("LogLevel", int(logging.Info), "Specifies log level")
	logPath := flag.String("LogPath", defaultLogPath, "Specifies log path")

	params := make(map[string]*param)
	for _, p := range pipeline.Params() {
		name, typ, usage := p[0], p[1], p[2]
		params[name] = &param{typ: typ}
		flag.Var(params[name], name, usage)
	}
	flag.Parse()

	validLogLevel := true
	if *logLevel < int(logging.Debug) || *logLevel > int(logging.Fatal) {
		*logLevel = int(logging.Info)
		validLogLevel = false
	}

	fileLog := &lumberjack.Logger{
		Filename:   *logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(int8(*logLevel), io.MultiWriter(fileLog, os.Stderr), logSuppress)
	if !validLogLevel {
		log.Error("invalid log level was defaulted to Info")
	}

	cfg, err := pipeline.Preset(*preset)
	if err != nil {
		log.Fatal("could not select preset", "error", err)
	}
	if *configFile != "" {
		if err := cfg.Load(*configFile); err != nil {
			log.Fatal("could not load config", "error", err)
		}
	}
	set := make(map[string]string)
	flag.Visit(func(f *flag.Flag) {
		if p, ok := params[f.Name]; ok {
			set[f.Name] = p.val
		}
	})
	if flag.NArg() > 0 {
		set["input"] = flag.Arg(0)
	}
	if err := cfg.Update(set); err != nil {
		log.Fatal("invalid flags", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *plotDir, log); err != nil {
		log.Fatal(progName+" failed", "error", err)
	}
}

// run opens the source and sinks described by cfg and processes every frame.
func run(ctx context.Context, cfg pipeline.Config, plotDir string, log logging.Logger) (err error) {
	if cfg.Input == "" {
		return &panorama.ConfigError{Param: "input", Err: fmt.Errorf("no input file given")}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log.Info("starting", "input", cfg.Input, "video", cfg.Video, "calibration", cfg.Calibration, "stabilize", cfg.Stabilize, "workers", cfg.Workers)

	var src frame.Source
	if cfg.Video {
		src, err = frame.OpenVideo(ctx, cfg.Input, log)
	} else {
		src, err = frame.NewImageSource(cfg.Input)
	}
	if err != nil {
		return err
	}

	sinks, err := openSinks(cfg, log)
	if err != nil {
		src.Close()
		return err
	}

	p, err := pipeline.New(cfg, src, sinks, log)
	if err != nil {
		src.Close()
		for _, s := range sinks {
			s.Close()
		}
		return err
	}
	defer func() {
		if cerr := p.Close(); cerr != nil {
			log.Warning("could not close pipeline", "error", cerr)
		}
	}()

	if cfg.Save {
		path := filepath.Join(cfg.OutputDir, configName)
		if err := cfg.Write(path); err != nil {
			return err
		}
		log.Debug("wrote config", "path", path)
	}

	if err := p.Run(ctx); err != nil {
		return err
	}

	t := p.Timings()
	log.Info("finished", "frames", t.Len(), "state", p.State())
	stats := p.Stats()
	for _, stage := range []string{panorama.StageCrop, panorama.StageUnwrap, panorama.StageRectify, panorama.StageEmit} {
		if s, ok := stats[stage]; ok {
			log.Info("stage timing", "stage", stage, "mean", s.Mean, "stddev", s.StdDev, "max", s.Max)
		}
	}

	if plotDir != "" {
		return plot(plotDir, cfg, t)
	}
	return nil
}

// openSinks returns the sinks enabled in cfg.
func openSinks(cfg pipeline.Config, log logging.Logger) ([]frame.Sink, error) {
	var sinks []frame.Sink
	closeAll := func() {
		for _, s := range sinks {
			s.Close()
		}
	}

	if cfg.Save {
		s, err := frame.NewFileSink(cfg.OutputDir, cfg.Format, cfg.SavePanorama, log)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if cfg.Snapshot != "" {
		s, err := frame.NewSnapshotSink(cfg.Snapshot, uint(cfg.SnapshotWidth))
		if err != nil {
			closeAll()
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if cfg.Preview {
		s, err := frame.NewPreview(log)
		if err != nil {
			closeAll()
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if len(sinks) == 0 {
		log.Warning("no outputs enabled; results will be discarded")
	}
	return sinks, nil
}

// plot writes the timing plot and, when rectifying, the calibration plot.
func plot(dir string, cfg pipeline.Config, t *panorama.Timings) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create plot directory: %w", err)
	}
	if err := panorama.PlotTimings(dir, t); err != nil {
		return err
	}
	if !cfg.Rectify() {
		return nil
	}
	b, err := panorama.LoadBoundaries(cfg.Calibration, cfg.NumLines)
	if err != nil {
		return err
	}
	return panorama.PlotBoundaries(dir, b, min(fitDegree, b.NumLines()-1))
}
