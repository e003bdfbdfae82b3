/*
DESCRIPTION
  main_test.go provides testing for panorama-unwrap.

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

package main

import (
	"context"
	"errors"
	"flag"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/ausocean/utils/logging"
	"github.com/disintegration/imaging"

	"github.com/ausocean/omnicam/pi/panorama"
	"github.com/ausocean/omnicam/pi/pipeline"
)

func TestParamFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	save := &param{typ: "bool"}
	height := &param{typ: "int"}
	fs.Var(save, "save", "")
	fs.Var(height, "section_height", "")

	if err := fs.Parse([]string{"-save", "-section_height", "12", "in.png"}); err != nil {
		t.Fatalf("could not parse flags: %v", err)
	}
	if save.val != "true" || height.val != "12" || fs.Arg(0) != "in.png" {
		t.Errorf("unexpected values: save=%q section_height=%q arg=%q", save.val, height.val, fs.Arg(0))
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "mirror.png")
	if err := imaging.Save(imaging.New(60, 60, color.NRGBA{128, 64, 32, 255}), in); err != nil {
		t.Fatal(err)
	}
	cal := filepath.Join(dir, "cal.txt")
	if err := os.WriteFile(cal, []byte("0\n5\n10\n10\n15\n20\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := pipeline.Preset("unwrap")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Input = in
	cfg.Calibration = cal
	cfg.NumLines = 3
	cfg.OffsetX, cfg.OffsetY, cfg.CropSize = 10, 10, 40
	cfg.SectionHeight = 4
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.Snapshot = filepath.Join(dir, "latest.png")
	plots := filepath.Join(dir, "plots")

	if err := run(context.Background(), cfg, plots, (*logging.TestLogger)(t)); err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	for _, path := range []string{
		filepath.Join(cfg.OutputDir, "top_frame_0.png"),
		filepath.Join(cfg.OutputDir, "bottom_frame_0.png"),
		filepath.Join(cfg.OutputDir, configName),
		cfg.Snapshot,
		filepath.Join(plots, "Stage Timings.png"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected %s: %v", filepath.Base(path), err)
		}
	}

	top, err := imaging.Open(filepath.Join(cfg.OutputDir, "top_frame_0.png"))
	if err != nil {
		t.Fatal(err)
	}
	if got := top.Bounds().Size(); got != image.Pt(126, 8) {
		t.Errorf("unexpected top band size: %v", got)
	}
}

func TestRunNoInput(t *testing.T) {
	err := run(context.Background(), pipeline.DefaultConfig(), "", (*logging.TestLogger)(t))
	if !errors.Is(err, panorama.ErrConfig) {
		t.Errorf("expected configuration error, got %v", err)
	}
}
