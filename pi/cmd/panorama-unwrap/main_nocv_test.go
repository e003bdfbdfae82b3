//go:build !withcv
// +build !withcv

/*
DESCRIPTION
  main_nocv_test.go checks that every preset can open its outputs in builds
  without OpenCV.

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
	"path/filepath"
	"testing"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/omnicam/pi/frame"
	"github.com/ausocean/omnicam/pi/pipeline"
)

func TestOpenSinksPresets(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	for _, name := range pipeline.Presets() {
		cfg, err := pipeline.Preset(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		cfg.OutputDir = filepath.Join(t.TempDir(), "out")

		sinks, err := openSinks(cfg, (*logging.TestLogger)(t))
		if err != nil {
			t.Errorf("%s: could not open sinks: %v", name, err)
			continue
		}
		if cfg.Preview {
			var snapshot bool
			for _, s := range sinks {
				_, ok := s.(*frame.SnapshotSink)
				snapshot = snapshot || ok
			}
			if !snapshot {
				t.Errorf("%s: expected a snapshot preview, got %v", name, sinks)
			}
		}
		for _, s := range sinks {
			s.Close()
		}
	}
}
