/*
DESCRIPTION
  config_test.go provides testing for configuration presets, updates and
  config files.

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

package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/andreyvit/diff"
	"github.com/google/go-cmp/cmp"

	"github.com/ausocean/omnicam/pi/panorama"
)

func TestPreset(t *testing.T) {
	tests := []struct {
		name  string
		check func(c Config) bool
	}{
		{"unwrap", func(c Config) bool { return c.Save && !c.Rectify() && !c.Unwrapped }},
		{"undistort", func(c Config) bool { return c.Unwrapped && c.SectionHeight == 0 && c.Save }},
		{"video", func(c Config) bool { return c.Video && c.Preview && !c.Stabilize }},
		{"stabilized", func(c Config) bool { return c.Video && c.Stabilize && c.Save }},
	}

	if got, want := len(Presets()), len(tests); got != want {
		t.Errorf("unexpected number of presets: got %d, want %d", got, want)
	}
	for _, test := range tests {
		c, err := Preset(test.name)
		if err != nil {
			t.Errorf("%s: did not expect error: %v", test.name, err)
			continue
		}
		if !test.check(c) {
			t.Errorf("%s: unexpected config: %+v", test.name, c)
		}
		if c.CropSize != 465 || c.OffsetX != 96 || c.OffsetY != 8 || c.Radius() != 232 {
			t.Errorf("%s: rig defaults not kept: %+v", test.name, c)
		}
	}

	if _, err := Preset("stereo"); !errors.Is(err, panorama.ErrConfig) {
		t.Errorf("expected configuration error for unknown preset, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		param  string
	}{
		{name: "default", modify: func(c *Config) {}},
		{name: "tiny crop", modify: func(c *Config) { c.CropSize = 1 }, param: "crop_size"},
		{name: "negative section", modify: func(c *Config) { c.SectionHeight = -1 }, param: "section_height"},
		{name: "no workers", modify: func(c *Config) { c.Workers = 0 }, param: "workers"},
		{name: "stabilize without trajectory", modify: func(c *Config) { c.Stabilize = true }, param: "trajectory"},
		{
			name: "stabilize unwrapped",
			modify: func(c *Config) {
				c.Stabilize, c.Trajectory = true, "t.txt"
				c.Unwrapped, c.Calibration, c.NumLines = true, "cal.txt", 3
			},
			param: "stabilize",
		},
		{name: "unwrapped without calibration", modify: func(c *Config) { c.Unwrapped = true }, param: "calibration"},
		{name: "calibration without lines", modify: func(c *Config) { c.Calibration = "cal.txt" }, param: "num_lines"},
		{name: "backend", modify: func(c *Config) { c.Backend = "gpu" }, param: "backend"},
		{name: "interpolation", modify: func(c *Config) { c.Interpolation = "lanczos" }, param: "interpolation"},
		{name: "format", modify: func(c *Config) { c.Save, c.Format = true, "raw" }, param: "format"},
		{name: "format unused", modify: func(c *Config) { c.Format = "raw" }},
	}

	for _, test := range tests {
		c := DefaultConfig()
		test.modify(&c)
		err := c.Validate()
		if test.param == "" {
			if err != nil {
				t.Errorf("%s: did not expect error: %v", test.name, err)
			}
			continue
		}
		var ce *panorama.ConfigError
		if !errors.As(err, &ce) {
			t.Errorf("%s: expected configuration error, got %v", test.name, err)
			continue
		}
		if ce.Param != test.param {
			t.Errorf("%s: unexpected param: got %s, want %s", test.name, ce.Param, test.param)
		}
	}
}

func TestUpdate(t *testing.T) {
	c := DefaultConfig()
	err := c.Update(map[string]string{
		"section_height": "12",
		"save":           "true",
		"calibration":    "cal.txt",
		"num_lines":      "9",
		"interpolation":  "nearest",
	})
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	want := DefaultConfig()
	want.SectionHeight = 12
	want.Save = true
	want.Calibration = "cal.txt"
	want.NumLines = 9
	want.Interpolation = "nearest"
	if !cmp.Equal(c, want) {
		t.Errorf("unexpected config:\n%v", cmp.Diff(want, c))
	}

	bad := []struct {
		m     map[string]string
		param string
	}{
		{map[string]string{"section_height": "ten"}, "section_height"},
		{map[string]string{"stabilize": "maybe"}, "stabilize"},
		{map[string]string{"mirror": "1"}, "mirror"},
	}
	for _, test := range bad {
		c := DefaultConfig()
		var ce *panorama.ConfigError
		if err := c.Update(test.m); !errors.As(err, &ce) || ce.Param != test.param {
			t.Errorf("%v: expected configuration error for %s, got %v", test.m, test.param, err)
		}
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.conf")
	second := filepath.Join(dir, "second.conf")

	c, err := Preset("stabilized")
	if err != nil {
		t.Fatal(err)
	}
	c.Input = "dive.mp4"
	c.Trajectory = "centres.txt"
	c.Calibration = "cal.txt"
	c.NumLines = 9
	c.Workers = 4
	if err := c.Write(first); err != nil {
		t.Fatalf("could not write config: %v", err)
	}

	got := DefaultConfig()
	if err := got.Load(first); err != nil {
		t.Fatalf("could not load config: %v", err)
	}
	if !cmp.Equal(got, c) {
		t.Errorf("loaded config differs:\n%v", cmp.Diff(c, got))
	}

	if err := got.Write(second); err != nil {
		t.Fatalf("could not rewrite config: %v", err)
	}
	a, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(second)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Errorf("rewritten config differs:\n%v", diff.LineDiff(string(a), string(b)))
	}

	if err := got.Load(filepath.Join(dir, "missing.conf")); err == nil {
		t.Error("expected error loading missing file")
	}
}
