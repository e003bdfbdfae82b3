/*
DESCRIPTION
  config.go provides the pipeline configuration, its presets, and reading
  and writing of configuration files.

LICENSE
  Copyright (C) 2020-2026 the Australian Ocean Lab (AusOcean)

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
	"fmt"
	"sort"
	"strconv"

	"github.com/ausocean/utils/filemap"
	"github.com/disintegration/imaging"

	"github.com/ausocean/omnicam/pi/panorama"
)

// Backends.
const (
	BackendGo = "go"
	BackendCV = "cv"
)

// Config holds the options of a pipeline run.
type Config struct {
	Input       string // Image or video file.
	Video       bool   // Input is a video.
	Calibration string // Boundaries file. Empty disables rectification.
	NumLines    int    // Boundary lines per half.
	Trajectory  string // Mirror centre file, needed when Stabilize is set.

	// Fixed mirror crop, used when not stabilizing.
	OffsetX  int
	OffsetY  int
	CropSize int

	SectionHeight int  // Rows per rectified section. 0 derives it from the panorama height.
	Unwrapped     bool // Input frames are already panoramas.
	Stabilize     bool

	Save          bool
	SavePanorama  bool
	OutputDir     string
	Format        string // Output file extension.
	Interpolation string
	Backend       string
	Workers       int
	Snapshot      string // Headless preview file. Empty disables it.
	SnapshotWidth int
	Preview       bool // Show OpenCV windows.
}

// DefaultConfig returns the configuration of the reference rig.
func DefaultConfig() Config {
	return Config{
		OffsetX:       96,
		OffsetY:       8,
		CropSize:      465,
		SectionHeight: 10,
		OutputDir:     "stereo_output",
		Format:        "png",
		Interpolation: panorama.Linear.String(),
		Backend:       BackendGo,
		Workers:       1,
		SnapshotWidth: 640,
	}
}

// presets modify the default configuration for each mode of operation.
var presets = map[string]func(c *Config){
	"unwrap": func(c *Config) {
		c.Save = true
	},
	"undistort": func(c *Config) {
		c.Unwrapped = true
		c.SectionHeight = 0
		c.Save = true
	},
	"video": func(c *Config) {
		c.Video = true
		c.Preview = true
	},
	"stabilized": func(c *Config) {
		c.Video = true
		c.Stabilize = true
		c.Save = true
	},
}

// Presets returns the preset names in order.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns the default configuration modified by the named preset.
func Preset(name string) (Config, error) {
	c := DefaultConfig()
	p, ok := presets[name]
	if !ok {
		return c, &panorama.ConfigError{Param: "preset", Err: fmt.Errorf("unknown preset %q, want one of %v", name, Presets())}
	}
	p(&c)
	return c, nil
}

// Radius returns the mirror radius implied by the crop size.
func (c *Config) Radius() int { return c.CropSize / 2 }

// Rectify reports whether rectified bands are produced.
func (c *Config) Rectify() bool { return c.Calibration != "" }

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch {
	case c.CropSize < 2:
		return &panorama.ConfigError{Param: "crop_size", Err: fmt.Errorf("must be at least 2, got %d", c.CropSize)}
	case c.SectionHeight < 0:
		return &panorama.ConfigError{Param: "section_height", Err: fmt.Errorf("must not be negative, got %d", c.SectionHeight)}
	case c.Workers < 1:
		return &panorama.ConfigError{Param: "workers", Err: fmt.Errorf("must be at least 1, got %d", c.Workers)}
	case c.Stabilize && c.Trajectory == "":
		return &panorama.ConfigError{Param: "trajectory", Err: fmt.Errorf("stabilize requires a trajectory file")}
	case c.Stabilize && c.Unwrapped:
		return &panorama.ConfigError{Param: "stabilize", Err: fmt.Errorf("cannot stabilize frames that are already unwrapped")}
	case c.Unwrapped && !c.Rectify():
		return &panorama.ConfigError{Param: "calibration", Err: fmt.Errorf("unwrapped input requires a calibration file")}
	case c.Rectify() && c.NumLines < 2:
		return &panorama.ConfigError{Param: "num_lines", Err: fmt.Errorf("need at least 2 lines, got %d", c.NumLines)}
	case c.Backend != BackendGo && c.Backend != BackendCV:
		return &panorama.ConfigError{Param: "backend", Err: fmt.Errorf("unknown backend %q", c.Backend)}
	}

	if _, err := panorama.ParseInterpolation(c.Interpolation); err != nil {
		return err
	}
	if c.Save {
		if _, err := imaging.FormatFromExtension(c.Format); err != nil {
			return &panorama.ConfigError{Param: "format", Err: err}
		}
	}
	return nil
}

// variables describes each configuration parameter by its file and flag
// name.
var variables = []struct {
	name   string
	typ    string
	usage  string
	update func(c *Config, v string) error
	get    func(c *Config) string
}{
	{
		name:   "input",
		typ:    "string",
		usage:  "Image or video file to process",
		update: func(c *Config, v string) error { c.Input = v; return nil },
		get:    func(c *Config) string { return c.Input },
	},
	{
		name:   "video",
		typ:    "bool",
		usage:  "Treat input as a video",
		update: func(c *Config, v string) error { return parseBool(&c.Video, v) },
		get:    func(c *Config) string { return strconv.FormatBool(c.Video) },
	},
	{
		name:   "calibration",
		typ:    "string",
		usage:  "Calibration boundaries file; rectification is skipped when empty",
		update: func(c *Config, v string) error { c.Calibration = v; return nil },
		get:    func(c *Config) string { return c.Calibration },
	},
	{
		name:   "num_lines",
		typ:    "int",
		usage:  "Number of calibration lines per half",
		update: func(c *Config, v string) error { return parseInt(&c.NumLines, v) },
		get:    func(c *Config) string { return strconv.Itoa(c.NumLines) },
	},
	{
		name:   "trajectory",
		typ:    "string",
		usage:  "Mirror centre trajectory file used when stabilizing",
		update: func(c *Config, v string) error { c.Trajectory = v; return nil },
		get:    func(c *Config) string { return c.Trajectory },
	},
	{
		name:   "offset_x",
		typ:    "int",
		usage:  "Left edge of the mirror crop",
		update: func(c *Config, v string) error { return parseInt(&c.OffsetX, v) },
		get:    func(c *Config) string { return strconv.Itoa(c.OffsetX) },
	},
	{
		name:   "offset_y",
		typ:    "int",
		usage:  "Top edge of the mirror crop",
		update: func(c *Config, v string) error { return parseInt(&c.OffsetY, v) },
		get:    func(c *Config) string { return strconv.Itoa(c.OffsetY) },
	},
	{
		name:   "crop_size",
		typ:    "int",
		usage:  "Side of the square mirror crop; the radius is half of this",
		update: func(c *Config, v string) error { return parseInt(&c.CropSize, v) },
		get:    func(c *Config) string { return strconv.Itoa(c.CropSize) },
	},
	{
		name:   "section_height",
		typ:    "int",
		usage:  "Rows per rectified section; 0 derives it from the panorama height",
		update: func(c *Config, v string) error { return parseInt(&c.SectionHeight, v) },
		get:    func(c *Config) string { return strconv.Itoa(c.SectionHeight) },
	},
	{
		name:   "unwrapped",
		typ:    "bool",
		usage:  "Input frames are already unwrapped panoramas",
		update: func(c *Config, v string) error { return parseBool(&c.Unwrapped, v) },
		get:    func(c *Config) string { return strconv.FormatBool(c.Unwrapped) },
	},
	{
		name:   "stabilize",
		typ:    "bool",
		usage:  "Crop around the tracked mirror centre of each frame",
		update: func(c *Config, v string) error { return parseBool(&c.Stabilize, v) },
		get:    func(c *Config) string { return strconv.FormatBool(c.Stabilize) },
	},
	{
		name:   "save",
		typ:    "bool",
		usage:  "Write results to the output directory",
		update: func(c *Config, v string) error { return parseBool(&c.Save, v) },
		get:    func(c *Config) string { return strconv.FormatBool(c.Save) },
	},
	{
		name:   "save_panorama",
		typ:    "bool",
		usage:  "Also write the unwrapped panorama of each frame",
		update: func(c *Config, v string) error { return parseBool(&c.SavePanorama, v) },
		get:    func(c *Config) string { return strconv.FormatBool(c.SavePanorama) },
	},
	{
		name:   "output_dir",
		typ:    "string",
		usage:  "Directory results are written to",
		update: func(c *Config, v string) error { c.OutputDir = v; return nil },
		get:    func(c *Config) string { return c.OutputDir },
	},
	{
		name:   "format",
		typ:    "string",
		usage:  "Output image format, e.g. png or jpg",
		update: func(c *Config, v string) error { c.Format = v; return nil },
		get:    func(c *Config) string { return c.Format },
	},
	{
		name:   "interpolation",
		typ:    "string",
		usage:  "Resampling: linear, nearest or catmullrom",
		update: func(c *Config, v string) error { c.Interpolation = v; return nil },
		get:    func(c *Config) string { return c.Interpolation },
	},
	{
		name:   "backend",
		typ:    "string",
		usage:  "Image processing backend: go, or cv in withcv builds",
		update: func(c *Config, v string) error { c.Backend = v; return nil },
		get:    func(c *Config) string { return c.Backend },
	},
	{
		name:   "workers",
		typ:    "int",
		usage:  "Frames processed concurrently",
		update: func(c *Config, v string) error { return parseInt(&c.Workers, v) },
		get:    func(c *Config) string { return strconv.Itoa(c.Workers) },
	},
	{
		name:   "snapshot",
		typ:    "string",
		usage:  "File updated with a preview of the latest frame",
		update: func(c *Config, v string) error { c.Snapshot = v; return nil },
		get:    func(c *Config) string { return c.Snapshot },
	},
	{
		name:   "snapshot_width",
		typ:    "int",
		usage:  "Maximum width of the snapshot preview",
		update: func(c *Config, v string) error { return parseInt(&c.SnapshotWidth, v) },
		get:    func(c *Config) string { return strconv.Itoa(c.SnapshotWidth) },
	},
	{
		name:   "preview",
		typ:    "bool",
		usage:  "Show results in windows; escape stops processing",
		update: func(c *Config, v string) error { return parseBool(&c.Preview, v) },
		get:    func(c *Config) string { return strconv.FormatBool(c.Preview) },
	},
}

func parseInt(dst *int, v string) error {
	i, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = i
	return nil
}

func parseBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

// Params returns the name, type and usage of every parameter, in file order.
func Params() [][3]string {
	p := make([][3]string, len(variables))
	for i, v := range variables {
		p[i] = [3]string{v.name, v.typ, v.usage}
	}
	return p
}

// Update sets the parameters named in m. Unknown names and unparseable
// values are configuration errors.
func (c *Config) Update(m map[string]string) error {
	known := make(map[string]bool, len(variables))
	for _, v := range variables {
		known[v.name] = true
		s, ok := m[v.name]
		if !ok {
			continue
		}
		if err := v.update(c, s); err != nil {
			return &panorama.ConfigError{Param: v.name, Err: fmt.Errorf("invalid %s value %q: %w", v.typ, s, err)}
		}
	}
	for name := range m {
		if name != "" && !known[name] {
			return &panorama.ConfigError{Param: name, Err: fmt.Errorf("unknown parameter")}
		}
	}
	return nil
}

// Map returns the parameters of c keyed by name. Empty strings are omitted.
func (c *Config) Map() map[string]string {
	m := make(map[string]string, len(variables))
	for _, v := range variables {
		if s := v.get(c); s != "" {
			m[v.name] = s
		}
	}
	return m
}

// Load updates c from the "name value" lines of the file at path.
func (c *Config) Load(path string) error {
	m, err := filemap.ReadFrom(path, "\n", " ")
	if err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}
	if err := c.Update(m); err != nil {
		return fmt.Errorf("could not load config file %s: %w", path, err)
	}
	return nil
}

// Write writes c to path in the format read by Load.
func (c *Config) Write(path string) error {
	keys := make([]string, len(variables))
	for i, v := range variables {
		keys[i] = v.name
	}
	err := filemap.WriteTo(path, "\n", " ", c.Map(), keys)
	if err != nil {
		return fmt.Errorf("could not write config file: %w", err)
	}
	return nil
}
