//go:build !withcv
// +build !withcv

/*
DESCRIPTION
  backend_nocv.go provides the pure Go processing stages for builds without
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

package pipeline

import (
	"fmt"

	"github.com/ausocean/omnicam/pi/panorama"
)

func newUnwrapper(backend string, m *panorama.Map, interp panorama.Interpolation) (unwrapper, error) {
	if backend != BackendGo {
		return nil, &panorama.ConfigError{Param: "backend", Err: fmt.Errorf("%s backend requires a build with the withcv tag", backend)}
	}
	return panorama.NewRemapper(m, interp), nil
}

func newRectifier(backend string, b *panorama.Boundaries, sectionHeight int, interp panorama.Interpolation) (rectifier, error) {
	if backend != BackendGo {
		return nil, &panorama.ConfigError{Param: "backend", Err: fmt.Errorf("%s backend requires a build with the withcv tag", backend)}
	}
	r, err := panorama.NewRectifier(b, sectionHeight, interp)
	if err != nil {
		return nil, err
	}
	return r, nil
}
