/*
DESCRIPTION
  errors.go provides the configuration error type shared by the panorama
  unwrapping stages.

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

package panorama

import (
	"errors"
	"fmt"
)

// ErrConfig is matched by every ConfigError using errors.Is.
var ErrConfig = errors.New("configuration error")

// ConfigError reports malformed calibration data, an impossible crop or an
// exhausted trajectory. Param names the offending parameter.
type ConfigError struct {
	Param string
	Err   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrConfig, e.Param, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ConfigError) Unwrap() error { return e.Err }

// Is reports whether target is ErrConfig.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// configErrorf returns a *ConfigError for param with a formatted cause.
func configErrorf(param, format string, args ...interface{}) error {
	return &ConfigError{Param: param, Err: fmt.Errorf(format, args...)}
}
