//go:build !withcv
// +build !withcv

/*
DESCRIPTION
  open_nocv_test.go provides testing for the preview used in builds without
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

package frame

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ausocean/utils/logging"
)

func TestPreviewSnapshot(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TMPDIR", dir)

	s, err := NewPreview((*logging.TestLogger)(t))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*SnapshotSink); !ok {
		t.Fatalf("expected a *SnapshotSink, got %T", s)
	}

	if err := s.Put(testResult(0, true)); err != nil {
		t.Fatalf("could not put result: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, previewName)); err != nil {
		t.Errorf("expected preview snapshot: %v", err)
	}
}
