/*
DESCRIPTION
  fit.go provides functions for fitting a polynomial to the calibration
  boundaries, giving a smooth model of the mirror's radial resolution.

AUTHORS
  Alex Arends <alex@ausocean.org>
  Saxon Nelson-Milton <saxon@ausocean.org>

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

package panorama

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Fit fits a polynomial of degree to the boundary rows of half h as a
// function of line index, by QR decomposition of the Vandermonde matrix of
// the line indices. The fitted rows are returned with the polynomial
// coefficients, lowest order first.
func (b *Boundaries) Fit(h Half, degree int) ([]float64, mat.Matrix, error) {
	if degree < 0 || degree >= b.numLines {
		return nil, nil, fmt.Errorf("degree %d invalid for %d lines", degree, b.numLines)
	}
	rows := b.half(h)

	// Row i of the design matrix holds the powers of line index i.
	lines := mat.NewDense(len(rows), degree+1, nil)
	measured := mat.NewVecDense(len(rows), nil)
	for i, r := range rows {
		for j, p := 0, 1.0; j <= degree; j, p = j+1, p*float64(i) {
			lines.Set(i, j, p)
		}
		measured.SetVec(i, float64(r))
	}

	var qr mat.QR
	qr.Factorize(lines)
	coeffs := mat.NewVecDense(degree+1, nil)
	if err := qr.SolveVecTo(coeffs, false, measured); err != nil {
		return nil, nil, fmt.Errorf("could not fit %v boundaries: %w", h, err)
	}

	fitted := make([]float64, len(rows))
	for i := range rows {
		for j := degree; j >= 0; j-- {
			fitted[i] += coeffs.AtVec(j) * math.Pow(float64(i), float64(j))
		}
	}
	return fitted, coeffs, nil
}
