// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package noisemodel implements the per-row diagonal noise model that
// accompanies a Gaussian factor's augmented matrix, together with the
// in-place, staircase-respecting Householder QR (QRColumnWise) that
// triangularizes a factor during elimination.
package noisemodel

import (
	"fmt"
	"math"

	"github.com/curioloop/gaussian/blockmatrix"
	"gonum.org/v1/gonum/floats"
)

// Kind distinguishes the three variants a Model may take.
type Kind int

const (
	// KindDiagonal holds all-positive sigmas.
	KindDiagonal Kind = iota
	// KindConstrained holds a mix of positive sigmas and hard (sigma=0) rows.
	KindConstrained
	// KindUnit holds all sigma == 1, the form produced by ordinary QR.
	KindUnit
)

// Model is a per-row standard-deviation vector with a tag recording
// whether any row is a hard (sigma=0) constraint.
type Model struct {
	kind   Kind
	sigmas []float64
}

// Diagonal constructs a model from strictly positive sigmas.
func Diagonal(sigmas []float64) (*Model, error) {
	if hasNaN(sigmas) {
		return nil, fmt.Errorf("Diagonal: %w", ErrNonPositiveSigma)
	}
	for _, s := range sigmas {
		if !(s > 0) {
			return nil, fmt.Errorf("Diagonal: %w", ErrNonPositiveSigma)
		}
	}
	return &Model{kind: KindDiagonal, sigmas: append([]float64(nil), sigmas...)}, nil
}

// Constrained constructs a model allowing sigma == 0 (hard equality) rows
// mixed with positive ones.
func Constrained(sigmas []float64) (*Model, error) {
	allPositive := true
	for _, s := range sigmas {
		if s < 0 {
			return nil, fmt.Errorf("Constrained: %w", ErrNegativeSigma)
		}
		if s == 0 {
			allPositive = false
		}
	}
	kind := KindConstrained
	if allPositive {
		kind = KindDiagonal
	}
	return &Model{kind: kind, sigmas: append([]float64(nil), sigmas...)}, nil
}

// Unit constructs the unit model of the given dimension.
func Unit(dim int) *Model {
	sigmas := make([]float64, dim)
	for i := range sigmas {
		sigmas[i] = 1
	}
	return &Model{kind: KindUnit, sigmas: sigmas}
}

// Dim returns the model's row count.
func (m *Model) Dim() int { return len(m.sigmas) }

// Sigma returns the standard deviation of row i.
func (m *Model) Sigma(i int) float64 { return m.sigmas[i] }

// Sigmas returns a copy of the model's sigma vector.
func (m *Model) Sigmas() []float64 { return append([]float64(nil), m.sigmas...) }

// IsConstrained reports whether any row carries a hard (sigma=0) constraint.
func (m *Model) IsConstrained() bool { return m.kind == KindConstrained }

// Kind reports the model's variant.
func (m *Model) Kind() Kind { return m.kind }

// Whiten returns v scaled elementwise by 1/sigma. Rows with sigma == 0
// (hard constraints) pass through unchanged, matching the source
// library's convention that a zero-noise row is already in whitened form.
func (m *Model) Whiten(v []float64) ([]float64, error) {
	if len(v) != len(m.sigmas) {
		return nil, fmt.Errorf("Whiten: %w", ErrDimensionMismatch)
	}
	out := make([]float64, len(v))
	copy(out, v)
	for i, s := range m.sigmas {
		if s != 0 {
			out[i] /= s
		}
	}
	return out, nil
}

// WhitenMatrix scales each row of M (an m×n slice of row-major vectors,
// one []float64 per row) by 1/sigma, returning a new matrix.
func (m *Model) WhitenMatrix(rows [][]float64) ([][]float64, error) {
	if len(rows) != len(m.sigmas) {
		return nil, fmt.Errorf("WhitenMatrix: %w", ErrDimensionMismatch)
	}
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = append([]float64(nil), row...)
		if s := m.sigmas[i]; s != 0 {
			floats.Scale(1/s, out[i])
		}
	}
	return out, nil
}

// WhitenInPlace scales each row of the block view by 1/sigma, in place.
// Constrained (sigma=0) rows are left untouched.
func (m *Model) WhitenInPlace(ab *blockmatrix.View) error {
	if ab.Rows() != len(m.sigmas) {
		return fmt.Errorf("WhitenInPlace: %w", ErrDimensionMismatch)
	}
	for i, s := range m.sigmas {
		if s != 0 {
			ab.ScaleRow(i, 1/s)
		}
	}
	return nil
}

// WhitenSystem whitens A and b together in one convenience call.
func (m *Model) WhitenSystem(rowsA [][]float64, b []float64) ([][]float64, []float64, error) {
	wa, err := m.WhitenMatrix(rowsA)
	if err != nil {
		return nil, nil, err
	}
	wb, err := m.Whiten(b)
	if err != nil {
		return nil, nil, err
	}
	return wa, wb, nil
}

// clone returns a deep copy.
func (m *Model) clone() *Model {
	return &Model{kind: m.kind, sigmas: append([]float64(nil), m.sigmas...)}
}

// sliceRows returns the sub-model over rows [r0, r1), recomputing its kind.
func (m *Model) sliceRows(r0, r1 int) *Model {
	sub := append([]float64(nil), m.sigmas[r0:r1]...)
	kind := KindDiagonal
	hasZero, allUnit := false, true
	for _, s := range sub {
		if s == 0 {
			hasZero = true
		}
		if s != 1 {
			allUnit = false
		}
	}
	switch {
	case hasZero:
		kind = KindConstrained
	case allUnit:
		kind = KindUnit
	}
	return &Model{kind: kind, sigmas: sub}
}

// hasNaN is a small guard used by callers validating constructed models.
func hasNaN(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) {
			return true
		}
	}
	return false
}
