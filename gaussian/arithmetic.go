// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaussian

import (
	"fmt"

	"github.com/curioloop/gaussian/blockmatrix"
	"github.com/curioloop/gaussian/noisemodel"
	"gonum.org/v1/gonum/floats"
)

// UnweightedError computes A*x - b, blockwise: start with -b, then for
// each block accumulate Aj * x[keys[j]].
func (f *JacobianFactor) UnweightedError(x VectorValues) ([]float64, error) {
	m := f.Rows()
	out := make([]float64, m)
	b := f.ab.Column(len(f.keys), 0)
	for i := range out {
		out[i] = -b[i]
	}
	for j, key := range f.keys {
		xv, err := x.At(key)
		if err != nil {
			return nil, fmt.Errorf("UnweightedError: %w", err)
		}
		blk := f.ab.Block(j)
		if len(xv) != blk.Cols() {
			return nil, fmt.Errorf("UnweightedError: key %d: %w", key, ErrDimensionMismatch)
		}
		for c := 0; c < blk.Cols(); c++ {
			col := blk.ColSlice(c)
			floats.AddScaled(out, xv[c], col)
		}
	}
	return out, nil
}

// ErrorVector returns model.Whiten(UnweightedError(x)).
func (f *JacobianFactor) ErrorVector(x VectorValues) ([]float64, error) {
	e, err := f.UnweightedError(x)
	if err != nil {
		return nil, err
	}
	return f.model.Whiten(e)
}

// Error returns 0.5 * ||ErrorVector(x)||^2, or 0 for an empty factor.
func (f *JacobianFactor) Error(x VectorValues) (float64, error) {
	if f.Empty() {
		return 0, nil
	}
	e, err := f.ErrorVector(x)
	if err != nil {
		return 0, err
	}
	return 0.5 * floats.Dot(e, e), nil
}

// Multiply returns model.Whiten(A*x) — note it does NOT subtract b,
// unlike UnweightedError.
func (f *JacobianFactor) Multiply(x VectorValues) ([]float64, error) {
	m := f.Rows()
	out := make([]float64, m)
	for j, key := range f.keys {
		xv, err := x.At(key)
		if err != nil {
			return nil, fmt.Errorf("Multiply: %w", err)
		}
		blk := f.ab.Block(j)
		for c := 0; c < blk.Cols(); c++ {
			floats.AddScaled(out, xv[c], blk.ColSlice(c))
		}
	}
	return f.model.Whiten(out)
}

// TransposeMultiplyAdd computes x[keys[j]] += Aj^T * alpha * model.Whiten(e)
// for each block j, accumulating into x.
func (f *JacobianFactor) TransposeMultiplyAdd(alpha float64, e []float64, x VectorValues) error {
	we, err := f.model.Whiten(e)
	if err != nil {
		return fmt.Errorf("TransposeMultiplyAdd: %w", err)
	}
	for j, key := range f.keys {
		blk := f.ab.Block(j)
		dst, err := x.At(key)
		if err != nil {
			return fmt.Errorf("TransposeMultiplyAdd: %w", err)
		}
		if len(dst) != blk.Cols() {
			return fmt.Errorf("TransposeMultiplyAdd: key %d: %w", key, ErrDimensionMismatch)
		}
		for c := 0; c < blk.Cols(); c++ {
			dst[c] += alpha * floats.Dot(blk.ColSlice(c), we)
		}
	}
	return nil
}

// DenseMatrix returns (A, b) as dense row-major data, optionally
// whitened.
func (f *JacobianFactor) DenseMatrix(weight bool) ([][]float64, []float64, error) {
	m := f.Rows()
	n := 0
	for j := range f.keys {
		n += f.ab.Block(j).Cols()
	}
	rowsA := make([][]float64, m)
	for i := range rowsA {
		rowsA[i] = make([]float64, n)
	}
	b := make([]float64, m)
	copy(b, f.ab.Column(len(f.keys), 0))

	col := 0
	for j := range f.keys {
		blk := f.ab.Block(j)
		for c := 0; c < blk.Cols(); c++ {
			for r := 0; r < m; r++ {
				rowsA[r][col] = blk.At(r, c)
			}
			col++
		}
	}
	if weight {
		wa, wb, err := f.model.WhitenSystem(rowsA, b)
		if err != nil {
			return nil, nil, fmt.Errorf("DenseMatrix: %w", err)
		}
		return wa, wb, nil
	}
	return rowsA, b, nil
}

// DenseAugmented returns [A | b] as a single dense row-major matrix.
func (f *JacobianFactor) DenseAugmented(weight bool) ([][]float64, error) {
	rowsA, b, err := f.DenseMatrix(weight)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(rowsA))
	for i, row := range rowsA {
		out[i] = append(append([]float64(nil), row...), b[i])
	}
	return out, nil
}

// DenseA returns key's block as dense row-major data.
func (f *JacobianFactor) DenseA(key int) ([][]float64, error) {
	j := f.slotOf(key)
	if j < 0 {
		return nil, fmt.Errorf("DenseA(%d): %w", key, ErrInvalidKey)
	}
	blk := f.ab.Block(j)
	out := make([][]float64, blk.Rows())
	for r := range out {
		out[r] = make([]float64, blk.Cols())
		blk.RowAt(r, out[r])
	}
	return out, nil
}

// DenseB returns a copy of the right-hand side vector b.
func (f *JacobianFactor) DenseB() []float64 {
	return append([]float64(nil), f.ab.Column(len(f.keys), 0)...)
}

// SparseEntry is one (row, col, value) triple, 1-based, as returned by
// Sparse.
type SparseEntry struct {
	Row, Col int
	Value    float64
}

// Sparse returns the factor's nonzero entries across all A blocks, with
// elements divided by sigma_i, zero entries omitted, in 1-based
// row/column indices — the triples format MATLAB's sparse() expects.
// A constrained (sigma=0) row's entries pass through unwhitened, the
// same convention Model.Whiten uses. columnIndices supplies the first
// column index for each key.
func (f *JacobianFactor) Sparse(columnIndices map[int]int) ([]SparseEntry, error) {
	m := f.Rows()
	var entries []SparseEntry
	for j, key := range f.keys {
		base, ok := columnIndices[key]
		if !ok {
			return nil, fmt.Errorf("Sparse: key %d: %w", key, ErrInvalidKey)
		}
		blk := f.ab.Block(j)
		for c := 0; c < blk.Cols(); c++ {
			for r := 0; r < m; r++ {
				v := blk.At(r, c)
				if v == 0 {
					continue
				}
				value := v
				if sigma := f.model.Sigma(r); sigma != 0 {
					value = v / sigma
				}
				entries = append(entries, SparseEntry{Row: r + 1, Col: base + c + 1, Value: value})
			}
		}
	}
	return entries, nil
}

// Whiten returns a copy of f with sigma folded into Ab and a unit noise
// model — idempotent per P5.
func (f *JacobianFactor) Whiten() (*JacobianFactor, error) {
	out := &JacobianFactor{
		keys:               append([]int(nil), f.keys...),
		ab:                 &blockmatrix.View{},
		firstNonzeroBlocks: append([]int(nil), f.firstNonzeroBlocks...),
	}
	out.ab.AssignNoalias(f.ab)
	if err := f.model.WhitenInPlace(out.ab); err != nil {
		return nil, fmt.Errorf("Whiten: %w", err)
	}
	out.model = noisemodel.Unit(f.Rows())
	return out, nil
}
