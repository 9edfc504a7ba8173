// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gaussian implements the linearized Gaussian factor at the
// center of this module: JacobianFactor, its construction, arithmetic,
// permutation, Combine and elimination, built atop blockmatrix's
// column-major augmented matrix and noisemodel's diagonal/constrained
// noise model and staircase-aware QR.
package gaussian

import (
	"fmt"

	"github.com/curioloop/gaussian/blockmatrix"
	"github.com/curioloop/gaussian/noisemodel"
)

// JacobianFactor is a linearized Gaussian factor A*x - b ~= 0 over a
// subset of vector-valued variables. checkInvariants documents the
// invariants every constructor and mutator must leave intact.
type JacobianFactor struct {
	keys               []int
	ab                 *blockmatrix.View
	firstNonzeroBlocks []int
	model              *noisemodel.Model
}

// Keys returns the factor's variable indices in their stored order.
func (f *JacobianFactor) Keys() []int { return append([]int(nil), f.keys...) }

// NumKeys returns the number of variables the factor involves.
func (f *JacobianFactor) NumKeys() int { return len(f.keys) }

// Rows returns the factor's residual dimension m.
func (f *JacobianFactor) Rows() int { return f.ab.Rows() }

// Empty reports whether the factor carries no rows (m == 0). This does
// not imply Keys() is empty — a factor can involve variables yet carry
// zero information.
func (f *JacobianFactor) Empty() bool { return f.Rows() == 0 }

// Model returns the factor's noise model.
func (f *JacobianFactor) Model() *noisemodel.Model { return f.model }

// IsConstrained forwards to the noise model.
func (f *JacobianFactor) IsConstrained() bool { return f.model.IsConstrained() }

// FirstNonzeroBlocks returns a copy of the per-row staircase hint.
func (f *JacobianFactor) FirstNonzeroBlocks() []int {
	return append([]int(nil), f.firstNonzeroBlocks...)
}

// slotOf returns the block index of key within the factor, or -1.
func (f *JacobianFactor) slotOf(key int) int {
	for j, k := range f.keys {
		if k == key {
			return j
		}
	}
	return -1
}

// Dim returns the column width of key's block within this factor.
func (f *JacobianFactor) Dim(key int) (int, bool) {
	j := f.slotOf(key)
	if j < 0 {
		return 0, false
	}
	return f.ab.Block(j).Cols(), true
}

// checkInvariants verifies the factor's structural invariants: block
// count matches key count, firstNonzeroBlocks is the right length, its
// entries are in range and nondecreasing, Ab carries no NaN, and the
// noise model's dimension matches the row count.
func (f *JacobianFactor) checkInvariants() error {
	m := f.Rows()
	if m == 0 && f.ab.NumBlocks() == 0 {
		// empty factor: invariant 1's disjunct is satisfied trivially.
	} else if f.ab.NumBlocks() != len(f.keys)+1 {
		return fmt.Errorf("checkInvariants: numBlocks=%d keys=%d: %w", f.ab.NumBlocks(), len(f.keys), ErrInvalidArgument)
	}
	if len(f.firstNonzeroBlocks) != m {
		return fmt.Errorf("checkInvariants: len(firstNonzeroBlocks)=%d m=%d: %w", len(f.firstNonzeroBlocks), m, ErrInvalidArgument)
	}
	for _, b := range f.firstNonzeroBlocks {
		if b >= f.ab.NumBlocks() {
			return fmt.Errorf("checkInvariants: firstNonzeroBlocks entry %d >= numBlocks %d: %w", b, f.ab.NumBlocks(), ErrInvalidArgument)
		}
	}
	for i := 1; i < len(f.firstNonzeroBlocks); i++ {
		if f.firstNonzeroBlocks[i] < f.firstNonzeroBlocks[i-1] {
			return fmt.Errorf("checkInvariants: firstNonzeroBlocks not nondecreasing at row %d: %w", i, ErrInvalidArgument)
		}
	}
	if f.ab.HasNaN() {
		return fmt.Errorf("checkInvariants: NaN in Ab: %w", ErrInvalidArgument)
	}
	if f.model.Dim() != m {
		return fmt.Errorf("checkInvariants: model dim=%d m=%d: %w", f.model.Dim(), m, ErrInvalidArgument)
	}
	return nil
}

// NewNull constructs the null factor: no keys, no rows.
func NewNull() *JacobianFactor {
	return &JacobianFactor{
		keys:               nil,
		ab:                 blockmatrix.NewView(nil, 0),
		firstNonzeroBlocks: nil,
		model:              noisemodel.Unit(0),
	}
}

// NewFromB constructs a b-only factor: no keys, m = len(b), a single
// 1-wide block holding b. The caller supplies the noise model
// separately.
func NewFromB(b []float64, model *noisemodel.Model) (*JacobianFactor, error) {
	if model.Dim() != len(b) {
		return nil, fmt.Errorf("NewFromB: %w", ErrDimensionMismatch)
	}
	ab := blockmatrix.NewView([]int{1}, len(b))
	copy(ab.Column(0, 0), b)
	f := &JacobianFactor{
		keys:               nil,
		ab:                 ab,
		firstNonzeroBlocks: make([]int, len(b)),
		model:              model,
	}
	if err := f.checkInvariants(); err != nil {
		return nil, err
	}
	return f, nil
}

// Term pairs a variable index with its dense Jacobian block, the unit
// NewKAry takes a list of.
type Term struct {
	Key int
	A   [][]float64 // row-major: len(A) == m, len(A[i]) == block width
}

// NewKAry constructs a factor from an ordered list of (key, Aj) terms,
// a right-hand side b, and a noise model. Keys are stored in the given
// order; ordering convention is left to the caller. firstNonzeroBlocks
// is initialized to 0 for every row: no sparsity is exploited yet.
func NewKAry(terms []Term, b []float64, model *noisemodel.Model) (*JacobianFactor, error) {
	m := len(b)
	if model.Dim() != m {
		return nil, fmt.Errorf("NewKAry: %w", ErrDimensionMismatch)
	}
	dims := make([]int, len(terms)+1)
	keys := make([]int, len(terms))
	for i, t := range terms {
		if len(t.A) != m {
			return nil, fmt.Errorf("NewKAry: term %d has %d rows, want %d: %w", i, len(t.A), m, ErrDimensionMismatch)
		}
		width := 0
		if m > 0 {
			width = len(t.A[0])
		}
		dims[i] = width
		keys[i] = t.Key
	}
	dims[len(terms)] = 1

	ab := blockmatrix.NewView(dims, m)
	for i, t := range terms {
		blk := ab.Block(i)
		for r := 0; r < m; r++ {
			if len(t.A[r]) != blk.Cols() {
				return nil, fmt.Errorf("NewKAry: term %d row %d has %d cols, want %d: %w", i, r, len(t.A[r]), blk.Cols(), ErrDimensionMismatch)
			}
			blk.SetRowAt(r, t.A[r])
		}
	}
	copy(ab.Column(len(terms), 0), b)

	f := &JacobianFactor{
		keys:               keys,
		ab:                 ab,
		firstNonzeroBlocks: make([]int, m),
		model:              model,
	}
	if err := f.checkInvariants(); err != nil {
		return nil, err
	}
	return f, nil
}
