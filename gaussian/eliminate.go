// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaussian

import (
	"fmt"
	"sort"

	"github.com/curioloop/gaussian/blockmatrix"
	"github.com/curioloop/gaussian/noisemodel"
)

// computeFirstZeroRows builds, per column across all of ab's visible
// blocks, the row index beyond which firstNonzeroBlocks guarantees a
// structural zero. firstNonzeroBlocks must be nondecreasing across ab's
// row window, the staircase invariant every combined factor maintains.
func computeFirstZeroRows(ab *blockmatrix.View, firstNonzeroBlocks []int) []int {
	rows := ab.Rows()
	cols := ab.TotalCols()
	out := make([]int, cols)
	for c := 0; c < cols; c++ {
		block, _ := ab.BlockOfColumn(c)
		out[c] = sort.Search(rows, func(i int) bool { return firstNonzeroBlocks[i] > block })
	}
	return out
}

// Eliminate peels the first k variables of f off as frontal variables,
// QR-triangularizing f's augmented matrix and emitting one Conditional
// per frontal variable into sink, then returns the trailing factor over
// the remaining (separator) variables.
//
// A factor carrying any constrained (sigma=0) row disables the
// staircase restriction for this call: QRColumnWise interleaves
// constrained rows ahead of whitened ones before triangularizing,
// which can move a row out of the zero region a precomputed
// firstZeroRows assumed for the original row order, so a constrained
// factor falls back to an unrestricted column scan rather than risk an
// invalid skip.
func Eliminate(f *JacobianFactor, k int, sink BayesNetSink) (*JacobianFactor, error) {
	if k < 0 || k > len(f.keys) {
		return nil, fmt.Errorf("Eliminate: %w", ErrInvalidArgument)
	}

	frontalDim := 0
	for j := 0; j < k; j++ {
		frontalDim += f.ab.Block(j).Cols()
	}

	var firstZeroRows []int
	if f.model.IsConstrained() {
		firstZeroRows = nil
	} else {
		firstZeroRows = computeFirstZeroRows(f.ab, f.firstNonzeroBlocks)
	}

	conditionalModel, _, rank := f.model.QRColumnWise(f.ab, firstZeroRows)
	if rank < frontalDim {
		offender := f.keys[k-1]
		if k == 0 {
			offender = -1
		}
		return nil, fmt.Errorf("Eliminate: key %d: %w", offender, ErrSingular)
	}

	sigmas := conditionalModel.Sigmas()
	rowOffset := 0
	for j := 0; j < k; j++ {
		dim := f.ab.Block(j).Cols()
		window := f.ab.Sub(rowOffset, rowOffset+dim, j)
		c, err := NewConditional(f.keys[j:], 1, window, sigmas[rowOffset:rowOffset+dim])
		if err != nil {
			return nil, fmt.Errorf("Eliminate: %w", err)
		}
		sink.PushBack(c)
		rowOffset += dim
	}

	// The trailing factor over the separator variables occupies rows
	// [frontalDim, rank) of the triangularized system — the conditionals
	// above already claimed [0, frontalDim); rows [rank, m) are the
	// discarded residual-norm rows QR leaves behind, not separator data.
	residualWindow := f.ab.Sub(frontalDim, rank, k)
	residualAb := &blockmatrix.View{}
	residualAb.AssignNoalias(residualWindow)

	trailingModel, err := noisemodel.Constrained(sigmas[frontalDim:rank])
	if err != nil {
		return nil, fmt.Errorf("Eliminate: %w", err)
	}

	out := &JacobianFactor{
		keys:               append([]int(nil), f.keys[k:]...),
		ab:                 residualAb,
		firstNonzeroBlocks: recomputeFirstNonzeroBlocks(residualAb),
		model:              trailingModel,
	}
	if err := out.checkInvariants(); err != nil {
		return nil, err
	}
	return out, nil
}

// recomputeFirstNonzeroBlocks rebuilds the staircase hint for a factor
// fresh out of QR: row r's pivot column is row r itself (no column
// pivoting means pivot columns are consumed in order), so row r's
// first-nonzero block is simply the block owning ab's r-th column. This
// assumes elimination never skipped a column ahead of row r, the same
// assumption Eliminate's frontal row-window attribution makes.
func recomputeFirstNonzeroBlocks(ab *blockmatrix.View) []int {
	rows := ab.Rows()
	out := make([]int, rows)
	for r := 0; r < rows; r++ {
		block, _ := ab.BlockOfColumn(r)
		out[r] = block
	}
	return out
}

// EliminateFirst eliminates exactly the first variable of f, the
// single-frontal convenience a sequential elimination loop uses.
func EliminateFirst(f *JacobianFactor, sink BayesNetSink) (*JacobianFactor, error) {
	return Eliminate(f, 1, sink)
}

// CombineAndEliminate combines factors sharing variables per slots, then
// eliminates its first k variables as frontals, emitting conditionals
// into sink and returning the trailing joint factor.
func CombineAndEliminate(factors []*JacobianFactor, slots *VariableSlots, k int, sink BayesNetSink) (*JacobianFactor, error) {
	joint, err := Combine(factors, slots)
	if err != nil {
		return nil, fmt.Errorf("CombineAndEliminate: %w", err)
	}
	return Eliminate(joint, k, sink)
}
