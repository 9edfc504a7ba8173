// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaussian

import (
	"fmt"
	"math"
	"sort"

	"github.com/curioloop/gaussian/blockmatrix"
	"github.com/curioloop/gaussian/noisemodel"
)

// rowSource records, for one row of the eventual joint matrix, which
// source factor and row it was drawn from, and the row's
// firstNonzeroVar — the canonical sort key the row ordering uses.
type rowSource struct {
	factorIdx, rowIdx int
	firstNonzeroVar   int
}

// firstNonzeroVarOf returns the identifier of the first key at or
// beyond f's firstNonzeroBlocks[row], or f's last key + 1 if that index
// runs past the end of f's keys.
func firstNonzeroVarOf(f *JacobianFactor, row int) int {
	idx := f.firstNonzeroBlocks[row]
	if idx < len(f.keys) {
		return f.keys[idx]
	}
	if len(f.keys) == 0 {
		return math.MaxInt
	}
	return f.keys[len(f.keys)-1] + 1
}

// Combine merges factors sharing variables (per slots) into a single
// joint JacobianFactor, sorting rows by staircase order and zero-filling
// missing blocks.
func Combine(factors []*JacobianFactor, slots *VariableSlots) (*JacobianFactor, error) {
	// Step 1: dimension inventory.
	dims := make(map[int]int, len(slots.OrderedVariables))
	for _, v := range slots.OrderedVariables {
		found := false
		for i, f := range factors {
			if s := slots.Slots[v][i]; s != AbsentSlot {
				dims[v] = f.ab.Block(s).Cols()
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("Combine: variable %d: %w", v, ErrInvalidKey)
		}
		// Verify every factor that holds v agrees on its dimension; a
		// release build must refuse to produce a joint factor under
		// violation of this invariant.
		for i, f := range factors {
			if s := slots.Slots[v][i]; s != AbsentSlot {
				if f.ab.Block(s).Cols() != dims[v] {
					return nil, fmt.Errorf("Combine: variable %d dimension mismatch between factors: %w", v, ErrDimensionMismatch)
				}
			}
		}
	}

	m := 0
	for _, f := range factors {
		m += f.Rows()
	}

	// Step 2: row source table.
	sources := make([]rowSource, 0, m)
	for i, f := range factors {
		for r := 0; r < f.Rows(); r++ {
			sources = append(sources, rowSource{factorIdx: i, rowIdx: r, firstNonzeroVar: firstNonzeroVarOf(f, r)})
		}
	}

	// Step 3: stable sort ascending by firstNonzeroVar.
	sort.SliceStable(sources, func(a, b int) bool {
		return sources[a].firstNonzeroVar < sources[b].firstNonzeroVar
	})

	// Step 4: allocate the joint Ab.
	jointDims := make([]int, len(slots.OrderedVariables)+1)
	for i, v := range slots.OrderedVariables {
		jointDims[i] = dims[v]
	}
	jointDims[len(slots.OrderedVariables)] = 1
	joint := blockmatrix.NewView(jointDims, m)

	// Step 5 & 6: copy blocks, b, and sigma row by row.
	sigmas := make([]float64, m)
	constrained := false
	for r, src := range sources {
		f := factors[src.factorIdx]
		srcRow := src.rowIdx
		for s, v := range slots.OrderedVariables {
			dstBlk := joint.Block(s)
			sp := slots.Slots[v][src.factorIdx]
			if sp != AbsentSlot && f.firstNonzeroBlocks[srcRow] <= sp {
				srcBlk := f.ab.Block(sp)
				for c := 0; c < dstBlk.Cols(); c++ {
					dstBlk.Set(r, c, srcBlk.At(srcRow, c))
				}
			}
			// else: left zero by allocation.
		}
		bCol := joint.Column(len(slots.OrderedVariables), 0)
		bCol[r] = f.ab.Column(len(f.keys), 0)[srcRow]
		sigmas[r] = f.model.Sigma(srcRow)
		if sigmas[r] == 0 {
			constrained = true
		}
	}

	// Step 7: joint firstNonzeroBlocks via a monotone pointer.
	firstNonzeroBlocks := make([]int, m)
	p := 0
	for r, src := range sources {
		for p < len(slots.OrderedVariables) && src.firstNonzeroVar > slots.OrderedVariables[p] {
			p++
		}
		firstNonzeroBlocks[r] = p
	}

	// Step 8: noise model.
	var model *noisemodel.Model
	var err error
	if constrained {
		model, err = noisemodel.Constrained(sigmas)
	} else {
		model, err = noisemodel.Diagonal(sigmas)
	}
	if err != nil {
		return nil, fmt.Errorf("Combine: %w", err)
	}

	out := &JacobianFactor{
		keys:               append([]int(nil), slots.OrderedVariables...),
		ab:                 joint,
		firstNonzeroBlocks: firstNonzeroBlocks,
		model:              model,
	}
	if err := out.checkInvariants(); err != nil {
		return nil, err
	}
	return out, nil
}
