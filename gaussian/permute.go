// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaussian

import (
	"sort"

	"github.com/curioloop/gaussian/blockmatrix"
)

// PermuteWithInverse rewrites key identifiers only: for each key k in
// slot j, the new key is invPerm.At(k). Slots are then physically
// reordered so keys are ascending by new identifier, and
// firstNonzeroBlocks is invalidated to 0 for every row — the staircase
// is meaningless after a permutation.
func (f *JacobianFactor) PermuteWithInverse(invPerm Permutation) error {
	newKeys := make([]int, len(f.keys))
	for i, k := range f.keys {
		newKeys[i] = invPerm.At(k)
	}

	order := make([]int, len(newKeys))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return newKeys[order[a]] < newKeys[order[b]] })

	dims := make([]int, len(order)+1)
	for i, oi := range order {
		dims[i] = f.ab.Block(oi).Cols()
	}
	dims[len(order)] = 1

	newAb := blockmatrix.NewView(dims, f.Rows())
	for i, oi := range order {
		src, dst := f.ab.Block(oi), newAb.Block(i)
		for c := 0; c < src.Cols(); c++ {
			copy(dst.ColSlice(c), src.ColSlice(c))
		}
	}
	copy(newAb.Column(len(order), 0), f.ab.Column(len(f.keys), 0))

	sortedKeys := make([]int, len(order))
	for i, oi := range order {
		sortedKeys[i] = newKeys[oi]
	}

	f.keys = sortedKeys
	f.ab = newAb
	f.firstNonzeroBlocks = make([]int, f.Rows())
	return f.checkInvariants()
}
