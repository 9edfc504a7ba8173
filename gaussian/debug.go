// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaussian

import (
	"fmt"
	"math"
	"strings"

	"github.com/curioloop/gaussian/blockmatrix"
	"github.com/curioloop/gaussian/noisemodel"
	"gonum.org/v1/gonum/floats"
)

// String renders the factor's keys, dense [A | b], and sigmas for
// debugging.
func (f *JacobianFactor) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "JacobianFactor keys=%v rows=%d\n", f.keys, f.Rows())
	aug, err := f.DenseAugmented(false)
	if err != nil {
		fmt.Fprintf(&sb, "  <error building matrix: %v>\n", err)
		return sb.String()
	}
	for _, row := range aug {
		fmt.Fprintf(&sb, "  %v\n", row)
	}
	fmt.Fprintf(&sb, "  sigmas=%v\n", f.model.Sigmas())
	return sb.String()
}

// Equal compares f and other structurally over Ab only, up to a row
// sign flip, ignoring the noise model: two factors with different
// sigma may compare equal.
func (f *JacobianFactor) Equal(other *JacobianFactor, tol float64) bool {
	if len(f.keys) != len(other.keys) || f.Rows() != other.Rows() {
		return false
	}
	for i, k := range f.keys {
		if other.keys[i] != k {
			return false
		}
	}
	aug1, err1 := f.DenseAugmented(false)
	aug2, err2 := other.DenseAugmented(false)
	if err1 != nil || err2 != nil {
		return false
	}
	used := make([]bool, len(aug2))
	for _, row1 := range aug1 {
		found := false
		for j, row2 := range aug2 {
			if used[j] {
				continue
			}
			if rowsEqualUpToSign(row1, row2, tol) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func rowsEqualUpToSign(a, b []float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	same, negated := true, true
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			same = false
		}
		if math.Abs(a[i]+b[i]) > tol {
			negated = false
		}
	}
	return same || negated
}

// Negate returns a factor with Ab (both A and b) negated and a trivial
// unit noise model, used when forming error-graph residuals.
func (f *JacobianFactor) Negate() *JacobianFactor {
	out := &JacobianFactor{
		keys:               append([]int(nil), f.keys...),
		ab:                 &blockmatrix.View{},
		firstNonzeroBlocks: append([]int(nil), f.firstNonzeroBlocks...),
		model:              noisemodel.Unit(f.Rows()),
	}
	out.ab.AssignNoalias(f.ab)
	for j := 0; j < out.ab.NumBlocks(); j++ {
		blk := out.ab.Block(j)
		for c := 0; c < blk.Cols(); c++ {
			floats.Scale(-1, blk.ColSlice(c))
		}
	}
	return out
}
