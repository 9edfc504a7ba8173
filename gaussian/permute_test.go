// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaussian

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPermuteWithInverseRoundTrip checks that applying a permutation
// rewrites keys to their new identifiers and reorders blocks to match,
// with firstNonzeroBlocks invalidated back to 0.
func TestPermuteWithInverseRewritesAndReordersKeys(t *testing.T) {
	terms := []Term{
		{Key: 2, A: [][]float64{{1}}},
		{Key: 0, A: [][]float64{{2}}},
	}
	f, err := NewKAry(terms, []float64{9}, unitModel(t, 1))
	require.NoError(t, err)

	perm := Permutation([]int{0, 1, 9, 3}) // maps key i -> perm[i]; key 2 -> 9
	require.NoError(t, f.PermuteWithInverse(perm))

	assert.Equal(t, []int{0, 9}, f.Keys())
	a0, err := f.DenseA(0)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2}}, a0)
	a9, err := f.DenseA(9)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1}}, a9)

	// firstNonzeroBlocks is invalidated (reset to 0) after a permutation.
	for _, b := range f.FirstNonzeroBlocks() {
		assert.Equal(t, 0, b)
	}
}

func TestIdentityPermutationIsNoop(t *testing.T) {
	terms := []Term{{Key: 0, A: [][]float64{{1}}}, {Key: 1, A: [][]float64{{2}}}}
	f, err := NewKAry(terms, []float64{3}, unitModel(t, 1))
	require.NoError(t, err)

	require.NoError(t, f.PermuteWithInverse(Identity(2)))
	assert.Equal(t, []int{0, 1}, f.Keys())
}
