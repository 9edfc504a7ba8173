// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaussian

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConditionalRoundTripPreservesBlockStructure exercises the fix
// this session made to NewConditional/NewFromConditional: a conditional
// built from a two-key factor must come back with each key's own block
// width intact, not merged into one flat block.
func TestConditionalRoundTripPreservesBlockStructure(t *testing.T) {
	terms := []Term{
		{Key: 0, A: [][]float64{{1, 0}}},
		{Key: 1, A: [][]float64{{2}}},
	}
	f, err := NewKAry(terms, []float64{9}, unitModel(t, 1))
	require.NoError(t, err)

	c, err := NewConditional(f.Keys(), 1, f.ab, f.Model().Sigmas())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, c.Keys())
	assert.Equal(t, 1, c.NumFrontals())

	back, err := NewFromConditional(c)
	require.NoError(t, err)

	a0, err := back.DenseA(0)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0}}, a0)
	a1, err := back.DenseA(1)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2}}, a1)
}

func TestNewConditionalRejectsFrontalOutOfRange(t *testing.T) {
	terms := []Term{{Key: 0, A: [][]float64{{1}}}}
	f, err := NewKAry(terms, []float64{1}, unitModel(t, 1))
	require.NoError(t, err)

	_, err = NewConditional(f.Keys(), 5, f.ab, f.Model().Sigmas())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
