// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaussian

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCombineJoinsSharedVariable checks that two unary factors over
// the same variable combine into one 2-row joint factor without
// losing either row.
func TestCombineJoinsSharedVariable(t *testing.T) {
	f1, err := NewKAry([]Term{{Key: 0, A: [][]float64{{1}}}}, []float64{3}, unitModel(t, 1))
	require.NoError(t, err)
	f2, err := NewKAry([]Term{{Key: 0, A: [][]float64{{1}}}}, []float64{5}, unitModel(t, 1))
	require.NoError(t, err)

	factors := []*JacobianFactor{f1, f2}
	slots := BuildVariableSlots(factors)
	joint, err := Combine(factors, slots)
	require.NoError(t, err)

	assert.Equal(t, []int{0}, joint.Keys())
	assert.Equal(t, 2, joint.Rows())
	assert.ElementsMatch(t, []float64{3, 5}, joint.DenseB())
}

// TestCombineZeroFillsMissingBlocks checks that a variable absent from
// one factor's rows is zero-filled in the joint matrix, not skipped.
func TestCombineZeroFillsMissingBlocks(t *testing.T) {
	f1, err := NewKAry([]Term{{Key: 0, A: [][]float64{{1}}}}, []float64{1}, unitModel(t, 1))
	require.NoError(t, err)
	f2, err := NewKAry([]Term{{Key: 1, A: [][]float64{{1}}}}, []float64{2}, unitModel(t, 1))
	require.NoError(t, err)

	factors := []*JacobianFactor{f1, f2}
	slots := BuildVariableSlots(factors)
	joint, err := Combine(factors, slots)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, joint.Keys())
	assert.Equal(t, 2, joint.Rows())

	a0, err := joint.DenseA(0)
	require.NoError(t, err)
	a1, err := joint.DenseA(1)
	require.NoError(t, err)

	// one row has a nonzero 0-block and zero 1-block, and vice versa.
	nonzero0, nonzero1 := 0, 0
	for r := 0; r < 2; r++ {
		if a0[r][0] != 0 {
			nonzero0++
		}
		if a1[r][0] != 0 {
			nonzero1++
		}
	}
	assert.Equal(t, 1, nonzero0)
	assert.Equal(t, 1, nonzero1)
}

func TestCombinePropagatesConstrained(t *testing.T) {
	cf, err := NewFromB([]float64{9}, mustConstrained(t, []float64{0}))
	require.NoError(t, err)

	factors := []*JacobianFactor{cf}
	slots := BuildVariableSlots(factors)
	joint, err := Combine(factors, slots)
	require.NoError(t, err)
	assert.True(t, joint.IsConstrained())
}
