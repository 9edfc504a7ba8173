// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaussian

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorValuesAtMissingKey(t *testing.T) {
	v := NewVectorValues()
	_, err := v.At(42)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestVectorValuesAxpy(t *testing.T) {
	v := NewVectorValues()
	v.Set(0, []float64{1, 1})
	other := NewVectorValues()
	other.Set(0, []float64{2, 3})

	require.NoError(t, v.Axpy(2, other))
	got, err := v.At(0)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 7}, got)
}

func TestVectorValuesAxpyRejectsMissingKey(t *testing.T) {
	v := NewVectorValues()
	other := NewVectorValues()
	other.Set(0, []float64{1})

	err := v.Axpy(1, other)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestVectorValuesSameStructure(t *testing.T) {
	a := NewVectorValues()
	a.Set(0, []float64{1, 2})
	b := NewVectorValues()
	b.Set(0, []float64{9, 9})
	assert.True(t, a.SameStructure(b))

	b.Set(1, []float64{0})
	assert.False(t, a.SameStructure(b))
}

func TestPermutationIdentityAndInverse(t *testing.T) {
	p := Identity(3)
	assert.Equal(t, []int{0, 1, 2}, []int(p))

	p = Permutation([]int{2, 0, 1})
	inv := p.Inverse()
	for v := 0; v < 3; v++ {
		assert.Equal(t, v, inv.At(p.At(v)))
	}
}
