// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaussian

import (
	"errors"
	"math"
	"testing"

	"github.com/curioloop/gaussian/noisemodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitModel(t *testing.T, m int) *noisemodel.Model {
	t.Helper()
	model, err := noisemodel.Diagonal(onesOf(m))
	require.NoError(t, err)
	return model
}

func onesOf(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

// TestNewKAryUnary2D checks a single 2-d unary factor A = I2, b = [3, 4].
func TestNewKAryUnary2D(t *testing.T) {
	terms := []Term{{Key: 0, A: [][]float64{{1, 0}, {0, 1}}}}
	f, err := NewKAry(terms, []float64{3, 4}, unitModel(t, 2))
	require.NoError(t, err)

	assert.Equal(t, []int{0}, f.Keys())
	assert.Equal(t, 2, f.Rows())
	width, ok := f.Dim(0)
	require.True(t, ok)
	assert.Equal(t, 2, width)
	assert.Equal(t, []float64{3, 4}, f.DenseB())
}

func TestNewKAryRejectsRowMismatch(t *testing.T) {
	terms := []Term{{Key: 0, A: [][]float64{{1, 0}}}}
	_, err := NewKAry(terms, []float64{3, 4}, unitModel(t, 2))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestNewKAryRejectsNaN(t *testing.T) {
	terms := []Term{{Key: 0, A: [][]float64{{math.NaN()}, {1}}}}
	_, err := NewKAry(terms, []float64{3, 4}, unitModel(t, 2))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestNewNullIsEmpty(t *testing.T) {
	f := NewNull()
	assert.True(t, f.Empty())
	assert.Empty(t, f.Keys())
}

func TestNewFromBRejectsDimensionMismatch(t *testing.T) {
	_, err := NewFromB([]float64{1, 2, 3}, unitModel(t, 2))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestNewFromBConstructsBOnlyFactor(t *testing.T) {
	f, err := NewFromB([]float64{5, 6}, unitModel(t, 2))
	require.NoError(t, err)
	assert.Empty(t, f.Keys())
	assert.Equal(t, []float64{5, 6}, f.DenseB())
}

// TestNewKAryBinary checks a binary factor over two 2-d keys.
func TestNewKAryBinary(t *testing.T) {
	terms := []Term{
		{Key: 0, A: [][]float64{{1, 0}, {0, 1}}},
		{Key: 1, A: [][]float64{{-1, 0}, {0, -1}}},
	}
	f, err := NewKAry(terms, []float64{1, 2}, unitModel(t, 2))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, f.Keys())
	assert.Equal(t, 2, f.NumKeys())

	a0, err := f.DenseA(0)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0}, {0, 1}}, a0)

	_, err = f.DenseA(99)
	assert.ErrorIs(t, err, ErrInvalidKey)
}
