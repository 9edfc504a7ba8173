// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaussian

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// TestNewFromHessianRecoversUnary2D checks the unary identity case
// viewed from information form: G = A^T A = I2, g = A^T b = [3,4] for
// A = I2, b = [3,4], so the square-root factor should recover A = I2
// (up to sign) and b = [3,4] (up to the same sign).
func TestNewFromHessianRecoversUnary2D(t *testing.T) {
	G := mat.NewSymDense(2, []float64{1, 0, 0, 1})
	g := []float64{3, 4}

	f, err := NewFromHessian([]int{0}, []int{2}, G, g, 1e-12)
	require.NoError(t, err)

	a0, err := f.DenseA(0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, abs(a0[0][0]), 1e-9)
	assert.InDelta(t, 0.0, a0[0][1], 1e-9)
	assert.InDelta(t, 0.0, a0[1][0], 1e-9)
	assert.InDelta(t, 1.0, abs(a0[1][1]), 1e-9)
}

func TestNewFromHessianSortsKeys(t *testing.T) {
	G := mat.NewSymDense(2, []float64{4, 0, 0, 9})
	g := []float64{8, 27}

	f, err := NewFromHessian([]int{5, 1}, []int{1, 1}, G, g, 1e-12)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5}, f.Keys())
}

func TestNewFromHessianRejectsDimensionMismatch(t *testing.T) {
	G := mat.NewSymDense(2, []float64{1, 0, 0, 1})
	_, err := NewFromHessian([]int{0}, []int{2}, G, []float64{1, 2, 3}, 1e-12)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestNewFromHessianRankDeficientStaysSingularForEliminate(t *testing.T) {
	// G is rank-1: outer product of [1,1].
	G := mat.NewSymDense(2, []float64{1, 1, 1, 1})
	g := []float64{1, 1}

	f, err := NewFromHessian([]int{0}, []int{2}, G, g, 1e-9)
	require.NoError(t, err)

	var bn SimpleBayesNet
	_, err = Eliminate(f, 1, &bn)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSingular)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
