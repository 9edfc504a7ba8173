// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blockmatrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyStructureFrom(t *testing.T) {
	v := NewView([]int{2, 1, 1}, 3)
	require.Equal(t, 3, v.NumBlocks())
	require.Equal(t, 3, v.Rows())

	blk := v.Block(0)
	require.Equal(t, 2, blk.Cols())
	require.Equal(t, 3, blk.Rows())
	blk.Set(0, 0, 1)
	blk.Set(1, 1, 2)
	assert.Equal(t, 1.0, blk.At(0, 0))
	assert.Equal(t, 2.0, blk.At(1, 1))
	assert.Equal(t, 0.0, blk.At(2, 0))
}

func TestBlockColSliceIsContiguous(t *testing.T) {
	v := NewView([]int{2, 1}, 4)
	blk := v.Block(0)
	col := blk.ColSlice(1)
	require.Len(t, col, 4)
	col[2] = 9
	assert.Equal(t, 9.0, blk.At(2, 1))
}

func TestRowWindowNarrowsAccess(t *testing.T) {
	v := NewView([]int{1, 1}, 4)
	for i := 0; i < 4; i++ {
		v.Block(0).Set(i, 0, float64(i))
	}
	v.SetRowStart(1)
	v.SetRowEnd(3)
	blk := v.Block(0)
	require.Equal(t, 2, blk.Rows())
	assert.Equal(t, 1.0, blk.At(0, 0))
	assert.Equal(t, 2.0, blk.At(1, 0))
}

func TestFirstBlockShiftsVisibility(t *testing.T) {
	v := NewView([]int{1, 1, 1}, 2)
	v.SetFirstBlock(1)
	require.Equal(t, 2, v.NumBlocks())
	rng := v.Range(0, 2)
	assert.Equal(t, 2, rng.Cols())
}

func TestSwapIsConstantTime(t *testing.T) {
	a := NewView([]int{1}, 2)
	b := NewView([]int{2}, 3)
	a.Block(0).Set(0, 0, 42)
	a.Swap(b)
	assert.Equal(t, 2, a.Block(0).Cols()) // sanity: a now has b's structure
	require.Equal(t, 1, a.NumBlocks())
	assert.Equal(t, 42.0, b.Block(0).At(0, 0))
}

func TestAssignNoaliasDeepCopies(t *testing.T) {
	src := NewView([]int{1, 1}, 2)
	src.Block(0).Set(0, 0, 5)
	dst := &View{}
	dst.AssignNoalias(src)
	dst.Block(0).Set(0, 0, 99)
	assert.Equal(t, 5.0, src.Block(0).At(0, 0))
	assert.Equal(t, 99.0, dst.Block(0).At(0, 0))
}

func TestHasNaN(t *testing.T) {
	v := NewView([]int{1}, 2)
	assert.False(t, v.HasNaN())
	v.Block(0).Set(0, 0, nanValue())
	assert.True(t, v.HasNaN())
}

func nanValue() float64 {
	var zero float64
	return zero / zero
}

func TestScaleRowAndSwapRows(t *testing.T) {
	v := NewView([]int{2}, 2)
	blk := v.Block(0)
	blk.SetRowAt(0, []float64{1, 2})
	blk.SetRowAt(1, []float64{3, 4})
	blk.ScaleRow(0, 2)
	row := make([]float64, 2)
	blk.RowAt(0, row)
	assert.Equal(t, []float64{2, 4}, row)
	blk.SwapRows(0, 1)
	blk.RowAt(0, row)
	assert.Equal(t, []float64{3, 4}, row)
}
