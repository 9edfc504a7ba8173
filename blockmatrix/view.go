// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package blockmatrix implements the column-major, block-structured
// augmented matrix that backs a Gaussian factor's [A | b] system.
//
// The backing array is always addressed a[i+ld*j] (a[j+mda*l] in the
// classic Lawson-Hanson Householder routines this leading-dimension
// convention comes from): columns are contiguous, rows are strided by
// ld. A View never owns more than one buffer; Swap moves that buffer
// wholesale, and AssignNoalias copies the source's current row window
// and visible blocks into a fresh buffer.
package blockmatrix

import "math"

// buffer is the single dense allocation shared by a View and every
// Block carved out of it. Its row count never changes after
// CopyStructureFrom; only the View's row window and firstBlock shrink
// as elimination peels off conditionals.
type buffer struct {
	data []float64 // column-major, length ld*cols
	ld   int        // leading dimension: total row count of the allocation
}

// View is a value type: copying a View copies the *pointer* to its
// buffer, not the buffer itself. Use AssignNoalias for a deep copy and
// Swap to exchange storage between two independently-owned Views.
type View struct {
	buf      *buffer
	offsets  []int // cumulative column offsets, len(offsets) == numBlocks+1
	rowStart int
	rowEnd   int
	firstBlock int
}

// CopyStructureFrom allocates a totalRows × Σdims matrix and records
// block boundaries from dims. The trailing block is conventionally
// width 1 (the b column) by caller convention, not enforced here.
func (v *View) CopyStructureFrom(dims []int, totalRows int) {
	offsets := make([]int, len(dims)+1)
	cols := 0
	for i, d := range dims {
		offsets[i] = cols
		cols += d
	}
	offsets[len(dims)] = cols
	v.buf = &buffer{data: make([]float64, totalRows*cols), ld: totalRows}
	v.offsets = offsets
	v.rowStart, v.rowEnd, v.firstBlock = 0, totalRows, 0
}

// NewView is a convenience constructor equivalent to declaring a zero
// View and calling CopyStructureFrom.
func NewView(dims []int, totalRows int) *View {
	v := &View{}
	v.CopyStructureFrom(dims, totalRows)
	return v
}

// Rows reports the size of the current row window.
func (v *View) Rows() int { return v.rowEnd - v.rowStart }

// TotalRows reports the allocation's full row count, ignoring the window.
func (v *View) TotalRows() int {
	if v.buf == nil {
		return 0
	}
	return v.buf.ld
}

// NumBlocks reports the number of blocks visible from firstBlock onward.
func (v *View) NumBlocks() int {
	if v.offsets == nil {
		return 0
	}
	return len(v.offsets) - 1 - v.firstBlock
}

// RowStart, RowEnd and FirstBlock are the window accessors, settable;
// downstream Blocks observe mutations through the shared buf.
func (v *View) RowStart() int    { return v.rowStart }
func (v *View) RowEnd() int      { return v.rowEnd }
func (v *View) FirstBlock() int  { return v.firstBlock }

func (v *View) SetRowStart(r int)   { v.rowStart = r }
func (v *View) SetRowEnd(r int)     { v.rowEnd = r }
func (v *View) SetFirstBlock(b int) { v.firstBlock = b }

// blockWidth returns the width of absolute block index b.
func (v *View) blockWidth(b int) int { return v.offsets[b+1] - v.offsets[b] }

// Block returns the submatrix for the j-th visible block, spanning the
// current row window.
func (v *View) Block(j int) Block {
	b := v.firstBlock + j
	return Block{
		buf:      v.buf,
		colStart: v.offsets[b],
		colEnd:   v.offsets[b+1],
		rowStart: v.rowStart,
		rowEnd:   v.rowEnd,
	}
}

// Range returns the submatrix spanning visible blocks [j0, j1).
func (v *View) Range(j0, j1 int) Block {
	b0, b1 := v.firstBlock+j0, v.firstBlock+j1
	return Block{
		buf:      v.buf,
		colStart: v.offsets[b0],
		colEnd:   v.offsets[b1],
		rowStart: v.rowStart,
		rowEnd:   v.rowEnd,
	}
}

// Column returns the colWithinBlock-th column of visible block j as a
// contiguous slice over the current row window (used to fetch b).
func (v *View) Column(j, colWithinBlock int) []float64 {
	blk := v.Block(j)
	return blk.ColSlice(colWithinBlock)
}

// AssignNoalias performs a structural and element copy of other into v.
func (v *View) AssignNoalias(other *View) {
	dims := make([]int, other.NumBlocks())
	for i := range dims {
		dims[i] = other.blockWidth(other.firstBlock + i)
	}
	v.CopyStructureFrom(dims, other.Rows())
	for j := 0; j < len(dims); j++ {
		dst, src := v.Block(j), other.Block(j)
		for c := 0; c < dst.Cols(); c++ {
			copy(dst.ColSlice(c), src.ColSlice(c))
		}
	}
}

// Swap exchanges storage between v and other in O(1).
func (v *View) Swap(other *View) {
	v.buf, other.buf = other.buf, v.buf
	v.offsets, other.offsets = other.offsets, v.offsets
	v.rowStart, other.rowStart = other.rowStart, v.rowStart
	v.rowEnd, other.rowEnd = other.rowEnd, v.rowEnd
	v.firstBlock, other.firstBlock = other.firstBlock, v.firstBlock
}

// HasNaN reports whether any element within the current row window and
// visible blocks is NaN, used by the factor's invariant check (P3).
func (v *View) HasNaN() bool {
	for j := 0; j < v.NumBlocks(); j++ {
		blk := v.Block(j)
		for c := 0; c < blk.Cols(); c++ {
			for _, x := range blk.ColSlice(c) {
				if math.IsNaN(x) {
					return true
				}
			}
		}
	}
	return false
}

// Block is a non-owning, lightweight reference into a View's buffer.
// It is only valid while the owning View is alive and unswapped.
type Block struct {
	buf                        *buffer
	colStart, colEnd           int
	rowStart, rowEnd           int
}

// Rows and Cols report the block's logical dimensions.
func (b Block) Rows() int { return b.rowEnd - b.rowStart }
func (b Block) Cols() int { return b.colEnd - b.colStart }

// At returns element (i, j) relative to the block's own row/col origin.
func (b Block) At(i, j int) float64 {
	return b.buf.data[b.buf.ld*(b.colStart+j)+b.rowStart+i]
}

// Set assigns element (i, j) relative to the block's own row/col origin.
func (b Block) Set(i, j int, val float64) {
	b.buf.data[b.buf.ld*(b.colStart+j)+b.rowStart+i] = val
}

// ColSlice returns column j as a contiguous slice over the row window —
// the fast path, since the backing store is column-major.
func (b Block) ColSlice(j int) []float64 {
	off := b.buf.ld * (b.colStart + j)
	return b.buf.data[off+b.rowStart : off+b.rowEnd]
}

// RowStride returns the stride between successive elements of a row,
// i.e. the leading dimension of the backing allocation. Used by row-wise
// helpers (ScaleRow, RowAt, SetRowAt, SwapRows) that cannot use gonum/floats directly
// because that package only operates over contiguous slices.
func (b Block) RowStride() int { return b.buf.ld }

// rowBase returns the absolute offset of element (i, 0) in the backing
// array, so that element (i, j) is rowBase + j*RowStride().
func (b Block) rowBase(i int) int {
	return b.buf.ld*b.colStart + b.rowStart + i
}

// ScaleRow multiplies row i (relative to the block) by factor, in place.
func (b Block) ScaleRow(i int, factor float64) {
	base, stride := b.rowBase(i), b.RowStride()
	for j := 0; j < b.Cols(); j++ {
		b.buf.data[base+j*stride] *= factor
	}
}

// RowAt copies row i (relative to the block) into dst, which must have
// length >= Cols().
func (b Block) RowAt(i int, dst []float64) {
	base, stride := b.rowBase(i), b.RowStride()
	for j := 0; j < b.Cols(); j++ {
		dst[j] = b.buf.data[base+j*stride]
	}
}

// SetRowAt overwrites row i (relative to the block) from src.
func (b Block) SetRowAt(i int, src []float64) {
	base, stride := b.rowBase(i), b.RowStride()
	for j := 0; j < b.Cols(); j++ {
		b.buf.data[base+j*stride] = src[j]
	}
}

// SwapRows exchanges rows i and k (relative to the block).
func (b Block) SwapRows(i, k int) {
	base1, base2, stride := b.rowBase(i), b.rowBase(k), b.RowStride()
	for j := 0; j < b.Cols(); j++ {
		b.buf.data[base1+j*stride], b.buf.data[base2+j*stride] =
			b.buf.data[base2+j*stride], b.buf.data[base1+j*stride]
	}
}

// Sub returns the submatrix of b spanning rows [r0, r1) relative to b.
func (b Block) Sub(r0, r1 int) Block {
	return Block{buf: b.buf, colStart: b.colStart, colEnd: b.colEnd, rowStart: b.rowStart + r0, rowEnd: b.rowStart + r1}
}

// SwapRows exchanges rows i and k (relative to the row window) across
// every visible block.
func (v *View) SwapRows(i, k int) {
	if i == k {
		return
	}
	for j := 0; j < v.NumBlocks(); j++ {
		v.Block(j).SwapRows(i, k)
	}
}

// ScaleRow multiplies row i (relative to the row window) by factor
// across every visible block.
func (v *View) ScaleRow(i int, factor float64) {
	for j := 0; j < v.NumBlocks(); j++ {
		v.Block(j).ScaleRow(i, factor)
	}
}

// TotalCols reports the number of columns visible from firstBlock onward.
func (v *View) TotalCols() int {
	if v.offsets == nil {
		return 0
	}
	return v.offsets[len(v.offsets)-1] - v.offsets[v.firstBlock]
}

// ColumnAt returns the absolute (across all visible blocks) column c as
// a contiguous slice over the current row window.
func (v *View) ColumnAt(c int) []float64 {
	off := v.buf.ld*(v.offsets[v.firstBlock]+c) + v.rowStart
	return v.buf.data[off : off+v.Rows()]
}

// RowSnapshot copies row i (relative to the row window) across every
// visible block into a single flat slice, ordered by absolute column.
func (v *View) RowSnapshot(i int) []float64 {
	out := make([]float64, v.TotalCols())
	base := v.rowStart + i
	for c := range out {
		out[c] = v.buf.data[v.buf.ld*(v.offsets[v.firstBlock]+c)+base]
	}
	return out
}

// SetRowSnapshot overwrites row i (relative to the row window) across
// every visible block from a flat slice produced by RowSnapshot.
func (v *View) SetRowSnapshot(i int, data []float64) {
	base := v.rowStart + i
	for c, val := range data {
		v.buf.data[v.buf.ld*(v.offsets[v.firstBlock]+c)+base] = val
	}
}

// Sub returns a new View sharing this View's buffer and block offsets
// but windowed to [rowStart, rowEnd) and firstBlock — a borrowed,
// non-owning view used to hand a slice of a factor's matrix to a
// constructor that will copy it (e.g. Conditional's).
func (v *View) Sub(rowStart, rowEnd, firstBlock int) *View {
	return &View{buf: v.buf, offsets: v.offsets, rowStart: rowStart, rowEnd: rowEnd, firstBlock: firstBlock}
}

// BlockOfColumn returns the visible block index owning absolute column c
// and the column's local index within that block.
func (v *View) BlockOfColumn(c int) (block, local int) {
	abs := v.offsets[v.firstBlock] + c
	for j := v.firstBlock; j < len(v.offsets)-1; j++ {
		if abs < v.offsets[j+1] {
			return j - v.firstBlock, abs - v.offsets[j]
		}
	}
	panic("blockmatrix: column out of range")
}
