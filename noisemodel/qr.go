// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noisemodel

import (
	"math"

	"github.com/curioloop/gaussian/blockmatrix"
)

// householder constructs, as a detached copy of col, the Householder vector that zeroes
// column col of ab below the pivot row, restricted to rows
// [pivot, zeroRow). It returns the vector's scale up and the value the
// pivot element takes on afterward (the new R(pivot,pivot) entry), or
// ok=false if the column is already (numerically) zero in that range —
// the staircase-skip case.
//
// This is the classic two-step Householder construction (Lawson &
// Hanson, "Solving Least Squares Problems", ch. 10, the h1/h2 pair),
// written against blockmatrix.View's column access and bounded by the
// staircase row limit rather than the full matrix height.
func householder(col []float64, pivot, zeroRow int) (v []float64, up float64, ok bool) {
	maxAbs := 0.0
	for i := pivot; i < zeroRow; i++ {
		if a := math.Abs(col[i]); a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs == 0 {
		return nil, 0, false
	}

	sumSq := 0.0
	for i := pivot; i < zeroRow; i++ {
		r := col[i] / maxAbs
		sumSq += r * r
	}
	norm := maxAbs * math.Sqrt(sumSq)
	if col[pivot] > 0 {
		norm = -norm
	}

	v = make([]float64, zeroRow-pivot)
	copy(v, col[pivot:zeroRow])
	up = v[0] - norm
	v[0] = norm
	return v, up, true
}

// applyHouseholder applies the reflector (v, up) built over rows
// [pivot, zeroRow) to column target of ab, following h2's formula
// Qc = c + b^-1 (u^T c) u with b = s*up.
func applyHouseholder(ab *blockmatrix.View, v []float64, up float64, pivot, zeroRow, target int) {
	b := v[0] * up
	if b >= 0 {
		return
	}
	inv := 1 / b
	col := ab.ColumnAt(target)

	sum := col[pivot] * up
	for i := 1; i < len(v); i++ {
		sum += col[pivot+i] * v[i]
	}
	if sum == 0 {
		return
	}
	sum *= inv
	col[pivot] += sum * up
	for i := 1; i < len(v); i++ {
		col[pivot+i] += sum * v[i]
	}
}

// QRColumnWise performs in-place Householder QR on ab restricted by the
// staircase pattern firstZeroRows (one entry per column across all
// visible blocks), interleaving constrained (sigma=0) rows ahead of
// whitened unconstrained ones so hard equalities survive the
// factorization exactly. It returns the noise model for the pivot rows
// [0,rank) (conditionalModel), the noise model for the remaining
// (already-whitened) rows [rank,m) (residualModel), and the effective
// rank r <= m.
//
// No column pivoting is performed: a column with no available nonzero
// within its staircase is skipped rather than swapped forward — the
// caller (eliminate) detects the resulting rank deficiency instead of
// silently reordering variables.
func (m *Model) QRColumnWise(ab *blockmatrix.View, firstZeroRows []int) (conditionalModel, residualModel *Model, rank int) {
	rows := ab.Rows()
	if rows == 0 {
		return Unit(0), Unit(0), 0
	}

	order := m.interleaveConstrained(ab)

	pivot := 0
	cols := ab.TotalCols()
	pivotCols := cols - 1 // trailing column is b; never a pivot candidate
	pivotRowOf := make([]int, pivotCols)
	for i := range pivotRowOf {
		pivotRowOf[i] = rows - 1 // not reached: no row lies below its diagonal
	}
	for col := 0; col < pivotCols && pivot < rows; col++ {
		pivotRowOf[col] = pivot - 1 // skipped: clear from the current pivot row down
		zeroRow := rows
		if col < len(firstZeroRows) {
			zeroRow = min(firstZeroRows[col], rows)
		}
		if zeroRow <= pivot {
			continue
		}
		column := ab.ColumnAt(col)
		if order[pivot] == 0 && column[pivot] != 0 {
			// A hard-constraint pivot row clears the rest of its column by
			// exact elimination, so the constraint row itself is unchanged.
			for i := pivot + 1; i < zeroRow; i++ {
				factor := column[i] / column[pivot]
				for target := col; target < cols; target++ {
					c := ab.ColumnAt(target)
					c[i] -= factor * c[pivot]
				}
			}
			pivotRowOf[col] = pivot
			pivot++
			continue
		}
		v, up, ok := householder(column[:zeroRow], pivot, zeroRow)
		if !ok {
			continue
		}
		// h1/h2 write the reflector's effect on its own pivot column as a
		// side effect of constructing it (the pivot element becomes the
		// vector's first entry in place); here the pivot column is built
		// from a detached copy, so it is re-applied like any other target.
		for target := col; target < cols; target++ {
			applyHouseholder(ab, v, up, pivot, zeroRow, target)
		}
		pivotRowOf[col] = pivot
		pivot++
	}

	rank = pivot
	zeroBelowPivots(ab, pivotRowOf, rank)

	full := &Model{sigmas: order}
	return full.sliceRows(0, rank), full.sliceRows(rank, rows), rank
}

// zeroBelowPivots forces the exact-zero lower-left triangle within rows
// [0, rank) of ab: column c is cleared in rows (pivotRowOf[c], rank).
// pivotRowOf[c] is c's pivot row; for a column that took no pivot it is
// the row just above where its diagonal falls (the pivot row current
// when the column was skipped, minus one, or rows-1 for a column the
// loop never reached), so entries above the diagonal are kept. The
// reflector already drives a pivoted column's entries below its own
// pivot row to (numerically) zero as a side effect, but a skipped
// column gets no reflector of its own; this pass covers both cases
// explicitly rather than relying on floating-point cancellation for the
// common case alone.
func zeroBelowPivots(ab *blockmatrix.View, pivotRowOf []int, rank int) {
	for c, pr := range pivotRowOf {
		start := 0
		if pr >= 0 {
			start = pr + 1
		}
		if start >= rank {
			continue
		}
		column := ab.ColumnAt(c)
		for r := start; r < rank; r++ {
			column[r] = 0
		}
	}
}

// interleaveConstrained physically moves every sigma==0 row of ab ahead
// of the sigma>0 rows (stable within each group), whitening the
// unconstrained rows by 1/sigma in the process, and returns the
// resulting per-row sigma vector (0 for constrained, 1 for whitened
// unconstrained) in the new row order. It works from a full row
// snapshot rather than incremental swaps, since a swap-based reorder
// would need its own pass to keep each row's original sigma attached.
func (m *Model) interleaveConstrained(ab *blockmatrix.View) []float64 {
	rows := ab.Rows()
	snapshots := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		snapshots[i] = ab.RowSnapshot(i)
	}

	newOrder := make([]float64, rows)
	pos := 0
	for i := 0; i < rows; i++ {
		if m.sigmas[i] == 0 {
			ab.SetRowSnapshot(pos, snapshots[i])
			newOrder[pos] = 0
			pos++
		}
	}
	for i := 0; i < rows; i++ {
		if m.sigmas[i] != 0 {
			row := snapshots[i]
			for j := range row {
				row[j] /= m.sigmas[i]
			}
			ab.SetRowSnapshot(pos, row)
			newOrder[pos] = 1
			pos++
		}
	}
	return newOrder
}
