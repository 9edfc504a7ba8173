// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaussian

import (
	"fmt"
	"math"
	"sort"

	"github.com/curioloop/gaussian/blockmatrix"
	"github.com/curioloop/gaussian/noisemodel"
	"gonum.org/v1/gonum/mat"
)

// NewFromHessian converts a Gaussian information form 0.5*x^T G x - g^T x
// into an equivalent JacobianFactor A, b with A^T A = G and A^T b = g, by
// a square-root (Cholesky) factorization of G. dims gives each key's
// block width in the same order as keys; G must be sum(dims) square and
// symmetric, g the same length.
//
// rankTol is compared against the magnitude of each diagonal pivot,
// following a pseudo-rank convention: a pivot at or below rankTol marks
// G as rank-deficient from that point on, and the corresponding rows of
// the returned A are left zero rather than extrapolated, producing a
// (correctly) singular factor for eliminate to catch. No pivoted-Cholesky
// fallback is attempted; a rank-deficient Hessian surfaces as
// ErrSingular instead.
func NewFromHessian(keys []int, dims []int, G *mat.SymDense, g []float64, rankTol float64) (*JacobianFactor, error) {
	n := G.SymmetricDim()
	if len(g) != n {
		return nil, fmt.Errorf("NewFromHessian: %w", ErrDimensionMismatch)
	}
	total := 0
	for _, d := range dims {
		total += d
	}
	if total != n || len(dims) != len(keys) {
		return nil, fmt.Errorf("NewFromHessian: %w", ErrDimensionMismatch)
	}

	R, rank := carefulCholesky(G, rankTol)
	d := forwardSolveTranspose(R, g, rank)

	// Sort (key, column-range) pairs ascending by key before laying out
	// blocks: a factor's keys are conventionally stored ascending, and
	// the caller may supply keys in any order.
	order := make([]int, len(keys))
	for i := range order {
		order[i] = i
	}
	colStart := make([]int, len(dims))
	col := 0
	for i, w := range dims {
		colStart[i] = col
		col += w
	}
	sort.Slice(order, func(a, b int) bool { return keys[order[a]] < keys[order[b]] })

	abDims := make([]int, len(dims)+1)
	for i, oi := range order {
		abDims[i] = dims[oi]
	}
	abDims[len(dims)] = 1
	ab := blockmatrix.NewView(abDims, n)

	for i, oi := range order {
		blk := ab.Block(i)
		base := colStart[oi]
		for c := 0; c < blk.Cols(); c++ {
			for r := 0; r < n; r++ {
				blk.Set(r, c, R.At(r, base+c))
			}
		}
	}
	copy(ab.Column(len(dims), 0), d)

	sortedKeys := make([]int, len(order))
	for i, oi := range order {
		sortedKeys[i] = keys[oi]
	}

	f := &JacobianFactor{
		keys:               sortedKeys,
		ab:                 ab,
		firstNonzeroBlocks: make([]int, n),
		model:              noisemodel.Unit(n),
	}
	if err := f.checkInvariants(); err != nil {
		return nil, err
	}
	return f, nil
}

// DefaultRankTolerance returns a careful-Cholesky tolerance convention:
// sqrt(eps) times G's largest diagonal entry, used as the rankTol
// argument to NewFromHessian when the caller has no problem-specific
// tolerance of its own.
func DefaultRankTolerance(G *mat.SymDense) float64 {
	n := G.SymmetricDim()
	maxDiag := 0.0
	for i := 0; i < n; i++ {
		if d := G.At(i, i); d > maxDiag {
			maxDiag = d
		}
	}
	return math.Sqrt(machineEpsilon) * maxDiag
}

// machineEpsilon is the double-precision unit roundoff used to build
// the careful-Cholesky tolerance.
const machineEpsilon = 2.220446049250313e-16

// carefulCholesky attempts gonum's standard Cholesky first (the common,
// well-posed fast path), falling back to a hand-rolled, diagonal-
// threshold outer-product Cholesky when G is not positive definite or
// any squared diagonal of that factor is at or below tol, leaving a row
// of R zero wherever its pivot falls at or below tol. Returns the
// upper-triangular R with G = R^T R (up to the zeroed deficient rows)
// and the detected rank.
func carefulCholesky(G *mat.SymDense, tol float64) (*mat.Dense, int) {
	n := G.SymmetricDim()

	var chol mat.Cholesky
	if chol.Factorize(G) {
		var u mat.TriDense
		chol.UTo(&u)
		fullRank := true
		for k := 0; k < n; k++ {
			if d := u.At(k, k); d*d <= tol {
				fullRank = false
			}
		}
		if fullRank {
			return mat.DenseCopyOf(&u), n
		}
	}

	a := make([][]float64, n)
	for i := range a {
		a[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			a[i][j] = G.At(i, j)
		}
	}

	r := mat.NewDense(n, n, nil)
	rank := 0
	for k := 0; k < n; k++ {
		pivot := a[k][k]
		for p := 0; p < k; p++ {
			pivot -= r.At(p, k) * r.At(p, k)
		}
		if pivot <= tol || math.IsNaN(pivot) {
			continue // leave row k of R zero: rank-deficient from here
		}
		rkk := math.Sqrt(pivot)
		r.Set(k, k, rkk)
		for j := k + 1; j < n; j++ {
			s := a[k][j]
			for p := 0; p < k; p++ {
				s -= r.At(p, k) * r.At(p, j)
			}
			r.Set(k, j, s/rkk)
		}
		rank++
	}
	return r, rank
}

// forwardSolveTranspose solves R^T d = g for d, R upper triangular of
// order n, by forward substitution. Rows with a zero diagonal (left zero
// by carefulCholesky) leave the corresponding d entries at zero.
func forwardSolveTranspose(R *mat.Dense, g []float64, rank int) []float64 {
	n, _ := R.Dims()
	d := make([]float64, n)
	for i := 0; i < n; i++ {
		rii := R.At(i, i)
		if rii == 0 {
			continue
		}
		sum := g[i]
		for j := 0; j < i; j++ {
			sum -= R.At(j, i) * d[j]
		}
		d[i] = sum / rii
	}
	return d
}
