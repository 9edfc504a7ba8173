// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaussian

import "fmt"

// FactorGraph is a collection of JacobianFactors over a shared variable
// space — the free-function operations below sum each factor's
// individual contribution.
type FactorGraph []*JacobianFactor

// Multiply stacks every factor's Multiply result, in factor order, into
// one flat slice — the whitened A*x across the whole graph.
func Multiply(fg FactorGraph, x VectorValues) ([]float64, error) {
	var out []float64
	for i, f := range fg {
		e, err := f.Multiply(x)
		if err != nil {
			return nil, fmt.Errorf("Multiply: factor %d: %w", i, err)
		}
		out = append(out, e...)
	}
	return out, nil
}

// Residual stacks every factor's ErrorVector result, in factor order.
func Residual(fg FactorGraph, x VectorValues) ([]float64, error) {
	var out []float64
	for i, f := range fg {
		e, err := f.ErrorVector(x)
		if err != nil {
			return nil, fmt.Errorf("Residual: factor %d: %w", i, err)
		}
		out = append(out, e...)
	}
	return out, nil
}

// Error sums 0.5*||error(x)||^2 over every factor in fg.
func Error(fg FactorGraph, x VectorValues) (float64, error) {
	total := 0.0
	for i, f := range fg {
		e, err := f.Error(x)
		if err != nil {
			return 0, fmt.Errorf("Error: factor %d: %w", i, err)
		}
		total += e
	}
	return total, nil
}

// TransposeMultiplyAdd accumulates alpha * A^T * W^-1 * e into x across
// every factor of fg, given e already split per factor (in factor
// order, one unwhitened residual slice of length f.Rows() per factor —
// each factor's own Model.Whiten is applied internally).
func TransposeMultiplyAdd(fg FactorGraph, alpha float64, e [][]float64, x VectorValues) error {
	if len(e) != len(fg) {
		return fmt.Errorf("TransposeMultiplyAdd: %w", ErrDimensionMismatch)
	}
	for i, f := range fg {
		if err := f.TransposeMultiplyAdd(alpha, e[i], x); err != nil {
			return fmt.Errorf("TransposeMultiplyAdd: factor %d: %w", i, err)
		}
	}
	return nil
}

// Gradient computes the whitened-least-squares gradient A^T * W^-1 * (A*x - b)
// at x, accumulated across every factor of fg into a zero-initialized
// VectorValues matching dims.
func Gradient(fg FactorGraph, x VectorValues, dims map[int]int) (VectorValues, error) {
	g := MakeZero(dims)
	for i, f := range fg {
		e, err := f.UnweightedError(x)
		if err != nil {
			return VectorValues{}, fmt.Errorf("Gradient: factor %d: %w", i, err)
		}
		if err := f.TransposeMultiplyAdd(1, e, g); err != nil {
			return VectorValues{}, fmt.Errorf("Gradient: factor %d: %w", i, err)
		}
	}
	return g, nil
}

// Dims returns the key→dimension map implied by fg, used to build a
// zero VectorValues of the right shape for Gradient or initial guesses.
func (fg FactorGraph) Dims() map[int]int {
	dims := make(map[int]int)
	for _, f := range fg {
		for j, k := range f.keys {
			dims[k] = f.ab.Block(j).Cols()
		}
	}
	return dims
}
