// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaussian

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// VectorValues maps a variable index to its dense value vector, used
// only as the input/output of the arithmetic operations on factors.
type VectorValues struct {
	data map[int][]float64
}

// NewVectorValues returns an empty VectorValues.
func NewVectorValues() VectorValues {
	return VectorValues{data: make(map[int][]float64)}
}

// Set stores (or replaces) the vector for key.
func (v VectorValues) Set(key int, vec []float64) {
	v.data[key] = append([]float64(nil), vec...)
}

// At returns the vector stored for key, or an error wrapping
// ErrInvalidKey if absent.
func (v VectorValues) At(key int) ([]float64, error) {
	vec, ok := v.data[key]
	if !ok {
		return nil, fmt.Errorf("VectorValues.At(%d): %w", key, ErrInvalidKey)
	}
	return vec, nil
}

// Has reports whether key is present.
func (v VectorValues) Has(key int) bool {
	_, ok := v.data[key]
	return ok
}

// Dim returns the dimension of key's vector.
func (v VectorValues) Dim(key int) (int, bool) {
	vec, ok := v.data[key]
	if !ok {
		return 0, false
	}
	return len(vec), true
}

// Keys returns the set of keys present, in ascending order.
func (v VectorValues) Keys() []int {
	keys := make([]int, 0, len(v.data))
	for k := range v.data {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// ZeroLike returns a VectorValues with the same keys and dimensions as
// v, all zero.
func (v VectorValues) ZeroLike() VectorValues {
	out := NewVectorValues()
	for k, vec := range v.data {
		out.data[k] = make([]float64, len(vec))
	}
	return out
}

// MakeZero constructs a VectorValues of zero vectors from a key→dim map.
func MakeZero(dims map[int]int) VectorValues {
	out := NewVectorValues()
	for k, d := range dims {
		out.data[k] = make([]float64, d)
	}
	return out
}

// SameStructure reports whether v and other share the same keys, each
// with matching dimension.
func (v VectorValues) SameStructure(other VectorValues) bool {
	if len(v.data) != len(other.data) {
		return false
	}
	for k, vec := range v.data {
		ov, ok := other.data[k]
		if !ok || len(ov) != len(vec) {
			return false
		}
	}
	return true
}

// Axpy computes v[key] += alpha*other[key] for every key of other,
// requiring v already hold a same-length vector for that key.
func (v VectorValues) Axpy(alpha float64, other VectorValues) error {
	for k, ov := range other.data {
		dst, ok := v.data[k]
		if !ok {
			return fmt.Errorf("Axpy(%d): %w", k, ErrInvalidKey)
		}
		if len(dst) != len(ov) {
			return fmt.Errorf("Axpy(%d): %w", k, ErrDimensionMismatch)
		}
		floats.AddScaled(dst, alpha, ov)
	}
	return nil
}

// Permutation is an integer array: p.At(v) looks up where v maps to,
// Inverse() returns the inverse mapping, and Identity(n) builds the
// identity of size n.
type Permutation []int

// Identity returns the identity permutation of size n.
func Identity(n int) Permutation {
	p := make(Permutation, n)
	for i := range p {
		p[i] = i
	}
	return p
}

// At returns the image of v under the permutation.
func (p Permutation) At(v int) int { return p[v] }

// Inverse returns the inverse permutation.
func (p Permutation) Inverse() Permutation {
	inv := make(Permutation, len(p))
	for i, v := range p {
		inv[v] = i
	}
	return inv
}
