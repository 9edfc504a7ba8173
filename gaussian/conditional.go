// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaussian

import (
	"fmt"

	"github.com/curioloop/gaussian/blockmatrix"
	"github.com/curioloop/gaussian/noisemodel"
)

// Conditional is a Gaussian conditional R*x_F = d - S*x_S, the form
// eliminate emits one of per frontal variable. It owns a copy of its
// slice of the parent factor's matrix and sigmas rather than borrowing
// a view, trading a small copy for a conditional that can outlive the
// parent's mutation.
type Conditional struct {
	keys        []int // frontals first (numFrontals of them), then separator keys, both ascending within their group
	numFrontals int
	ab          *blockmatrix.View // [R S | d], rows == sum of frontal dims
	model       *noisemodel.Model
}

// NewConditional builds a Conditional from a key list (frontals first),
// the frontal count, a block-structured window into the parent factor's
// matrix (one block per key), and the matching sigma slice. The window
// is copied rather than retained, so the conditional survives the
// parent's mutation.
func NewConditional(keys []int, numFrontals int, ab *blockmatrix.View, sigmas []float64) (*Conditional, error) {
	if numFrontals < 0 || numFrontals > len(keys) {
		return nil, fmt.Errorf("NewConditional: %w", ErrInvalidArgument)
	}
	if ab.Rows() != len(sigmas) {
		return nil, fmt.Errorf("NewConditional: %w", ErrDimensionMismatch)
	}
	model, err := noisemodel.Constrained(sigmas)
	if err != nil {
		return nil, fmt.Errorf("NewConditional: %w", err)
	}

	dst := &blockmatrix.View{}
	dst.AssignNoalias(ab)
	return &Conditional{keys: append([]int(nil), keys...), numFrontals: numFrontals, ab: dst, model: model}, nil
}

// Keys returns the conditional's keys, frontals first.
func (c *Conditional) Keys() []int { return append([]int(nil), c.keys...) }

// NumFrontals returns how many leading keys are frontal variables.
func (c *Conditional) NumFrontals() int { return c.numFrontals }

// Model returns the conditional's noise model.
func (c *Conditional) Model() *noisemodel.Model { return c.model }

// BayesNetSink is an external back-insertion container;
// implementations accumulate conditionals emitted by eliminate.
type BayesNetSink interface {
	PushBack(c *Conditional)
}

// SimpleBayesNet is a minimal slice-backed BayesNetSink, for callers
// and tests that need no richer container.
type SimpleBayesNet struct {
	Conditionals []*Conditional
}

// PushBack appends c.
func (n *SimpleBayesNet) PushBack(c *Conditional) { n.Conditionals = append(n.Conditionals, c) }

// NewFromConditional converts a Gaussian conditional's [R | d] rows into
// a JacobianFactor's [A | b], copying its sigmas and resetting
// firstNonzeroBlocks to 0.
func NewFromConditional(c *Conditional) (*JacobianFactor, error) {
	m := c.ab.Rows()
	ab := &blockmatrix.View{}
	ab.AssignNoalias(c.ab)
	f := &JacobianFactor{
		keys:               append([]int(nil), c.keys...),
		ab:                 ab,
		firstNonzeroBlocks: make([]int, m),
		model:              c.model,
	}
	if err := f.checkInvariants(); err != nil {
		return nil, err
	}
	return f, nil
}
