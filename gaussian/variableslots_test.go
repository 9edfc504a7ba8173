// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaussian

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildVariableSlotsUnionAndAbsence(t *testing.T) {
	f1, err := NewKAry([]Term{{Key: 2, A: [][]float64{{1}}}}, []float64{1}, unitModel(t, 1))
	require.NoError(t, err)
	f2, err := NewKAry([]Term{{Key: 0, A: [][]float64{{1}}}}, []float64{1}, unitModel(t, 1))
	require.NoError(t, err)

	slots := BuildVariableSlots([]*JacobianFactor{f1, f2})
	assert.Equal(t, []int{0, 2}, slots.OrderedVariables)
	assert.Equal(t, AbsentSlot, slots.Slots[0][0])
	assert.Equal(t, 0, slots.Slots[0][1])
	assert.Equal(t, 0, slots.Slots[2][0])
	assert.Equal(t, AbsentSlot, slots.Slots[2][1])
}
