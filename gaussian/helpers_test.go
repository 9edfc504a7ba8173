// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaussian

import (
	"testing"

	"github.com/curioloop/gaussian/noisemodel"
	"github.com/stretchr/testify/require"
)

func mustConstrained(t *testing.T, sigmas []float64) *noisemodel.Model {
	t.Helper()
	model, err := noisemodel.Constrained(sigmas)
	require.NoError(t, err)
	return model
}
