// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noisemodel

import "errors"

// ErrNonPositiveSigma is returned when a Diagonal model is constructed
// with a sigma <= 0 (or NaN); use Constrained for hard-equality rows.
var ErrNonPositiveSigma = errors.New("noisemodel: sigma must be positive")

// ErrNegativeSigma is returned when a Constrained model is given a
// negative sigma (zero is the only allowed hard-constraint value).
var ErrNegativeSigma = errors.New("noisemodel: sigma must be non-negative")

// ErrDimensionMismatch is returned when an operation receives a vector
// or matrix whose row count disagrees with the model's dimension.
var ErrDimensionMismatch = errors.New("noisemodel: dimension mismatch")
