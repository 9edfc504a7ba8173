// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaussian

import "errors"

// ErrInvalidKey is returned when a variable index is looked up but is
// absent from the structure being queried (a VectorValues, a factor's
// key list, a VariableSlots table).
var ErrInvalidKey = errors.New("gaussian: invalid key")

// ErrInvalidArgument is returned when a factor's augmented matrix would
// contain a NaN entry, or a constructor is given inconsistent block
// dimensions.
var ErrInvalidArgument = errors.New("gaussian: invalid argument")

// ErrSingular is returned when eliminate(k) would yield rank less than
// the declared frontal dimension.
var ErrSingular = errors.New("gaussian: singular")

// ErrDimensionMismatch is returned when two factors (or a factor and a
// VectorValues) disagree on a shared variable's dimension.
var ErrDimensionMismatch = errors.New("gaussian: dimension mismatch")
