// SPDX-License-Identifier: MIT
// Package measure: sentinel error set.
// Construction-time validation returns these sentinels; callers match them
// via errors.Is. Indexing past bounds on a valid matrix is a programmer
// error and panics.

package measure

import "errors"

var (
	// ErrBadShape is returned when a requested matrix size is not positive.
	ErrBadShape = errors.New("measure: invalid shape")

	// ErrNonSquare is returned by MatrixFromRows when the row lengths do not
	// all equal the number of rows.
	ErrNonSquare = errors.New("measure: matrix is not square")
)
