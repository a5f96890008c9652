// SPDX-License-Identifier: MIT

package measure

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Matrix is an immutable dense square matrix stored row-major in a single
// backing slice. The zero value is not usable; construct with NewMatrix or
// MatrixFromRows.
//
// Contracts:
//   - At/Row panic on out-of-range indices (programmer error);
//   - the slice returned by Row is a view into the backing store and MUST
//     NOT be mutated by the caller.
//
// Complexity: At is O(1); Row is O(1); MaxEntry is O(n²).
type Matrix[T constraints.Integer] struct {
	data []T
	n    int
}

// NewMatrix returns a zero-filled n×n matrix.
// Returns ErrBadShape when n <= 0.
func NewMatrix[T constraints.Integer](n int) (*Matrix[T], error) {
	if n <= 0 {
		return nil, fmt.Errorf("size %d: %w", n, ErrBadShape)
	}

	return &Matrix[T]{data: make([]T, n*n), n: n}, nil
}

// MatrixFromRows copies rows into a new matrix.
// Returns ErrBadShape on an empty input and ErrNonSquare when any row length
// differs from the number of rows.
func MatrixFromRows[T constraints.Integer](rows [][]T) (*Matrix[T], error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("no rows: %w", ErrBadShape)
	}
	m := &Matrix[T]{data: make([]T, n*n), n: n}
	var i int
	for i = 0; i < n; i++ {
		if len(rows[i]) != n {
			return nil, fmt.Errorf("row %d has %d entries, want %d: %w", i, len(rows[i]), n, ErrNonSquare)
		}
		copy(m.data[i*n:(i+1)*n], rows[i])
	}

	return m, nil
}

// At returns the entry at row i, column j.
func (m *Matrix[T]) At(i, j int) T {
	if i < 0 || i >= m.n || j < 0 || j >= m.n {
		panic(fmt.Sprintf("measure: index (%d,%d) out of range for %d×%d matrix", i, j, m.n, m.n))
	}

	return m.data[i*m.n+j]
}

// Size returns the number of rows (== columns).
func (m *Matrix[T]) Size() int { return m.n }

// Row returns a read-only view of row i. Callers must not mutate it.
func (m *Matrix[T]) Row(i int) []T {
	if i < 0 || i >= m.n {
		panic(fmt.Sprintf("measure: row %d out of range for %d×%d matrix", i, m.n, m.n))
	}

	return m.data[i*m.n : (i+1)*m.n]
}

// MaxEntry returns the largest entry in the matrix.
func (m *Matrix[T]) MaxEntry() T {
	best := m.data[0]
	for _, v := range m.data[1:] {
		if v > best {
			best = v
		}
	}

	return best
}
