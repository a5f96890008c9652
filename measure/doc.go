// SPDX-License-Identifier: MIT

// Package measure defines the scalar quantities used across vroute and the
// dense square matrices that hold pairwise distances and durations.
//
// All quantities are distinct int64 types (Cost, Distance, Duration, Load,
// Coordinate). Keeping them distinct makes unit mistakes compile errors
// instead of silent bugs. Arithmetic that may overflow goes through the
// saturating helpers (AddCost, MulCost, ...) which clamp at the Max*
// sentinels rather than wrapping.
//
// The Max* sentinels play the role of "infinity": an edge with
// MaxDistance is unreachable, a solution cost of MaxCost means infeasible.
// Saturation guarantees that sums involving a sentinel stay at the sentinel.
//
// Matrix[T] is an immutable dense square matrix parameterised over the
// element type. Row access returns a shared view, not a copy, so hot loops
// can iterate rows without allocating.
package measure
