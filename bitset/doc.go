// SPDX-License-Identifier: MIT

// Package bitset implements a fixed-size dynamic bitset backed by uint64
// words. It is the membership structure used to track "promising" locations
// during neighbourhood search, where Set/Test must be branch-cheap and
// Count must be a handful of popcounts.
//
// Out-of-range indices panic: a bad index is a programmer error, not a
// runtime condition the caller can meaningfully handle.
package bitset
