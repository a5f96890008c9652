// SPDX-License-Identifier: MIT

// Package rng provides the deterministic random number generator used by
// every randomised component of vroute.
//
// Goals:
//   - Determinism: same seed ⇒ identical streams across platforms and Go
//     versions. The generator is implemented here rather than delegated to
//     math/rand so that its output can never change underneath us.
//   - Encapsulation: a single generator type; no time-based sources hidden
//     anywhere.
//   - Performance: Next is a handful of shifts and rotates, no allocations.
//
// The generator is xoshiro128** (Blackman & Vigna): four uint32 words of
// state, period 2¹²⁸−1. The all-zero state is invalid and is remapped to a
// fixed default seed.
//
// Concurrency: a *Generator is NOT goroutine-safe. Create one per worker.
package rng
