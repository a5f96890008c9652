// SPDX-License-Identifier: MIT

// Package problem defines the immutable instance description consumed by
// the rest of vroute: clients, depots, vehicle types, travel matrices per
// profile, and the client-group side constraints.
//
// Construction goes through New, which validates every cross-reference and
// range invariant once, so that downstream packages can index freely
// without re-checking. After New succeeds the instance never changes; to
// vary an instance, build a new one.
//
// Locations are indexed depots-first: locations [0, NumDepots) are depots,
// [NumDepots, NumLocations) are clients. All matrices are indexed by
// location.
package problem
