// SPDX-License-Identifier: MIT

// Package solution defines immutable solutions: an assignment of clients
// to vehicle routes, each route a sequence of trips separated by reload
// depots.
//
// A Route's statistics (distance, duration, time warp, excess load, wait,
// prizes, reload cost) are computed once at construction by folding the
// segment algebra over its visit sequence, and are then plain reads. A
// Solution aggregates its routes and tracks the clients left unassigned.
//
// Solutions are values passed into and out of the search engine; the
// engine mutates its own working copies, never these.
package solution
