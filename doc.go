// SPDX-License-Identifier: MIT

// Package vroute is an in-memory local-search engine for rich Vehicle
// Routing Problems — multi-depot, multi-trip, heterogeneous fleets,
// time windows, optional prize-collecting clients and client groups.
//
// 🚀 What is vroute?
//
//	A deterministic, seed-reproducible solver core that brings together:
//		• Problem modelling: clients, depots, vehicle types, routing profiles
//		• Exact move pricing: associative load & duration segment algebra
//		• Node operators: (N,M)-exchange, tail swaps, reload-depot relocation
//		• Route operators: SWAP*, whole-route swaps
//		• Granular neighbourhoods: proximity-ranked candidate lists
//		• Penalised costs: load, distance and time-warp violations priced in
//		• Perturbation: ruin-and-recreate kicks between descent runs
//
// ✨ Why choose vroute?
//
//   - Deterministic – same seed, same instance, same answer, every time
//   - Exact deltas – every move is priced in integer arithmetic, no repricing
//   - Pure Go – no cgo, no solver binaries to ship
//   - Composable – pick operators and neighbourhood options per instance
//
// Under the hood, everything is organized under flat subpackages:
//
//	measure/  — integer measure types & dense square matrices
//	rng/      — xoshiro128** generator with seed expansion
//	bitset/   — dynamic bitsets for promising-client tracking
//	segment/  — load & duration segment algebra
//	problem/  — immutable problem instances with staged validation
//	solution/ — immutable solutions, routes and trips with statistics
//	cost/     — penalised cost evaluation
//	search/   — the local-search driver, operators and working state
//
// Quick ASCII example:
//
//	    D───1───2
//	    │       │
//	    4───────3
//
//	represents one vehicle leaving depot D, serving clients 1..4 and
//	returning — the tour the search engine improves move by move.
//
// Dive into the package docs for the operator catalogue and the segment
// merge contracts that make exact move pricing possible.
//
//	go get github.com/katalvlaran/vroute
package vroute
