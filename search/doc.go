// SPDX-License-Identifier: MIT

// Package search implements penalised local search over vehicle routes.
//
// The package works on a mutable mirror of a solution: each vehicle slot
// owns a Route of Nodes, and operators propose moves whose exact cost
// delta is computed from cached route segments before anything is touched.
// A move is applied only when its penalised delta is strictly negative, so
// the search walks downhill on the penalised objective and terminates.
//
// Three layers cooperate:
//
//   - Route and Node form the data structure. After every structural change
//     Update rebuilds prefix and suffix caches of the segment algebra, which
//     then answer Before/After/Between queries in constant time.
//   - NodeOperator and RouteOperator implementations (Exchange, SwapTails,
//     RelocateWithDepot, SwapStar, SwapRoutes) evaluate and apply moves.
//   - LocalSearch drives the operators over a SearchSpace of granular
//     neighbourhoods until no improving move remains.
//
// All evaluation is exact: applying a move changes the penalised cost by
// precisely the delta the operator reported.
package search
