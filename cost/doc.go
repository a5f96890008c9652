// SPDX-License-Identifier: MIT

// Package cost evaluates routes and solutions under a penalised objective.
//
// The Evaluator carries the penalty rates that price infeasibility: excess
// load per dimension, time warp, and excess distance. During search these
// rates let infeasible intermediate solutions compete on one scale with
// feasible ones; PenalisedCost is therefore always finite. SolutionCost is
// the exact objective and is measure.MaxCost for anything infeasible or
// incomplete.
//
// All arithmetic saturates, so a route carrying a measure.Max* sentinel
// stays pinned at MaxCost instead of wrapping.
package cost
