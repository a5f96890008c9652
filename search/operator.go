// SPDX-License-Identifier: MIT

package search

import (
	"github.com/katalvlaran/vroute/cost"
	"github.com/katalvlaran/vroute/measure"
	"github.com/katalvlaran/vroute/problem"
)

// OperatorStatistics counts the work an operator has done over its
// lifetime.
type OperatorStatistics struct {
	NumEvaluations  int
	NumApplications int
}

// NodeOperator proposes moves around a pair of nodes.
//
// Contract: Evaluate is exact. Applying the move it priced changes the
// penalised cost of the touched routes by precisely the returned delta. A
// non-negative return means no move. Apply must follow an Evaluate of the
// same pair with no mutation in between; the caller refreshes the
// affected routes afterwards.
type NodeOperator interface {
	Evaluate(u, v *Node, ev *cost.Evaluator) measure.Cost
	Apply(u, v *Node)

	// Init resets per-round state before a search pass.
	Init()

	Statistics() OperatorStatistics

	// Supports reports whether the operator can do anything useful on
	// the instance.
	Supports(data *problem.Data) bool
}

// RouteOperator proposes moves around a pair of routes. Same contract as
// NodeOperator; Update additionally tells the operator a route changed so
// it can refresh cached state.
type RouteOperator interface {
	Evaluate(u, v *Route, ev *cost.Evaluator) measure.Cost
	Apply(u, v *Route)
	Init()
	Update(r *Route)
	Statistics() OperatorStatistics
	Supports(data *problem.Data) bool
}
