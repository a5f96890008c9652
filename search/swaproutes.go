// SPDX-License-Identifier: MIT

package search

import (
	"github.com/katalvlaran/vroute/cost"
	"github.com/katalvlaran/vroute/measure"
	"github.com/katalvlaran/vroute/problem"
)

// SwapRoutes exchanges the complete visit plans of two routes. The move
// only pays off when the routes run different vehicle types, so that the
// same visits are priced through different matrices, capacities or cost
// rates.
type SwapRoutes struct {
	stats OperatorStatistics
}

// NewSwapRoutes returns the plan-swap operator.
func NewSwapRoutes() *SwapRoutes { return &SwapRoutes{} }

// Init implements RouteOperator.
func (o *SwapRoutes) Init() {}

// Update implements RouteOperator.
func (o *SwapRoutes) Update(r *Route) {}

// Statistics implements RouteOperator.
func (o *SwapRoutes) Statistics() OperatorStatistics { return o.stats }

// Supports implements RouteOperator: with a single vehicle type the swap
// is a no-op by construction.
func (o *SwapRoutes) Supports(data *problem.Data) bool { return data.NumVehicleTypes() > 1 }

// planFits reports whether src's interior visits are legal for dst's
// vehicle type: every reload visit at a depot dst may reload at, and not
// more reloads or trips than dst allows.
func planFits(dst, src *Route) bool {
	if src.numReloads > dst.vt.MaxReloads || src.NumTrips() > dst.MaxTrips() {
		return false
	}
	var i int
	for i = 1; i < src.last(); i++ {
		n := src.nodes[i]
		if n.kind != kindReloadDepot {
			continue
		}
		if !containsDepot(dst.vt.ReloadDepots, n.loc) {
			return false
		}
	}

	return true
}

func containsDepot(depots []int, loc int) bool {
	for _, d := range depots {
		if d == loc {
			return true
		}
	}

	return false
}

// Evaluate implements RouteOperator.
func (o *SwapRoutes) Evaluate(u, v *Route, ev *cost.Evaluator) measure.Cost {
	o.stats.NumEvaluations++
	if u == v || u.vehType == v.vehType {
		return 0
	}
	if u.Empty() && v.Empty() {
		return 0
	}
	if !planFits(u, v) || !planFits(v, u) {
		return 0
	}

	candU := o.candidate(u, v)
	candV := o.candidate(v, u)

	delta := measure.AddCost(u.sliceCost(ev, candU), -u.currentCost(ev))
	delta = measure.AddCost(delta, measure.AddCost(v.sliceCost(ev, candV), -v.currentCost(ev)))

	if u.Empty() != v.Empty() {
		if u.Empty() {
			delta = measure.AddCost(delta, measure.AddCost(u.vt.FixedCost, -v.vt.FixedCost))
		} else {
			delta = measure.AddCost(delta, measure.AddCost(v.vt.FixedCost, -u.vt.FixedCost))
		}
	}
	return delta
}

// candidate prices dst running src's interior visits between dst's own
// terminal depots.
func (o *SwapRoutes) candidate(dst, src *Route) seg {
	if src.Empty() {
		return dst.mergeSeg(dst.prefix(0), dst.endSeg())
	}

	return dst.mergeSeg(dst.mergeSeg(dst.prefix(0), dst.tailVia(src, 1, src.last()-1)), dst.endSeg())
}

// Apply implements RouteOperator.
func (o *SwapRoutes) Apply(u, v *Route) {
	o.stats.NumApplications++
	tailU := detachTail(u, 1)
	tailV := detachTail(v, 1)
	var i int
	for i = 0; i < len(tailV); i++ {
		u.Insert(1+i, tailV[i])
	}
	for i = 0; i < len(tailU); i++ {
		v.Insert(1+i, tailU[i])
	}
}
