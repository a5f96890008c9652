// SPDX-License-Identifier: MIT

package search

import (
	"github.com/katalvlaran/vroute/cost"
	"github.com/katalvlaran/vroute/measure"
	"github.com/katalvlaran/vroute/problem"
)

// insertPoint is one candidate insertion of a client into a route: the
// node to insert after and the exact cost delta of doing so in the route
// as cached.
type insertPoint struct {
	delta  measure.Cost
	anchor *Node
}

// insertCache memoises the three cheapest insertion points of one client
// into one route. gen ties the entry to the route's update generation.
type insertCache struct {
	gen    int
	points [3]insertPoint
	n      int
}

// SwapStar exchanges one client between two routes, re-inserting each at
// its best position in the other route rather than in the vacated slot.
// Insertion positions are memoised per (route, client) and refreshed when
// the route changes.
//
// Routes with reload depots are left to the node operators; SwapStar
// skips them.
type SwapStar struct {
	overlapTolerance float64
	stats            OperatorStatistics

	gens  []int
	cache [][]insertCache

	// Move found by the last Evaluate, replayed by Apply.
	bestU, bestV           *Node
	bestAnchorU, bestAnchorV *Node
}

// NewSwapStar returns the operator. overlapTolerance widens the angular
// route-sector overlap test, as a fraction of the full circle; pairs of
// routes whose sectors do not overlap are skipped.
func NewSwapStar(overlapTolerance float64) *SwapStar {
	return &SwapStar{overlapTolerance: overlapTolerance}
}

// Init implements RouteOperator: drops all memoised insertion points.
func (o *SwapStar) Init() {
	var i int
	for i = 0; i < len(o.gens); i++ {
		o.gens[i]++
	}
}

// Update implements RouteOperator.
func (o *SwapStar) Update(r *Route) {
	o.ensure(r.Idx(), r.data)
	o.gens[r.Idx()]++
}

// Statistics implements RouteOperator.
func (o *SwapStar) Statistics() OperatorStatistics { return o.stats }

// Supports implements RouteOperator: swapping between routes needs at
// least two vehicles.
func (o *SwapStar) Supports(data *problem.Data) bool { return data.NumVehicles() > 1 }

func (o *SwapStar) ensure(routeIdx int, data *problem.Data) {
	for len(o.gens) <= routeIdx {
		o.gens = append(o.gens, 1)
		o.cache = append(o.cache, make([]insertCache, data.NumLocations()))
	}
}

// removeInsertCost prices removing the client at position rem of r and
// inserting location loc after position p instead. With loc < 0 only the
// removal is priced. Exact.
func removeInsertCost(r *Route, ev *cost.Evaluator, rem, p, loc int) measure.Cost {
	var cand seg
	switch {
	case loc < 0:
		cand = r.mergeSeg(r.prefix(rem-1), r.suffix(rem+1))
	case p < rem:
		cand = r.mergeSeg(r.prefix(p), r.clientSeg(loc))
		if p+1 <= rem-1 {
			cand = r.mergeSeg(cand, r.slice(p+1, rem-1))
		}
		cand = r.mergeSeg(cand, r.suffix(rem+1))
	default: // p >= rem+1
		cand = r.prefix(rem - 1)
		if rem+1 <= p {
			cand = r.mergeSeg(cand, r.slice(rem+1, p))
		}
		cand = r.mergeSeg(cand, r.clientSeg(loc))
		cand = r.mergeSeg(cand, r.suffix(p+1))
	}

	return measure.AddCost(r.sliceCost(ev, cand), -r.currentCost(ev))
}

// topInserts returns the memoised cheapest insertion points of loc into
// r, recomputing them when the route changed.
func (o *SwapStar) topInserts(loc int, r *Route, ev *cost.Evaluator) *insertCache {
	o.ensure(r.Idx(), r.data)
	c := &o.cache[r.Idx()][loc]
	if c.gen == o.gens[r.Idx()] {
		return c
	}
	c.gen = o.gens[r.Idx()]
	c.n = 0

	var p int
	for p = 0; p < r.last(); p++ {
		cand := r.mergeSeg(r.mergeSeg(r.prefix(p), r.clientSeg(loc)), r.suffix(p+1))
		delta := measure.AddCost(r.sliceCost(ev, cand), -r.currentCost(ev))
		o.offer(c, insertPoint{delta: delta, anchor: r.nodes[p]})
	}

	return c
}

// offer keeps the three cheapest points in sorted order.
func (o *SwapStar) offer(c *insertCache, pt insertPoint) {
	if c.n < len(c.points) {
		c.points[c.n] = pt
		c.n++
	} else if pt.delta >= c.points[c.n-1].delta {
		return
	} else {
		c.points[c.n-1] = pt
	}
	var i int
	for i = c.n - 1; i > 0 && c.points[i].delta < c.points[i-1].delta; i-- {
		c.points[i], c.points[i-1] = c.points[i-1], c.points[i]
	}
}

// bestPosition picks the exact cheapest way to insert loc into r once the
// client at position rem is gone: the memoised points that survive the
// removal, plus the vacated slot itself.
func (o *SwapStar) bestPosition(loc int, r *Route, rem int, ev *cost.Evaluator) (*Node, measure.Cost) {
	removal := removeInsertCost(r, ev, rem, 0, -1)

	bestAnchor := r.nodes[rem-1]
	best := measure.AddCost(removeInsertCost(r, ev, rem, rem-1, loc), -removal)

	c := o.topInserts(loc, r, ev)
	var i int
	for i = 0; i < c.n; i++ {
		anchor := c.points[i].anchor
		if anchor.Route() != r || anchor.Idx() == rem || anchor.Idx() == rem-1 {
			continue
		}
		d := measure.AddCost(removeInsertCost(r, ev, rem, anchor.Idx(), loc), -removal)
		if d < best {
			best, bestAnchor = d, anchor
		}
	}

	return bestAnchor, measure.AddCost(removal, best)
}

// Evaluate implements RouteOperator: the best simultaneous exchange of
// one client of u against one client of v, exactly priced.
func (o *SwapStar) Evaluate(u, v *Route, ev *cost.Evaluator) measure.Cost {
	o.stats.NumEvaluations++
	if u == v || u.Empty() || v.Empty() {
		return 0
	}
	if u.numReloads > 0 || v.numReloads > 0 {
		return 0
	}
	if !u.OverlapsWith(v, o.overlapTolerance) {
		return 0
	}

	best := measure.Cost(0)
	found := false
	var iu, iv int
	for iu = 1; iu < u.last(); iu++ {
		for iv = 1; iv < v.last(); iv++ {
			nu, nv := u.nodes[iu], v.nodes[iv]
			anchorU, deltaU := o.bestPosition(nv.Client(), u, iu, ev)
			anchorV, deltaV := o.bestPosition(nu.Client(), v, iv, ev)
			delta := measure.AddCost(deltaU, deltaV)
			if delta < best {
				best, found = delta, true
				o.bestU, o.bestV = nu, nv
				o.bestAnchorU, o.bestAnchorV = anchorU, anchorV
			}
		}
	}
	if !found {
		return 0
	}

	return best
}

// Apply implements RouteOperator.
func (o *SwapStar) Apply(u, v *Route) {
	o.stats.NumApplications++
	nu := u.Remove(o.bestU.Idx())
	nv := v.Remove(o.bestV.Idx())
	u.Insert(o.bestAnchorU.Idx()+1, nv)
	v.Insert(o.bestAnchorV.Idx()+1, nu)
}
