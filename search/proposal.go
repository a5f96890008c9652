// SPDX-License-Identifier: MIT

package search

import (
	"github.com/katalvlaran/vroute/cost"
	"github.com/katalvlaran/vroute/measure"
	"github.com/katalvlaran/vroute/segment"
)

// seg is a spliceable view of a stretch of visits: its boundary
// locations, travelled distance, duration segment and per-dimension load
// segments. Operators build candidate routes by merging segs and price
// them with sliceCost, without touching any route.
//
// closes marks a stretch ending in a fresh reload visit; appending it
// closes the running trip.
type seg struct {
	first, last int
	dist        measure.Distance
	dur         segment.DurationSegment
	loads       []segment.LoadSegment
	closes      bool
}

// prefix returns the seg over positions [0, end].
func (r *Route) prefix(end int) seg {
	s := seg{
		first: r.nodes[0].loc,
		last:  r.nodes[end].loc,
		dist:  r.cumDist[end],
		dur:   r.durBefore[end],
		loads: make([]segment.LoadSegment, len(r.loadBefore)),
	}
	var dim int
	for dim = 0; dim < len(r.loadBefore); dim++ {
		s.loads[dim] = r.loadBefore[dim][end]
	}

	return s
}

// suffix returns the seg over positions [start, Size()+1].
func (r *Route) suffix(start int) seg {
	s := seg{
		first: r.nodes[start].loc,
		last:  r.nodes[r.last()].loc,
		dist:  r.cumDist[r.last()] - r.cumDist[start],
		dur:   r.durAfter[start],
		loads: make([]segment.LoadSegment, len(r.loadAfter)),
	}
	var dim int
	for dim = 0; dim < len(r.loadAfter); dim++ {
		s.loads[dim] = r.loadAfter[dim][start]
	}

	return s
}

// slice returns the seg over positions [start, end]; the range must not
// cross a trip boundary.
func (r *Route) slice(start, end int) seg {
	s := seg{
		first: r.nodes[start].loc,
		last:  r.nodes[end].loc,
		dist:  r.DistanceBetween(start, end),
		dur:   r.Between(start, end),
		loads: make([]segment.LoadSegment, len(r.loadAt)),
	}
	var dim int
	for dim = 0; dim < len(r.loadAt); dim++ {
		s.loads[dim] = r.LoadBetween(start, end, dim)
	}

	return s
}

// clientSeg returns the seg of a single client location viewed through
// route r's vehicle.
func (r *Route) clientSeg(loc int) seg {
	c := r.data.Client(loc)
	s := seg{
		first: loc,
		last:  loc,
		dur:   segment.NewDurationSegment(c.ServiceDuration, c.TwEarly, c.TwLate, c.ReleaseTime),
		loads: make([]segment.LoadSegment, r.data.NumLoadDimensions()),
	}
	var dim int
	for dim = 0; dim < len(s.loads); dim++ {
		s.loads[dim] = segment.NewLoadSegment(c.Delivery[dim], c.Pickup[dim])
	}

	return s
}

// reloadSeg returns the seg of a fresh reload visit at the given depot.
func (r *Route) reloadSeg(depot int) seg {
	dep := r.data.Depot(depot)

	return seg{
		first:  depot,
		last:   depot,
		dur:    segment.NewDurationSegment(dep.ServiceDuration, dep.TwEarly, dep.TwLate, 0),
		loads:  make([]segment.LoadSegment, r.data.NumLoadDimensions()),
		closes: true,
	}
}

// segOf rebuilds src's positions [start, end] through r's travel
// matrices, for splicing into a candidate for r. The range must hold
// clients only.
func (r *Route) segOf(src *Route, start, end int) seg {
	s := r.clientSeg(src.nodes[start].loc)
	var i int
	for i = start + 1; i <= end; i++ {
		s = r.mergeSeg(s, r.clientSeg(src.nodes[i].loc))
	}

	return s
}

// nodeSeg returns the seg of a single routed node viewed through route
// r's vehicle. Terminal depot nodes are not supported here.
func (r *Route) nodeSeg(n *Node) seg {
	if n.kind == kindReloadDepot {
		return r.reloadSeg(n.loc)
	}

	return r.clientSeg(n.loc)
}

// endSeg returns the seg of route r's own end depot.
func (r *Route) endSeg() seg {
	dep := r.data.Depot(r.vt.EndDepot)

	return seg{
		first: r.vt.EndDepot,
		last:  r.vt.EndDepot,
		dur: segment.NewDurationSegment(0, dep.TwEarly,
			measure.MinOf(dep.TwLate, r.vt.TwLate), 0),
		loads: make([]segment.LoadSegment, r.data.NumLoadDimensions()),
	}
}

// tailVia rebuilds src's interior positions [start, end] through r's
// travel matrices, folding right to left so that every reload depot
// closes the trip to its right. The result is valid as the right-hand
// part of a candidate for r; append r's endSeg after it.
func (r *Route) tailVia(src *Route, start, end int) seg {
	s := r.nodeSeg(src.nodes[end])
	var i, dim int
	for i = end - 1; i >= start; i-- {
		n := src.nodes[i]
		if n.kind == kindReloadDepot {
			s.dur = s.dur.FinaliseFront()
			for dim = 0; dim < len(s.loads); dim++ {
				s.loads[dim] = s.loads[dim].Finalise(r.vt.Capacity[dim])
			}
		}
		ns := r.nodeSeg(n)
		out := seg{
			first: ns.first,
			last:  s.last,
			dist: measure.AddDistance(
				measure.AddDistance(ns.dist, r.dm.At(ns.last, s.first)), s.dist),
			dur:   segment.MergeDuration(r.tm.At(ns.last, s.first), ns.dur, s.dur),
			loads: make([]segment.LoadSegment, len(s.loads)),
		}
		for dim = 0; dim < len(s.loads); dim++ {
			out.loads[dim] = segment.MergeLoad(ns.loads[dim], s.loads[dim])
		}
		s = out
	}

	return s
}

// mergeSeg connects a and b through route r's travel matrices, a
// immediately before b. A closing b finalises the merged trip.
func (r *Route) mergeSeg(a, b seg) seg {
	out := seg{
		first: a.first,
		last:  b.last,
		dist: measure.AddDistance(
			measure.AddDistance(a.dist, r.dm.At(a.last, b.first)), b.dist),
		dur:   segment.MergeDuration(r.tm.At(a.last, b.first), a.dur, b.dur),
		loads: make([]segment.LoadSegment, len(a.loads)),
	}
	var dim int
	for dim = 0; dim < len(a.loads); dim++ {
		out.loads[dim] = segment.MergeLoad(a.loads[dim], b.loads[dim])
	}
	if b.closes {
		out.dur = out.dur.FinaliseBack()
		for dim = 0; dim < len(out.loads); dim++ {
			out.loads[dim] = out.loads[dim].Finalise(r.vt.Capacity[dim])
		}
	}

	return out
}

// sliceCost prices the variable terms of route r's vehicle running the
// candidate described by s: distance and duration operating cost,
// overtime, and penalties for time warp, excess load and excess distance.
// Fixed vehicle cost, prizes and reload cost are invariant under segment
// rearrangement and are accounted for by the operators directly.
func (r *Route) sliceCost(ev *cost.Evaluator, s seg) measure.Cost {
	c := measure.MulCost(measure.Cost(s.dist), r.vt.UnitDistanceCost)
	if s.dist > r.vt.MaxDistance {
		c = measure.AddCost(c, ev.DistPenalty(s.dist-r.vt.MaxDistance))
	}
	dur := s.dur.Duration()
	c = measure.AddCost(c, measure.MulCost(measure.Cost(dur), r.vt.UnitDurationCost))
	if r.vt.ShiftDuration != measure.MaxDuration {
		if over := dur - r.vt.ShiftDuration; over > 0 {
			c = measure.AddCost(c,
				measure.MulCost(measure.Cost(measure.MinOf(over, r.vt.MaxOvertime)), r.vt.UnitOvertimeCost))
		}
	}
	c = measure.AddCost(c, ev.TwPenalty(s.dur.TimeWarp(r.MaxDuration())))
	var dim int
	for dim = 0; dim < len(s.loads); dim++ {
		c = measure.AddCost(c, ev.LoadPenalty(s.loads[dim].ExcessLoad(r.vt.Capacity[dim]), dim))
	}

	return c
}

// currentCost prices the route as it stands, variable terms only.
func (r *Route) currentCost(ev *cost.Evaluator) measure.Cost {
	return r.sliceCost(ev, r.prefix(r.last()))
}
