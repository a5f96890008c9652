// SPDX-License-Identifier: MIT

package search

import (
	"fmt"

	"github.com/katalvlaran/vroute/cost"
	"github.com/katalvlaran/vroute/measure"
	"github.com/katalvlaran/vroute/problem"
)

// Exchange is the (N, M)-exchange family of node operators. With M = 0 it
// relocates the segment of N clients starting at U to directly after V;
// with M ≥ 1 it swaps that segment with the segment of M clients starting
// at V. Segments never contain depots and never cross trip boundaries.
type Exchange struct {
	n, m  int
	stats OperatorStatistics
}

// NewExchange returns an (n, m)-exchange. Supported ranges are 1 ≤ n ≤ 3
// and 0 ≤ m ≤ n; anything else returns an error wrapping
// ErrUnsupportedOperator.
func NewExchange(n, m int) (*Exchange, error) {
	if n < 1 || n > 3 || m < 0 || m > n {
		return nil, fmt.Errorf("(%d, %d)-exchange: %w", n, m, ErrUnsupportedOperator)
	}

	return &Exchange{n: n, m: m}, nil
}

// Init implements NodeOperator. Exchange keeps no per-round state.
func (o *Exchange) Init() {}

// Statistics implements NodeOperator.
func (o *Exchange) Statistics() OperatorStatistics { return o.stats }

// Supports implements NodeOperator: the exchange family applies to every
// instance.
func (o *Exchange) Supports(*problem.Data) bool { return true }

// clientSpan reports whether positions [start, start+count) of r exist
// and hold clients only.
func clientSpan(r *Route, start, count int) bool {
	if start < 1 || start+count > r.last() {
		return false
	}
	var i int
	for i = start; i < start+count; i++ {
		if r.nodes[i].kind != kindClient {
			return false
		}
	}

	return true
}

// Evaluate implements NodeOperator.
func (o *Exchange) Evaluate(u, v *Node, ev *cost.Evaluator) measure.Cost {
	o.stats.NumEvaluations++
	ru, rv := u.Route(), v.Route()
	if ru == nil || rv == nil || !clientSpan(ru, u.Idx(), o.n) {
		return 0
	}
	if o.m == 0 {
		return o.evalRelocate(u, v, ev)
	}

	return o.evalSwap(u, v, ev)
}

func (o *Exchange) evalRelocate(u, v *Node, ev *cost.Evaluator) measure.Cost {
	ru, rv := u.Route(), v.Route()
	if v.IsEndDepot() {
		return 0
	}
	if ru == rv {
		if v.Idx() >= u.Idx()-1 && v.Idx() <= u.Idx()+o.n-1 {
			return 0 // inside the segment, or already in place
		}
		if v.IsReloadDepot() || u.Trip() != v.Trip() {
			return 0
		}
		var cand seg
		if v.Idx() < u.Idx() {
			cand = ru.mergeSeg(ru.prefix(v.Idx()), ru.slice(u.Idx(), u.Idx()+o.n-1))
			cand = ru.mergeSeg(cand, ru.slice(v.Idx()+1, u.Idx()-1))
			cand = ru.mergeSeg(cand, ru.suffix(u.Idx()+o.n))
		} else {
			cand = ru.mergeSeg(ru.prefix(u.Idx()-1), ru.slice(u.Idx()+o.n, v.Idx()))
			cand = ru.mergeSeg(cand, ru.slice(u.Idx(), u.Idx()+o.n-1))
			cand = ru.mergeSeg(cand, ru.suffix(v.Idx()+1))
		}

		return measure.AddCost(ru.sliceCost(ev, cand), -ru.currentCost(ev))
	}

	before, after := ru.nodes[u.Idx()-1].kind, ru.nodes[u.Idx()+o.n].kind
	if before != kindClient && after != kindClient && (before == kindReloadDepot || after == kindReloadDepot) {
		return 0 // would strand a reload visit next to a depot
	}

	moved := rv.segOf(ru, u.Idx(), u.Idx()+o.n-1)
	newV := rv.mergeSeg(rv.prefix(v.Idx()), moved)
	newV = rv.mergeSeg(newV, rv.suffix(v.Idx()+1))
	newU := ru.mergeSeg(ru.prefix(u.Idx()-1), ru.suffix(u.Idx()+o.n))

	delta := measure.AddCost(ru.sliceCost(ev, newU), -ru.currentCost(ev))
	delta = measure.AddCost(delta, measure.AddCost(rv.sliceCost(ev, newV), -rv.currentCost(ev)))
	if ru.NumClients() == o.n {
		delta = measure.AddCost(delta, -ru.vt.FixedCost)
	}
	if rv.Empty() {
		delta = measure.AddCost(delta, rv.vt.FixedCost)
	}

	return delta
}

func (o *Exchange) evalSwap(u, v *Node, ev *cost.Evaluator) measure.Cost {
	ru, rv := u.Route(), v.Route()
	if !clientSpan(rv, v.Idx(), o.m) {
		return 0
	}
	if ru != rv {
		movedU := rv.segOf(ru, u.Idx(), u.Idx()+o.n-1)
		movedV := ru.segOf(rv, v.Idx(), v.Idx()+o.m-1)

		newU := ru.mergeSeg(ru.prefix(u.Idx()-1), movedV)
		newU = ru.mergeSeg(newU, ru.suffix(u.Idx()+o.n))
		newV := rv.mergeSeg(rv.prefix(v.Idx()-1), movedU)
		newV = rv.mergeSeg(newV, rv.suffix(v.Idx()+o.m))

		delta := measure.AddCost(ru.sliceCost(ev, newU), -ru.currentCost(ev))

		return measure.AddCost(delta, measure.AddCost(rv.sliceCost(ev, newV), -rv.currentCost(ev)))
	}

	if u.Trip() != v.Trip() {
		return 0
	}
	a, lenA, b, lenB := u.Idx(), o.n, v.Idx(), o.m
	if b < a {
		a, lenA, b, lenB = b, lenB, a, lenA
	}
	if b < a+lenA {
		return 0 // overlapping segments
	}
	if b == a+lenA && o.n != o.m {
		return 0 // adjacent unequal segments degenerate to a relocate
	}

	cand := ru.mergeSeg(ru.prefix(a-1), ru.slice(b, b+lenB-1))
	if b > a+lenA {
		cand = ru.mergeSeg(cand, ru.slice(a+lenA, b-1))
	}
	cand = ru.mergeSeg(cand, ru.slice(a, a+lenA-1))
	cand = ru.mergeSeg(cand, ru.suffix(b+lenB))

	return measure.AddCost(ru.sliceCost(ev, cand), -ru.currentCost(ev))
}

// Apply implements NodeOperator.
func (o *Exchange) Apply(u, v *Node) {
	o.stats.NumApplications++
	ru, rv := u.Route(), v.Route()
	if o.m == 0 {
		moved := make([]*Node, o.n)
		start := u.Idx()
		var i int
		for i = 0; i < o.n; i++ {
			moved[i] = ru.Remove(start)
		}
		pos := v.Idx() + 1
		for i = 0; i < o.n; i++ {
			rv.Insert(pos+i, moved[i])
		}

		return
	}

	if o.n == o.m {
		iu, iv := u.Idx(), v.Idx()
		var i int
		for i = 0; i < o.n; i++ {
			SwapNodes(ru.nodes[iu+i], rv.nodes[iv+i])
		}

		return
	}

	prevU := ru.nodes[u.Idx()-1]
	prevV := rv.nodes[v.Idx()-1]
	movedU := make([]*Node, o.n)
	movedV := make([]*Node, o.m)
	start := u.Idx()
	var i int
	for i = 0; i < o.n; i++ {
		movedU[i] = ru.Remove(start)
	}
	start = v.Idx()
	for i = 0; i < o.m; i++ {
		movedV[i] = rv.Remove(start)
	}
	for i = 0; i < o.m; i++ {
		ru.Insert(prevU.Idx()+1+i, movedV[i])
	}
	for i = 0; i < o.n; i++ {
		rv.Insert(prevV.Idx()+1+i, movedU[i])
	}
}
