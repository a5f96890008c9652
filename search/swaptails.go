// SPDX-License-Identifier: MIT

package search

import (
	"github.com/katalvlaran/vroute/cost"
	"github.com/katalvlaran/vroute/measure"
	"github.com/katalvlaran/vroute/problem"
)

// SwapTails exchanges the tails of two routes: everything after U moves
// to after V and vice versa. With one of the tails empty this splits or
// merges routes, which makes it the main driver of fleet-size changes.
type SwapTails struct {
	stats OperatorStatistics
}

// NewSwapTails returns the tail-swap operator.
func NewSwapTails() *SwapTails { return &SwapTails{} }

// Init implements NodeOperator.
func (o *SwapTails) Init() {}

// Statistics implements NodeOperator.
func (o *SwapTails) Statistics() OperatorStatistics { return o.stats }

// Supports implements NodeOperator: tail swaps need at least two
// vehicles.
func (o *SwapTails) Supports(data *problem.Data) bool { return data.NumVehicles() > 1 }

// reloadsUpTo returns the number of reload depots at positions ≤ i.
func reloadsUpTo(r *Route, i int) int {
	n := r.nodes[i].trip
	if r.nodes[i].kind == kindReloadDepot {
		n++
	}

	return n
}

// tailJointOK reports whether appending src's interior tail from
// tailStart after head position headEnd of dst produces a well-shaped
// route.
func tailJointOK(dst *Route, headEnd int, src *Route, tailStart int) bool {
	head := dst.nodes[headEnd]
	if tailStart > src.last()-1 {
		// Empty tail: the head may not end in a reload depot.
		return head.kind != kindReloadDepot
	}
	first := src.nodes[tailStart]
	if first.kind == kindReloadDepot && head.kind != kindClient {
		return false
	}
	if head.kind == kindReloadDepot && first.kind != kindClient {
		return false
	}

	return true
}

// Evaluate implements NodeOperator.
func (o *SwapTails) Evaluate(u, v *Node, ev *cost.Evaluator) measure.Cost {
	o.stats.NumEvaluations++
	ru, rv := u.Route(), v.Route()
	if ru == nil || rv == nil || ru == rv {
		return 0
	}
	if u.IsEndDepot() || v.IsEndDepot() {
		return 0
	}
	tailUEmpty := u.Idx() >= ru.last()-1
	tailVEmpty := v.Idx() >= rv.last()-1
	if tailUEmpty && tailVEmpty {
		return 0
	}
	if !tailJointOK(ru, u.Idx(), rv, v.Idx()+1) || !tailJointOK(rv, v.Idx(), ru, u.Idx()+1) {
		return 0
	}

	reloadsU := reloadsUpTo(ru, u.Idx()) + rv.numReloads - reloadsUpTo(rv, v.Idx())
	reloadsV := reloadsUpTo(rv, v.Idx()) + ru.numReloads - reloadsUpTo(ru, u.Idx())
	if reloadsU > ru.vt.MaxReloads || reloadsV > rv.vt.MaxReloads {
		return 0
	}

	candU := o.candidate(ru, u.Idx(), rv, v.Idx()+1)
	candV := o.candidate(rv, v.Idx(), ru, u.Idx()+1)

	delta := measure.AddCost(ru.sliceCost(ev, candU), -ru.currentCost(ev))
	delta = measure.AddCost(delta, measure.AddCost(rv.sliceCost(ev, candV), -rv.currentCost(ev)))

	newUEmpty := u.Idx() == 0 && tailVEmpty
	newVEmpty := v.Idx() == 0 && tailUEmpty
	if newUEmpty && !ru.Empty() {
		delta = measure.AddCost(delta, -ru.vt.FixedCost)
	}
	if !newUEmpty && ru.Empty() {
		delta = measure.AddCost(delta, ru.vt.FixedCost)
	}
	if newVEmpty && !rv.Empty() {
		delta = measure.AddCost(delta, -rv.vt.FixedCost)
	}
	if !newVEmpty && rv.Empty() {
		delta = measure.AddCost(delta, rv.vt.FixedCost)
	}

	return delta
}

// candidate builds dst's head up to headEnd followed by src's interior
// tail from tailStart and dst's own end depot.
func (o *SwapTails) candidate(dst *Route, headEnd int, src *Route, tailStart int) seg {
	head := dst.prefix(headEnd)
	if tailStart > src.last()-1 {
		return dst.mergeSeg(head, dst.endSeg())
	}
	tail := dst.tailVia(src, tailStart, src.last()-1)

	return dst.mergeSeg(dst.mergeSeg(head, tail), dst.endSeg())
}

// Apply implements NodeOperator.
func (o *SwapTails) Apply(u, v *Node) {
	o.stats.NumApplications++
	ru, rv := u.Route(), v.Route()

	tailU := detachTail(ru, u.Idx()+1)
	tailV := detachTail(rv, v.Idx()+1)
	var i int
	for i = 0; i < len(tailV); i++ {
		ru.Insert(u.Idx()+1+i, tailV[i])
	}
	for i = 0; i < len(tailU); i++ {
		rv.Insert(v.Idx()+1+i, tailU[i])
	}
}

// detachTail removes and returns the interior nodes from position start
// on, in order.
func detachTail(r *Route, start int) []*Node {
	var tail []*Node
	for start < r.last() {
		tail = append(tail, r.Remove(start))
	}

	return tail
}
