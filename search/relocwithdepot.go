// SPDX-License-Identifier: MIT

package search

import (
	"github.com/katalvlaran/vroute/cost"
	"github.com/katalvlaran/vroute/measure"
	"github.com/katalvlaran/vroute/problem"
)

// RelocateWithDepot moves client U to directly after V and opens a new
// trip there by inserting a reload depot either before or after U. It is
// the move that grows multi-trip routes; plain exchanges never add
// reload visits.
type RelocateWithDepot struct {
	stats OperatorStatistics

	// Move found by the last Evaluate, replayed by Apply.
	bestDepot  int
	depotAfter bool
}

// NewRelocateWithDepot returns the reload-insertion operator.
func NewRelocateWithDepot() *RelocateWithDepot { return &RelocateWithDepot{} }

// Init implements NodeOperator.
func (o *RelocateWithDepot) Init() {}

// Statistics implements NodeOperator.
func (o *RelocateWithDepot) Statistics() OperatorStatistics { return o.stats }

// Supports implements NodeOperator: useful only when some vehicle type
// can reload.
func (o *RelocateWithDepot) Supports(data *problem.Data) bool {
	var vt int
	for vt = 0; vt < data.NumVehicleTypes(); vt++ {
		if len(data.VehicleType(vt).ReloadDepots) > 0 && data.VehicleType(vt).MaxReloads > 0 {
			return true
		}
	}

	return false
}

// Evaluate implements NodeOperator.
func (o *RelocateWithDepot) Evaluate(u, v *Node, ev *cost.Evaluator) measure.Cost {
	o.stats.NumEvaluations++
	ru, rv := u.Route(), v.Route()
	if ru == nil || rv == nil || !u.IsClient() || v.IsEndDepot() {
		return 0
	}
	if len(rv.vt.ReloadDepots) == 0 || rv.numReloads+1 > rv.vt.MaxReloads {
		return 0
	}
	if ru == rv {
		if v.Idx() == u.Idx() || v.IsReloadDepot() || u.Trip() != v.Trip() {
			return 0
		}
	}

	// Depot-before-U needs a client directly before the new depot;
	// depot-after-U needs one directly after U.
	prevKind := rv.nodes[v.Idx()].kind
	nextKind := rv.nodes[v.Idx()+1].kind
	if ru == rv && v.Idx()+1 == u.Idx() {
		nextKind = rv.nodes[u.Idx()+1].kind
	}
	beforeOK := prevKind == kindClient
	afterOK := nextKind == kindClient

	best := measure.Cost(0)
	found := false
	for _, depot := range rv.vt.ReloadDepots {
		if beforeOK {
			if d := o.evalVariant(u, v, ev, depot, false); d < best {
				best, found = d, true
				o.bestDepot, o.depotAfter = depot, false
			}
		}
		if afterOK {
			if d := o.evalVariant(u, v, ev, depot, true); d < best {
				best, found = d, true
				o.bestDepot, o.depotAfter = depot, true
			}
		}
	}
	if !found {
		return 0
	}

	return best
}

// evalVariant prices one (depot, placement) choice.
func (o *RelocateWithDepot) evalVariant(u, v *Node, ev *cost.Evaluator, depot int, after bool) measure.Cost {
	ru, rv := u.Route(), v.Route()
	reload := rv.reloadSeg(depot)
	client := rv.clientSeg(u.Client())

	var delta measure.Cost
	if ru == rv {
		var cand seg
		if v.Idx() < u.Idx() {
			cand = rv.prefix(v.Idx())
			cand = appendPair(rv, cand, client, reload, after)
			if v.Idx()+1 <= u.Idx()-1 {
				cand = rv.mergeSeg(cand, rv.slice(v.Idx()+1, u.Idx()-1))
			}
			cand = rv.mergeSeg(cand, rv.suffix(u.Idx()+1))
		} else {
			cand = rv.prefix(u.Idx() - 1)
			if u.Idx()+1 <= v.Idx() {
				cand = rv.mergeSeg(cand, rv.slice(u.Idx()+1, v.Idx()))
			}
			cand = appendPair(rv, cand, client, reload, after)
			cand = rv.mergeSeg(cand, rv.suffix(v.Idx()+1))
		}
		delta = measure.AddCost(rv.sliceCost(ev, cand), -rv.currentCost(ev))
	} else {
		newU := ru.mergeSeg(ru.prefix(u.Idx()-1), ru.suffix(u.Idx()+1))
		newV := appendPair(rv, rv.prefix(v.Idx()), client, reload, after)
		newV = rv.mergeSeg(newV, rv.suffix(v.Idx()+1))

		delta = measure.AddCost(ru.sliceCost(ev, newU), -ru.currentCost(ev))
		delta = measure.AddCost(delta, measure.AddCost(rv.sliceCost(ev, newV), -rv.currentCost(ev)))
		if ru.NumClients() == 1 {
			delta = measure.AddCost(delta, -ru.vt.FixedCost)
		}
		if rv.Empty() {
			delta = measure.AddCost(delta, rv.vt.FixedCost)
		}
	}

	return measure.AddCost(delta, rv.data.Depot(depot).ReloadCost)
}

// appendPair appends the client and reload segs in placement order.
func appendPair(r *Route, head, client, reload seg, depotAfter bool) seg {
	if depotAfter {
		return r.mergeSeg(r.mergeSeg(head, client), reload)
	}

	return r.mergeSeg(r.mergeSeg(head, reload), client)
}

// Apply implements NodeOperator.
func (o *RelocateWithDepot) Apply(u, v *Node) {
	o.stats.NumApplications++
	ru, rv := u.Route(), v.Route()
	moved := ru.Remove(u.Idx())
	pos := v.Idx() + 1
	if o.depotAfter {
		rv.Insert(pos, moved)
		rv.Insert(pos+1, NewNode(o.bestDepot))
	} else {
		rv.Insert(pos, NewNode(o.bestDepot))
		rv.Insert(pos+1, moved)
	}
}
