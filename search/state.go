// SPDX-License-Identifier: MIT

package search

import (
	"github.com/katalvlaran/vroute/cost"
	"github.com/katalvlaran/vroute/measure"
	"github.com/katalvlaran/vroute/problem"
	"github.com/katalvlaran/vroute/solution"
)

// state is the mutable mirror of a solution the search works on: one
// working route per vehicle slot, slots ordered by vehicle type, and one
// node per client reused across loads. Reload nodes are created fresh on
// every load.
type state struct {
	data   *problem.Data
	routes []*Route
	nodes  []*Node

	// typeBase[vt] is the first route slot of vehicle type vt.
	typeBase []int

	// sameVeh[loc] lists the same-vehicle groups client loc belongs to.
	sameVeh [][]int
}

func newState(data *problem.Data) *state {
	s := &state{
		data:     data,
		routes:   make([]*Route, 0, data.NumVehicles()),
		nodes:    make([]*Node, data.NumLocations()),
		typeBase: make([]int, data.NumVehicleTypes()),
		sameVeh:  make([][]int, data.NumLocations()),
	}
	var vt, k int
	for vt = 0; vt < data.NumVehicleTypes(); vt++ {
		s.typeBase[vt] = len(s.routes)
		for k = 0; k < data.VehicleType(vt).NumAvailable; k++ {
			s.routes = append(s.routes, NewRoute(data, len(s.routes), vt))
		}
	}
	var loc, g int
	for loc = data.NumDepots(); loc < data.NumLocations(); loc++ {
		s.nodes[loc] = NewNode(loc)
	}
	for g = 0; g < data.NumSameVehicleGroups(); g++ {
		for _, loc = range data.SameVehicleGroup(g).Clients {
			s.sameVeh[loc] = append(s.sameVeh[loc], g)
		}
	}

	return s
}

// node returns the working node of a client location.
func (s *state) node(loc int) *Node { return s.nodes[loc] }

// routeEquals reports whether the working route already runs exactly the
// given solution route.
func routeEquals(r *Route, sr *solution.Route) bool {
	if r.vehType != sr.VehicleType() {
		return false
	}
	i := 1
	for t, trip := range sr.Trips() {
		if t > 0 {
			if i >= r.last() || r.nodes[i].kind != kindReloadDepot || r.nodes[i].loc != trip.StartDepot() {
				return false
			}
			i++
		}
		for _, loc := range trip.Visits() {
			if i >= r.last() || r.nodes[i].kind != kindClient || r.nodes[i].loc != loc {
				return false
			}
			i++
		}
	}

	return i == r.last()
}

// load mirrors sol into the working routes. Solution routes take slots of
// their vehicle type in order; a slot whose sequence already matches is
// reused untouched, the remaining slots are cleared and refilled.
func (s *state) load(sol *solution.Solution) {
	target := make([]*solution.Route, len(s.routes))
	keep := make([]bool, len(s.routes))
	next := make([]int, len(s.typeBase))
	for _, sr := range sol.Routes() {
		vt := sr.VehicleType()
		idx := s.typeBase[vt] + next[vt]
		next[vt]++
		target[idx] = sr
		keep[idx] = routeEquals(s.routes[idx], sr)
	}

	var i int
	for i = 0; i < len(s.routes); i++ {
		if !keep[i] {
			s.routes[i].Clear()
		}
	}
	for i = 0; i < len(s.routes); i++ {
		if keep[i] || target[i] == nil {
			continue
		}
		r := s.routes[i]
		for t, trip := range target[i].Trips() {
			if t > 0 {
				r.Push(NewNode(trip.StartDepot()))
			}
			for _, loc := range trip.Visits() {
				r.Push(s.nodes[loc])
			}
		}
	}
	for i = 0; i < len(s.routes); i++ {
		if !keep[i] {
			s.routes[i].Update()
		}
	}
}

// unload converts the working routes back into an immutable solution,
// splitting each route into trips at its reload visits.
func (s *state) unload() (*solution.Solution, error) {
	specs := make([]solution.RouteSpec, 0, len(s.routes))
	for _, r := range s.routes {
		if r.Empty() {
			continue
		}
		var trips []solution.Trip
		start := r.StartDepot()
		var visits []int
		var i int
		for i = 1; i < r.last(); i++ {
			n := r.nodes[i]
			if n.kind == kindReloadDepot {
				trips = append(trips, solution.NewTrip(visits, start, n.loc))
				start, visits = n.loc, visits[:0]
				continue
			}
			visits = append(visits, n.loc)
		}
		trips = append(trips, solution.NewTrip(visits, start, r.EndDepot()))
		specs = append(specs, solution.RouteSpec{Trips: trips, VehicleType: r.VehicleType()})
	}

	return solution.FromTrips(s.data, specs)
}

// canMoveTo reports whether the same-vehicle groups permit moving the
// routed client u into target. A member sharing u's route pins u there
// unless the two routes run equally, non-emptily named vehicles.
func (s *state) canMoveTo(u *Node, target *Route) bool {
	if u.route == nil || target == u.route || len(s.sameVeh[u.loc]) == 0 {
		return true
	}
	for _, g := range s.sameVeh[u.loc] {
		for _, m := range s.data.SameVehicleGroup(g).Clients {
			if m == u.loc || s.nodes[m].route != u.route {
				continue
			}
			name := u.route.vt.Name
			if name == "" || target.vt.Name != name {
				return false
			}
		}
	}

	return true
}

// insertCompatible returns the candidate-route predicate for inserting u:
// unrestricted unless a same-vehicle group member is already placed, in
// which case candidates are the members' routes and routes running an
// equally named vehicle.
func (s *state) insertCompatible(u *Node) func(*Route) bool {
	var anchors []*Route
	for _, g := range s.sameVeh[u.loc] {
		for _, m := range s.data.SameVehicleGroup(g).Clients {
			if m == u.loc {
				continue
			}
			if r := s.nodes[m].route; r != nil {
				anchors = append(anchors, r)
			}
		}
	}
	if len(anchors) == 0 {
		return func(*Route) bool { return true }
	}

	return func(r *Route) bool {
		for _, a := range anchors {
			if r != a && (a.vt.Name == "" || r.vt.Name != a.vt.Name) {
				return false
			}
		}

		return true
	}
}

// bestNewTrip prices opening a new trip for the prize client u at the end
// of a non-empty multi-trip-capable route: reload visit, then u, then the
// run home. Only time-warp-free candidates count.
func (s *state) bestNewTrip(u *Node, ev *cost.Evaluator, compat func(*Route) bool) (*Route, int, measure.Cost) {
	c := s.data.Client(u.loc)
	best := measure.MaxCost
	var bestRoute *Route
	bestDepot := -1
	for _, r := range s.routes {
		if !compat(r) || r.Empty() || r.TimeWarp() > 0 {
			continue
		}
		if len(r.vt.ReloadDepots) == 0 || r.numReloads+1 > r.vt.MaxReloads || r.NumTrips()+1 > r.MaxTrips() {
			continue
		}
		fits := true
		var dim int
		for dim = 0; dim < s.data.NumLoadDimensions(); dim++ {
			if c.Delivery[dim] > r.vt.Capacity[dim] || c.Pickup[dim] > r.vt.Capacity[dim] {
				fits = false
				break
			}
		}
		if !fits {
			continue
		}
		for _, depot := range r.vt.ReloadDepots {
			cand := r.mergeSeg(r.prefix(r.last()-1), r.reloadSeg(depot))
			cand = r.mergeSeg(cand, r.clientSeg(u.loc))
			cand = r.mergeSeg(cand, r.suffix(r.last()))
			if cand.dur.TimeWarp(r.MaxDuration()) > 0 {
				continue
			}
			d := measure.AddCost(r.sliceCost(ev, cand), -r.currentCost(ev))
			d = measure.AddCost(d, s.data.Depot(depot).ReloadCost)
			d = measure.AddCost(d, -c.Prize)
			if d < best {
				best, bestRoute, bestDepot = d, r, depot
			}
		}
	}

	return bestRoute, bestDepot, best
}

// insert places the unrouted client u at its best position: after a
// routed neighbour, after a start depot, or on a fresh trip when u
// carries a prize and nothing else improves. Commits when required or
// improving and reports whether it did.
func (s *state) insert(u *Node, space *SearchSpace, ev *cost.Evaluator, required bool) bool {
	if u.route != nil {
		return false
	}
	compat := s.insertCompatible(u)

	var bestAfter *Node
	best := measure.MaxCost
	consider := func(after *Node) {
		if d := insertCost(u, after, ev); d < best {
			best, bestAfter = d, after
		}
	}

	for _, r := range s.routes {
		if compat(r) {
			consider(r.nodes[0])
			break
		}
	}
	for _, nb := range space.Neighbours(u.loc) {
		if v := s.nodes[nb]; v.route != nil && compat(v.route) {
			consider(v)
		}
	}

	// Start-depot scan in randomised vehicle-type order. One empty route
	// per type stands in for its siblings; an improving empty candidate
	// ends the scan.
	stop := false
	for _, vt := range space.vehTypeOrder {
		if stop {
			break
		}
		seenEmpty := false
		var k int
		for k = 0; k < s.data.VehicleType(vt).NumAvailable; k++ {
			r := s.routes[s.typeBase[vt]+k]
			if !compat(r) {
				continue
			}
			if r.Empty() {
				if seenEmpty {
					continue
				}
				seenEmpty = true
			}
			consider(r.nodes[0])
			if r.Empty() && bestAfter == r.nodes[0] && best < 0 {
				stop = true
				break
			}
		}
	}

	var tripRoute *Route
	tripDepot := -1
	if best >= 0 && s.data.Client(u.loc).Prize > 0 {
		if r, depot, d := s.bestNewTrip(u, ev, compat); r != nil && d < best {
			best, bestAfter = d, nil
			tripRoute, tripDepot = r, depot
		}
	}

	if !required && best >= 0 {
		return false
	}
	if bestAfter == nil && tripRoute == nil {
		return false
	}

	if tripRoute != nil {
		tripRoute.Insert(tripRoute.last(), NewNode(tripDepot))
		tripRoute.Insert(tripRoute.last(), u)
		tripRoute.Update()

		return true
	}

	r := bestAfter.route
	pos := bestAfter.Idx() + 1
	if s.tripOverflows(u, bestAfter) {
		r.Insert(pos, NewNode(r.vt.ReloadDepots[0]))
		pos++
	}
	r.Insert(pos, u)
	r.Update()

	return true
}

// tripOverflows reports whether inserting u after v pushes v's trip over
// capacity while the route may still open a new trip there.
func (s *state) tripOverflows(u, v *Node) bool {
	r := v.route
	if !v.IsClient() || len(r.vt.ReloadDepots) == 0 || r.numReloads+1 > r.vt.MaxReloads {
		return false
	}
	cand := r.mergeSeg(r.mergeSeg(r.prefix(v.Idx()), r.clientSeg(u.loc)), r.suffix(v.Idx()+1))
	var dim int
	for dim = 0; dim < s.data.NumLoadDimensions(); dim++ {
		if cand.loads[dim].ExcessLoad(r.vt.Capacity[dim]) > r.ExcessLoad(dim) {
			return true
		}
	}

	return false
}

// insertCost prices inserting the unrouted client u directly after the
// routed node v: the route's variable cost change, the client's prize now
// collected, and the fixed vehicle cost when the route was empty.
func insertCost(u, v *Node, ev *cost.Evaluator) measure.Cost {
	if u.route != nil || v.route == nil || v.IsEndDepot() {
		return measure.MaxCost
	}
	r := v.route
	cand := r.mergeSeg(r.mergeSeg(r.prefix(v.Idx()), r.clientSeg(u.loc)), r.suffix(v.Idx()+1))
	delta := measure.AddCost(r.sliceCost(ev, cand), -r.currentCost(ev))
	delta = measure.AddCost(delta, -r.data.Client(u.loc).Prize)
	if r.Empty() {
		delta = measure.AddCost(delta, r.vt.FixedCost)
	}

	return delta
}

// removalSpan returns the positions [start, end] that removing the client
// u takes with it: u itself, plus an adjacent reload visit that would be
// left without a client on one side.
func removalSpan(u *Node) (start, end int) {
	r := u.route
	start, end = u.idx, u.idx
	prev, next := r.nodes[u.idx-1], r.nodes[u.idx+1]
	if prev.kind == kindReloadDepot && next.kind != kindClient {
		start--
	} else if next.kind == kindReloadDepot && prev.kind != kindClient {
		end++
	}

	return start, end
}

// removeCost prices removing the routed client u, together with any
// reload visit stranded by the removal: the route's variable cost change,
// the prize forfeited, the reload cost refunded, and the fixed vehicle
// cost when the route empties.
func removeCost(u *Node, ev *cost.Evaluator) measure.Cost {
	if u.route == nil || !u.IsClient() {
		return measure.MaxCost
	}
	r := u.route
	start, end := removalSpan(u)
	cand := r.mergeSeg(r.prefix(start-1), r.suffix(end+1))
	delta := measure.AddCost(r.sliceCost(ev, cand), -r.currentCost(ev))
	delta = measure.AddCost(delta, r.data.Client(u.loc).Prize)
	var i int
	for i = start; i <= end; i++ {
		if r.nodes[i].kind == kindReloadDepot {
			delta = measure.AddCost(delta, -r.data.Depot(r.nodes[i].loc).ReloadCost)
		}
	}
	if r.NumClients() == 1 {
		delta = measure.AddCost(delta, -r.vt.FixedCost)
	}

	return delta
}

// removeClient detaches u and any reload visit stranded by its removal.
func removeClient(u *Node) {
	r := u.route
	start, end := removalSpan(u)
	var i int
	for i = end; i >= start; i-- {
		r.Remove(i)
	}
}

// inplaceCost prices substituting the unrouted client u for the routed
// client v at v's position, exchanging their prizes.
func inplaceCost(u, v *Node, ev *cost.Evaluator) measure.Cost {
	if u.route != nil || v.route == nil || !v.IsClient() {
		return measure.MaxCost
	}
	r := v.route
	cand := r.mergeSeg(r.mergeSeg(r.prefix(v.Idx()-1), r.clientSeg(u.loc)), r.suffix(v.Idx()+1))
	delta := measure.AddCost(r.sliceCost(ev, cand), -r.currentCost(ev))
	delta = measure.AddCost(delta, -r.data.Client(u.loc).Prize)
	delta = measure.AddCost(delta, r.data.Client(v.loc).Prize)

	return delta
}
