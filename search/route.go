// SPDX-License-Identifier: MIT

package search

import (
	"fmt"
	"math"

	"github.com/katalvlaran/vroute/measure"
	"github.com/katalvlaran/vroute/problem"
	"github.com/katalvlaran/vroute/segment"
)

// Route is a mutable route owned by the search. It holds the start depot,
// the visited nodes (clients and reload depots) and the end depot, plus
// prefix and suffix caches over the segment algebra.
//
// Contract: the caches are valid only after Update has been called since
// the last mutation. Mutators (Push, Insert, Remove, Clear, SwapNodes)
// keep node indices current but leave the caches stale.
type Route struct {
	data    *problem.Data
	vt      *problem.VehicleType
	vehType int
	idx     int

	dm *measure.Matrix[measure.Distance]
	tm *measure.Matrix[measure.Duration]

	nodes     []*Node
	startNode Node
	endNode   Node

	dirty bool

	cumDist   []measure.Distance
	durAt     []segment.DurationSegment
	durBefore []segment.DurationSegment
	durAfter  []segment.DurationSegment

	// loadAt[dim][pos] etc.; one row per load dimension.
	loadAt     [][]segment.LoadSegment
	loadBefore [][]segment.LoadSegment
	loadAfter  [][]segment.LoadSegment

	numClients int
	numReloads int
	prizes     measure.Cost
	reloadCost measure.Cost

	centroidX, centroidY float64
	sectorLo, sectorHi   float64
}

// NewRoute returns an empty route for vehicle slot idx running a vehicle
// of the given type. The route is ready for queries: an empty route needs
// no Update.
func NewRoute(data *problem.Data, idx, vehicleType int) *Route {
	vt := data.VehicleType(vehicleType)
	r := &Route{
		data:    data,
		vt:      vt,
		vehType: vehicleType,
		idx:     idx,
		dm:      data.DistanceMatrix(vt.Profile),
		tm:      data.DurationMatrix(vt.Profile),
	}
	r.startNode = Node{loc: vt.StartDepot, kind: kindStartDepot, route: r}
	r.endNode = Node{loc: vt.EndDepot, kind: kindEndDepot, route: r}
	r.nodes = []*Node{&r.startNode, &r.endNode}
	r.Update()

	return r
}

// Idx returns the vehicle slot index of the route.
func (r *Route) Idx() int { return r.idx }

// VehicleType returns the index of the route's vehicle type.
func (r *Route) VehicleType() int { return r.vehType }

// StartDepot returns the location index of the start depot.
func (r *Route) StartDepot() int { return r.vt.StartDepot }

// EndDepot returns the location index of the end depot.
func (r *Route) EndDepot() int { return r.vt.EndDepot }

// Profile returns the travel profile of the route's vehicle.
func (r *Route) Profile() int { return r.vt.Profile }

// Capacity returns the vehicle capacity in the given load dimension.
func (r *Route) Capacity(dim int) measure.Load { return r.vt.Capacity[dim] }

// MaxDistance returns the route's distance limit.
func (r *Route) MaxDistance() measure.Distance { return r.vt.MaxDistance }

// MaxDuration returns the longest the vehicle may be underway: its shift
// plus the allowed overtime.
func (r *Route) MaxDuration() measure.Duration {
	return measure.AddDuration(r.vt.ShiftDuration, r.vt.MaxOvertime)
}

// MaxTrips returns the maximum number of trips the vehicle may run.
func (r *Route) MaxTrips() int {
	if r.vt.MaxReloads >= math.MaxInt-1 {
		return math.MaxInt
	}

	return r.vt.MaxReloads + 1
}

// FixedVehicleCost returns the vehicle's fixed cost when the route is
// used, zero when it is empty.
func (r *Route) FixedVehicleCost() measure.Cost {
	if r.Empty() {
		return 0
	}

	return r.vt.FixedCost
}

// Empty reports whether the route visits nothing.
func (r *Route) Empty() bool { return len(r.nodes) == 2 }

// Size returns the number of visited nodes, clients and reload depots
// both, excluding the terminal depots.
func (r *Route) Size() int { return len(r.nodes) - 2 }

// NumClients returns the number of clients visited.
func (r *Route) NumClients() int { return r.numClients }

// NumTrips returns the number of trips, zero for an empty route.
func (r *Route) NumTrips() int {
	if r.Empty() {
		return 0
	}

	return r.numReloads + 1
}

// At returns the node at the given position: 0 is the start depot and
// Size()+1 the end depot.
func (r *Route) At(idx int) *Node { return r.nodes[idx] }

// last returns the position of the end depot.
func (r *Route) last() int { return len(r.nodes) - 1 }

// Push appends a node right before the end depot.
func (r *Route) Push(n *Node) { r.Insert(r.last(), n) }

// Insert places n at position idx, shifting the nodes from idx on one to
// the right. The node must be detached; position 0 and positions past the
// end depot are invalid. Node indices stay current, the caches go stale.
func (r *Route) Insert(idx int, n *Node) {
	if idx < 1 || idx > r.last() {
		panic(fmt.Errorf("insert position %d out of range: %w", idx, ErrRouteShape))
	}
	if n.route != nil {
		panic(fmt.Errorf("node %d is already routed: %w", n.loc, ErrRouteShape))
	}
	if r.data.IsDepot(n.loc) {
		n.kind = kindReloadDepot
	} else {
		n.kind = kindClient
	}
	n.route = r
	r.nodes = append(r.nodes, nil)
	copy(r.nodes[idx+1:], r.nodes[idx:])
	r.nodes[idx] = n
	var i int
	for i = idx; i < len(r.nodes); i++ {
		r.nodes[i].idx = i
	}
	r.dirty = true
}

// Remove detaches and returns the node at position idx. Terminal depots
// cannot be removed.
func (r *Route) Remove(idx int) *Node {
	if idx < 1 || idx >= r.last() {
		panic(fmt.Errorf("remove position %d out of range: %w", idx, ErrRouteShape))
	}
	n := r.nodes[idx]
	copy(r.nodes[idx:], r.nodes[idx+1:])
	r.nodes = r.nodes[:len(r.nodes)-1]
	var i int
	for i = idx; i < len(r.nodes); i++ {
		r.nodes[i].idx = i
	}
	n.route = nil
	n.idx = -1
	n.trip = 0
	r.dirty = true

	return n
}

// Clear detaches every visited node, leaving the empty route.
func (r *Route) Clear() {
	var i int
	for i = 1; i < r.last(); i++ {
		r.nodes[i].route = nil
		r.nodes[i].idx = -1
		r.nodes[i].trip = 0
	}
	r.nodes = append(r.nodes[:1], &r.endNode)
	r.endNode.idx = 1
	r.dirty = true
}

// SwapNodes exchanges the positions of two routed non-depot nodes, which
// may sit in different routes.
func SwapNodes(a, b *Node) {
	if a.route == nil || b.route == nil || a.IsDepot() || b.IsDepot() {
		panic(fmt.Errorf("swap needs two routed non-depot nodes: %w", ErrRouteShape))
	}
	ra, rb := a.route, b.route
	ia, ib := a.idx, b.idx
	ra.nodes[ia], rb.nodes[ib] = b, a
	a.route, b.route = rb, ra
	a.idx, b.idx = ib, ia
	ra.dirty = true
	rb.dirty = true
}

// durSegmentOf returns the duration segment of a single node.
func (r *Route) durSegmentOf(n *Node) segment.DurationSegment {
	switch n.kind {
	case kindStartDepot:
		dep := r.data.Depot(n.loc)

		return segment.NewDurationSegment(0,
			measure.MaxOf(r.vt.TwEarly, dep.TwEarly),
			measure.MinOf(r.vt.StartLate, dep.TwLate), 0)
	case kindEndDepot:
		dep := r.data.Depot(n.loc)

		return segment.NewDurationSegment(0,
			dep.TwEarly, measure.MinOf(dep.TwLate, r.vt.TwLate), 0)
	case kindReloadDepot:
		dep := r.data.Depot(n.loc)

		return segment.NewDurationSegment(dep.ServiceDuration, dep.TwEarly, dep.TwLate, 0)
	default:
		c := r.data.Client(n.loc)

		return segment.NewDurationSegment(c.ServiceDuration, c.TwEarly, c.TwLate, c.ReleaseTime)
	}
}

// loadSegmentOf returns the load segment of a single node in a dimension.
func (r *Route) loadSegmentOf(n *Node, dim int) segment.LoadSegment {
	switch n.kind {
	case kindStartDepot:
		return segment.NewLoadSegment(r.vt.InitialLoad[dim], 0)
	case kindClient:
		c := r.data.Client(n.loc)

		return segment.NewLoadSegment(c.Delivery[dim], c.Pickup[dim])
	default:
		return segment.NewLoadSegment(0, 0)
	}
}

// Update re-derives every cache from the current node sequence. Panics
// wrapping ErrRouteShape when a reload depot is adjacent to a terminal
// depot or to another reload depot.
func (r *Route) Update() {
	n := len(r.nodes)
	dims := r.data.NumLoadDimensions()

	r.numClients = 0
	r.numReloads = 0
	r.prizes = 0
	r.reloadCost = 0
	r.centroidX, r.centroidY = 0, 0

	var trip int
	var i int
	for i = 0; i < n; i++ {
		node := r.nodes[i]
		node.idx = i
		node.trip = trip
		if node.kind == kindReloadDepot {
			if r.nodes[i-1].kind != kindClient || r.nodes[i+1].kind != kindClient {
				panic(fmt.Errorf("route %d: reload depot at position %d borders a depot: %w",
					r.idx, i, ErrRouteShape))
			}
			trip++
			r.numReloads++
			r.reloadCost = measure.AddCost(r.reloadCost, r.data.Depot(node.loc).ReloadCost)
		}
		if node.kind == kindClient {
			c := r.data.Client(node.loc)
			r.numClients++
			r.prizes = measure.AddCost(r.prizes, c.Prize)
			r.centroidX += float64(c.X)
			r.centroidY += float64(c.Y)
		}
	}
	if r.numClients > 0 {
		r.centroidX /= float64(r.numClients)
		r.centroidY /= float64(r.numClients)
	}
	r.updateSector()

	r.cumDist = grow(r.cumDist, n)
	r.durAt = grow(r.durAt, n)
	r.durBefore = grow(r.durBefore, n)
	r.durAfter = grow(r.durAfter, n)
	for len(r.loadAt) < dims {
		r.loadAt = append(r.loadAt, nil)
		r.loadBefore = append(r.loadBefore, nil)
		r.loadAfter = append(r.loadAfter, nil)
	}
	var dim int
	for dim = 0; dim < dims; dim++ {
		r.loadAt[dim] = grow(r.loadAt[dim], n)
		r.loadBefore[dim] = grow(r.loadBefore[dim], n)
		r.loadAfter[dim] = grow(r.loadAfter[dim], n)
	}

	for i = 0; i < n; i++ {
		r.durAt[i] = r.durSegmentOf(r.nodes[i])
		for dim = 0; dim < dims; dim++ {
			r.loadAt[dim][i] = r.loadSegmentOf(r.nodes[i], dim)
		}
	}

	// Prefixes, left to right. A reload depot closes the running trip.
	r.cumDist[0] = 0
	r.durBefore[0] = r.durAt[0]
	for dim = 0; dim < dims; dim++ {
		r.loadBefore[dim][0] = r.loadAt[dim][0]
	}
	for i = 1; i < n; i++ {
		prev, cur := r.nodes[i-1].loc, r.nodes[i].loc
		r.cumDist[i] = measure.AddDistance(r.cumDist[i-1], r.dm.At(prev, cur))
		ds := segment.MergeDuration(r.tm.At(prev, cur), r.durBefore[i-1], r.durAt[i])
		if r.nodes[i].kind == kindReloadDepot {
			ds = ds.FinaliseBack()
		}
		r.durBefore[i] = ds
		for dim = 0; dim < dims; dim++ {
			ls := segment.MergeLoad(r.loadBefore[dim][i-1], r.loadAt[dim][i])
			if r.nodes[i].kind == kindReloadDepot {
				ls = ls.Finalise(r.vt.Capacity[dim])
			}
			r.loadBefore[dim][i] = ls
		}
	}

	// Suffixes, right to left. Stepping onto a reload depot closes the
	// trip to its right as a future trip.
	r.durAfter[n-1] = r.durAt[n-1]
	for dim = 0; dim < dims; dim++ {
		r.loadAfter[dim][n-1] = r.loadAt[dim][n-1]
	}
	for i = n - 2; i >= 0; i-- {
		cur, next := r.nodes[i].loc, r.nodes[i+1].loc
		rest := r.durAfter[i+1]
		if r.nodes[i].kind == kindReloadDepot {
			rest = rest.FinaliseFront()
		}
		r.durAfter[i] = segment.MergeDuration(r.tm.At(cur, next), r.durAt[i], rest)
		for dim = 0; dim < dims; dim++ {
			restLoad := r.loadAfter[dim][i+1]
			if r.nodes[i].kind == kindReloadDepot {
				restLoad = restLoad.Finalise(r.vt.Capacity[dim])
			}
			r.loadAfter[dim][i] = segment.MergeLoad(r.loadAt[dim][i], restLoad)
		}
	}

	r.dirty = false
}

// grow returns s resized to n elements, reusing its backing array.
func grow[T any](s []T, n int) []T {
	if cap(s) >= n {
		return s[:n]
	}

	return make([]T, n)
}

// Before returns the duration segment over positions [0, end].
func (r *Route) Before(end int) segment.DurationSegment { return r.durBefore[end] }

// After returns the duration segment over positions [start, Size()+1].
func (r *Route) After(start int) segment.DurationSegment { return r.durAfter[start] }

// Between returns the duration segment over positions [start, end]. The
// range must stay within a single trip; reload depots at the range ends
// are allowed, interior ones panic.
func (r *Route) Between(start, end int) segment.DurationSegment {
	s := r.durAt[start]
	var i int
	for i = start + 1; i <= end; i++ {
		if r.nodes[i].kind == kindReloadDepot && i < end {
			panic(fmt.Errorf("segment [%d, %d] spans a trip boundary: %w", start, end, ErrRouteShape))
		}
		s = segment.MergeDuration(r.tm.At(r.nodes[i-1].loc, r.nodes[i].loc), s, r.durAt[i])
	}

	return s
}

// LoadBefore returns the load segment over positions [0, end] in the
// given dimension.
func (r *Route) LoadBefore(end, dim int) segment.LoadSegment { return r.loadBefore[dim][end] }

// LoadAfter returns the load segment over positions [start, Size()+1] in
// the given dimension.
func (r *Route) LoadAfter(start, dim int) segment.LoadSegment { return r.loadAfter[dim][start] }

// LoadBetween returns the load segment over positions [start, end] in the
// given dimension. Same trip-boundary contract as Between.
func (r *Route) LoadBetween(start, end, dim int) segment.LoadSegment {
	s := r.loadAt[dim][start]
	var i int
	for i = start + 1; i <= end; i++ {
		s = segment.MergeLoad(s, r.loadAt[dim][i])
	}

	return s
}

// DistanceBetween returns the travelled distance from position start to
// position end.
func (r *Route) DistanceBetween(start, end int) measure.Distance {
	return r.cumDist[end] - r.cumDist[start]
}

// Distance returns the total travelled distance.
func (r *Route) Distance() measure.Distance { return r.cumDist[r.last()] }

// ExcessDistance returns the violation of the distance limit.
func (r *Route) ExcessDistance() measure.Distance {
	if d := r.Distance(); d > r.vt.MaxDistance {
		return d - r.vt.MaxDistance
	}

	return 0
}

// Duration returns the total route duration, idle time between trips not
// counted.
func (r *Route) Duration() measure.Duration { return r.durBefore[r.last()].Duration() }

// TimeWarp returns the total time-window violation, including duration
// beyond shift plus overtime.
func (r *Route) TimeWarp() measure.Duration {
	return r.durBefore[r.last()].TimeWarp(r.MaxDuration())
}

// Overtime returns the duration beyond the shift, capped at the allowed
// overtime.
func (r *Route) Overtime() measure.Duration {
	if r.vt.ShiftDuration == measure.MaxDuration {
		return 0
	}
	over := r.Duration() - r.vt.ShiftDuration
	if over <= 0 {
		return 0
	}

	return measure.MinOf(over, r.vt.MaxOvertime)
}

// Load returns the peak in-vehicle load of the route's final trip in the
// given dimension. Use ExcessLoad for violation queries over all trips.
func (r *Route) Load(dim int) measure.Load { return r.loadBefore[dim][r.last()].Load() }

// ExcessLoad returns the total capacity violation over all trips in the
// given dimension.
func (r *Route) ExcessLoad(dim int) measure.Load {
	return r.loadBefore[dim][r.last()].ExcessLoad(r.vt.Capacity[dim])
}

// UnitDistanceCost returns the vehicle's cost per distance unit.
func (r *Route) UnitDistanceCost() measure.Cost { return r.vt.UnitDistanceCost }

// UnitDurationCost returns the vehicle's cost per duration unit.
func (r *Route) UnitDurationCost() measure.Cost { return r.vt.UnitDurationCost }

// UnitOvertimeCost returns the vehicle's cost per overtime unit.
func (r *Route) UnitOvertimeCost() measure.Cost { return r.vt.UnitOvertimeCost }

// Prizes returns the total prize of the visited clients.
func (r *Route) Prizes() measure.Cost { return r.prizes }

// ReloadCost returns the summed reload cost of the route's reload visits.
func (r *Route) ReloadCost() measure.Cost { return r.reloadCost }

// IsFeasible reports whether the route violates no constraint.
func (r *Route) IsFeasible() bool {
	if r.TimeWarp() > 0 || r.ExcessDistance() > 0 || r.NumTrips() > r.MaxTrips() {
		return false
	}
	var dim int
	for dim = 0; dim < r.data.NumLoadDimensions(); dim++ {
		if r.ExcessLoad(dim) > 0 {
			return false
		}
	}

	return true
}

// Centroid returns the mean coordinates of the visited clients.
func (r *Route) Centroid() (x, y float64) { return r.centroidX, r.centroidY }

// updateSector derives the angular sector the route's clients span around
// the instance centroid.
func (r *Route) updateSector() {
	cx, cy := r.data.Centroid()
	first := true
	var i int
	for i = 1; i < r.last(); i++ {
		if r.nodes[i].kind != kindClient {
			continue
		}
		c := r.data.Client(r.nodes[i].loc)
		a := math.Atan2(float64(c.Y)-cy, float64(c.X)-cx)
		if first {
			r.sectorLo, r.sectorHi = a, a
			first = false
			continue
		}
		if sectorContains(r.sectorLo, r.sectorHi, a) {
			continue
		}
		// Extend towards the closer end.
		if cwDist(r.sectorHi, a) <= cwDist(a, r.sectorLo) {
			r.sectorHi = a
		} else {
			r.sectorLo = a
		}
	}
	if first {
		r.sectorLo, r.sectorHi = 0, 0
	}
}

// cwDist returns the clockwise angular distance from a to b in [0, 2π).
func cwDist(a, b float64) float64 {
	d := math.Mod(b-a, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}

	return d
}

func sectorContains(lo, hi, a float64) bool {
	return cwDist(lo, a) <= cwDist(lo, hi)
}

// OverlapsWith reports whether the angular sectors of the two routes,
// widened by tolerance (a fraction of the full circle), intersect. Empty
// routes overlap with everything.
func (r *Route) OverlapsWith(other *Route, tolerance float64) bool {
	if r.NumClients() == 0 || other.NumClients() == 0 {
		return true
	}
	tol := tolerance * 2 * math.Pi

	return cwDist(r.sectorLo, other.sectorLo) <= tol+cwDist(r.sectorLo, r.sectorHi) ||
		cwDist(other.sectorLo, r.sectorLo) <= tol+cwDist(other.sectorLo, other.sectorHi)
}
