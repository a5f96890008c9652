// SPDX-License-Identifier: MIT

package search

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/katalvlaran/vroute/cost"
	"github.com/katalvlaran/vroute/measure"
	"github.com/katalvlaran/vroute/problem"
	"github.com/katalvlaran/vroute/rng"
	"github.com/katalvlaran/vroute/solution"
)

// debugAsserts, when set, re-prices both affected routes around every
// accepted move and panics if the operator's delta was not exact. Tests
// flip it on; it stays off in production use.
var debugAsserts bool

// Statistics counts what the driver did across its lifetime.
type Statistics struct {
	// NumMoves is the number of operator evaluations the driver asked for.
	NumMoves int
	// NumImproving is the number of improving moves applied.
	NumImproving int
	// NumUpdates is the number of route rebuilds caused by applied moves.
	NumUpdates int
}

// Option configures a LocalSearch.
type Option func(*LocalSearch)

// WithLogger routes the driver's progress logging to log. The default is
// a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(ls *LocalSearch) { ls.log = log }
}

// WithDeadline makes Run return the best solution found so far once the
// deadline has passed. Checked between passes; a running pass finishes.
func WithDeadline(deadline time.Time) Option {
	return func(ls *LocalSearch) { ls.deadline = deadline }
}

// LocalSearch drives node and route operators over a working solution. A
// driver owns its RNG and working state and must not be shared between
// concurrent calls; the problem data and neighbour lists may be.
type LocalSearch struct {
	data  *problem.Data
	space *SearchSpace
	gen   *rng.Generator
	st    *state
	pert  *perturber

	nodeOps  []NodeOperator
	routeOps []RouteOperator

	log      zerolog.Logger
	deadline time.Time

	stats       Statistics
	lastUpdated []int
	lastTested  []int
	lastPaired  [][]int
}

// New assembles a driver over the given neighbour lists. Operators are
// added separately with AddNodeOperator and AddRouteOperator.
func New(data *problem.Data, neighbours [][]int, params PerturbationParams,
	seed uint32, opts ...Option) (*LocalSearch, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	space, err := NewSearchSpace(data, neighbours)
	if err != nil {
		return nil, err
	}

	ls := &LocalSearch{
		data:        data,
		space:       space,
		gen:         rng.New(seed),
		st:          newState(data),
		pert:        newPerturber(params),
		log:         zerolog.Nop(),
		lastUpdated: make([]int, data.NumVehicles()),
		lastTested:  make([]int, data.NumLocations()),
		lastPaired:  make([][]int, data.NumVehicles()),
	}
	for i := range ls.lastPaired {
		ls.lastPaired[i] = make([]int, data.NumVehicles())
	}
	for _, opt := range opts {
		opt(ls)
	}

	return ls, nil
}

// AddNodeOperator registers a node operator. Operators the instance
// cannot use are rejected with an error wrapping ErrUnsupportedOperator.
func (ls *LocalSearch) AddNodeOperator(op NodeOperator) error {
	if !op.Supports(ls.data) {
		return fmt.Errorf("node operator not applicable to this instance: %w", ErrUnsupportedOperator)
	}
	ls.nodeOps = append(ls.nodeOps, op)

	return nil
}

// AddRouteOperator registers a route operator, with the same support
// check as AddNodeOperator.
func (ls *LocalSearch) AddRouteOperator(op RouteOperator) error {
	if !op.Supports(ls.data) {
		return fmt.Errorf("route operator not applicable to this instance: %w", ErrUnsupportedOperator)
	}
	ls.routeOps = append(ls.routeOps, op)

	return nil
}

// Neighbours returns the neighbour lists in use.
func (ls *LocalSearch) Neighbours() [][]int { return ls.space.NeighbourLists() }

// SetNeighbours replaces the neighbour lists, revalidating them.
func (ls *LocalSearch) SetNeighbours(neighbours [][]int) error {
	space, err := NewSearchSpace(ls.data, neighbours)
	if err != nil {
		return err
	}
	ls.space = space

	return nil
}

// Shuffle re-permutes the visit orders, the operator orders and the
// perturbation count.
func (ls *LocalSearch) Shuffle() {
	ls.space.Shuffle(ls.gen)
	ls.gen.Shuffle(len(ls.nodeOps), func(a, b int) {
		ls.nodeOps[a], ls.nodeOps[b] = ls.nodeOps[b], ls.nodeOps[a]
	})
	ls.gen.Shuffle(len(ls.routeOps), func(a, b int) {
		ls.routeOps[a], ls.routeOps[b] = ls.routeOps[b], ls.routeOps[a]
	})
	ls.pert.shuffle(ls.gen)
}

// Statistics returns the accumulated driver counters.
func (ls *LocalSearch) Statistics() Statistics { return ls.stats }

// Search improves sol with the node operators only, then tries to earn
// leftover prizes with fresh trips.
func (ls *LocalSearch) Search(sol *solution.Solution, ev *cost.Evaluator) (*solution.Solution, error) {
	ls.st.load(sol)
	ls.prepare()
	ls.nodePass(ev)
	ls.improveWithMultiTrip(ev)

	return ls.st.unload()
}

// Intensify improves sol with the route operators only.
func (ls *LocalSearch) Intensify(sol *solution.Solution, ev *cost.Evaluator) (*solution.Solution, error) {
	ls.st.load(sol)
	ls.prepare()
	ls.routePass(ev)

	return ls.st.unload()
}

// Run perturbs sol (unless exhaustive), then alternates node and route
// passes until a full route pass applies nothing. An optional deadline is
// checked between passes.
func (ls *LocalSearch) Run(sol *solution.Solution, ev *cost.Evaluator, exhaustive bool) (*solution.Solution, error) {
	ls.st.load(sol)
	ls.prepare()
	if !exhaustive {
		ls.pert.perturb(ls.st, ls.space, ev, ls.gen)
		ls.space.MarkAllPromising()
	}
	for {
		if ls.expired() {
			ls.log.Debug().Msg("deadline reached, returning current solution")
			break
		}
		ls.nodePass(ev)
		if ls.expired() || !ls.routePass(ev) {
			break
		}
	}

	return ls.st.unload()
}

func (ls *LocalSearch) expired() bool {
	return !ls.deadline.IsZero() && time.Now().After(ls.deadline)
}

// prepare resets the per-call bookkeeping after a load.
func (ls *LocalSearch) prepare() {
	var i int
	for i = 0; i < len(ls.lastUpdated); i++ {
		ls.lastUpdated[i] = 0
		for j := range ls.lastPaired[i] {
			ls.lastPaired[i][j] = -1
		}
	}
	for i = 0; i < len(ls.lastTested); i++ {
		ls.lastTested[i] = -1
	}
	ls.space.MarkAllPromising()
}

// touch rebuilds a just-mutated route and refreshes everything hanging
// off it: bookkeeping, route-operator caches, and the promising set.
func (ls *LocalSearch) touch(r *Route) {
	if r == nil {
		return
	}
	r.Update()
	ls.stats.NumUpdates++
	ls.lastUpdated[r.idx] = ls.stats.NumUpdates
	for _, op := range ls.routeOps {
		op.Update(r)
	}
	var i int
	for i = 1; i < r.last(); i++ {
		if r.nodes[i].IsClient() {
			ls.space.MarkPromising(r.nodes[i].loc)
		}
	}
}

// nodePass runs the node operators to a local optimum.
func (ls *LocalSearch) nodePass(ev *cost.Evaluator) {
	for _, op := range ls.nodeOps {
		op.Init()
	}
	firstStep := true
	for {
		improved := false
		for _, uc := range ls.space.clientOrder {
			if !ls.space.IsPromising(uc) {
				continue
			}
			ls.space.ClearPromising(uc)
			u := ls.st.node(uc)

			uTested := ls.lastTested[uc]
			ls.lastTested[uc] = ls.stats.NumUpdates
			fresh := uTested < 0 || u.route == nil || ls.lastUpdated[u.route.idx] > uTested

			if fresh && ls.optionalMoves(u, ev) {
				improved = true
			}
			if fresh && ls.groupMoves(u, ev) {
				improved = true
			}
			if u.route == nil {
				continue
			}
			if ls.applyDepotRemovalMove(u.route.nodes[u.idx-1], ev) {
				improved = true
			}
			if ls.applyDepotRemovalMove(u.route.nodes[u.idx+1], ev) {
				improved = true
			}

			for _, vc := range ls.space.Neighbours(uc) {
				v := ls.st.node(vc)
				if v.route == nil || u.route == nil {
					continue
				}
				if ls.lastUpdated[u.route.idx] <= uTested && ls.lastUpdated[v.route.idx] <= uTested {
					continue
				}
				if ls.tryNodeOps(u, v, ev) {
					improved = true
				}
				if v.route != nil && v.idx > 0 {
					if p := v.route.nodes[v.idx-1]; p.IsStartDepot() && ls.tryNodeOps(u, p, ev) {
						improved = true
					}
				}
			}

			if !firstStep && u.route != nil && ls.tryEmptyRoutes(u, ev) {
				improved = true
			}
		}
		firstStep = false
		if !improved {
			break
		}
	}
	ls.log.Debug().
		Int("moves", ls.stats.NumMoves).
		Int("improving", ls.stats.NumImproving).
		Msg("node pass converged")
}

// tryNodeOps evaluates every node operator on (u, v) and applies the
// first improving move.
func (ls *LocalSearch) tryNodeOps(u, v *Node, ev *cost.Evaluator) bool {
	for _, op := range ls.nodeOps {
		ls.stats.NumMoves++
		ru, rv := u.route, v.route
		if !ls.st.canMoveTo(u, rv) || !ls.st.canMoveTo(v, ru) {
			continue
		}
		delta := op.Evaluate(u, v, ev)
		if delta >= 0 {
			continue
		}
		var pre measure.Cost
		if debugAsserts {
			pre = ls.pairCost(ru, rv, ev)
		}
		op.Apply(u, v)
		ls.stats.NumImproving++
		ls.touch(ru)
		if rv != ru {
			ls.touch(rv)
		}
		if debugAsserts {
			if post := ls.pairCost(ru, rv, ev); post != measure.AddCost(pre, delta) {
				panic(fmt.Sprintf("move delta %d but cost went %d -> %d", delta, pre, post))
			}
		}

		return true
	}

	return false
}

// pairCost prices one or two routes for the exactness assertion.
func (ls *LocalSearch) pairCost(ru, rv *Route, ev *cost.Evaluator) measure.Cost {
	c := ev.PenalisedCost(ru)
	if rv != ru {
		c = measure.AddCost(c, ev.PenalisedCost(rv))
	}

	return c
}

// tryEmptyRoutes offers u one empty route per vehicle type, in the
// shuffled type order, applying the first improving move.
func (ls *LocalSearch) tryEmptyRoutes(u *Node, ev *cost.Evaluator) bool {
	for _, vt := range ls.space.vehTypeOrder {
		var k int
		for k = 0; k < ls.data.VehicleType(vt).NumAvailable; k++ {
			r := ls.st.routes[ls.st.typeBase[vt]+k]
			if !r.Empty() {
				continue
			}
			if ls.tryNodeOps(u, r.nodes[0], ev) {
				return true
			}
			break
		}
	}

	return false
}

// optionalMoves handles clients that may be unrouted: required ones are
// forced in, optional ones enter, leave or displace another optional when
// that pays. Members of mutually-exclusive groups are left to groupMoves.
func (ls *LocalSearch) optionalMoves(u *Node, ev *cost.Evaluator) bool {
	c := ls.data.Client(u.loc)
	if c.Group != problem.NoGroup && ls.data.Group(c.Group).MutuallyExclusive {
		return false
	}
	if u.route == nil {
		if ls.insertClient(u, ev, c.Required) {
			return true
		}
		if c.Required {
			return false
		}
		for _, nb := range ls.space.Neighbours(u.loc) {
			v := ls.st.node(nb)
			if v.route == nil || ls.data.Client(nb).Required {
				continue
			}
			if inplaceCost(u, v, ev) < 0 {
				ls.replaceClient(u, v)

				return true
			}
		}

		return false
	}
	if !c.Required && removeCost(u, ev) < 0 {
		r := u.route
		removeClient(u)
		ls.stats.NumImproving++
		ls.touch(r)
		ls.space.MarkPromising(u.loc)

		return true
	}

	return false
}

// groupMoves keeps mutually-exclusive groups at one routed member: the
// member cheapest to keep stays, the rest leave, and u may then displace
// the survivor when that improves.
func (ls *LocalSearch) groupMoves(u *Node, ev *cost.Evaluator) bool {
	g := ls.data.Client(u.loc).Group
	if g == problem.NoGroup {
		return false
	}
	grp := ls.data.Group(g)
	if !grp.MutuallyExclusive {
		return false
	}

	var placed []*Node
	for _, m := range grp.Clients {
		if n := ls.st.node(m); n.route != nil {
			placed = append(placed, n)
		}
	}
	if len(placed) == 0 {
		return ls.insertClient(u, ev, grp.Required)
	}

	changed := false
	keep := placed[0]
	keepCost := removeCost(keep, ev)
	for _, m := range placed[1:] {
		if c := removeCost(m, ev); c > keepCost {
			keep, keepCost = m, c
		}
	}
	for _, m := range placed {
		if m == keep {
			continue
		}
		r := m.route
		removeClient(m)
		ls.touch(r)
		ls.space.MarkPromising(m.loc)
		changed = true
	}
	if u != keep && u.route == nil && inplaceCost(u, keep, ev) < 0 {
		ls.replaceClient(u, keep)
		changed = true
	}

	return changed
}

// insertClient commits the best insertion of u when required or
// improving.
func (ls *LocalSearch) insertClient(u *Node, ev *cost.Evaluator, required bool) bool {
	if !ls.st.insert(u, ls.space, ev, required) {
		return false
	}
	ls.stats.NumImproving++
	ls.touch(u.route)
	ls.space.MarkPromising(u.loc)

	return true
}

// replaceClient substitutes the unrouted u for the routed v in place.
func (ls *LocalSearch) replaceClient(u, v *Node) {
	r := v.route
	pos := v.Idx()
	r.Remove(pos)
	r.Insert(pos, u)
	ls.stats.NumImproving++
	ls.touch(r)
	ls.space.MarkPromising(u.loc)
	ls.space.MarkPromising(v.loc)
}

// applyDepotRemovalMove collapses a reload visit whose removal does not
// cost anything.
func (ls *LocalSearch) applyDepotRemovalMove(n *Node, ev *cost.Evaluator) bool {
	if n == nil || !n.IsReloadDepot() {
		return false
	}
	r := n.route
	cand := r.mergeSeg(r.prefix(n.idx-1), r.suffix(n.idx+1))
	delta := measure.AddCost(r.sliceCost(ev, cand), -r.currentCost(ev))
	delta = measure.AddCost(delta, -r.data.Depot(n.loc).ReloadCost)
	if delta > 0 {
		return false
	}
	r.Remove(n.idx)
	ls.touch(r)

	return true
}

// improveWithMultiTrip gives every unrouted prize client one shot at a
// fresh trip, applied when strictly improving.
func (ls *LocalSearch) improveWithMultiTrip(ev *cost.Evaluator) {
	var loc int
	for loc = ls.data.NumDepots(); loc < ls.data.NumLocations(); loc++ {
		u := ls.st.node(loc)
		if u.route != nil || ls.data.Client(loc).Prize <= 0 {
			continue
		}
		compat := ls.st.insertCompatible(u)
		r, depot, delta := ls.st.bestNewTrip(u, ev, compat)
		if r == nil || delta >= 0 {
			continue
		}
		r.Insert(r.last(), NewNode(depot))
		r.Insert(r.last(), u)
		ls.stats.NumImproving++
		ls.touch(r)
		ls.space.MarkPromising(u.loc)
	}
}

// routePass runs the route operators over route pairs until a full pass
// applies nothing, and reports whether any pass did.
func (ls *LocalSearch) routePass(ev *cost.Evaluator) bool {
	for _, op := range ls.routeOps {
		op.Init()
	}
	anyUpdate := false
	for {
		improved := false
		for _, i := range ls.space.routeOrder {
			ru := ls.st.routes[i]
			if ru.Empty() {
				continue
			}
			var j int
			for j = 0; j < len(ls.st.routes); j++ {
				rv := ls.st.routes[j]
				if rv.idx >= ru.idx || rv.Empty() {
					continue
				}
				tested := ls.lastPaired[ru.idx][rv.idx]
				if tested >= 0 && ls.lastUpdated[ru.idx] <= tested && ls.lastUpdated[rv.idx] <= tested {
					continue
				}
				ls.lastPaired[ru.idx][rv.idx] = ls.stats.NumUpdates
				if ls.tryRouteOps(ru, rv, ev) {
					improved = true
				}
			}
		}
		if !improved {
			break
		}
		anyUpdate = true
	}
	ls.log.Debug().
		Bool("updated", anyUpdate).
		Msg("route pass converged")

	return anyUpdate
}

// tryRouteOps evaluates every route operator on (ru, rv) and applies the
// first improving move.
func (ls *LocalSearch) tryRouteOps(ru, rv *Route, ev *cost.Evaluator) bool {
	for _, op := range ls.routeOps {
		ls.stats.NumMoves++
		delta := op.Evaluate(ru, rv, ev)
		if delta >= 0 {
			continue
		}
		var pre measure.Cost
		if debugAsserts {
			pre = ls.pairCost(ru, rv, ev)
		}
		op.Apply(ru, rv)
		ls.stats.NumImproving++
		ls.touch(ru)
		ls.touch(rv)
		if debugAsserts {
			if post := ls.pairCost(ru, rv, ev); post != measure.AddCost(pre, delta) {
				panic(fmt.Sprintf("route move delta %d but cost went %d -> %d", delta, pre, post))
			}
		}

		return true
	}

	return false
}
