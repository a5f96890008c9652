// SPDX-License-Identifier: MIT

package solution

import (
	"github.com/katalvlaran/vroute/measure"
	"github.com/katalvlaran/vroute/problem"
	"github.com/katalvlaran/vroute/rng"
)

// Solution is an immutable assignment of clients to routes. Clients not
// visited by any route are unassigned.
type Solution struct {
	routes     []*Route
	unassigned []int
	numClients int

	groupFeasible bool
	complete      bool
}

// RouteSpec describes one route for FromTrips: its trips as visit lists
// with explicit depots, and the vehicle type to run it with.
type RouteSpec struct {
	Trips       []Trip
	VehicleType int
}

// FromRoutes builds a solution from one single-trip visit list per route.
// Route i is run by vehicle slot i, with slots ordered by vehicle type
// (all vehicles of type 0 first, then type 1, and so on). Empty visit
// lists are dropped.
//
// Returns an error wrapping ErrInvalidSolution on unknown clients,
// duplicate visits, or more routes than vehicles.
func FromRoutes(data *problem.Data, routes [][]int) (*Solution, error) {
	if len(routes) > data.NumVehicles() {
		return nil, invalidf("%d routes exceed %d vehicles", len(routes), data.NumVehicles())
	}
	types := slotTypes(data)
	specs := make([]RouteSpec, 0, len(routes))
	var i int
	for i = 0; i < len(routes); i++ {
		if len(routes[i]) == 0 {
			continue
		}
		vt := data.VehicleType(types[i])
		specs = append(specs, RouteSpec{
			Trips:       []Trip{NewTrip(routes[i], vt.StartDepot, vt.EndDepot)},
			VehicleType: types[i],
		})
	}

	return FromTrips(data, specs)
}

// FromTrips builds a solution from explicit multi-trip route
// specifications.
func FromTrips(data *problem.Data, specs []RouteSpec) (*Solution, error) {
	perType := make([]int, data.NumVehicleTypes())
	seen := make(map[int]bool)
	sol := &Solution{}
	for i := range specs {
		if specs[i].VehicleType < 0 || specs[i].VehicleType >= data.NumVehicleTypes() {
			return nil, invalidf("route %d: vehicle type %d out of range", i, specs[i].VehicleType)
		}
		perType[specs[i].VehicleType]++
		if perType[specs[i].VehicleType] > data.VehicleType(specs[i].VehicleType).NumAvailable {
			return nil, invalidf("vehicle type %d is over-used", specs[i].VehicleType)
		}
		r, err := NewRouteFromTrips(data, specs[i].Trips, specs[i].VehicleType)
		if err != nil {
			return nil, err
		}
		for _, loc := range r.Visits() {
			if seen[loc] {
				return nil, invalidf("client %d visited more than once", loc)
			}
			seen[loc] = true
		}
		sol.routes = append(sol.routes, r)
	}
	sol.finish(data, seen)

	return sol, nil
}

// RandomOptions tunes NewRandom.
type RandomOptions struct {
	// SkipOptional leaves optional clients unassigned instead of flipping
	// a coin for each.
	SkipOptional bool
}

// NewRandom assigns clients to vehicles round-robin in a random order:
// required clients always, optional clients on a coin flip. The result is
// deterministic for a fixed generator state.
func NewRandom(data *problem.Data, gen *rng.Generator, opts RandomOptions) *Solution {
	perm := make([]int, data.NumClients())
	var i int
	for i = 0; i < len(perm); i++ {
		perm[i] = data.NumDepots() + i
	}
	gen.Shuffle(len(perm), func(a, b int) { perm[a], perm[b] = perm[b], perm[a] })

	types := slotTypes(data)
	visits := make([][]int, data.NumVehicles())
	taken := make(map[int]bool) // one member per mutually-exclusive group
	var slot int
	for _, loc := range perm {
		c := data.Client(loc)
		if !c.Required {
			if opts.SkipOptional || gen.Next()%2 == 0 {
				continue
			}
			if c.Group != problem.NoGroup && data.Group(c.Group).MutuallyExclusive {
				if taken[c.Group] {
					continue
				}
				taken[c.Group] = true
			}
		}
		visits[slot] = append(visits[slot], loc)
		slot = (slot + 1) % len(visits)
	}

	seen := make(map[int]bool)
	sol := &Solution{}
	for slot = 0; slot < len(visits); slot++ {
		if len(visits[slot]) == 0 {
			continue
		}
		vt := data.VehicleType(types[slot])
		r, err := NewRouteFromTrips(data,
			[]Trip{NewTrip(visits[slot], vt.StartDepot, vt.EndDepot)}, types[slot])
		if err != nil {
			// All inputs were validated by construction above.
			panic(err)
		}
		for _, loc := range r.Visits() {
			seen[loc] = true
		}
		sol.routes = append(sol.routes, r)
	}
	sol.finish(data, seen)

	return sol
}

// slotTypes returns the vehicle type of each vehicle slot, slots ordered
// by type.
func slotTypes(data *problem.Data) []int {
	types := make([]int, 0, data.NumVehicles())
	var vt int
	for vt = 0; vt < data.NumVehicleTypes(); vt++ {
		var k int
		for k = 0; k < data.VehicleType(vt).NumAvailable; k++ {
			types = append(types, vt)
		}
	}

	return types
}

// finish derives the unassigned list and feasibility flags.
func (s *Solution) finish(data *problem.Data, seen map[int]bool) {
	var loc int
	for loc = data.NumDepots(); loc < data.NumLocations(); loc++ {
		if !seen[loc] {
			s.unassigned = append(s.unassigned, loc)
		} else {
			s.numClients++
		}
	}

	s.complete = true
	for _, loc = range s.unassigned {
		if data.Client(loc).Required {
			s.complete = false
			break
		}
	}

	s.groupFeasible = true
	var g int
	for g = 0; g < data.NumGroups(); g++ {
		grp := data.Group(g)
		var present int
		for _, loc = range grp.Clients {
			if seen[loc] {
				present++
			}
		}
		if grp.MutuallyExclusive && present > 1 {
			s.groupFeasible = false
		}
		if grp.Required && present == 0 {
			s.groupFeasible = false
			s.complete = false
		}
	}
}

// Routes returns the solution's routes. Callers must not mutate them.
func (s *Solution) Routes() []*Route { return s.routes }

// NumRoutes returns the number of non-empty routes.
func (s *Solution) NumRoutes() int { return len(s.routes) }

// NumClients returns the number of clients visited.
func (s *Solution) NumClients() int { return s.numClients }

// NumTrips returns the total trip count over all routes.
func (s *Solution) NumTrips() int {
	var n int
	for _, r := range s.routes {
		n += r.NumTrips()
	}

	return n
}

// Unassigned returns the client locations not visited by any route.
// Callers must not mutate the returned slice.
func (s *Solution) Unassigned() []int { return s.unassigned }

// IsComplete reports whether every required client and group is covered.
func (s *Solution) IsComplete() bool { return s.complete }

// IsGroupFeasible reports whether the group constraints hold: at most one
// member per mutually-exclusive group, at least one per required group.
func (s *Solution) IsGroupFeasible() bool { return s.groupFeasible }

// IsFeasible reports whether the solution is complete, group-feasible and
// every route is feasible.
func (s *Solution) IsFeasible() bool {
	if !s.complete || !s.groupFeasible {
		return false
	}
	for _, r := range s.routes {
		if !r.IsFeasible() {
			return false
		}
	}

	return true
}

// Distance returns the total travelled distance.
func (s *Solution) Distance() measure.Distance {
	var v measure.Distance
	for _, r := range s.routes {
		v = measure.AddDistance(v, r.Distance())
	}

	return v
}

// Duration returns the total route duration.
func (s *Solution) Duration() measure.Duration {
	var v measure.Duration
	for _, r := range s.routes {
		v = measure.AddDuration(v, r.Duration())
	}

	return v
}

// TimeWarp returns the total time-window violation.
func (s *Solution) TimeWarp() measure.Duration {
	var v measure.Duration
	for _, r := range s.routes {
		v = measure.AddDuration(v, r.TimeWarp())
	}

	return v
}

// ExcessLoad returns the total capacity violation summed over dimensions.
func (s *Solution) ExcessLoad() measure.Load {
	var v measure.Load
	for _, r := range s.routes {
		for dim := range r.excessLoad {
			v = measure.AddLoad(v, r.excessLoad[dim])
		}
	}

	return v
}

// ExcessDistance returns the total distance violation.
func (s *Solution) ExcessDistance() measure.Distance {
	var v measure.Distance
	for _, r := range s.routes {
		v = measure.AddDistance(v, r.ExcessDistance())
	}

	return v
}

// Prizes returns the total prize collected.
func (s *Solution) Prizes() measure.Cost {
	var v measure.Cost
	for _, r := range s.routes {
		v = measure.AddCost(v, r.Prizes())
	}

	return v
}

// UncollectedPrizes returns the total prize of unassigned clients. The
// instance is needed to look prizes up.
func (s *Solution) UncollectedPrizes(data *problem.Data) measure.Cost {
	var v measure.Cost
	for _, loc := range s.unassigned {
		v = measure.AddCost(v, data.Client(loc).Prize)
	}

	return v
}

// FixedVehicleCost returns the summed fixed cost of the used vehicles.
func (s *Solution) FixedVehicleCost() measure.Cost {
	var v measure.Cost
	for _, r := range s.routes {
		v = measure.AddCost(v, r.FixedVehicleCost())
	}

	return v
}

// ReloadCost returns the summed reload cost over all routes.
func (s *Solution) ReloadCost() measure.Cost {
	var v measure.Cost
	for _, r := range s.routes {
		v = measure.AddCost(v, r.ReloadCost())
	}

	return v
}

// Equal reports structural equality: same routes with the same visit
// sequences, trip boundaries and vehicle types, in the same order.
func (s *Solution) Equal(o *Solution) bool {
	if len(s.routes) != len(o.routes) {
		return false
	}
	for i := range s.routes {
		if !s.routes[i].Equal(o.routes[i]) {
			return false
		}
	}

	return true
}
