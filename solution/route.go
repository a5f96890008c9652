// SPDX-License-Identifier: MIT

package solution

import (
	"fmt"
	"slices"

	"github.com/katalvlaran/vroute/measure"
	"github.com/katalvlaran/vroute/problem"
	"github.com/katalvlaran/vroute/segment"
)

// Trip is one depot-to-depot leg of a route: a start depot, a sequence of
// client visits, and an end depot. Interior trips end at a reload depot
// that doubles as the next trip's start.
type Trip struct {
	visits     []int
	startDepot int
	endDepot   int
}

// NewTrip returns a trip over the given client locations.
func NewTrip(visits []int, startDepot, endDepot int) Trip {
	return Trip{
		visits:     append([]int(nil), visits...),
		startDepot: startDepot,
		endDepot:   endDepot,
	}
}

// Visits returns the client locations in visit order. Callers must not
// mutate the returned slice.
func (t Trip) Visits() []int { return t.visits }

// StartDepot returns the depot the trip departs from.
func (t Trip) StartDepot() int { return t.startDepot }

// EndDepot returns the depot the trip returns to.
func (t Trip) EndDepot() int { return t.endDepot }

// Len returns the number of client visits.
func (t Trip) Len() int { return len(t.visits) }

// Route is an immutable vehicle route with statistics precomputed at
// construction.
type Route struct {
	trips       []Trip
	vehicleType int

	distance       measure.Distance
	excessDistance measure.Distance

	duration        measure.Duration
	timeWarp        measure.Duration
	overtime        measure.Duration
	serviceDuration measure.Duration
	travelDuration  measure.Duration
	waitDuration    measure.Duration
	startTime       measure.Duration

	excessLoad []measure.Load
	delivery   []measure.Load
	pickup     []measure.Load

	prizes     measure.Cost
	reloadCost measure.Cost

	fixedCost        measure.Cost
	unitDistanceCost measure.Cost
	unitDurationCost measure.Cost
	unitOvertimeCost measure.Cost

	centroidX, centroidY float64
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidSolution)...)
}

// NewRoute builds a single-trip route over the given client visits using
// vehicle type vt.
func NewRoute(data *problem.Data, visits []int, vt int) (*Route, error) {
	spec := data.VehicleType(vt)

	return NewRouteFromTrips(data, []Trip{NewTrip(visits, spec.StartDepot, spec.EndDepot)}, vt)
}

// NewRouteFromTrips builds a multi-trip route. The first trip must start
// at the vehicle's start depot, the last must end at its end depot,
// consecutive trips must share their boundary depot, every interior depot
// must be one of the type's reload depots, and the trip count must respect
// MaxReloads.
func NewRouteFromTrips(data *problem.Data, trips []Trip, vt int) (*Route, error) {
	if vt < 0 || vt >= data.NumVehicleTypes() {
		return nil, invalidf("vehicle type %d out of range", vt)
	}
	spec := data.VehicleType(vt)
	if len(trips) == 0 {
		return nil, invalidf("route needs at least one trip")
	}
	if len(trips) > spec.MaxReloads+1 {
		return nil, invalidf("%d trips exceed max_reloads %d", len(trips), spec.MaxReloads)
	}
	if trips[0].startDepot != spec.StartDepot {
		return nil, invalidf("first trip starts at depot %d, vehicle type starts at %d",
			trips[0].startDepot, spec.StartDepot)
	}
	if trips[len(trips)-1].endDepot != spec.EndDepot {
		return nil, invalidf("last trip ends at depot %d, vehicle type ends at %d",
			trips[len(trips)-1].endDepot, spec.EndDepot)
	}
	var k int
	for k = 0; k < len(trips); k++ {
		if k+1 < len(trips) {
			if trips[k].endDepot != trips[k+1].startDepot {
				return nil, invalidf("trip %d ends at depot %d but trip %d starts at %d",
					k, trips[k].endDepot, k+1, trips[k+1].startDepot)
			}
			if !slices.Contains(spec.ReloadDepots, trips[k].endDepot) {
				return nil, invalidf("depot %d is not a reload depot of vehicle type %d",
					trips[k].endDepot, vt)
			}
		}
		for _, loc := range trips[k].visits {
			if !data.IsClient(loc) {
				return nil, invalidf("visit %d is not a client", loc)
			}
		}
	}

	r := &Route{
		trips:            trips,
		vehicleType:      vt,
		fixedCost:        spec.FixedCost,
		unitDistanceCost: spec.UnitDistanceCost,
		unitDurationCost: spec.UnitDurationCost,
		unitOvertimeCost: spec.UnitOvertimeCost,
	}
	r.computeStatistics(data)

	return r, nil
}

// clientDurationSegment returns the schedule segment of a single client.
func clientDurationSegment(c *problem.Client) segment.DurationSegment {
	return segment.NewDurationSegment(c.ServiceDuration, c.TwEarly, c.TwLate, c.ReleaseTime)
}

// computeStatistics folds the segment algebra over the visit sequence.
func (r *Route) computeStatistics(data *problem.Data) {
	spec := data.VehicleType(r.vehicleType)
	dist := data.DistanceMatrix(spec.Profile)
	dur := data.DurationMatrix(spec.Profile)
	dims := data.NumLoadDimensions()

	start := data.Depot(spec.StartDepot)
	ds := segment.NewDurationSegment(0,
		measure.MaxOf(spec.TwEarly, start.TwEarly),
		measure.MinOf(spec.StartLate, start.TwLate),
		0)

	loads := make([]segment.LoadSegment, dims)
	r.excessLoad = make([]measure.Load, dims)
	r.delivery = make([]measure.Load, dims)
	r.pickup = make([]measure.Load, dims)
	var dim int
	for dim = 0; dim < dims; dim++ {
		loads[dim] = segment.NewLoadSegment(spec.InitialLoad[dim], 0)
	}

	var clients int
	prev := spec.StartDepot
	var k int
	for k = 0; k < len(r.trips); k++ {
		trip := &r.trips[k]
		for _, loc := range trip.visits {
			c := data.Client(loc)
			edge := dur.At(prev, loc)
			r.distance = measure.AddDistance(r.distance, dist.At(prev, loc))
			r.travelDuration = measure.AddDuration(r.travelDuration, edge)
			r.serviceDuration = measure.AddDuration(r.serviceDuration, c.ServiceDuration)
			r.prizes = measure.AddCost(r.prizes, c.Prize)
			r.centroidX += float64(c.X)
			r.centroidY += float64(c.Y)
			clients++

			ds = segment.MergeDuration(edge, ds, clientDurationSegment(c))
			for dim = 0; dim < dims; dim++ {
				r.delivery[dim] = measure.AddLoad(r.delivery[dim], c.Delivery[dim])
				r.pickup[dim] = measure.AddLoad(r.pickup[dim], c.Pickup[dim])
				loads[dim] = segment.MergeLoad(loads[dim], segment.NewLoadSegment(c.Delivery[dim], c.Pickup[dim]))
			}
			prev = loc
		}

		dep := data.Depot(trip.endDepot)
		edge := dur.At(prev, trip.endDepot)
		r.distance = measure.AddDistance(r.distance, dist.At(prev, trip.endDepot))
		r.travelDuration = measure.AddDuration(r.travelDuration, edge)

		if k+1 < len(r.trips) {
			// Interior boundary: the reload visit carries its own service
			// time and cost, then the trip closes.
			r.serviceDuration = measure.AddDuration(r.serviceDuration, dep.ServiceDuration)
			r.reloadCost = measure.AddCost(r.reloadCost, dep.ReloadCost)
			ds = segment.MergeDuration(edge, ds,
				segment.NewDurationSegment(dep.ServiceDuration, dep.TwEarly, dep.TwLate, 0))
			ds = ds.FinaliseBack()
			for dim = 0; dim < dims; dim++ {
				loads[dim] = loads[dim].Finalise(spec.Capacity[dim])
			}
		} else {
			end := segment.NewDurationSegment(0, dep.TwEarly, measure.MinOf(dep.TwLate, spec.TwLate), 0)
			ds = segment.MergeDuration(edge, ds, end)
		}
		prev = trip.endDepot
	}

	maxDuration := measure.AddDuration(spec.ShiftDuration, spec.MaxOvertime)
	r.duration = ds.Duration()
	r.timeWarp = ds.TimeWarp(maxDuration)
	r.startTime = ds.StartEarly()
	if over := r.duration - spec.ShiftDuration; over > 0 {
		r.overtime = measure.MinOf(over, spec.MaxOvertime)
	}
	r.waitDuration = r.duration - r.travelDuration - r.serviceDuration
	if r.waitDuration < 0 {
		r.waitDuration = 0
	}
	for dim = 0; dim < dims; dim++ {
		r.excessLoad[dim] = loads[dim].ExcessLoad(spec.Capacity[dim])
	}
	if r.distance > spec.MaxDistance {
		r.excessDistance = r.distance - spec.MaxDistance
	}
	if clients > 0 {
		r.centroidX /= float64(clients)
		r.centroidY /= float64(clients)
	}
}

// Trips returns the route's trips. Callers must not mutate them.
func (r *Route) Trips() []Trip { return r.trips }

// NumTrips returns the number of trips.
func (r *Route) NumTrips() int { return len(r.trips) }

// Visits returns all client locations in visit order across trips.
func (r *Route) Visits() []int {
	var out []int
	for k := range r.trips {
		out = append(out, r.trips[k].visits...)
	}

	return out
}

// NumClients returns the number of client visits.
func (r *Route) NumClients() int {
	var n int
	for k := range r.trips {
		n += len(r.trips[k].visits)
	}

	return n
}

// VehicleType returns the index of the route's vehicle type.
func (r *Route) VehicleType() int { return r.vehicleType }

// Distance returns the total travelled distance.
func (r *Route) Distance() measure.Distance { return r.distance }

// ExcessDistance returns the distance beyond the vehicle's bound.
func (r *Route) ExcessDistance() measure.Distance { return r.excessDistance }

// Duration returns the total route duration excluding inter-trip idle.
func (r *Route) Duration() measure.Duration { return r.duration }

// TimeWarp returns the accumulated time-window violation.
func (r *Route) TimeWarp() measure.Duration { return r.timeWarp }

// Overtime returns the duration beyond the shift, capped at MaxOvertime.
func (r *Route) Overtime() measure.Duration { return r.overtime }

// ServiceDuration returns the total service time.
func (r *Route) ServiceDuration() measure.Duration { return r.serviceDuration }

// TravelDuration returns the total travel time.
func (r *Route) TravelDuration() measure.Duration { return r.travelDuration }

// WaitDuration returns the total in-trip waiting time.
func (r *Route) WaitDuration() measure.Duration { return r.waitDuration }

// StartTime returns the earliest departure time that attains the route's
// duration and warp.
func (r *Route) StartTime() measure.Duration { return r.startTime }

// Delivery returns the total delivery amount in the given dimension.
func (r *Route) Delivery(dim int) measure.Load { return r.delivery[dim] }

// Pickup returns the total pickup amount in the given dimension.
func (r *Route) Pickup(dim int) measure.Load { return r.pickup[dim] }

// ExcessLoad returns the capacity violation in the given dimension.
func (r *Route) ExcessLoad(dim int) measure.Load { return r.excessLoad[dim] }

// Prizes returns the total prize collected.
func (r *Route) Prizes() measure.Cost { return r.prizes }

// ReloadCost returns the total reload cost.
func (r *Route) ReloadCost() measure.Cost { return r.reloadCost }

// FixedVehicleCost returns the vehicle type's fixed cost.
func (r *Route) FixedVehicleCost() measure.Cost { return r.fixedCost }

// UnitDistanceCost returns the vehicle type's cost per distance unit.
func (r *Route) UnitDistanceCost() measure.Cost { return r.unitDistanceCost }

// UnitDurationCost returns the vehicle type's cost per duration unit.
func (r *Route) UnitDurationCost() measure.Cost { return r.unitDurationCost }

// UnitOvertimeCost returns the vehicle type's cost per overtime unit.
func (r *Route) UnitOvertimeCost() measure.Cost { return r.unitOvertimeCost }

// Centroid returns the mean coordinates of the route's clients.
func (r *Route) Centroid() (x, y float64) { return r.centroidX, r.centroidY }

// IsFeasible reports whether the route violates no constraint.
func (r *Route) IsFeasible() bool {
	if r.timeWarp > 0 || r.excessDistance > 0 {
		return false
	}
	for _, v := range r.excessLoad {
		if v > 0 {
			return false
		}
	}

	return true
}

// Equal reports structural equality of visit sequences, trip boundaries
// and vehicle type.
func (r *Route) Equal(o *Route) bool {
	if r.vehicleType != o.vehicleType || len(r.trips) != len(o.trips) {
		return false
	}
	for k := range r.trips {
		if r.trips[k].startDepot != o.trips[k].startDepot ||
			r.trips[k].endDepot != o.trips[k].endDepot ||
			!slices.Equal(r.trips[k].visits, o.trips[k].visits) {
			return false
		}
	}

	return true
}
