// SPDX-License-Identifier: MIT

package problem

import (
	"math"

	"github.com/katalvlaran/vroute/measure"
)

// NoGroup marks a client that belongs to no mutually-exclusive group.
const NoGroup = -1

// Client describes a single client location. Build with NewClient and
// adjust fields before passing the value to New; the zero value has
// unusable time windows.
type Client struct {
	X, Y measure.Coordinate

	// Delivery and Pickup hold one amount per load dimension. nil is
	// normalised to all-zero at instance construction.
	Delivery []measure.Load
	Pickup   []measure.Load

	ServiceDuration measure.Duration
	TwEarly         measure.Duration
	TwLate          measure.Duration
	ReleaseTime     measure.Duration

	// Prize is collected when the client is visited. Optional clients
	// (Required == false) may be skipped at the cost of their prize.
	Prize    measure.Cost
	Required bool

	// Group is the index of the client's mutually-exclusive group, or
	// NoGroup.
	Group int

	Name string
}

// NewClient returns a required client at (x, y) with an unconstrained time
// window, no demand and no group.
func NewClient(x, y measure.Coordinate) Client {
	return Client{
		X:        x,
		Y:        y,
		TwLate:   measure.MaxDuration,
		Required: true,
		Group:    NoGroup,
	}
}

// Depot describes a depot location. Vehicles start and end at depots;
// depots listed in a vehicle type's ReloadDepots may also be visited
// mid-route to reload.
type Depot struct {
	X, Y measure.Coordinate

	TwEarly measure.Duration
	TwLate  measure.Duration

	// ServiceDuration is the time spent when reloading at this depot.
	ServiceDuration measure.Duration

	// ReloadCost is charged once per mid-route reload visit.
	ReloadCost measure.Cost
}

// NewDepot returns a depot at (x, y) open at all times.
func NewDepot(x, y measure.Coordinate) Depot {
	return Depot{X: x, Y: y, TwLate: measure.MaxDuration}
}

// VehicleType describes a group of identical vehicles. Build with
// NewVehicleType and adjust fields before passing the value to New.
type VehicleType struct {
	// NumAvailable is the number of vehicles of this type.
	NumAvailable int

	// Capacity holds one amount per load dimension.
	Capacity []measure.Load

	StartDepot int
	EndDepot   int

	FixedCost measure.Cost

	TwEarly       measure.Duration
	TwLate        measure.Duration
	ShiftDuration measure.Duration

	MaxDistance measure.Distance

	UnitDistanceCost measure.Cost
	UnitDurationCost measure.Cost

	// Profile selects the distance/duration matrix pair.
	Profile int

	// StartLate bounds how late the vehicle may leave its start depot;
	// clamped to TwLate at instance construction.
	StartLate measure.Duration

	// InitialLoad is already on board when the vehicle leaves the start
	// depot. nil is normalised to all-zero.
	InitialLoad []measure.Load

	// ReloadDepots lists the depots this type may reload at mid-route;
	// empty disables multi-trip routes. MaxReloads caps the number of
	// reload visits per route.
	ReloadDepots []int
	MaxReloads   int

	MaxOvertime      measure.Duration
	UnitOvertimeCost measure.Cost

	Name string
}

// NewVehicleType returns a type of numAvailable vehicles with the given
// capacities, based at depot 0, with unconstrained shift, distance and
// start-time bounds, unit distance cost 1, and no reload capability.
func NewVehicleType(numAvailable int, capacity []measure.Load) VehicleType {
	return VehicleType{
		NumAvailable:     numAvailable,
		Capacity:         capacity,
		TwLate:           measure.MaxDuration,
		ShiftDuration:    measure.MaxDuration,
		MaxDistance:      measure.MaxDistance,
		UnitDistanceCost: 1,
		StartLate:        measure.MaxDuration,
		MaxReloads:       math.MaxInt32,
	}
}

// ClientGroup is a set of clients with joint semantics: when
// MutuallyExclusive, at most one member may be routed; when Required,
// the group must be represented in a complete solution.
type ClientGroup struct {
	// Clients holds member location indices.
	Clients []int

	Required          bool
	MutuallyExclusive bool

	Name string
}

// SameVehicleGroup is a set of clients that must all be served by routes
// whose vehicle names are non-empty and equal.
type SameVehicleGroup struct {
	// Clients holds member location indices.
	Clients []int

	Name string
}
