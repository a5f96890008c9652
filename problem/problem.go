// SPDX-License-Identifier: MIT

package problem

import (
	"fmt"

	"github.com/katalvlaran/vroute/measure"
)

// Data is the immutable problem instance. Construct with New; all query
// methods are safe for concurrent use.
type Data struct {
	clients      []Client
	depots       []Depot
	vehicleTypes []VehicleType

	distances []*measure.Matrix[measure.Distance]
	durations []*measure.Matrix[measure.Duration]

	groups            []ClientGroup
	sameVehicleGroups []SameVehicleGroup

	numVehicles int
	numLoadDims int
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidInstance)...)
}

// New validates and assembles a problem instance.
//
// Locations are indexed depots-first: clients[i] becomes location
// len(depots)+i. Distance and duration matrices come in pairs, one pair
// per travel profile, each square over all locations with a zero diagonal.
//
// Returns an error wrapping ErrInvalidInstance when any invariant fails.
func New(
	clients []Client,
	depots []Depot,
	vehicleTypes []VehicleType,
	distances []*measure.Matrix[measure.Distance],
	durations []*measure.Matrix[measure.Duration],
	groups []ClientGroup,
	sameVehicleGroups []SameVehicleGroup,
) (*Data, error) {
	if len(depots) == 0 {
		return nil, invalidf("at least one depot is required")
	}
	if len(vehicleTypes) == 0 {
		return nil, invalidf("at least one vehicle type is required")
	}
	if len(distances) == 0 || len(distances) != len(durations) {
		return nil, invalidf("want equal non-zero distance/duration matrix counts, have %d/%d",
			len(distances), len(durations))
	}

	d := &Data{
		clients:           append([]Client(nil), clients...),
		depots:            append([]Depot(nil), depots...),
		vehicleTypes:      append([]VehicleType(nil), vehicleTypes...),
		distances:         distances,
		durations:         durations,
		groups:            append([]ClientGroup(nil), groups...),
		sameVehicleGroups: append([]SameVehicleGroup(nil), sameVehicleGroups...),
		numLoadDims:       len(vehicleTypes[0].Capacity),
	}

	if err := d.validateMatrices(); err != nil {
		return nil, err
	}
	if err := d.validateClients(); err != nil {
		return nil, err
	}
	if err := d.validateDepots(); err != nil {
		return nil, err
	}
	if err := d.validateVehicleTypes(); err != nil {
		return nil, err
	}
	if err := d.validateGroups(); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Data) validateMatrices() error {
	n := d.NumLocations()
	var p int
	for p = 0; p < len(d.distances); p++ {
		if d.distances[p].Size() != n || d.durations[p].Size() != n {
			return invalidf("profile %d: matrices must be %d×%d", p, n, n)
		}
		var i int
		for i = 0; i < n; i++ {
			if d.distances[p].At(i, i) != 0 || d.durations[p].At(i, i) != 0 {
				return invalidf("profile %d: non-zero diagonal at %d", p, i)
			}
		}
	}

	return nil
}

func (d *Data) validateClients() error {
	for i := range d.clients {
		c := &d.clients[i]
		if c.TwEarly > c.TwLate {
			return invalidf("client %d: tw_early %d > tw_late %d", i, c.TwEarly, c.TwLate)
		}
		if c.ServiceDuration < 0 || c.ReleaseTime < 0 {
			return invalidf("client %d: negative duration field", i)
		}
		if c.Prize < 0 {
			return invalidf("client %d: negative prize", i)
		}
		var err error
		if c.Delivery, err = d.normLoads(c.Delivery, "client delivery", i); err != nil {
			return err
		}
		if c.Pickup, err = d.normLoads(c.Pickup, "client pickup", i); err != nil {
			return err
		}
		if c.Group != NoGroup && (c.Group < 0 || c.Group >= len(d.groups)) {
			return invalidf("client %d: group %d out of range", i, c.Group)
		}
	}

	return nil
}

func (d *Data) validateDepots() error {
	for i := range d.depots {
		dep := &d.depots[i]
		if dep.TwEarly > dep.TwLate {
			return invalidf("depot %d: tw_early %d > tw_late %d", i, dep.TwEarly, dep.TwLate)
		}
		if dep.ServiceDuration < 0 {
			return invalidf("depot %d: negative service duration", i)
		}
		if dep.ReloadCost < 0 {
			return invalidf("depot %d: negative reload cost", i)
		}
	}

	return nil
}

func (d *Data) validateVehicleTypes() error {
	for i := range d.vehicleTypes {
		vt := &d.vehicleTypes[i]
		if vt.NumAvailable <= 0 {
			return invalidf("vehicle type %d: num_available must be positive", i)
		}
		d.numVehicles += vt.NumAvailable
		if vt.TwEarly > vt.TwLate {
			return invalidf("vehicle type %d: tw_early %d > tw_late %d", i, vt.TwEarly, vt.TwLate)
		}
		if vt.StartDepot < 0 || vt.StartDepot >= len(d.depots) ||
			vt.EndDepot < 0 || vt.EndDepot >= len(d.depots) {
			return invalidf("vehicle type %d: depot out of range", i)
		}
		if vt.Profile < 0 || vt.Profile >= len(d.distances) {
			return invalidf("vehicle type %d: profile %d out of range", i, vt.Profile)
		}
		if vt.FixedCost < 0 || vt.UnitDistanceCost < 0 || vt.UnitDurationCost < 0 || vt.UnitOvertimeCost < 0 {
			return invalidf("vehicle type %d: negative cost field", i)
		}
		if vt.ShiftDuration < 0 || vt.MaxOvertime < 0 || vt.MaxDistance < 0 {
			return invalidf("vehicle type %d: negative bound field", i)
		}
		if vt.MaxReloads < 0 {
			return invalidf("vehicle type %d: negative max_reloads", i)
		}
		if len(vt.Capacity) != d.numLoadDims {
			return invalidf("vehicle type %d: %d capacities, want %d", i, len(vt.Capacity), d.numLoadDims)
		}
		for dim, amount := range vt.Capacity {
			if amount < 0 {
				return invalidf("vehicle type %d: negative capacity in dimension %d", i, dim)
			}
		}
		var err error
		if vt.InitialLoad, err = d.normLoads(vt.InitialLoad, "vehicle type initial load", i); err != nil {
			return err
		}
		for _, dep := range vt.ReloadDepots {
			if dep < 0 || dep >= len(d.depots) {
				return invalidf("vehicle type %d: reload depot %d out of range", i, dep)
			}
		}
		if vt.StartLate > vt.TwLate {
			vt.StartLate = vt.TwLate
		}
	}

	return nil
}

func (d *Data) validateGroups() error {
	for g := range d.groups {
		grp := &d.groups[g]
		if grp.Required && len(grp.Clients) == 0 {
			return invalidf("group %d: required but empty", g)
		}
		if grp.MutuallyExclusive && len(grp.Clients) < 2 {
			return invalidf("group %d: mutually exclusive with fewer than two members", g)
		}
		for _, loc := range grp.Clients {
			if loc < len(d.depots) || loc >= d.NumLocations() {
				return invalidf("group %d: member %d is not a client", g, loc)
			}
			c := &d.clients[loc-len(d.depots)]
			if grp.MutuallyExclusive {
				if c.Group != g {
					return invalidf("group %d: member %d does not reference the group back", g, loc)
				}
				if c.Required {
					return invalidf("group %d: member %d is required but the group is mutually exclusive", g, loc)
				}
			}
		}
	}
	for i := range d.clients {
		c := &d.clients[i]
		if c.Group == NoGroup {
			continue
		}
		loc := len(d.depots) + i
		found := false
		for _, member := range d.groups[c.Group].Clients {
			if member == loc {
				found = true
				break
			}
		}
		if !found {
			return invalidf("client %d: references group %d but is not a member", loc, c.Group)
		}
	}
	for g := range d.sameVehicleGroups {
		for _, loc := range d.sameVehicleGroups[g].Clients {
			if loc < len(d.depots) || loc >= d.NumLocations() {
				return invalidf("same-vehicle group %d: member %d is not a client", g, loc)
			}
		}
	}

	return nil
}

// normLoads pads a nil slice to the instance's load dimensionality and
// rejects wrong lengths and negative amounts.
func (d *Data) normLoads(loads []measure.Load, what string, idx int) ([]measure.Load, error) {
	if loads == nil {
		return make([]measure.Load, d.numLoadDims), nil
	}
	if len(loads) != d.numLoadDims {
		return nil, invalidf("%s %d: %d amounts, want %d", what, idx, len(loads), d.numLoadDims)
	}
	for dim, v := range loads {
		if v < 0 {
			return nil, invalidf("%s %d: negative amount in dimension %d", what, idx, dim)
		}
	}

	return loads, nil
}

// NumClients returns the number of clients.
func (d *Data) NumClients() int { return len(d.clients) }

// NumDepots returns the number of depots.
func (d *Data) NumDepots() int { return len(d.depots) }

// NumLocations returns depots plus clients.
func (d *Data) NumLocations() int { return len(d.depots) + len(d.clients) }

// NumVehicles returns the total vehicle count over all types.
func (d *Data) NumVehicles() int { return d.numVehicles }

// NumVehicleTypes returns the number of vehicle types.
func (d *Data) NumVehicleTypes() int { return len(d.vehicleTypes) }

// NumProfiles returns the number of travel profiles.
func (d *Data) NumProfiles() int { return len(d.distances) }

// NumLoadDimensions returns the number of load dimensions.
func (d *Data) NumLoadDimensions() int { return d.numLoadDims }

// Client returns the client at the given location index. Depot locations
// panic: the caller must dispatch on IsClient/IsDepot first.
func (d *Data) Client(location int) *Client {
	if location < len(d.depots) || location >= d.NumLocations() {
		panic(fmt.Sprintf("problem: location %d is not a client", location))
	}

	return &d.clients[location-len(d.depots)]
}

// Depot returns depot i.
func (d *Data) Depot(i int) *Depot { return &d.depots[i] }

// IsClient reports whether the location index refers to a client.
func (d *Data) IsClient(location int) bool {
	return location >= len(d.depots) && location < d.NumLocations()
}

// IsDepot reports whether the location index refers to a depot.
func (d *Data) IsDepot(location int) bool {
	return location >= 0 && location < len(d.depots)
}

// VehicleType returns vehicle type i.
func (d *Data) VehicleType(i int) *VehicleType { return &d.vehicleTypes[i] }

// DistanceMatrix returns the distance matrix of the given profile.
func (d *Data) DistanceMatrix(profile int) *measure.Matrix[measure.Distance] {
	return d.distances[profile]
}

// DurationMatrix returns the duration matrix of the given profile.
func (d *Data) DurationMatrix(profile int) *measure.Matrix[measure.Duration] {
	return d.durations[profile]
}

// NumGroups returns the number of client groups.
func (d *Data) NumGroups() int { return len(d.groups) }

// Group returns client group g.
func (d *Data) Group(g int) *ClientGroup { return &d.groups[g] }

// NumSameVehicleGroups returns the number of same-vehicle groups.
func (d *Data) NumSameVehicleGroups() int { return len(d.sameVehicleGroups) }

// SameVehicleGroup returns same-vehicle group g.
func (d *Data) SameVehicleGroup(g int) *SameVehicleGroup { return &d.sameVehicleGroups[g] }

// Location returns the coordinates of any location index.
func (d *Data) Location(i int) (x, y measure.Coordinate) {
	if i < len(d.depots) {
		return d.depots[i].X, d.depots[i].Y
	}
	c := &d.clients[i-len(d.depots)]

	return c.X, c.Y
}

// Centroid returns the mean client coordinates, or (0, 0) when the
// instance has no clients.
func (d *Data) Centroid() (x, y float64) {
	if len(d.clients) == 0 {
		return 0, 0
	}
	for i := range d.clients {
		x += float64(d.clients[i].X)
		y += float64(d.clients[i].Y)
	}
	n := float64(len(d.clients))

	return x / n, y / n
}

// HasTimeWindows reports whether any client or depot constrains arrival
// times.
func (d *Data) HasTimeWindows() bool {
	for i := range d.clients {
		if d.clients[i].TwEarly > 0 || d.clients[i].TwLate < measure.MaxDuration {
			return true
		}
	}
	for i := range d.depots {
		if d.depots[i].TwEarly > 0 || d.depots[i].TwLate < measure.MaxDuration {
			return true
		}
	}

	return false
}
