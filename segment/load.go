// SPDX-License-Identifier: MIT

package segment

import "github.com/katalvlaran/vroute/measure"

// LoadSegment summarises the load profile of a consecutive stretch of
// visits in one load dimension.
//
// Delivery and Pickup are the totals over the stretch. Load is the maximum
// in-vehicle load attained anywhere in the stretch, assuming all deliveries
// are on board at its start and all pickups at its end. Excess accumulates
// capacity violations of trips already closed by Finalise.
type LoadSegment struct {
	delivery measure.Load
	pickup   measure.Load
	load     measure.Load
	excess   measure.Load
}

// NewLoadSegment returns the segment of a single visit with the given
// delivery and pickup amounts.
func NewLoadSegment(delivery, pickup measure.Load) LoadSegment {
	return LoadSegment{
		delivery: delivery,
		pickup:   pickup,
		load:     measure.MaxOf(delivery, pickup),
	}
}

// MergeLoad concatenates a and b (a immediately before b).
//
// The maximum in-vehicle load of the concatenation is attained either while
// still carrying b's deliveries through a's peak, or while carrying a's
// pickups through b's peak.
//
// Complexity: O(1). Associative.
func MergeLoad(a, b LoadSegment) LoadSegment {
	return LoadSegment{
		delivery: measure.AddLoad(a.delivery, b.delivery),
		pickup:   measure.AddLoad(a.pickup, b.pickup),
		load: measure.MaxOf(
			measure.AddLoad(a.load, b.delivery),
			measure.AddLoad(b.load, a.pickup),
		),
		excess: measure.AddLoad(a.excess, b.excess),
	}
}

// Finalise closes the stretch as a completed trip under the given vehicle
// capacity: the capacity violation moves into the accumulated excess and
// the open profile resets, ready to absorb the next trip.
func (s LoadSegment) Finalise(capacity measure.Load) LoadSegment {
	var over measure.Load
	if s.load > capacity {
		over = s.load - capacity
	}

	return LoadSegment{excess: measure.AddLoad(s.excess, over)}
}

// Delivery returns the total delivery amount of the open stretch.
func (s LoadSegment) Delivery() measure.Load { return s.delivery }

// Pickup returns the total pickup amount of the open stretch.
func (s LoadSegment) Pickup() measure.Load { return s.pickup }

// Load returns the maximum in-vehicle load of the open stretch.
func (s LoadSegment) Load() measure.Load { return s.load }

// ExcessLoad returns the total capacity violation: closed trips plus the
// open stretch evaluated against capacity.
func (s LoadSegment) ExcessLoad(capacity measure.Load) measure.Load {
	var over measure.Load
	if s.load > capacity {
		over = s.load - capacity
	}

	return measure.AddLoad(s.excess, over)
}
