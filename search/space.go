// SPDX-License-Identifier: MIT

package search

import (
	"github.com/katalvlaran/vroute/bitset"
	"github.com/katalvlaran/vroute/problem"
	"github.com/katalvlaran/vroute/rng"
)

// SearchSpace bundles what the local search iterates over: the granular
// neighbourhood, the randomised visit orders, and the promising set that
// focuses later passes on clients near recent changes.
type SearchSpace struct {
	data       *problem.Data
	neighbours [][]int
	reverse    [][]int

	promising *bitset.DynamicBitset

	clientOrder  []int
	routeOrder   []int
	vehTypeOrder []int
}

// NewSearchSpace validates the neighbour lists and derives the reverse
// lists and visit orders. Neighbour lists are indexed by location; every
// entry must be a client and no client may neighbour itself.
func NewSearchSpace(data *problem.Data, neighbours [][]int) (*SearchSpace, error) {
	if len(neighbours) != data.NumLocations() {
		return nil, invalidNeighboursf("%d neighbour lists for %d locations",
			len(neighbours), data.NumLocations())
	}
	var loc int
	for loc = 0; loc < len(neighbours); loc++ {
		if data.IsDepot(loc) && len(neighbours[loc]) > 0 {
			return nil, invalidNeighboursf("depot %d has neighbours", loc)
		}
		for _, nb := range neighbours[loc] {
			if !data.IsClient(nb) {
				return nil, invalidNeighboursf("client %d: neighbour %d is not a client", loc, nb)
			}
			if nb == loc {
				return nil, invalidNeighboursf("client %d neighbours itself", loc)
			}
		}
	}

	s := &SearchSpace{
		data:       data,
		neighbours: neighbours,
		reverse:    make([][]int, data.NumLocations()),
		promising:  bitset.New(data.NumLocations()),
	}
	for loc = 0; loc < len(neighbours); loc++ {
		for _, nb := range neighbours[loc] {
			s.reverse[nb] = append(s.reverse[nb], loc)
		}
	}

	s.clientOrder = make([]int, data.NumClients())
	var i int
	for i = 0; i < len(s.clientOrder); i++ {
		s.clientOrder[i] = data.NumDepots() + i
	}
	s.routeOrder = make([]int, data.NumVehicles())
	for i = 0; i < len(s.routeOrder); i++ {
		s.routeOrder[i] = i
	}
	s.vehTypeOrder = make([]int, data.NumVehicleTypes())
	for i = 0; i < len(s.vehTypeOrder); i++ {
		s.vehTypeOrder[i] = i
	}

	return s, nil
}

// Neighbours returns the neighbour list of a location. Callers must not
// mutate it.
func (s *SearchSpace) Neighbours(loc int) []int { return s.neighbours[loc] }

// NeighbourLists returns all neighbour lists, indexed by location.
func (s *SearchSpace) NeighbourLists() [][]int { return s.neighbours }

// Shuffle randomises the client, route and vehicle-type visit orders.
func (s *SearchSpace) Shuffle(gen *rng.Generator) {
	gen.Shuffle(len(s.clientOrder), func(a, b int) {
		s.clientOrder[a], s.clientOrder[b] = s.clientOrder[b], s.clientOrder[a]
	})
	gen.Shuffle(len(s.routeOrder), func(a, b int) {
		s.routeOrder[a], s.routeOrder[b] = s.routeOrder[b], s.routeOrder[a]
	})
	gen.Shuffle(len(s.vehTypeOrder), func(a, b int) {
		s.vehTypeOrder[a], s.vehTypeOrder[b] = s.vehTypeOrder[b], s.vehTypeOrder[a]
	})
}

// MarkPromising flags a client and everyone who considers it a neighbour
// for retesting.
func (s *SearchSpace) MarkPromising(loc int) {
	s.promising.Set(loc)
	for _, back := range s.reverse[loc] {
		s.promising.Set(back)
	}
}

// MarkAllPromising flags every client for retesting.
func (s *SearchSpace) MarkAllPromising() {
	var loc int
	for loc = s.data.NumDepots(); loc < s.data.NumLocations(); loc++ {
		s.promising.Set(loc)
	}
}

// ClearPromising unflags a single client.
func (s *SearchSpace) ClearPromising(loc int) { s.promising.Reset(loc) }

// IsPromising reports whether the client is flagged for retesting.
func (s *SearchSpace) IsPromising(loc int) bool { return s.promising.Test(loc) }
