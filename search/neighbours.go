// SPDX-License-Identifier: MIT

package search

import (
	"math"
	"sort"

	"github.com/katalvlaran/vroute/measure"
	"github.com/katalvlaran/vroute/problem"
)

// NeighbourOptions tunes BuildNeighbours.
type NeighbourOptions struct {
	// NumNeighbours caps the granular neighbourhood size per client.
	NumNeighbours int

	// WeightWait scales the proximity surcharge for waiting that serving
	// the pair back to back would force.
	WeightWait float64

	// WeightTimeWarp scales the proximity surcharge for the time warp the
	// pair would force.
	WeightTimeWarp float64

	// Symmetric makes proximity the minimum over both visit orders.
	Symmetric bool
}

// DefaultNeighbourOptions returns the neighbourhood parameters used when
// nothing better is known about the instance.
func DefaultNeighbourOptions() NeighbourOptions {
	return NeighbourOptions{
		NumNeighbours:  60,
		WeightWait:     0.2,
		WeightTimeWarp: 1.0,
		Symmetric:      true,
	}
}

// farAway orders members of the same mutually-exclusive group after every
// genuine neighbour while keeping arithmetic finite.
const farAway = math.MaxFloat64 / 4

// BuildNeighbours computes a granular neighbourhood: for every client, up
// to NumNeighbours other clients ranked by proximity. Proximity blends the
// cheapest way any vehicle type travels the pair, the prize of the target,
// and surcharges for the wait and time warp that serving the pair back to
// back would force.
//
// The returned lists are indexed by location; depot rows are empty.
//
// Complexity: O(n² · (v + log n)) for n locations and v vehicle types.
func BuildNeighbours(data *problem.Data, opts NeighbourOptions) ([][]int, error) {
	if opts.NumNeighbours <= 0 {
		return nil, invalidNeighboursf("num_neighbours must be positive, have %d", opts.NumNeighbours)
	}
	if opts.WeightWait < 0 || opts.WeightTimeWarp < 0 {
		return nil, invalidNeighboursf("negative proximity weight")
	}

	type tariff struct {
		unitDist, unitDur measure.Cost
		profile           int
	}
	var tariffs []tariff
	var vt int
	for vt = 0; vt < data.NumVehicleTypes(); vt++ {
		t := tariff{
			unitDist: data.VehicleType(vt).UnitDistanceCost,
			unitDur:  data.VehicleType(vt).UnitDurationCost,
			profile:  data.VehicleType(vt).Profile,
		}
		seen := false
		for _, have := range tariffs {
			if have == t {
				seen = true
				break
			}
		}
		if !seen {
			tariffs = append(tariffs, t)
		}
	}

	// proximity of serving j directly after i.
	proximity := func(i, j int) float64 {
		ci, cj := data.Client(i), data.Client(j)
		edgeCost := math.Inf(1)
		minDur := measure.MaxDuration
		for _, t := range tariffs {
			d := float64(t.unitDist)*float64(data.DistanceMatrix(t.profile).At(i, j)) +
				float64(t.unitDur)*float64(data.DurationMatrix(t.profile).At(i, j))
			if d < edgeCost {
				edgeCost = d
			}
			if dur := data.DurationMatrix(t.profile).At(i, j); dur < minDur {
				minDur = dur
			}
		}
		p := edgeCost - float64(cj.Prize)
		if wait := cj.TwEarly - minDur - ci.ServiceDuration - ci.TwLate; wait > 0 {
			p += opts.WeightWait * float64(wait)
		}
		if warp := ci.TwEarly + ci.ServiceDuration + minDur - cj.TwLate; warp > 0 {
			p += opts.WeightTimeWarp * float64(warp)
		}

		return p
	}

	n := data.NumLocations()
	out := make([][]int, n)
	k := opts.NumNeighbours
	if max := data.NumClients() - 1; k > max {
		k = max
	}
	if k <= 0 {
		return out, nil
	}

	type ranked struct {
		loc  int
		prox float64
	}
	row := make([]ranked, 0, data.NumClients())
	var i, j int
	for i = data.NumDepots(); i < n; i++ {
		row = row[:0]
		for j = data.NumDepots(); j < n; j++ {
			if i == j {
				continue
			}
			var p float64
			ci, cj := data.Client(i), data.Client(j)
			if ci.Group != problem.NoGroup && ci.Group == cj.Group &&
				data.Group(ci.Group).MutuallyExclusive {
				p = farAway
			} else {
				p = proximity(i, j)
				if opts.Symmetric {
					if q := proximity(j, i); q < p {
						p = q
					}
				}
			}
			row = append(row, ranked{loc: j, prox: p})
		}
		sort.Slice(row, func(a, b int) bool {
			if row[a].prox != row[b].prox {
				return row[a].prox < row[b].prox
			}

			return row[a].loc < row[b].loc
		})
		out[i] = make([]int, k)
		for j = 0; j < k; j++ {
			out[i][j] = row[j].loc
		}
	}

	return out, nil
}
