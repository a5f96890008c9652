// SPDX-License-Identifier: MIT

package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/vroute/measure"
	"github.com/katalvlaran/vroute/problem"
	"github.com/katalvlaran/vroute/search"
)

// lineTable returns an n x n table with entry |i - j|.
func lineTable(n int) [][]measure.Distance {
	rows := make([][]measure.Distance, n)
	var i, j int
	for i = 0; i < n; i++ {
		rows[i] = make([]measure.Distance, n)
		for j = 0; j < n; j++ {
			d := i - j
			if d < 0 {
				d = -d
			}
			rows[i][j] = measure.Distance(d)
		}
	}

	return rows
}

func TestBuildNeighbours_SizeAndDepotRows(t *testing.T) {
	data := crossInstance(t)

	nbs, err := search.BuildNeighbours(data, search.DefaultNeighbourOptions())
	require.NoError(t, err)
	require.Len(t, nbs, data.NumLocations())

	assert.Empty(t, nbs[0], "depot row")
	var loc int
	for loc = 1; loc < data.NumLocations(); loc++ {
		// Capped at the other three clients.
		assert.Len(t, nbs[loc], 3)
		assert.NotContains(t, nbs[loc], 0)
		assert.NotContains(t, nbs[loc], loc)
	}
}

func TestBuildNeighbours_RanksCloserClientsFirst(t *testing.T) {
	cs := make([]problem.Client, 4)
	for i := range cs {
		cs[i] = problem.NewClient(measure.Coordinate(i+1), 0)
	}
	dm, tm := buildMatrices(t, lineTable(5), 0)
	data, err := problem.New(cs, []problem.Depot{problem.NewDepot(0, 0)},
		[]problem.VehicleType{problem.NewVehicleType(1, []measure.Load{4})},
		[]*measure.Matrix[measure.Distance]{dm},
		[]*measure.Matrix[measure.Duration]{tm}, nil, nil)
	require.NoError(t, err)

	opts := search.DefaultNeighbourOptions()
	nbs, err := search.BuildNeighbours(data, opts)
	require.NoError(t, err)

	// Client at x = 2 is one unit from both direct neighbours, two from
	// the far end of the line.
	assert.ElementsMatch(t, []int{1, 3}, nbs[2][:2])
	assert.Equal(t, 4, nbs[2][2])
}

func TestBuildNeighbours_MutuallyExclusiveMembersRankLast(t *testing.T) {
	cs := make([]problem.Client, 3)
	for i := range cs {
		cs[i] = problem.NewClient(measure.Coordinate(i+1), 0)
	}
	cs[0].Required, cs[0].Group = false, 0
	cs[1].Required, cs[1].Group = false, 0
	groups := []problem.ClientGroup{{Clients: []int{1, 2}, Required: true, MutuallyExclusive: true}}
	dm, tm := buildMatrices(t, lineTable(4), 0)
	data, err := problem.New(cs, []problem.Depot{problem.NewDepot(0, 0)},
		[]problem.VehicleType{problem.NewVehicleType(1, []measure.Load{3})},
		[]*measure.Matrix[measure.Distance]{dm},
		[]*measure.Matrix[measure.Duration]{tm}, groups, nil)
	require.NoError(t, err)

	opts := search.DefaultNeighbourOptions()
	opts.NumNeighbours = 1
	nbs, err := search.BuildNeighbours(data, opts)
	require.NoError(t, err)

	// Group members never shortlist each other.
	assert.Equal(t, []int{3}, nbs[1])
	assert.Equal(t, []int{3}, nbs[2])
	assert.Equal(t, []int{2}, nbs[3])
}

func TestBuildNeighbours_LateWindowsRankLater(t *testing.T) {
	cs := make([]problem.Client, 3)
	for i := range cs {
		cs[i] = problem.NewClient(measure.Coordinate(i), 1)
		cs[i].TwLate = 50
	}
	// Client 3 opens long after everyone else has closed.
	cs[2].TwEarly, cs[2].TwLate = 1000, 1050
	dm, tm := buildMatrices(t, uniformDist(4, 5), 0)
	data, err := problem.New(cs, []problem.Depot{problem.NewDepot(0, 0)},
		[]problem.VehicleType{problem.NewVehicleType(1, []measure.Load{3})},
		[]*measure.Matrix[measure.Distance]{dm},
		[]*measure.Matrix[measure.Duration]{tm}, nil, nil)
	require.NoError(t, err)

	opts := search.DefaultNeighbourOptions()
	opts.NumNeighbours = 1
	nbs, err := search.BuildNeighbours(data, opts)
	require.NoError(t, err)

	assert.Equal(t, []int{2}, nbs[1], "the compatible window wins")
}

func TestBuildNeighbours_RejectsBadOptions(t *testing.T) {
	data := crossInstance(t)

	opts := search.DefaultNeighbourOptions()
	opts.NumNeighbours = 0
	_, err := search.BuildNeighbours(data, opts)
	assert.ErrorIs(t, err, search.ErrInvalidNeighbourhood)

	opts = search.DefaultNeighbourOptions()
	opts.WeightWait = -0.5
	_, err = search.BuildNeighbours(data, opts)
	assert.ErrorIs(t, err, search.ErrInvalidNeighbourhood)
}
