// SPDX-License-Identifier: MIT

package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/vroute/cost"
	"github.com/katalvlaran/vroute/measure"
	"github.com/katalvlaran/vroute/problem"
	"github.com/katalvlaran/vroute/solution"
)

// fleetData mixes two vehicle types, reloads, fixed costs and nonzero
// travel times over six clients on a line.
func fleetData(t testing.TB) *problem.Data {
	t.Helper()
	cs := make([]problem.Client, 6)
	var i int
	for i = 0; i < len(cs); i++ {
		cs[i] = problem.NewClient(measure.Coordinate(i+1), 0)
		cs[i].Delivery = []measure.Load{1}
	}
	dep := problem.NewDepot(0, 0)
	dep.ReloadCost = 1
	vt0 := problem.NewVehicleType(2, []measure.Load{3})
	vt0.FixedCost = 3
	vt0.ReloadDepots = []int{0}
	vt0.MaxReloads = 1
	vt1 := problem.NewVehicleType(1, []measure.Load{6})
	vt1.FixedCost = 5
	vt1.UnitDistanceCost = 2
	vt1.UnitDurationCost = 1
	dm, tm := lineMatrices(t, 7, 1)
	data, err := problem.New(cs, []problem.Depot{dep},
		[]problem.VehicleType{vt0, vt1},
		[]*measure.Matrix[measure.Distance]{dm},
		[]*measure.Matrix[measure.Duration]{tm}, nil, nil)
	require.NoError(t, err)

	return data
}

// assertingDriver wires the full operator suite so debug runs cover every
// delta computation.
func assertingDriver(t testing.TB, data *problem.Data, seed uint32, params PerturbationParams) *LocalSearch {
	t.Helper()
	nbs, err := BuildNeighbours(data, DefaultNeighbourOptions())
	require.NoError(t, err)
	ls, err := New(data, nbs, params, seed)
	require.NoError(t, err)

	pairs := [][2]int{{1, 0}, {2, 0}, {3, 0}, {1, 1}, {2, 1}, {2, 2}}
	for _, nm := range pairs {
		op, err := NewExchange(nm[0], nm[1])
		require.NoError(t, err)
		require.NoError(t, ls.AddNodeOperator(op))
	}
	if op := NewSwapTails(); op.Supports(data) {
		require.NoError(t, ls.AddNodeOperator(op))
	}
	if op := NewRelocateWithDepot(); op.Supports(data) {
		require.NoError(t, ls.AddNodeOperator(op))
	}
	if op := NewSwapStar(0.05); op.Supports(data) {
		require.NoError(t, ls.AddRouteOperator(op))
	}
	if op := NewSwapRoutes(); op.Supports(data) {
		require.NoError(t, ls.AddRouteOperator(op))
	}

	return ls
}

func TestSearch_DebugAssertsExactDeltas(t *testing.T) {
	debugAsserts = true
	defer func() { debugAsserts = false }()

	data := fleetData(t)
	ev, err := cost.New([]measure.Cost{20}, 20, 20)
	require.NoError(t, err)
	ls := assertingDriver(t, data, 17, PerturbationParams{})

	start, err := solution.FromRoutes(data, [][]int{{1, 4}, {2, 5}, {3, 6}})
	require.NoError(t, err)

	got, err := ls.Search(start, ev)
	require.NoError(t, err)
	assert.True(t, got.IsComplete())
	assert.LessOrEqual(t,
		ev.PenalisedSolutionCost(data, got),
		ev.PenalisedSolutionCost(data, start))
}

func TestRun_DebugAssertsExactDeltas(t *testing.T) {
	debugAsserts = true
	defer func() { debugAsserts = false }()

	data := fleetData(t)
	ev, err := cost.New([]measure.Cost{20}, 20, 20)
	require.NoError(t, err)
	ls := assertingDriver(t, data, 29, PerturbationParams{MinPerturbations: 1, MaxPerturbations: 3})

	sol, err := solution.FromRoutes(data, [][]int{{1, 4}, {2, 5}, {3, 6}})
	require.NoError(t, err)

	var round int
	for round = 0; round < 5; round++ {
		ls.Shuffle()
		sol, err = ls.Run(sol, ev, false)
		require.NoError(t, err)
		assert.True(t, sol.IsComplete(), "round %d", round)
	}
}

func TestIntensify_DebugAssertsExactDeltas(t *testing.T) {
	debugAsserts = true
	defer func() { debugAsserts = false }()

	data := fleetData(t)
	ev, err := cost.New([]measure.Cost{20}, 20, 20)
	require.NoError(t, err)
	ls := assertingDriver(t, data, 3, PerturbationParams{})

	start, err := solution.FromRoutes(data, [][]int{{1, 6}, {2, 5}, {3, 4}})
	require.NoError(t, err)

	got, err := ls.Intensify(start, ev)
	require.NoError(t, err)
	assert.True(t, got.IsComplete())
	assert.LessOrEqual(t,
		ev.PenalisedSolutionCost(data, got),
		ev.PenalisedSolutionCost(data, start))
}
