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

// lineMatrices builds the matrix pair for n locations on a line at
// x = 0..n-1, with durations scaled from the distances.
func lineMatrices(t testing.TB, n int, durScale measure.Duration) (
	*measure.Matrix[measure.Distance], *measure.Matrix[measure.Duration]) {
	t.Helper()
	dRows := make([][]measure.Distance, n)
	tRows := make([][]measure.Duration, n)
	var i, j int
	for i = 0; i < n; i++ {
		dRows[i] = make([]measure.Distance, n)
		tRows[i] = make([]measure.Duration, n)
		for j = 0; j < n; j++ {
			d := i - j
			if d < 0 {
				d = -d
			}
			dRows[i][j] = measure.Distance(d)
			tRows[i][j] = durScale * measure.Duration(d)
		}
	}
	dm, err := measure.MatrixFromRows(dRows)
	require.NoError(t, err)
	tm, err := measure.MatrixFromRows(tRows)
	require.NoError(t, err)

	return dm, tm
}

// pricedData is a depot at the origin with four optional prize clients on
// a line and two reload-capable vehicles that each fit two of them. The
// flat tariffs keep every delta checkable by hand.
func pricedData(t testing.TB) *problem.Data {
	t.Helper()
	cs := make([]problem.Client, 4)
	var i int
	for i = 0; i < len(cs); i++ {
		cs[i] = problem.NewClient(measure.Coordinate(i+1), 0)
		cs[i].Delivery = []measure.Load{1}
		cs[i].Required = false
		cs[i].Prize = 50
	}
	dep := problem.NewDepot(0, 0)
	dep.ReloadCost = 2
	vt := problem.NewVehicleType(2, []measure.Load{2})
	vt.FixedCost = 7
	vt.ReloadDepots = []int{0}
	vt.MaxReloads = 2
	dm, tm := lineMatrices(t, 5, 0)
	data, err := problem.New(cs, []problem.Depot{dep}, []problem.VehicleType{vt},
		[]*measure.Matrix[measure.Distance]{dm},
		[]*measure.Matrix[measure.Duration]{tm}, nil, nil)
	require.NoError(t, err)

	return data
}

// namedFleetData has three clients, two vehicle types with the given
// names, and clients 1 and 2 bound to the same vehicle.
func namedFleetData(t testing.TB, name0, name1 string) *problem.Data {
	t.Helper()
	cs := make([]problem.Client, 3)
	var i int
	for i = 0; i < len(cs); i++ {
		cs[i] = problem.NewClient(measure.Coordinate(i+1), 0)
		cs[i].Delivery = []measure.Load{1}
	}
	vt0 := problem.NewVehicleType(2, []measure.Load{3})
	vt0.Name = name0
	vt1 := problem.NewVehicleType(1, []measure.Load{3})
	vt1.Name = name1
	dm, tm := lineMatrices(t, 4, 0)
	data, err := problem.New(cs, []problem.Depot{problem.NewDepot(0, 0)},
		[]problem.VehicleType{vt0, vt1},
		[]*measure.Matrix[measure.Distance]{dm},
		[]*measure.Matrix[measure.Duration]{tm}, nil,
		[]problem.SameVehicleGroup{{Clients: []int{1, 2}}})
	require.NoError(t, err)

	return data
}

func testEvaluator(t testing.TB, loadPen, twPen, distPen measure.Cost) *cost.Evaluator {
	t.Helper()
	ev, err := cost.New([]measure.Cost{loadPen}, twPen, distPen)
	require.NoError(t, err)

	return ev
}

func TestState_LoadUnloadRoundTrip(t *testing.T) {
	data := pricedData(t)
	st := newState(data)

	sol, err := solution.FromRoutes(data, [][]int{{1, 2}, {3}})
	require.NoError(t, err)
	st.load(sol)
	got, err := st.unload()
	require.NoError(t, err)
	assert.True(t, sol.Equal(got))

	multi, err := solution.FromTrips(data, []solution.RouteSpec{{
		Trips: []solution.Trip{
			solution.NewTrip([]int{1, 2}, 0, 0),
			solution.NewTrip([]int{3}, 0, 0),
		},
	}})
	require.NoError(t, err)
	st.load(multi)
	got, err = st.unload()
	require.NoError(t, err)
	assert.True(t, multi.Equal(got))
	assert.Equal(t, 2, got.NumTrips())
}

func TestState_LoadReusesMatchingSlots(t *testing.T) {
	data := pricedData(t)
	st := newState(data)

	sol, err := solution.FromRoutes(data, [][]int{{1, 2}, {3}})
	require.NoError(t, err)
	st.load(sol)

	require.True(t, routeEquals(st.routes[0], sol.Routes()[0]))
	require.True(t, routeEquals(st.routes[1], sol.Routes()[1]))
	assert.Same(t, st.node(1), st.routes[0].nodes[1])

	// A second load of the same solution leaves the mirror intact.
	st.load(sol)
	got, err := st.unload()
	require.NoError(t, err)
	assert.True(t, sol.Equal(got))
}

func TestInsertCost_MatchesReprice(t *testing.T) {
	data := pricedData(t)
	ev := testEvaluator(t, 5, 0, 0)
	st := newState(data)
	r := st.routes[0]
	r.Push(st.node(1))
	r.Push(st.node(2))
	r.Update()

	u, v := st.node(3), st.node(2)
	delta := insertCost(u, v, ev)
	// Two extra distance units, one unit of excess load, one prize earned.
	assert.Equal(t, measure.Cost(2+5-50), delta)

	pre := ev.PenalisedCost(r)
	r.Insert(v.Idx()+1, u)
	r.Update()
	assert.Equal(t, measure.AddCost(pre, delta), ev.PenalisedCost(r))
}

func TestInsertCost_ChargesFixedCostOnEmptyRoute(t *testing.T) {
	data := pricedData(t)
	ev := testEvaluator(t, 5, 0, 0)
	st := newState(data)
	r := st.routes[1]

	u := st.node(3)
	delta := insertCost(u, r.nodes[0], ev)
	// Out and back to x = 3, plus the vehicle now in use.
	assert.Equal(t, measure.Cost(6+7-50), delta)

	pre := ev.PenalisedCost(r)
	r.Insert(1, u)
	r.Update()
	assert.Equal(t, measure.AddCost(pre, delta), ev.PenalisedCost(r))
}

func TestInsertCost_RejectsBadArguments(t *testing.T) {
	data := pricedData(t)
	ev := testEvaluator(t, 5, 0, 0)
	st := newState(data)
	r := st.routes[0]
	r.Push(st.node(1))
	r.Update()

	assert.Equal(t, measure.MaxCost, insertCost(st.node(1), st.node(1), ev))
	assert.Equal(t, measure.MaxCost, insertCost(st.node(2), st.node(3), ev))
	assert.Equal(t, measure.MaxCost, insertCost(st.node(2), r.nodes[r.last()], ev))
}

func TestRemoveCost_MatchesReprice(t *testing.T) {
	data := pricedData(t)
	ev := testEvaluator(t, 5, 0, 0)
	st := newState(data)
	r := st.routes[0]
	r.Push(st.node(1))
	r.Push(st.node(2))
	r.Push(st.node(3))
	r.Update()

	u := st.node(2)
	delta := removeCost(u, ev)
	pre := ev.PenalisedCost(r)
	removeClient(u)
	r.Update()
	assert.Equal(t, measure.AddCost(pre, delta), ev.PenalisedCost(r))
	assert.Nil(t, u.route)
}

func TestRemoveCost_TakesStrandedReloadAlong(t *testing.T) {
	data := pricedData(t)
	ev := testEvaluator(t, 5, 0, 0)
	st := newState(data)
	r := st.routes[0]
	r.Push(st.node(1))
	r.Push(st.node(2))
	r.Push(NewNode(0))
	r.Push(st.node(3))
	r.Update()
	require.Equal(t, 2, r.NumTrips())

	u := st.node(3)
	delta := removeCost(u, ev)
	// Six distance units saved, the reload refunded, the prize forfeited.
	assert.Equal(t, measure.Cost(-6-2+50), delta)

	pre := ev.PenalisedCost(r)
	removeClient(u)
	r.Update()
	assert.Equal(t, measure.AddCost(pre, delta), ev.PenalisedCost(r))
	assert.Equal(t, 1, r.NumTrips())
	assert.Equal(t, 0, r.numReloads)
}

func TestRemoveCost_RefundsFixedCostOnLastClient(t *testing.T) {
	data := pricedData(t)
	ev := testEvaluator(t, 5, 0, 0)
	st := newState(data)
	r := st.routes[0]
	r.Push(st.node(1))
	r.Update()

	u := st.node(1)
	delta := removeCost(u, ev)
	assert.Equal(t, measure.Cost(-2-7+50), delta)

	pre := ev.PenalisedCost(r)
	removeClient(u)
	r.Update()
	assert.Equal(t, measure.AddCost(pre, delta), ev.PenalisedCost(r))
	assert.True(t, r.Empty())
}

func TestInplaceCost_MatchesReprice(t *testing.T) {
	data := pricedData(t)
	ev := testEvaluator(t, 5, 0, 0)
	st := newState(data)
	r := st.routes[0]
	r.Push(st.node(1))
	r.Push(st.node(2))
	r.Update()

	u, v := st.node(3), st.node(2)
	delta := inplaceCost(u, v, ev)
	assert.Equal(t, measure.Cost(2), delta)

	pre := ev.PenalisedCost(r)
	pos := v.Idx()
	r.Remove(pos)
	r.Insert(pos, u)
	r.Update()
	assert.Equal(t, measure.AddCost(pre, delta), ev.PenalisedCost(r))
}

func TestBestNewTrip_PricesReloadDetour(t *testing.T) {
	data := pricedData(t)
	ev := testEvaluator(t, 5, 0, 0)
	st := newState(data)
	r := st.routes[0]
	r.Push(st.node(1))
	r.Push(st.node(2))
	r.Update()

	anywhere := func(*Route) bool { return true }
	got, depot, delta := st.bestNewTrip(st.node(3), ev, anywhere)
	require.Same(t, r, got)
	assert.Equal(t, 0, depot)
	// Six extra distance units and the reload, against the prize.
	assert.Equal(t, measure.Cost(6+2-50), delta)

	pre := ev.PenalisedCost(r)
	r.Insert(r.last(), NewNode(depot))
	r.Insert(r.last(), st.node(3))
	r.Update()
	assert.Equal(t, measure.AddCost(pre, delta), ev.PenalisedCost(r))
	assert.Equal(t, 2, r.NumTrips())
}

func TestBestNewTrip_SkipsEmptyRoutes(t *testing.T) {
	data := pricedData(t)
	ev := testEvaluator(t, 5, 0, 0)
	st := newState(data)

	anywhere := func(*Route) bool { return true }
	got, _, delta := st.bestNewTrip(st.node(3), ev, anywhere)
	assert.Nil(t, got)
	assert.Equal(t, measure.MaxCost, delta)
}

func TestInsert_CommitsOnlyImprovingForOptional(t *testing.T) {
	prized := pricedData(t)
	ev := testEvaluator(t, 5, 0, 0)
	st := newState(prized)
	space, err := NewSearchSpace(prized, emptyNeighbours(prized))
	require.NoError(t, err)

	// Prize 50 dwarfs the detour, so the optional client enters.
	require.True(t, st.insert(st.node(1), space, ev, false))
	require.NotNil(t, st.node(1).route)

	// Without a prize the insertion never pays, but required clients go
	// in regardless.
	plain := namedFleetData(t, "van", "truck")
	st = newState(plain)
	space, err = NewSearchSpace(plain, emptyNeighbours(plain))
	require.NoError(t, err)
	require.False(t, st.insert(st.node(3), space, ev, false))
	require.Nil(t, st.node(3).route)
	require.True(t, st.insert(st.node(3), space, ev, true))
	require.NotNil(t, st.node(3).route)
}

// emptyNeighbours builds all-empty neighbour lists of the right shape.
func emptyNeighbours(data *problem.Data) [][]int {
	return make([][]int, data.NumLocations())
}

func TestCanMoveTo_SameVehicleGroups(t *testing.T) {
	data := namedFleetData(t, "van", "truck")
	st := newState(data)

	sol, err := solution.FromTrips(data, []solution.RouteSpec{{
		Trips: []solution.Trip{solution.NewTrip([]int{1, 2}, 0, 0)},
	}})
	require.NoError(t, err)
	st.load(sol)

	u := st.node(1)
	assert.True(t, st.canMoveTo(u, u.route))
	assert.True(t, st.canMoveTo(u, st.routes[1]), "same vehicle name")
	assert.False(t, st.canMoveTo(u, st.routes[2]), "different vehicle name")
	assert.True(t, st.canMoveTo(st.node(3), st.routes[2]), "ungrouped client")
}

func TestCanMoveTo_UnnamedVehiclesPinTheGroup(t *testing.T) {
	data := namedFleetData(t, "", "truck")
	st := newState(data)

	sol, err := solution.FromTrips(data, []solution.RouteSpec{{
		Trips: []solution.Trip{solution.NewTrip([]int{1, 2}, 0, 0)},
	}})
	require.NoError(t, err)
	st.load(sol)

	u := st.node(1)
	assert.False(t, st.canMoveTo(u, st.routes[1]))
	assert.False(t, st.canMoveTo(u, st.routes[2]))
}

func TestInsertCompatible_AnchorsToPlacedMembers(t *testing.T) {
	data := namedFleetData(t, "van", "truck")
	st := newState(data)

	sol, err := solution.FromTrips(data, []solution.RouteSpec{{
		Trips: []solution.Trip{solution.NewTrip([]int{1}, 0, 0)},
	}})
	require.NoError(t, err)
	st.load(sol)

	compat := st.insertCompatible(st.node(2))
	assert.True(t, compat(st.routes[0]), "anchor route")
	assert.True(t, compat(st.routes[1]), "same vehicle name")
	assert.False(t, compat(st.routes[2]))

	free := st.insertCompatible(st.node(3))
	assert.True(t, free(st.routes[2]))
}
