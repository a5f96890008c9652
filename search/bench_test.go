// SPDX-License-Identifier: MIT

package search_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/vroute/measure"
	"github.com/katalvlaran/vroute/problem"
	"github.com/katalvlaran/vroute/search"
	"github.com/katalvlaran/vroute/solution"
)

// gridInstance lays n unit-demand clients on a 10-wide grid under the
// Manhattan metric.
func gridInstance(b *testing.B, n int) *problem.Data {
	b.Helper()
	coordX := func(loc int) int {
		if loc == 0 {
			return 0
		}

		return (loc - 1) % 10
	}
	coordY := func(loc int) int {
		if loc == 0 {
			return 0
		}

		return (loc - 1) / 10
	}
	abs := func(v int) int {
		if v < 0 {
			return -v
		}

		return v
	}

	dist := make([][]measure.Distance, n+1)
	var i, j int
	for i = 0; i <= n; i++ {
		dist[i] = make([]measure.Distance, n+1)
		for j = 0; j <= n; j++ {
			dist[i][j] = measure.Distance(abs(coordX(i)-coordX(j)) + abs(coordY(i)-coordY(j)))
		}
	}

	cs := make([]problem.Client, n)
	for i = 0; i < n; i++ {
		cs[i] = problem.NewClient(measure.Coordinate(coordX(i+1)), measure.Coordinate(coordY(i+1)))
		cs[i].Delivery = []measure.Load{1}
	}
	dm, tm := buildMatrices(b, dist, 1)
	vt := problem.NewVehicleType(n/10+1, []measure.Load{10})
	data, err := problem.New(cs, []problem.Depot{problem.NewDepot(0, 0)},
		[]problem.VehicleType{vt},
		[]*measure.Matrix[measure.Distance]{dm},
		[]*measure.Matrix[measure.Duration]{tm}, nil, nil)
	require.NoError(b, err)

	return data
}

func BenchmarkRouteUpdate(b *testing.B) {
	data := gridInstance(b, 50)
	r := search.NewRoute(data, 0, 0)
	var loc int
	for loc = 1; loc <= 50; loc++ {
		r.Push(search.NewNode(loc))
	}

	b.ResetTimer()
	var i int
	for i = 0; i < b.N; i++ {
		r.Update()
	}
}

func BenchmarkBuildNeighbours(b *testing.B) {
	data := gridInstance(b, 100)
	opts := search.DefaultNeighbourOptions()

	b.ResetTimer()
	var i int
	for i = 0; i < b.N; i++ {
		_, err := search.BuildNeighbours(data, opts)
		require.NoError(b, err)
	}
}

func BenchmarkSearch(b *testing.B) {
	data := gridInstance(b, 50)
	ev := evaluator(b, data, 100, 100, 100)
	ls := newDriver(b, data, 1, search.PerturbationParams{})

	routes := make([][]int, 5)
	var loc int
	for loc = 1; loc <= 50; loc++ {
		routes[(loc-1)/10] = append(routes[(loc-1)/10], loc)
	}
	start, err := solution.FromRoutes(data, routes)
	require.NoError(b, err)

	b.ResetTimer()
	var i int
	for i = 0; i < b.N; i++ {
		_, err := ls.Search(start, ev)
		require.NoError(b, err)
	}
}
