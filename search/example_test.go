// SPDX-License-Identifier: MIT

package search_test

import (
	"fmt"

	"github.com/katalvlaran/vroute/cost"
	"github.com/katalvlaran/vroute/measure"
	"github.com/katalvlaran/vroute/problem"
	"github.com/katalvlaran/vroute/search"
	"github.com/katalvlaran/vroute/solution"
)

func ExampleLocalSearch() {
	check := func(err error) {
		if err != nil {
			panic(err)
		}
	}

	// Four unit-demand clients, one unit apart from everything else.
	const n = 5
	dRows := make([][]measure.Distance, n)
	tRows := make([][]measure.Duration, n)
	var i, j int
	for i = 0; i < n; i++ {
		dRows[i] = make([]measure.Distance, n)
		tRows[i] = make([]measure.Duration, n)
		for j = 0; j < n; j++ {
			if i != j {
				dRows[i][j] = 1
			}
		}
	}
	dm, err := measure.MatrixFromRows(dRows)
	check(err)
	tm, err := measure.MatrixFromRows(tRows)
	check(err)

	cs := make([]problem.Client, 4)
	for i = 0; i < len(cs); i++ {
		cs[i] = problem.NewClient(measure.Coordinate(i+1), 0)
		cs[i].Delivery = []measure.Load{1}
	}
	data, err := problem.New(cs, []problem.Depot{problem.NewDepot(0, 0)},
		[]problem.VehicleType{problem.NewVehicleType(1, []measure.Load{4})},
		[]*measure.Matrix[measure.Distance]{dm},
		[]*measure.Matrix[measure.Duration]{tm}, nil, nil)
	check(err)

	nbs, err := search.BuildNeighbours(data, search.DefaultNeighbourOptions())
	check(err)
	ls, err := search.New(data, nbs, search.PerturbationParams{}, 42)
	check(err)
	for _, nm := range [][2]int{{1, 0}, {2, 0}, {1, 1}} {
		op, err := search.NewExchange(nm[0], nm[1])
		check(err)
		check(ls.AddNodeOperator(op))
	}

	ev, err := cost.New([]measure.Cost{100}, 100, 100)
	check(err)
	start, err := solution.FromRoutes(data, [][]int{{1, 2, 3, 4}})
	check(err)

	got, err := ls.Search(start, ev)
	check(err)
	fmt.Println("routes:", got.NumRoutes())
	fmt.Println("distance:", got.Distance())
	// Output:
	// routes: 1
	// distance: 5
}
