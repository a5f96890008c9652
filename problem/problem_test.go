// SPDX-License-Identifier: MIT

package problem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/vroute/measure"
	"github.com/katalvlaran/vroute/problem"
)

// square builds an n×n matrix with off-diagonal value v.
func square[T interface{ measure.Distance | measure.Duration }](n int, v T) *measure.Matrix[T] {
	rows := make([][]T, n)
	var i, j int
	for i = 0; i < n; i++ {
		rows[i] = make([]T, n)
		for j = 0; j < n; j++ {
			if i != j {
				rows[i][j] = v
			}
		}
	}
	m, err := measure.MatrixFromRows(rows)
	if err != nil {
		panic(err)
	}

	return m
}

func smallInstance(t *testing.T) *problem.Data {
	t.Helper()
	clients := []problem.Client{
		problem.NewClient(1, 0),
		problem.NewClient(0, 1),
	}
	clients[0].Delivery = []measure.Load{3}
	clients[1].Delivery = []measure.Load{4}

	data, err := problem.New(
		clients,
		[]problem.Depot{problem.NewDepot(0, 0)},
		[]problem.VehicleType{problem.NewVehicleType(2, []measure.Load{10})},
		[]*measure.Matrix[measure.Distance]{square(3, measure.Distance(5))},
		[]*measure.Matrix[measure.Duration]{square(3, measure.Duration(5))},
		nil, nil,
	)
	require.NoError(t, err)

	return data
}

func TestNew_Counts(t *testing.T) {
	data := smallInstance(t)
	assert.Equal(t, 2, data.NumClients())
	assert.Equal(t, 1, data.NumDepots())
	assert.Equal(t, 3, data.NumLocations())
	assert.Equal(t, 2, data.NumVehicles())
	assert.Equal(t, 1, data.NumVehicleTypes())
	assert.Equal(t, 1, data.NumProfiles())
	assert.Equal(t, 1, data.NumLoadDimensions())
	assert.Equal(t, 0, data.NumGroups())
}

func TestNew_LocationIndexing(t *testing.T) {
	data := smallInstance(t)
	assert.True(t, data.IsDepot(0))
	assert.True(t, data.IsClient(1))
	assert.True(t, data.IsClient(2))
	assert.False(t, data.IsClient(3))

	c := data.Client(1)
	assert.Equal(t, measure.Load(3), c.Delivery[0])
	assert.Equal(t, measure.Load(0), c.Pickup[0], "nil pickup normalised to zeros")
	assert.Panics(t, func() { data.Client(0) })

	x, y := data.Location(2)
	assert.Equal(t, measure.Coordinate(0), x)
	assert.Equal(t, measure.Coordinate(1), y)
}

func TestNew_CentroidAndTimeWindows(t *testing.T) {
	data := smallInstance(t)
	x, y := data.Centroid()
	assert.InDelta(t, 0.5, x, 1e-9)
	assert.InDelta(t, 0.5, y, 1e-9)
	assert.False(t, data.HasTimeWindows())
}

func TestNew_Rejections(t *testing.T) {
	depot := []problem.Depot{problem.NewDepot(0, 0)}
	veh := []problem.VehicleType{problem.NewVehicleType(1, []measure.Load{10})}
	dist := []*measure.Matrix[measure.Distance]{square(1, measure.Distance(0))}
	dur := []*measure.Matrix[measure.Duration]{square(1, measure.Duration(0))}

	tests := []struct {
		name  string
		build func() error
	}{
		{"no depots", func() error {
			_, err := problem.New(nil, nil, veh, dist, dur, nil, nil)
			return err
		}},
		{"no vehicle types", func() error {
			_, err := problem.New(nil, depot, nil, dist, dur, nil, nil)
			return err
		}},
		{"matrix count mismatch", func() error {
			_, err := problem.New(nil, depot, veh, dist, nil, nil, nil)
			return err
		}},
		{"wrong matrix size", func() error {
			bad := []*measure.Matrix[measure.Distance]{square(2, measure.Distance(1))}
			_, err := problem.New(nil, depot, veh, bad, dur, nil, nil)
			return err
		}},
		{"inverted client window", func() error {
			c := problem.NewClient(0, 0)
			c.TwEarly, c.TwLate = 5, 1
			d2 := []*measure.Matrix[measure.Distance]{square(2, measure.Distance(1))}
			t2 := []*measure.Matrix[measure.Duration]{square(2, measure.Duration(1))}
			_, err := problem.New([]problem.Client{c}, depot, veh, d2, t2, nil, nil)
			return err
		}},
		{"bad start depot", func() error {
			v := problem.NewVehicleType(1, []measure.Load{10})
			v.StartDepot = 3
			_, err := problem.New(nil, depot, []problem.VehicleType{v}, dist, dur, nil, nil)
			return err
		}},
		{"bad profile", func() error {
			v := problem.NewVehicleType(1, []measure.Load{10})
			v.Profile = 2
			_, err := problem.New(nil, depot, []problem.VehicleType{v}, dist, dur, nil, nil)
			return err
		}},
		{"capacity dimension mismatch", func() error {
			v := problem.NewVehicleType(1, []measure.Load{10, 20})
			_, err := problem.New(nil, depot, []problem.VehicleType{problem.NewVehicleType(1, []measure.Load{10}), v}, dist, dur, nil, nil)
			return err
		}},
		{"reload depot out of range", func() error {
			v := problem.NewVehicleType(1, []measure.Load{10})
			v.ReloadDepots = []int{1}
			_, err := problem.New(nil, depot, []problem.VehicleType{v}, dist, dur, nil, nil)
			return err
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.build(), problem.ErrInvalidInstance)
		})
	}
}

func TestNew_GroupValidation(t *testing.T) {
	depot := []problem.Depot{problem.NewDepot(0, 0)}
	veh := []problem.VehicleType{problem.NewVehicleType(1, []measure.Load{10})}
	dist := []*measure.Matrix[measure.Distance]{square(3, measure.Distance(1))}
	dur := []*measure.Matrix[measure.Duration]{square(3, measure.Duration(1))}

	mk := func(mutate func(cs []problem.Client, gs []problem.ClientGroup)) error {
		cs := []problem.Client{problem.NewClient(0, 0), problem.NewClient(1, 1)}
		cs[0].Required, cs[0].Group = false, 0
		cs[1].Required, cs[1].Group = false, 0
		gs := []problem.ClientGroup{{Clients: []int{1, 2}, MutuallyExclusive: true}}
		mutate(cs, gs)
		_, err := problem.New(cs, depot, veh, dist, dur, gs, nil)
		return err
	}

	require.NoError(t, mk(func([]problem.Client, []problem.ClientGroup) {}))

	err := mk(func(cs []problem.Client, _ []problem.ClientGroup) { cs[0].Required = true })
	require.ErrorIs(t, err, problem.ErrInvalidInstance)

	err = mk(func(cs []problem.Client, _ []problem.ClientGroup) { cs[0].Group = problem.NoGroup })
	require.ErrorIs(t, err, problem.ErrInvalidInstance, "member must reference the group back")

	err = mk(func(_ []problem.Client, gs []problem.ClientGroup) { gs[0].Clients = []int{0, 1} })
	require.ErrorIs(t, err, problem.ErrInvalidInstance, "depot cannot be a group member")

	err = mk(func(_ []problem.Client, gs []problem.ClientGroup) { gs[0].Clients = []int{1} })
	require.ErrorIs(t, err, problem.ErrInvalidInstance, "exclusive group needs two members")
}

func TestNew_SameVehicleGroupValidation(t *testing.T) {
	depot := []problem.Depot{problem.NewDepot(0, 0)}
	veh := []problem.VehicleType{problem.NewVehicleType(1, []measure.Load{10})}
	dist := []*measure.Matrix[measure.Distance]{square(2, measure.Distance(1))}
	dur := []*measure.Matrix[measure.Duration]{square(2, measure.Duration(1))}
	cs := []problem.Client{problem.NewClient(0, 0)}

	_, err := problem.New(cs, depot, veh, dist, dur, nil,
		[]problem.SameVehicleGroup{{Clients: []int{1}}})
	require.NoError(t, err)

	_, err = problem.New(cs, depot, veh, dist, dur, nil,
		[]problem.SameVehicleGroup{{Clients: []int{0}}})
	require.ErrorIs(t, err, problem.ErrInvalidInstance)
}

func TestNew_StartLateClampedToTwLate(t *testing.T) {
	depot := []problem.Depot{problem.NewDepot(0, 0)}
	v := problem.NewVehicleType(1, []measure.Load{10})
	v.TwLate = 100
	dist := []*measure.Matrix[measure.Distance]{square(1, measure.Distance(0))}
	dur := []*measure.Matrix[measure.Duration]{square(1, measure.Duration(0))}

	data, err := problem.New(nil, depot, []problem.VehicleType{v}, dist, dur, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, measure.Duration(100), data.VehicleType(0).StartLate)
}

func TestHasTimeWindows(t *testing.T) {
	depot := []problem.Depot{problem.NewDepot(0, 0)}
	veh := []problem.VehicleType{problem.NewVehicleType(1, []measure.Load{10})}
	dist := []*measure.Matrix[measure.Distance]{square(2, measure.Distance(1))}
	dur := []*measure.Matrix[measure.Duration]{square(2, measure.Duration(1))}

	c := problem.NewClient(0, 0)
	c.TwLate = 50
	data, err := problem.New([]problem.Client{c}, depot, veh, dist, dur, nil, nil)
	require.NoError(t, err)
	assert.True(t, data.HasTimeWindows())
}
