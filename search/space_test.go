// SPDX-License-Identifier: MIT

package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/vroute/rng"
)

func TestNewSearchSpace_Validation(t *testing.T) {
	data := pricedData(t)

	_, err := NewSearchSpace(data, make([][]int, 2))
	assert.ErrorIs(t, err, ErrInvalidNeighbourhood)

	withDepot := emptyNeighbours(data)
	withDepot[0] = []int{1}
	_, err = NewSearchSpace(data, withDepot)
	assert.ErrorIs(t, err, ErrInvalidNeighbourhood)

	selfLoop := emptyNeighbours(data)
	selfLoop[1] = []int{1}
	_, err = NewSearchSpace(data, selfLoop)
	assert.ErrorIs(t, err, ErrInvalidNeighbourhood)

	toDepot := emptyNeighbours(data)
	toDepot[1] = []int{0}
	_, err = NewSearchSpace(data, toDepot)
	assert.ErrorIs(t, err, ErrInvalidNeighbourhood)
}

func TestSearchSpace_PromisingFlagsFollowReverseLists(t *testing.T) {
	data := pricedData(t)
	nbs := emptyNeighbours(data)
	nbs[2] = []int{1}
	space, err := NewSearchSpace(data, nbs)
	require.NoError(t, err)

	assert.False(t, space.IsPromising(1))

	// Client 2 watches client 1, so touching 1 flags both.
	space.MarkPromising(1)
	assert.True(t, space.IsPromising(1))
	assert.True(t, space.IsPromising(2))
	assert.False(t, space.IsPromising(3))

	space.ClearPromising(2)
	assert.False(t, space.IsPromising(2))

	space.MarkAllPromising()
	var loc int
	for loc = data.NumDepots(); loc < data.NumLocations(); loc++ {
		assert.True(t, space.IsPromising(loc))
	}
}

func TestSearchSpace_ShuffleKeepsPermutations(t *testing.T) {
	data := pricedData(t)
	space, err := NewSearchSpace(data, emptyNeighbours(data))
	require.NoError(t, err)

	space.Shuffle(rng.New(5))

	assert.ElementsMatch(t, []int{1, 2, 3, 4}, space.clientOrder)
	assert.ElementsMatch(t, []int{0, 1}, space.routeOrder)
	assert.ElementsMatch(t, []int{0}, space.vehTypeOrder)
}
