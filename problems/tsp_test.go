// ABOUTME: Tests for the arc-activation tour problem
// ABOUTME: Penalty dominance over every feasible tour, reachability and weight validation

package problems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genetic-lab/ga"
)

// tourArcs closes the city order into a cycle
func tourArcs(order ...int) []ga.Arc {
	arcs := make([]ga.Arc, len(order))
	for i, from := range order {
		arcs[i] = ga.Arc{From: from, To: order[(i+1)%len(order)]}
	}

	return arcs
}

func TestTourOptimalCost(t *testing.T) {
	tsp := DefaultTour()

	cost := tsp.Cost(tourArcs(0, 1, 2, 4, 3))
	require.True(t, cost.Feasible())
	assert.InDelta(t, TourOptimum, cost.Distance, 1e-3)
	assert.Equal(t, 0.0, cost.Penalty)

	ref := tsp.Reference()
	assert.InDelta(t, TourOptimum, ref.Objective, 1e-3)
	assert.False(t, ref.Maximize)
}

func TestTourDetectsSubtours(t *testing.T) {
	tsp := DefaultTour()

	arcs := append(tourArcs(0, 1), tourArcs(2, 3, 4)...)
	cost := tsp.Cost(arcs)

	assert.Equal(t, 0.0, cost.DegreeDeviation)
	assert.False(t, cost.ArcCountMismatch)
	assert.True(t, cost.Disconnected)
	assert.False(t, cost.Feasible())
}

func TestTourDegreeAndCountViolations(t *testing.T) {
	tsp := DefaultTour()
	degree, _ := tsp.Weights()

	cost := tsp.Cost([]ga.Arc{{From: 0, To: 1}})
	assert.True(t, cost.ArcCountMismatch)
	assert.Equal(t, 8.0, cost.DegreeDeviation)
	assert.Greater(t, cost.Penalty, 8*degree)
}

func TestTourPenaltyDominance(t *testing.T) {
	tsp := DefaultTour()
	codec := tsp.Codec()

	// every feasible tour through city 0
	worstFeasible := 1e18
	rest := []int{1, 2, 3, 4}
	permute(rest, 0, func(p []int) {
		order := append([]int{0}, p...)
		c := codec.Encode(tourArcs(order...))
		worstFeasible = min(worstFeasible, tsp.Fitness(c))
	})

	infeasible := [][]ga.Arc{
		nil,
		{{From: 0, To: 1}},
		append(tourArcs(0, 1), tourArcs(2, 3, 4)...),
		append(tourArcs(0, 1, 2, 4, 3), ga.Arc{From: 1, To: 3}),
		{{From: 0, To: 1}, {From: 0, To: 2}, {From: 1, To: 3}, {From: 3, To: 4}, {From: 4, To: 0}},
	}

	for _, arcs := range infeasible {
		assert.Less(t, tsp.Evaluate(arcs), worstFeasible, "arcs %v", arcs)
	}

	s := ga.NewStream(3)
	for range 2000 {
		c := make(ga.Chromosome, codec.Length())
		for i := range c {
			c[i] = uint8(s.IntN(2))
		}

		if !tsp.Cost(codec.Decode(c)).Feasible() {
			require.Less(t, tsp.Fitness(c), worstFeasible)
		}
	}
}

func TestTourExplicitWeights(t *testing.T) {
	_, err := NewTSP(DefaultCities(), 1000, 10000)
	require.NoError(t, err)

	_, err = NewTSP(DefaultCities(), 10, 10000)
	require.ErrorIs(t, err, ErrPenaltyTooSmall)

	_, err = NewTSP(DefaultCities()[:2], 0, 0)
	require.ErrorIs(t, err, ErrInvalidProblem)
}

func TestTourZeroCostSentinel(t *testing.T) {
	same := []City{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	tsp, err := NewTSP(same, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, ZeroCostFitness, tsp.Evaluate(tourArcs(0, 1, 2)))
	assert.Less(t, tsp.Evaluate(nil), ZeroCostFitness)
}

func TestTourSummarizeOrder(t *testing.T) {
	tsp := DefaultTour()
	s := tsp.Summarize(tsp.Codec().Encode(tourArcs(0, 1, 2, 4, 3)))

	require.True(t, s.Feasible)
	assert.Contains(t, s.Details[1], "1 -> 2 -> 3 -> 5 -> 4 -> 1")
}
