// ABOUTME: Tests for the problem catalog and reference gaps
// ABOUTME: Covers lookup errors and gap arithmetic for both optimization senses

package problems

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamesSorted(t *testing.T) {
	assert.Equal(t, []string{NameDiet, NameFunction, NameKnapsack, NameTour}, Names())
}

func TestDefaultLookup(t *testing.T) {
	for _, name := range Names() {
		p, err := Default(name)
		require.NoError(t, err)
		assert.Equal(t, name, p.Name())
		assert.Positive(t, p.Length())
		assert.NotEmpty(t, p.Description())
	}
}

func TestDefaultUnknownProblem(t *testing.T) {
	_, err := Default("sudoku")
	require.ErrorIs(t, err, ErrUnknownProblem)
}

func TestReferenceGap(t *testing.T) {
	maxRef := Reference{Objective: 40, Maximize: true}
	assert.InDelta(t, 25.0, maxRef.Gap(30), 1e-12)
	assert.Equal(t, 0.0, maxRef.Gap(40))
	assert.Equal(t, 0.0, maxRef.Gap(45))

	minRef := Reference{Objective: 0.5}
	assert.InDelta(t, 10.0, minRef.Gap(0.55), 1e-9)
	assert.Equal(t, 0.0, minRef.Gap(0.4))

	assert.True(t, math.IsInf(Reference{Objective: 0}.Gap(1), 1))
	assert.True(t, math.IsNaN(Reference{Objective: math.NaN()}.Gap(1)))
}

func TestCostFitnessZeroSentinel(t *testing.T) {
	assert.Equal(t, ZeroCostFitness, costFitness(0))
	assert.Equal(t, 0.5, costFitness(2))
}
