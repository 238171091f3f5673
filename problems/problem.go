// ABOUTME: Common problem interface, reference optima and the problem catalog
// ABOUTME: Each problem couples a codec with a penalty-augmented evaluator

// Package problems provides the benchmark optimization problems solved by the genetic engine.
package problems

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"genetic-lab/ga"
)

// Problem construction errors
var (
	ErrUnknownProblem  = errors.New("unknown problem")
	ErrInvalidProblem  = errors.New("invalid problem definition")
	ErrPenaltyTooSmall = errors.New("penalty weight does not dominate feasible objective")
)

const (
	// ZeroCostFitness is reported instead of dividing by a zero cost
	ZeroCostFitness = 1e9
	// EmptyMixFitness scores a diet chromosome whose ingredient shares are all zero
	EmptyMixFitness = 0.001
)

// Problem is a binary-encoded optimization problem the engine can solve
type Problem interface {
	Name() string
	Description() string
	// Length is the chromosome length
	Length() int
	// Fitness scores a chromosome; higher is better and infeasible always scores lower than feasible
	Fitness(c ga.Chromosome) float64
	// Summarize decodes a chromosome into a human-readable phenotype
	Summarize(c ga.Chromosome) Summary
	// Reference is the optimum supplied by an exact method
	Reference() Reference
}

// Summary describes a decoded solution in problem terms
type Summary struct {
	// Objective is the native objective: points, f(x), tour length or mix cost
	Objective float64
	Feasible  bool
	Details   []string
}

// Reference is an externally computed optimum used to judge solution quality
type Reference struct {
	Objective float64
	Maximize  bool
	Method    string
}

// Gap returns the relative distance to the reference in percent; 0 means optimal or better
func (r Reference) Gap(objective float64) float64 {
	diff := r.Objective - objective
	if !r.Maximize {
		diff = -diff
	}

	if diff <= 0 {
		return 0
	}

	if r.Objective == 0 {
		return math.Inf(1)
	}

	return 100 * diff / math.Abs(r.Objective)
}

// Problem names
const (
	NameDiet     = "diet"
	NameKnapsack = "knapsack"
	NameFunction = "function"
	NameTour     = "tsp"
)

var catalog = map[string]func() Problem{
	NameDiet:     func() Problem { return DefaultDiet() },
	NameKnapsack: func() Problem { return DefaultKnapsack() },
	NameFunction: func() Problem { return DefaultFunction() },
	NameTour:     func() Problem { return DefaultTour() },
}

// Names lists the catalog in sorted order
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Default returns the named problem with its built-in data
func Default(name string) (Problem, error) {
	build, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownProblem, name, Names())
	}

	return build(), nil
}

// costFitness turns a minimized cost into a maximized fitness
func costFitness(cost float64) float64 {
	if cost == 0 {
		return ZeroCostFitness
	}

	return 1 / cost
}
