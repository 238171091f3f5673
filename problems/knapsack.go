// ABOUTME: 0/1 knapsack problem with a capacity penalty
// ABOUTME: Feasible subsets score their points, overweight subsets score a negative penalty

package problems

import (
	"fmt"
	"math"
	"strings"

	"genetic-lab/ga"
)

// Item is one candidate for the knapsack
type Item struct {
	Name   string  `toml:"name"`
	Points float64 `toml:"points"`
	Weight float64 `toml:"weight"`
}

// Knapsack selects items maximizing points without exceeding capacity
type Knapsack struct {
	items    []Item
	capacity float64
	// penalty is charged per unit of excess weight
	penalty float64
	codec   ga.Inclusion
	fitness ga.FitnessFunc
}

// KnapsackOptimum is the best point total for the default items (exhaustive search)
const KnapsackOptimum = 41

// DefaultItems returns the hiking-trip item list
func DefaultItems() []Item {
	return []Item{
		{Name: "cereal bar", Points: 6, Weight: 200},
		{Name: "coat", Points: 7, Weight: 400},
		{Name: "sneakers", Points: 3, Weight: 400},
		{Name: "phone", Points: 2, Weight: 100},
		{Name: "water", Points: 9, Weight: 1000},
		{Name: "sunscreen", Points: 5, Weight: 200},
		{Name: "lip balm", Points: 2, Weight: 30},
		{Name: "oxygen bottles", Points: 10, Weight: 3000},
		{Name: "camera", Points: 6, Weight: 500},
	}
}

// DefaultKnapsack returns the default items with capacity 5000
func DefaultKnapsack() *Knapsack {
	k, _ := NewKnapsack(DefaultItems(), 5000, 1)

	return k
}

// NewKnapsack builds a knapsack problem. penalty is the weight per unit of excess and must be positive.
func NewKnapsack(items []Item, capacity, penalty float64) (*Knapsack, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: knapsack needs at least one item", ErrInvalidProblem)
	}

	if capacity < 0 {
		return nil, fmt.Errorf("%w: negative knapsack capacity %g", ErrInvalidProblem, capacity)
	}

	if penalty <= 0 {
		return nil, fmt.Errorf("%w: knapsack penalty must be positive, got %g", ErrPenaltyTooSmall, penalty)
	}

	for _, it := range items {
		if it.Points < 0 || it.Weight < 0 {
			return nil, fmt.Errorf("%w: item %q has negative points or weight", ErrInvalidProblem, it.Name)
		}
	}

	k := &Knapsack{
		items:    append([]Item(nil), items...),
		capacity: capacity,
		penalty:  penalty,
		codec:    ga.Inclusion{Items: len(items)},
	}
	k.fitness = ga.Compose(k.codec, k.Evaluate)

	return k, nil
}

// Name implements Problem
func (k *Knapsack) Name() string { return NameKnapsack }

// Description implements Problem
func (k *Knapsack) Description() string {
	return fmt.Sprintf("0/1 knapsack: %d items, capacity %g", len(k.items), k.capacity)
}

// Length implements Problem
func (k *Knapsack) Length() int { return k.codec.Length() }

// Capacity returns the weight limit
func (k *Knapsack) Capacity() float64 { return k.capacity }

// Totals sums points and weight of the selected items
func (k *Knapsack) Totals(selected []bool) (points, weight float64) {
	for i, in := range selected {
		if in {
			points += k.items[i].Points
			weight += k.items[i].Weight
		}
	}

	return points, weight
}

// Evaluate scores a selection. Feasible selections score their points (>= 0);
// overweight selections score -penalty*excess (< 0), whatever their points, so any
// positive penalty keeps every infeasible selection below every feasible one.
func (k *Knapsack) Evaluate(selected []bool) float64 {
	points, weight := k.Totals(selected)
	if excess := weight - k.capacity; excess > 0 {
		return -k.penalty * excess
	}

	return points
}

// Fitness implements Problem
func (k *Knapsack) Fitness(c ga.Chromosome) float64 {
	return k.fitness(c)
}

// Summarize implements Problem
func (k *Knapsack) Summarize(c ga.Chromosome) Summary {
	selected := k.codec.Decode(c)
	points, weight := k.Totals(selected)

	var names []string
	for i, in := range selected {
		if in {
			names = append(names, k.items[i].Name)
		}
	}

	return Summary{
		Objective: points,
		Feasible:  weight <= k.capacity,
		Details: []string{
			fmt.Sprintf("items: %s", strings.Join(names, ", ")),
			fmt.Sprintf("points: %g", points),
			fmt.Sprintf("weight: %g / %g", weight, k.capacity),
		},
	}
}

// maxEnumerableItems bounds the exhaustive reference search
const maxEnumerableItems = 20

// Reference implements Problem. Item lists up to maxEnumerableItems are solved exhaustively;
// longer lists have no reference (NaN objective).
func (k *Knapsack) Reference() Reference {
	if len(k.items) > maxEnumerableItems {
		return Reference{Objective: math.NaN(), Maximize: true, Method: "none"}
	}

	best := 0.0
	selected := make([]bool, len(k.items))

	for mask := range 1 << len(k.items) {
		for i := range selected {
			selected[i] = mask&(1<<i) != 0
		}

		points, weight := k.Totals(selected)
		if weight <= k.capacity && points > best {
			best = points
		}
	}

	return Reference{Objective: best, Maximize: true, Method: "exhaustive search"}
}
