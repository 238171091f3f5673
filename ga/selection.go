// ABOUTME: Parent selection strategies biased toward higher fitness
// ABOUTME: Tournament, roulette, rank, steady-state and uniform random sampling

package ga

import (
	"cmp"
	"math"
	"slices"
	"sort"
)

// rouletteOffset keeps the weakest individual selectable after shifting by the minimum
const rouletteOffset = 0.001

// Sampler returns the index of one selected parent
type Sampler func(s *Stream) int

// Selector prepares a sampler over one generation's fitness values.
// Preparation draws no randomness; every sampler call draws independently.
type Selector interface {
	Prepare(fitness []float64) Sampler
}

// NewSelector builds the selector named by cfg
func NewSelector(cfg SelectionConfig) Selector {
	switch cfg.Type {
	case SelectRoulette:
		return RouletteSelector{}
	case SelectRank:
		return RankSelector{}
	case SelectSteadyState:
		return SteadyStateSelector{Fraction: cfg.SteadyStateFraction}
	case SelectRandom:
		return RandomSelector{}
	default:
		return TournamentSelector{Size: cfg.TournamentSize, WithoutReplacement: cfg.WithoutReplacement}
	}
}

// TournamentSelector picks the fittest of Size uniformly drawn contenders.
// Ties go to the contender drawn first.
type TournamentSelector struct {
	Size               int
	WithoutReplacement bool
}

// Prepare implements Selector
func (t TournamentSelector) Prepare(fitness []float64) Sampler {
	n := len(fitness)
	size := max(1, min(t.Size, n))

	if t.WithoutReplacement {
		return func(s *Stream) int {
			contenders := s.Perm(n)[:size]
			best := contenders[0]
			for _, c := range contenders[1:] {
				if fitness[c] > fitness[best] {
					best = c
				}
			}

			return best
		}
	}

	return func(s *Stream) int {
		best := s.IntN(n)
		for range size - 1 {
			c := s.IntN(n)
			if fitness[c] > fitness[best] {
				best = c
			}
		}

		return best
	}
}

// RouletteSelector samples proportionally to fitness shifted so the minimum maps to a small positive weight
type RouletteSelector struct{}

// Prepare implements Selector
func (RouletteSelector) Prepare(fitness []float64) Sampler {
	low := slices.Min(fitness)

	weights := make([]float64, len(fitness))
	for i, f := range fitness {
		weights[i] = f - low + rouletteOffset
	}

	return cumulativeSampler(weights)
}

// RankSelector samples proportionally to rank: the worst has weight 1, the best weight N
type RankSelector struct{}

// Prepare implements Selector
func (RankSelector) Prepare(fitness []float64) Sampler {
	order := ascendingOrder(fitness)

	weights := make([]float64, len(fitness))
	for rank, idx := range order {
		weights[idx] = float64(rank + 1)
	}

	return cumulativeSampler(weights)
}

// SteadyStateSelector samples uniformly among the top Fraction of the population
type SteadyStateSelector struct {
	Fraction float64
}

// Prepare implements Selector
func (st SteadyStateSelector) Prepare(fitness []float64) Sampler {
	order := descendingOrder(fitness)

	top := int(math.Ceil(st.Fraction * float64(len(fitness))))
	top = max(1, min(top, len(fitness)))
	eligible := order[:top]

	return func(s *Stream) int {
		return eligible[s.IntN(len(eligible))]
	}
}

// RandomSelector ignores fitness
type RandomSelector struct{}

// Prepare implements Selector
func (RandomSelector) Prepare(fitness []float64) Sampler {
	n := len(fitness)

	return func(s *Stream) int {
		return s.IntN(n)
	}
}

// ascendingOrder returns indices sorted by fitness ascending; ties keep index order
func ascendingOrder(fitness []float64) []int {
	order := make([]int, len(fitness))
	for i := range order {
		order[i] = i
	}

	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(fitness[a], fitness[b])
	})

	return order
}

// descendingOrder returns indices sorted by fitness descending; ties keep index order
func descendingOrder(fitness []float64) []int {
	order := make([]int, len(fitness))
	for i := range order {
		order[i] = i
	}

	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(fitness[b], fitness[a])
	})

	return order
}

// cumulativeSampler draws index i with probability weights[i] / sum(weights)
func cumulativeSampler(weights []float64) Sampler {
	cumulative := make([]float64, len(weights))

	total := 0.0
	for i, w := range weights {
		total += w
		cumulative[i] = total
	}

	return func(s *Stream) int {
		target := s.Float64() * total
		i := sort.Search(len(cumulative), func(i int) bool { return cumulative[i] > target })

		return min(i, len(cumulative)-1)
	}
}
