// ABOUTME: Elitism policy carrying the best individuals into the next generation
// ABOUTME: Stable top-k selection with cached fitness preserved

package ga

import (
	"cmp"
	"slices"
)

// ApplyElitism returns the next population with the k best of old carried over unchanged.
// Elites come first. When next already has len(old) members, the elites replace its k worst
// instead of being prepended. Equal fitness keeps population order in both selections.
func ApplyElitism(old, next Population, k int) Population {
	if k <= 0 {
		return next
	}

	k = min(k, len(old))
	ranked := old.RankedIndices()

	elites := make(Population, k)
	for i, idx := range ranked[:k] {
		elites[i] = old[idx]
	}

	if len(next) < len(old) {
		return append(elites, next...)
	}

	// next is full: keep its best len(next)-k members in their original order
	worst := next.RankedIndices()[len(next)-k:]
	drop := make(map[int]bool, k)
	for _, idx := range worst {
		drop[idx] = true
	}

	out := slices.Clone(elites)
	for i, ind := range next {
		if !drop[i] {
			out = append(out, ind)
		}
	}

	return out
}

// sortByFitness orders a population best first; used for reporting snapshots
func sortByFitness(p Population) {
	slices.SortStableFunc(p, func(a, b Individual) int {
		return cmp.Compare(b.Fitness, a.Fitness)
	})
}
