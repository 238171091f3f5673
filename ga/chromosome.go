// ABOUTME: Chromosome, individual and population types for the genetic engine
// ABOUTME: Fixed-length gene strings with cached fitness and ranking helpers

// Package ga implements a generic genetic-algorithm optimization engine.
package ga

import (
	"cmp"
	"slices"
)

// Chromosome is a fixed-length string of gene symbols in [0, alphabet).
// Chromosomes stored in a population are never modified in place.
type Chromosome []uint8

// Clone returns an independent copy
func (c Chromosome) Clone() Chromosome {
	return slices.Clone(c)
}

// String renders the genes as digits, e.g. "0110"
func (c Chromosome) String() string {
	buf := make([]byte, len(c))
	for i, g := range c {
		if g < 10 {
			buf[i] = '0' + g
		} else {
			buf[i] = 'a' + g - 10
		}
	}

	return string(buf)
}

// Individual pairs a chromosome with its cached fitness
type Individual struct {
	Genes     Chromosome
	Fitness   float64
	Evaluated bool
}

// Population is an ordered collection of individuals
type Population []Individual

// Clone returns a deep copy of the population
func (p Population) Clone() Population {
	out := make(Population, len(p))
	for i, ind := range p {
		out[i] = Individual{Genes: ind.Genes.Clone(), Fitness: ind.Fitness, Evaluated: ind.Evaluated}
	}

	return out
}

// Fitness returns the cached fitness values in population order
func (p Population) Fitness() []float64 {
	out := make([]float64, len(p))
	for i := range p {
		out[i] = p[i].Fitness
	}

	return out
}

// BestIndex returns the index of the highest fitness; ties resolve to the lowest index
func (p Population) BestIndex() int {
	best := 0
	for i := 1; i < len(p); i++ {
		if p[i].Fitness > p[best].Fitness {
			best = i
		}
	}

	return best
}

// RankedIndices returns indices ordered by fitness descending; equal fitness keeps population order
func (p Population) RankedIndices() []int {
	idx := make([]int, len(p))
	for i := range idx {
		idx[i] = i
	}

	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(p[b].Fitness, p[a].Fitness)
	})

	return idx
}

// randomChromosome draws each gene uniformly from the alphabet
func randomChromosome(length, alphabet int, s *Stream) Chromosome {
	c := make(Chromosome, length)
	for i := range c {
		c[i] = uint8(s.IntN(alphabet))
	}

	return c
}
