// ABOUTME: Mutation operators applied in place to freshly created offspring
// ABOUTME: Bit-flip, random reset, swap, inversion and scramble with an optional gene cap

package ga

import "math"

// Mutator perturbs a child chromosome in place with rate p.
// Only offspring that are not yet part of a population are passed in.
type Mutator interface {
	Mutate(c Chromosome, p float64, s *Stream)
}

// NewMutator builds the operator named by cfg for the given alphabet
func NewMutator(cfg MutationConfig, alphabet int) Mutator {
	switch cfg.Type {
	case MutateRandomReset:
		return RandomReset{Alphabet: alphabet, PercentGenes: cfg.PercentGenes}
	case MutateSwap:
		return Swap{}
	case MutateInversion:
		return Inversion{}
	case MutateScramble:
		return Scramble{}
	default:
		return BitFlip{Alphabet: alphabet, PercentGenes: cfg.PercentGenes}
	}
}

// geneCap returns the maximum number of positions to mutate, or 0 for no cap
func geneCap(percent float64, length int) int {
	if percent <= 0 {
		return 0
	}

	return max(1, int(math.Ceil(percent*float64(length)/100)))
}

// forEachMutated calls fn for every position selected with probability p.
// With a cap, positions are visited in random order and selection stops once the cap is reached.
func forEachMutated(c Chromosome, p float64, percent float64, s *Stream, fn func(i int)) {
	limit := geneCap(percent, len(c))
	if limit == 0 {
		for i := range c {
			if s.Bernoulli(p) {
				fn(i)
			}
		}

		return
	}

	mutated := 0
	for _, i := range s.Perm(len(c)) {
		if mutated == limit {
			return
		}

		if s.Bernoulli(p) {
			fn(i)
			mutated++
		}
	}
}

// BitFlip flips each selected gene; for alphabets above 2 it moves to a different symbol uniformly
type BitFlip struct {
	Alphabet     int
	PercentGenes float64
}

// Mutate implements Mutator
func (m BitFlip) Mutate(c Chromosome, p float64, s *Stream) {
	if m.Alphabet < 2 {
		return
	}

	forEachMutated(c, p, m.PercentGenes, s, func(i int) {
		if m.Alphabet == 2 {
			c[i] ^= 1

			return
		}

		c[i] = uint8((int(c[i]) + 1 + s.IntN(m.Alphabet-1)) % m.Alphabet)
	})
}

// RandomReset redraws each selected gene uniformly from the alphabet (it may keep its value)
type RandomReset struct {
	Alphabet     int
	PercentGenes float64
}

// Mutate implements Mutator
func (m RandomReset) Mutate(c Chromosome, p float64, s *Stream) {
	if m.Alphabet < 1 {
		return
	}

	forEachMutated(c, p, m.PercentGenes, s, func(i int) {
		c[i] = uint8(s.IntN(m.Alphabet))
	})
}

// Swap exchanges two distinct positions, once per chromosome with probability p
type Swap struct{}

// Mutate implements Mutator
func (Swap) Mutate(c Chromosome, p float64, s *Stream) {
	if !s.Bernoulli(p) || len(c) < 2 {
		return
	}

	i, j := distinctPair(len(c), s)
	c[i], c[j] = c[j], c[i]
}

// Inversion reverses a random segment, once per chromosome with probability p
type Inversion struct{}

// Mutate implements Mutator
func (Inversion) Mutate(c Chromosome, p float64, s *Stream) {
	if !s.Bernoulli(p) || len(c) < 2 {
		return
	}

	i, j := distinctPair(len(c), s)
	reverseSegment(c, min(i, j), max(i, j))
}

// Scramble shuffles a random segment, once per chromosome with probability p
type Scramble struct{}

// Mutate implements Mutator
func (Scramble) Mutate(c Chromosome, p float64, s *Stream) {
	if !s.Bernoulli(p) || len(c) < 2 {
		return
	}

	i, j := distinctPair(len(c), s)
	lo, hi := min(i, j), max(i, j)
	segment := c[lo : hi+1]
	s.Shuffle(len(segment), func(a, b int) {
		segment[a], segment[b] = segment[b], segment[a]
	})
}

// distinctPair draws two different positions in [0, n)
func distinctPair(n int, s *Stream) (int, int) {
	i := s.IntN(n)
	j := s.IntN(n - 1)
	if j >= i {
		j++
	}

	return i, j
}

// reverseSegment reverses c[start..end] inclusive
func reverseSegment(c Chromosome, start, end int) {
	for start < end {
		c[start], c[end] = c[end], c[start]
		start++
		end--
	}
}
