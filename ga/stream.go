// ABOUTME: Seedable random stream shared by every stochastic operator of a run
// ABOUTME: PCG-backed draws plus SplitMix64 seed derivation for independent sub-streams

package ga

import "math/rand/v2"

// streamIncrement is the fixed PCG stream selector; only the seed varies between runs.
const streamIncrement = 0xda3e39cb94b95bdb

// Stream is the single source of randomness for one engine.
// It is not safe for concurrent use.
type Stream struct {
	seed uint64
	rng  *rand.Rand
}

// NewStream creates a stream whose draw sequence is fully determined by seed
func NewStream(seed uint64) *Stream {
	return &Stream{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, streamIncrement)),
	}
}

// Seed returns the seed the stream was created with
func (s *Stream) Seed() uint64 {
	return s.seed
}

// Float64 returns a uniform value in [0, 1)
func (s *Stream) Float64() float64 {
	return s.rng.Float64()
}

// IntN returns a uniform integer in [0, n). Panics if n <= 0.
func (s *Stream) IntN(n int) int {
	return s.rng.IntN(n)
}

// Bernoulli reports true with probability p.
// A draw is consumed even for p of 0 or 1 so the sequence does not depend on p.
func (s *Stream) Bernoulli(p float64) bool {
	return s.rng.Float64() < p
}

// Perm returns a random permutation of [0, n)
func (s *Stream) Perm(n int) []int {
	return s.rng.Perm(n)
}

// Shuffle permutes n elements through swap
func (s *Stream) Shuffle(n int, swap func(i, j int)) {
	s.rng.Shuffle(n, swap)
}

// Derive returns an independent stream for partition id.
// Two streams derived from the same parent seed and id produce identical sequences.
func (s *Stream) Derive(id uint64) *Stream {
	return NewStream(DeriveSeed(s.seed, id))
}

// DeriveSeed maps (base, id) to a well-mixed seed using the SplitMix64 finalizer
func DeriveSeed(base, id uint64) uint64 {
	z := base + (id+1)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB

	return z ^ (z >> 31)
}
