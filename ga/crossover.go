// ABOUTME: Recombination operators producing two children from two parents
// ABOUTME: Single-point, two-point and uniform crossover applied with a probability

package ga

// Crossover combines two equal-length parents into two fresh children
type Crossover interface {
	Cross(a, b Chromosome, s *Stream) (Chromosome, Chromosome)
}

// NewCrossover builds the operator named by t
func NewCrossover(t CrossoverType) Crossover {
	switch t {
	case CrossTwoPoint:
		return TwoPoint{}
	case CrossUniform:
		return Uniform{}
	default:
		return SinglePoint{}
	}
}

// Recombine applies op with probability p; otherwise the children are exact copies of the parents
func Recombine(op Crossover, p float64, a, b Chromosome, s *Stream) (Chromosome, Chromosome) {
	if s.Bernoulli(p) {
		return op.Cross(a, b, s)
	}

	return a.Clone(), b.Clone()
}

// SinglePoint swaps tails after one cut drawn uniformly from [1, L-1]
type SinglePoint struct{}

// Cross implements Crossover
func (SinglePoint) Cross(a, b Chromosome, s *Stream) (Chromosome, Chromosome) {
	if len(a) < 2 {
		return a.Clone(), b.Clone()
	}

	cut := 1 + s.IntN(len(a)-1)

	return splice(a, b, cut, len(a))
}

// TwoPoint swaps the middle segment between cuts c1 < c2 drawn from [1, L-1].
// Chromosomes shorter than 3 genes fall back to a single cut.
type TwoPoint struct{}

// Cross implements Crossover
func (TwoPoint) Cross(a, b Chromosome, s *Stream) (Chromosome, Chromosome) {
	if len(a) < 3 {
		return SinglePoint{}.Cross(a, b, s)
	}

	c1 := 1 + s.IntN(len(a)-1)
	c2 := 1 + s.IntN(len(a)-2)
	if c2 >= c1 {
		c2++
	} else {
		c1, c2 = c2, c1
	}

	return splice(a, b, c1, c2)
}

// Uniform takes each position from either parent with probability 0.5
type Uniform struct{}

// Cross implements Crossover
func (Uniform) Cross(a, b Chromosome, s *Stream) (Chromosome, Chromosome) {
	x, y := a.Clone(), b.Clone()
	for i := range x {
		if s.Bernoulli(0.5) {
			x[i], y[i] = y[i], x[i]
		}
	}

	return x, y
}

// splice exchanges positions [from, to) between copies of a and b
func splice(a, b Chromosome, from, to int) (Chromosome, Chromosome) {
	x, y := a.Clone(), b.Clone()
	copy(x[from:to], b[from:to])
	copy(y[from:to], a[from:to])

	return x, y
}
