// ABOUTME: Continuous single-variable maximization over a binary-encoded interval
// ABOUTME: Defaults to the multimodal f(x) = x*sin(10*pi*x) + 1 on [-1, 2]

package problems

import (
	"fmt"
	"math"
	"sync"

	"genetic-lab/ga"
)

// SinusoidMaximum is the global maximum of x*sin(10*pi*x)+1 on [-1, 2], near x = 1.8505
const SinusoidMaximum = 2.850274

// Sinusoid is the default multimodal objective
func Sinusoid(x float64) float64 {
	return x*math.Sin(10*math.Pi*x) + 1
}

// Function maximizes F over the interval decoded by the codec
type Function struct {
	F       func(float64) float64
	codec   ga.RealInterval
	label   string
	scan    sync.Once
	optimum float64
	fitness ga.FitnessFunc
}

// DefaultFunction returns the sinusoid on [-1, 2] with 14-bit resolution
func DefaultFunction() *Function {
	f, _ := NewFunction(Sinusoid, -1, 2, 14)

	return f
}

// NewFunction builds a maximization problem for f over [xmin, xmax] with the given bit resolution.
// The reference is the best value among all representable points.
func NewFunction(f func(float64) float64, xmin, xmax float64, bits int) (*Function, error) {
	codec := ga.RealInterval{Min: xmin, Max: xmax, Bits: bits}
	if err := codec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProblem, err)
	}

	if f == nil {
		return nil, fmt.Errorf("%w: objective function is required", ErrInvalidProblem)
	}

	fn := &Function{
		F:     f,
		codec: codec,
		label: fmt.Sprintf("maximize f(x) on [%g, %g] with %d bits", xmin, xmax, bits),
	}
	fn.fitness = ga.Compose(fn.codec, fn.Evaluate)

	return fn, nil
}

// Name implements Problem
func (fn *Function) Name() string { return NameFunction }

// Description implements Problem
func (fn *Function) Description() string { return fn.label }

// Length implements Problem
func (fn *Function) Length() int { return fn.codec.Length() }

// Decode returns the x value of a chromosome
func (fn *Function) Decode(c ga.Chromosome) float64 {
	return fn.codec.Decode(c)
}

// Evaluate scores a decoded x
func (fn *Function) Evaluate(x float64) float64 {
	return fn.F(x)
}

// Fitness implements Problem
func (fn *Function) Fitness(c ga.Chromosome) float64 {
	return fn.fitness(c)
}

// Summarize implements Problem
func (fn *Function) Summarize(c ga.Chromosome) Summary {
	x := fn.Decode(c)
	y := fn.F(x)

	return Summary{
		Objective: y,
		Feasible:  true,
		Details: []string{
			fmt.Sprintf("x: %.6f", x),
			fmt.Sprintf("f(x): %.6f", y),
		},
	}
}

// maxGridBits bounds the exhaustive reference scan
const maxGridBits = 20

// Reference implements Problem by scanning every representable x when the resolution allows it
func (fn *Function) Reference() Reference {
	if fn.codec.Bits > maxGridBits {
		return Reference{Objective: math.NaN(), Maximize: true, Method: "none"}
	}

	fn.scan.Do(func() {
		steps := uint64(1)<<uint(fn.codec.Bits) - 1
		best := math.Inf(-1)

		for d := uint64(0); d <= steps; d++ {
			x := fn.codec.Min + (fn.codec.Max-fn.codec.Min)*float64(d)/float64(steps)
			best = max(best, fn.F(x))
		}

		fn.optimum = best
	})

	return Reference{Objective: fn.optimum, Maximize: true, Method: "grid scan"}
}
