// ABOUTME: Convergence trace, per-generation snapshots and run results
// ABOUTME: Population statistics are computed with gonum/stat

package ga

import (
	"gonum.org/v1/gonum/stat"
)

// TracePoint records the best fitness of one generation
type TracePoint struct {
	Generation int
	Best       float64
}

// Trace is the append-only convergence history of a run, one point per generation
type Trace []TracePoint

// Values returns the best-fitness series
func (t Trace) Values() []float64 {
	out := make([]float64, len(t))
	for i, p := range t {
		out[i] = p.Best
	}

	return out
}

// NonDecreasing reports whether every point is at least the previous one
func (t Trace) NonDecreasing() bool {
	for i := 1; i < len(t); i++ {
		if t[i].Best < t[i-1].Best {
			return false
		}
	}

	return true
}

// Stats summarizes the fitness values of one generation
type Stats struct {
	Best   float64
	Worst  float64
	Mean   float64
	StdDev float64
}

// ComputeStats summarizes a non-empty fitness slice; StdDev is the sample standard deviation
func ComputeStats(fitness []float64) Stats {
	st := Stats{Best: fitness[0], Worst: fitness[0]}
	for _, f := range fitness[1:] {
		st.Best = max(st.Best, f)
		st.Worst = min(st.Worst, f)
	}

	st.Mean, st.StdDev = stat.MeanStdDev(fitness, nil)

	return st
}

// Snapshot is the observable state of one generation after evaluation
type Snapshot struct {
	Generation int
	Best       Individual
	BestEver   Individual
	Stats      Stats
	// Population is a best-first copy, only filled when WithPopulationSnapshots is set
	Population Population
}

// StopReason explains why a run terminated
type StopReason string

// Termination reasons
const (
	ReasonGenerationLimit StopReason = "generation limit reached"
	ReasonStagnation      StopReason = "no improvement within stagnation limit"
	ReasonAborted         StopReason = "aborted by caller"
)

// Result is the outcome of a terminated run
type Result struct {
	// Best is the fittest member of the final population
	Best Individual
	// BestEver is the fittest individual evaluated at any point of the run
	BestEver    Individual
	Trace       Trace
	Generations int
	Evaluations int
	Reason      StopReason
}
