// ABOUTME: Traveling-salesman problem encoded as one activation gene per directed arc
// ABOUTME: Degree and sub-tour violations are penalized; reachability uses a gonum graph walk

package problems

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"genetic-lab/ga"
)

// TourOptimum is the shortest tour length through the default five cities
const TourOptimum = 217.2135

// maxEnumerableCities bounds the exhaustive reference search
const maxEnumerableCities = 9

// City is a named point in the plane
type City struct {
	Name string  `toml:"name"`
	X    float64 `toml:"x"`
	Y    float64 `toml:"y"`
}

// DefaultCities returns the five-city instance
func DefaultCities() []City {
	return []City{
		{Name: "1", X: 10, Y: 30},
		{Name: "2", X: 20, Y: 50},
		{Name: "3", X: 50, Y: 90},
		{Name: "4", X: 70, Y: 30},
		{Name: "5", X: 90, Y: 50},
	}
}

// TSP searches for a shortest closed tour visiting every city once
type TSP struct {
	cities        []City
	dist          [][]float64
	degreeWeight  float64
	subtourWeight float64
	feasibleBound float64
	codec         ga.ArcActivation
	candidateArcs []ga.Arc
	fitness       ga.FitnessFunc
}

// TourCost breaks a decoded arc set into distance and penalty terms
type TourCost struct {
	Distance         float64
	DegreeDeviation  float64
	ArcCountMismatch bool
	Disconnected     bool
	Penalty          float64
	Total            float64
}

// Feasible reports whether the arcs form one Hamiltonian cycle
func (c TourCost) Feasible() bool {
	return c.DegreeDeviation == 0 && !c.ArcCountMismatch && !c.Disconnected
}

// DefaultTour returns the five-city instance with derived penalty weights
func DefaultTour() *TSP {
	t, _ := NewTSP(DefaultCities(), 0, 0)

	return t
}

// NewTSP builds a tour problem. Zero weights are derived from the distance matrix;
// explicit weights must exceed the longest possible tour or ErrPenaltyTooSmall is returned.
func NewTSP(cities []City, degreeWeight, subtourWeight float64) (*TSP, error) {
	if len(cities) < 3 {
		return nil, fmt.Errorf("%w: a tour needs at least 3 cities, got %d", ErrInvalidProblem, len(cities))
	}

	n := len(cities)
	t := &TSP{
		cities: append([]City(nil), cities...),
		dist:   make([][]float64, n),
		codec:  ga.ArcActivation{Nodes: n},
	}

	for i := range n {
		t.dist[i] = make([]float64, n)
		for j := range n {
			t.dist[i][j] = math.Hypot(cities[i].X-cities[j].X, cities[i].Y-cities[j].Y)
		}
	}

	t.candidateArcs = t.codec.Arcs()
	t.feasibleBound = t.longestTourBound()

	var err error
	if t.degreeWeight, err = t.penaltyWeight("degree", degreeWeight); err != nil {
		return nil, err
	}

	if t.subtourWeight, err = t.penaltyWeight("subtour", subtourWeight); err != nil {
		return nil, err
	}

	t.fitness = ga.Compose(t.codec, t.Evaluate)

	return t, nil
}

// longestTourBound sums the n longest arcs; no tour of n arcs can be longer
func (t *TSP) longestTourBound() float64 {
	lengths := make([]float64, 0, len(t.candidateArcs))
	for _, a := range t.candidateArcs {
		lengths = append(lengths, t.dist[a.From][a.To])
	}

	slices.Sort(lengths)
	slices.Reverse(lengths)

	bound := 0.0
	for _, l := range lengths[:len(t.cities)] {
		bound += l
	}

	return bound
}

func (t *TSP) penaltyWeight(kind string, w float64) (float64, error) {
	if w == 0 {
		return t.feasibleBound + 1, nil
	}

	if w <= t.feasibleBound {
		return 0, fmt.Errorf("%w: %s weight %g must exceed the longest tour bound %.4f", ErrPenaltyTooSmall, kind, w, t.feasibleBound)
	}

	return w, nil
}

// Name implements Problem
func (t *TSP) Name() string { return NameTour }

// Description implements Problem
func (t *TSP) Description() string {
	return fmt.Sprintf("traveling salesman: %d cities, %d arc genes", len(t.cities), t.codec.Length())
}

// Length implements Problem
func (t *TSP) Length() int { return t.codec.Length() }

// Weights returns the degree and sub-tour penalty weights in use
func (t *TSP) Weights() (degree, subtour float64) {
	return t.degreeWeight, t.subtourWeight
}

// Codec returns the arc activation codec
func (t *TSP) Codec() ga.ArcActivation { return t.codec }

// Cost evaluates a set of active arcs
func (t *TSP) Cost(arcs []ga.Arc) TourCost {
	n := len(t.cities)
	out := make([]int, n)
	in := make([]int, n)

	var c TourCost
	for _, a := range arcs {
		c.Distance += t.dist[a.From][a.To]
		out[a.From]++
		in[a.To]++
	}

	for i := range n {
		c.DegreeDeviation += math.Abs(float64(out[i]-1)) + math.Abs(float64(in[i]-1))
	}

	c.ArcCountMismatch = len(arcs) != n
	c.Disconnected = !t.reachesAll(arcs)

	c.Penalty = t.degreeWeight * c.DegreeDeviation
	if c.ArcCountMismatch || c.Disconnected {
		c.Penalty += t.subtourWeight
	}

	c.Total = c.Distance + c.Penalty

	return c
}

// reachesAll walks the active arcs breadth-first from city 0
func (t *TSP) reachesAll(arcs []ga.Arc) bool {
	g := simple.NewDirectedGraph()
	for i := range t.cities {
		g.AddNode(simple.Node(int64(i)))
	}

	for _, a := range arcs {
		g.SetEdge(g.NewEdge(simple.Node(int64(a.From)), simple.Node(int64(a.To))))
	}

	var bf traverse.BreadthFirst
	bf.Walk(g, simple.Node(0), nil)

	for i := range t.cities {
		if !bf.Visited(simple.Node(int64(i))) {
			return false
		}
	}

	return true
}

// Evaluate scores a decoded arc set as the reciprocal of its penalized cost
func (t *TSP) Evaluate(arcs []ga.Arc) float64 {
	return costFitness(t.Cost(arcs).Total)
}

// Fitness implements Problem
func (t *TSP) Fitness(c ga.Chromosome) float64 {
	return t.fitness(c)
}

// Summarize implements Problem
func (t *TSP) Summarize(c ga.Chromosome) Summary {
	arcs := t.codec.Decode(c)
	cost := t.Cost(arcs)

	labels := make([]string, len(arcs))
	for i, a := range arcs {
		labels[i] = t.cities[a.From].Name + "->" + t.cities[a.To].Name
	}

	details := []string{fmt.Sprintf("arcs: %s", strings.Join(labels, " "))}
	if cost.Feasible() {
		details = append(details, "tour: "+t.tourOrder(arcs))
	} else {
		details = append(details, fmt.Sprintf("violations: degree deviation %g, arc count mismatch %t, disconnected %t",
			cost.DegreeDeviation, cost.ArcCountMismatch, cost.Disconnected))
	}

	details = append(details, fmt.Sprintf("distance: %.4f (penalty %.4f)", cost.Distance, cost.Penalty))

	return Summary{Objective: cost.Distance, Feasible: cost.Feasible(), Details: details}
}

// tourOrder follows successor arcs from city 0; arcs must form a single cycle
func (t *TSP) tourOrder(arcs []ga.Arc) string {
	next := make(map[int]int, len(arcs))
	for _, a := range arcs {
		next[a.From] = a.To
	}

	names := []string{t.cities[0].Name}
	for city := next[0]; city != 0; city = next[city] {
		names = append(names, t.cities[city].Name)
	}

	return strings.Join(append(names, t.cities[0].Name), " -> ")
}

// TourLength sums the closed tour through the given city order
func (t *TSP) TourLength(order []int) float64 {
	total := 0.0
	for i, from := range order {
		total += t.dist[from][order[(i+1)%len(order)]]
	}

	return total
}

// Reference implements Problem by enumerating tours for small instances
func (t *TSP) Reference() Reference {
	n := len(t.cities)
	if n > maxEnumerableCities {
		return Reference{Objective: math.NaN(), Method: "none"}
	}

	rest := make([]int, n-1)
	for i := range rest {
		rest[i] = i + 1
	}

	best := math.Inf(1)
	permute(rest, 0, func(p []int) {
		best = min(best, t.TourLength(append([]int{0}, p...)))
	})

	return Reference{Objective: best, Method: "exhaustive search"}
}

// permute calls fn with every permutation of p[k:] in place
func permute(p []int, k int, fn func([]int)) {
	if k == len(p) {
		fn(p)

		return
	}

	for i := k; i < len(p); i++ {
		p[k], p[i] = p[i], p[k]
		permute(p, k+1, fn)
		p[k], p[i] = p[i], p[k]
	}
}
