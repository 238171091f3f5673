// ABOUTME: Feed-mix problem minimizing ingredient cost under minimum nutrient levels
// ABOUTME: Shares are binary-fraction genes normalized to sum to one; shortfalls are penalized

package problems

import (
	"fmt"
	"math"
	"slices"

	"genetic-lab/ga"
)

// DietOptimum is the linear-programming minimum cost of the default mix
const DietOptimum = 0.51

// infeasibleMargin separates the cheapest infeasible cost from the dearest feasible one
const infeasibleMargin = 0.01

// Ingredient is a mix component with its cost and nutrient content per unit
type Ingredient struct {
	Name string  `toml:"name"`
	Cost float64 `toml:"cost"`
	// Content lists the nutrient fraction per requirement, in requirement order
	Content []float64 `toml:"content"`
}

// Requirement is a minimum nutrient level of the final mix
type Requirement struct {
	Name    string  `toml:"name"`
	Minimum float64 `toml:"minimum"`
}

// Diet chooses ingredient shares minimizing cost
type Diet struct {
	ingredients  []Ingredient
	requirements []Requirement
	penalty      float64
	codec        ga.RealVector
	fitness      ga.FitnessFunc

	// offset lifts every infeasible cost above the dearest ingredient
	offset float64
}

// MixCost breaks a normalized mix into cost and constraint terms
type MixCost struct {
	Shares    []float64
	Cost      float64
	Levels    []float64
	Shortfall float64
	Penalty   float64
}

// Feasible reports whether every requirement is met
func (m MixCost) Feasible() bool {
	return m.Shortfall == 0
}

// DefaultIngredients returns bone meal, soy and fish with protein and calcium content
func DefaultIngredients() []Ingredient {
	return []Ingredient{
		{Name: "bone meal", Cost: 0.56, Content: []float64{0.2, 0.6}},
		{Name: "soy", Cost: 0.81, Content: []float64{0.5, 0.4}},
		{Name: "fish", Cost: 0.46, Content: []float64{0.4, 0.4}},
	}
}

// DefaultRequirements returns protein >= 0.3 and calcium >= 0.5
func DefaultRequirements() []Requirement {
	return []Requirement{
		{Name: "protein", Minimum: 0.3},
		{Name: "calcium", Minimum: 0.5},
	}
}

// DefaultDiet returns the three-ingredient mix with penalty weight 100 and 10 bits per share
func DefaultDiet() *Diet {
	d, _ := NewDiet(DefaultIngredients(), DefaultRequirements(), 100, 10)

	return d
}

// NewDiet builds a diet problem; penalty multiplies the total nutrient shortfall, on top of a
// fixed offset that places every infeasible mix above the dearest feasible one
func NewDiet(ingredients []Ingredient, requirements []Requirement, penalty float64, bits int) (*Diet, error) {
	if len(ingredients) == 0 {
		return nil, fmt.Errorf("%w: diet needs at least one ingredient", ErrInvalidProblem)
	}

	if penalty <= 0 {
		return nil, fmt.Errorf("%w: diet penalty must be positive, got %g", ErrPenaltyTooSmall, penalty)
	}

	for _, ing := range ingredients {
		if len(ing.Content) != len(requirements) {
			return nil, fmt.Errorf("%w: ingredient %q lists %d nutrient values for %d requirements",
				ErrInvalidProblem, ing.Name, len(ing.Content), len(requirements))
		}

		if ing.Cost < 0 {
			return nil, fmt.Errorf("%w: ingredient %q has negative cost", ErrInvalidProblem, ing.Name)
		}
	}

	codec := ga.RealVector{Genes: len(ingredients), Bits: bits, Min: 0, Max: 1}
	if err := (ga.RealInterval{Min: 0, Max: 1, Bits: bits}).Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProblem, err)
	}

	d := &Diet{
		ingredients:  append([]Ingredient(nil), ingredients...),
		requirements: append([]Requirement(nil), requirements...),
		penalty:      penalty,
		codec:        codec,
	}

	// a normalized mix never costs more than its dearest ingredient
	for _, ing := range d.ingredients {
		d.offset = max(d.offset, ing.Cost)
	}
	d.offset += infeasibleMargin

	d.fitness = ga.Compose(d.codec, d.Evaluate)

	return d, nil
}

// Name implements Problem
func (d *Diet) Name() string { return NameDiet }

// Description implements Problem
func (d *Diet) Description() string {
	return fmt.Sprintf("feed mix: %d ingredients, %d nutrient minimums", len(d.ingredients), len(d.requirements))
}

// Length implements Problem
func (d *Diet) Length() int { return d.codec.Length() }

// Cost normalizes raw shares and evaluates cost and shortfall. ok is false when every share is zero.
func (d *Diet) Cost(raw []float64) (MixCost, bool) {
	total := 0.0
	for _, v := range raw {
		total += v
	}

	if total == 0 {
		return MixCost{}, false
	}

	m := MixCost{
		Shares: make([]float64, len(raw)),
		Levels: make([]float64, len(d.requirements)),
	}

	for i, v := range raw {
		share := v / total
		m.Shares[i] = share
		m.Cost += share * d.ingredients[i].Cost

		for j, c := range d.ingredients[i].Content {
			m.Levels[j] += share * c
		}
	}

	for j, req := range d.requirements {
		if gap := req.Minimum - m.Levels[j]; gap > 0 {
			m.Shortfall += gap
		}
	}

	if m.Shortfall > 0 {
		m.Penalty = d.offset + d.penalty*m.Shortfall
	}

	return m, true
}

// Evaluate scores raw shares as 1 / (cost + penalty + 0.001)
func (d *Diet) Evaluate(raw []float64) float64 {
	m, ok := d.Cost(raw)
	if !ok {
		return EmptyMixFitness
	}

	return costFitness(m.Cost + m.Penalty + 0.001)
}

// Fitness implements Problem
func (d *Diet) Fitness(c ga.Chromosome) float64 {
	return d.fitness(c)
}

// Summarize implements Problem
func (d *Diet) Summarize(c ga.Chromosome) Summary {
	m, ok := d.Cost(d.codec.Decode(c))
	if !ok {
		return Summary{Feasible: false, Details: []string{"mix: empty"}}
	}

	details := make([]string, 0, len(d.ingredients)+len(d.requirements)+1)
	for i, ing := range d.ingredients {
		details = append(details, fmt.Sprintf("%s: %.1f%%", ing.Name, 100*m.Shares[i]))
	}

	for j, req := range d.requirements {
		details = append(details, fmt.Sprintf("%s: %.4f (min %.4f)", req.Name, m.Levels[j], req.Minimum))
	}

	details = append(details, fmt.Sprintf("cost: %.4f", m.Cost))

	return Summary{Objective: m.Cost, Feasible: m.Feasible(), Details: details}
}

// Reference implements Problem. The default instance carries its linear-programming optimum;
// other instances are compared against the cheapest feasible single ingredient, if any.
func (d *Diet) Reference() Reference {
	if d.isDefault() {
		return Reference{Objective: DietOptimum, Method: "linear programming"}
	}

	best := 0.0
	found := false

	for i := range d.ingredients {
		raw := make([]float64, len(d.ingredients))
		raw[i] = 1

		if m, _ := d.Cost(raw); m.Feasible() && (!found || m.Cost < best) {
			best, found = m.Cost, true
		}
	}

	if !found {
		return Reference{Objective: math.NaN(), Method: "none"}
	}

	return Reference{Objective: best, Method: "best single ingredient"}
}

func (d *Diet) isDefault() bool {
	defIng, defReq := DefaultIngredients(), DefaultRequirements()
	if len(d.ingredients) != len(defIng) || len(d.requirements) != len(defReq) {
		return false
	}

	for i, ing := range d.ingredients {
		if ing.Cost != defIng[i].Cost || !slices.Equal(ing.Content, defIng[i].Content) {
			return false
		}
	}

	for j, req := range d.requirements {
		if req.Minimum != defReq[j].Minimum {
			return false
		}
	}

	return true
}
