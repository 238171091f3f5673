// ABOUTME: Parameter manager for engine configuration tuning
// ABOUTME: Handles numeric and choice adjustments with boundary checking

package tui

import (
	"fmt"
	"slices"
	"strconv"

	"genetic-lab/config"
	"genetic-lab/ga"
)

// Parameter names
const (
	paramPopulation   = "Population Size"
	paramGenerations  = "Generations"
	paramStagnation   = "Stagnation Limit"
	paramSelection    = "Selection"
	paramTournament   = "Tournament Size"
	paramSteadyState  = "Steady-State Fraction"
	paramCrossover    = "Crossover"
	paramCrossoverP   = "Crossover Probability"
	paramMutation     = "Mutation"
	paramMutationP    = "Mutation Probability"
	paramPercentGenes = "Mutation % Genes"
	paramBelowAverage = "Below-Average Mutation"
	paramElitism      = "Elitism"
)

// Parameter represents a tunable engine parameter with constraints.
// Exactly one of Value, IntValue and Choice is set.
type Parameter struct {
	Name     string
	Value    *float64 // Pointer to actual config field
	IntValue *int     // For integer parameters
	Choice   *string  // For operator names
	Choices  []string
	Min      float64
	Max      float64
	Step     float64
}

// IsInt reports whether the parameter is an integer
func (p Parameter) IsInt() bool { return p.IntValue != nil }

// IsChoice reports whether the parameter cycles through named options
func (p Parameter) IsChoice() bool { return p.Choice != nil }

// Format renders the current value
func (p Parameter) Format() string {
	switch {
	case p.Choice != nil:
		return *p.Choice
	case p.IntValue != nil:
		return strconv.Itoa(*p.IntValue)
	case p.Value != nil:
		if p.Step < 0.01 {
			return fmt.Sprintf("%.3f", *p.Value)
		}

		return fmt.Sprintf("%.2f", *p.Value)
	default:
		return "N/A"
	}
}

// ParamManager manages engine parameter adjustments
type ParamManager struct {
	params        []Parameter
	selectedIndex int
}

// NewParamManager creates a new parameter manager
func NewParamManager(params []Parameter) *ParamManager {
	return &ParamManager{
		params:        params,
		selectedIndex: 0,
	}
}

// buildParams binds the parameter list to the fields of e
func buildParams(e *config.EngineConfig) []Parameter {
	return []Parameter{
		{Name: paramPopulation, IntValue: &e.PopulationSize, Min: 2, Max: 1000, Step: 2},
		{Name: paramGenerations, IntValue: &e.Generations, Min: 0, Max: 10000, Step: 10},
		{Name: paramStagnation, IntValue: &e.StagnationLimit, Min: 0, Max: 1000, Step: 5},
		{Name: paramSelection, Choice: &e.Selection, Choices: []string{
			string(ga.SelectTournament), string(ga.SelectRoulette), string(ga.SelectRank),
			string(ga.SelectSteadyState), string(ga.SelectRandom),
		}},
		{Name: paramTournament, IntValue: &e.TournamentSize, Min: 1, Max: 20, Step: 1},
		{Name: paramSteadyState, Value: &e.SteadyStateFraction, Min: 0.05, Max: 1, Step: 0.05},
		{Name: paramCrossover, Choice: &e.Crossover, Choices: []string{
			string(ga.CrossSinglePoint), string(ga.CrossTwoPoint), string(ga.CrossUniform),
		}},
		{Name: paramCrossoverP, Value: &e.CrossoverProbability, Min: 0, Max: 1, Step: 0.05},
		{Name: paramMutation, Choice: &e.Mutation, Choices: []string{
			string(ga.MutateBitFlip), string(ga.MutateRandomReset), string(ga.MutateSwap),
			string(ga.MutateInversion), string(ga.MutateScramble),
		}},
		{Name: paramMutationP, Value: &e.MutationProbability, Min: 0, Max: 1, Step: 0.005},
		{Name: paramPercentGenes, Value: &e.MutationPercentGenes, Min: 0, Max: 100, Step: 5},
		{Name: paramBelowAverage, Value: &e.BelowAverageProbability, Min: 0, Max: 1, Step: 0.01},
		{Name: paramElitism, IntValue: &e.Elitism, Min: 0, Max: 50, Step: 1},
	}
}

// Selected returns the index of the currently selected parameter
func (pm *ParamManager) Selected() int {
	return pm.selectedIndex
}

// SetSelected sets the selected parameter index
func (pm *ParamManager) SetSelected(index int) {
	if index >= 0 && index < len(pm.params) {
		pm.selectedIndex = index
	}
}

// SelectNext moves selection to the next parameter
func (pm *ParamManager) SelectNext() {
	if pm.selectedIndex < len(pm.params)-1 {
		pm.selectedIndex++
	}
}

// SelectPrevious moves selection to the previous parameter
func (pm *ParamManager) SelectPrevious() {
	if pm.selectedIndex > 0 {
		pm.selectedIndex--
	}
}

// Increase increases the selected parameter value
// Returns true if the value was changed
func (pm *ParamManager) Increase() bool {
	if pm.selectedIndex >= len(pm.params) {
		return false
	}

	return adjust(&pm.params[pm.selectedIndex], 1)
}

// Decrease decreases the selected parameter value
// Returns true if the value was changed
func (pm *ParamManager) Decrease() bool {
	if pm.selectedIndex >= len(pm.params) {
		return false
	}

	return adjust(&pm.params[pm.selectedIndex], -1)
}

// adjust moves a parameter one step in direction dir (+1 or -1)
func adjust(param *Parameter, dir int) bool {
	switch {
	case param.Choice != nil:
		if len(param.Choices) == 0 {
			return false
		}

		// Unknown values restart the cycle at the first choice
		i := slices.Index(param.Choices, *param.Choice)
		n := len(param.Choices)
		*param.Choice = param.Choices[((i+dir)%n+n)%n]

		return true

	case param.IntValue != nil:
		newVal := *param.IntValue + dir*int(param.Step)
		if float64(newVal) < param.Min || float64(newVal) > param.Max {
			return false
		}

		*param.IntValue = newVal

		return true

	case param.Value != nil:
		newVal := *param.Value + float64(dir)*param.Step
		// Clamp to bounds if we're very close (handles floating point precision)
		if newVal < param.Min && newVal >= param.Min-0.0001 {
			newVal = param.Min
		}

		if newVal > param.Max && newVal <= param.Max+0.0001 {
			newVal = param.Max
		}

		if newVal < param.Min || newVal > param.Max {
			return false
		}

		*param.Value = newVal

		return true
	}

	return false
}

// ResetToDefaults copies the default values into every bound parameter
// Uses name-based lookup to avoid fragile array indexing
func (pm *ParamManager) ResetToDefaults(defaults config.EngineConfig) {
	for i := range pm.params {
		p := &pm.params[i]
		switch p.Name {
		case paramPopulation:
			*p.IntValue = defaults.PopulationSize
		case paramGenerations:
			*p.IntValue = defaults.Generations
		case paramStagnation:
			*p.IntValue = defaults.StagnationLimit
		case paramSelection:
			*p.Choice = defaults.Selection
		case paramTournament:
			*p.IntValue = defaults.TournamentSize
		case paramSteadyState:
			*p.Value = defaults.SteadyStateFraction
		case paramCrossover:
			*p.Choice = defaults.Crossover
		case paramCrossoverP:
			*p.Value = defaults.CrossoverProbability
		case paramMutation:
			*p.Choice = defaults.Mutation
		case paramMutationP:
			*p.Value = defaults.MutationProbability
		case paramPercentGenes:
			*p.Value = defaults.MutationPercentGenes
		case paramBelowAverage:
			*p.Value = defaults.BelowAverageProbability
		case paramElitism:
			*p.IntValue = defaults.Elitism
		}
	}
}

// Get returns the parameter at the given index
func (pm *ParamManager) Get(index int) *Parameter {
	if index >= 0 && index < len(pm.params) {
		return &pm.params[index]
	}

	return nil
}

// GetSelected returns the currently selected parameter
func (pm *ParamManager) GetSelected() *Parameter {
	return pm.Get(pm.selectedIndex)
}

// Len returns the number of parameters
func (pm *ParamManager) Len() int {
	return len(pm.params)
}

// All returns all parameters (for rendering)
func (pm *ParamManager) All() []Parameter {
	return pm.params
}
