// ABOUTME: Engine configuration, operator names and fail-fast validation
// ABOUTME: Every violation is reported together before any random draw happens

package ga

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every configuration error returned from New
var ErrInvalidConfig = errors.New("invalid engine configuration")

// ConfigError describes one invalid configuration field
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// SelectionType names a parent selection strategy
type SelectionType string

// Selection strategies
const (
	SelectTournament  SelectionType = "tournament"
	SelectRoulette    SelectionType = "roulette"
	SelectRank        SelectionType = "rank"
	SelectSteadyState SelectionType = "steady_state"
	SelectRandom      SelectionType = "random"
)

// CrossoverType names a recombination operator
type CrossoverType string

// Crossover operators
const (
	CrossSinglePoint CrossoverType = "single_point"
	CrossTwoPoint    CrossoverType = "two_point"
	CrossUniform     CrossoverType = "uniform"
)

// MutationType names a mutation operator
type MutationType string

// Mutation operators
const (
	MutateBitFlip     MutationType = "bit_flip"
	MutateRandomReset MutationType = "random_reset"
	MutateSwap        MutationType = "swap"
	MutateInversion   MutationType = "inversion"
	MutateScramble    MutationType = "scramble"
)

// maxAlphabet is the largest alphabet a uint8 gene can hold
const maxAlphabet = 256

// SelectionConfig configures parent selection
type SelectionConfig struct {
	Type SelectionType
	// TournamentSize is the number of contenders per tournament
	TournamentSize int
	// WithoutReplacement draws distinct contenders per tournament
	WithoutReplacement bool
	// SteadyStateFraction is the share of the population eligible as parents, in (0, 1]
	SteadyStateFraction float64
}

// CrossoverConfig configures recombination
type CrossoverConfig struct {
	Type        CrossoverType
	Probability float64
}

// MutationConfig configures mutation
type MutationConfig struct {
	Type        MutationType
	Probability float64
	// PercentGenes caps mutated positions per chromosome at ceil(PercentGenes*L/100); 0 disables the cap
	PercentGenes float64
	// Adaptive switches below-average offspring to BelowAverageProbability
	Adaptive                bool
	BelowAverageProbability float64
}

// Config holds every engine parameter. It is validated once by New and never changed afterwards.
type Config struct {
	PopulationSize   int
	ChromosomeLength int
	// Alphabet is the number of gene symbols; 2 for binary chromosomes
	Alphabet int
	// Generations bounds the run; 0 means no bound (StagnationLimit must then be set)
	Generations int
	// StagnationLimit stops after this many generations without strict improvement; 0 disables it
	StagnationLimit int
	Selection       SelectionConfig
	Crossover       CrossoverConfig
	Mutation        MutationConfig
	Elitism         int
	Seed            uint64
	// Parallelism is the number of evaluation workers; 0 or 1 evaluates sequentially
	Parallelism int
}

// DefaultConfig returns a binary-chromosome configuration with conventional operator settings
func DefaultConfig(populationSize, chromosomeLength int) Config {
	return Config{
		PopulationSize:   populationSize,
		ChromosomeLength: chromosomeLength,
		Alphabet:         2,
		Generations:      100,
		Selection: SelectionConfig{
			Type:                SelectTournament,
			TournamentSize:      3,
			SteadyStateFraction: 0.5,
		},
		Crossover: CrossoverConfig{Type: CrossSinglePoint, Probability: 0.8},
		Mutation:  MutationConfig{Type: MutateBitFlip, Probability: 0.01},
		Elitism:   1,
	}
}

// Validate returns all configuration violations joined, or nil
func (c Config) Validate() error {
	var errs []error

	fail := func(field, format string, args ...any) {
		errs = append(errs, &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	checkProbability := func(field string, p float64) {
		if !(p >= 0 && p <= 1) {
			fail(field, "probability must be in [0, 1], got %g", p)
		}
	}

	if c.PopulationSize < 2 {
		fail("population_size", "must be at least 2, got %d", c.PopulationSize)
	}

	if c.ChromosomeLength < 1 {
		fail("chromosome_length", "must be at least 1, got %d", c.ChromosomeLength)
	}

	if c.Alphabet < 1 {
		fail("alphabet", "gene alphabet is empty")
	} else if c.Alphabet > maxAlphabet {
		fail("alphabet", "at most %d symbols supported, got %d", maxAlphabet, c.Alphabet)
	}

	if c.Generations < 0 {
		fail("generations", "must not be negative, got %d", c.Generations)
	}

	if c.StagnationLimit < 0 {
		fail("stagnation_limit", "must not be negative, got %d", c.StagnationLimit)
	}

	if c.Generations == 0 && c.StagnationLimit == 0 {
		fail("generations", "no stopping rule: set generations or stagnation_limit")
	}

	switch c.Selection.Type {
	case SelectTournament:
		if c.Selection.TournamentSize < 1 {
			fail("tournament_size", "must be at least 1, got %d", c.Selection.TournamentSize)
		} else if c.Selection.TournamentSize > c.PopulationSize {
			fail("tournament_size", "%d exceeds population size %d", c.Selection.TournamentSize, c.PopulationSize)
		}
	case SelectSteadyState:
		if !(c.Selection.SteadyStateFraction > 0 && c.Selection.SteadyStateFraction <= 1) {
			fail("steady_state_fraction", "must be in (0, 1], got %g", c.Selection.SteadyStateFraction)
		}
	case SelectRoulette, SelectRank, SelectRandom:
	default:
		fail("selection", "unknown strategy %q", c.Selection.Type)
	}

	switch c.Crossover.Type {
	case CrossSinglePoint, CrossTwoPoint, CrossUniform:
	default:
		fail("crossover", "unknown operator %q", c.Crossover.Type)
	}

	checkProbability("crossover_probability", c.Crossover.Probability)

	switch c.Mutation.Type {
	case MutateBitFlip, MutateRandomReset, MutateSwap, MutateInversion, MutateScramble:
	default:
		fail("mutation", "unknown operator %q", c.Mutation.Type)
	}

	checkProbability("mutation_probability", c.Mutation.Probability)

	if c.Mutation.Adaptive {
		checkProbability("below_average_probability", c.Mutation.BelowAverageProbability)
	}

	if !(c.Mutation.PercentGenes >= 0 && c.Mutation.PercentGenes <= 100) {
		fail("mutation_percent_genes", "must be in [0, 100], got %g", c.Mutation.PercentGenes)
	}

	if c.Elitism < 0 {
		fail("elitism", "must not be negative, got %d", c.Elitism)
	} else if c.PopulationSize >= 2 && c.Elitism >= c.PopulationSize {
		fail("elitism", "%d must be smaller than population size %d", c.Elitism, c.PopulationSize)
	}

	if c.Parallelism < 0 {
		fail("parallelism", "must not be negative, got %d", c.Parallelism)
	}

	return errors.Join(errs...)
}
