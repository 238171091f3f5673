// ABOUTME: Run configuration for the genetic engine and the benchmark problems
// ABOUTME: Handles loading/saving TOML files layered over per-problem presets

package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"genetic-lab/ga"
	"genetic-lab/problems"
)

// FileConfig is the complete contents of a run configuration file
type FileConfig struct {
	Problem  string         `toml:"problem"`
	Runs     int            `toml:"runs"`
	Engine   EngineConfig   `toml:"engine"`
	Knapsack KnapsackConfig `toml:"knapsack"`
	Function FunctionConfig `toml:"function"`
	TSP      TSPConfig      `toml:"tsp"`
	Diet     DietConfig     `toml:"diet"`
}

// EngineConfig holds the tunable genetic engine parameters
type EngineConfig struct {
	PopulationSize  int `toml:"population_size"`
	Generations     int `toml:"generations"`
	StagnationLimit int `toml:"stagnation_limit"`

	// Selection
	Selection           string  `toml:"selection"`
	TournamentSize      int     `toml:"tournament_size"`
	WithoutReplacement  bool    `toml:"without_replacement"`
	SteadyStateFraction float64 `toml:"steady_state_fraction"`

	// Variation
	Crossover               string  `toml:"crossover"`
	CrossoverProbability    float64 `toml:"crossover_probability"`
	Mutation                string  `toml:"mutation"`
	MutationProbability     float64 `toml:"mutation_probability"`
	MutationPercentGenes    float64 `toml:"mutation_percent_genes"`
	AdaptiveMutation        bool    `toml:"adaptive_mutation"`
	BelowAverageProbability float64 `toml:"below_average_probability"`

	Elitism     int    `toml:"elitism"`
	Seed        uint64 `toml:"seed"`
	Parallelism int    `toml:"parallelism"`
}

// KnapsackConfig describes the knapsack instance
type KnapsackConfig struct {
	Capacity float64         `toml:"capacity"`
	Penalty  float64         `toml:"penalty"`
	Items    []problems.Item `toml:"items"`
}

// FunctionConfig describes the sinusoid domain and resolution
type FunctionConfig struct {
	Min  float64 `toml:"min"`
	Max  float64 `toml:"max"`
	Bits int     `toml:"bits"`
}

// TSPConfig describes the tour instance; zero weights are derived from the distances
type TSPConfig struct {
	DegreeWeight  float64         `toml:"degree_weight"`
	SubtourWeight float64         `toml:"subtour_weight"`
	Cities        []problems.City `toml:"cities"`
}

// DietConfig describes the feed-mix instance
type DietConfig struct {
	Penalty      float64                `toml:"penalty"`
	Bits         int                    `toml:"bits"`
	Ingredients  []problems.Ingredient  `toml:"ingredients"`
	Requirements []problems.Requirement `toml:"requirements"`
}

// SharedConfig wraps FileConfig with a mutex for access shared between the engine runner and the TUI
type SharedConfig struct {
	mu     sync.RWMutex
	config FileConfig
}

// Get returns a copy of the current config
func (sc *SharedConfig) Get() FileConfig {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	return sc.config
}

// Update replaces the current config
func (sc *SharedConfig) Update(config FileConfig) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.config = config
}

// GetConfigPath returns the default config file path
// First tries current directory, then falls back to ~/.config/genetic-lab/config.toml
func GetConfigPath() string {
	if _, err := os.Stat("./genetic-lab.toml"); err == nil {
		return "./genetic-lab.toml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./genetic-lab.toml"
	}

	return filepath.Join(home, ".config", "genetic-lab", "config.toml")
}

// LoadConfig loads configuration from a TOML file
// If the file doesn't exist, returns the defaults of the default problem
func LoadConfig(path string) (FileConfig, error) {
	return LoadConfigAs(path, "")
}

// LoadConfigAs loads configuration with the given problem forced over the file's choice.
// Keys missing from the file keep that problem's preset values.
func LoadConfigAs(path, problem string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(pick(problem, problems.NameKnapsack)), nil
		}

		return DefaultConfig(pick(problem, problems.NameKnapsack)), fmt.Errorf("failed to read config file: %w", err)
	}

	// First pass only decides which preset the file is layered over
	var head struct {
		Problem string `toml:"problem"`
	}

	if _, err := toml.Decode(string(data), &head); err != nil {
		return DefaultConfig(pick(problem, problems.NameKnapsack)), fmt.Errorf("failed to parse config file: %w", err)
	}

	config := DefaultConfig(pick(problem, head.Problem, problems.NameKnapsack))

	md, err := toml.Decode(string(data), &config)
	if err != nil {
		return DefaultConfig(config.Problem), fmt.Errorf("failed to parse config file: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}

		return DefaultConfig(config.Problem), fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	if problem != "" {
		config.Problem = problem
	}

	return config, nil
}

// SaveConfig saves configuration to a TOML file
func SaveConfig(path string, config FileConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Round probabilities to the precision the TUI steps in
	config.Engine = roundConfigPrecision(config.Engine)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Printf("Warning: failed to close config file: %v\n", err)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// DefaultConfig returns the preset for a problem. Unknown names get the knapsack engine
// settings and keep the name so that BuildProblem reports it.
func DefaultConfig(problem string) FileConfig {
	config := FileConfig{
		Problem: problem,
		Runs:    1,
		Knapsack: KnapsackConfig{
			Capacity: 5000,
			Penalty:  1,
			Items:    problems.DefaultItems(),
		},
		Function: FunctionConfig{Min: -1, Max: 2, Bits: 14},
		TSP:      TSPConfig{Cities: problems.DefaultCities()},
		Diet: DietConfig{
			Penalty:      100,
			Bits:         10,
			Ingredients:  problems.DefaultIngredients(),
			Requirements: problems.DefaultRequirements(),
		},
	}

	engine := EngineConfig{
		PopulationSize:          30,
		Generations:             20,
		Selection:               string(ga.SelectTournament),
		TournamentSize:          3,
		SteadyStateFraction:     0.5,
		Crossover:               string(ga.CrossSinglePoint),
		CrossoverProbability:    0.8,
		Mutation:                string(ga.MutateBitFlip),
		MutationProbability:     0.1,
		BelowAverageProbability: 0.2,
		Elitism:                 1,
		Seed:                    1,
	}

	switch problem {
	case problems.NameFunction:
		engine.PopulationSize = 14
		engine.Selection = string(ga.SelectRoulette)
		engine.MutationProbability = 0.05
		engine.Elitism = 2
		engine.Seed = 1234
	case problems.NameTour:
		engine.PopulationSize = 80
		engine.Generations = 50
		engine.Selection = string(ga.SelectSteadyState)
		engine.MutationProbability = 0.05
	case problems.NameDiet:
		engine.PopulationSize = 50
		engine.Generations = 300
		engine.MutationProbability = 0.02
		engine.Seed = 42
	}

	config.Engine = engine

	return config
}

// EngineFor converts the engine table into an engine configuration for chromosomes of the given length
func (c FileConfig) EngineFor(length int) ga.Config {
	e := c.Engine

	return ga.Config{
		PopulationSize:   e.PopulationSize,
		ChromosomeLength: length,
		Alphabet:         2,
		Generations:      e.Generations,
		StagnationLimit:  e.StagnationLimit,
		Selection: ga.SelectionConfig{
			Type:                ga.SelectionType(e.Selection),
			TournamentSize:      e.TournamentSize,
			WithoutReplacement:  e.WithoutReplacement,
			SteadyStateFraction: e.SteadyStateFraction,
		},
		Crossover: ga.CrossoverConfig{
			Type:        ga.CrossoverType(e.Crossover),
			Probability: e.CrossoverProbability,
		},
		Mutation: ga.MutationConfig{
			Type:                    ga.MutationType(e.Mutation),
			Probability:             e.MutationProbability,
			PercentGenes:            e.MutationPercentGenes,
			Adaptive:                e.AdaptiveMutation,
			BelowAverageProbability: e.BelowAverageProbability,
		},
		Elitism:     e.Elitism,
		Seed:        e.Seed,
		Parallelism: e.Parallelism,
	}
}

// BuildProblem constructs the configured problem instance
func (c FileConfig) BuildProblem() (problems.Problem, error) {
	switch c.Problem {
	case problems.NameKnapsack:
		return problems.NewKnapsack(c.Knapsack.Items, c.Knapsack.Capacity, c.Knapsack.Penalty)
	case problems.NameFunction:
		return problems.NewFunction(problems.Sinusoid, c.Function.Min, c.Function.Max, c.Function.Bits)
	case problems.NameTour:
		return problems.NewTSP(c.TSP.Cities, c.TSP.DegreeWeight, c.TSP.SubtourWeight)
	case problems.NameDiet:
		return problems.NewDiet(c.Diet.Ingredients, c.Diet.Requirements, c.Diet.Penalty, c.Diet.Bits)
	default:
		return nil, fmt.Errorf("%w: %q (available: %v)", problems.ErrUnknownProblem, c.Problem, problems.Names())
	}
}

// pick returns the first non-empty name
func pick(names ...string) string {
	for _, n := range names {
		if n != "" {
			return n
		}
	}

	return ""
}

// roundConfigPrecision rounds the probability fields to 3 decimal places
func roundConfigPrecision(e EngineConfig) EngineConfig {
	round := func(x float64) float64 {
		return math.Round(x*1000) / 1000
	}

	e.SteadyStateFraction = round(e.SteadyStateFraction)
	e.CrossoverProbability = round(e.CrossoverProbability)
	e.MutationProbability = round(e.MutationProbability)
	e.MutationPercentGenes = round(e.MutationPercentGenes)
	e.BelowAverageProbability = round(e.BelowAverageProbability)

	return e
}
