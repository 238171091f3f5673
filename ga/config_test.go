// ABOUTME: Tests for engine configuration validation
// ABOUTME: Each invalid field is rejected with a typed error before any work starts

package ga

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig(20, 10).Validate())
}

func TestValidateRejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"population below two", func(c *Config) { c.PopulationSize = 1; c.Elitism = 0 }, "population_size"},
		{"empty chromosome", func(c *Config) { c.ChromosomeLength = 0 }, "chromosome_length"},
		{"empty alphabet", func(c *Config) { c.Alphabet = 0 }, "alphabet"},
		{"oversized alphabet", func(c *Config) { c.Alphabet = 300 }, "alphabet"},
		{"crossover probability above one", func(c *Config) { c.Crossover.Probability = 1.2 }, "crossover_probability"},
		{"mutation probability negative", func(c *Config) { c.Mutation.Probability = -0.1 }, "mutation_probability"},
		{"adaptive probability out of range", func(c *Config) {
			c.Mutation.Adaptive = true
			c.Mutation.BelowAverageProbability = 2
		}, "below_average_probability"},
		{"tournament larger than population", func(c *Config) { c.Selection.TournamentSize = 21 }, "tournament_size"},
		{"tournament of zero", func(c *Config) { c.Selection.TournamentSize = 0 }, "tournament_size"},
		{"elitism equal to population", func(c *Config) { c.Elitism = 20 }, "elitism"},
		{"negative elitism", func(c *Config) { c.Elitism = -1 }, "elitism"},
		{"no stopping rule", func(c *Config) { c.Generations = 0 }, "generations"},
		{"unknown selection", func(c *Config) { c.Selection.Type = "lottery" }, "selection"},
		{"unknown crossover", func(c *Config) { c.Crossover.Type = "three_point" }, "crossover"},
		{"unknown mutation", func(c *Config) { c.Mutation.Type = "gaussian" }, "mutation"},
		{"percent genes above hundred", func(c *Config) { c.Mutation.PercentGenes = 150 }, "mutation_percent_genes"},
		{"steady-state fraction zero", func(c *Config) {
			c.Selection.Type = SelectSteadyState
			c.Selection.SteadyStateFraction = 0
		}, "steady_state_fraction"},
		{"negative parallelism", func(c *Config) { c.Parallelism = -2 }, "parallelism"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(20, 10)
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestValidateReportsEveryViolation(t *testing.T) {
	cfg := DefaultConfig(1, 0)
	cfg.Crossover.Probability = 3

	err := cfg.Validate()
	require.Error(t, err)

	var joined interface{ Unwrap() []error }
	require.True(t, errors.As(err, &joined))
	assert.GreaterOrEqual(t, len(joined.Unwrap()), 3)
}

func TestNewFailsBeforeBuildingEngine(t *testing.T) {
	cfg := DefaultConfig(10, 8)
	cfg.Selection.TournamentSize = 11

	e, err := New(cfg, func(Chromosome) float64 { return 0 })
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Nil(t, e)
}

func TestNewRequiresFitness(t *testing.T) {
	_, err := New(DefaultConfig(10, 8), nil)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "fitness", cfgErr.Field)
}
