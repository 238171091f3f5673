// ABOUTME: Tests for the generational loop
// ABOUTME: Determinism, elitism monotonicity, stopping rules, odd offspring counts and snapshots

package ga

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// oneMax counts set genes
func oneMax(c Chromosome) float64 {
	n := 0.0
	for _, g := range c {
		n += float64(g)
	}

	return n
}

func oneMaxConfig(seed uint64) Config {
	cfg := DefaultConfig(16, 24)
	cfg.Generations = 30
	cfg.Mutation.Probability = 0.05
	cfg.Seed = seed

	return cfg
}

func runEngine(t *testing.T, cfg Config, fitness FitnessFunc, opts ...Option) Result {
	t.Helper()

	e, err := New(cfg, fitness, opts...)
	require.NoError(t, err)

	return e.Run()
}

func TestEngineDeterministicForSeed(t *testing.T) {
	a := runEngine(t, oneMaxConfig(42), oneMax)
	b := runEngine(t, oneMaxConfig(42), oneMax)

	assert.Equal(t, a.Trace, b.Trace)
	assert.Equal(t, a.Best, b.Best)
	assert.Equal(t, a.BestEver, b.BestEver)
}

func TestEngineParallelEvaluationMatchesSequential(t *testing.T) {
	seq := runEngine(t, oneMaxConfig(5), oneMax)

	cfg := oneMaxConfig(5)
	cfg.Parallelism = 4
	par := runEngine(t, cfg, oneMax)

	assert.Equal(t, seq.Trace, par.Trace)
	assert.Equal(t, seq.Best, par.Best)
}

func TestEngineDifferentSeedsDiffer(t *testing.T) {
	a, err := New(oneMaxConfig(1), oneMax)
	require.NoError(t, err)
	b, err := New(oneMaxConfig(2), oneMax)
	require.NoError(t, err)

	assert.NotEqual(t, a.Population(), b.Population())
}

func TestEngineElitismKeepsTraceNonDecreasing(t *testing.T) {
	for seed := uint64(0); seed < 5; seed++ {
		cfg := oneMaxConfig(seed)
		cfg.Mutation.Probability = 0.3
		cfg.Elitism = 1

		res := runEngine(t, cfg, oneMax)
		require.True(t, res.Trace.NonDecreasing(), "seed %d trace %v", seed, res.Trace.Values())
		assert.GreaterOrEqual(t, res.Best.Fitness, res.Trace[len(res.Trace)-1].Best)
	}
}

func TestEngineWithoutElitismMayRegress(t *testing.T) {
	cfg := DefaultConfig(4, 30)
	cfg.Generations = 100
	cfg.Elitism = 0
	cfg.Selection = SelectionConfig{Type: SelectRandom}
	cfg.Mutation.Probability = 0.5
	cfg.Seed = 17

	res := runEngine(t, cfg, oneMax)
	assert.False(t, res.Trace.NonDecreasing(), "random search without elites should lose its best at least once")
	assert.GreaterOrEqual(t, res.BestEver.Fitness, res.Best.Fitness)
}

func TestEngineTraceHasOnePointPerGeneration(t *testing.T) {
	res := runEngine(t, oneMaxConfig(3), oneMax)

	require.Len(t, res.Trace, 30)
	assert.Equal(t, 30, res.Generations)
	assert.Equal(t, ReasonGenerationLimit, res.Reason)

	for i, p := range res.Trace {
		assert.Equal(t, i, p.Generation)
	}
}

func TestEngineStopsOnStagnation(t *testing.T) {
	cfg := oneMaxConfig(4)
	cfg.Generations = 0
	cfg.StagnationLimit = 3

	res := runEngine(t, cfg, func(Chromosome) float64 { return 1 })

	assert.Equal(t, ReasonStagnation, res.Reason)
	assert.Len(t, res.Trace, 4)
}

func TestEngineOddOffspringCountKeepsPopulationSize(t *testing.T) {
	for _, tc := range []struct{ size, elites int }{{7, 2}, {5, 0}, {6, 1}, {2, 1}} {
		cfg := DefaultConfig(tc.size, 12)
		cfg.Generations = 5
		cfg.Elitism = tc.elites
		cfg.Selection.TournamentSize = 2

		e, err := New(cfg, oneMax, WithPopulationSnapshots())
		require.NoError(t, err)

		for snap := range e.Generations() {
			require.Len(t, snap.Population, tc.size, "size %d elites %d generation %d", tc.size, tc.elites, snap.Generation)
		}

		assert.Len(t, e.Population(), tc.size)
	}
}

func TestEngineLifecycle(t *testing.T) {
	e, err := New(oneMaxConfig(8), oneMax)
	require.NoError(t, err)
	assert.Equal(t, StateInitialized, e.State())

	_, ok := e.Result()
	assert.False(t, ok)

	seen := 0
	for snap := range e.Generations() {
		assert.Equal(t, StateRunning, e.State())
		assert.Equal(t, seen, snap.Generation)
		seen++
	}

	assert.Equal(t, StateTerminated, e.State())
	res, ok := e.Result()
	require.True(t, ok)
	assert.Equal(t, 30, res.Generations)

	for range e.Generations() {
		t.Fatal("a terminated engine must not yield")
	}
}

func TestEngineBreakAbortsRun(t *testing.T) {
	e, err := New(oneMaxConfig(9), oneMax)
	require.NoError(t, err)

	for snap := range e.Generations() {
		if snap.Generation == 4 {
			break
		}
	}

	res, ok := e.Result()
	require.True(t, ok)
	assert.Equal(t, ReasonAborted, res.Reason)
	assert.Equal(t, StateTerminated, e.State())
	assert.Len(t, res.Trace, 5)
	assert.Equal(t, 4, res.Generations)
}

func TestEngineSnapshotStats(t *testing.T) {
	e, err := New(oneMaxConfig(10), oneMax, WithPopulationSnapshots())
	require.NoError(t, err)

	for snap := range e.Generations() {
		require.Equal(t, snap.Best.Fitness, snap.Stats.Best)
		require.LessOrEqual(t, snap.Stats.Worst, snap.Stats.Mean)
		require.LessOrEqual(t, snap.Stats.Mean, snap.Stats.Best)
		require.GreaterOrEqual(t, snap.Stats.StdDev, 0.0)
		require.GreaterOrEqual(t, snap.BestEver.Fitness, snap.Best.Fitness)
		require.Equal(t, snap.Best.Fitness, snap.Population[0].Fitness, "population copy is best first")
	}
}

func TestEngineOneMaxConverges(t *testing.T) {
	cfg := DefaultConfig(40, 20)
	cfg.Generations = 80
	cfg.Mutation.Probability = 0.05
	cfg.Elitism = 2
	cfg.Seed = 12

	res := runEngine(t, cfg, oneMax)
	assert.GreaterOrEqual(t, res.BestEver.Fitness, 18.0)
}

func TestEngineSeedPopulation(t *testing.T) {
	best := filled(24, 1)

	cfg := oneMaxConfig(11)
	cfg.Generations = 1
	e, err := New(cfg, oneMax, WithSeedPopulation([]Chromosome{best}))
	require.NoError(t, err)
	assert.Equal(t, best, e.Population()[0].Genes)

	res := e.Run()
	assert.Equal(t, 24.0, res.BestEver.Fitness)
}

func TestEngineRejectsMalformedSeeds(t *testing.T) {
	_, err := New(oneMaxConfig(1), oneMax, WithSeedPopulation([]Chromosome{{0, 1}}))
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(oneMaxConfig(1), oneMax, WithSeedPopulation([]Chromosome{filled(24, 2)}))
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEngineElitesAreNotReevaluated(t *testing.T) {
	calls := 0
	counting := func(c Chromosome) float64 {
		calls++

		return oneMax(c)
	}

	cfg := oneMaxConfig(13)
	cfg.Generations = 4
	cfg.Elitism = 3

	res := runEngine(t, cfg, counting)

	// initial population plus (N - k) offspring per completed generation
	want := 16 + 4*(16-3)
	assert.Equal(t, want, calls)
	assert.Equal(t, want, res.Evaluations)
}

func TestAdaptiveMutationRate(t *testing.T) {
	cfg := oneMaxConfig(1)
	cfg.Mutation.Adaptive = true
	cfg.Mutation.Probability = 0.05
	cfg.Mutation.BelowAverageProbability = 0.25

	e, err := New(cfg, oneMax)
	require.NoError(t, err)

	weak := Individual{Fitness: 2}
	strong := Individual{Fitness: 10}

	assert.Equal(t, 0.25, e.mutationRate(weak, weak, 6))
	assert.Equal(t, 0.05, e.mutationRate(strong, weak, 6))
	assert.Equal(t, 0.05, e.mutationRate(strong, strong, 6))
}

func TestEngineDebugf(t *testing.T) {
	var lines []string
	logf := func(format string, args ...interface{}) {
		lines = append(lines, format)
	}

	cfg := oneMaxConfig(1)
	cfg.Generations = 2
	runEngine(t, cfg, oneMax, WithDebugf(logf))

	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], "[GA] Starting")
}

func TestEngineParallelEvaluatorPanicReachesCaller(t *testing.T) {
	cfg := oneMaxConfig(3)
	cfg.Parallelism = 4

	e, err := New(cfg, func(c Chromosome) float64 {
		if c[0] == 1 {
			panic("evaluator failed")
		}

		return oneMax(c)
	})
	require.NoError(t, err)

	assert.PanicsWithValue(t, "evaluator failed", func() { e.Run() })
}
