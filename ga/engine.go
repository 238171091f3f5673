// ABOUTME: Generational loop driving evaluation, selection, variation and elitism
// ABOUTME: Exposes a pull-based sequence of snapshots and a final result

package ga

import (
	"errors"
	"fmt"
	"iter"

	"genetic-lab/pool"
)

// State is the lifecycle phase of an engine
type State int

// Engine lifecycle: Initialized -> Running -> Terminated
const (
	StateInitialized State = iota
	StateRunning
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Option configures optional engine behaviour
type Option func(*Engine)

// WithDebugf routes engine debug messages to f
func WithDebugf(f func(format string, args ...interface{})) Option {
	return func(e *Engine) {
		if f != nil {
			e.debugf = f
		}
	}
}

// WithPopulationSnapshots includes a copy of the population in every snapshot
func WithPopulationSnapshots() Option {
	return func(e *Engine) {
		e.snapshotPopulation = true
	}
}

// WithSeedPopulation places the given chromosomes at the start of the initial population.
// The remaining slots are filled randomly.
func WithSeedPopulation(seeds []Chromosome) Option {
	return func(e *Engine) {
		e.seeds = seeds
	}
}

// Engine runs one genetic optimization. It is single-use and not safe for concurrent use.
type Engine struct {
	cfg       Config
	fitness   FitnessFunc
	stream    *Stream
	selector  Selector
	crossover Crossover
	mutator   Mutator

	population  Population
	state       State
	trace       Trace
	bestEver    Individual
	stagnant    int
	generation  int
	evaluations int
	result      Result

	snapshotPopulation bool
	seeds              []Chromosome
	debugf             func(string, ...interface{})
}

// New validates cfg and builds an engine with a freshly drawn initial population.
// Configuration errors are returned before any random draw.
func New(cfg Config, fitness FitnessFunc, opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg:    cfg,
		debugf: func(string, ...interface{}) {},
	}

	for _, opt := range opts {
		opt(e)
	}

	var errs []error
	if fitness == nil {
		errs = append(errs, &ConfigError{Field: "fitness", Reason: "fitness function is required"})
	}

	errs = append(errs, cfg.Validate(), e.validateSeeds())
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	e.fitness = fitness
	e.selector = NewSelector(cfg.Selection)
	e.crossover = NewCrossover(cfg.Crossover.Type)
	e.mutator = NewMutator(cfg.Mutation, cfg.Alphabet)
	e.stream = NewStream(cfg.Seed)
	e.population = e.initialPopulation()

	return e, nil
}

// validateSeeds checks seed chromosomes against length and alphabet
func (e *Engine) validateSeeds() error {
	if len(e.seeds) > e.cfg.PopulationSize && e.cfg.PopulationSize > 0 {
		return &ConfigError{Field: "seed_population", Reason: fmt.Sprintf("%d seeds exceed population size %d", len(e.seeds), e.cfg.PopulationSize)}
	}

	for i, c := range e.seeds {
		if len(c) != e.cfg.ChromosomeLength {
			return &ConfigError{Field: "seed_population", Reason: fmt.Sprintf("seed %d has length %d, want %d", i, len(c), e.cfg.ChromosomeLength)}
		}

		for _, g := range c {
			if int(g) >= e.cfg.Alphabet {
				return &ConfigError{Field: "seed_population", Reason: fmt.Sprintf("seed %d uses symbol %d outside alphabet of %d", i, g, e.cfg.Alphabet)}
			}
		}
	}

	return nil
}

func (e *Engine) initialPopulation() Population {
	pop := make(Population, e.cfg.PopulationSize)
	for i := range pop {
		if i < len(e.seeds) {
			pop[i] = Individual{Genes: e.seeds[i].Clone()}

			continue
		}

		pop[i] = Individual{Genes: randomChromosome(e.cfg.ChromosomeLength, e.cfg.Alphabet, e.stream)}
	}

	return pop
}

// Config returns the validated configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// State returns the lifecycle phase
func (e *Engine) State() State {
	return e.state
}

// Population returns a copy of the current population
func (e *Engine) Population() Population {
	return e.population.Clone()
}

// Trace returns a copy of the convergence trace recorded so far
func (e *Engine) Trace() Trace {
	return append(Trace(nil), e.trace...)
}

// Result returns the outcome once the engine has terminated
func (e *Engine) Result() (Result, bool) {
	return e.result, e.state == StateTerminated
}

// Run drains Generations and returns the result
func (e *Engine) Run() Result {
	for range e.Generations() {
	}

	return e.result
}

// Generations runs the loop lazily, yielding one snapshot per evaluated generation.
// Breaking out of the range loop terminates the run. A terminated engine yields nothing.
func (e *Engine) Generations() iter.Seq[Snapshot] {
	return func(yield func(Snapshot) bool) {
		if e.state != StateInitialized {
			return
		}

		e.state = StateRunning
		e.debugf("[GA] Starting: pop=%d len=%d selection=%s crossover=%s mutation=%s elitism=%d seed=%d",
			e.cfg.PopulationSize, e.cfg.ChromosomeLength, e.cfg.Selection.Type, e.cfg.Crossover.Type,
			e.cfg.Mutation.Type, e.cfg.Elitism, e.cfg.Seed)

		var workers *pool.WorkerPool
		if e.cfg.Parallelism > 1 {
			workers = pool.NewWorkerPool(e.cfg.Parallelism, e.cfg.PopulationSize)
			defer workers.Close()
		}

		for {
			e.evaluate(workers)

			if !yield(e.record()) {
				e.finish(ReasonAborted, workers)

				return
			}

			e.advance()
			e.generation++

			if reason, done := e.stopReason(); done {
				e.finish(reason, workers)

				return
			}
		}
	}
}

// evaluate scores every individual without a cached fitness
func (e *Engine) evaluate(workers *pool.WorkerPool) {
	pending := make([]int, 0, len(e.population))
	for i := range e.population {
		if !e.population[i].Evaluated {
			pending = append(pending, i)
		}
	}

	if workers == nil {
		for _, i := range pending {
			e.population[i].Fitness = e.fitness(e.population[i].Genes)
		}
	} else {
		for _, i := range pending {
			ind := &e.population[i]
			workers.Submit(func() {
				ind.Fitness = e.fitness(ind.Genes)
			})
		}

		workers.Wait()
	}

	for _, i := range pending {
		e.population[i].Evaluated = true
	}

	e.evaluations += len(pending)
}

// record appends the generation best to the trace and tracks best-ever and stagnation
func (e *Engine) record() Snapshot {
	best := e.population[e.population.BestIndex()]
	e.trace = append(e.trace, TracePoint{Generation: e.generation, Best: best.Fitness})

	if e.generation == 0 || best.Fitness > e.bestEver.Fitness {
		if e.generation > 0 {
			e.debugf("[GA] Gen %d: improved %.6f -> %.6f", e.generation, e.bestEver.Fitness, best.Fitness)
		}

		e.bestEver = cloneIndividual(best)
		e.stagnant = 0
	} else {
		e.stagnant++
	}

	snap := Snapshot{
		Generation: e.generation,
		Best:       cloneIndividual(best),
		BestEver:   cloneIndividual(e.bestEver),
		Stats:      ComputeStats(e.population.Fitness()),
	}

	if e.snapshotPopulation {
		snap.Population = e.population.Clone()
		sortByFitness(snap.Population)
	}

	return snap
}

// advance builds the next population from the current evaluated one
func (e *Engine) advance() {
	fitness := e.population.Fitness()
	sample := e.selector.Prepare(fitness)
	mean := ComputeStats(fitness).Mean

	need := e.cfg.PopulationSize - e.cfg.Elitism
	offspring := make(Population, 0, need)

	// Each pair draws fresh parents; when need is odd the last pair keeps only its first child
	for len(offspring) < need {
		a := e.population[sample(e.stream)]
		b := e.population[sample(e.stream)]

		c1, c2 := Recombine(e.crossover, e.cfg.Crossover.Probability, a.Genes, b.Genes, e.stream)
		rate := e.mutationRate(a, b, mean)

		e.mutator.Mutate(c1, rate, e.stream)
		offspring = append(offspring, Individual{Genes: c1})

		if len(offspring) < need {
			e.mutator.Mutate(c2, rate, e.stream)
			offspring = append(offspring, Individual{Genes: c2})
		}
	}

	e.population = ApplyElitism(e.population, offspring, e.cfg.Elitism)
}

// mutationRate picks the per-gene rate for the children of a and b
func (e *Engine) mutationRate(a, b Individual, populationMean float64) float64 {
	m := e.cfg.Mutation
	if m.Adaptive && (a.Fitness+b.Fitness)/2 < populationMean {
		return m.BelowAverageProbability
	}

	return m.Probability
}

// stopReason reports whether a stopping rule has fired after a completed generation
func (e *Engine) stopReason() (StopReason, bool) {
	if e.cfg.Generations > 0 && e.generation >= e.cfg.Generations {
		return ReasonGenerationLimit, true
	}

	if e.cfg.StagnationLimit > 0 && e.stagnant >= e.cfg.StagnationLimit {
		return ReasonStagnation, true
	}

	return "", false
}

// finish evaluates the final population and freezes the result
func (e *Engine) finish(reason StopReason, workers *pool.WorkerPool) {
	e.evaluate(workers)

	best := e.population[e.population.BestIndex()]
	if best.Fitness > e.bestEver.Fitness {
		e.bestEver = cloneIndividual(best)
	}

	e.state = StateTerminated
	e.result = Result{
		Best:        cloneIndividual(best),
		BestEver:    cloneIndividual(e.bestEver),
		Trace:       e.Trace(),
		Generations: e.generation,
		Evaluations: e.evaluations,
		Reason:      reason,
	}

	e.debugf("[GA] Terminated after %d generations (%s): best=%.6f best-ever=%.6f evaluations=%d",
		e.generation, reason, best.Fitness, e.bestEver.Fitness, e.evaluations)
}

func cloneIndividual(ind Individual) Individual {
	return Individual{Genes: ind.Genes.Clone(), Fitness: ind.Fitness, Evaluated: ind.Evaluated}
}
