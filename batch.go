// ABOUTME: Independent repeated runs with derived seeds and their aggregate statistics
// ABOUTME: Fans runs out over a bounded goroutine pool and summarizes objectives with gonum

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"runtime"
	"text/tabwriter"

	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/stat"

	"genetic-lab/ga"
	"genetic-lab/problems"
)

// batchRun is the outcome of one run of a batch
type batchRun struct {
	Index   int
	Seed    uint64
	Result  ga.Result
	Summary problems.Summary
	Err     error
}

// BatchSummary aggregates the native objectives of a batch
type BatchSummary struct {
	Runs     int
	Feasible int
	// Best and Worst follow the objective direction of the problem
	Best    float64
	Worst   float64
	Mean    float64
	StdDev  float64
	BestRun int
}

// FeasibleRate is the share of runs whose best-ever solution is feasible
func (s BatchSummary) FeasibleRate() float64 {
	if s.Runs == 0 {
		return 0
	}

	return float64(s.Feasible) / float64(s.Runs)
}

// runBatch executes rc.Config.Runs independent runs. Run i uses DeriveSeed(seed, i), so the
// results do not depend on how many runs execute at once.
func runBatch(ctx context.Context, rc *RunContext) []batchRun {
	runs := make([]batchRun, rc.Config.Runs)

	p := pool.New().WithMaxGoroutines(min(rc.Config.Runs, runtime.NumCPU()))

	for i := range runs {
		p.Go(func() {
			cfg := rc.Engine
			cfg.Seed = ga.DeriveSeed(rc.Engine.Seed, uint64(i))

			runs[i] = runOnce(ctx, rc.Problem, cfg)
			runs[i].Index = i
		})
	}

	p.Wait()

	return runs
}

// runOnce runs a single engine until it terminates or ctx is cancelled
func runOnce(ctx context.Context, problem problems.Problem, cfg ga.Config) batchRun {
	run := batchRun{Seed: cfg.Seed}

	engine, err := ga.New(cfg, problem.Fitness, ga.WithDebugf(debugf))
	if err != nil {
		run.Err = fmt.Errorf("failed to create engine: %w", err)

		return run
	}

	for range engine.Generations() {
		if ctx.Err() != nil {
			break
		}
	}

	run.Result, _ = engine.Result()
	run.Summary = problem.Summarize(run.Result.BestEver.Genes)

	debugf("[BATCH] Run with seed %d: %s after %d generations, objective %.6f",
		run.Seed, run.Result.Reason, run.Result.Generations, run.Summary.Objective)

	return run
}

// summarizeBatch aggregates the objectives of the runs that produced a result
func summarizeBatch(runs []batchRun, maximize bool) BatchSummary {
	summary := BatchSummary{BestRun: -1}

	objectives := make([]float64, 0, len(runs))

	for i, run := range runs {
		if run.Err != nil {
			continue
		}

		obj := run.Summary.Objective
		objectives = append(objectives, obj)

		if run.Summary.Feasible {
			summary.Feasible++
		}

		better := obj < summary.Best
		if maximize {
			better = obj > summary.Best
		}

		if summary.BestRun < 0 || better {
			summary.Best = obj
			summary.BestRun = i
		}

		worse := obj > summary.Worst
		if maximize {
			worse = obj < summary.Worst
		}

		if len(objectives) == 1 || worse {
			summary.Worst = obj
		}
	}

	summary.Runs = len(objectives)

	switch len(objectives) {
	case 0:
		summary.Best, summary.Worst, summary.Mean = math.NaN(), math.NaN(), math.NaN()
	case 1:
		summary.Mean = objectives[0]
	default:
		summary.Mean, summary.StdDev = stat.MeanStdDev(objectives, nil)
	}

	return summary
}

// printBatch writes one row per run followed by the aggregate statistics
func printBatch(out io.Writer, problem problems.Problem, runs []batchRun, summary BatchSummary) {
	ref := problem.Reference()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "Run\tSeed\tGens\tObjective\tFeasible\tGap\tReason"); err != nil {
		log.Printf("Warning: failed to write header: %v", err)
	}

	if _, err := fmt.Fprintln(w, "---\t----\t----\t---------\t--------\t---\t------"); err != nil {
		log.Printf("Warning: failed to write separator: %v", err)
	}

	for _, run := range runs {
		if run.Err != nil {
			fmt.Fprintf(w, "%d\t%d\t-\t-\t-\t-\t%v\n", run.Index+1, run.Seed, run.Err)

			continue
		}

		if _, err := fmt.Fprintf(w, "%d\t%d\t%d\t%.4f\t%t\t%.2f%%\t%s\n",
			run.Index+1,
			run.Seed,
			run.Result.Generations,
			run.Summary.Objective,
			run.Summary.Feasible,
			ref.Gap(run.Summary.Objective),
			run.Result.Reason,
		); err != nil {
			log.Printf("Warning: failed to write run %d: %v", run.Index+1, err)
		}
	}

	if err := w.Flush(); err != nil {
		log.Printf("Warning: failed to flush output: %v", err)
	}

	fmt.Fprintf(out, "\nBest %.4f | Worst %.4f | Mean %.4f ± %.4f | Feasible %d/%d (%.0f%%)\n",
		summary.Best, summary.Worst, summary.Mean, summary.StdDev,
		summary.Feasible, summary.Runs, 100*summary.FeasibleRate())

	if summary.BestRun >= 0 {
		best := runs[summary.BestRun]
		fmt.Fprintf(out, "\nBest solution (run %d, gap %.2f%%):\n", summary.BestRun+1, ref.Gap(best.Summary.Objective))

		for _, d := range best.Summary.Details {
			fmt.Fprintf(out, "  %s\n", d)
		}
	}
}
