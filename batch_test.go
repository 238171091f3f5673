// ABOUTME: Tests for independent repeated runs and their summary statistics
// ABOUTME: Verifies derived seeds, reproducibility under concurrency and aggregation

package main

import (
	"bytes"
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"genetic-lab/ga"
	"genetic-lab/problems"
)

func newBatchContext(t *testing.T, problem string, runs int) *RunContext {
	t.Helper()

	rc, err := InitializeRun(RunOptions{
		ConfigPath: filepath.Join(t.TempDir(), "missing.toml"),
		Problem:    problem,
		Runs:       runs,
	})
	if err != nil {
		t.Fatalf("InitializeRun: %v", err)
	}

	return rc
}

func TestRunBatch_Reproducible(t *testing.T) {
	rc := newBatchContext(t, problems.NameKnapsack, 4)

	first := runBatch(context.Background(), rc)
	second := runBatch(context.Background(), rc)

	if len(first) != 4 {
		t.Fatalf("got %d runs, want 4", len(first))
	}

	seeds := make(map[uint64]bool)

	for i := range first {
		if first[i].Err != nil {
			t.Fatalf("run %d: %v", i, first[i].Err)
		}

		if first[i].Index != i {
			t.Errorf("run %d reports index %d", i, first[i].Index)
		}

		if first[i].Seed != ga.DeriveSeed(rc.Engine.Seed, uint64(i)) {
			t.Errorf("run %d seed %d is not derived from the base seed", i, first[i].Seed)
		}

		seeds[first[i].Seed] = true

		if first[i].Result.BestEver.Fitness != second[i].Result.BestEver.Fitness {
			t.Errorf("run %d not reproducible: %.4f vs %.4f", i, first[i].Result.BestEver.Fitness, second[i].Result.BestEver.Fitness)
		}

		if first[i].Result.Reason != ga.ReasonGenerationLimit {
			t.Errorf("run %d stopped with %q", i, first[i].Result.Reason)
		}
	}

	if len(seeds) != 4 {
		t.Errorf("only %d distinct seeds across 4 runs", len(seeds))
	}
}

func TestRunBatch_Cancelled(t *testing.T) {
	rc := newBatchContext(t, problems.NameDiet, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i, run := range runBatch(ctx, rc) {
		if run.Result.Reason != ga.ReasonAborted {
			t.Errorf("run %d reason = %q, want %q", i, run.Result.Reason, ga.ReasonAborted)
		}
	}
}

func TestSummarizeBatch(t *testing.T) {
	runs := []batchRun{
		{Index: 0, Summary: problems.Summary{Objective: 0.6, Feasible: true}},
		{Index: 1, Summary: problems.Summary{Objective: 0.5, Feasible: false}},
		{Index: 2, Summary: problems.Summary{Objective: 0.7, Feasible: true}},
		{Index: 3, Err: errors.New("refused")},
	}

	t.Run("minimize", func(t *testing.T) {
		s := summarizeBatch(runs, false)

		if s.Runs != 3 || s.Feasible != 2 {
			t.Errorf("runs %d feasible %d, want 3/2", s.Runs, s.Feasible)
		}

		if s.Best != 0.5 || s.Worst != 0.7 || s.BestRun != 1 {
			t.Errorf("best %.2f (run %d) worst %.2f", s.Best, s.BestRun, s.Worst)
		}

		if math.Abs(s.Mean-0.6) > 1e-9 || math.Abs(s.StdDev-0.1) > 1e-9 {
			t.Errorf("mean %.4f stddev %.4f, want 0.6/0.1", s.Mean, s.StdDev)
		}

		if math.Abs(s.FeasibleRate()-2.0/3) > 1e-9 {
			t.Errorf("FeasibleRate() = %.4f", s.FeasibleRate())
		}
	})

	t.Run("maximize", func(t *testing.T) {
		s := summarizeBatch(runs, true)

		if s.Best != 0.7 || s.Worst != 0.5 || s.BestRun != 2 {
			t.Errorf("best %.2f (run %d) worst %.2f", s.Best, s.BestRun, s.Worst)
		}
	})

	t.Run("single run", func(t *testing.T) {
		s := summarizeBatch(runs[:1], true)

		if s.Mean != 0.6 || s.StdDev != 0 {
			t.Errorf("mean %.2f stddev %.2f, want 0.6/0", s.Mean, s.StdDev)
		}
	})

	t.Run("no results", func(t *testing.T) {
		s := summarizeBatch(runs[3:], true)

		if s.Runs != 0 || s.BestRun != -1 || !math.IsNaN(s.Mean) || s.FeasibleRate() != 0 {
			t.Errorf("empty summary = %+v", s)
		}
	})
}

func TestPrintBatch(t *testing.T) {
	rc := newBatchContext(t, problems.NameKnapsack, 2)
	runs := runBatch(context.Background(), rc)

	var out bytes.Buffer
	printBatch(&out, rc.Problem, runs, summarizeBatch(runs, true))

	for _, want := range []string{"Run", "Feasible", "Best solution (run"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("batch report missing %q:\n%s", want, out.String())
		}
	}
}
