// ABOUTME: Tests for the viewer runner and progress tracking
// ABOUTME: Verifies update delivery, epochs, refused configs and cancellation

package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"genetic-lab/config"
	"genetic-lab/ga"
	"genetic-lab/problems"
	"genetic-lab/tui"
)

// collect runs one unpaced viewer run and returns every update it sent
func collect(ctx context.Context, t *testing.T, cfg config.FileConfig, epoch int) []tui.Update {
	t.Helper()

	updates := make(chan tui.Update, 1000)
	runPaced(ctx, cfg, updates, epoch, 0)
	close(updates)

	var got []tui.Update
	for u := range updates {
		got = append(got, u)
	}

	return got
}

func TestRunPaced_DeliversFinalUpdate(t *testing.T) {
	cfg := config.DefaultConfig(problems.NameKnapsack)

	got := collect(context.Background(), t, cfg, 7)
	if len(got) == 0 {
		t.Fatal("no updates sent")
	}

	for i, u := range got {
		if u.Epoch != 7 {
			t.Errorf("update %d has epoch %d, want 7", i, u.Epoch)
		}

		if u.Done != (i == len(got)-1) {
			t.Errorf("update %d Done = %v", i, u.Done)
		}
	}

	final := got[len(got)-1]

	if final.Reason != ga.ReasonGenerationLimit || final.Generation != cfg.Engine.Generations {
		t.Errorf("final update reason %q generation %d", final.Reason, final.Generation)
	}

	if len(final.Trace) != cfg.Engine.Generations {
		t.Errorf("final trace has %d points, want %d", len(final.Trace), cfg.Engine.Generations)
	}

	if !final.Summary.Feasible || final.Summary.Objective < 20 {
		t.Errorf("final summary = %+v", final.Summary)
	}

	if final.Reference.Objective != problems.KnapsackOptimum {
		t.Errorf("reference = %v", final.Reference)
	}
}

func TestRunPaced_RefusedConfig(t *testing.T) {
	cfg := config.DefaultConfig(problems.NameKnapsack)
	cfg.Engine.Generations = 0
	cfg.Engine.StagnationLimit = 0

	got := collect(context.Background(), t, cfg, 3)
	if len(got) != 1 {
		t.Fatalf("got %d updates, want 1", len(got))
	}

	if !errors.Is(got[0].Err, ga.ErrInvalidConfig) || !got[0].Done || got[0].Epoch != 3 {
		t.Errorf("update = %+v", got[0])
	}
}

func TestRunPaced_UnknownProblem(t *testing.T) {
	cfg := config.DefaultConfig("sudoku")

	got := collect(context.Background(), t, cfg, 0)
	if len(got) != 1 || !errors.Is(got[0].Err, problems.ErrUnknownProblem) {
		t.Fatalf("updates = %+v", got)
	}
}

func TestRunPaced_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Unbuffered and never read: a cancelled run must not block on delivery
	updates := make(chan tui.Update)
	finished := make(chan struct{})

	go func() {
		runForViewer(ctx, config.DefaultConfig(problems.NameTour), updates, 0)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled run did not return")
	}
}

func TestShouldReport(t *testing.T) {
	if !shouldReport(3, true) {
		t.Error("improvements are always reported")
	}

	if shouldReport(3, false) {
		t.Error("generation 3 without improvement should be skipped")
	}

	if !shouldReport(reportInterval, false) {
		t.Error("every reportInterval generations is reported")
	}
}

func TestProgressTracker(t *testing.T) {
	pt := newProgressTracker()
	pt.lastGenTime = time.Now().Add(-time.Second)

	if rate := pt.observe(100); rate < 50 || rate > 101 {
		t.Errorf("rate = %.1f gen/s, want about 100", rate)
	}

	// No new generations keeps the last measurement
	before := pt.genPerSec
	if rate := pt.observe(100); rate != before {
		t.Errorf("rate changed to %.1f without progress", rate)
	}
}

func TestPrintResultAndTrace(t *testing.T) {
	problem := problems.DefaultKnapsack()
	cfg := config.DefaultConfig(problems.NameKnapsack)

	engine, err := ga.New(cfg.EngineFor(problem.Length()), problem.Fitness)
	if err != nil {
		t.Fatalf("ga.New: %v", err)
	}

	result := engine.Run()

	var out bytes.Buffer
	printResult(&out, problem, result)
	printTrace(&out, result.Trace)

	for _, want := range []string{"Stop reason", string(ga.ReasonGenerationLimit), "Best solution:", "Convergence trace:"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q", want)
		}
	}

	if rows := strings.Count(out.String(), "\n"); rows < len(result.Trace) {
		t.Errorf("only %d lines for %d trace points", rows, len(result.Trace))
	}
}
