// ABOUTME: CLI mode implementation for non-interactive optimization runs
// ABOUTME: Handles progress display, result output, and signal handling for command-line usage

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"genetic-lab/ga"
	"genetic-lab/problems"
)

const (
	spinnerUpdateInterval     = 500 * time.Millisecond
	fitnessImprovementEpsilon = 1e-10
)

// RunCLI executes CLI mode optimization
func RunCLI(opts RunOptions) error {
	if opts.DebugLog {
		if err := SetupDebugLog(debugLogFile); err != nil {
			return err
		}
	}

	rc, err := InitializeRun(opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	defer signal.Stop(stop)

	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	ref := rc.Problem.Reference()

	fmt.Printf("Problem: %s (%s)\n", rc.Problem.Name(), rc.Problem.Description())
	fmt.Printf("Engine: population %d, generations %d, %s selection, %s crossover %.2f, %s mutation %.3f, elitism %d, seed %d\n",
		rc.Engine.PopulationSize, rc.Engine.Generations, rc.Engine.Selection.Type,
		rc.Engine.Crossover.Type, rc.Engine.Crossover.Probability,
		rc.Engine.Mutation.Type, rc.Engine.Mutation.Probability,
		rc.Engine.Elitism, rc.Engine.Seed)
	fmt.Printf("Reference optimum: %.4f (%s)\n", ref.Objective, ref.Method)

	if rc.Config.Runs > 1 {
		return runBatchCLI(ctx, rc)
	}

	fmt.Println("\nEvolving... (press Ctrl+C to stop early)")
	fmt.Println()

	result, err := cliRun(ctx, rc)
	if err != nil {
		return err
	}

	printResult(os.Stdout, rc.Problem, result)

	if opts.PrintTrace {
		printTrace(os.Stdout, result.Trace)
	}

	return nil
}

// runBatchCLI executes and reports independent runs with derived seeds
func runBatchCLI(ctx context.Context, rc *RunContext) error {
	fmt.Printf("\nExecuting %d independent runs...\n\n", rc.Config.Runs)

	startTime := time.Now()

	runs := runBatch(ctx, rc)
	summary := summarizeBatch(runs, rc.Problem.Reference().Maximize)

	printBatch(os.Stdout, rc.Problem, runs, summary)
	fmt.Printf("\nCompleted %d runs in %v\n", len(runs), time.Since(startTime).Round(time.Millisecond))

	if ctx.Err() != nil {
		return fmt.Errorf("batch interrupted: %w", ctx.Err())
	}

	return nil
}

// cliRun drives one engine with CLI-specific progress display
func cliRun(ctx context.Context, rc *RunContext) (ga.Result, error) {
	startTime := time.Now()

	engine, err := ga.New(rc.Engine, rc.Problem.Fitness, ga.WithDebugf(debugf))
	if err != nil {
		return ga.Result{}, fmt.Errorf("failed to create engine: %w", err)
	}

	// The engine loop runs in its own goroutine and reports improvements here
	type improvement struct {
		generation int
		fitness    float64
	}

	improvements := make(chan improvement, 10)
	generation := make(chan int, 1)
	done := make(chan ga.Result, 1)

	go func() {
		defer close(improvements)

		previous := math.Inf(-1)

		for snap := range engine.Generations() {
			if ctx.Err() != nil {
				break
			}

			// Latest generation for the spinner; stale values are simply replaced
			select {
			case <-generation:
			default:
			}
			generation <- snap.Generation

			if hasFitnessImproved(snap.BestEver.Fitness, previous, fitnessImprovementEpsilon) {
				previous = snap.BestEver.Fitness
				improvements <- improvement{snap.Generation, snap.BestEver.Fitness}
			}
		}

		result, _ := engine.Result()
		done <- result
	}()

	previousBestFitness := math.Inf(-1)
	minPrecision := 2 // Start with 2 decimals, increase monotonically as needed (max 10)

	// Detect if stdout is a TTY - no spinner needed in non-interactive contexts (cron, pipes, etc.)
	isTerminal := isTTY(os.Stdout)

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinnerIdx := 0

	// Non-TTY: a nil channel never fires
	var tick <-chan time.Time

	if isTerminal {
		statusTicker := time.NewTicker(spinnerUpdateInterval)
		defer statusTicker.Stop()

		tick = statusTicker.C
	}

	currentGen := 0

	for improvements != nil {
		select {
		case imp, ok := <-improvements:
			if !ok {
				improvements = nil

				break
			}

			if isTerminal {
				// Clear status line before printing progress (TTY only)
				fmt.Print("\r\033[K")
			}

			var fitnessStr string
			fitnessStr, minPrecision = FormatWithMonotonicPrecision(previousBestFitness, imp.fitness, minPrecision)
			fmt.Printf("%s Gen %7d - fitness: %s\n", formatElapsed(time.Since(startTime)), imp.generation, fitnessStr)
			previousBestFitness = imp.fitness

		case gen := <-generation:
			currentGen = gen

		case <-tick:
			fmt.Printf("\r%s Gen %d %s     ", formatElapsed(time.Since(startTime)), currentGen, spinnerFrames[spinnerIdx])
			spinnerIdx = (spinnerIdx + 1) % len(spinnerFrames)
		}
	}

	result := <-done

	// Clear status line at end (TTY only)
	if isTerminal {
		fmt.Print("\r\033[K")
	}

	fmt.Printf("\nCompleted %d generations in %v\n", result.Generations, time.Since(startTime).Round(time.Millisecond))

	return result, nil
}

// formatElapsed formats elapsed time right-padded to 6 chars for max "59m59s"
func formatElapsed(d time.Duration) string {
	var s string
	if d >= time.Minute {
		s = fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	} else {
		s = fmt.Sprintf("%ds", int(d.Seconds()))
	}

	return fmt.Sprintf("%6s", s)
}

// printResult writes the final result table and the decoded best-ever solution
func printResult(out io.Writer, problem problems.Problem, result ga.Result) {
	summary := problem.Summarize(result.BestEver.Genes)
	ref := problem.Reference()

	fmt.Fprintln(out, "\nResult:")

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"Stop reason", string(result.Reason)},
		{"Generations", fmt.Sprintf("%d", result.Generations)},
		{"Evaluations", fmt.Sprintf("%d", result.Evaluations)},
		{"Best-ever fitness", fmt.Sprintf("%.6f", result.BestEver.Fitness)},
		{"Final best fitness", fmt.Sprintf("%.6f", result.Best.Fitness)},
		{"Objective", fmt.Sprintf("%.4f", summary.Objective)},
		{"Feasible", fmt.Sprintf("%t", summary.Feasible)},
		{"Reference", fmt.Sprintf("%.4f (%s)", ref.Objective, ref.Method)},
		{"Gap", fmt.Sprintf("%.2f%%", ref.Gap(summary.Objective))},
		{"Chromosome", truncate(result.BestEver.Genes.String(), 80)},
	}

	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", row[0], row[1]); err != nil {
			log.Printf("Warning: failed to write %s: %v", row[0], err)
		}
	}

	if err := w.Flush(); err != nil {
		log.Printf("Warning: failed to flush output: %v", err)
	}

	fmt.Fprintln(out, "\nBest solution:")

	for _, d := range summary.Details {
		fmt.Fprintf(out, "  %s\n", d)
	}
}

// printTrace writes the convergence trace as a table
func printTrace(out io.Writer, trace ga.Trace) {
	fmt.Fprintln(out, "\nConvergence trace:")

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintln(w, "Gen\tBest\t"); err != nil {
		log.Printf("Warning: failed to write header: %v", err)
	}

	for _, p := range trace {
		if _, err := fmt.Fprintf(w, "%d\t%.6f\t\n", p.Generation, p.Best); err != nil {
			log.Printf("Warning: failed to write generation %d: %v", p.Generation, err)
		}
	}

	if err := w.Flush(); err != nil {
		log.Printf("Warning: failed to flush output: %v", err)
	}
}
