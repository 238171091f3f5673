// ABOUTME: Progress tracking and update delivery for engine runs
// ABOUTME: Measures generation speed and feeds the live viewer through its update channel

package main

import (
	"context"
	"time"

	"genetic-lab/config"
	"genetic-lab/ga"
	"genetic-lab/tui"
)

const (
	// reportInterval is how many generations may pass without an update when nothing improves
	reportInterval = 50
	// viewerPace slows viewer runs down so that convergence can be watched
	viewerPace = 20 * time.Millisecond
)

// progressTracker measures generations per second between reports
type progressTracker struct {
	lastGenTime  time.Time
	lastGenCount int
	genPerSec    float64
}

func newProgressTracker() *progressTracker {
	return &progressTracker{lastGenTime: time.Now()}
}

// observe records that gen generations have completed and returns the current speed
func (pt *progressTracker) observe(gen int) float64 {
	now := time.Now()

	if elapsed := now.Sub(pt.lastGenTime).Seconds(); elapsed > 0 && gen > pt.lastGenCount {
		pt.genPerSec = float64(gen-pt.lastGenCount) / elapsed
		pt.lastGenTime = now
		pt.lastGenCount = gen
	}

	return pt.genPerSec
}

// shouldReport decides whether a generation is worth an update
func shouldReport(gen int, improved bool) bool {
	return improved || gen%reportInterval == 0
}

// runForViewer runs one engine for the live viewer. Progress updates are dropped when the
// viewer is behind; the final update is delivered unless ctx is cancelled first.
func runForViewer(ctx context.Context, cfg config.FileConfig, updates chan<- tui.Update, epoch int) {
	runPaced(ctx, cfg, updates, epoch, viewerPace)
}

func runPaced(ctx context.Context, cfg config.FileConfig, updates chan<- tui.Update, epoch int, pace time.Duration) {
	problem, err := cfg.BuildProblem()
	if err != nil {
		deliver(ctx, updates, tui.Update{Epoch: epoch, Problem: cfg.Problem, Done: true, Err: err})

		return
	}

	engine, err := ga.New(cfg.EngineFor(problem.Length()), problem.Fitness, ga.WithDebugf(debugf))
	if err != nil {
		debugf("[RUN] Refusing %s (epoch %d): %v", cfg.Problem, epoch, err)
		deliver(ctx, updates, tui.Update{Epoch: epoch, Problem: cfg.Problem, Done: true, Err: err})

		return
	}

	tracker := newProgressTracker()
	reference := problem.Reference()
	bestEver := 0.0

	for snap := range engine.Generations() {
		if ctx.Err() != nil {
			break
		}

		improved := snap.Generation == 0 || hasFitnessImproved(snap.BestEver.Fitness, bestEver, fitnessImprovementEpsilon)
		bestEver = snap.BestEver.Fitness
		genPerSec := tracker.observe(snap.Generation)

		if pace > 0 || shouldReport(snap.Generation, improved) {
			select {
			case updates <- tui.Update{
				Epoch:      epoch,
				Problem:    problem.Name(),
				Generation: snap.Generation,
				Best:       snap.Best.Fitness,
				BestEver:   snap.BestEver.Fitness,
				Stats:      snap.Stats,
				Trace:      engine.Trace(),
				Summary:    problem.Summarize(snap.BestEver.Genes),
				Reference:  reference,
				GenPerSec:  genPerSec,
			}:
			default:
				// Don't block if the viewer is behind
			}
		}

		if pace > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(pace):
			}
		}
	}

	if ctx.Err() != nil {
		debugf("[RUN] %s cancelled (epoch %d)", cfg.Problem, epoch)

		return
	}

	result, _ := engine.Result()

	deliver(ctx, updates, tui.Update{
		Epoch:      epoch,
		Problem:    problem.Name(),
		Generation: result.Generations,
		Best:       result.Best.Fitness,
		BestEver:   result.BestEver.Fitness,
		Stats:      lastStats(engine),
		Trace:      result.Trace,
		Summary:    problem.Summarize(result.BestEver.Genes),
		Reference:  reference,
		GenPerSec:  tracker.observe(result.Generations),
		Done:       true,
		Reason:     result.Reason,
	})
}

// deliver blocks until the update is accepted or ctx is cancelled
func deliver(ctx context.Context, updates chan<- tui.Update, u tui.Update) {
	select {
	case updates <- u:
	case <-ctx.Done():
	}
}

// lastStats summarizes the final population of a terminated engine
func lastStats(engine *ga.Engine) ga.Stats {
	return ga.ComputeStats(engine.Population().Fitness())
}
