// ABOUTME: Integration tests for the TUI run lifecycle
// ABOUTME: Drives a scripted runner through startRun, waitForUpdate and restarts

package tui

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"genetic-lab/config"
	"genetic-lab/ga"
	"genetic-lab/problems"
)

// scriptedRun sends one update per generation of a fixed climb and then a final update
func scriptedRun(generations int) RunFunc {
	return func(ctx context.Context, cfg config.FileConfig, updates chan<- Update, epoch int) {
		var trace ga.Trace

		for gen := range generations {
			trace = append(trace, ga.TracePoint{Generation: gen, Best: float64(gen)})

			select {
			case updates <- Update{
				Epoch:      epoch,
				Problem:    cfg.Problem,
				Generation: gen,
				Best:       float64(gen),
				BestEver:   float64(gen),
				Trace:      append(ga.Trace(nil), trace...),
				Done:       gen == generations-1,
				Reason:     ga.ReasonGenerationLimit,
			}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func newScriptedModel(t *testing.T, generations int) model {
	t.Helper()

	shared := &config.SharedConfig{}
	shared.Update(config.DefaultConfig(problems.NameKnapsack))

	opts := Options{ConfigPath: filepath.Join(t.TempDir(), "config.toml")}

	return initModel(opts, Dependencies{Config: shared, Run: scriptedRun(generations)})
}

// drain applies every queued update to the model
func drain(t *testing.T, m model, count int) model {
	t.Helper()

	for range count {
		msg := waitForUpdate(m.updateChan)()

		next, _ := m.Update(msg)

		var ok bool
		if m, ok = next.(model); !ok {
			t.Fatalf("Update returned %T", next)
		}
	}

	return m
}

func TestRunLifecycle(t *testing.T) {
	const generations = 5

	m := newScriptedModel(t, generations)

	// The scripted run fits in the update buffer, so it returns immediately
	if msg := m.startRun(m.ctx, *m.localConfig, m.epoch)(); msg != nil {
		t.Fatalf("startRun returned %v, want nil", msg)
	}

	m = drain(t, m, generations)

	if !m.done || m.reason != ga.ReasonGenerationLimit {
		t.Errorf("done %v reason %q after the final update", m.done, m.reason)
	}

	if len(m.trace) != generations || m.bestEver != generations-1 {
		t.Errorf("trace %d best-ever %.1f", len(m.trace), m.bestEver)
	}

	if m.cursorPos != generations-1 {
		t.Errorf("cursorPos = %d, want %d", m.cursorPos, generations-1)
	}
}

func TestRestartDropsStaleUpdates(t *testing.T) {
	const generations = 3

	m := newScriptedModel(t, generations)

	m.startRun(m.ctx, *m.localConfig, m.epoch)()

	// A parameter change bumps the epoch before the restart message is handled
	oldCtx := m.ctx
	cmd := m.changeSelectedParam(true)

	next, _ := m.Update(cmd())
	m = next.(model)

	if oldCtx.Err() == nil {
		t.Error("restart should cancel the previous run")
	}

	if m.generation != 0 || m.trace != nil || m.done {
		t.Error("restart should clear the previous run state")
	}

	// Updates already queued by the old run carry epoch 0
	m = drain(t, m, generations)

	if len(m.trace) != 0 {
		t.Errorf("stale updates were applied: trace has %d points", len(m.trace))
	}

	// The new run reports under the new epoch
	m.startRun(m.ctx, *m.localConfig, m.epoch)()
	m = drain(t, m, generations)

	if len(m.trace) != generations || !m.done {
		t.Errorf("trace %d done %v for the current run", len(m.trace), m.done)
	}
}

func TestRestartDoesNotAddReaders(t *testing.T) {
	const generations = 2

	m := newScriptedModel(t, generations)

	for restart := 1; restart <= 3; restart++ {
		m.epoch++

		next, cmd := m.Update(runRestartMsg{})
		m = next.(model)

		// Only the run itself: a batch here would queue another channel reader
		if msg := cmd(); msg != nil {
			t.Fatalf("restart %d command returned %T, want only the run", restart, msg)
		}

		if got := len(m.updateChan); got != generations*restart {
			t.Fatalf("restart %d: %d updates queued, want %d", restart, got, generations*restart)
		}
	}

	m = drain(t, m, 3*generations)

	if len(m.trace) != generations || !m.done {
		t.Errorf("trace %d done %v after the last restart", len(m.trace), m.done)
	}
}

func TestWindowResize(t *testing.T) {
	m := newScriptedModel(t, 0)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 30, Height: 10})
	m = next.(model)

	if m.viewport.Width != minViewportWidth || m.viewport.Height != minViewportHeight {
		t.Errorf("viewport %dx%d, want the minimum %dx%d", m.viewport.Width, m.viewport.Height, minViewportWidth, minViewportHeight)
	}

	next, _ = m.Update(tea.WindowSizeMsg{Width: 160, Height: 50})
	m = next.(model)

	if m.viewport.Height != 50-totalUIChrome {
		t.Errorf("viewport height = %d, want %d", m.viewport.Height, 50-totalUIChrome)
	}
}
