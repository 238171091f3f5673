// ABOUTME: Interfaces and message types connecting the TUI to the engine runner
// ABOUTME: Allows clean separation and easy testing with mocks

package tui

import (
	"context"

	"genetic-lab/config"
	"genetic-lab/ga"
	"genetic-lab/problems"
)

// ConfigProvider provides thread-safe access to the run configuration
type ConfigProvider interface {
	Get() config.FileConfig
	Update(cfg config.FileConfig)
}

// RunFunc executes one engine run for cfg, sending progress until the run terminates or ctx is cancelled.
// Every update carries the epoch it was started with.
type RunFunc func(ctx context.Context, cfg config.FileConfig, updates chan<- Update, epoch int)

// Update represents a progress update from a running engine
type Update struct {
	Epoch      int
	Problem    string
	Generation int
	Best       float64
	BestEver   float64
	Stats      ga.Stats
	Trace      ga.Trace
	// Summary decodes the best-ever chromosome
	Summary   problems.Summary
	Reference problems.Reference
	GenPerSec float64

	// Done is set on the last update of a run
	Done   bool
	Reason ga.StopReason
	// Err reports a configuration the runner refused to start
	Err error
}
