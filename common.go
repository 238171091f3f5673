// ABOUTME: Shared initialization code for all modes (single run, batch, TUI)
// ABOUTME: Provides config loading with flag overrides, problem setup and debug logging

package main

import (
	"fmt"
	"log"
	"os"

	"genetic-lab/config"
	"genetic-lab/ga"
	"genetic-lab/problems"
)

const debugLogFile = "genetic-lab-debug.log"

var debugLog *log.Logger

// RunOptions contains command-line options for all modes
type RunOptions struct {
	ConfigPath string
	Problem    string
	DebugLog   bool
	PrintTrace bool

	// Overrides applied on top of the config file; zero values leave the file untouched
	Seed        uint64
	SeedSet     bool
	Generations int
	Runs        int
}

// RunContext holds everything a run needs once the configuration has been resolved
type RunContext struct {
	Config  config.FileConfig
	Problem problems.Problem
	Engine  ga.Config
}

// InitializeRun loads the config, applies flag overrides, builds the problem and validates
// the engine settings so that no run starts with a bad configuration
func InitializeRun(opts RunOptions) (*RunContext, error) {
	cfg, err := config.LoadConfigAs(opts.ConfigPath, opts.Problem)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", opts.ConfigPath, err)
	}

	applyOverrides(&cfg, opts)

	if cfg.Runs < 1 {
		return nil, fmt.Errorf("runs must be at least 1, got %d", cfg.Runs)
	}

	problem, err := cfg.BuildProblem()
	if err != nil {
		return nil, fmt.Errorf("failed to build problem: %w", err)
	}

	engine := cfg.EngineFor(problem.Length())
	if err := engine.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine settings for %s: %w", problem.Name(), err)
	}

	return &RunContext{Config: cfg, Problem: problem, Engine: engine}, nil
}

// applyOverrides copies the flags the user actually set into the config
func applyOverrides(cfg *config.FileConfig, opts RunOptions) {
	if opts.SeedSet {
		cfg.Engine.Seed = opts.Seed
	}

	if opts.Generations > 0 {
		cfg.Engine.Generations = opts.Generations
	}

	if opts.Runs > 0 {
		cfg.Runs = opts.Runs
	}
}

// SetupDebugLog initializes debug logging
func SetupDebugLog(filename string) error {
	if err := InitDebugLog(filename); err != nil {
		return fmt.Errorf("failed to initialize debug log: %w", err)
	}

	if isTTY(os.Stdout) {
		fmt.Printf("Debug logging enabled: %s\n", filename)
	}

	return nil
}

// InitDebugLog initializes debug logging
func InitDebugLog(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugLog = log.New(f, "", log.Ltime|log.Lmicroseconds)

	return nil
}

// debugf logs debug messages if enabled
func debugf(format string, args ...interface{}) {
	if debugLog != nil {
		debugLog.Printf(format, args...)
	}
}

// isTTY checks if the given file is a terminal
func isTTY(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}

	return (stat.Mode() & os.ModeCharDevice) != 0
}

// truncate shortens string to maxLen, adding "..." if needed
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return s[:maxLen]
	}

	return s[:maxLen-3] + "..."
}

// hasFitnessImproved returns true if newFitness is significantly higher (uses epsilon for float comparison)
func hasFitnessImproved(newFitness, oldFitness, epsilon float64) bool {
	return newFitness > oldFitness+epsilon
}
