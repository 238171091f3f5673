// ABOUTME: Entry point for the genetic-lab application
// ABOUTME: Handles command-line parsing, profiling, and routing to CLI, batch or TUI modes

// Package main provides the entry point for genetic-lab, a genetic algorithm workbench for
// benchmark optimization problems.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"text/tabwriter"

	"genetic-lab/config"
	"genetic-lab/problems"
	"genetic-lab/tui"
)

func main() {
	os.Exit(run())
}

func run() int {
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile := flag.String("memprofile", "", "write memory profile to file")
	configPath := flag.String("config", "", "run configuration file (default: ./genetic-lab.toml or ~/.config/genetic-lab/config.toml)")
	problem := flag.String("problem", "", "problem to solve, overriding the config file (see -list)")
	seed := flag.Uint64("seed", 0, "engine seed, overriding the config file")
	generations := flag.Int("generations", 0, "generation limit, overriding the config file")
	runs := flag.Int("runs", 0, "number of independent runs with derived seeds")
	visual := flag.Bool("visual", false, "run in visual/interactive mode with live parameter tuning")
	debug := flag.Bool("debug", false, "enable debug logging to "+debugLogFile)
	list := flag.Bool("list", false, "list the available problems and exit")
	saveConfig := flag.Bool("save-config", false, "write the resolved configuration to the config file and exit")
	printTrace := flag.Bool("trace", false, "print the convergence trace after a single run")
	flag.Parse()

	if *list {
		listProblems()

		return 0
	}

	args := flag.Args()
	if len(args) > 1 {
		fmt.Println("Usage: genetic-lab [flags] [problem]")
		fmt.Println("Example: genetic-lab -runs 3 -seed 42 diet")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()

		return 1
	}

	opts := RunOptions{
		ConfigPath:  *configPath,
		Problem:     *problem,
		DebugLog:    *debug,
		PrintTrace:  *printTrace,
		Seed:        *seed,
		Generations: *generations,
		Runs:        *runs,
	}

	if len(args) == 1 {
		opts.Problem = args[0]
	}

	if opts.ConfigPath == "" {
		opts.ConfigPath = config.GetConfigPath()
	}

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			opts.SeedSet = true
		}
	})

	if *cpuprofile != "" {
		stopCPUProfile := setupCPUProfile(*cpuprofile)
		defer stopCPUProfile()
	}

	if *memprofile != "" {
		defer writeMemoryProfile(*memprofile)
	}

	if *saveConfig {
		if err := saveResolvedConfig(opts); err != nil {
			log.Printf("Save error: %v", err)

			return 1
		}

		return 0
	}

	if *visual {
		if err := runVisual(opts); err != nil {
			log.Printf("TUI error: %v", err)

			return 1
		}

		return 0
	}

	if err := RunCLI(opts); err != nil {
		log.Printf("CLI error: %v", err)

		return 1
	}

	return 0
}

// runVisual starts the live viewer on the resolved configuration
func runVisual(opts RunOptions) error {
	if opts.DebugLog {
		if err := SetupDebugLog(debugLogFile); err != nil {
			return err
		}
	}

	rc, err := InitializeRun(opts)
	if err != nil {
		return err
	}

	sharedCfg := &config.SharedConfig{}
	sharedCfg.Update(rc.Config)

	return tui.Run(
		tui.Options{ConfigPath: opts.ConfigPath, Watch: true},
		tui.Dependencies{Config: sharedCfg, Run: runForViewer, Debugf: debugf},
	)
}

// saveResolvedConfig writes the config file with flag overrides applied
func saveResolvedConfig(opts RunOptions) error {
	rc, err := InitializeRun(opts)
	if err != nil {
		return err
	}

	if err := config.SaveConfig(opts.ConfigPath, rc.Config); err != nil {
		return err
	}

	fmt.Printf("Config written to %s\n", opts.ConfigPath)

	return nil
}

// listProblems prints the problem catalog
func listProblems() {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	for _, name := range problems.Names() {
		p, err := problems.Default(name)
		if err != nil {
			continue
		}

		ref := p.Reference()
		if _, err := fmt.Fprintf(w, "%s\t%s\tgenes %d\treference %.4f (%s)\n", name, p.Description(), p.Length(), ref.Objective, ref.Method); err != nil {
			log.Printf("Warning: failed to write %s: %v", name, err)
		}
	}

	if err := w.Flush(); err != nil {
		log.Printf("Warning: failed to flush output: %v", err)
	}
}

// setupCPUProfile starts CPU profiling, returns cleanup function
func setupCPUProfile(filename string) func() {
	f, err := os.Create(filename)
	if err != nil {
		log.Fatalf("could not create CPU profile: %v", err)
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		log.Fatalf("could not start CPU profile: %v", err)
	}

	return func() {
		pprof.StopCPUProfile()

		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close CPU profile: %v", err)
		}
	}
}

// writeMemoryProfile writes memory profile to file
func writeMemoryProfile(filename string) {
	f, err := os.Create(filename)
	if err != nil {
		log.Printf("could not create memory profile: %v", err)

		return
	}

	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close memory profile: %v", err)
		}
	}()

	runtime.GC()

	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Printf("could not write memory profile: %v", err)
	}
}
