// ABOUTME: TUI mode configuration and injected dependencies
// ABOUTME: Defines input parameters for running the live convergence viewer

package tui

// Options contains configuration for running the TUI
type Options struct {
	ConfigPath string // Config file saved on quit and watched for edits
	Watch      bool   // Restart the run whenever the config file is written
}

// Dependencies holds all external dependencies for the TUI
type Dependencies struct {
	Config ConfigProvider
	Run    RunFunc
	Debugf func(format string, args ...interface{})
}
