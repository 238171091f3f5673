// ABOUTME: Config file watching for live reload of run settings
// ABOUTME: Turns fsnotify write events into Bubble Tea messages

package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"genetic-lab/config"
)

// reloadDebounce lets editors finish writing before the file is parsed
const reloadDebounce = 100 * time.Millisecond

// configChangedMsg is sent when the config file is written
type configChangedMsg struct{}

// configReloadedMsg carries the result of reparsing the config file
type configReloadedMsg struct {
	cfg config.FileConfig
	err error
}

// waitForConfigChange returns a command that waits for the next write to the config file
func waitForConfigChange(watcher *fsnotify.Watcher, debugf func(string, ...interface{})) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}

				if event.Op&fsnotify.Write == fsnotify.Write {
					time.Sleep(reloadDebounce)

					return configChangedMsg{}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}

				// Log error but continue watching
				debugf("[WATCHER] Error: %v", err)
			}
		}
	}
}

// reloadConfig parses the config file in the background
func reloadConfig(path string) tea.Cmd {
	return func() tea.Msg {
		cfg, err := config.LoadConfig(path)

		return configReloadedMsg{cfg: cfg, err: err}
	}
}
