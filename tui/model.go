// ABOUTME: Terminal UI model and core state management
// ABOUTME: Bubble Tea model implementation driving restartable engine runs

// Package tui provides an interactive terminal UI for watching and tuning genetic engine runs.
package tui

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"genetic-lab/config"
	"genetic-lab/ga"
	"genetic-lab/problems"
)

// Panel identifiers
const (
	panelParams = "params"
	panelTrace  = "trace"
)

// Layout constants for UI dimensions
const (
	paramPanelWidth = 45 // Left panel width for parameter controls
	panelPadding    = 2  // Horizontal spacing between panels

	// UI chrome heights (elements that reduce available viewport space)
	titleHeight     = 2 // Panel title bars
	sparklineHeight = 2 // Convergence sparkline and its legend
	summaryHeight   = 6 // Best phenotype lines
	headerHeight    = 1 // Column headers for the trace table
	statusBarHeight = 1 // Bottom status bar
	helpHeight      = 1 // Help text line
	spacingHeight   = 2 // Vertical spacing between elements
	totalUIChrome   = titleHeight + sparklineHeight + summaryHeight + headerHeight + statusBarHeight + helpHeight + spacingHeight

	// Minimum viewport dimensions to ensure usability
	minViewportWidth  = 20
	minViewportHeight = 5
)

// Navigation and interaction constants
const (
	pageJumpSize          = 10              // Rows to jump on PageUp/PageDown
	statusMessageDuration = 5 * time.Second // How long to show transient status messages
	maxUndoStackSize      = 50              // Maximum undo/redo history items
	updateBufferSize      = 10              // Queued engine updates before the runner drops them
)

// runRestartMsg signals that the engine should restart with the current config
type runRestartMsg struct{}

// model holds the TUI state
type model struct {
	// Dependencies
	sharedConfig ConfigProvider
	runEngine    RunFunc
	debugf       func(string, ...interface{})

	// Configuration
	localConfig *config.FileConfig // Local config that params point to (pointer so addresses stay valid)
	paramMgr    *ParamManager
	configPath  string
	watcher     *fsnotify.Watcher

	// Run state
	trace                ga.Trace
	best                 float64
	bestEver             float64
	stats                ga.Stats
	summary              problems.Summary
	reference            problems.Reference
	generation           int
	genPerSec            float64
	done                 bool
	reason               ga.StopReason
	runErr               error
	lastImprovementTime  time.Time
	timeSinceImprovement time.Duration

	// Run lifecycle
	// Context stored in struct because Bubble Tea's Init/Update/View pattern doesn't allow
	// passing context through function parameters.
	ctx        context.Context    //nolint:containedctx // See above
	cancel     context.CancelFunc // Cancel function for ctx
	updateChan chan Update        // Channel for engine updates
	epoch      int                // Increments each restart to drop stale updates

	// UI state
	width        int
	height       int
	quitting     bool
	statusMsg    string    // Temporary status message (e.g., "Config saved")
	statusMsgAge time.Time // When status message was set
	focusedPanel string    // "params" or "trace" - which panel has focus

	// Trace browsing and parameter history
	cursorPos  int            // Current cursor row in the trace table
	followTail bool           // Cursor tracks the newest generation
	viewport   viewport.Model // Viewport for scrolling the trace table
	undoMgr    *UndoManager   // Undo/redo history manager
}

// Key bindings
type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Reset key.Binding
	Quit  key.Binding
	// Trace navigation
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	// Run control
	Reseed  key.Binding
	Problem key.Binding
	Save    key.Binding
	Undo    key.Binding
	Redo    key.Binding
	// Panel switching
	Tab key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "navigate"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "navigate"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "decrease param"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "increase param"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset params"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "page down"),
	),
	Home: key.NewBinding(
		key.WithKeys("home", "g"),
		key.WithHelp("home/g", "first generation"),
	),
	End: key.NewBinding(
		key.WithKeys("end", "G"),
		key.WithHelp("end/G", "follow latest"),
	),
	Reseed: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new seed"),
	),
	Problem: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "next problem"),
	),
	Save: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "write config"),
	),
	Undo: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "undo"),
	),
	Redo: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "redo"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch panel"),
	),
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	paramStyle = lipgloss.NewStyle().
			Padding(0, 1)

	selectedParamStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("240")).
				Foreground(lipgloss.Color("15")).
				Bold(true).
				Padding(0, 1)

	traceHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("10"))

	sparklineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	infeasibleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	cursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("240")).
			Foreground(lipgloss.Color("15"))
)

// Run starts the TUI mode with injected dependencies
func Run(opts Options, deps Dependencies) error {
	m := initModel(opts, deps)

	if opts.Watch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create config watcher: %w", err)
		}
		defer watcher.Close()

		if err := watcher.Add(opts.ConfigPath); err != nil {
			// A config that doesn't exist yet is simply not watched
			m.debugf("[TUI] Not watching %s: %v", opts.ConfigPath, err)
		} else {
			m.watcher = watcher
		}
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	if m, ok := finalModel.(model); ok && m.generation > 0 {
		fmt.Printf("\n%s: best-ever fitness %.6f after %d generations\n", m.localConfig.Problem, m.bestEver, m.generation)
	}

	return nil
}

// initModel creates the initial model with injected dependencies
func initModel(opts Options, deps Dependencies) model {
	cfg := deps.Config.Get()

	// Allocate localConfig on heap so parameter pointers remain valid
	localConfig := &cfg

	ctx, cancel := context.WithCancel(context.Background())

	debugf := deps.Debugf
	if debugf == nil {
		debugf = func(string, ...interface{}) {}
	}

	return model{
		sharedConfig: deps.Config,
		runEngine:    deps.Run,
		debugf:       debugf,

		localConfig: localConfig,
		paramMgr:    NewParamManager(buildParams(&localConfig.Engine)),
		configPath:  opts.ConfigPath,

		lastImprovementTime: time.Now(),

		ctx:        ctx,
		cancel:     cancel,
		updateChan: make(chan Update, updateBufferSize),
		epoch:      0,

		viewport:     viewport.New(0, 0), // Width and height set on first WindowSizeMsg
		focusedPanel: panelParams,
		followTail:   true,
		undoMgr:      NewUndoManager(maxUndoStackSize),
	}
}

// Init initializes the model
func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.startRun(m.ctx, *m.localConfig, m.epoch),
		waitForUpdate(m.updateChan),
	}

	if m.watcher != nil {
		cmds = append(cmds, waitForConfigChange(m.watcher, m.debugf))
	}

	return tea.Batch(cmds...)
}

// startRun runs the engine in a goroutine and returns a command
func (m *model) startRun(ctx context.Context, cfg config.FileConfig, epoch int) tea.Cmd {
	runEngine, updates, debugf := m.runEngine, m.updateChan, m.debugf

	return func() tea.Msg {
		defer func() {
			if r := recover(); r != nil {
				debugf("[PANIC] startRun panic: %v", r)
				debugf("[PANIC] Stack trace: %s", string(debug.Stack()))
				panic(r) // Re-panic after logging
			}
		}()

		// Blocks until the run terminates or ctx is cancelled
		runEngine(ctx, cfg, updates, epoch)

		return nil
	}
}

// waitForUpdate waits for engine updates and returns them as messages
func waitForUpdate(updateChan <-chan Update) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updateChan
		if !ok {
			return nil
		}

		return update
	}
}

// currentState captures the tunable state for undo/redo
func (m *model) currentState() ParamState {
	return ParamState{Config: *m.localConfig, Selected: m.paramMgr.Selected()}
}

// restoreState writes a saved state back into localConfig, keeping parameter pointers valid
func (m *model) restoreState(state ParamState) {
	*m.localConfig = state.Config
	m.paramMgr.SetSelected(state.Selected)
}

// changeSelectedParam steps the selected parameter and restarts the run if it changed
func (m *model) changeSelectedParam(increase bool) tea.Cmd {
	before := m.currentState()

	changed := m.paramMgr.Decrease
	if increase {
		changed = m.paramMgr.Increase
	}

	if !changed() {
		return nil
	}

	m.undoMgr.Push(before)

	if p := m.paramMgr.GetSelected(); p != nil {
		m.debugf("[TUI] Parameter changed - %s: %s", p.Name, p.Format())
	}

	return m.syncConfig()
}

// resetToDefaults restores the preset engine settings of the current problem
func (m *model) resetToDefaults() tea.Cmd {
	m.undoMgr.Push(m.currentState())
	m.paramMgr.ResetToDefaults(config.DefaultConfig(m.localConfig.Problem).Engine)
	m.setStatusMsg("Parameters reset to " + m.localConfig.Problem + " preset")

	return m.syncConfig()
}

// reseed starts the run again with the next seed
func (m *model) reseed() tea.Cmd {
	m.undoMgr.Push(m.currentState())
	m.localConfig.Engine.Seed++
	m.setStatusMsg(fmt.Sprintf("Seed %d", m.localConfig.Engine.Seed))

	return m.syncConfig()
}

// nextProblem switches to the next catalog problem with its preset engine settings
func (m *model) nextProblem() tea.Cmd {
	names := problems.Names()

	next := names[0]
	for i, name := range names {
		if name == m.localConfig.Problem {
			next = names[(i+1)%len(names)]
		}
	}

	m.undoMgr.Push(m.currentState())

	preset := config.DefaultConfig(next)
	m.localConfig.Problem = next
	m.localConfig.Engine = preset.Engine
	m.setStatusMsg("Switched to " + next)

	return m.syncConfig()
}

// undo restores the previous parameter state
func (m *model) undo() tea.Cmd {
	state, ok := m.undoMgr.Undo(m.currentState())
	if !ok {
		m.setStatusMsg("Nothing to undo")

		return nil
	}

	m.restoreState(state)
	m.setStatusMsg(fmt.Sprintf("Undo (Undo: %d, Redo: %d)", m.undoMgr.UndoSize(), m.undoMgr.RedoSize()))

	return m.syncConfig()
}

// redo restores the next parameter state
func (m *model) redo() tea.Cmd {
	state, ok := m.undoMgr.Redo(m.currentState())
	if !ok {
		m.setStatusMsg("Nothing to redo")

		return nil
	}

	m.restoreState(state)
	m.setStatusMsg(fmt.Sprintf("Redo (Undo: %d, Redo: %d)", m.undoMgr.UndoSize(), m.undoMgr.RedoSize()))

	return m.syncConfig()
}

// saveConfig writes the tuned config to the config path
func (m *model) saveConfig() {
	if err := config.SaveConfig(m.configPath, *m.localConfig); err != nil {
		m.debugf("[TUI] Failed to save config: %v", err)
		m.setStatusMsg("Save failed: " + err.Error())

		return
	}

	m.setStatusMsg("Config saved to " + m.configPath)
}

// syncConfig publishes localConfig and schedules a restart
func (m *model) syncConfig() tea.Cmd {
	m.sharedConfig.Update(*m.localConfig)

	// Increment epoch immediately to invalidate any pending updates from the old run
	m.epoch++

	m.debugf("[TUI] Config synced - restarting %s with epoch %d", m.localConfig.Problem, m.epoch)

	return m.restartRun()
}

// restartRun returns a command to restart the engine with the current config
func (m *model) restartRun() tea.Cmd {
	return func() tea.Msg {
		return runRestartMsg{}
	}
}

// resetRunState clears everything shown about the previous run
func (m *model) resetRunState() {
	m.trace = nil
	m.best, m.bestEver = 0, 0
	m.stats = ga.Stats{}
	m.summary = problems.Summary{}
	m.generation = 0
	m.genPerSec = 0
	m.done = false
	m.reason = ""
	m.runErr = nil
	m.cursorPos = 0
	m.followTail = true
	m.lastImprovementTime = time.Now()
	m.timeSinceImprovement = 0
}

// setStatusMsg sets a transient status message with current timestamp
func (m *model) setStatusMsg(msg string) {
	m.statusMsg = msg
	m.statusMsgAge = time.Now()
}

// ensureCursorVisible adjusts viewport offset to keep the cursor row visible
func (m *model) ensureCursorVisible() {
	vm := NewViewportManager(m.viewport.Height, m.cursorPos, len(m.trace))
	m.viewport.SetYOffset(vm.CalculateOffset())
}

// ========== Helpers ==========

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return s[:maxLen]
	}

	return s[:maxLen-3] + "..."
}
