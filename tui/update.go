// ABOUTME: Event handling and state updates for the TUI
// ABOUTME: Implements the Bubble Tea Update() function and message handlers

package tui

import (
	"context"
	"reflect"
	"runtime/debug"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"genetic-lab/config"
)

// Update handles messages and updates the model
//
//nolint:ireturn // Bubble Tea framework requires returning tea.Model interface
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.debugf("[PANIC] Update panic: %v", r)
			m.debugf("[PANIC] Stack trace: %s", string(debug.Stack()))
			panic(r) // Re-panic so Bubble Tea can handle it
		}
	}()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		m.viewport.Width = max(msg.Width-paramPanelWidth-panelPadding, minViewportWidth)
		m.viewport.Height = max(msg.Height-totalUIChrome, minViewportHeight)

		m.viewport.YOffset = 0
		m.ensureCursorVisible()
		m.updateViewportContent()

		return m, nil

	case Update:
		return m.handleUpdate(msg)

	case runRestartMsg:
		// Cancel the old run and start a new one; epoch was already incremented.
		// The reader armed by Init and every handled Update stays pending across restarts.
		m.cancel()
		ctx, cancel := context.WithCancel(context.Background())
		m.ctx = ctx
		m.cancel = cancel
		m.resetRunState()
		m.updateViewportContent()

		return m, m.startRun(m.ctx, *m.localConfig, m.epoch)

	case configChangedMsg:
		return m, tea.Batch(
			reloadConfig(m.configPath),
			waitForConfigChange(m.watcher, m.debugf),
		)

	case configReloadedMsg:
		return m, m.handleReload(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleUpdate applies an engine update unless it belongs to an older run
func (m model) handleUpdate(msg Update) (model, tea.Cmd) {
	if msg.Epoch != m.epoch {
		m.debugf("[TUI] Ignoring stale Update: epoch %d != current %d", msg.Epoch, m.epoch)

		return m, waitForUpdate(m.updateChan)
	}

	if msg.Err != nil {
		m.runErr = msg.Err
		m.done = true
		m.debugf("[TUI] Run refused: %v", msg.Err)

		return m, waitForUpdate(m.updateChan)
	}

	if msg.BestEver > m.bestEver || len(m.trace) == 0 {
		m.lastImprovementTime = time.Now()
	}

	m.trace = msg.Trace
	m.best = msg.Best
	m.bestEver = msg.BestEver
	m.stats = msg.Stats
	m.summary = msg.Summary
	m.reference = msg.Reference
	m.generation = msg.Generation
	m.genPerSec = msg.GenPerSec
	m.timeSinceImprovement = time.Since(m.lastImprovementTime)

	if msg.Done {
		m.done = true
		m.reason = msg.Reason
		m.debugf("[TUI] Run finished (epoch %d): %s", msg.Epoch, msg.Reason)
	}

	if m.followTail && len(m.trace) > 0 {
		m.cursorPos = len(m.trace) - 1
		m.ensureCursorVisible()
	}

	m.updateViewportContent()

	return m, waitForUpdate(m.updateChan)
}

// handleReload adopts an edited config file and restarts the run
func (m *model) handleReload(msg configReloadedMsg) tea.Cmd {
	if msg.err != nil {
		m.setStatusMsg("Config reload failed: " + msg.err.Error())

		return nil
	}

	// Our own saves come back as write events too
	if reflect.DeepEqual(msg.cfg, *m.localConfig) {
		return nil
	}

	m.undoMgr.Push(m.currentState())
	*m.localConfig = msg.cfg
	m.setStatusMsg("Config reloaded from " + m.configPath)

	return m.syncConfig()
}

// handleKey dispatches key presses
func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m.handleQuitKey()

	case key.Matches(msg, keys.Tab):
		m.handleTabKey()

	case key.Matches(msg, keys.Up):
		m.handleUpKey()

	case key.Matches(msg, keys.Down):
		m.handleDownKey()

	case key.Matches(msg, keys.PageUp):
		m.moveCursor(-pageJumpSize)

	case key.Matches(msg, keys.PageDown):
		m.moveCursor(pageJumpSize)

	case key.Matches(msg, keys.Home):
		m.moveCursor(-len(m.trace))

	case key.Matches(msg, keys.End):
		m.moveCursor(len(m.trace))

	case key.Matches(msg, keys.Left):
		return m, m.handleAdjustKey(false)

	case key.Matches(msg, keys.Right):
		return m, m.handleAdjustKey(true)

	case key.Matches(msg, keys.Reset):
		return m, m.resetToDefaults()

	case key.Matches(msg, keys.Reseed):
		return m, m.reseed()

	case key.Matches(msg, keys.Problem):
		return m, m.nextProblem()

	case key.Matches(msg, keys.Save):
		m.saveConfig()

	case key.Matches(msg, keys.Undo):
		return m, m.undo()

	case key.Matches(msg, keys.Redo):
		return m, m.redo()
	}

	return m, nil
}

// handleQuitKey handles the quit key press
func (m *model) handleQuitKey() (model, tea.Cmd) {
	m.quitting = true
	m.cancel()

	// Save config on quit; a failure must not block quitting
	if err := config.SaveConfig(m.configPath, m.sharedConfig.Get()); err != nil {
		m.debugf("[TUI] Failed to save config on quit: %v", err)
	}

	return *m, tea.Quit
}

// handleTabKey handles panel switching
func (m *model) handleTabKey() {
	if m.focusedPanel == panelParams {
		m.focusedPanel = panelTrace
	} else {
		m.focusedPanel = panelParams
	}
}

// handleUpKey handles Up/k key press (context-aware navigation)
func (m *model) handleUpKey() {
	if m.focusedPanel == panelParams {
		m.paramMgr.SelectPrevious()
	} else {
		m.moveCursor(-1)
	}
}

// handleDownKey handles Down/j key press (context-aware navigation)
func (m *model) handleDownKey() {
	if m.focusedPanel == panelParams {
		m.paramMgr.SelectNext()
	} else {
		m.moveCursor(1)
	}
}

// handleAdjustKey changes the selected parameter when the params panel has focus
func (m *model) handleAdjustKey(increase bool) tea.Cmd {
	if m.focusedPanel != panelParams {
		return nil
	}

	return m.changeSelectedParam(increase)
}

// moveCursor moves the trace cursor by delta rows; reaching the last row resumes following
func (m *model) moveCursor(delta int) {
	if len(m.trace) == 0 {
		return
	}

	m.cursorPos = min(max(m.cursorPos+delta, 0), len(m.trace)-1)
	m.followTail = m.cursorPos == len(m.trace)-1
	m.ensureCursorVisible()
	m.updateViewportContent()
}
