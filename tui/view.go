// ABOUTME: Rendering and display functions for the TUI
// ABOUTME: Implements the Bubble Tea View() function, the sparkline and the trace table

package tui

import (
	"fmt"
	"math"
	"runtime/debug"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"genetic-lab/problems"
)

// sparkRunes are the eight bar heights of the convergence sparkline
var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// View renders the TUI
func (m model) View() string {
	defer func() {
		if r := recover(); r != nil {
			m.debugf("[PANIC] View panic: %v", r)
			m.debugf("[PANIC] Stack trace: %s", string(debug.Stack()))
			panic(r) // Re-panic so Bubble Tea can handle it
		}
	}()

	if m.quitting {
		return "Saving config and exiting...\n"
	}

	panelHeight := m.height - (statusBarHeight + helpHeight + 1)

	leftPanelStyle := lipgloss.NewStyle().
		Width(paramPanelWidth).
		Height(panelHeight).
		Padding(0, 1)

	rightPanelWidth := max(m.width-paramPanelWidth-panelPadding, minViewportWidth*2)

	rightPanelStyle := lipgloss.NewStyle().
		Width(rightPanelWidth).
		Height(panelHeight).
		Padding(0, 1)

	combined := lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftPanelStyle.Render(m.renderParameters()),
		rightPanelStyle.Render(m.renderRun(rightPanelWidth-2)),
	)

	return combined + "\n" + m.renderStatus() + "\n" + m.renderHelp()
}

// renderParameters renders the parameter control panel
func (m model) renderParameters() string {
	var s strings.Builder

	title := "Engine parameters"
	if m.focusedPanel == panelParams {
		title = "► " + title + " [FOCUSED]"
	}

	s.WriteString(titleStyle.Render(title) + "\n\n")

	for i, param := range m.paramMgr.All() {
		// Fixed width formatting to prevent column misalignment
		prefix := "  "
		if i == m.paramMgr.Selected() {
			prefix = "► "
		}

		line := fmt.Sprintf("%s%-24s %12s", prefix, param.Name, param.Format())

		if i == m.paramMgr.Selected() {
			s.WriteString(selectedParamStyle.Render(line) + "\n")
		} else {
			s.WriteString(paramStyle.Render(line) + "\n")
		}
	}

	s.WriteString("\n" + paramStyle.Render(fmt.Sprintf("  %-24s %12d", "Seed", m.localConfig.Engine.Seed)))

	return s.String()
}

// renderRun renders the sparkline, the best solution and the trace table
func (m model) renderRun(width int) string {
	var s strings.Builder

	title := fmt.Sprintf("Problem: %s", m.localConfig.Problem)
	if m.focusedPanel == panelTrace {
		title = "► " + title + " [FOCUSED]"
	}

	s.WriteString(titleStyle.Render(title) + "\n\n")

	values := m.trace.Values()
	s.WriteString(sparklineStyle.Render(sparkline(values, width)) + "\n")

	if len(values) > 0 {
		s.WriteString(helpStyle.Render(fmt.Sprintf("min %.6f  max %.6f", slicesMin(values), slicesMax(values))) + "\n")
	} else {
		s.WriteString("\n")
	}

	s.WriteString(m.renderSummary())

	header := fmt.Sprintf("%-6s %14s %14s", "Gen", "Best", "Δ")
	s.WriteString(traceHeaderStyle.Render(header) + "\n")
	s.WriteString(m.viewport.View())

	return s.String()
}

// renderSummary renders the decoded best-ever solution
func (m model) renderSummary() string {
	lines := make([]string, 0, summaryHeight)

	switch {
	case m.runErr != nil:
		lines = append(lines, infeasibleStyle.Render(truncate("Invalid settings: "+m.runErr.Error(), m.viewport.Width)))
	case len(m.summary.Details) == 0:
		lines = append(lines, "Waiting for the first generation...")
	default:
		feasible := "feasible"
		if !m.summary.Feasible {
			feasible = infeasibleStyle.Render("infeasible")
		}

		lines = append(lines, fmt.Sprintf("Best-ever objective %.6f (%s)%s", m.summary.Objective, feasible, gapText(m.reference, m.summary.Objective)))
		for _, d := range m.summary.Details {
			lines = append(lines, "  "+truncate(d, m.viewport.Width))
		}
	}

	for len(lines) < summaryHeight-1 {
		lines = append(lines, "")
	}

	return strings.Join(lines[:summaryHeight-1], "\n") + "\n\n"
}

// updateViewportContent builds and sets the trace table content
func (m *model) updateViewportContent() {
	var content strings.Builder

	for i, p := range m.trace {
		delta := ""
		if i > 0 {
			if d := p.Best - m.trace[i-1].Best; d != 0 {
				delta = fmt.Sprintf("%+.6f", d)
			}
		}

		line := fmt.Sprintf("%-6d %14.6f %14s", p.Generation, p.Best, delta)

		if i == m.cursorPos {
			line = cursorStyle.Render(line)
		}

		content.WriteString(line + "\n")
	}

	m.viewport.SetContent(content.String())

	// SetYOffset clamps against the content, so reapply once the rows exist
	m.ensureCursorVisible()
}

// renderStatus renders the status bar
func (m model) renderStatus() string {
	if m.statusMsg != "" && time.Since(m.statusMsgAge) < statusMessageDuration {
		return statusStyle.Width(m.width).Render(m.statusMsg)
	}

	state := "running"
	if m.done {
		state = string(m.reason)
	}

	if m.runErr != nil {
		state = "not started"
	}

	undoInfo := fmt.Sprintf("U:%d R:%d", m.undoMgr.UndoSize(), m.undoMgr.RedoSize())

	status := fmt.Sprintf("%s | Gen: %d (%.1f gen/s) | Best-ever: %.6f | Mean: %.4f ± %.4f | %s ago | %s",
		undoInfo,
		m.generation,
		m.genPerSec,
		m.bestEver,
		m.stats.Mean,
		m.stats.StdDev,
		m.timeSinceImprovement.Round(time.Second),
		state,
	)

	return statusStyle.Width(m.width).Render(status)
}

// renderHelp renders the help text
func (m model) renderHelp() string {
	return helpStyle.Render(" Tab: switch panel | ↑/↓: navigate | ←/→: adjust param | n: new seed | p: next problem | w: write config | u: undo | ctrl+r: redo | r: reset | q: quit")
}

// gapText formats the distance to the reference optimum, if one is known
func gapText(ref problems.Reference, objective float64) string {
	gap := ref.Gap(objective)
	if math.IsNaN(gap) || math.IsInf(gap, 0) {
		return ""
	}

	return fmt.Sprintf(" | reference %.4f (%s), gap %.2f%%", ref.Objective, ref.Method, gap)
}

// sparkline draws the last width values scaled between their minimum and maximum
func sparkline(values []float64, width int) string {
	if width < 1 || len(values) == 0 {
		return ""
	}

	if len(values) > width {
		values = values[len(values)-width:]
	}

	lo, hi := slicesMin(values), slicesMax(values)

	out := make([]rune, len(values))
	for i, v := range values {
		level := 0
		if hi > lo {
			level = int((v - lo) / (hi - lo) * float64(len(sparkRunes)-1))
		}

		out[i] = sparkRunes[level]
	}

	return string(out)
}

func slicesMin(values []float64) float64 {
	lo := math.Inf(1)
	for _, v := range values {
		lo = min(lo, v)
	}

	return lo
}

func slicesMax(values []float64) float64 {
	hi := math.Inf(-1)
	for _, v := range values {
		hi = max(hi, v)
	}

	return hi
}
