package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/api"
	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/reveal"
)

// timelineWidth is the fixed width of the stage log column.
const timelineWidth = 28

func (a *App) updateSessionPage(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// Navigating away terminates the session.
		teardown := a.teardownSession()
		a.page = pageAlerts
		return a, teardown

	case "ctrl+p":
		logs := a.deps.Store.Logs()
		if len(logs) < 2 {
			return a, nil
		}
		if a.timelineCursor < 0 {
			a.timelineCursor = len(logs) - 2
		} else if a.timelineCursor > 0 {
			a.timelineCursor--
		}
		a.deps.Store.SelectIndex(a.timelineCursor)
		a.refreshSessionView(false)
		return a, nil

	case "ctrl+n":
		logs := a.deps.Store.Logs()
		if a.timelineCursor < 0 {
			return a, nil
		}
		a.timelineCursor++
		if a.timelineCursor >= len(logs)-1 {
			// Walked back to the newest entry: resume live tracking.
			a.timelineCursor = -1
			a.deps.Store.SelectLive()
		} else {
			a.deps.Store.SelectIndex(a.timelineCursor)
		}
		a.refreshSessionView(false)
		return a, nil

	case "ctrl+l":
		a.timelineCursor = -1
		a.deps.Store.SelectLive()
		a.refreshSessionView(false)
		return a, nil

	case "ctrl+f":
		return a, a.finalizeCmd()

	case "ctrl+r":
		// Deliberate reconnect; the manager closes the old handle first.
		return a, a.openStream()

	case "ctrl+g":
		a.page = pageMemory
		a.memErr = nil
		return a, a.loadMemory()

	case "enter":
		text := strings.TrimSpace(a.textarea.Value())
		if text == "" {
			return a, nil
		}
		a.textarea.Reset()
		return a, a.replyCmd(text)

	case "pgup", "pgdown":
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	return a, cmd
}

func (a *App) replyCmd(text string) tea.Cmd {
	client := a.deps.Client
	sid := a.sessionID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client.UserReply(ctx, sid, text)
		return nil
	}
}

func (a *App) finalizeCmd() tea.Cmd {
	client := a.deps.Client
	sid := a.sessionID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client.Finalize(ctx, sid)
		return nil
	}
}

// refreshSessionView feeds the current display value through the reveal
// engine and rebuilds the viewport. animate is true only for snapshot
// arrivals; selection changes always render statically, and a historical
// selection bypasses the engine entirely.
func (a *App) refreshSessionView(animate bool) tea.Cmd {
	// The store drops a pin whose index vanished; the timeline marker must
	// follow it back to live.
	if _, pinned := a.deps.Store.Selection(); !pinned {
		a.timelineCursor = -1
	}

	text, _ := a.deps.Store.CurrentDisplayValue()

	var cmd tea.Cmd
	if !animate || a.deps.Store.ViewingHistorical() {
		a.revealer.Snap(text)
	} else if a.revealer.Set(text) {
		cmd = a.revealTick(a.revealer.Generation())
	}
	a.setViewportContent()
	return cmd
}

func (a *App) revealTick(gen int) tea.Cmd {
	return tea.Tick(reveal.DefaultInterval, func(time.Time) tea.Msg {
		return revealTickMsg{gen: gen}
	})
}

// setViewportContent rebuilds the output pane: dialogue transcript first,
// then the selected stage output.
func (a *App) setViewportContent() {
	var sb strings.Builder

	for _, turn := range a.deps.Store.Transcript() {
		sb.WriteString(turnLabel(turn))
		sb.WriteString(" ")
		sb.WriteString(turn.Text)
		sb.WriteString("\n\n")
	}

	output := a.revealer.Displayed()
	if output != "" {
		sb.WriteString(mutedStyle.Render(strings.Repeat("─", 20)))
		sb.WriteString("\n")
		if rendered, err := a.renderer.Render(output); err == nil {
			sb.WriteString(rendered)
		} else {
			sb.WriteString(output)
		}
	}

	atBottom := a.viewport.AtBottom()
	a.viewport.SetContent(sb.String())
	if atBottom && !a.deps.Store.ViewingHistorical() {
		a.viewport.GotoBottom()
	}
}

func turnLabel(turn api.DialogueTurn) string {
	switch turn.Role {
	case api.RoleUser:
		return userTurnStyle.Render("analyst:")
	case api.RoleRisk:
		return riskTurnStyle.Render("risk:")
	case api.RoleSystem:
		return mutedStyle.Render("system:")
	default:
		return assistantTurnStyle.Render("agent:")
	}
}

func (a *App) viewSessionPage() string {
	timeline := a.renderTimeline()
	output := a.viewport.View()
	row := lipgloss.JoinHorizontal(lipgloss.Top, timeline, " ", output)

	footer := mutedStyle.Render("enter reply · ^p/^n history · ^l live · ^f finalize · ^r reconnect · ^g memory · esc end session")
	return lipgloss.JoinVertical(lipgloss.Left, row, a.textarea.View(), footer)
}

// renderTimeline draws the stage log with the analyst's selection.
func (a *App) renderTimeline() string {
	logs := a.deps.Store.Logs()
	height := a.viewport.Height

	var lines []string
	title := fmt.Sprintf("Stages (%d)", len(logs))
	if a.deps.Store.ViewingHistorical() {
		title = fmt.Sprintf("Stages (%d) %s", len(logs), pinnedBadgeStyle.Render("PINNED"))
	}
	lines = append(lines, titleStyle.Render(title))

	start := 0
	if len(logs) > height-1 {
		start = len(logs) - (height - 1)
		if a.timelineCursor >= 0 && a.timelineCursor < start {
			start = a.timelineCursor
		}
	}
	for i := start; i < len(logs) && len(lines) < height; i++ {
		line := truncate(logs[i], timelineWidth-4)
		switch {
		case i == a.timelineCursor:
			line = selectedItemStyle.Render("> " + line)
		case a.timelineCursor < 0 && i == len(logs)-1:
			line = cursorStyle.Render("· " + line)
		default:
			line = "  " + line
		}
		lines = append(lines, line)
	}
	if len(logs) == 0 {
		lines = append(lines, mutedStyle.Render("  waiting for stages..."))
	}

	return lipgloss.NewStyle().Width(timelineWidth).Render(strings.Join(lines, "\n"))
}
