package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/api"
	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/triage"
)

// applyView recomputes the filtered list and persists the view preference.
func (a *App) applyView() {
	a.filtered = a.index.Apply(a.view)
	if a.cursor >= len(a.filtered) {
		a.cursor = len(a.filtered) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
	if a.listOffset > a.cursor {
		a.listOffset = a.cursor
	}
	a.saveState()
}

func (a *App) updateAlertsPage(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.searching {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc:
			a.searching = false
			a.searchInput.Blur()
			if msg.Type == tea.KeyEsc {
				a.searchInput.SetValue(a.view.Search)
			}
			a.view.Search = a.searchInput.Value()
			a.applyView()
			return a, nil
		default:
			var cmd tea.Cmd
			a.searchInput, cmd = a.searchInput.Update(msg)
			a.view.Search = a.searchInput.Value()
			a.filtered = a.index.Apply(a.view)
			return a, cmd
		}
	}

	switch msg.String() {
	case "q", "esc":
		return a, a.quit()
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
			if a.cursor < a.listOffset {
				a.listOffset = a.cursor
			}
		}
	case "down", "j":
		if a.cursor < len(a.filtered)-1 {
			a.cursor++
			if max := a.maxVisibleRows(); a.cursor >= a.listOffset+max {
				a.listOffset = a.cursor - max + 1
			}
		}
	case "/":
		a.searching = true
		a.searchInput.SetValue(a.view.Search)
		a.searchInput.Focus()
	case "p":
		a.view.Preset = nextPreset(a.view.Preset)
		a.applyView()
	case "s":
		a.view.SortKey = nextSortKey(a.view.SortKey)
		a.applyView()
	case "d":
		if a.view.SortDir == triage.SortAsc {
			a.view.SortDir = triage.SortDesc
		} else {
			a.view.SortDir = triage.SortAsc
		}
		a.applyView()
	case "e":
		a.exportNote = ""
		return a, a.exportCmd()
	case "r":
		return a, a.loadAlerts()
	case "c":
		a.page = pageCases
		a.caseOpen = false
		return a, a.loadCases()
	case "enter":
		if a.cursor < len(a.filtered) {
			a.err = nil
			return a, a.startSession(a.filtered[a.cursor])
		}
	}
	return a, nil
}

func nextPreset(p triage.Preset) triage.Preset {
	for i, cur := range triage.Presets {
		if cur == p {
			return triage.Presets[(i+1)%len(triage.Presets)]
		}
	}
	return triage.Presets[0]
}

func nextSortKey(k triage.SortKey) triage.SortKey {
	for i, cur := range triage.SortKeys {
		if cur == k {
			return triage.SortKeys[(i+1)%len(triage.SortKeys)]
		}
	}
	return triage.SortKeys[0]
}

// startSession asks the backend to open a workflow session for an alert.
func (a *App) startSession(alert api.Alert) tea.Cmd {
	client := a.deps.Client
	ctx := a.ctx
	return func() tea.Msg {
		sctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		sid, err := client.StartSession(sctx, alert)
		if err != nil {
			return startFailedMsg{err: fmt.Errorf("starting session: %w", err)}
		}
		return sessionStartedMsg{sessionID: sid, alert: alert}
	}
}

func (a *App) maxVisibleRows() int {
	rows := a.height - 8
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (a *App) viewAlertsPage() string {
	title := titleStyle.Render("Fraud Alert Queue")

	var search string
	if a.searching {
		search = a.searchInput.View()
	} else if a.view.Search != "" {
		search = mutedStyle.Render("search: " + a.view.Search)
	}

	viewLine := mutedStyle.Render(fmt.Sprintf(
		"preset=%s  sort=%s/%s  %d/%d alerts",
		a.view.Preset, a.view.SortKey, a.view.SortDir, len(a.filtered), a.index.Len(),
	))

	table := a.renderAlertTable()

	footer := mutedStyle.Render("enter start · / search · p preset · s sort · d direction · e export · c cases · r reload · q quit")
	if a.exportNote != "" {
		footer = mutedStyle.Render(a.exportNote) + "\n" + footer
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, viewLine, search, table, footer)
}

func (a *App) renderAlertTable() string {
	if len(a.filtered) == 0 {
		return mutedStyle.Render("\n  No alerts match the current view.\n")
	}

	headers := []string{"", "ALERT", "RULE", "AMOUNT", "RISK", "PRIORITY", "STATUS", "DESCRIPTION"}
	widths := []int{1, 14, 12, 10, 6, 9, 10, 40}

	var sb strings.Builder
	for i, h := range headers {
		sb.WriteString(tableHeaderStyle.Width(widths[i] + 2).Render(h))
	}
	sb.WriteString("\n")

	start := a.listOffset
	end := start + a.maxVisibleRows()
	if end > len(a.filtered) {
		end = len(a.filtered)
	}
	for i := start; i < end; i++ {
		al := a.filtered[i]
		marker := " "
		if i == a.cursor {
			marker = cursorStyle.Render(">")
		}
		cells := []string{
			marker,
			al.AlertID,
			al.RuleID,
			fmt.Sprintf("%.2f %s", al.Amount, al.Currency),
			fmt.Sprintf("%.0f", al.RiskScore),
			al.Priority,
			al.Status,
			truncate(al.Description, 40),
		}
		for j, c := range cells {
			cell := tableCellStyle.Width(widths[j] + 2).Render(c)
			if i == a.cursor && j > 0 {
				cell = selectedItemStyle.Render(cell)
			}
			sb.WriteString(cell)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
