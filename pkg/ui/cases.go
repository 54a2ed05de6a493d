package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/archive"
)

// loadCases lists the archived case files.
func (a *App) loadCases() tea.Cmd {
	arch := a.deps.Archive
	return func() tea.Msg {
		return casesMsg{infos: arch.List()}
	}
}

// loadCaseTurns replays the transcript of one archived case.
func (a *App) loadCaseTurns(info archive.Info) tea.Cmd {
	arch := a.deps.Archive
	return func() tea.Msg {
		turns, err := arch.ReadTranscript(info.Path)
		if err != nil {
			return caseTurnsMsg{err: fmt.Errorf("reading case %s: %w", info.CaseID, err)}
		}
		return caseTurnsMsg{turns: turns}
	}
}

func (a *App) updateCasesPage(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		// Esc closes the open transcript first, then leaves the page.
		if a.caseOpen {
			a.caseOpen = false
			a.caseTurns = nil
			return a, nil
		}
		a.page = pageAlerts
		return a, nil
	case "up", "k":
		if !a.caseOpen && a.caseCursor > 0 {
			a.caseCursor--
		}
	case "down", "j":
		if !a.caseOpen && a.caseCursor < len(a.cases)-1 {
			a.caseCursor++
		}
	case "r":
		return a, a.loadCases()
	case "enter":
		if !a.caseOpen && a.caseCursor < len(a.cases) {
			a.err = nil
			return a, a.loadCaseTurns(a.cases[a.caseCursor])
		}
	}
	return a, nil
}

func (a *App) viewCasesPage() string {
	title := titleStyle.Render("Archived Cases")

	var body string
	if a.caseOpen {
		body = a.renderCaseTranscript()
	} else {
		body = a.renderCaseList()
	}

	footer := mutedStyle.Render("enter open · r refresh · esc back")
	return lipgloss.JoinVertical(lipgloss.Left, title, body, footer)
}

func (a *App) renderCaseList() string {
	if len(a.cases) == 0 {
		return mutedStyle.Render("\n  No archived cases yet. Close a session to record one.\n")
	}

	headers := []string{"", "CASE", "ALERT", "TURNS", "CLOSED"}
	widths := []int{1, 24, 14, 6, 18}

	var sb strings.Builder
	for i, h := range headers {
		sb.WriteString(tableHeaderStyle.Width(widths[i] + 2).Render(h))
	}
	sb.WriteString("\n")

	for i, info := range a.cases {
		marker := " "
		if i == a.caseCursor {
			marker = cursorStyle.Render(">")
		}
		cells := []string{
			marker,
			truncate(info.CaseID, 24),
			info.AlertID,
			fmt.Sprintf("%d", info.Turns),
			info.Closed.Local().Format("2006-01-02 15:04"),
		}
		for j, c := range cells {
			cell := tableCellStyle.Width(widths[j] + 2).Render(c)
			if i == a.caseCursor && j > 0 {
				cell = selectedItemStyle.Render(cell)
			}
			sb.WriteString(cell)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (a *App) renderCaseTranscript() string {
	info := archive.Info{}
	if a.caseCursor < len(a.cases) {
		info = a.cases[a.caseCursor]
	}

	var sb strings.Builder
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("case %s · alert %s", info.CaseID, info.AlertID)))
	sb.WriteString("\n\n")

	if len(a.caseTurns) == 0 {
		sb.WriteString(mutedStyle.Render("  This case closed without any dialogue.\n"))
		return sb.String()
	}
	for _, turn := range a.caseTurns {
		sb.WriteString(turnLabel(turn))
		sb.WriteString(" ")
		sb.WriteString(turn.Text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
