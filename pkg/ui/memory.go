package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// loadMemory fetches the case summary and memory items. Both calls are
// optional enrichment; failure leaves the panel in its explanatory empty
// state.
func (a *App) loadMemory() tea.Cmd {
	caseID := a.deps.Broadcast.Current().CaseID
	if caseID == "" {
		a.memErr = nil
		a.memSummary = ""
		a.memItems = nil
		return nil
	}
	client := a.deps.Client
	summary := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s, err := client.CaseSummary(ctx, caseID)
		return memSummaryMsg{summary: s, err: err}
	}
	items := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		it, err := client.CaseMemories(ctx, caseID, 10)
		return memItemsMsg{items: it, err: err}
	}
	return tea.Batch(summary, items)
}

func (a *App) updateMemoryPage(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.graphInput.Focused() {
		switch msg.Type {
		case tea.KeyEnter:
			query := strings.TrimSpace(a.graphInput.Value())
			a.graphInput.Blur()
			a.graphInput.Reset()
			if query == "" {
				return a, nil
			}
			a.memNote = ""
			// "+fact" stores an observation, "?query" looks up policy,
			// anything else searches the case graph.
			switch {
			case strings.HasPrefix(query, "+"):
				return a, a.graphAddCmd(strings.TrimSpace(query[1:]))
			case strings.HasPrefix(query, "?"):
				return a, a.ragSearchCmd(strings.TrimSpace(query[1:]))
			default:
				return a, a.graphSearchCmd(query)
			}
		case tea.KeyEsc:
			a.graphInput.Blur()
			return a, nil
		default:
			var cmd tea.Cmd
			a.graphInput, cmd = a.graphInput.Update(msg)
			return a, cmd
		}
	}

	switch msg.String() {
	case "esc", "q":
		a.page = pageSession
		return a, nil
	case "/":
		a.graphInput.Focus()
		return a, nil
	case "r":
		return a, a.loadMemory()
	case "ctrl+x":
		return a, a.graphClearCmd()
	}
	return a, nil
}

func (a *App) graphSearchCmd(query string) tea.Cmd {
	client := a.deps.Client
	caseID := a.deps.Broadcast.Current().CaseID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		res, err := client.GraphSearch(ctx, caseID, query, 5)
		return graphResultsMsg{results: res, err: err}
	}
}

func (a *App) graphAddCmd(content string) tea.Cmd {
	if content == "" {
		return nil
	}
	client := a.deps.Client
	caseID := a.deps.Broadcast.Current().CaseID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return memNoteMsg{err: client.GraphAdd(ctx, caseID, content)}
	}
}

func (a *App) ragSearchCmd(query string) tea.Cmd {
	if query == "" {
		return nil
	}
	client := a.deps.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		res, err := client.RAGSearch(ctx, query, 5)
		return ragResultsMsg{results: res, err: err}
	}
}

func (a *App) graphClearCmd() tea.Cmd {
	client := a.deps.Client
	caseID := a.deps.Broadcast.Current().CaseID
	if caseID == "" {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return graphClearedMsg{err: client.GraphClear(ctx, caseID)}
	}
}

func (a *App) viewMemoryPage() string {
	title := titleStyle.Render("Case Memory")
	caseID := a.deps.Broadcast.Current().CaseID

	var body strings.Builder
	if caseID == "" {
		body.WriteString(mutedStyle.Render("\nNo case bound to this session yet. Memory appears once the backend assigns a case id.\n"))
	} else {
		body.WriteString(mutedStyle.Render("case " + caseID))
		body.WriteString("\n\n")
		if a.memSummary != "" {
			body.WriteString(assistantTurnStyle.Render("Summary"))
			body.WriteString("\n" + a.memSummary + "\n\n")
		}
		if len(a.memItems) > 0 {
			body.WriteString(assistantTurnStyle.Render("Memories"))
			body.WriteString("\n")
			for _, m := range a.memItems {
				body.WriteString(fmt.Sprintf("  • %s\n", truncate(m.Memory, a.width-6)))
			}
			body.WriteString("\n")
		}
		if a.memSummary == "" && len(a.memItems) == 0 && a.memErr == nil {
			body.WriteString(mutedStyle.Render("No memories stored for this case yet.\n"))
		}
		if a.memErr != nil {
			body.WriteString(mutedStyle.Render("Memory backend unavailable; the stream view is unaffected.\n"))
		}
	}

	if len(a.graphResults) > 0 {
		body.WriteString(assistantTurnStyle.Render("Graph"))
		body.WriteString("\n")
		for _, g := range a.graphResults {
			body.WriteString(fmt.Sprintf("  %s -[%s]-> %s\n", g.Source, g.Relation, g.Target))
		}
		body.WriteString("\n")
	}
	if len(a.ragResults) > 0 {
		body.WriteString(assistantTurnStyle.Render("Policy"))
		body.WriteString("\n")
		for _, r := range a.ragResults {
			body.WriteString(fmt.Sprintf("  • %s\n", truncate(r, a.width-6)))
		}
		body.WriteString("\n")
	}
	if a.memNote != "" {
		body.WriteString(mutedStyle.Render(a.memNote + "\n"))
	}

	search := a.graphInput.View()
	footer := mutedStyle.Render("/ graph search · +fact add · ?query policy · ^x clear graph · r refresh · esc back")
	return lipgloss.JoinVertical(lipgloss.Left, title, body.String(), search, footer)
}
