package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// viewHeader renders the global status bar from the status broadcast.
func (a *App) viewHeader() string {
	st := a.deps.Broadcast.Current()

	var conn string
	if st.Connected {
		conn = headerConnectedStyle.Render("● " + st.Status)
	} else {
		label := st.Status
		if label == "" {
			label = "Idle"
		}
		conn = headerDisconnectedStyle.Render("○ " + label)
	}

	parts := []string{titleStyle.Render("Fraud Resolution Fabric"), conn}
	if st.TotalSteps > 0 {
		parts = append(parts, mutedStyle.Render(fmt.Sprintf("step %d/%d", st.CurrentStep, st.TotalSteps)))
	}
	if st.StreamingAgent != "" {
		parts = append(parts, assistantTurnStyle.Render(st.StreamingAgent))
	}
	if st.CaseID != "" {
		parts = append(parts, mutedStyle.Render("case "+st.CaseID))
	}
	if st.SessionID != "" {
		parts = append(parts, mutedStyle.Render("session "+truncate(st.SessionID, 8)))
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, joinWithGap(parts)...)
}

func joinWithGap(parts []string) []string {
	out := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			out = append(out, "  ")
		}
		out = append(out, p)
	}
	return out
}
