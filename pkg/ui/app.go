// Package ui is the bubbletea front of the console: an alerts triage page,
// a live session page, a case memory page, and an archived case browser.
// All mutation happens inside
// the single program loop; stream callbacks cross into it as messages over
// the updates channel, in arrival order.
package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/api"
	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/archive"
	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/config"
	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/reconcile"
	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/reveal"
	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/status"
	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/stream"
	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/triage"
)

type page int

const (
	pageAlerts page = iota
	pageSession
	pageMemory
	pageCases
)

// Messages crossing into the program loop.
type (
	alertsMsg         struct{ alerts []api.Alert }
	sessionStartedMsg struct {
		sessionID string
		alert     api.Alert
	}
	startFailedMsg struct{ err error }
	snapshotMsg    struct{ sessionID string }
	disconnectMsg  struct {
		sessionID string
		err       error
	}
	titleMsg        struct{ stage string }
	streamOpenedMsg struct {
		sessionID string
		handle    *stream.Handle
	}
	revealTickMsg struct{ gen int }
	exportedMsg   struct {
		path string
		err  error
	}
	memSummaryMsg struct {
		summary string
		err     error
	}
	memItemsMsg struct {
		items []api.CaseMemory
		err   error
	}
	graphResultsMsg struct {
		results []api.GraphResult
		err     error
	}
	ragResultsMsg struct {
		results []string
		err     error
	}
	memNoteMsg      struct{ err error }
	graphClearedMsg struct{ err error }
	casesMsg        struct{ infos []archive.Info }
	caseTurnsMsg    struct {
		turns []api.DialogueTurn
		err   error
	}
)

// Deps is everything the app needs from the outside.
type Deps struct {
	Client    *api.Client
	Store     *reconcile.Store
	Broadcast *status.Broadcast
	Streams   *stream.Manager
	Archive   *archive.Archive
	DataDir   string
	State     config.State
	Log       *zap.Logger
}

// App is the root bubbletea model.
type App struct {
	ctx  context.Context
	deps Deps
	log  *zap.Logger

	page   page
	width  int
	height int
	err    error

	// Stream messages are bridged through this channel so the loop consumes
	// them in arrival order.
	updates chan tea.Msg

	// Alerts page.
	index       *triage.Index
	view        triage.ViewConfig
	filtered    []api.Alert
	cursor      int
	listOffset  int
	searching   bool
	searchInput textinput.Model
	exportNote  string

	// Session page.
	alert          api.Alert
	sessionID      string
	handle         *stream.Handle
	revealer       *reveal.Revealer
	viewport       viewport.Model
	textarea       textarea.Model
	renderer       *glamour.TermRenderer
	timelineCursor int

	// Memory page.
	memSummary   string
	memItems     []api.CaseMemory
	graphInput   textinput.Model
	graphResults []api.GraphResult
	ragResults   []string
	memNote      string
	memErr       error

	// Archived cases page.
	cases      []archive.Info
	caseCursor int
	caseTurns  []api.DialogueTurn
	caseOpen   bool
}

// New builds the app and wires the stream manager callbacks into the update
// channel.
func New(ctx context.Context, deps Deps) *App {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}

	si := textinput.New()
	si.Placeholder = "search id or description"
	si.CharLimit = 120

	gi := textinput.New()
	gi.Placeholder = "graph search"
	gi.CharLimit = 120

	ta := textarea.New()
	ta.Placeholder = "Reply to the dialogue agent..."
	ta.Prompt = "┃ "
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()

	vp := viewport.New(80, 20)

	r, _ := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(80),
	)

	a := &App{
		ctx:         ctx,
		deps:        deps,
		log:         deps.Log,
		updates:     make(chan tea.Msg, 64),
		view:        deps.State.View.Normalize(),
		searchInput: si,
		graphInput:  gi,
		textarea:    ta,
		viewport:    vp,
		renderer:    r,
		revealer:    reveal.New(),
		index:       triage.NewIndex(nil),
	}

	return a
}

// SetStreams wires the stream manager in after construction; the manager
// needs the app's notifier, so the two are built in sequence.
func (a *App) SetStreams(m *stream.Manager) {
	a.deps.Streams = m
	m.OnSnapshot = func(sid string, _ api.Snapshot) {
		a.updates <- snapshotMsg{sessionID: sid}
	}
	m.OnDisconnect = func(sid string, err error) {
		a.updates <- disconnectMsg{sessionID: sid, err: err}
	}
}

// Notify is the stage notifier given to the stream manager; it surfaces the
// active stage as the terminal window title.
func (a *App) Notify(stage string) {
	select {
	case a.updates <- titleMsg{stage: stage}:
	default:
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadAlerts(), a.waitForUpdate())
}

func (a *App) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		return <-a.updates
	}
}

func (a *App) loadAlerts() tea.Cmd {
	client := a.deps.Client
	ctx := a.ctx
	return func() tea.Msg {
		return alertsMsg{alerts: client.Alerts(ctx)}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.viewport.Width = msg.Width - timelineWidth - 3
		a.viewport.Height = msg.Height - a.textarea.Height() - 5
		if a.viewport.Height < 1 {
			a.viewport.Height = 1
		}
		a.textarea.SetWidth(msg.Width - 2)
		a.searchInput.Width = msg.Width - 20
		wrap := a.viewport.Width - 2
		if wrap < 20 {
			wrap = 20
		}
		a.renderer, _ = glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrap),
		)
		a.refreshSessionView(false)
		return a, nil

	case alertsMsg:
		a.index = triage.NewIndex(msg.alerts)
		a.applyView()
		return a, nil

	case sessionStartedMsg:
		return a.onSessionStarted(msg)

	case startFailedMsg:
		a.err = msg.err
		return a, nil

	case streamOpenedMsg:
		if msg.sessionID == a.sessionID {
			a.handle = msg.handle
			a.err = nil
		} else {
			// Session changed while the dial was in flight.
			msg.handle.Close()
		}
		return a, nil

	case snapshotMsg:
		var cmd tea.Cmd
		if msg.sessionID == a.sessionID {
			cmd = a.refreshSessionView(true)
		}
		return a, tea.Batch(cmd, a.waitForUpdate())

	case disconnectMsg:
		if msg.sessionID == a.sessionID {
			a.handle = nil
			if msg.err != nil {
				a.err = fmt.Errorf("stream disconnected: %w", msg.err)
			}
		}
		return a, a.waitForUpdate()

	case titleMsg:
		return a, tea.Batch(tea.SetWindowTitle("fabric: "+msg.stage), a.waitForUpdate())

	case revealTickMsg:
		if done := a.revealer.Tick(msg.gen); !done {
			a.setViewportContent()
			return a, a.revealTick(msg.gen)
		}
		a.setViewportContent()
		return a, nil

	case exportedMsg:
		if msg.err != nil {
			a.err = msg.err
		} else {
			a.exportNote = "exported " + msg.path
		}
		return a, nil

	case memSummaryMsg:
		a.memSummary, a.memErr = msg.summary, msg.err
		return a, nil
	case memItemsMsg:
		a.memItems = msg.items
		if msg.err != nil {
			a.memErr = msg.err
		}
		return a, nil
	case graphResultsMsg:
		a.graphResults = msg.results
		if msg.err != nil {
			a.memErr = msg.err
		}
		return a, nil
	case ragResultsMsg:
		a.ragResults = msg.results
		if msg.err != nil {
			a.memErr = msg.err
		}
		return a, nil
	case memNoteMsg:
		if msg.err != nil {
			a.memErr = msg.err
		} else {
			a.memNote = "observation stored"
		}
		return a, nil
	case graphClearedMsg:
		if msg.err != nil {
			a.memErr = msg.err
		} else {
			a.graphResults = nil
			a.memNote = "graph memory cleared"
		}
		return a, nil
	case casesMsg:
		a.cases = msg.infos
		if a.caseCursor >= len(a.cases) {
			a.caseCursor = len(a.cases) - 1
		}
		if a.caseCursor < 0 {
			a.caseCursor = 0
		}
		return a, nil
	case caseTurnsMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.caseTurns = msg.turns
		a.caseOpen = true
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a, a.quit()
	}
	switch a.page {
	case pageAlerts:
		return a.updateAlertsPage(msg)
	case pageSession:
		return a.updateSessionPage(msg)
	case pageMemory:
		return a.updateMemoryPage(msg)
	case pageCases:
		return a.updateCasesPage(msg)
	}
	return a, nil
}

// quit tears down the active session before exiting.
func (a *App) quit() tea.Cmd {
	teardown := a.teardownSession()
	return tea.Sequence(teardown, tea.Quit)
}

// teardownSession ends the live session: archive, notify the backend, close
// the handle. Safe when no session is active.
func (a *App) teardownSession() tea.Cmd {
	if a.sessionID == "" {
		return func() tea.Msg { return nil }
	}
	sid := a.sessionID
	alertID := a.alert.AlertID
	snap := a.deps.Store.Snapshot()
	transcript := a.deps.Store.Transcript()
	client := a.deps.Client
	arch := a.deps.Archive
	streams := a.deps.Streams

	a.sessionID = ""
	a.handle = nil
	a.deps.Broadcast.Update(status.Patch{
		Connected:      status.Bool(false),
		Status:         status.Str("Idle"),
		StreamingAgent: status.Str(""),
		SessionID:      status.Str(""),
	})

	return func() tea.Msg {
		streams.CloseSession(sid)
		arch.SaveCase(sid, alertID, snap, transcript)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.EndSession(ctx, sid)
		return nil
	}
}

func (a *App) onSessionStarted(msg sessionStartedMsg) (tea.Model, tea.Cmd) {
	a.sessionID = msg.sessionID
	a.alert = msg.alert
	a.page = pageSession
	a.err = nil
	a.timelineCursor = -1
	a.deps.Store.Apply(api.Snapshot{})
	a.deps.Store.SelectLive()
	a.revealer.Snap("")
	a.textarea.Focus()
	a.setViewportContent()
	return a, a.openStream()
}

// openStream connects (or reconnects) the push channel for the current
// session. The manager guarantees at most one live handle per session.
func (a *App) openStream() tea.Cmd {
	sid := a.sessionID
	streams := a.deps.Streams
	ctx := a.ctx
	return func() tea.Msg {
		h, err := streams.Open(ctx, sid)
		if err != nil {
			return startFailedMsg{err: fmt.Errorf("opening stream: %w", err)}
		}
		return streamOpenedMsg{sessionID: sid, handle: h}
	}
}

func (a *App) View() string {
	if a.width == 0 {
		return "starting..."
	}
	var body string
	switch a.page {
	case pageAlerts:
		body = a.viewAlertsPage()
	case pageSession:
		body = a.viewSessionPage()
	case pageMemory:
		body = a.viewMemoryPage()
	case pageCases:
		body = a.viewCasesPage()
	}

	var errView string
	if a.err != nil {
		errView = errorStyle.Width(a.width).Render(fmt.Sprintf("Error: %v", a.err))
	}
	return lipgloss.JoinVertical(lipgloss.Left, a.viewHeader(), body, errView)
}

// saveState persists durable client state best-effort.
func (a *App) saveState() {
	st := a.deps.State
	st.View = a.view
	a.deps.State = st
	if err := config.Save(a.deps.DataDir, st); err != nil {
		a.log.Debug("state save failed", zap.Error(err))
	}
}

// exportCmd writes the current filtered view to a CSV file in the data dir.
func (a *App) exportCmd() tea.Cmd {
	rows := make([]api.Alert, len(a.filtered))
	copy(rows, a.filtered)
	dir := a.deps.DataDir
	return func() tea.Msg {
		path := filepath.Join(dir, fmt.Sprintf("alerts-%s.csv", time.Now().Format("20060102-150405")))
		f, err := os.Create(path)
		if err != nil {
			return exportedMsg{err: err}
		}
		defer f.Close()
		if err := triage.ExportCSV(f, rows); err != nil {
			return exportedMsg{err: err}
		}
		return exportedMsg{path: path}
	}
}
