// Package stream owns the push channel for a workflow session: connect,
// decode frames, tear down. Reconnection is never automatic: a transport
// error surfaces once as a disconnect and the next connection is a
// deliberate Open by the caller. At most one live handle exists per session;
// Open closes any prior handle for the same id before dialing so two
// readers can never race on the store.
package stream

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/api"
	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/reconcile"
	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/status"
)

// maxFrameSize bounds a single SSE frame; full state objects with long
// transcripts fit comfortably under this.
const maxFrameSize = 8 << 20

// Notifier receives the active stage name on every frame. The console wires
// this to the terminal window title; it exists so the manager stays ignorant
// of any particular presentation surface.
type Notifier func(stage string)

// Manager opens and supervises stream handles.
type Manager struct {
	client    *api.Client
	store     *reconcile.Store
	broadcast *status.Broadcast
	notify    Notifier
	log       *zap.Logger

	// OnSnapshot fires after a frame has been applied to the store.
	OnSnapshot func(sessionID string, s api.Snapshot)
	// OnDisconnect fires once per handle when its transport ends, whether by
	// error, server close, or local Close. err is nil for a clean close.
	OnDisconnect func(sessionID string, err error)

	mu      sync.Mutex
	handles map[string]*Handle
}

// NewManager wires a manager to its store and broadcast. notify may be nil.
func NewManager(client *api.Client, store *reconcile.Store, b *status.Broadcast, notify Notifier, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	if notify == nil {
		notify = func(string) {}
	}
	return &Manager{
		client:    client,
		store:     store,
		broadcast: b,
		notify:    notify,
		log:       log,
		handles:   make(map[string]*Handle),
	}
}

// Handle is one live stream connection.
type Handle struct {
	sessionID string
	cancel    context.CancelFunc
	closeOnce sync.Once
	done      chan struct{}
}

// SessionID returns the session this handle streams.
func (h *Handle) SessionID() string { return h.sessionID }

// Close tears the connection down. Idempotent and safe to call from any
// goroutine; the disconnect callback still fires exactly once, from the
// reader.
func (h *Handle) Close() {
	h.closeOnce.Do(h.cancel)
}

// Done is closed when the reader goroutine has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Open connects the stream for a session. Any existing handle for the same
// session is closed first, synchronously, before the new request is issued.
func (m *Manager) Open(ctx context.Context, sessionID string) (*Handle, error) {
	m.mu.Lock()
	old, hadOld := m.handles[sessionID]
	if hadOld {
		delete(m.handles, sessionID)
	}
	m.mu.Unlock()
	if hadOld {
		// Join the old reader before dialing: a frame still sitting in its
		// scanner buffer must not reach the store after the new handle is
		// live.
		old.Close()
		<-old.Done()
	}

	hctx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(hctx, http.MethodGet, m.client.StreamURL(sessionID), nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := m.client.HTTPClient().Do(req)
	if err != nil {
		cancel()
		m.markDisconnected()
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		m.markDisconnected()
		return nil, &StatusError{Code: resp.StatusCode}
	}

	h := &Handle{sessionID: sessionID, cancel: cancel, done: make(chan struct{})}
	m.mu.Lock()
	m.handles[sessionID] = h
	m.mu.Unlock()

	go m.read(h, resp)
	return h, nil
}

// CloseSession closes the handle for a session, if one is open.
func (m *Manager) CloseSession(sessionID string) {
	m.mu.Lock()
	h, ok := m.handles[sessionID]
	if ok {
		delete(m.handles, sessionID)
	}
	m.mu.Unlock()
	if ok {
		h.Close()
	}
}

// read pumps SSE frames until the transport ends.
func (m *Manager) read(h *Handle, resp *http.Response) {
	defer close(h.done)
	defer resp.Body.Close()

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 64<<10), maxFrameSize)

	var data bytes.Buffer
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "data:") {
			// Multiple data lines in one event are joined with a newline.
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
			continue
		}
		if line != "" {
			// Comment or field we do not use.
			continue
		}
		if data.Len() == 0 {
			continue
		}
		frame := data.Bytes()
		data = bytes.Buffer{}

		snap, err := api.ParseSnapshot(frame)
		if err != nil {
			// One bad frame must not end the session.
			m.log.Debug("dropping malformed frame", zap.String("session", h.sessionID), zap.Error(err))
			continue
		}
		m.deliver(h.sessionID, snap)
	}

	err := sc.Err()
	m.log.Info("stream ended", zap.String("session", h.sessionID), zap.Error(err))

	m.mu.Lock()
	if m.handles[h.sessionID] == h {
		delete(m.handles, h.sessionID)
	}
	m.mu.Unlock()

	m.markDisconnected()
	if m.OnDisconnect != nil {
		m.OnDisconnect(h.sessionID, err)
	}
}

func (m *Manager) deliver(sessionID string, snap api.Snapshot) {
	m.store.Apply(snap)

	p := status.Patch{
		Connected:      status.Bool(true),
		Status:         status.Str("Streaming"),
		CurrentStep:    status.Int(snap.CurrentStep),
		TotalSteps:     status.Int(snap.TotalSteps),
		StreamingAgent: status.Str(snap.StreamingAgent),
		SessionID:      status.Str(sessionID),
	}
	if snap.CaseID != "" {
		p.CaseID = status.Str(snap.CaseID)
	}
	m.broadcast.Update(p)

	if stage := activeStage(snap); stage != "" {
		m.notify(stage)
	}
	if m.OnSnapshot != nil {
		m.OnSnapshot(sessionID, snap)
	}
}

func (m *Manager) markDisconnected() {
	m.broadcast.Update(status.Patch{
		Connected:      status.Bool(false),
		Status:         status.Str("Disconnected"),
		StreamingAgent: status.Str(""),
	})
}

// activeStage is the stage name shown on the external indicator: the
// streaming agent when set, otherwise the newest log line.
func activeStage(s api.Snapshot) string {
	if s.StreamingAgent != "" {
		return s.StreamingAgent
	}
	if len(s.Logs) > 0 {
		return s.Logs[len(s.Logs)-1]
	}
	return ""
}

// StatusError reports a non-200 response on stream connect.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return "stream connect: unexpected status " + http.StatusText(e.Code)
}
