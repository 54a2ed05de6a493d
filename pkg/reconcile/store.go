// Package reconcile owns the single displayed view of an evolving session.
// The stream manager pushes full snapshots in; the UI reads derived views
// out. Applying a snapshot is atomic with respect to reads, and the store
// never mutates a snapshot after receipt; each arrival replaces the
// previous reference wholesale.
package reconcile

import (
	"sync"

	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/api"
)

// Store reconciles inbound snapshots with the analyst's selection state.
type Store struct {
	mu   sync.Mutex
	snap api.Snapshot

	// Selection: the analyst is either tracking live output or pinned to a
	// historical log index. The pin survives snapshot replacement unless the
	// index vanished.
	pinned    bool
	pinnedIdx int
}

func NewStore() *Store {
	return &Store{}
}

// Apply installs a new snapshot, last-snapshot-wins. A pin whose index no
// longer exists is dropped back to live.
func (s *Store) Apply(snap api.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	if s.pinned && s.pinnedIdx >= len(snap.Logs) {
		s.pinned = false
	}
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() api.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Logs returns the stage log of the current snapshot.
func (s *Store) Logs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Logs
}

// SelectIndex pins the view to a historical log index. Out-of-range indexes
// are ignored. Selecting the newest index is live tracking, not a pin: the
// view keeps following new output as it arrives rather than freezing on what
// happens to be newest right now.
func (s *Store) SelectIndex(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.snap.Logs) {
		return
	}
	if i == len(s.snap.Logs)-1 {
		s.pinned = false
		return
	}
	s.pinned = true
	s.pinnedIdx = i
}

// SelectLive returns the view to tracking the newest output.
func (s *Store) SelectLive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pinned = false
}

// Selection reports the pinned index, if any.
func (s *Store) Selection() (idx int, pinned bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pinnedIdx, s.pinned
}

// ViewingHistorical reports whether the analyst is inspecting anything other
// than the newest log index. Downstream consumers use this to choose between
// animated and static rendering. There is no forced unpin: a historical pin
// stays until the analyst selects live or the index disappears.
func (s *Store) ViewingHistorical() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewingHistoricalLocked()
}

func (s *Store) viewingHistoricalLocked() bool {
	return s.pinned && s.pinnedIdx != len(s.snap.Logs)-1
}

// CurrentDisplayValue resolves the "latest agent response": the payload at
// the pinned log index when pinned, otherwise the last stage output. Keyed
// lookup of the log-line text into the stage mapping wins over positional
// lookup; structured payloads come back pretty-printed.
func (s *Store) CurrentDisplayValue() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pinned && s.pinnedIdx < len(s.snap.Logs) {
		key := s.snap.Logs[s.pinnedIdx]
		if raw, ok := s.snap.Stages[key]; ok {
			return api.StageText(raw), true
		}
		if s.pinnedIdx < len(s.snap.AgentResponses) {
			return api.StageText(s.snap.AgentResponses[s.pinnedIdx]), true
		}
		return "", false
	}

	if n := len(s.snap.AgentResponses); n > 0 {
		return api.StageText(s.snap.AgentResponses[n-1]), true
	}
	return "", false
}

// Transcript returns the dialogue turns, with a synthesized trailing risk
// turn when the backend reported a distinct latest risk assessment. The
// synthesis is display-only; the snapshot itself is untouched.
func (s *Store) Transcript() []api.DialogueTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := make([]api.DialogueTurn, len(s.snap.Dialogue))
	copy(turns, s.snap.Dialogue)
	if s.snap.LatestRiskAssessment != "" {
		turns = append(turns, api.DialogueTurn{
			Role: api.RoleRisk,
			Text: s.snap.LatestRiskAssessment,
		})
	}
	return turns
}
