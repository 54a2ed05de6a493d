// Package status holds the process-wide connection/progress observable. The
// stream manager and session control actions are its only writers; any
// number of widgets subscribe. Updates are partial merges so one writer can
// change a single field without erasing what another writer set.
package status

import (
	"sync"

	"github.com/google/uuid"
)

// State is the broadcast record.
type State struct {
	Connected      bool
	Status         string
	CurrentStep    int
	TotalSteps     int
	StreamingAgent string
	SessionID      string
	CaseID         string
}

// Patch is a partial update; nil fields leave the current value unchanged.
type Patch struct {
	Connected      *bool
	Status         *string
	CurrentStep    *int
	TotalSteps     *int
	StreamingAgent *string
	SessionID      *string
	CaseID         *string
}

// Helpers for building patches inline.
func Bool(v bool) *bool    { return &v }
func Str(v string) *string { return &v }
func Int(v int) *int       { return &v }

// Broadcast is the observable. The zero value is not usable; call New.
type Broadcast struct {
	mu    sync.Mutex
	state State
	subs  map[string]chan State
}

func New() *Broadcast {
	return &Broadcast{subs: make(map[string]chan State)}
}

// Update merges p into the current state and notifies subscribers. Sends are
// non-blocking: a subscriber that has not drained its channel misses
// intermediate states and sees the latest on the next send.
func (b *Broadcast) Update(p Patch) {
	b.mu.Lock()
	if p.Connected != nil {
		b.state.Connected = *p.Connected
	}
	if p.Status != nil {
		b.state.Status = *p.Status
	}
	if p.CurrentStep != nil {
		b.state.CurrentStep = *p.CurrentStep
	}
	if p.TotalSteps != nil {
		b.state.TotalSteps = *p.TotalSteps
	}
	if p.StreamingAgent != nil {
		b.state.StreamingAgent = *p.StreamingAgent
	}
	if p.SessionID != nil {
		b.state.SessionID = *p.SessionID
	}
	if p.CaseID != nil {
		b.state.CaseID = *p.CaseID
	}
	state := b.state
	subs := make([]chan State, 0, len(b.subs))
	for _, ch := range b.subs {
		subs = append(subs, ch)
	}
	b.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- state:
		default:
			// Drop the stale value so the fresh one fits.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- state:
			default:
			}
		}
	}
}

// Current returns the present state.
func (b *Broadcast) Current() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Subscribe registers a listener. The returned channel has a buffer of one;
// pair with Unsubscribe on teardown.
func (b *Broadcast) Subscribe() (string, <-chan State) {
	ch := make(chan State, 1)
	id := uuid.NewString()
	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a listener. Safe to call with an unknown id.
func (b *Broadcast) Unsubscribe(id string) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
}
