package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateMergesPartialPatches(t *testing.T) {
	b := New()

	b.Update(Patch{
		Connected: Bool(true),
		Status:    Str("Streaming"),
		SessionID: Str("sess-1"),
	})
	b.Update(Patch{CaseID: Str("ALRT-001")})

	st := b.Current()
	assert.True(t, st.Connected)
	assert.Equal(t, "Streaming", st.Status)
	assert.Equal(t, "sess-1", st.SessionID, "patching case id must not erase session id")
	assert.Equal(t, "ALRT-001", st.CaseID)

	b.Update(Patch{Connected: Bool(false), StreamingAgent: Str("")})
	st = b.Current()
	assert.False(t, st.Connected)
	assert.Equal(t, "ALRT-001", st.CaseID, "disconnect patch must not erase case id")
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	b := New()
	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	b.Update(Patch{Status: Str("Streaming")})
	st := <-ch
	assert.Equal(t, "Streaming", st.Status)
}

func TestSlowSubscriberSeesLatest(t *testing.T) {
	b := New()
	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	// Nobody drains between updates; the stale value is displaced.
	b.Update(Patch{CurrentStep: Int(1)})
	b.Update(Patch{CurrentStep: Int(2)})
	b.Update(Patch{CurrentStep: Int(3)})

	st := <-ch
	assert.Equal(t, 3, st.CurrentStep)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	id, ch := b.Subscribe()
	b.Unsubscribe(id)

	b.Update(Patch{Status: Str("Streaming")})
	select {
	case st := <-ch:
		t.Fatalf("unexpected delivery after unsubscribe: %+v", st)
	default:
	}
}

func TestUnsubscribeUnknownID(t *testing.T) {
	b := New()
	require.NotPanics(t, func() { b.Unsubscribe("nope") })
}
