package reconcile

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/api"
)

func raw(s string) json.RawMessage {
	data, _ := json.Marshal(s)
	return data
}

func TestLiveViewTracksLatestSnapshot(t *testing.T) {
	s := NewStore()

	// Growing log sequences: the live view must always reflect the most
	// recently applied snapshot.
	for i := 1; i <= 5; i++ {
		snap := api.Snapshot{}
		for j := 0; j < i; j++ {
			snap.Logs = append(snap.Logs, fmt.Sprintf("Agent%d", j))
			snap.AgentResponses = append(snap.AgentResponses, raw(fmt.Sprintf("output %d", j)))
		}
		s.Apply(snap)

		got, ok := s.CurrentDisplayValue()
		if !ok {
			t.Fatalf("apply %d: no display value", i)
		}
		want := fmt.Sprintf("output %d", i-1)
		if got != want {
			t.Errorf("apply %d: got %q, want %q", i, got, want)
		}
	}
}

func TestHistoricalSelectionKeyedLookup(t *testing.T) {
	s := NewStore()
	s.Apply(api.Snapshot{
		Logs:           []string{"TriageAgent", "PolicyDecisionAgent", "FeedbackAgent"},
		AgentResponses: []json.RawMessage{raw("positional triage"), raw("positional policy"), raw("positional feedback")},
		Stages: map[string]json.RawMessage{
			"TriageAgent": raw("keyed triage"),
		},
	})

	// Index 0 has a keyed match; it wins over the positional value.
	s.SelectIndex(0)
	if got, _ := s.CurrentDisplayValue(); got != "keyed triage" {
		t.Errorf("keyed lookup: got %q", got)
	}

	// Index 1 has no keyed match; positional lookup applies.
	s.SelectIndex(1)
	if got, _ := s.CurrentDisplayValue(); got != "positional policy" {
		t.Errorf("positional fallback: got %q", got)
	}
}

func TestHistoricalSelectionStructuredPayload(t *testing.T) {
	s := NewStore()
	s.Apply(api.Snapshot{
		Logs:           []string{"PolicyDecisionAgent"},
		AgentResponses: []json.RawMessage{json.RawMessage(`{"decision":"BLOCK"}`)},
	})
	s.SelectIndex(0)

	got, ok := s.CurrentDisplayValue()
	if !ok {
		t.Fatal("no display value")
	}
	want := "{\n  \"decision\": \"BLOCK\"\n}"
	if got != want {
		t.Errorf("structured payload must pretty-print:\ngot  %q\nwant %q", got, want)
	}
}

func TestViewingHistorical(t *testing.T) {
	s := NewStore()
	s.Apply(api.Snapshot{Logs: []string{"A", "B"}})

	if s.ViewingHistorical() {
		t.Error("live view must not report historical")
	}

	// Selecting the newest index is live tracking, not a pin: when the log
	// grows, the view keeps following the newest output.
	s.SelectIndex(1)
	if s.ViewingHistorical() {
		t.Error("selection of newest index must not report historical")
	}
	s.Apply(api.Snapshot{
		Logs:           []string{"A", "B", "C"},
		AgentResponses: []json.RawMessage{raw("ra"), raw("rb"), raw("rc")},
	})
	if s.ViewingHistorical() {
		t.Error("newest-index selection must follow live after growth")
	}
	if got, _ := s.CurrentDisplayValue(); got != "rc" {
		t.Errorf("expected live value after growth, got %q", got)
	}

	// A strictly historical index pins and stays pinned.
	s.SelectIndex(0)
	if !s.ViewingHistorical() {
		t.Error("historical selection must report historical")
	}
	s.Apply(api.Snapshot{Logs: []string{"A", "B", "C", "D"}})
	if !s.ViewingHistorical() {
		t.Error("historical pin must survive snapshot replacement")
	}

	s.SelectLive()
	if s.ViewingHistorical() {
		t.Error("SelectLive must return to live")
	}
}

func TestPinSurvivesSnapshotReplacement(t *testing.T) {
	s := NewStore()
	s.Apply(api.Snapshot{
		Logs:           []string{"A", "B", "C"},
		AgentResponses: []json.RawMessage{raw("ra"), raw("rb"), raw("rc")},
	})
	s.SelectIndex(1)

	s.Apply(api.Snapshot{
		Logs:           []string{"A", "B", "C", "D"},
		AgentResponses: []json.RawMessage{raw("ra"), raw("rb2"), raw("rc"), raw("rd")},
	})
	if got, _ := s.CurrentDisplayValue(); got != "rb2" {
		t.Errorf("pin must survive snapshot replacement, got %q", got)
	}

	// A pin whose index vanished drops back to live.
	s.SelectIndex(2)
	s.Apply(api.Snapshot{
		Logs:           []string{"A"},
		AgentResponses: []json.RawMessage{raw("only")},
	})
	if _, pinned := s.Selection(); pinned {
		t.Error("vanished index must unpin")
	}
	if got, _ := s.CurrentDisplayValue(); got != "only" {
		t.Errorf("expected live value after unpin, got %q", got)
	}
}

func TestSelectIndexOutOfRangeIgnored(t *testing.T) {
	s := NewStore()
	s.Apply(api.Snapshot{Logs: []string{"A"}})
	s.SelectIndex(5)
	s.SelectIndex(-1)
	if _, pinned := s.Selection(); pinned {
		t.Error("out-of-range selection must be ignored")
	}
}

func TestTranscriptSynthesizesRiskTurn(t *testing.T) {
	s := NewStore()
	s.Apply(api.Snapshot{
		Dialogue: []api.DialogueTurn{
			{Role: api.RoleAssistant, Text: "Did you travel recently?"},
			{Role: api.RoleUser, Text: "Yes, to Lisbon."},
		},
		LatestRiskAssessment: "Risk trending down.",
	})

	want := []api.DialogueTurn{
		{Role: api.RoleAssistant, Text: "Did you travel recently?"},
		{Role: api.RoleUser, Text: "Yes, to Lisbon."},
		{Role: api.RoleRisk, Text: "Risk trending down."},
	}
	if diff := cmp.Diff(want, s.Transcript()); diff != "" {
		t.Errorf("transcript mismatch (-want +got):\n%s", diff)
	}

	// The synthesized turn is display-only: the snapshot stays untouched.
	if len(s.Snapshot().Dialogue) != 2 {
		t.Error("snapshot dialogue must not gain the synthesized turn")
	}
}

func TestTranscriptWithoutRiskAssessment(t *testing.T) {
	s := NewStore()
	s.Apply(api.Snapshot{
		Dialogue: []api.DialogueTurn{{Role: api.RoleAssistant, Text: "Hello"}},
	})
	if got := s.Transcript(); len(got) != 1 {
		t.Errorf("expected 1 turn, got %d", len(got))
	}
}

func TestEmptyStore(t *testing.T) {
	s := NewStore()
	if _, ok := s.CurrentDisplayValue(); ok {
		t.Error("empty store must report no display value")
	}
	if s.ViewingHistorical() {
		t.Error("empty store must not report historical")
	}
}
