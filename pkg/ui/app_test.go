package ui

import (
	"context"
	"testing"

	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/api"
	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/reconcile"
	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/status"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"customer reported unfamiliar device", 10, "customer …"},
		{"line1\nline2", 20, "line1 line2"},
		{"anything", 1, "…"},
		{"anything", 0, ""},
		{"anything", -1, ""},
		{"", 5, ""},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.n); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}

func TestTimelineCursorFollowsVanishedPin(t *testing.T) {
	store := reconcile.NewStore()
	app := New(context.Background(), Deps{Store: store, Broadcast: status.New()})

	store.Apply(api.Snapshot{Logs: []string{"A", "B", "C"}})
	store.SelectIndex(1)
	app.timelineCursor = 1

	// The next snapshot no longer has the pinned index; the store unpins
	// and the timeline marker must return to live with it.
	store.Apply(api.Snapshot{Logs: []string{"A"}})
	app.refreshSessionView(false)

	if _, pinned := store.Selection(); pinned {
		t.Fatal("store must unpin a vanished index")
	}
	if app.timelineCursor != -1 {
		t.Errorf("timelineCursor = %d, want -1 after unpin", app.timelineCursor)
	}
}

func TestTimelineCursorKeptWhilePinned(t *testing.T) {
	store := reconcile.NewStore()
	app := New(context.Background(), Deps{Store: store, Broadcast: status.New()})

	store.Apply(api.Snapshot{Logs: []string{"A", "B", "C"}})
	store.SelectIndex(1)
	app.timelineCursor = 1

	store.Apply(api.Snapshot{Logs: []string{"A", "B", "C", "D"}})
	app.refreshSessionView(false)

	if app.timelineCursor != 1 {
		t.Errorf("timelineCursor = %d, want 1 while the pin survives", app.timelineCursor)
	}
}
