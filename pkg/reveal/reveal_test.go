package reveal

import (
	"strings"
	"testing"
)

func TestExtensionRevealsPerTick(t *testing.T) {
	r := New()
	r.Snap("abc")

	if animating := r.Set("abcde"); !animating {
		t.Fatal("strict extension must animate")
	}
	if got := r.Displayed(); got != "abc" {
		t.Errorf("before any tick: got %q, want %q", got, "abc")
	}

	gen := r.Generation()
	if done := r.Tick(gen); done {
		t.Error("one tick of two must not complete")
	}
	if got := r.Displayed(); got != "abcd" {
		t.Errorf("after tick 1: got %q, want %q", got, "abcd")
	}
	if done := r.Tick(gen); !done {
		t.Error("second tick must complete")
	}
	if got := r.Displayed(); got != "abcde" {
		t.Errorf("after tick 2: got %q, want %q", got, "abcde")
	}
}

func TestDisplayedAlwaysPrefixOfTarget(t *testing.T) {
	r := New()
	r.Set("hello world, this is a streaming stage output")
	gen := r.Generation()
	for !r.Tick(gen) {
		if !strings.HasPrefix("hello world, this is a streaming stage output", r.Displayed()) {
			t.Fatalf("displayed %q is not a prefix of the target", r.Displayed())
		}
	}
}

func TestShrinkSnapsImmediately(t *testing.T) {
	r := New()
	r.Snap("abcde")

	if animating := r.Set("ab"); animating {
		t.Error("shrink must not animate")
	}
	if got := r.Displayed(); got != "ab" {
		t.Errorf("shrink: got %q, want %q", got, "ab")
	}
}

func TestEqualSnapsImmediately(t *testing.T) {
	r := New()
	r.Snap("abc")
	if animating := r.Set("abc"); animating {
		t.Error("identical text must not animate")
	}
	if got := r.Displayed(); got != "abc" {
		t.Errorf("got %q", got)
	}
}

func TestRedeliveredTargetKeepsReveal(t *testing.T) {
	r := New()
	r.Snap("abc")
	if !r.Set("abcde") {
		t.Fatal("strict extension must animate")
	}
	gen := r.Generation()
	if done := r.Tick(gen); done {
		t.Fatal("one tick of two must not complete")
	}

	// The backend re-sends full state on every frame. An unchanged target
	// must not finish the reveal early nor start a second tick chain.
	if r.Set("abcde") {
		t.Error("re-delivered target must not start a new reveal")
	}
	if got := r.Displayed(); got != "abcd" {
		t.Errorf("after re-delivery: got %q, want %q", got, "abcd")
	}
	if r.Generation() != gen {
		t.Error("re-delivery must not invalidate the in-flight tick chain")
	}

	if done := r.Tick(gen); !done {
		t.Error("final tick must complete the reveal")
	}
	if got := r.Displayed(); got != "abcde" {
		t.Errorf("after final tick: got %q, want %q", got, "abcde")
	}
}

func TestReplacementSnapsImmediately(t *testing.T) {
	r := New()
	r.Snap("abc")
	// Same length growth but not a prefix extension: snap, no animation.
	if animating := r.Set("xyz123"); animating {
		t.Error("non-prefix replacement must not animate")
	}
	if got := r.Displayed(); got != "xyz123" {
		t.Errorf("got %q", got)
	}
}

func TestStaleGenerationIgnored(t *testing.T) {
	r := New()
	r.Set("abc")
	stale := r.Generation()
	r.Tick(stale)

	// A new target supersedes the in-flight reveal; the old generation's
	// ticks must not advance anything anymore.
	r.Set("abcdef")
	current := r.Generation()
	before := r.Displayed()
	if done := r.Tick(stale); !done {
		t.Error("stale generation must report done")
	}
	if r.Displayed() != before {
		t.Error("stale tick must not advance the display")
	}

	// Only one reveal advances: the current generation.
	for !r.Tick(current) {
	}
	if got := r.Displayed(); got != "abcdef" {
		t.Errorf("got %q, want %q", got, "abcdef")
	}
}

func TestMidRevealExtensionKeepsPrefix(t *testing.T) {
	r := New()
	r.Set("abcd")
	gen := r.Generation()
	r.Tick(gen) // displayed "a"

	if animating := r.Set("abcdef"); !animating {
		t.Fatal("extension during reveal must keep animating")
	}
	if got := r.Displayed(); got != "a" {
		t.Errorf("displayed prefix must be kept, got %q", got)
	}
	gen = r.Generation()
	for !r.Tick(gen) {
	}
	if got := r.Displayed(); got != "abcdef" {
		t.Errorf("got %q", got)
	}
}

func TestSnapBypassesAnimation(t *testing.T) {
	r := New()
	r.Set("abc")
	r.Snap("completely different historical output")
	if r.Revealing() {
		t.Error("snap must leave nothing to reveal")
	}
	if got := r.Displayed(); got != "completely different historical output" {
		t.Errorf("got %q", got)
	}
}

func TestUnicodeRevealByRune(t *testing.T) {
	r := New()
	r.Snap("risk: ")
	r.Set("risk: 高い")
	gen := r.Generation()
	r.Tick(gen)
	if got := r.Displayed(); got != "risk: 高" {
		t.Errorf("rune-wise reveal: got %q", got)
	}
}
