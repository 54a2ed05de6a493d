// Package reveal animates newly appended text one rune per tick. The engine
// is pure bookkeeping: the owning view schedules ticks (tea.Tick in the
// console) and feeds them back in. Generations take the place of interval
// timers: Set bumps the generation, so a tick scheduled for a superseded
// reveal identifies itself as stale and is ignored. At most one reveal is
// ever advancing a given Revealer.
package reveal

import "time"

// DefaultInterval is the recommended tick spacing for reveals.
const DefaultInterval = 15 * time.Millisecond

// Revealer tracks one subscriber's displayed text against the full target
// text.
type Revealer struct {
	target    []rune
	displayed int // runes of target currently shown
	gen       int
}

func New() *Revealer {
	return &Revealer{}
}

// Set updates the target text and reports whether a new reveal was started;
// the caller schedules ticks only on true. A target identical to the current
// one is a no-op: the backend re-sends full state on every frame, and an
// unchanged target must leave an in-flight reveal undisturbed rather than
// snap it to completion. A target that strictly extends the previous one
// keeps the displayed prefix and animates the suffix; anything else (shrink,
// replacement) snaps immediately with no animation.
func (r *Revealer) Set(next string) (animating bool) {
	nr := []rune(next)
	prev := r.target

	if string(nr) == string(prev) {
		return false
	}

	extends := len(nr) > len(prev) && string(nr[:len(prev)]) == string(prev)
	if !extends {
		r.target = nr
		r.displayed = len(nr)
		r.gen++
		return false
	}

	// Keep what is already on screen, reveal the rest. The generation bump
	// invalidates any tick in flight for the earlier target.
	r.target = nr
	if r.displayed > len(nr) {
		r.displayed = len(nr)
	}
	r.gen++
	return true
}

// Snap displays the target in full with no animation. Used when the view is
// pinned to a historical index and must never animate.
func (r *Revealer) Snap(text string) {
	r.target = []rune(text)
	r.displayed = len(r.target)
	r.gen++
}

// Tick advances the reveal by one rune if gen is still current. It returns
// whether the reveal is complete; a stale gen reports done so the caller
// stops scheduling.
func (r *Revealer) Tick(gen int) (done bool) {
	if gen != r.gen {
		return true
	}
	if r.displayed < len(r.target) {
		r.displayed++
	}
	return r.displayed >= len(r.target)
}

// Displayed returns the text currently on screen: always a prefix of the
// target.
func (r *Revealer) Displayed() string {
	return string(r.target[:r.displayed])
}

// Generation identifies the current reveal; ticks must echo it back.
func (r *Revealer) Generation() int { return r.gen }

// Revealing reports whether more ticks are needed.
func (r *Revealer) Revealing() bool {
	return r.displayed < len(r.target)
}
