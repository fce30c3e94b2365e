// Package debounce implements a minimum-interval gate. This is not a
// trailing-edge debounce: a suppressed trigger is dropped outright, never
// rescheduled.
package debounce

import (
	"sync"
	"time"
)

// DefaultWindow matches the search debounce interval of the UI layer.
const DefaultWindow = 200 * time.Millisecond

// Gate suppresses triggers arriving within the window of the last dispatch.
type Gate struct {
	mu     sync.Mutex
	window time.Duration
	last   time.Time
	now    func() time.Time
}

// NewGate returns a gate with the given window. A zero window means every
// trigger passes.
func NewGate(window time.Duration) *Gate {
	return &Gate{window: window, now: time.Now}
}

// Allow reports whether a trigger should be dispatched now. The first
// trigger always passes; later ones pass only when more than the window has
// elapsed since the last dispatch. Passing records a new dispatch time.
func (g *Gate) Allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if g.window > 0 && !g.last.IsZero() && now.Sub(g.last) <= g.window {
		return false
	}
	g.last = now
	return true
}

// Reset clears the last dispatch time so the next trigger passes.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = time.Time{}
}
