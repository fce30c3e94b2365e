package debounce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests advance time without sleeping.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestGate(window time.Duration) (*Gate, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	g := NewGate(window)
	g.now = func() time.Time { return clock.now }
	return g, clock
}

func TestFirstTriggerPasses(t *testing.T) {
	g, _ := newTestGate(DefaultWindow)
	assert.True(t, g.Allow())
}

func TestTriggerWithinWindowIsSuppressed(t *testing.T) {
	g, clock := newTestGate(DefaultWindow)

	assert.True(t, g.Allow())
	clock.advance(50 * time.Millisecond)
	assert.False(t, g.Allow(), "second trigger 50ms later must be suppressed")
}

func TestTriggerAfterWindowPasses(t *testing.T) {
	g, clock := newTestGate(DefaultWindow)

	assert.True(t, g.Allow())
	clock.advance(250 * time.Millisecond)
	assert.True(t, g.Allow(), "second trigger 250ms later must dispatch")
}

func TestSuppressedTriggerIsNotRescheduled(t *testing.T) {
	g, clock := newTestGate(DefaultWindow)

	assert.True(t, g.Allow())
	clock.advance(50 * time.Millisecond)
	assert.False(t, g.Allow())

	// The suppressed trigger did not move the dispatch time: the window
	// still counts from the first dispatch.
	clock.advance(160 * time.Millisecond)
	assert.True(t, g.Allow())
}

func TestExactWindowBoundaryIsSuppressed(t *testing.T) {
	g, clock := newTestGate(DefaultWindow)

	assert.True(t, g.Allow())
	clock.advance(DefaultWindow)
	assert.False(t, g.Allow(), "elapsed must exceed the window, not merely reach it")
}

func TestReset(t *testing.T) {
	g, clock := newTestGate(DefaultWindow)

	assert.True(t, g.Allow())
	clock.advance(10 * time.Millisecond)
	g.Reset()
	assert.True(t, g.Allow())
}

func TestZeroWindowPassesEverything(t *testing.T) {
	g, clock := newTestGate(0)

	assert.True(t, g.Allow())
	clock.advance(time.Nanosecond)
	assert.True(t, g.Allow())
}
