package testutil

import (
	"sync"
	"time"
)

// Clock is a settable wall clock for tests.
//
// Pass clock.Now wherever production code takes a func() time.Time. Time only
// moves when the test calls Advance or Set, so timestamps written to the store
// are reproducible.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// Epoch is the default start time: 2025-10-18T09:00:00Z.
var Epoch = time.Date(2025, 10, 18, 9, 0, 0, 0, time.UTC)

// NewClock creates a clock starting at start. A zero start means Epoch.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = Epoch
	}
	return &Clock{now: start}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Set jumps the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
