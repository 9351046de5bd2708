package testfixtures

import (
	"sync"
	"time"

	"github.com/example/campus-booking/internal/recurrence"
)

// Clock is a manually driven time source. It starts on the canonical
// fixture Monday (ReferenceTime) so bookings created through it land in
// the same week the seeded fixtures use.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock pinned to ReferenceTime.
func NewClock() *Clock {
	return &Clock{now: ReferenceTime()}
}

// NewClockAt returns a clock pinned to the given instant. A zero start
// falls back to ReferenceTime.
func NewClockAt(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{now: start}
}

// Now returns the instant the clock currently points at.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NowFunc exposes Now in the shape the services take as a dependency.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set pins the clock to an exact instant.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves the clock forward and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	c.now = c.now.Add(d)
	updated := c.now
	c.mu.Unlock()
	return updated
}

// AdvanceDays moves the clock forward by whole calendar days and returns
// the new booking date, normalized to midnight ICT like stored dates are.
func (c *Clock) AdvanceDays(days int) time.Time {
	c.mu.Lock()
	c.now = c.now.AddDate(0, 0, days)
	updated := c.now
	c.mu.Unlock()
	return recurrence.DateOf(updated)
}
