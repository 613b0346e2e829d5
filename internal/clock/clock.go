package clock

import (
	"sync"
	"time"
)

// Clock allows injecting time into registries and services.
type Clock interface {
	Now() time.Time
}

// System is a clock backed by time.Now.
type System struct{}

// NewSystem returns a clock backed by time.Now.
func NewSystem() System {
	return System{}
}

// Now returns the current UTC time without the monotonic reading.
func (System) Now() time.Time {
	return time.Now().UTC().Round(0)
}

// Manual is a clock that only moves when told to.
// It never goes backwards: Set with an earlier instant is ignored.
type Manual struct {
	// now is the instant returned by Now.
	now time.Time
	// mu protects now.
	mu sync.Mutex
}

// NewManual returns a manual clock positioned at start.
func NewManual(start time.Time) *Manual {
	return &Manual{
		now: start.UTC(),
	}
}

// Now returns the current instant of the clock.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.now
}

// Set moves the clock to t unless t is before the current instant.
// It reports whether the clock moved.
func (m *Manual) Set(t time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	t = t.UTC()
	if t.Before(m.now) {
		return false
	}

	m.now = t

	return true
}

// Advance moves the clock forward by d. Negative durations are ignored.
func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d > 0 {
		m.now = m.now.Add(d)
	}

	return m.now
}
