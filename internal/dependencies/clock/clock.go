package clock

import "time"

// Clock provides time operations that can be mocked for testing
type Clock interface {
	// Now returns the current server time in UTC
	Now() time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current UTC time. Timestamps persisted by the stores
// (created_at, updated_at, session expiry) are always UTC.
func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}
