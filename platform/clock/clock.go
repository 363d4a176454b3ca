// Package clock provides an injectable time source. Deadline arithmetic in the
// deliveries domain depends on "now", so every component that reads the wall
// clock takes a Clock instead of calling time.Now directly.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

// Now returns the current wall-clock time in UTC.
func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always returns the same instant. For tests.
type Fixed struct {
	T time.Time
}

// Now returns the fixed instant.
func (f Fixed) Now() time.Time { return f.T }
