package service

import "time"

// Clock abstracts the wall clock so expiry decisions are deterministic in
// tests. Every expiry comparison in the core reads time through this
// interface instead of calling time.Now directly.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

// NewSystemClock returns the production clock.
func NewSystemClock() Clock {
	return SystemClock{}
}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
