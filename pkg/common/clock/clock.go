// Package clock abstracts the time source and the timer facility so that
// time-driven components can run against a virtual clock in tests.
package clock

import "time"

// Timer is a handle to a callback scheduled with AfterFunc.
type Timer interface {
	// Stop prevents the callback from running. It returns false if the
	// callback already ran or the timer was already stopped.
	Stop() bool
}

// Clock provides the current time and schedules callbacks.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc calls f in its own goroutine once d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
}

// System implements Clock using the runtime clock and timers.
type System struct{}

// Now returns the current system time.
func (System) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules f with time.AfterFunc.
func (System) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
