package server

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// connState tracks the push-channel lifecycle:
// connecting -> open -> {reconnecting -> open}* -> closed.
type connState int32

const (
	stateConnecting connState = iota
	stateOpen
	stateReconnecting
	stateClosed
)

func (s connState) String() string {
	switch s {
	case stateConnecting:
		return "connecting"
	case stateOpen:
		return "open"
	case stateReconnecting:
		return "reconnecting"
	case stateClosed:
		return "closed"
	}
	return "unknown"
}

// reconnector drives the backoff schedule for a dropped push channel: the
// delay starts at a small fixed value and doubles per attempt until a hard
// attempt cap. A successful reconnect resets the schedule.
type reconnector struct {
	clock       clockwork.Clock
	base        time.Duration
	maxAttempts int

	attempt int
	delay   time.Duration
}

func newReconnector(clock clockwork.Clock, base time.Duration, maxAttempts int) *reconnector {
	r := &reconnector{clock: clock, base: base, maxAttempts: maxAttempts}
	r.reset()
	return r
}

// next returns the delay to wait before the next reconnect attempt, or
// ok=false once the attempt cap is exhausted.
func (r *reconnector) next() (time.Duration, bool) {
	if r.attempt >= r.maxAttempts {
		return 0, false
	}
	r.attempt++
	delay := r.delay
	r.delay *= 2
	return delay, true
}

// reset restores the schedule after a successful reconnect.
func (r *reconnector) reset() {
	r.attempt = 0
	r.delay = r.base
}

// after exposes the clock for the pump's timed waits.
func (r *reconnector) after(delay time.Duration) <-chan time.Time {
	return r.clock.After(delay)
}
