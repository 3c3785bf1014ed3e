// Package debounce provides a cancellable trailing-edge timer.
package debounce

import (
	"sync"
	"time"
)

// Stopper cancels a scheduled callback.
type Stopper interface {
	Stop() bool
}

// Clock schedules callbacks. The real clock uses time.AfterFunc.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Stopper
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// RealClock is the wall-clock implementation.
var RealClock Clock = realClock{}

// Option configures a Timer.
type Option func(*Timer)

// WithClock injects a clock, used by tests to drive time manually.
func WithClock(clock Clock) Option {
	return func(t *Timer) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// Timer runs the most recently armed callback once delay has passed without
// another Arm. A generation counter drops callbacks whose Stop lost the race
// with the clock.
type Timer struct {
	mu      sync.Mutex
	clock   Clock
	delay   time.Duration
	pending Stopper
	gen     uint64
	armed   bool
	stopped bool
}

// New returns a timer with the given quiet period.
func New(delay time.Duration, opts ...Option) *Timer {
	t := &Timer{clock: RealClock, delay: delay}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// Delay reports the quiet period.
func (t *Timer) Delay() time.Duration {
	return t.delay
}

// Arm cancels any pending callback and schedules fn. It reports false once
// the timer has been stopped.
func (t *Timer) Arm(fn func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return false
	}
	t.cancelLocked()
	t.gen++
	gen := t.gen
	t.armed = true
	t.pending = t.clock.AfterFunc(t.delay, func() {
		t.mu.Lock()
		if t.gen != gen || !t.armed {
			t.mu.Unlock()
			return
		}
		t.armed = false
		t.pending = nil
		t.mu.Unlock()
		fn()
	})
	return true
}

// Cancel drops the pending callback, reporting whether one was pending.
func (t *Timer) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelLocked()
}

// Stop cancels the pending callback and refuses further Arm calls.
func (t *Timer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	return t.cancelLocked()
}

// Pending reports whether a callback is scheduled.
func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.armed
}

func (t *Timer) cancelLocked() bool {
	was := t.armed
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	t.armed = false
	t.gen++
	return was
}
