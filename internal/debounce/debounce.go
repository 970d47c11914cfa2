// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package debounce delays a function call until its input has been quiet for a while.
package debounce

import (
	"sync"
	"time"
)

// DefaultWindow is the quiet period used when no positive window is given
const DefaultWindow = time.Second

// Debouncer collapses bursts of calls into a single call of fn with the latest value.
// It does not cancel work that fn already started.
type Debouncer[T any] struct {
	window time.Duration
	fn     func(T)

	mu      sync.Mutex
	timer   *time.Timer
	value   T
	pending bool
	gen     uint64
	running int
	idle    *sync.Cond
}

// New returns a Debouncer that calls fn once window has passed without a new call.
func New[T any](window time.Duration, fn func(T)) *Debouncer[T] {
	if window <= 0 {
		window = DefaultWindow
	}
	d := &Debouncer[T]{window: window, fn: fn}
	d.idle = sync.NewCond(&d.mu)
	return d
}

// Call stores value as the latest value and restarts the quiet period.
func (d *Debouncer[T]) Call(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.value = value
	d.pending = true
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() { d.fire(gen) })
}

// Flush runs fn with the pending value right away, if there is one.
func (d *Debouncer[T]) Flush() {
	d.run(0)
}

// Stop drops the pending value without calling fn. A call of fn that already started is
// not affected, use Wait for it.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clear()
}

// Wait blocks until no call of fn is in progress. It must not be called from fn.
func (d *Debouncer[T]) Wait() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.running > 0 {
		d.idle.Wait()
	}
}

// Pending reports whether a call is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.run(gen)
}

func (d *Debouncer[T]) run(gen uint64) {
	value, ok := d.take(gen)
	if !ok {
		return
	}
	defer d.done()
	d.fn(value)
}

// take clears the slot and returns the pending value, counting the call as running. A
// non-zero gen only matches the call that scheduled it, so a timer that fires late for a
// replaced value is a no-op.
func (d *Debouncer[T]) take(gen uint64) (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	value := d.value
	if !d.pending || (gen != 0 && gen != d.gen) {
		var zero T
		return zero, false
	}
	d.clear()
	d.running++
	return value, true
}

func (d *Debouncer[T]) done() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.running--
	if d.running == 0 {
		d.idle.Broadcast()
	}
}

// clear drops the pending value and its timer. d.mu must be held.
func (d *Debouncer[T]) clear() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	var zero T
	d.value = zero
	d.pending = false
}
