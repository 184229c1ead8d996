package schedule

import (
	"sync"
	"time"
)

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs f after d. Tests inject a manual implementation.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// System schedules on the runtime timer.
type System struct{}

// AfterFunc implements Scheduler.
func (System) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer holds one pending value and delivers only the latest after the delay.
type Debouncer[T any] struct {
	mu      sync.Mutex
	sched   Scheduler
	delay   time.Duration
	fire    func(T)
	value   T
	pending bool
	timer   Timer
	gen     uint64
}

// NewDebouncer returns a debouncer calling fire with the last pushed value.
func NewDebouncer[T any](sched Scheduler, delay time.Duration, fire func(T)) *Debouncer[T] {
	if sched == nil {
		sched = System{}
	}
	return &Debouncer[T]{sched: sched, delay: delay, fire: fire}
}

// Push replaces the pending value and restarts the delay.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.value = v
	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.sched.AfterFunc(d.delay, func() { d.fireIfCurrent(gen) })
}

// Flush delivers the pending value immediately. It reports whether anything was pending.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return false
	}
	v := d.take()
	d.mu.Unlock()
	d.fire(v)
	return true
}

// Stop drops the pending value without delivering it.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.take()
}

// Pending reports whether a value is waiting for the timer.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer[T]) fireIfCurrent(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.pending {
		d.mu.Unlock()
		return
	}
	v := d.take()
	d.mu.Unlock()
	d.fire(v)
}

// take must be called with mu held.
func (d *Debouncer[T]) take() T {
	v := d.value
	var zero T
	d.value = zero
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	return v
}
