package timeline

import (
	"sync"
	"time"
)

// Debouncer delays a call until triggers have been quiet for a full delay.
// Each Trigger replaces the pending function and restarts the wait.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
	fn    func()
	gen   uint64
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn after the quiet period. fn runs on its own goroutine.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.fn = fn
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		f := d.fn
		d.fn = nil
		d.mu.Unlock()
		if f != nil {
			f()
		}
	})
}

// Pending reports whether a call is waiting.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fn != nil
}

// Stop cancels any pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.fn = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
