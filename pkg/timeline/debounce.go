package timeline

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid repeated triggers into one deferred action.
// A new Schedule cancels the pending one, so only the last scheduled
// function runs, delay after the last call.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

// NewDebouncer creates a debouncer with the given settle delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule arms the debouncer with fn, replacing any pending action.
// fn runs on a timer goroutine once the delay elapses without another
// Schedule call.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.timer == t {
			d.timer = nil
		}
		d.mu.Unlock()
		fn()
	})
	d.timer = t
}

// Stop cancels any pending action. It does not wait for a running one.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether an action is currently scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
