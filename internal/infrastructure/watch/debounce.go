package watch

import (
	"sync"
	"time"
)

// debounce coalesces bursts of triggers into one callback after a quiet
// window. Saving a file typically produces several fsnotify events; the
// dashboard should recompute once.
type debounce struct {
	window   time.Duration
	callback func()

	mu    sync.Mutex
	timer *time.Timer
}

func newDebounce(window time.Duration, callback func()) *debounce {
	return &debounce{window: window, callback: callback}
}

// trigger resets the quiet window; the callback fires once it elapses with
// no further triggers.
func (d *debounce) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.callback)
}

// stop cancels any pending callback.
func (d *debounce) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
}
