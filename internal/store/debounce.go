package store

import (
	"sync"
	"time"

	"github.com/amholt/bravely/internal/models"
)

// debouncer coalesces rapid writes into one. Each schedule call
// replaces the pending payload and restarts the quiet-period timer, so
// the write that eventually fires always carries the latest state it
// was given, never a stale earlier one.
type debouncer struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending *models.PersistedState
}

// schedule arms (or re-arms) the timer. fire receives the payload of
// the most recent schedule call before the quiet period elapsed.
func (d *debouncer) schedule(state models.PersistedState, delay time.Duration, fire func(models.PersistedState)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = &state
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		p := d.pending
		d.pending = nil
		d.timer = nil
		d.mu.Unlock()
		if p != nil {
			fire(*p)
		}
	})
}

// cancel drops the pending write without firing it.
func (d *debouncer) cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
}
