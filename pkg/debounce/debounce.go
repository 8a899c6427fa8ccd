// Package debounce provides a keyed trailing-edge debouncer: rapid
// repeated triggers for the same key collapse into one delayed call,
// cancelling superseded ones.
package debounce

import (
	"sync"
	"time"
)

// Debouncer coalesces triggers per key. Only the most recently
// triggered function for a key can run; superseded timers that fire
// late are discarded by a per-key generation counter.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*task
	gens    map[string]uint64
	stopped bool
}

type task struct {
	timer *time.Timer
	gen   uint64
	fn    func()
}

// New creates a debouncer with the given quiet period
func New(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*task),
		gens:    make(map[string]uint64),
	}
}

// Trigger schedules fn to run after the quiet period, replacing any
// pending function for the same key.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
	}

	d.gens[key]++
	gen := d.gens[key]

	t := &task{gen: gen, fn: fn}
	t.timer = time.AfterFunc(d.delay, func() {
		d.fire(key, gen)
	})
	d.pending[key] = t
}

func (d *Debouncer) fire(key string, gen uint64) {
	d.mu.Lock()
	if d.stopped || d.gens[key] != gen {
		d.mu.Unlock()
		return
	}
	t := d.pending[key]
	delete(d.pending, key)
	d.mu.Unlock()

	if t != nil {
		t.fn()
	}
}

// Flush runs the pending function for a key immediately, if any
func (d *Debouncer) Flush(key string) {
	d.mu.Lock()
	t, ok := d.pending[key]
	if ok {
		t.timer.Stop()
		d.gens[key]++
		delete(d.pending, key)
	}
	d.mu.Unlock()

	if ok {
		t.fn()
	}
}

// Cancel drops the pending function for a key without running it
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.pending[key]; ok {
		t.timer.Stop()
		d.gens[key]++
		delete(d.pending, key)
	}
}

// Stop cancels everything; the debouncer is unusable afterwards
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for key, t := range d.pending {
		t.timer.Stop()
		delete(d.pending, key)
	}
}
