// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package reclaim

import (
	"sync"
	"time"
)

// Debouncer batches submissions behind an inactivity window: the flush fires
// once the window elapses with no new submission. Submissions that arrive
// while a flush is running open the next batch; they never join the one
// being flushed.
type Debouncer struct {
	window time.Duration
	flush  func([]ImportEvent)

	mu         sync.Mutex
	buffer     []ImportEvent
	timer      *time.Timer
	lastSubmit time.Time

	// flushMu serializes flushes so two quiet periods can never overlap.
	flushMu sync.Mutex

	now func() time.Time
}

// NewDebouncer returns a debouncer that calls flush with each drained batch.
func NewDebouncer(window time.Duration, flush func([]ImportEvent)) *Debouncer {
	return &Debouncer{
		window: window,
		flush:  flush,
		now:    time.Now,
	}
}

// Submit buffers events and restarts the inactivity window.
func (d *Debouncer) Submit(events ...ImportEvent) {
	if len(events) == 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.buffer = append(d.buffer, events...)
	d.lastSubmit = d.now()

	if d.timer == nil {
		d.timer = time.AfterFunc(d.window, d.fire)
	} else {
		d.timer.Reset(d.window)
	}
}

// fire runs when the timer expires. If a submission slipped in after the
// timer was armed, it re-arms for the remaining window instead of flushing.
func (d *Debouncer) fire() {
	d.mu.Lock()
	elapsed := d.now().Sub(d.lastSubmit)
	if elapsed < d.window {
		d.timer.Reset(d.window - elapsed)
		d.mu.Unlock()
		return
	}

	batch := d.buffer
	d.buffer = nil
	d.timer = nil
	d.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	d.flushMu.Lock()
	defer d.flushMu.Unlock()
	d.flush(batch)
}

// Flush drains any pending batch immediately, for shutdown.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	batch := d.buffer
	d.buffer = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	d.flushMu.Lock()
	defer d.flushMu.Unlock()
	d.flush(batch)
}
