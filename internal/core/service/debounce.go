package service

import "time"

// Debouncer is a single-slot timer: each Reset cancels the previously armed
// fire and starts a new quiet period, so a burst of calls produces exactly
// one fire after the last one. Not safe for concurrent use; the engine loop
// is its only caller.
type Debouncer struct {
	d     time.Duration
	timer *time.Timer
}

func NewDebouncer(d time.Duration) *Debouncer {
	t := time.NewTimer(d)
	if !t.Stop() {
		<-t.C
	}
	return &Debouncer{d: d, timer: t}
}

// C fires at most once per Reset.
func (b *Debouncer) C() <-chan time.Time {
	return b.timer.C
}

// Reset cancels any armed fire and starts a new quiet period.
func (b *Debouncer) Reset() {
	b.drain()
	b.timer.Reset(b.d)
}

// Stop cancels any armed fire. The Debouncer can be re-armed with Reset.
func (b *Debouncer) Stop() {
	b.drain()
}

func (b *Debouncer) drain() {
	if !b.timer.Stop() {
		// already fired; clear the slot unless the owner consumed it
		select {
		case <-b.timer.C:
		default:
		}
	}
}
