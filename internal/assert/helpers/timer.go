package helpers

import (
	"sync"
	"time"

	"github.com/kode4food/kubetour/internal/sequencer"
)

type (
	// FakeTimers records every timer a sequencer arms so tests can fire
	// them deterministically
	FakeTimers struct {
		mu     sync.Mutex
		timers []*FakeTimer
	}

	// FakeTimer is a manually fired sequencer.Timer
	FakeTimer struct {
		Delay   time.Duration
		fire    func()
		mu      sync.Mutex
		stopped bool
		fired   bool
	}
)

// NewFakeTimers creates an empty fake timer factory
func NewFakeTimers() *FakeTimers {
	return &FakeTimers{}
}

// NewTimer satisfies sequencer.TimerConstructor
func (f *FakeTimers) NewTimer(
	delay time.Duration, fire func(),
) sequencer.Timer {
	t := &FakeTimer{Delay: delay, fire: fire}
	f.mu.Lock()
	f.timers = append(f.timers, t)
	f.mu.Unlock()
	return t
}

// Created returns how many timers have been armed
func (f *FakeTimers) Created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.timers)
}

// Last returns the most recently armed timer, or nil
func (f *FakeTimers) Last() *FakeTimer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.timers) == 0 {
		return nil
	}
	return f.timers[len(f.timers)-1]
}

// Pending returns the armed timers that were neither stopped nor fired
func (f *FakeTimers) Pending() []*FakeTimer {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res []*FakeTimer
	for _, t := range f.timers {
		if t.IsPending() {
			res = append(res, t)
		}
	}
	return res
}

// FirePending fires the most recent pending timer and reports whether one
// existed
func (f *FakeTimers) FirePending() bool {
	pending := f.Pending()
	if len(pending) == 0 {
		return false
	}
	pending[len(pending)-1].Fire()
	return true
}

// FireAll keeps firing pending timers until none remain, returning how many
// fired. It stops after limit fires to guard against runaway rearming
func (f *FakeTimers) FireAll(limit int) int {
	n := 0
	for n < limit && f.FirePending() {
		n++
	}
	return n
}

// Stop satisfies sequencer.Timer
func (t *FakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	wasPending := !t.stopped && !t.fired
	t.stopped = true
	return wasPending
}

// Fire runs the timer callback unless it was stopped or already fired
func (t *FakeTimer) Fire() {
	t.mu.Lock()
	if t.stopped || t.fired {
		t.mu.Unlock()
		return
	}
	t.fired = true
	t.mu.Unlock()
	t.fire()
}

// ForceFire runs the callback even after Stop, simulating a timer whose
// expiry raced with its cancellation
func (t *FakeTimer) ForceFire() {
	t.mu.Lock()
	t.fired = true
	t.mu.Unlock()
	t.fire()
}

// IsPending reports whether the timer is armed and has not run
func (t *FakeTimer) IsPending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.stopped && !t.fired
}

// IsStopped reports whether Stop was called
func (t *FakeTimer) IsStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
