package sequencer

import "time"

type (
	// Timer is a pending single-shot auto-advance
	Timer interface {
		Stop() bool
	}

	// TimerConstructor arms a timer that calls fire once after delay
	TimerConstructor func(delay time.Duration, fire func()) Timer
)

// NewTimer builds the default system-backed timer
func NewTimer(delay time.Duration, fire func()) Timer {
	return time.AfterFunc(delay, fire)
}
