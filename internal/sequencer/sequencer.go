package sequencer

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/kode4food/kubetour/pkg/api"
	"github.com/kode4food/kubetour/pkg/util"
)

type (
	// Sequencer owns a cursor over immutable steps and at most one pending
	// auto-advance timer
	Sequencer struct {
		steps     []api.Step
		bounds    Bounds
		delay     time.Duration
		makeTimer TimerConstructor
		onChange  ChangeFunc

		mu     sync.Mutex
		state  api.SequencerState
		timer  Timer
		epoch  uint64
		closed bool
	}

	// Config supplies the step data and timing for a Sequencer
	Config struct {
		Steps     []api.Step
		Delay     time.Duration
		Unstarted bool
		NewTimer  TimerConstructor
		OnChange  ChangeFunc
	}

	// ChangeFunc observes every state-changing transition. It is called
	// outside the sequencer's lock
	ChangeFunc func(api.SequencerState)
)

var (
	ErrNoSteps         = errors.New("sequencer requires at least one step")
	ErrInvalidDelay    = errors.New("sequencer delay must be positive")
	ErrSequencerClosed = errors.New("sequencer closed")
)

// New creates a Sequencer positioned at its initial index and paused
func New(cfg Config) (*Sequencer, error) {
	if len(cfg.Steps) == 0 {
		return nil, ErrNoSteps
	}
	if cfg.Delay <= 0 {
		return nil, ErrInvalidDelay
	}
	makeTimer := cfg.NewTimer
	if makeTimer == nil {
		makeTimer = NewTimer
	}
	b := Bounds{Count: len(cfg.Steps), Unstarted: cfg.Unstarted}
	return &Sequencer{
		steps:     api.Indexed(cfg.Steps),
		bounds:    b,
		delay:     cfg.Delay,
		makeTimer: makeTimer,
		onChange:  cfg.OnChange,
		state:     b.Initial(),
	}, nil
}

// FromTour creates a Sequencer configured by a tour definition
func FromTour(
	t *api.Tour, makeTimer TimerConstructor, onChange ChangeFunc,
) (*Sequencer, error) {
	return New(Config{
		Steps:     t.Steps,
		Delay:     t.Delay(),
		Unstarted: t.Unstarted,
		NewTimer:  makeTimer,
		OnChange:  onChange,
	})
}

// Start begins auto-advance. An unstarted sequencer moves to index 0; at the
// terminal index playing is not entered
func (s *Sequencer) Start() error {
	return s.Dispatch(Action{Type: api.ActionStart})
}

// Pause stops auto-advance without moving the cursor
func (s *Sequencer) Pause() error {
	return s.Dispatch(Action{Type: api.ActionPause})
}

// Next pauses and advances the cursor by one, clamped to the last step
func (s *Sequencer) Next() error {
	return s.Dispatch(Action{Type: api.ActionNext})
}

// Prev pauses and moves the cursor back by one, clamped to the first step
func (s *Sequencer) Prev() error {
	return s.Dispatch(Action{Type: api.ActionPrev})
}

// Reset pauses and returns the cursor to its initial index
func (s *Sequencer) Reset() error {
	return s.Dispatch(Action{Type: api.ActionReset})
}

// JumpTo pauses and moves the cursor to step i
func (s *Sequencer) JumpTo(i int) error {
	return s.Dispatch(Action{Type: api.ActionJump, Index: i})
}

// Dispatch is the single update entry point: it reduces the action, bumps
// the version on change, and reconciles the auto-advance timer
func (s *Sequencer) Dispatch(act Action) error {
	if act.Type == api.ActionTick {
		return ErrUnknownAction
	}
	st, changed, err := s.apply(act, 0)
	if err != nil {
		return err
	}
	if changed {
		s.notify(st)
	}
	return nil
}

// State returns the current cursor state
func (s *Sequencer) State() api.SequencerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the current step, or false while unstarted
func (s *Sequencer) Current() (api.Step, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.IsStarted() {
		return api.Step{}, false
	}
	return s.stepAt(s.state.Index), true
}

// Active returns the tags to highlight for the current step
func (s *Sequencer) Active() util.Set[api.ComponentID] {
	st, ok := s.Current()
	if !ok {
		return util.Set[api.ComponentID]{}
	}
	return st.Tags()
}

// Steps returns a copy of the step list
func (s *Sequencer) Steps() []api.Step {
	return api.Indexed(s.steps)
}

// Len returns the number of steps
func (s *Sequencer) Len() int {
	return len(s.steps)
}

// Delay returns the auto-advance interval
func (s *Sequencer) Delay() time.Duration {
	return s.delay
}

// Close cancels any pending timer. Later operations fail and late timer
// fires are ignored. Stopping playback counts as a change and is notified
func (s *Sequencer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancelTimer()
	changed := s.state.Playing
	if changed {
		s.state.Playing = false
		s.state.Version++
	}
	st := s.state
	s.mu.Unlock()

	if changed {
		s.notify(st)
	}
}

// IsClosed reports whether Close has been called
func (s *Sequencer) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Sequencer) tick(epoch uint64) {
	st, changed, err := s.apply(Action{Type: api.ActionTick}, epoch)
	if err == nil && changed {
		s.notify(st)
	}
}

// apply runs one transition under the lock. A non-zero epoch marks a timer
// fire, which is dropped unless it belongs to the currently armed timer
func (s *Sequencer) apply(
	act Action, epoch uint64,
) (api.SequencerState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return s.state, false, ErrSequencerClosed
	}
	if epoch != 0 {
		if epoch != s.epoch || s.timer == nil {
			return s.state, false, nil
		}
		s.timer = nil
	}

	prev := s.state
	next, err := Reduce(s.bounds, prev, act)
	if err != nil {
		return prev, false, err
	}

	switch {
	case !next.Playing:
		s.cancelTimer()
	case act.Type == api.ActionStart && prev.Playing && s.timer != nil:
		// already playing; keep the pending timer
	default:
		s.armTimer()
	}

	if next.Index == prev.Index && next.Playing == prev.Playing {
		return prev, false, nil
	}
	next.Version = prev.Version + 1
	s.state = next
	return next, true, nil
}

// armTimer replaces any pending timer; caller must hold s.mu
func (s *Sequencer) armTimer() {
	s.cancelTimer()
	epoch := s.epoch
	s.timer = s.makeTimer(s.delay, func() {
		s.tick(epoch)
	})
}

// cancelTimer stops the pending timer and invalidates its epoch; caller must
// hold s.mu
func (s *Sequencer) cancelTimer() {
	s.epoch++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Sequencer) stepAt(i int) api.Step {
	st := s.steps[i]
	st.ActiveTags = slices.Clone(st.ActiveTags)
	return st
}

func (s *Sequencer) notify(st api.SequencerState) {
	if s.onChange != nil {
		s.onChange(st)
	}
}
