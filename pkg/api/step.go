package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/kode4food/kubetour/pkg/util"
)

type (
	// Step is one entry of an ordered tour. ActiveTags names the diagram
	// elements highlighted while the step is current
	Step struct {
		Label       string        `json:"label" yaml:"label"`
		Description string        `json:"description" yaml:"description"`
		ActiveTags  []ComponentID `json:"active_tags" yaml:"active_tags"`
		Index       int           `json:"index" yaml:"-"`
	}

	// Tour configures one sequencer family: its steps, auto-advance delay and
	// whether it begins at the unstarted sentinel
	Tour struct {
		ID          TourID `json:"id" yaml:"id"`
		Title       string `json:"title" yaml:"title"`
		Description string `json:"description" yaml:"description"`
		Steps       []Step `json:"steps" yaml:"steps"`
		DelayMs     int64  `json:"delay_ms" yaml:"delay_ms"`
		Unstarted   bool   `json:"unstarted" yaml:"unstarted"`
	}

	// TourDigest summarizes a tour for listings
	TourDigest struct {
		ID        TourID `json:"id"`
		Title     string `json:"title"`
		StepCount int    `json:"step_count"`
		DelayMs   int64  `json:"delay_ms"`
		Unstarted bool   `json:"unstarted"`
	}
)

// Unstarted is the sequencer index before an unstarted tour is first played
const Unstarted = -1

var (
	ErrTourIDEmpty    = errors.New("tour ID empty")
	ErrTourIDInvalid  = errors.New("tour ID invalid")
	ErrTourTitleEmpty = errors.New("tour title empty")
	ErrTourNoSteps    = errors.New("tour has no steps")
	ErrTourDelay      = errors.New("tour delay_ms must be positive")
	ErrStepLabelEmpty = errors.New("step label empty")
	ErrStepTagInvalid = errors.New("step active tag invalid")
	ErrStepIndexWrong = errors.New("step index does not match position")
	ErrStepTagDupe    = errors.New("step active tag repeated")
)

const stepContext = "step %d (%s)"

// Tags returns the active tags of the step as a set
func (s *Step) Tags() util.Set[ComponentID] {
	return util.SetOf(s.ActiveTags...)
}

// IsActive reports whether the given tag is highlighted by this step
func (s *Step) IsActive(tag ComponentID) bool {
	for _, t := range s.ActiveTags {
		if t == tag {
			return true
		}
	}
	return false
}

// Validate checks a step's label and tags
func (s *Step) Validate() error {
	if s.Label == "" {
		return ErrStepLabelEmpty
	}
	seen := util.Set[ComponentID]{}
	for _, tag := range s.ActiveTags {
		if !IsCanonicalID(tag) {
			return fmt.Errorf("%w: %q", ErrStepTagInvalid, tag)
		}
		if seen.Contains(tag) {
			return fmt.Errorf("%w: %s", ErrStepTagDupe, tag)
		}
		seen.Add(tag)
	}
	return nil
}

// Validate checks the tour and every step it contains
func (t *Tour) Validate() error {
	if t.ID == "" {
		return ErrTourIDEmpty
	}
	if !IsCanonicalID(t.ID) {
		return fmt.Errorf("%w: %q", ErrTourIDInvalid, t.ID)
	}
	if t.Title == "" {
		return ErrTourTitleEmpty
	}
	if len(t.Steps) == 0 {
		return ErrTourNoSteps
	}
	if t.DelayMs <= 0 {
		return fmt.Errorf("%w: %d", ErrTourDelay, t.DelayMs)
	}
	for i := range t.Steps {
		st := &t.Steps[i]
		if st.Index != i {
			return fmt.Errorf(stepContext+": %w", i, st.Label,
				ErrStepIndexWrong)
		}
		if err := st.Validate(); err != nil {
			return fmt.Errorf(stepContext+": %w", i, st.Label, err)
		}
	}
	return nil
}

// Delay returns the auto-advance interval of the tour
func (t *Tour) Delay() time.Duration {
	return time.Duration(t.DelayMs) * time.Millisecond
}

// Initial returns the index a fresh or reset sequencer starts at
func (t *Tour) Initial() int {
	if t.Unstarted {
		return Unstarted
	}
	return 0
}

// Digest summarizes the tour
func (t *Tour) Digest() *TourDigest {
	return &TourDigest{
		ID:        t.ID,
		Title:     t.Title,
		StepCount: len(t.Steps),
		DelayMs:   t.DelayMs,
		Unstarted: t.Unstarted,
	}
}

// Indexed returns a copy of steps with Index set to each step's position
func Indexed(steps []Step) []Step {
	res := make([]Step, len(steps))
	for i, s := range steps {
		s.ActiveTags = append([]ComponentID(nil), s.ActiveTags...)
		s.Index = i
		res[i] = s
	}
	return res
}
