package session

import (
	"errors"
	"fmt"

	"github.com/kode4food/kubetour/internal/sequencer"
	"github.com/kode4food/kubetour/pkg/api"
)

// Session is one live sequencer bound to a tour
type Session struct {
	id   api.SessionID
	tour *api.Tour
	seq  *sequencer.Sequencer
}

var ErrUnknownCommand = errors.New("unknown session command")

var commandActions = map[api.ActionType]bool{
	api.ActionStart: true,
	api.ActionPause: true,
	api.ActionNext:  true,
	api.ActionPrev:  true,
	api.ActionReset: true,
	api.ActionJump:  true,
}

// ID returns the session identifier
func (s *Session) ID() api.SessionID {
	return s.id
}

// Tour returns the tour the session plays
func (s *Session) Tour() *api.Tour {
	return s.tour
}

// Sequencer exposes the underlying sequencer
func (s *Session) Sequencer() *sequencer.Sequencer {
	return s.seq
}

// State returns the current view of the session
func (s *Session) State() *api.SessionState {
	return s.view(s.seq.State())
}

// Apply runs a client command against the sequencer and returns the
// resulting view
func (s *Session) Apply(cmd api.SessionCommand) (*api.SessionState, error) {
	if !commandActions[cmd.Type] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
	err := s.seq.Dispatch(sequencer.Action{Type: cmd.Type, Index: cmd.Index})
	if err != nil {
		return nil, err
	}
	return s.State(), nil
}

func (s *Session) view(st api.SequencerState) *api.SessionState {
	res := &api.SessionState{
		ID:    s.id,
		Tour:  s.tour.ID,
		State: st,
		Count: len(s.tour.Steps),
	}
	if st.IsStarted() && st.Index < len(s.tour.Steps) {
		step := s.tour.Steps[st.Index]
		step.ActiveTags = append([]api.ComponentID(nil), step.ActiveTags...)
		res.Step = &step
	}
	return res
}
