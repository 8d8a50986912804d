package sequencer

import (
	"errors"
	"fmt"

	"github.com/kode4food/kubetour/pkg/api"
)

type (
	// Bounds describes the step list a state is reduced against
	Bounds struct {
		Count     int
		Unstarted bool
	}

	// Action is a single requested transition
	Action struct {
		Type  api.ActionType
		Index int
	}
)

var (
	ErrIndexOutOfRange = errors.New("step index out of range")
	ErrUnknownAction   = errors.New("unknown sequencer action")
)

// Initial returns the state of a fresh or reset sequencer
func (b Bounds) Initial() api.SequencerState {
	if b.Unstarted {
		return api.SequencerState{Index: api.Unstarted}
	}
	return api.SequencerState{}
}

// Last returns the terminal index
func (b Bounds) Last() int {
	return b.Count - 1
}

// Reduce applies an action to a state. The returned state carries the
// input's version; versioning is the caller's concern
func Reduce(
	b Bounds, st api.SequencerState, act Action,
) (api.SequencerState, error) {
	last := b.Last()
	switch act.Type {
	case api.ActionStart:
		if st.Index == api.Unstarted {
			st.Index = 0
		}
		st.Playing = st.Index < last
	case api.ActionPause:
		st.Playing = false
	case api.ActionNext:
		st.Playing = false
		st.Index = min(st.Index+1, last)
	case api.ActionPrev:
		st.Playing = false
		if st.Index != api.Unstarted {
			st.Index = max(st.Index-1, 0)
		}
	case api.ActionReset:
		st.Index = b.Initial().Index
		st.Playing = false
	case api.ActionJump:
		if act.Index < 0 || act.Index > last {
			return st, fmt.Errorf("%w: %d not in [0, %d]",
				ErrIndexOutOfRange, act.Index, last)
		}
		st.Playing = false
		st.Index = act.Index
	case api.ActionTick:
		if !st.Playing {
			return st, nil
		}
		st.Index = min(st.Index+1, last)
		st.Playing = st.Index < last
	default:
		return st, fmt.Errorf("%w: %q", ErrUnknownAction, act.Type)
	}
	return st, nil
}
