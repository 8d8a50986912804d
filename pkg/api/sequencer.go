package api

type (
	// SequencerState is the cursor of a sequencer over its steps. Version
	// grows by one on every observable transition
	SequencerState struct {
		Index   int    `json:"index"`
		Playing bool   `json:"playing"`
		Version uint64 `json:"version"`
	}

	// ActionType names a sequencer transition
	ActionType string

	// SessionState is the view of a live session sent to clients
	SessionState struct {
		ID    SessionID      `json:"id"`
		Tour  TourID         `json:"tour_id"`
		State SequencerState `json:"state"`
		Step  *Step          `json:"step,omitempty"`
		Count int            `json:"step_count"`
	}
)

const (
	ActionStart ActionType = "start"
	ActionPause ActionType = "pause"
	ActionNext  ActionType = "next"
	ActionPrev  ActionType = "prev"
	ActionReset ActionType = "reset"
	ActionJump  ActionType = "jump"
	ActionTick  ActionType = "tick"
)

// IsStarted reports whether the cursor has left the unstarted sentinel
func (s SequencerState) IsStarted() bool {
	return s.Index != Unstarted
}
