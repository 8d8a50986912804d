package api

type (
	// SessionEvent is sent to WebSocket clients on every session transition
	SessionEvent struct {
		Type      string        `json:"type"`
		Session   *SessionState `json:"session"`
		Timestamp int64         `json:"timestamp"`
	}

	// SessionCommand is sent by WebSocket clients to drive their session
	SessionCommand struct {
		Type  ActionType `json:"type"`
		Index int        `json:"index,omitempty"`
	}

	// CommandError reports a rejected WebSocket command
	CommandError struct {
		Type    string     `json:"type"`
		Command ActionType `json:"command"`
		Error   string     `json:"error"`
	}
)

const (
	EventTypeSessionState  = "session_state"
	EventTypeSessionClosed = "session_closed"
	EventTypeCommandError  = "command_error"
)
