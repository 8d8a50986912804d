package wait

import (
	"testing"
	"time"

	"github.com/kode4food/caravan/topic"

	"github.com/kode4food/kubetour/pkg/api"
	"github.com/kode4food/kubetour/pkg/util"
)

type (
	Wait struct {
		t        *testing.T
		consumer topic.Consumer[*api.SessionEvent]
		timeout  time.Duration
	}

	Predicate[T any] func(T) bool

	EventFilter Predicate[*api.SessionEvent]
)

const DefaultTimeout = time.Second * 5

func On(t *testing.T, consumer topic.Consumer[*api.SessionEvent]) *Wait {
	return &Wait{
		t:        t,
		consumer: consumer,
		timeout:  DefaultTimeout,
	}
}

func (w *Wait) WithTimeout(timeout time.Duration) *Wait {
	res := *w
	res.timeout = timeout
	return &res
}

// ForEvents waits for matching events from the consumer and returns the
// last one matched
func (w *Wait) ForEvents(count int, filter EventFilter) *api.SessionEvent {
	w.t.Helper()

	deadline := time.NewTimer(w.timeout)
	defer deadline.Stop()

	var last *api.SessionEvent
	for seen := 0; seen < count; {
		select {
		case ev, ok := <-w.consumer.Receive():
			if !ok {
				w.t.Fatalf(
					"event consumer closed before receiving %d events", count,
				)
			}
			if !filter(ev) {
				continue
			}
			last = ev
			seen++
		case <-deadline.C:
			w.t.Fatalf("timeout waiting for %d events", count)
		}
	}
	return last
}

// ForEvent waits for a single matching event
func (w *Wait) ForEvent(filter EventFilter) *api.SessionEvent {
	w.t.Helper()
	return w.ForEvents(1, filter)
}

// And composes event filters and returns true when all match
func And(filters ...EventFilter) EventFilter {
	return func(ev *api.SessionEvent) bool {
		for _, filter := range filters {
			if !filter(ev) {
				return false
			}
		}
		return true
	}
}

// Type creates a filter for a single event type
func Type(eventType string) EventFilter {
	return Types(eventType)
}

// Types creates a filter for the given event types
func Types(eventTypes ...string) EventFilter {
	if len(eventTypes) == 0 {
		return func(*api.SessionEvent) bool { return false }
	}
	lookup := util.SetOf(eventTypes...)
	return func(ev *api.SessionEvent) bool {
		return ev != nil && lookup.Contains(ev.Type)
	}
}

// Session matches events for any of the given sessions
func Session(ids ...api.SessionID) EventFilter {
	lookup := util.SetOf(ids...)
	return func(ev *api.SessionEvent) bool {
		return ev != nil && ev.Session != nil && lookup.Contains(ev.Session.ID)
	}
}

// StateOf matches state events of one session
func StateOf(id api.SessionID) EventFilter {
	return And(Type(api.EventTypeSessionState), Session(id))
}

// Index matches state events of one session at a step index
func Index(id api.SessionID, idx int) EventFilter {
	return And(StateOf(id), func(ev *api.SessionEvent) bool {
		return ev.Session.State.Index == idx
	})
}

// Stopped matches state events of one session that stopped playing at a
// step index
func Stopped(id api.SessionID, idx int) EventFilter {
	return And(Index(id, idx), func(ev *api.SessionEvent) bool {
		return !ev.Session.State.Playing
	})
}

// Closed matches the close event of one session
func Closed(id api.SessionID) EventFilter {
	return And(Type(api.EventTypeSessionClosed), Session(id))
}
