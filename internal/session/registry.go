package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kode4food/caravan"
	"github.com/kode4food/caravan/message"
	"github.com/kode4food/caravan/topic"

	"github.com/kode4food/kubetour/internal/catalog"
	"github.com/kode4food/kubetour/internal/sequencer"
	"github.com/kode4food/kubetour/pkg/api"
	"github.com/kode4food/kubetour/pkg/log"
)

type (
	// Registry owns every live session
	Registry struct {
		catalog   *catalog.Catalog
		makeTimer sequencer.TimerConstructor
		events    topic.Topic[*api.SessionEvent]
		prod      topic.Producer[*api.SessionEvent]
		now       func() time.Time

		mu       sync.RWMutex
		sessions map[api.SessionID]*Session
		closed   bool
	}

	// Option customizes a Registry
	Option func(*Registry)
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrRegistryClosed  = errors.New("session registry closed")
)

// NewRegistry creates an empty Registry over the catalog's tours
func NewRegistry(c *catalog.Catalog, opts ...Option) *Registry {
	events := caravan.NewTopic[*api.SessionEvent]()
	r := &Registry{
		catalog:   c,
		makeTimer: sequencer.NewTimer,
		events:    events,
		prod:      events.NewProducer(),
		now:       time.Now,
		sessions:  map[api.SessionID]*Session{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithTimers replaces the timer constructor given to every sequencer
func WithTimers(makeTimer sequencer.TimerConstructor) Option {
	return func(r *Registry) {
		r.makeTimer = makeTimer
	}
}

// WithClock replaces the clock used to stamp events
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// Create starts a new paused session for the tour
func (r *Registry) Create(tourID api.TourID) (*Session, error) {
	t, err := r.catalog.Tour(tourID)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		id:   api.SessionID(uuid.NewString()),
		tour: t,
	}
	seq, err := sequencer.FromTour(t, r.makeTimer,
		func(st api.SequencerState) {
			r.publish(api.EventTypeSessionState, sess.view(st))
		},
	)
	if err != nil {
		return nil, err
	}
	sess.seq = seq

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		seq.Close()
		return nil, ErrRegistryClosed
	}
	r.sessions[sess.id] = sess
	r.mu.Unlock()

	slog.Info("Session created",
		log.SessionID(sess.id),
		log.TourID(tourID))
	return sess, nil
}

// Get returns a live session
func (r *Registry) Get(id api.SessionID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if sess, ok := r.sessions[id]; ok {
		return sess, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
}

// Delete closes a session's sequencer and forgets it. No timer fires
// against the session afterward
func (r *Registry) Delete(id api.SessionID) error {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.seq.Close()
	r.publish(api.EventTypeSessionClosed, sess.State())
	slog.Info("Session deleted", log.SessionID(id))
	return nil
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Subscribe returns a consumer of session events. The caller must Close it
func (r *Registry) Subscribe() topic.Consumer[*api.SessionEvent] {
	return r.events.NewConsumer()
}

// Close deletes every session and stops publishing
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	sessions := r.sessions
	r.sessions = map[api.SessionID]*Session{}
	r.prod.Close()
	r.mu.Unlock()

	for _, sess := range sessions {
		sess.seq.Close()
	}

	slog.Info("Session registry closed",
		slog.Int("sessions", len(sessions)))
}

// publish sends one event to subscribers. Sequencers notify outside their
// lock, so a state change can arrive after its session was deleted; those
// are dropped to keep session_closed the last event of a session
func (r *Registry) publish(typ string, st *api.SessionState) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	if typ == api.EventTypeSessionState {
		if _, ok := r.sessions[st.ID]; !ok {
			return
		}
	}
	message.Send(r.prod, &api.SessionEvent{
		Type:      typ,
		Session:   st,
		Timestamp: r.now().UnixMilli(),
	})
}
