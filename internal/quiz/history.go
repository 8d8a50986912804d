package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kode4food/kubetour/pkg/api"
	"github.com/kode4food/kubetour/pkg/log"
)

type (
	// Store persists the attempt history under HistoryKey
	Store interface {
		Load(ctx context.Context) ([]api.QuizAttempt, error)
		Update(ctx context.Context, fn UpdateFunc) ([]api.QuizAttempt, error)
		Clear(ctx context.Context) error
		Close() error
	}

	// UpdateFunc computes a new history from the stored one
	UpdateFunc func([]api.QuizAttempt) []api.QuizAttempt

	// History records graded attempts into a Store
	History struct {
		store Store
		now   func() time.Time
	}

	// Result is a recorded attempt with the history that now contains it
	Result struct {
		Attempt api.QuizAttempt
		History []api.QuizAttempt
	}
)

var (
	ErrCorruptHistory = errors.New("stored quiz history is corrupt")
	ErrNoQuestions    = errors.New("no questions to grade")
)

// NewHistory creates a History over store
func NewHistory(store Store) *History {
	return &History{
		store: store,
		now:   time.Now,
	}
}

// WithClock returns a copy of h that stamps attempts using now
func (h *History) WithClock(now func() time.Time) *History {
	return &History{store: h.store, now: now}
}

// List returns the stored attempts, newest first
func (h *History) List(ctx context.Context) ([]api.QuizAttempt, error) {
	res, err := h.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return clip(res), nil
}

// Record prepends a to the stored history
func (h *History) Record(
	ctx context.Context, a api.QuizAttempt,
) ([]api.QuizAttempt, error) {
	return h.store.Update(ctx, func(cur []api.QuizAttempt) []api.QuizAttempt {
		return Prepend(cur, a)
	})
}

// Submit grades answers against questions and records the attempt
func (h *History) Submit(
	ctx context.Context, d api.Difficulty, questions []*api.Question,
	answers []int,
) (*Result, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoQuestions, d)
	}
	a, err := NewAttempt(d, Grade(questions, answers), len(questions), h.now())
	if err != nil {
		return nil, err
	}
	history, err := h.Record(ctx, a)
	if err != nil {
		return nil, err
	}
	slog.Info("Quiz attempt recorded",
		slog.String("difficulty", string(d)),
		slog.Int("score", a.Score),
		slog.Int("total", a.Total))
	return &Result{Attempt: a, History: history}, nil
}

// Clear removes every stored attempt
func (h *History) Clear(ctx context.Context) error {
	return h.store.Clear(ctx)
}

// Close releases the underlying store
func (h *History) Close() error {
	return h.store.Close()
}

func decodeHistory(data []byte) ([]api.QuizAttempt, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var res []api.QuizAttempt
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptHistory, err)
	}
	return res, nil
}

// decodeForUpdate starts from an empty history when the stored one
// cannot be read, so a bad value never blocks new attempts
func decodeForUpdate(data []byte) []api.QuizAttempt {
	res, err := decodeHistory(data)
	if err != nil {
		slog.Warn("Discarding unreadable quiz history", log.Error(err))
		return nil
	}
	return res
}

func encodeHistory(history []api.QuizAttempt) ([]byte, error) {
	if history == nil {
		history = []api.QuizAttempt{}
	}
	return json.Marshal(history)
}
