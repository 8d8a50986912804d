package quiz

import (
	"context"
	"slices"
	"sync"

	"github.com/kode4food/kubetour/pkg/api"
)

// MemoryStore keeps the history in process memory
type MemoryStore struct {
	mu      sync.Mutex
	history []api.QuizAttempt
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(context.Context) ([]api.QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.history), nil
}

func (s *MemoryStore) Update(
	_ context.Context, fn UpdateFunc,
) ([]api.QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = slices.Clone(fn(slices.Clone(s.history)))
	return slices.Clone(s.history), nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
