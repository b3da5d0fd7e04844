package verdict

import (
	"context"
	"sync"

	"github.com/de-tools/trade-sentinel/pkg/models/domain"
)

// Store is an in-memory verdict cache scoped to the process lifetime.
// It is the default verdict store: nothing survives a restart.
type Store struct {
	mu   sync.RWMutex
	data map[string]domain.Verdict
}

func NewStore() *Store {
	return &Store{data: make(map[string]domain.Verdict)}
}

func (s *Store) Get(_ context.Context, key string) (domain.Verdict, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	return v, ok, nil
}

func (s *Store) Put(_ context.Context, key string, verdict domain.Verdict) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = verdict
	return nil
}
