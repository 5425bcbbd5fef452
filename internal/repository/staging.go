package repository

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Staging is a concurrency-safe set of pending entities keyed by id.
type Staging[T any] struct {
	mu      sync.Mutex
	pending map[uuid.UUID]T
}

func NewStaging[T any]() *Staging[T] {
	return &Staging[T]{pending: make(map[uuid.UUID]T)}
}

func (s *Staging[T]) Put(key uuid.UUID, entity T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[key] = entity
}

// Pick returns the pending entities for keys in key order, leaving them pending.
func (s *Staging[T]) Pick(keys []uuid.UUID) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]T, 0, len(keys))
	for _, key := range keys {
		entity, ok := s.pending[key]
		if !ok {
			return nil, fmt.Errorf("repository: %s is not staged", key)
		}
		out = append(out, entity)
	}
	return out, nil
}

func (s *Staging[T]) Drop(keys []uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.pending, key)
	}
}

func (s *Staging[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
