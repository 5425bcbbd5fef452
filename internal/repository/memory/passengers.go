package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/google/uuid"
)

type PassengerStore struct {
	faults
	mu      sync.RWMutex
	rows    map[uuid.UUID]domain.Passenger
	staging *repository.Staging[domain.Passenger]
	links   *PassengerLinkStore
}

func NewPassengerStore() *PassengerStore {
	return &PassengerStore{
		rows:    make(map[uuid.UUID]domain.Passenger),
		staging: repository.NewStaging[domain.Passenger](),
	}
}

func (s *PassengerStore) Stage(ctx context.Context, p *domain.Passenger) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.staging.Put(p.ID, *p)
	return nil
}

func (s *PassengerStore) Commit(ctx context.Context, keys []uuid.UUID) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.next(); err != nil {
		return err
	}
	passengers, err := s.staging.Pick(keys)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	documents := make(map[string]struct{}, len(s.rows)+len(passengers))
	for _, row := range s.rows {
		documents[row.DocumentNumber] = struct{}{}
	}
	for _, p := range passengers {
		if _, ok := s.rows[p.ID]; ok {
			return fmt.Errorf("%w: passenger %s", ErrDuplicateKey, p.ID)
		}
		if _, ok := documents[p.DocumentNumber]; ok {
			return fmt.Errorf("%w: document number %s", ErrDuplicateKey, p.DocumentNumber)
		}
		documents[p.DocumentNumber] = struct{}{}
	}
	for _, p := range passengers {
		s.rows[p.ID] = p
	}

	s.staging.Drop(keys)
	return nil
}

func (s *PassengerStore) RevertPending(ctx context.Context, keys []uuid.UUID) {
	s.staging.Drop(keys)
}

// Discard deletes nothing while a committed link still points at one of the
// passengers, like the passenger_links foreign key in Postgres.
func (s *PassengerStore) Discard(ctx context.Context, keys []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.links != nil {
		if id, ok := s.links.referencing(keys); ok {
			return fmt.Errorf("%w: passenger %s", ErrReferenced, id)
		}
	}
	for _, key := range keys {
		delete(s.rows, key)
	}
	return nil
}

func (s *PassengerStore) GetByDocument(ctx context.Context, documentNumber string) (*domain.Passenger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, row := range s.rows {
		if row.DocumentNumber == documentNumber {
			p := row
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *PassengerStore) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Passenger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID]*domain.Passenger, len(ids))
	for _, id := range ids {
		if row, ok := s.rows[id]; ok {
			p := row
			out[id] = &p
		}
	}
	return out, nil
}

func (s *PassengerStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

func (s *PassengerStore) Pending() int {
	return s.staging.Len()
}

var _ repository.PassengerStore = (*PassengerStore)(nil)
