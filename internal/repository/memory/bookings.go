package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/google/uuid"
)

type BookingStore struct {
	faults
	mu      sync.RWMutex
	rows    map[uuid.UUID]domain.Booking
	staging *repository.Staging[domain.Booking]
}

func NewBookingStore() *BookingStore {
	return &BookingStore{
		rows:    make(map[uuid.UUID]domain.Booking),
		staging: repository.NewStaging[domain.Booking](),
	}
}

func (s *BookingStore) Stage(ctx context.Context, booking *domain.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.CreatedAt = time.Now().UTC()
	staged := *booking
	staged.Passengers = nil
	s.staging.Put(booking.ID, staged)
	return nil
}

func (s *BookingStore) Commit(ctx context.Context, keys []uuid.UUID) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.next(); err != nil {
		return err
	}
	bookings, err := s.staging.Pick(keys)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	codes := make(map[string]struct{}, len(s.rows)+len(bookings))
	for _, row := range s.rows {
		codes[row.Code] = struct{}{}
	}
	for _, b := range bookings {
		if _, ok := s.rows[b.ID]; ok {
			return fmt.Errorf("%w: booking %s", ErrDuplicateKey, b.ID)
		}
		if _, ok := codes[b.Code]; ok {
			return fmt.Errorf("%w: booking code %s", ErrDuplicateKey, b.Code)
		}
		codes[b.Code] = struct{}{}
	}
	for _, b := range bookings {
		s.rows[b.ID] = b
	}

	s.staging.Drop(keys)
	return nil
}

func (s *BookingStore) RevertPending(ctx context.Context, keys []uuid.UUID) {
	s.staging.Drop(keys)
}

func (s *BookingStore) Discard(ctx context.Context, keys []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.rows, key)
	}
	return nil
}

func (s *BookingStore) CodeExists(ctx context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, row := range s.rows {
		if row.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *BookingStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &row, nil
}

func (s *BookingStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

func (s *BookingStore) flightOf(id uuid.UUID) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[id]
	return row.FlightID, ok
}

// Pending reports how many entities are staged and not yet committed or reverted.
func (s *BookingStore) Pending() int {
	return s.staging.Len()
}

var _ repository.BookingStore = (*BookingStore)(nil)
