package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/google/uuid"
)

type linkPair struct {
	booking   uuid.UUID
	passenger uuid.UUID
}

// PassengerLinkStore resolves flights through the booking store it was
// built with, the way the Postgres store joins bookings. With a passenger
// store it also enforces the passenger reference in both directions.
// Lock order is passengers before links.
type PassengerLinkStore struct {
	faults
	mu         sync.RWMutex
	rows       map[uuid.UUID]domain.PassengerLink
	staging    *repository.Staging[domain.PassengerLink]
	bookings   *BookingStore
	passengers *PassengerStore
}

// NewPassengerLinkStore binds the link store to its parents. passengers may
// be nil, in which case passenger ids are not checked.
func NewPassengerLinkStore(bookings *BookingStore, passengers *PassengerStore) *PassengerLinkStore {
	s := &PassengerLinkStore{
		rows:       make(map[uuid.UUID]domain.PassengerLink),
		staging:    repository.NewStaging[domain.PassengerLink](),
		bookings:   bookings,
		passengers: passengers,
	}
	if passengers != nil {
		passengers.mu.Lock()
		passengers.links = s
		passengers.mu.Unlock()
	}
	return s
}

func (s *PassengerLinkStore) Stage(ctx context.Context, link *domain.PassengerLink) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	staged := *link
	staged.Passenger = nil
	s.staging.Put(link.ID, staged)
	return nil
}

func (s *PassengerLinkStore) Commit(ctx context.Context, keys []uuid.UUID) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.next(); err != nil {
		return err
	}
	links, err := s.staging.Pick(keys)
	if err != nil {
		return err
	}

	if s.passengers != nil {
		s.passengers.mu.RLock()
		defer s.passengers.mu.RUnlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	pairs := make(map[linkPair]struct{}, len(s.rows)+len(links))
	for _, row := range s.rows {
		pairs[linkPair{row.BookingID, row.PassengerID}] = struct{}{}
	}
	for _, l := range links {
		if _, ok := s.bookings.flightOf(l.BookingID); !ok {
			return fmt.Errorf("%w: booking %s", ErrMissingParent, l.BookingID)
		}
		if s.passengers != nil {
			if _, ok := s.passengers.rows[l.PassengerID]; !ok {
				return fmt.Errorf("%w: passenger %s", ErrMissingParent, l.PassengerID)
			}
		}
		pair := linkPair{l.BookingID, l.PassengerID}
		if _, ok := pairs[pair]; ok {
			return fmt.Errorf("%w: link %s/%s", ErrDuplicateKey, l.BookingID, l.PassengerID)
		}
		pairs[pair] = struct{}{}
	}
	for _, l := range links {
		s.rows[l.ID] = l
	}

	s.staging.Drop(keys)
	return nil
}

func (s *PassengerLinkStore) RevertPending(ctx context.Context, keys []uuid.UUID) {
	s.staging.Drop(keys)
}

func (s *PassengerLinkStore) Discard(ctx context.Context, keys []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.rows, key)
	}
	return nil
}

// referencing reports the first of ids that a committed link points at.
func (s *PassengerLinkStore) referencing(ids []uuid.UUID) (uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	for _, row := range s.rows {
		if _, ok := wanted[row.PassengerID]; ok {
			return row.PassengerID, true
		}
	}
	return uuid.Nil, false
}

func (s *PassengerLinkStore) Exists(ctx context.Context, bookingID, passengerID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, row := range s.rows {
		if row.BookingID == bookingID && row.PassengerID == passengerID {
			return true, nil
		}
	}
	return false, nil
}

func (s *PassengerLinkStore) CountByFlight(ctx context.Context, flightID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, row := range s.rows {
		if flight, ok := s.bookings.flightOf(row.BookingID); ok && flight == flightID {
			count++
		}
	}
	return count, nil
}

func (s *PassengerLinkStore) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.PassengerLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	links := make([]domain.PassengerLink, 0)
	for _, row := range s.rows {
		if row.BookingID == bookingID {
			links = append(links, row)
		}
	}
	sort.Slice(links, func(i, j int) bool { return links[i].Position < links[j].Position })
	return links, nil
}

func (s *PassengerLinkStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

func (s *PassengerLinkStore) Pending() int {
	return s.staging.Len()
}

var _ repository.PassengerLinkStore = (*PassengerLinkStore)(nil)
