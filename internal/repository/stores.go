package repository

import (
	"context"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/google/uuid"
)

// Stager is the write side shared by every aggregate store. Staged entities
// are held in memory until committed; keys identify the entities a caller
// staged so that concurrent callers never commit or revert each other's writes.
type Stager[T any] interface {
	// Stage adds entity to the pending set and fills in store-assigned fields.
	Stage(ctx context.Context, entity *T) error
	// Commit makes the given pending entities durable in one write. On error
	// none of them is durable and they stay pending.
	Commit(ctx context.Context, keys []uuid.UUID) error
	// RevertPending forgets the given pending entities. Unknown keys are ignored.
	RevertPending(ctx context.Context, keys []uuid.UUID)
	// Discard deletes durable entities written by an earlier Commit.
	Discard(ctx context.Context, keys []uuid.UUID) error
}

// Lookups below read durable state only; pending entities are invisible.

type BookingStore interface {
	Stager[domain.Booking]
	CodeExists(ctx context.Context, code string) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
}

type PassengerStore interface {
	Stager[domain.Passenger]
	GetByDocument(ctx context.Context, documentNumber string) (*domain.Passenger, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Passenger, error)
}

type PassengerLinkStore interface {
	Stager[domain.PassengerLink]
	Exists(ctx context.Context, bookingID, passengerID uuid.UUID) (bool, error)
	CountByFlight(ctx context.Context, flightID int64) (int, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.PassengerLink, error)
}
