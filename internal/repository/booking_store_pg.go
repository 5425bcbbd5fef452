package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGBookingStore struct {
	db      *pgxpool.Pool
	staging *Staging[domain.Booking]
}

func NewBookingStore(db *pgxpool.Pool) *PGBookingStore {
	return &PGBookingStore{db: db, staging: NewStaging[domain.Booking]()}
}

func (s *PGBookingStore) Stage(ctx context.Context, booking *domain.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.CreatedAt = utcNow()
	staged := *booking
	staged.Passengers = nil
	s.staging.Put(booking.ID, staged)
	return nil
}

func (s *PGBookingStore) Commit(ctx context.Context, keys []uuid.UUID) error {
	if len(keys) == 0 {
		return nil
	}
	bookings, err := s.staging.Pick(keys)
	if err != nil {
		return err
	}

	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		for _, b := range bookings {
			if _, err := tx.Exec(ctx, `INSERT INTO bookings (id, flight_id, code, customer_id, confirmed, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)`, b.ID, b.FlightID, b.Code, b.CustomerID, b.Confirmed, b.CreatedAt); err != nil {
				return fmt.Errorf("insert booking %s: %w", b.Code, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.staging.Drop(keys)
	return nil
}

func (s *PGBookingStore) RevertPending(ctx context.Context, keys []uuid.UUID) {
	s.staging.Drop(keys)
}

func (s *PGBookingStore) Discard(ctx context.Context, keys []uuid.UUID) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx, `DELETE FROM bookings WHERE id = ANY($1::uuid[])`, uuidStrings(keys))
	return err
}

func (s *PGBookingStore) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE code=$1)`, code).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *PGBookingStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	row := s.db.QueryRow(ctx, `SELECT id, flight_id, code, customer_id, confirmed, created_at FROM bookings WHERE id=$1`, id)
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.FlightID, &b.Code, &b.CustomerID, &b.Confirmed, &b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

var _ BookingStore = (*PGBookingStore)(nil)
