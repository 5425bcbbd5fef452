package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGPassengerLinkStore struct {
	db      *pgxpool.Pool
	staging *Staging[domain.PassengerLink]
}

func NewPassengerLinkStore(db *pgxpool.Pool) *PGPassengerLinkStore {
	return &PGPassengerLinkStore{db: db, staging: NewStaging[domain.PassengerLink]()}
}

func (s *PGPassengerLinkStore) Stage(ctx context.Context, link *domain.PassengerLink) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	staged := *link
	staged.Passenger = nil
	s.staging.Put(link.ID, staged)
	return nil
}

func (s *PGPassengerLinkStore) Commit(ctx context.Context, keys []uuid.UUID) error {
	if len(keys) == 0 {
		return nil
	}
	links, err := s.staging.Pick(keys)
	if err != nil {
		return err
	}

	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		for _, l := range links {
			if _, err := tx.Exec(ctx, `INSERT INTO passenger_links (id, booking_id, passenger_id, position, carry_on_kg, baggage_kg)
				VALUES ($1, $2, $3, $4, $5, $6)`, l.ID, l.BookingID, l.PassengerID, l.Position, l.CarryOnKg, l.BaggageKg); err != nil {
				return fmt.Errorf("insert passenger link %s: %w", l.ID, err)
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

func (s *PGPassengerLinkStore) RevertPending(ctx context.Context, keys []uuid.UUID) {
	s.staging.Drop(keys)
}

func (s *PGPassengerLinkStore) Discard(ctx context.Context, keys []uuid.UUID) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx, `DELETE FROM passenger_links WHERE id = ANY($1::uuid[])`, uuidStrings(keys))
	return err
}

func (s *PGPassengerLinkStore) Exists(ctx context.Context, bookingID, passengerID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM passenger_links WHERE booking_id=$1 AND passenger_id=$2)`, bookingID, passengerID).Scan(&exists)
	return exists, err
}

func (s *PGPassengerLinkStore) CountByFlight(ctx context.Context, flightID int64) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `SELECT count(*) FROM passenger_links l JOIN bookings b ON b.id = l.booking_id WHERE b.flight_id=$1`, flightID).Scan(&count)
	return count, err
}

func (s *PGPassengerLinkStore) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.PassengerLink, error) {
	rows, err := s.db.Query(ctx, `SELECT id, booking_id, passenger_id, position, carry_on_kg, baggage_kg
		FROM passenger_links WHERE booking_id=$1 ORDER BY position`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]domain.PassengerLink, 0)
	for rows.Next() {
		var l domain.PassengerLink
		if err := rows.Scan(&l.ID, &l.BookingID, &l.PassengerID, &l.Position, &l.CarryOnKg, &l.BaggageKg); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

var _ PassengerLinkStore = (*PGPassengerLinkStore)(nil)
