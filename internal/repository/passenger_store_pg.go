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

const passengerColumns = `id, name, surname, middle_name, document_number, issuing_country, birth_date, gender, phone, email`

type PGPassengerStore struct {
	db      *pgxpool.Pool
	staging *Staging[domain.Passenger]
}

func NewPassengerStore(db *pgxpool.Pool) *PGPassengerStore {
	return &PGPassengerStore{db: db, staging: NewStaging[domain.Passenger]()}
}

func (s *PGPassengerStore) Stage(ctx context.Context, p *domain.Passenger) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.staging.Put(p.ID, *p)
	return nil
}

func (s *PGPassengerStore) Commit(ctx context.Context, keys []uuid.UUID) error {
	if len(keys) == 0 {
		return nil
	}
	passengers, err := s.staging.Pick(keys)
	if err != nil {
		return err
	}

	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		for _, p := range passengers {
			if _, err := tx.Exec(ctx, `INSERT INTO passengers (`+passengerColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				p.ID, p.Name, p.Surname, p.MiddleName, p.DocumentNumber, p.IssuingCountry, p.BirthDate, p.Gender, p.Phone, p.Email); err != nil {
				return fmt.Errorf("insert passenger %s: %w", p.DocumentNumber, err)
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

func (s *PGPassengerStore) RevertPending(ctx context.Context, keys []uuid.UUID) {
	s.staging.Drop(keys)
}

func (s *PGPassengerStore) Discard(ctx context.Context, keys []uuid.UUID) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx, `DELETE FROM passengers WHERE id = ANY($1::uuid[])`, uuidStrings(keys))
	return err
}

func (s *PGPassengerStore) GetByDocument(ctx context.Context, documentNumber string) (*domain.Passenger, error) {
	row := s.db.QueryRow(ctx, `SELECT `+passengerColumns+` FROM passengers WHERE document_number=$1`, documentNumber)
	p, err := scanPassenger(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *PGPassengerStore) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Passenger, error) {
	out := make(map[uuid.UUID]*domain.Passenger, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := s.db.Query(ctx, `SELECT `+passengerColumns+` FROM passengers WHERE id = ANY($1::uuid[])`, uuidStrings(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPassenger(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func scanPassenger(row pgx.Row) (*domain.Passenger, error) {
	var p domain.Passenger
	if err := row.Scan(&p.ID, &p.Name, &p.Surname, &p.MiddleName, &p.DocumentNumber, &p.IssuingCountry, &p.BirthDate, &p.Gender, &p.Phone, &p.Email); err != nil {
		return nil, err
	}
	return &p, nil
}

var _ PassengerStore = (*PGPassengerStore)(nil)
