package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingStore_StageIsInvisibleUntilCommit(t *testing.T) {
	ctx := context.Background()
	s := NewBookingStore()
	b := &domain.Booking{FlightID: 42, Code: "ABCDE12345", CustomerID: "U1"}

	require.NoError(t, s.Stage(ctx, b))
	require.NotEqual(t, uuid.Nil, b.ID)

	exists, err := s.CodeExists(ctx, b.Code)
	require.NoError(t, err)
	assert.False(t, exists)
	_, err = s.GetByID(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.Commit(ctx, []uuid.UUID{b.ID}))
	exists, err = s.CodeExists(ctx, b.Code)
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := s.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "U1", got.CustomerID)
}

func TestBookingStore_RevertPendingIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewBookingStore()
	committed := &domain.Booking{Code: "AAAAAAAAAA"}
	require.NoError(t, s.Stage(ctx, committed))
	require.NoError(t, s.Commit(ctx, []uuid.UUID{committed.ID}))

	s.RevertPending(ctx, nil)
	s.RevertPending(ctx, []uuid.UUID{uuid.New()})
	assert.Equal(t, 1, s.Len())

	pending := &domain.Booking{Code: "BBBBBBBBBB"}
	require.NoError(t, s.Stage(ctx, pending))
	s.RevertPending(ctx, []uuid.UUID{pending.ID})
	s.RevertPending(ctx, []uuid.UUID{pending.ID})

	assert.Equal(t, 1, s.Len())
	assert.Error(t, s.Commit(ctx, []uuid.UUID{pending.ID}), "reverted entities cannot be committed")
}

func TestBookingStore_CommitKeepsOtherCallersPending(t *testing.T) {
	ctx := context.Background()
	s := NewBookingStore()
	mine := &domain.Booking{Code: "AAAAAAAAAA"}
	theirs := &domain.Booking{Code: "BBBBBBBBBB"}
	require.NoError(t, s.Stage(ctx, mine))
	require.NoError(t, s.Stage(ctx, theirs))

	require.NoError(t, s.Commit(ctx, []uuid.UUID{mine.ID}))
	assert.Equal(t, 1, s.Len())
	require.NoError(t, s.Commit(ctx, []uuid.UUID{theirs.ID}))
	assert.Equal(t, 2, s.Len())
}

func TestBookingStore_FailNextCommit(t *testing.T) {
	ctx := context.Background()
	s := NewBookingStore()
	b := &domain.Booking{Code: "AAAAAAAAAA"}
	require.NoError(t, s.Stage(ctx, b))

	boom := errors.New("disk full")
	s.FailNextCommit(boom)
	assert.ErrorIs(t, s.Commit(ctx, []uuid.UUID{b.ID}), boom)
	assert.Equal(t, 0, s.Len())

	require.NoError(t, s.Commit(ctx, []uuid.UUID{b.ID}), "failed commit leaves entities pending")
	assert.Equal(t, 1, s.Len())
}

func TestBookingStore_UniqueCode(t *testing.T) {
	ctx := context.Background()
	s := NewBookingStore()
	first := &domain.Booking{Code: "AAAAAAAAAA"}
	second := &domain.Booking{Code: "AAAAAAAAAA"}
	require.NoError(t, s.Stage(ctx, first))
	require.NoError(t, s.Stage(ctx, second))

	require.NoError(t, s.Commit(ctx, []uuid.UUID{first.ID}))
	assert.ErrorIs(t, s.Commit(ctx, []uuid.UUID{second.ID}), ErrDuplicateKey)
}

func TestPassengerStore_Lookups(t *testing.T) {
	ctx := context.Background()
	s := NewPassengerStore()
	p := &domain.Passenger{Name: "Ada", DocumentNumber: "X1"}
	require.NoError(t, s.Stage(ctx, p))

	_, err := s.GetByDocument(ctx, "X1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.Commit(ctx, []uuid.UUID{p.ID}))
	got, err := s.GetByDocument(ctx, "X1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	byID, err := s.GetByIDs(ctx, []uuid.UUID{p.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, byID, 1)
	assert.Equal(t, "Ada", byID[p.ID].Name)

	dup := &domain.Passenger{DocumentNumber: "X1"}
	require.NoError(t, s.Stage(ctx, dup))
	assert.ErrorIs(t, s.Commit(ctx, []uuid.UUID{dup.ID}), ErrDuplicateKey)

	require.NoError(t, s.Discard(ctx, []uuid.UUID{p.ID}))
	assert.Equal(t, 0, s.Len())
}

func TestPassengerLinkStore_CountByFlight(t *testing.T) {
	ctx := context.Background()
	bookings := NewBookingStore()
	links := NewPassengerLinkStore(bookings, nil)

	b := &domain.Booking{FlightID: 42, Code: "AAAAAAAAAA"}
	require.NoError(t, bookings.Stage(ctx, b))

	first := &domain.PassengerLink{BookingID: b.ID, PassengerID: uuid.New(), Position: 1}
	second := &domain.PassengerLink{BookingID: b.ID, PassengerID: uuid.New(), Position: 0}
	require.NoError(t, links.Stage(ctx, first))
	require.NoError(t, links.Stage(ctx, second))
	keys := []uuid.UUID{first.ID, second.ID}

	assert.ErrorIs(t, links.Commit(ctx, keys), ErrMissingParent)

	require.NoError(t, bookings.Commit(ctx, []uuid.UUID{b.ID}))
	require.NoError(t, links.Commit(ctx, keys))

	count, err := links.CountByFlight(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	count, err = links.CountByFlight(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	exists, err := links.Exists(ctx, b.ID, first.PassengerID)
	require.NoError(t, err)
	assert.True(t, exists)

	listed, err := links.ListByBooking(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, second.ID, listed[0].ID)

	again := &domain.PassengerLink{BookingID: b.ID, PassengerID: first.PassengerID}
	require.NoError(t, links.Stage(ctx, again))
	assert.ErrorIs(t, links.Commit(ctx, []uuid.UUID{again.ID}), ErrDuplicateKey)
}

func TestPassengerStore_DiscardKeepsReferencedPassengers(t *testing.T) {
	ctx := context.Background()
	bookings := NewBookingStore()
	passengers := NewPassengerStore()
	links := NewPassengerLinkStore(bookings, passengers)

	b := &domain.Booking{FlightID: 42, Code: "AAAAAAAAAA"}
	require.NoError(t, bookings.Stage(ctx, b))
	require.NoError(t, bookings.Commit(ctx, []uuid.UUID{b.ID}))

	linked := &domain.Passenger{DocumentNumber: "X1"}
	free := &domain.Passenger{DocumentNumber: "X2"}
	require.NoError(t, passengers.Stage(ctx, linked))
	require.NoError(t, passengers.Stage(ctx, free))
	require.NoError(t, passengers.Commit(ctx, []uuid.UUID{linked.ID, free.ID}))

	link := &domain.PassengerLink{BookingID: b.ID, PassengerID: linked.ID}
	require.NoError(t, links.Stage(ctx, link))
	require.NoError(t, links.Commit(ctx, []uuid.UUID{link.ID}))

	err := passengers.Discard(ctx, []uuid.UUID{free.ID, linked.ID})
	assert.ErrorIs(t, err, ErrReferenced)
	assert.Equal(t, 2, passengers.Len(), "a rejected discard deletes nothing")

	require.NoError(t, links.Discard(ctx, []uuid.UUID{link.ID}))
	require.NoError(t, passengers.Discard(ctx, []uuid.UUID{free.ID, linked.ID}))
	assert.Equal(t, 0, passengers.Len())
}

func TestPassengerLinkStore_CommitRequiresPassenger(t *testing.T) {
	ctx := context.Background()
	bookings := NewBookingStore()
	passengers := NewPassengerStore()
	links := NewPassengerLinkStore(bookings, passengers)

	b := &domain.Booking{FlightID: 42, Code: "AAAAAAAAAA"}
	require.NoError(t, bookings.Stage(ctx, b))
	require.NoError(t, bookings.Commit(ctx, []uuid.UUID{b.ID}))

	link := &domain.PassengerLink{BookingID: b.ID, PassengerID: uuid.New()}
	require.NoError(t, links.Stage(ctx, link))
	assert.ErrorIs(t, links.Commit(ctx, []uuid.UUID{link.ID}), ErrMissingParent)
	assert.Equal(t, 0, links.Len())
	assert.Equal(t, 1, links.Pending())
}
