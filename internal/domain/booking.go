package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingCodeLength is the length of the public booking reference.
const BookingCodeLength = 10

type Booking struct {
	ID         uuid.UUID
	FlightID   int64
	Code       string
	CustomerID string
	Confirmed  bool
	CreatedAt  time.Time
	Passengers []PassengerLink
}

// PassengerLink binds one passenger to one booking together with the luggage allowances.
type PassengerLink struct {
	ID          uuid.UUID
	BookingID   uuid.UUID
	PassengerID uuid.UUID
	Position    int
	CarryOnKg   int
	BaggageKg   int
	Passenger   *Passenger
}
