package remote

import (
	"time"

	"github.com/google/uuid"
)

// BirthDateLayout is the wire format of PassengerPayload.BirthDate.
const BirthDateLayout = "2006-01-02"

// BookingPayload is the body of a booking creation call.
type BookingPayload struct {
	FlightID   int64              `json:"flight_id" yaml:"flight_id"`
	CustomerID string             `json:"customer_id" yaml:"customer_id"`
	Passengers []PassengerPayload `json:"passengers" yaml:"passengers"`
}

type PassengerPayload struct {
	Name           string `json:"name" yaml:"name"`
	Surname        string `json:"surname" yaml:"surname"`
	MiddleName     string `json:"middle_name,omitempty" yaml:"middle_name"`
	DocumentNumber string `json:"document_number" yaml:"document_number"`
	IssuingCountry string `json:"issuing_country" yaml:"issuing_country"`
	BirthDate      string `json:"birth_date" yaml:"birth_date"`
	Gender         string `json:"gender" yaml:"gender"`
	Phone          string `json:"phone" yaml:"phone"`
	Email          string `json:"email,omitempty" yaml:"email"`
	CarryOnKg      int    `json:"carry_on_kg" yaml:"carry_on_kg"`
	BaggageKg      int    `json:"baggage_kg" yaml:"baggage_kg"`
}

// BookingView is a committed booking as returned by the bookings service.
type BookingView struct {
	ID         uuid.UUID           `json:"id"`
	Code       string              `json:"code"`
	FlightID   int64               `json:"flight_id"`
	CustomerID string              `json:"customer_id"`
	Confirmed  bool                `json:"confirmed"`
	CreatedAt  time.Time           `json:"created_at"`
	Passengers []PassengerLinkView `json:"passengers"`
}

type PassengerLinkView struct {
	ID             uuid.UUID `json:"id"`
	PassengerID    uuid.UUID `json:"passenger_id"`
	Name           string    `json:"name"`
	Surname        string    `json:"surname"`
	MiddleName     string    `json:"middle_name,omitempty"`
	DocumentNumber string    `json:"document_number"`
	CarryOnKg      int       `json:"carry_on_kg"`
	BaggageKg      int       `json:"baggage_kg"`
}

type existsResponse struct {
	Exists bool `json:"exists"`
}
