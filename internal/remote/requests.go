package remote

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// GetFlightRequest fetches one flight record from the flights service.
type GetFlightRequest struct {
	ID int64
}

func (GetFlightRequest) Method() string  { return http.MethodGet }
func (r GetFlightRequest) Route() string { return fmt.Sprintf("/api/flights/%d", r.ID) }
func (GetFlightRequest) Payload() any    { return nil }

// UserExistsRequest asks the users service whether a customer identity exists.
type UserExistsRequest struct {
	ID string
}

func (UserExistsRequest) Method() string  { return http.MethodGet }
func (r UserExistsRequest) Route() string { return "/api/users/" + url.PathEscape(r.ID) + "/exists" }
func (UserExistsRequest) Payload() any    { return nil }

// CreateBookingRequest submits a booking to the bookings service.
type CreateBookingRequest struct {
	Booking BookingPayload
}

func (CreateBookingRequest) Method() string { return http.MethodPost }
func (CreateBookingRequest) Route() string  { return "/api/bookings" }
func (r CreateBookingRequest) Payload() any { return r.Booking }

// GetBookingRequest reads a committed booking from the bookings service.
type GetBookingRequest struct {
	ID uuid.UUID
}

func (GetBookingRequest) Method() string  { return http.MethodGet }
func (r GetBookingRequest) Route() string { return "/api/bookings/" + r.ID.String() }
func (GetBookingRequest) Payload() any    { return nil }
