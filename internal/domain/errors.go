package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when a lookup matches nothing durable.
var ErrNotFound = errors.New("not found")

// ErrorCode is a stable identifier a caller can map onto its own transport status.
type ErrorCode string

const (
	CodeInvalidFlight        ErrorCode = "INVALID_FLIGHT"
	CodeInvalidCustomer      ErrorCode = "INVALID_CUSTOMER"
	CodeNotEnoughSeats       ErrorCode = "NOT_ENOUGH_SEATS"
	CodePassengerDuplication ErrorCode = "PASSENGER_DUPLICATION"
	CodeWrongPassengerData   ErrorCode = "WRONG_PASSENGER_DATA"
	CodeInvalidPassengerData ErrorCode = "INVALID_PASSENGER_DATA"
	CodeBookingRegistration  ErrorCode = "BOOKING_REGISTRATION"
)

// BookingError is the failure of a booking saga.
type BookingError struct {
	Code   ErrorCode
	Reason string
	Err    error
}

var (
	ErrInvalidFlight        = &BookingError{Code: CodeInvalidFlight}
	ErrInvalidCustomer      = &BookingError{Code: CodeInvalidCustomer}
	ErrNotEnoughSeats       = &BookingError{Code: CodeNotEnoughSeats}
	ErrPassengerDuplication = &BookingError{Code: CodePassengerDuplication}
	ErrWrongPassengerData   = &BookingError{Code: CodeWrongPassengerData}
	ErrInvalidPassengerData = &BookingError{Code: CodeInvalidPassengerData}
	ErrBookingRegistration  = &BookingError{Code: CodeBookingRegistration}
)

func NewBookingError(code ErrorCode, reason string, cause error) *BookingError {
	return &BookingError{Code: code, Reason: reason, Err: cause}
}

func (e *BookingError) Error() string {
	msg := string(e.Code)
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

// Is matches any BookingError carrying the same code.
func (e *BookingError) Is(target error) bool {
	var other *BookingError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// CodeOf extracts the booking error code of err, or "" when err is not a saga failure.
func CodeOf(err error) ErrorCode {
	var be *BookingError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
