package booking

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

func validateInput(input CreateBookingInput) error {
	if strings.TrimSpace(input.CustomerID) == "" {
		return domain.NewBookingError(domain.CodeInvalidCustomer, "customer id is required", nil)
	}
	if len(input.Passengers) == 0 {
		return domain.NewBookingError(domain.CodeInvalidPassengerData, "at least one passenger is required", nil)
	}
	for i, p := range input.Passengers {
		if strings.TrimSpace(p.DocumentNumber) == "" {
			return domain.NewBookingError(domain.CodeInvalidPassengerData, fmt.Sprintf("passenger %d: document number is required", i+1), nil)
		}
		if p.CarryOnKg < 0 || p.BaggageKg < 0 {
			return domain.NewBookingError(domain.CodeInvalidPassengerData, fmt.Sprintf("passenger %d: allowances must not be negative", i+1), nil)
		}
	}
	return nil
}

// validateNewPassenger applies to passengers that are not on record yet.
func validateNewPassenger(p *domain.Passenger, now time.Time) error {
	if p.BirthDate.IsZero() || p.BirthDate.After(now) {
		return domain.NewBookingError(domain.CodeInvalidPassengerData, fmt.Sprintf("passenger %s: birth date must not be in the future", p.DocumentNumber), nil)
	}
	if !phonePattern.MatchString(p.Phone) {
		return domain.NewBookingError(domain.CodeInvalidPassengerData, fmt.Sprintf("passenger %s: malformed phone number", p.DocumentNumber), nil)
	}
	return nil
}
