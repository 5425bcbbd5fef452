package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/kafka"
	"github.com/Domenick1991/skybooking/internal/rpc"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const EventBookingCreated = "booking_created"

// saga records the keys one Book call staged in each store, so that a
// failure reverts exactly those writes and nothing staged by another call.
type saga struct {
	service *BookingService
	logger  logrus.FieldLogger

	booking    *domain.Booking
	inputs     []PassengerInput
	passengers []*domain.Passenger

	bookingKeys   []uuid.UUID
	passengerKeys []uuid.UUID
	linkKeys      []uuid.UUID
}

type commitStep struct {
	store   string
	commit  func(ctx context.Context) error
	discard func(ctx context.Context) error
}

// Book runs the booking creation saga. Every failure is a *domain.BookingError
// except collaborator outages, which surface as the underlying rpc error.
func (s *BookingService) Book(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "booking.Book", trace.WithAttributes(
		attribute.Int64("flight.id", input.FlightID),
		attribute.Int("booking.passengers", len(input.Passengers)),
	))
	defer span.End()

	log := s.logger.WithFields(logrus.Fields{"flight_id": input.FlightID, "customer_id": input.CustomerID})
	log.Info("booking saga started")

	booking, err := s.book(ctx, input, log)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.WithError(err).WithField("code", domain.CodeOf(err)).Warn("booking saga aborted")
		s.observer.ObserveSaga(outcomeOf(err), time.Since(start))
		return nil, err
	}

	span.SetAttributes(attribute.String("booking.code", booking.Code))
	log.WithField("booking_code", booking.Code).Info("booking saga committed")
	s.observer.ObserveSaga("ok", time.Since(start))
	return booking, nil
}

func (s *BookingService) book(ctx context.Context, input CreateBookingInput, log logrus.FieldLogger) (*domain.Booking, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	sg := newSaga(s, input, log)

	flight, err := s.checkFlight(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCustomer(ctx, input.CustomerID); err != nil {
		return nil, err
	}

	if s.locker != nil {
		release, err := s.lockFlight(ctx, flight.ID, log)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	linked, err := s.links.CountByFlight(ctx, flight.ID)
	if err != nil {
		return nil, registrationError("count passenger links", err)
	}
	if linked+len(input.Passengers) > flight.SeatCapacity {
		return nil, domain.NewBookingError(domain.CodeNotEnoughSeats,
			fmt.Sprintf("flight %d has %d of %d seats taken, %d requested", flight.ID, linked, flight.SeatCapacity, len(input.Passengers)), nil)
	}

	if err := sg.stage(ctx); err != nil {
		sg.revert(ctx)
		return nil, err
	}
	if err := sg.commit(ctx); err != nil {
		return nil, err
	}

	booking, err := s.GetBooking(ctx, sg.booking.ID)
	if err != nil {
		return nil, fmt.Errorf("read back booking %s: %w", sg.booking.Code, err)
	}
	s.publishCreated(ctx, booking, log)
	return booking, nil
}

func newSaga(s *BookingService, input CreateBookingInput, log logrus.FieldLogger) *saga {
	sg := &saga{
		service: s,
		logger:  log,
		booking: &domain.Booking{
			FlightID:   input.FlightID,
			CustomerID: input.CustomerID,
		},
		inputs:     input.Passengers,
		passengers: make([]*domain.Passenger, len(input.Passengers)),
	}
	for i, p := range input.Passengers {
		sg.passengers[i] = &domain.Passenger{
			Name:           p.Name,
			Surname:        p.Surname,
			MiddleName:     p.MiddleName,
			DocumentNumber: p.DocumentNumber,
			IssuingCountry: p.IssuingCountry,
			BirthDate:      p.BirthDate,
			Gender:         p.Gender,
			Phone:          p.Phone,
			Email:          p.Email,
		}
	}
	return sg
}

func (s *BookingService) checkFlight(ctx context.Context, id int64) (*domain.Flight, error) {
	flight, err := s.flights.GetFlight(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.NewBookingError(domain.CodeInvalidFlight, fmt.Sprintf("flight %d does not exist", id), err)
		}
		return nil, fmt.Errorf("look up flight %d: %w", id, err)
	}
	if !flight.DepartureTime.After(s.now()) {
		return nil, domain.NewBookingError(domain.CodeInvalidFlight, fmt.Sprintf("flight %d has already departed", id), nil)
	}
	return flight, nil
}

func (s *BookingService) checkCustomer(ctx context.Context, id string) error {
	exists, err := s.customers.CustomerExists(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return domain.NewBookingError(domain.CodeInvalidCustomer, fmt.Sprintf("customer %s does not exist", id), err)
		}
		return fmt.Errorf("look up customer %s: %w", id, err)
	}
	if !exists {
		return domain.NewBookingError(domain.CodeInvalidCustomer, fmt.Sprintf("customer %s does not exist", id), nil)
	}
	return nil
}

func (s *BookingService) lockFlight(ctx context.Context, flightID int64, log logrus.FieldLogger) (func(), error) {
	deadline := time.Now().Add(s.lockWait)
	for {
		token, err := s.locker.AcquireFlightLock(ctx, flightID, s.lockTTL)
		if err != nil {
			return nil, registrationError("lock flight", err)
		}
		if token != "" {
			return func() {
				if err := s.locker.ReleaseFlightLock(context.WithoutCancel(ctx), flightID, token); err != nil {
					log.WithError(err).Warn("failed to release flight lock")
				}
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, domain.NewBookingError(domain.CodeBookingRegistration, fmt.Sprintf("flight %d is locked by another booking", flightID), nil)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
}

func (s *BookingService) uniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < s.codeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return "", registrationError("generate booking code", err)
		}
		exists, err := s.bookings.CodeExists(ctx, code)
		if err != nil {
			return "", registrationError("check booking code", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", domain.NewBookingError(domain.CodeBookingRegistration,
		fmt.Sprintf("no free booking code after %d attempts", s.codeAttempts), nil)
}

// stage writes the booking, the new passengers and the links to the pending
// sets of their stores. Nothing becomes durable here.
func (sg *saga) stage(ctx context.Context) error {
	s := sg.service

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return err
	}
	sg.booking.Code = code
	if err := s.bookings.Stage(ctx, sg.booking); err != nil {
		return registrationError("stage booking", err)
	}
	sg.bookingKeys = append(sg.bookingKeys, sg.booking.ID)

	seen := make(map[string]int, len(sg.passengers))
	for i, candidate := range sg.passengers {
		if first, ok := seen[candidate.DocumentNumber]; ok {
			return domain.NewBookingError(domain.CodePassengerDuplication,
				fmt.Sprintf("passengers %d and %d share document number %s", first+1, i+1, candidate.DocumentNumber), nil)
		}
		seen[candidate.DocumentNumber] = i

		existing, err := s.passengers.GetByDocument(ctx, candidate.DocumentNumber)
		switch {
		case err == nil:
			if !existing.SamePerson(candidate) {
				return domain.NewBookingError(domain.CodeWrongPassengerData,
					fmt.Sprintf("passenger %s does not match the record on file", candidate.DocumentNumber), nil)
			}
			sg.passengers[i] = existing
		case errors.Is(err, domain.ErrNotFound):
			if err := validateNewPassenger(candidate, s.now()); err != nil {
				return err
			}
			if err := s.passengers.Stage(ctx, candidate); err != nil {
				return registrationError("stage passenger", err)
			}
			sg.passengerKeys = append(sg.passengerKeys, candidate.ID)
		default:
			return registrationError("look up passenger", err)
		}
	}

	for i, p := range sg.passengers {
		exists, err := s.links.Exists(ctx, sg.booking.ID, p.ID)
		if err != nil {
			return registrationError("check passenger link", err)
		}
		if exists {
			return domain.NewBookingError(domain.CodePassengerDuplication,
				fmt.Sprintf("passenger %s is already on booking %s", p.DocumentNumber, sg.booking.Code), nil)
		}

		link := &domain.PassengerLink{
			BookingID:   sg.booking.ID,
			PassengerID: p.ID,
			Position:    i,
			CarryOnKg:   sg.inputs[i].CarryOnKg,
			BaggageKg:   sg.inputs[i].BaggageKg,
		}
		if err := s.links.Stage(ctx, link); err != nil {
			return registrationError("stage passenger link", err)
		}
		sg.linkKeys = append(sg.linkKeys, link.ID)
	}

	if len(sg.linkKeys) != len(sg.passengers) {
		return domain.NewBookingError(domain.CodeBookingRegistration,
			fmt.Sprintf("staged %d links for %d passengers", len(sg.linkKeys), len(sg.passengers)), nil)
	}
	return nil
}

// commit makes the stores durable in the order bookings, passengers, links.
// When one fails, everything still pending is reverted and the stores that
// already committed are discarded in reverse order.
func (sg *saga) commit(ctx context.Context) error {
	s := sg.service
	steps := []commitStep{
		{
			store:   "bookings",
			commit:  func(ctx context.Context) error { return s.bookings.Commit(ctx, sg.bookingKeys) },
			discard: func(ctx context.Context) error { return s.bookings.Discard(ctx, sg.bookingKeys) },
		},
		{
			store:   "passengers",
			commit:  func(ctx context.Context) error { return s.passengers.Commit(ctx, sg.passengerKeys) },
			discard: func(ctx context.Context) error { return s.passengers.Discard(ctx, sg.passengerKeys) },
		},
		{
			store:   "passenger_links",
			commit:  func(ctx context.Context) error { return s.links.Commit(ctx, sg.linkKeys) },
			discard: func(ctx context.Context) error { return s.links.Discard(ctx, sg.linkKeys) },
		},
	}

	for i, step := range steps {
		if err := step.commit(ctx); err != nil {
			sg.revert(ctx)
			sg.compensate(ctx, steps[:i])
			return registrationError("commit "+step.store, err)
		}
	}
	return nil
}

func (sg *saga) revert(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	s := sg.service
	s.links.RevertPending(ctx, sg.linkKeys)
	s.passengers.RevertPending(ctx, sg.passengerKeys)
	s.bookings.RevertPending(ctx, sg.bookingKeys)
}

func (sg *saga) compensate(ctx context.Context, committed []commitStep) {
	ctx = context.WithoutCancel(ctx)
	for i := len(committed) - 1; i >= 0; i-- {
		if err := committed[i].discard(ctx); err != nil {
			sg.logger.WithError(err).WithField("store", committed[i].store).Error("failed to discard committed rows")
		}
	}
}

func (s *BookingService) publishCreated(ctx context.Context, booking *domain.Booking, log logrus.FieldLogger) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:       EventBookingCreated,
		BookingID:  booking.ID.String(),
		Code:       booking.Code,
		FlightID:   booking.FlightID,
		CustomerID: booking.CustomerID,
		Passengers: len(booking.Passengers),
		CreatedAt:  booking.CreatedAt,
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.Code, event); err != nil {
		log.WithError(err).WithField("booking_code", booking.Code).Warn("failed to publish booking event")
	}
}

func registrationError(step string, err error) error {
	return domain.NewBookingError(domain.CodeBookingRegistration, step, err)
}

// isNotFound classifies a collaborator failure by its outermost rpc error, so
// a not-found buried under a failed re-authentication does not count.
func isNotFound(err error) bool {
	var rpcErr *rpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.Kind == rpc.KindNotFound
	}
	return errors.Is(err, domain.ErrNotFound)
}

func outcomeOf(err error) string {
	if code := domain.CodeOf(err); code != "" {
		return string(code)
	}
	return "error"
}
