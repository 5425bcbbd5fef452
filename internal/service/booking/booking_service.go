package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultCodeAttempts = 32
	lockPollInterval    = 50 * time.Millisecond
)

type BookingUseCase interface {
	Book(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
}

type FlightDirectory interface {
	GetFlight(ctx context.Context, id int64) (*domain.Flight, error)
}

type CustomerDirectory interface {
	CustomerExists(ctx context.Context, id string) (bool, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// FlightLocker serializes sagas of one flight between the capacity check and commit.
type FlightLocker interface {
	AcquireFlightLock(ctx context.Context, flightID int64, ttl time.Duration) (string, error)
	ReleaseFlightLock(ctx context.Context, flightID int64, token string) error
}

type SagaObserver interface {
	ObserveSaga(outcome string, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveSaga(string, time.Duration) {}

type CreateBookingInput struct {
	FlightID   int64
	CustomerID string
	Passengers []PassengerInput
}

type PassengerInput struct {
	Name           string
	Surname        string
	MiddleName     string
	DocumentNumber string
	IssuingCountry string
	BirthDate      time.Time
	Gender         string
	Phone          string
	Email          string
	CarryOnKg      int
	BaggageKg      int
}

type BookingService struct {
	bookings   repository.BookingStore
	passengers repository.PassengerStore
	links      repository.PassengerLinkStore
	flights    FlightDirectory
	customers  CustomerDirectory

	producer     Producer
	bookingTopic string
	locker       FlightLocker
	lockTTL      time.Duration
	lockWait     time.Duration
	codeAttempts int
	newCode      func() (string, error)
	now          func() time.Time
	observer     SagaObserver
	tracer       trace.Tracer
	logger       logrus.FieldLogger
}

type BookingServiceOption func(*BookingService)

func WithProducer(producer Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = topic
	}
}

// WithFlightLock closes the window between the capacity check and commit
// for sagas of the same flight. Without it concurrent sagas may overbook.
func WithFlightLock(locker FlightLocker, ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.locker = locker
		s.lockTTL = ttl
		s.lockWait = ttl
	}
}

func WithCodeAttempts(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.codeAttempts = n
		}
	}
}

func WithCodeGenerator(gen func() (string, error)) BookingServiceOption {
	return func(s *BookingService) {
		s.newCode = gen
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithObserver(observer SagaObserver) BookingServiceOption {
	return func(s *BookingService) {
		s.observer = observer
	}
}

func WithLogger(logger logrus.FieldLogger) BookingServiceOption {
	return func(s *BookingService) {
		s.logger = logger
	}
}

func NewBookingService(
	bookings repository.BookingStore,
	passengers repository.PassengerStore,
	links repository.PassengerLinkStore,
	flights FlightDirectory,
	customers CustomerDirectory,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		passengers:   passengers,
		links:        links,
		flights:      flights,
		customers:    customers,
		codeAttempts: defaultCodeAttempts,
		newCode:      generateCode,
		now:          time.Now,
		observer:     nopObserver{},
		tracer:       otel.Tracer("github.com/Domenick1991/skybooking/internal/service/booking"),
		logger:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// GetBooking reads a committed booking together with its links and passengers.
func (s *BookingService) GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	links, err := s.links.ListByBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list passenger links: %w", err)
	}

	ids := make([]uuid.UUID, len(links))
	for i, l := range links {
		ids[i] = l.PassengerID
	}
	passengers, err := s.passengers.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load passengers: %w", err)
	}

	for i := range links {
		links[i].Passenger = passengers[links[i].PassengerID]
	}
	booking.Passengers = links
	return booking, nil
}

var _ BookingUseCase = (*BookingService)(nil)
