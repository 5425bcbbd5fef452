package booking

import (
	"context"
	"sync"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockFlightDirectory struct {
	mock.Mock
}

func (m *MockFlightDirectory) GetFlight(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

type MockCustomerDirectory struct {
	mock.Mock
}

func (m *MockCustomerDirectory) CustomerExists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type MockFlightLocker struct {
	mock.Mock
}

func (m *MockFlightLocker) AcquireFlightLock(ctx context.Context, flightID int64, ttl time.Duration) (string, error) {
	args := m.Called(ctx, flightID, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockFlightLocker) ReleaseFlightLock(ctx context.Context, flightID int64, token string) error {
	args := m.Called(ctx, flightID, token)
	return args.Error(0)
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) ObserveSaga(outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}
