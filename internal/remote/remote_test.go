package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/auth"
	"github.com/Domenick1991/skybooking/internal/communication"
	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/rpc"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type staticTokens struct{}

func (staticTokens) CurrentToken() string                       { return "t" }
func (staticTokens) RequestAuthorization(context.Context) error { return nil }

type singleConnector struct {
	service string
	conn    *rpc.Connector
}

func (s singleConnector) Connector(service string) (*rpc.Connector, error) {
	if service != s.service {
		return nil, fmt.Errorf("unknown service %q", service)
	}
	return s.conn, nil
}

func serve(t *testing.T, service string, handler http.HandlerFunc) singleConnector {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return singleConnector{service: service, conn: rpc.NewConnector(service, srv.URL, staticTokens{})}
}

type MockFlightCache struct {
	mock.Mock
}

func (m *MockFlightCache) GetFlight(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightCache) SetFlight(ctx context.Context, flight *domain.Flight) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

func flightHandler(t *testing.T, calls *atomic.Int32, departure time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/api/flights/42" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.NoError(t, json.NewEncoder(w).Encode(domain.Flight{
			ID:            42,
			DepartureTime: departure,
			ArrivalTime:   departure.Add(2 * time.Hour),
			SeatCapacity:  2,
		}))
	}
}

func TestFlightsClient_GetFlight(t *testing.T) {
	var calls atomic.Int32
	departure := time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC)
	src := serve(t, "flights", flightHandler(t, &calls, departure))

	client := NewFlightsClient(src, nil, logrus.New())
	flight, err := client.GetFlight(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), flight.ID)
	assert.Equal(t, 2, flight.SeatCapacity)
	assert.True(t, flight.DepartureTime.Equal(departure))

	_, err = client.GetFlight(context.Background(), 7)
	assert.ErrorIs(t, err, rpc.ErrNotFound)
}

func TestFlightsClient_GetFlight_CacheHit(t *testing.T) {
	var calls atomic.Int32
	src := serve(t, "flights", flightHandler(t, &calls, time.Now()))

	cached := &domain.Flight{ID: 42, SeatCapacity: 9}
	mockCache := &MockFlightCache{}
	mockCache.On("GetFlight", mock.Anything, int64(42)).Return(cached, nil).Once()

	client := NewFlightsClient(src, mockCache, logrus.New())
	flight, err := client.GetFlight(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, cached, flight)
	assert.Equal(t, int32(0), calls.Load())
	mockCache.AssertExpectations(t)
}

func TestFlightsClient_GetFlight_CacheMissAndFailureFallThrough(t *testing.T) {
	var calls atomic.Int32
	src := serve(t, "flights", flightHandler(t, &calls, time.Now()))

	mockCache := &MockFlightCache{}
	mockCache.On("GetFlight", mock.Anything, int64(42)).Return(nil, errors.New("redis down")).Once()
	mockCache.On("SetFlight", mock.Anything, mock.AnythingOfType("*domain.Flight")).Return(errors.New("redis down")).Once()

	client := NewFlightsClient(src, mockCache, logrus.New())
	flight, err := client.GetFlight(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), flight.ID)
	assert.Equal(t, int32(1), calls.Load())
	mockCache.AssertExpectations(t)
}

func TestUsersClient_CustomerExists(t *testing.T) {
	src := serve(t, "users", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users/U1/exists":
			_, _ = w.Write([]byte(`{"exists":true}`))
		case "/api/users/U2/exists":
			_, _ = w.Write([]byte(`{"exists":false}`))
		case "/api/users/U3/exists":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	client := NewUsersClient(src)
	ctx := context.Background()

	ok, err := client.CustomerExists(ctx, "U1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.CustomerExists(ctx, "U2")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = client.CustomerExists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = client.CustomerExists(ctx, "U3")
	assert.ErrorIs(t, err, rpc.ErrRequestFailed)
}

func TestClients_ReauthenticationFailure(t *testing.T) {
	for _, authStatus := range []int{http.StatusNotFound, http.StatusBadRequest} {
		t.Run(http.StatusText(authStatus), func(t *testing.T) {
			authSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(authStatus)
			}))
			defer authSrv.Close()
			collaborator := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}))
			defer collaborator.Close()

			logger := logrus.New()
			logger.SetLevel(logrus.PanicLevel)
			comm, err := communication.New(config.IdentityConfig{Name: "bookings"}, "pw", map[string]config.ServiceConfig{
				config.ServiceAuth:    {BaseURL: authSrv.URL},
				config.ServiceFlights: {BaseURL: collaborator.URL},
				config.ServiceUsers:   {BaseURL: collaborator.URL},
			}, communication.WithLogger(logger))
			require.NoError(t, err)
			ctx := context.Background()

			exists, err := NewUsersClient(comm).CustomerExists(ctx, "U1")
			require.Error(t, err, "a failed re-authentication is not a missing customer")
			assert.False(t, exists)
			assert.ErrorIs(t, err, auth.ErrAuthenticationFailed)
			assert.Equal(t, rpc.KindAuthentication, rpc.KindOf(err))

			_, err = NewFlightsClient(comm, nil, logger).GetFlight(ctx, 42)
			require.Error(t, err)
			assert.NotErrorIs(t, err, rpc.ErrNotFound)
			assert.NotErrorIs(t, err, rpc.ErrBadRequest)
			assert.Equal(t, rpc.KindAuthentication, rpc.KindOf(err))
			assert.False(t, comm.IsAuthenticated())
		})
	}
}

func TestBookingsClient(t *testing.T) {
	id := uuid.New()
	src := serve(t, "bookings", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/bookings":
			var payload BookingPayload
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, int64(42), payload.FlightID)
			assert.Len(t, payload.Passengers, 1)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(BookingView{ID: id, Code: "ABCDE12345", FlightID: payload.FlightID})
		case r.Method == http.MethodGet && r.URL.Path == "/api/bookings/"+id.String():
			_ = json.NewEncoder(w).Encode(BookingView{ID: id, Code: "ABCDE12345"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	client := NewBookingsClient(src)
	created, err := client.CreateBooking(context.Background(), BookingPayload{
		FlightID:   42,
		CustomerID: "U1",
		Passengers: []PassengerPayload{{Name: "Ada", DocumentNumber: "X1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ABCDE12345", created.Code)

	got, err := client.GetBooking(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	_, err = client.GetBooking(context.Background(), uuid.New())
	assert.ErrorIs(t, err, rpc.ErrNotFound)
}

func TestRequests(t *testing.T) {
	assert.Equal(t, "/api/flights/42", GetFlightRequest{ID: 42}.Route())
	assert.Equal(t, "/api/users/a%2Fb/exists", UserExistsRequest{ID: "a/b"}.Route())
	assert.Nil(t, GetFlightRequest{}.Payload())
	assert.Equal(t, http.MethodPost, CreateBookingRequest{}.Method())
}
