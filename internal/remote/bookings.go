package remote

import (
	"context"

	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/rpc"
	"github.com/google/uuid"
)

// BookingsClient calls the bookings service, as the front end and operator tools do.
type BookingsClient struct {
	connectors ConnectorSource
}

func NewBookingsClient(connectors ConnectorSource) *BookingsClient {
	return &BookingsClient{connectors: connectors}
}

func (c *BookingsClient) CreateBooking(ctx context.Context, booking BookingPayload) (*BookingView, error) {
	conn, err := c.connectors.Connector(config.ServiceBookings)
	if err != nil {
		return nil, err
	}
	view, err := rpc.Call[BookingView](ctx, conn, CreateBookingRequest{Booking: booking})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *BookingsClient) GetBooking(ctx context.Context, id uuid.UUID) (*BookingView, error) {
	conn, err := c.connectors.Connector(config.ServiceBookings)
	if err != nil {
		return nil, err
	}
	view, err := rpc.Call[BookingView](ctx, conn, GetBookingRequest{ID: id})
	if err != nil {
		return nil, err
	}
	return &view, nil
}
