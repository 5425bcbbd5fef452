package remote

import (
	"context"

	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/rpc"
	"github.com/sirupsen/logrus"
)

// ConnectorSource hands out connectors by collaborator name.
type ConnectorSource interface {
	Connector(service string) (*rpc.Connector, error)
}

type FlightCache interface {
	GetFlight(ctx context.Context, id int64) (*domain.Flight, error)
	SetFlight(ctx context.Context, flight *domain.Flight) error
}

type FlightsClient struct {
	connectors ConnectorSource
	cache      FlightCache
	logger     logrus.FieldLogger
}

// NewFlightsClient reads flights through cache when it is non-nil.
func NewFlightsClient(connectors ConnectorSource, cache FlightCache, logger logrus.FieldLogger) *FlightsClient {
	return &FlightsClient{connectors: connectors, cache: cache, logger: logger}
}

// GetFlight returns an rpc error of kind NotFound when the flight does not exist.
func (c *FlightsClient) GetFlight(ctx context.Context, id int64) (*domain.Flight, error) {
	if c.cache != nil {
		cached, err := c.cache.GetFlight(ctx, id)
		if err != nil {
			c.logger.WithError(err).WithField("flight_id", id).Warn("flight cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	conn, err := c.connectors.Connector(config.ServiceFlights)
	if err != nil {
		return nil, err
	}
	flight, err := rpc.Call[domain.Flight](ctx, conn, GetFlightRequest{ID: id})
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.SetFlight(ctx, &flight); err != nil {
			c.logger.WithError(err).WithField("flight_id", id).Warn("flight cache write failed")
		}
	}
	return &flight, nil
}
