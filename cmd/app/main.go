package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/skybooking/api"
	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/bootstrap"
	"github.com/Domenick1991/skybooking/internal/cache"
	"github.com/Domenick1991/skybooking/internal/communication"
	"github.com/Domenick1991/skybooking/internal/kafka"
	"github.com/Domenick1991/skybooking/internal/logger"
	"github.com/Domenick1991/skybooking/internal/metrics"
	"github.com/Domenick1991/skybooking/internal/observability"
	"github.com/Domenick1991/skybooking/internal/remote"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/Domenick1991/skybooking/internal/repository/memory"
	"github.com/Domenick1991/skybooking/internal/secrets"
	"github.com/Domenick1991/skybooking/internal/service/booking"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

type stores struct {
	bookings   repository.BookingStore
	passengers repository.PassengerStore
	links      repository.PassengerLinkStore
	close      func()
}

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.WithError(err).Fatal("bookings service stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logrus.Logger) error {
	shutdownTracer, err := observability.InitTracer(ctx, cfg.Tracing, logg)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(shutdownCtx)
	}()

	credential, err := secrets.IdentityCredential(ctx, cfg.Identity)
	if err != nil {
		return err
	}

	comm, err := communication.New(cfg.Identity, credential, cfg.Services,
		communication.WithLogger(logg),
		communication.WithObserver(metrics.PrometheusMetrics{}),
	)
	if err != nil {
		return fmt.Errorf("build communicator: %w", err)
	}
	if err := comm.Start(ctx, cfg.Identity.AuthenticateOnStart); err != nil {
		return fmt.Errorf("authenticate %s: %w", cfg.Identity.Name, err)
	}

	st, err := openStores(ctx, cfg.Database, logg)
	if err != nil {
		return err
	}
	defer st.close()

	opts := []booking.BookingServiceOption{
		booking.WithLogger(logg),
		booking.WithObserver(metrics.PrometheusMetrics{}),
		booking.WithCodeAttempts(cfg.Booking.CodeMaxAttempts),
	}

	var flightCache remote.FlightCache
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.FlightsCacheTTL)*time.Second)
		defer redisCache.Close()
		flightCache = redisCache
		if cfg.Booking.LockFlights {
			opts = append(opts, booking.WithFlightLock(redisCache, time.Duration(cfg.Booking.FlightLockTTLSeconds)*time.Second))
		}
	} else if cfg.Booking.LockFlights {
		logg.Warn("booking.lock_flights needs redis, flights stay unlocked")
	}

	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.BookingEventsTopic != "" {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, logg)
		defer producer.Close()
		opts = append(opts, booking.WithProducer(producer, cfg.Kafka.BookingEventsTopic))
	}

	flights := remote.NewFlightsClient(comm, flightCache, logg)
	users := remote.NewUsersClient(comm)
	bookingService := booking.NewBookingService(st.bookings, st.passengers, st.links, flights, users, opts...)

	router := bootstrap.NewRouter(cfg.HTTP, bootstrap.Handlers{
		Bookings: api.NewBookingHandler(bookingService),
		Flights:  api.NewFlightHandler(flights),
	}, logg)

	return bootstrap.NewServers(cfg, router, logg).Run(ctx, cfg.GRPC.Address)
}

// openStores uses Postgres when a database host is configured and falls back
// to in-process stores otherwise.
func openStores(ctx context.Context, cfg config.DatabaseConfig, logg logrus.FieldLogger) (*stores, error) {
	if cfg.Host == "" {
		logg.Warn("database.host not set, bookings are kept in memory")
		bookings := memory.NewBookingStore()
		passengers := memory.NewPassengerStore()
		return &stores{
			bookings:   bookings,
			passengers: passengers,
			links:      memory.NewPassengerLinkStore(bookings, passengers),
			close:      func() {},
		}, nil
	}

	if cfg.Migrate {
		if err := repository.Migrate(cfg.URL()); err != nil {
			return nil, err
		}
	}

	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &stores{
		bookings:   repository.NewBookingStore(pool),
		passengers: repository.NewPassengerStore(pool),
		links:      repository.NewPassengerLinkStore(pool),
		close:      pool.Close,
	}, nil
}
