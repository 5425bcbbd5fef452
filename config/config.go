package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Collaborator service names used as keys of the services section.
const (
	ServiceFlights  = "flights"
	ServiceUsers    = "users"
	ServiceAuth     = "auth"
	ServiceBookings = "bookings"
)

type Config struct {
	HTTP     HTTPConfig               `yaml:"http"`
	GRPC     GRPCConfig               `yaml:"grpc"`
	Database DatabaseConfig           `yaml:"database"`
	Redis    RedisConfig              `yaml:"redis"`
	Kafka    KafkaConfig              `yaml:"kafka"`
	Booking  BookingConfig            `yaml:"booking"`
	Identity IdentityConfig           `yaml:"identity"`
	Services map[string]ServiceConfig `yaml:"services"`
	Logging  LoggingConfig            `yaml:"logging"`
	Tracing  TracingConfig            `yaml:"tracing"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	Migrate  bool   `yaml:"migrate"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// URL returns the database address in the pgx5:// form expected by the migrate driver.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("pgx5://%s:%s@%s:%d/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	FlightsCacheTTL      int  `yaml:"flights_cache_ttl_seconds"`
	CodeMaxAttempts      int  `yaml:"code_max_attempts"`
	LockFlights          bool `yaml:"lock_flights"`
	FlightLockTTLSeconds int  `yaml:"flight_lock_ttl_seconds"`
}

// IdentityConfig describes how this process authenticates against the auth collaborator.
type IdentityConfig struct {
	Name                  string `yaml:"name"`
	Credential            string `yaml:"credential"`
	CredentialSecretID    string `yaml:"credential_secret_id"`
	AWSRegion             string `yaml:"aws_region"`
	AuthenticateOnStart   bool   `yaml:"authenticate_on_start"`
	AuthenticationEnabled *bool  `yaml:"authentication_enabled"`
	TokenSigningKey       string `yaml:"token_signing_key"`
}

// Enabled reports whether authentication is turned on. It defaults to true.
func (i IdentityConfig) Enabled() bool {
	return i.AuthenticationEnabled == nil || *i.AuthenticationEnabled
}

type ServiceConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (s ServiceConfig) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TracingConfig struct {
	Endpoint       string `yaml:"endpoint"`
	ServiceName    string `yaml:"service_name"`
	ServiceVersion string `yaml:"service_version"`
	Environment    string `yaml:"environment"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML document, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Booking.CodeMaxAttempts <= 0 {
		c.Booking.CodeMaxAttempts = 32
	}
	if c.Booking.FlightLockTTLSeconds <= 0 {
		c.Booking.FlightLockTTLSeconds = 30
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Identity.Name == "" {
		c.Identity.Name = ServiceBookings
	}
}

// Validate checks that every collaborator the booking saga depends on is addressable.
func (c *Config) Validate() error {
	var errs []error
	for _, name := range []string{ServiceFlights, ServiceUsers, ServiceAuth} {
		svc, ok := c.Services[name]
		if !ok || svc.BaseURL == "" {
			errs = append(errs, fmt.Errorf("services.%s.base_url is required", name))
		}
	}
	return errors.Join(errs...)
}
