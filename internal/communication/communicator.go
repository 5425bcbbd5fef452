package communication

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/auth"
	"github.com/Domenick1991/skybooking/internal/rpc"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Communicator is the process-wide entry point for calls to collaborator
// services. It owns one Connector per collaborator and the Authentication
// Manager for this process's identity. Build it once and pass it around.
type Communicator struct {
	manager    *auth.Manager
	connectors map[string]*rpc.Connector
	logger     logrus.FieldLogger
}

type settings struct {
	logger     logrus.FieldLogger
	observer   rpc.Observer
	transport  http.RoundTripper
	managerOpt []auth.ManagerOption
}

type Option func(*settings)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

func WithObserver(observer rpc.Observer) Option {
	return func(s *settings) {
		s.observer = observer
	}
}

// WithTransport replaces the HTTP transport shared by all connectors.
func WithTransport(rt http.RoundTripper) Option {
	return func(s *settings) {
		s.transport = rt
	}
}

func WithManagerOptions(opts ...auth.ManagerOption) Option {
	return func(s *settings) {
		s.managerOpt = append(s.managerOpt, opts...)
	}
}

// New builds a Communicator with one connector per configured service. The
// auth service must be present; its connector never re-authenticates.
func New(identity config.IdentityConfig, credential string, services map[string]config.ServiceConfig, opts ...Option) (*Communicator, error) {
	s := settings{
		logger:    logrus.StandardLogger(),
		transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	for _, opt := range opts {
		opt(&s)
	}

	if _, ok := services[config.ServiceAuth]; !ok {
		return nil, fmt.Errorf("communication: no %q service configured", config.ServiceAuth)
	}

	c := &Communicator{
		connectors: make(map[string]*rpc.Connector, len(services)),
		logger:     s.logger,
	}

	for name, svc := range services {
		connOpts := []rpc.Option{
			rpc.WithHTTPClient(&http.Client{Timeout: svc.Timeout(), Transport: s.transport}),
			rpc.WithLogger(s.logger),
		}
		if s.observer != nil {
			connOpts = append(connOpts, rpc.WithObserver(s.observer))
		}
		if name == config.ServiceAuth {
			connOpts = append(connOpts, rpc.WithoutReauthentication())
		}
		c.connectors[name] = rpc.NewConnector(name, svc.BaseURL, c, connOpts...)
	}

	managerOpts := append([]auth.ManagerOption{
		auth.WithAuthentication(identity.Enabled()),
		auth.WithManagerLogger(s.logger),
	}, s.managerOpt...)
	if identity.TokenSigningKey != "" {
		managerOpts = append(managerOpts, auth.WithSigningKey([]byte(identity.TokenSigningKey)))
	}
	c.manager = auth.NewManager(identity.Name, credential, c.connectors[config.ServiceAuth], managerOpts...)

	return c, nil
}

// Start authenticates immediately when eager is set; otherwise the first 401
// from a collaborator triggers authentication.
func (c *Communicator) Start(ctx context.Context, eager bool) error {
	if !eager {
		c.logger.Info("authentication deferred until first rejection")
		return nil
	}
	return c.RequestAuthorization(ctx)
}

// RequestAuthorization obtains a fresh token for this process.
func (c *Communicator) RequestAuthorization(ctx context.Context) error {
	return c.manager.Authorize(ctx)
}

func (c *Communicator) IsAuthenticated() bool {
	return c.manager.IsAuthenticated()
}

// CurrentToken is read by connectors on every attempt.
func (c *Communicator) CurrentToken() string {
	return c.manager.Token()
}

// SetAuthenticationEnabled toggles the authenticate round trip at runtime.
func (c *Communicator) SetAuthenticationEnabled(enabled bool) {
	c.manager.SetEnabled(enabled)
}

func (c *Communicator) Manager() *auth.Manager {
	return c.manager
}

// Connector returns the connector for a named collaborator.
func (c *Communicator) Connector(service string) (*rpc.Connector, error) {
	conn, ok := c.connectors[service]
	if !ok {
		return nil, fmt.Errorf("communication: unknown service %q", service)
	}
	return conn, nil
}

// Services lists the configured collaborator names in sorted order.
func (c *Communicator) Services() []string {
	names := make([]string, 0, len(c.connectors))
	for name := range c.connectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var _ rpc.TokenSource = (*Communicator)(nil)
