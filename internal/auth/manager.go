package auth

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Domenick1991/skybooking/internal/rpc"
	"github.com/sirupsen/logrus"
)

// ErrAuthenticationFailed wraps every failure of the authenticate round trip.
// It matches the rpc.KindAuthentication error a connector returns when
// re-authentication fails mid-call.
var ErrAuthenticationFailed = rpc.ErrAuthentication

// session is swapped wholesale; it is never mutated after being stored.
type session struct {
	token         Token
	authenticated bool
}

// Manager owns the bearer token of one calling identity.
type Manager struct {
	identity   string
	credential string
	signingKey []byte
	sender     rpc.Sender
	enabled    atomic.Bool
	state      atomic.Pointer[session]
	now        func() time.Time
	logger     logrus.FieldLogger
}

type ManagerOption func(*Manager)

// WithSigningKey enables HS256 verification of issued tokens.
func WithSigningKey(key []byte) ManagerOption {
	return func(m *Manager) {
		m.signingKey = key
	}
}

func WithManagerLogger(logger logrus.FieldLogger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// WithAuthentication sets the initial enabled flag. Enabled by default.
func WithAuthentication(enabled bool) ManagerOption {
	return func(m *Manager) {
		m.enabled.Store(enabled)
	}
}

// NewManager builds a manager that authenticates through sender, which must
// point at the auth collaborator.
func NewManager(identity, credential string, sender rpc.Sender, opts ...ManagerOption) *Manager {
	m := &Manager{
		identity:   identity,
		credential: credential,
		sender:     sender,
		now:        time.Now,
		logger:     logrus.StandardLogger(),
	}
	m.enabled.Store(true)
	m.state.Store(&session{})
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Authorize obtains a new token. Concurrent calls are not serialized; the
// last successful one wins.
func (m *Manager) Authorize(ctx context.Context) error {
	if !m.enabled.Load() {
		m.state.Store(&session{authenticated: true})
		return nil
	}

	resp, err := rpc.Call[authenticateResponse](ctx, m.sender, AuthenticateRequest{
		Identity:   m.identity,
		Credential: m.credential,
	})
	if err != nil {
		return m.fail(err)
	}
	if resp.Token == "" {
		return m.fail(errors.New("auth service returned an empty token"))
	}

	tok, err := inspectToken(resp.Token, m.signingKey)
	if err != nil {
		return m.fail(err)
	}
	if tok.Expired(m.now()) {
		return m.fail(fmt.Errorf("token expired at %s", tok.Expiry.Format(time.RFC3339)))
	}

	m.state.Store(&session{token: tok, authenticated: true})
	m.logger.WithFields(logrus.Fields{
		"identity": m.identity,
		"expiry":   tok.Expiry,
	}).Info("authenticated")
	return nil
}

func (m *Manager) fail(cause error) error {
	m.state.Store(&session{})
	m.logger.WithError(cause).WithField("identity", m.identity).Error("authentication failed")
	return fmt.Errorf("%w: %w", ErrAuthenticationFailed, cause)
}

// Token returns the held token without contacting the auth service.
func (m *Manager) Token() string {
	return m.state.Load().token.Value
}

// Expiry returns the expiry of the held token, zero when unknown.
func (m *Manager) Expiry() time.Time {
	return m.state.Load().token.Expiry
}

func (m *Manager) IsAuthenticated() bool {
	return m.state.Load().authenticated
}

// SetEnabled toggles whether Authorize performs the round trip. The held token is kept.
func (m *Manager) SetEnabled(enabled bool) {
	m.enabled.Store(enabled)
}

func (m *Manager) Enabled() bool {
	return m.enabled.Load()
}
