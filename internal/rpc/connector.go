package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const maxResponseBody = 4 << 20

// TokenSource supplies the bearer token attached to outgoing calls and
// refreshes it when a collaborator rejects the current one.
type TokenSource interface {
	CurrentToken() string
	RequestAuthorization(ctx context.Context) error
}

// Sender is anything that can deliver a Request. *Connector satisfies it.
type Sender interface {
	Send(ctx context.Context, req Request) (*Response, error)
}

// Observer receives call outcomes, typically to feed metrics.
type Observer interface {
	ObserveCall(service string, kind Kind, elapsed time.Duration)
	ObserveReauthentication(service string)
}

type nopObserver struct{}

func (nopObserver) ObserveCall(string, Kind, time.Duration) {}
func (nopObserver) ObserveReauthentication(string)          {}

// Connector sends requests to one named collaborator service.
type Connector struct {
	service        string
	baseURL        string
	client         *http.Client
	tokens         TokenSource
	reauthenticate bool
	observer       Observer
	logger         logrus.FieldLogger
}

type Option func(*Connector)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Connector) {
		c.client = client
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Connector) {
		c.logger = logger
	}
}

func WithObserver(observer Observer) Option {
	return func(c *Connector) {
		c.observer = observer
	}
}

// WithoutReauthentication disables the retry after 401. The connector used
// by the authentication round trip itself is built this way.
func WithoutReauthentication() Option {
	return func(c *Connector) {
		c.reauthenticate = false
	}
}

func NewConnector(service, baseURL string, tokens TokenSource, opts ...Option) *Connector {
	c := &Connector{
		service:        service,
		baseURL:        strings.TrimRight(baseURL, "/"),
		client:         &http.Client{Timeout: 10 * time.Second},
		tokens:         tokens,
		reauthenticate: true,
		observer:       nopObserver{},
		logger:         logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithField("service", service)
	return c
}

func (c *Connector) Service() string {
	return c.service
}

func (c *Connector) BaseURL() string {
	return c.baseURL
}

// Send performs the call. A 401 on the first attempt triggers one
// re-authentication and one resend with the refreshed token; any other
// non-2xx status, or a second failure, becomes an *Error.
func (c *Connector) Send(ctx context.Context, req Request) (*Response, error) {
	payload, err := encodePayload(req.Payload())
	if err != nil {
		return nil, fmt.Errorf("rpc: encode payload for %s %s: %w", c.service, req.Route(), err)
	}

	start := time.Now()
	reauthenticated := false
	for {
		status, body, err := c.attempt(ctx, req, payload)
		if err != nil {
			c.observer.ObserveCall(c.service, KindCommunication, time.Since(start))
			return nil, &Error{
				Kind:    KindCommunication,
				Service: c.service,
				Method:  req.Method(),
				Route:   req.Route(),
				Err:     err,
			}
		}

		if status >= 200 && status < 300 {
			c.observer.ObserveCall(c.service, KindNone, time.Since(start))
			return &Response{Status: status, Body: body}, nil
		}

		if status == http.StatusUnauthorized && c.reauthenticate && !reauthenticated {
			reauthenticated = true
			c.logger.WithField("route", req.Route()).Warn("collaborator rejected token, re-authenticating")
			c.observer.ObserveReauthentication(c.service)
			if err := c.tokens.RequestAuthorization(ctx); err != nil {
				c.observer.ObserveCall(c.service, KindAuthentication, time.Since(start))
				return nil, authenticationError(c.service, req, err)
			}
			continue
		}

		kind := kindForStatus(status)
		c.observer.ObserveCall(c.service, kind, time.Since(start))
		return nil, &Error{
			Kind:    kind,
			Service: c.service,
			Method:  req.Method(),
			Route:   req.Route(),
			Status:  status,
			Body:    string(body),
		}
	}
}

// attempt builds a fresh *http.Request every time; request bodies are single use.
func (c *Connector) attempt(ctx context.Context, req Request, payload []byte) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method(), c.baseURL+req.Route(), body)
	if err != nil {
		return 0, nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.CurrentToken(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return 0, nil, fmt.Errorf("read response body: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"method": req.Method(),
		"route":  req.Route(),
		"status": resp.StatusCode,
	}).Debug("collaborator call")

	return resp.StatusCode, data, nil
}

// authenticationError reports a failed re-authentication. The cause is kept
// as text only: its chain holds the auth service's own *Error, and a 404 or
// 400 from there must not read as this collaborator's answer.
func authenticationError(service string, req Request, cause error) *Error {
	return &Error{
		Kind:    KindAuthentication,
		Service: service,
		Method:  req.Method(),
		Route:   req.Route(),
		Err:     errors.New(cause.Error()),
	}
}

func encodePayload(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Call sends req and decodes the success body into T.
func Call[T any](ctx context.Context, s Sender, req Request) (T, error) {
	var out T
	resp, err := s.Send(ctx, req)
	if err != nil {
		return out, err
	}
	if err := resp.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

var _ Sender = (*Connector)(nil)
