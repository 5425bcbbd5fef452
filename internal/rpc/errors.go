package rpc

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies the outcome of a failed call.
type Kind int

const (
	KindNone Kind = iota
	KindCommunication
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindBadRequest
	KindRequestFailed
	// KindAuthentication is a call abandoned because this process could not
	// obtain a token. The collaborator never answered it.
	KindAuthentication
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "ok"
	case KindCommunication:
		return "communication_failure"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindRequestFailed:
		return "request_failed"
	case KindAuthentication:
		return "authentication_failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Sentinels for errors.Is matching. They compare by Kind only.
var (
	ErrCommunication   = &Error{Kind: KindCommunication}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrForbidden       = &Error{Kind: KindForbidden}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrBadRequest      = &Error{Kind: KindBadRequest}
	ErrRequestFailed   = &Error{Kind: KindRequestFailed}
	ErrAuthentication  = &Error{Kind: KindAuthentication}
)

// Error is a failed call to a collaborator service.
type Error struct {
	Kind    Kind
	Service string
	Method  string
	Route   string
	Status  int
	Body    string
	Err     error
}

func (e *Error) Error() string {
	target := e.Service
	if e.Route != "" {
		target = fmt.Sprintf("%s %s%s", e.Method, e.Service, e.Route)
	}
	switch e.Kind {
	case KindAuthentication:
		if e.Err == nil {
			return "authentication failed"
		}
		return fmt.Sprintf("rpc: %s abandoned, authentication failed: %v", target, e.Err)
	case KindCommunication:
		return fmt.Sprintf("rpc: communication with %s failed: %v", target, e.Err)
	case KindRequestFailed:
		return fmt.Sprintf("rpc: %s failed with status %d: %s", target, e.Status, e.Body)
	default:
		return fmt.Sprintf("rpc: %s: %s", target, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

// KindOf returns the Kind of the outermost *Error in err's chain, KindNone for nil,
// and KindRequestFailed for errors that did not come from a Connector.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindRequestFailed
}

// kindForStatus maps a non-success HTTP status onto the taxonomy.
func kindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthenticated
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest:
		return KindBadRequest
	default:
		return KindRequestFailed
	}
}
