package rpc

import (
	"encoding/json"
	"fmt"
)

// Request describes one remote operation: verb, route relative to the
// collaborator's base address and an optional JSON payload.
type Request interface {
	Method() string
	Route() string
	// Payload returns the value to serialize as the body, or nil for none.
	Payload() any
}

// Descriptor is a ready-made Request for ad-hoc calls.
type Descriptor struct {
	Verb string
	Path string
	Body any
}

func (d Descriptor) Method() string { return d.Verb }
func (d Descriptor) Route() string  { return d.Path }
func (d Descriptor) Payload() any   { return d.Body }

// Response is a successful (2xx) reply.
type Response struct {
	Status int
	Body   []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("rpc: empty response body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("rpc: decode response: %w", err)
	}
	return nil
}
