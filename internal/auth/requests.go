package auth

import "net/http"

// AuthenticateRequest exchanges a service identity and credential for a bearer token.
type AuthenticateRequest struct {
	Identity   string `json:"identity"`
	Credential string `json:"credential"`
}

func (AuthenticateRequest) Method() string { return http.MethodPost }
func (AuthenticateRequest) Route() string  { return "/api/auth/authenticate" }

func (r AuthenticateRequest) Payload() any { return r }

type authenticateResponse struct {
	Token string `json:"token"`
}
