package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token is an opaque bearer credential. Expiry is only known when the
// auth service issues JWTs carrying an exp claim.
type Token struct {
	Value  string
	Expiry time.Time
}

// Expired reports whether a known expiry has passed. Opaque tokens never expire client side.
func (t Token) Expired(now time.Time) bool {
	return !t.Expiry.IsZero() && !now.Before(t.Expiry)
}

var errTokenRejected = errors.New("token failed verification")

// inspectToken reads the expiry of a received token. With a signing key the
// HS256 signature is verified and failure is an error; without one the claims
// are read unverified and tokens that are not JWTs are accepted as opaque.
func inspectToken(raw string, signingKey []byte) (Token, error) {
	tok := Token{Value: raw}
	claims := &jwt.RegisteredClaims{}

	if len(signingKey) > 0 {
		_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			return signingKey, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			return Token{}, fmt.Errorf("%w: %w", errTokenRejected, err)
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
			return tok, nil
		}
	}

	if claims.ExpiresAt != nil {
		tok.Expiry = claims.ExpiresAt.Time
	}
	return tok, nil
}
