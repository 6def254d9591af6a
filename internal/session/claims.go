package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the parts of the backend access token the console reads.
type Claims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time // zero when the token carries no exp
}

// ClaimsFromToken decodes raw without verifying the signature.  The
// backend signs and verifies its tokens; the console only needs the
// identity and the expiry to size the cache lifetime.
func ClaimsFromToken(raw string) (Claims, error) {
	if raw == "" {
		return Claims{}, errors.New("empty token")
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return Claims{}, fmt.Errorf("parse access token: %w", err)
	}
	var out Claims
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
