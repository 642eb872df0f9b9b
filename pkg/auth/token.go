package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken is returned when the bearer token is not a JWT. The Tarabaho
// API is free to issue opaque tokens, so callers treat this as "no expiry known".
var ErrOpaqueToken = errors.New("token is not a JWT")

// TokenInfo holds the claims the client cares about.
type TokenInfo struct {
	Subject   string
	Role      string
	ExpiresAt time.Time // zero when the token carries no exp claim
}

// Expired reports whether the token has an exp claim in the past.
func (i TokenInfo) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// Inspect reads the claims of a bearer token without verifying its signature.
// Verification belongs to the API that issued it; the client only needs exp
// to decide whether the stored session is still worth sending.
func Inspect(tokenString string) (TokenInfo, error) {
	var info TokenInfo

	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(tokenString, claims)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return info, ErrOpaqueToken
		}
		return info, err
	}

	info.Subject, _ = claims.GetSubject()
	if role, ok := claims["role"].(string); ok {
		info.Role = role
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return info, err
	}
	if exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, nil
}
