package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the exp claim of an ID token without verifying its
// signature. A token without exp yields the zero time.
func TokenExpiry(idToken string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return time.Time{}, fmt.Errorf("parse id token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("id token exp: %w", err)
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}

// expiresAt prefers the token's own exp claim and falls back to now plus the
// lifetime reported alongside it.
func expiresAt(idToken string, expiresIn int64, now time.Time) time.Time {
	if t, err := TokenExpiry(idToken); err == nil && !t.IsZero() {
		return t
	}
	if expiresIn > 0 {
		return now.Add(time.Duration(expiresIn) * time.Second)
	}
	return time.Time{}
}
