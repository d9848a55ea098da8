package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields of an admin token worth showing to the user. The
// remote API issues and verifies the token; the client only reads it.
type Claims struct {
	AdminID string `json:"id,omitempty"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Role    string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ParseClaims decodes a JWT without verifying its signature.
func ParseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	return claims, nil
}

// ExpiresAtTime returns the token expiry, or the zero time if it has none.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Expired reports whether the token carried an expiry that has passed.
func (c *Claims) Expired(now time.Time) bool {
	exp := c.ExpiresAtTime()
	return !exp.IsZero() && now.After(exp)
}
