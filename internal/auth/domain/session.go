package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidPassword   = errors.New("incorrect password")
	ErrInvalidToken      = errors.New("invalid or expired token")
	ErrAuthNotConfigured = errors.New("login is not configured")
)

// Session is the identity carried by an access token. FLUX has a single shared
// password, so a session is not tied to a user.
type Session struct {
	ID        string    `json:"id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
