// Package authdomain holds the claims carried by an access token.
package authdomain

import (
	"time"

	"github.com/Black-And-White-Club/flashcard-frenzy/internal/session"
)

// Claims is the verified content of an access token.
type Claims struct {
	UserID    string
	Email     string
	Metadata  map[string]string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// IsExpired checks if the claims have expired.
func (c *Claims) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// Identity is the caller the claims authenticate.
func (c *Claims) Identity() session.Identity {
	return session.Identity{UserID: c.UserID, Email: c.Email, Metadata: c.Metadata}
}

// ClaimsFor builds the claims of a new token for identity.
func ClaimsFor(identity session.Identity) *Claims {
	return &Claims{UserID: identity.UserID, Email: identity.Email, Metadata: identity.Metadata}
}
