package authservice

import (
	"context"
	"time"

	"github.com/Black-And-White-Club/flashcard-frenzy/internal/session"
)

// Service defines the authentication service interface.
type Service interface {
	// Authenticate validates a bearer token and returns the caller it names.
	Authenticate(ctx context.Context, tokenString string) (session.Identity, error)

	// IssueToken mints an access token for identity. A zero ttl uses the
	// configured default.
	IssueToken(ctx context.Context, identity session.Identity, ttl time.Duration) (*TokenResponse, error)
}

// TokenResponse is a freshly minted access token.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}
