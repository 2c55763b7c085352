package authhandlers

import (
	"context"
	"time"

	authservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/auth/application"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/session"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	trace []string

	AuthenticateFunc func(ctx context.Context, tokenString string) (session.Identity, error)
	IssueTokenFunc   func(ctx context.Context, identity session.Identity, ttl time.Duration) (*authservice.TokenResponse, error)
}

func (f *FakeService) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeService) Trace() []string { return f.trace }

func (f *FakeService) Authenticate(ctx context.Context, tokenString string) (session.Identity, error) {
	f.record("Authenticate")
	if f.AuthenticateFunc != nil {
		return f.AuthenticateFunc(ctx, tokenString)
	}
	if tokenString == "" {
		return session.Identity{}, authservice.ErrMissingToken
	}
	return session.Identity{UserID: "user-" + tokenString}, nil
}

func (f *FakeService) IssueToken(ctx context.Context, identity session.Identity, ttl time.Duration) (*authservice.TokenResponse, error) {
	f.record("IssueToken")
	if f.IssueTokenFunc != nil {
		return f.IssueTokenFunc(ctx, identity, ttl)
	}
	return &authservice.TokenResponse{AccessToken: "token-" + identity.UserID, TokenType: "Bearer"}, nil
}

var _ authservice.Service = (*FakeService)(nil)
