package playerservice

import (
	"context"

	"github.com/Black-And-White-Club/flashcard-frenzy/internal/session"
	"github.com/google/uuid"
)

// Service resolves authenticated callers to players.
type Service interface {
	// ResolvePlayer returns the player for identity, creating it on first use.
	ResolvePlayer(ctx context.Context, identity session.Identity) (*Profile, error)

	// ResolvePlayerID is ResolvePlayer reduced to the player id.
	ResolvePlayerID(ctx context.Context, identity session.Identity) (uuid.UUID, error)

	// GetProfiles returns the players with the given ids keyed by id.
	GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Profile, error)

	// Rename sets the display name of the caller's player.
	Rename(ctx context.Context, identity session.Identity, name string) (*Profile, error)
}
