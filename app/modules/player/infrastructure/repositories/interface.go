package playerdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for player persistence.
type Repository interface {
	// GetFirstByUserID returns the oldest player for userID. Legacy duplicates
	// resolve deterministically by (created_at, id).
	GetFirstByUserID(ctx context.Context, db bun.IDB, userID string) (*Player, error)

	// InsertIfAbsent inserts p unless a player with the same user_id exists.
	// It reports whether a row was written.
	InsertIfAbsent(ctx context.Context, db bun.IDB, p *Player) (bool, error)

	// GetByIDs loads players by id. Missing ids are skipped.
	GetByIDs(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]Player, error)

	// UpdateName changes the stored display name.
	UpdateName(ctx context.Context, db bun.IDB, id uuid.UUID, name string) error
}
