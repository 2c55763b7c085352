package scoredb

import (
	"time"

	"github.com/google/uuid"
)

// MemberRow is a match member with its display name.
type MemberRow struct {
	PlayerID uuid.UUID `bun:"player_id"`
	Name     string    `bun:"name"`
	JoinedAt time.Time `bun:"joined_at"`
}

// AttemptRow is one submitted answer in a match. Name is empty when the
// player row no longer exists.
type AttemptRow struct {
	PlayerID  uuid.UUID `bun:"player_id"`
	Name      string    `bun:"name"`
	IsCorrect bool      `bun:"is_correct"`
	CreatedAt time.Time `bun:"created_at"`
}
