package scoredb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository reads what a scoreboard is derived from. Scores are never stored.
type Repository interface {
	MatchExists(ctx context.Context, db bun.IDB, matchID uuid.UUID) (bool, error)
	// ListMembers returns members in join order.
	ListMembers(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]MemberRow, error)
	// ListAttempts returns every attempt of the match ordered by created_at.
	ListAttempts(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]AttemptRow, error)
	// CountRounds returns the number of rounds persisted for the match.
	CountRounds(ctx context.Context, db bun.IDB, matchID uuid.UUID) (int, error)
}
