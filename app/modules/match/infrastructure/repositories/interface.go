package matchdb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for match, membership, round and attempt
// persistence. A nil db runs against the repository's own connection.
type Repository interface {
	CreateMatch(ctx context.Context, db bun.IDB, m *Match) error
	GetMatch(ctx context.Context, db bun.IDB, id uuid.UUID) (*Match, error)
	// LockMatch takes a row lock on the match for the rest of the transaction.
	LockMatch(ctx context.Context, db bun.IDB, id uuid.UUID) error

	// AddPlayer inserts membership unless it exists and reports whether it did.
	AddPlayer(ctx context.Context, db bun.IDB, mp *MatchPlayer) (bool, error)
	IsMember(ctx context.Context, db bun.IDB, matchID, playerID uuid.UUID) (bool, error)
	// ListPlayers returns members in join order.
	ListPlayers(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]MatchPlayer, error)

	// ListRounds returns the rounds of a match in creation order.
	ListRounds(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]Round, error)
	InsertRound(ctx context.Context, db bun.IDB, r *Round) error
	InsertAttempt(ctx context.Context, db bun.IDB, a *RoundAttempt) error
	// MarkRoundAnswered claims the round for playerID only if nobody has.
	// It returns ErrNoRowsAffected when the round was already claimed.
	MarkRoundAnswered(ctx context.Context, db bun.IDB, roundID, playerID uuid.UUID, isCorrect bool, at time.Time) error

	// DeleteRoundsForFlashcard removes every round using the flashcard and
	// their attempts.
	DeleteRoundsForFlashcard(ctx context.Context, db bun.IDB, flashcardID uuid.UUID) (attempts int, rounds int, err error)
}
