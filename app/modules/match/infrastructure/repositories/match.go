package matchdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new match repository.
func NewRepository(db bun.IDB) *Impl {
	return &Impl{db: db}
}

var _ Repository = (*Impl)(nil)

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) CreateMatch(ctx context.Context, db bun.IDB, m *Match) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(m).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}

func (r *Impl) GetMatch(ctx context.Context, db bun.IDB, id uuid.UUID) (*Match, error) {
	db = r.resolveDB(db)
	m := new(Match)
	if err := db.NewSelect().Model(m).Where("id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return m, nil
}

func (r *Impl) LockMatch(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	db = r.resolveDB(db)
	var locked uuid.UUID
	err := db.NewSelect().
		Model((*Match)(nil)).
		Column("id").
		Where("id = ?", id).
		For("UPDATE").
		Scan(ctx, &locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to lock match: %w", err)
	}
	return nil
}

func (r *Impl) AddPlayer(ctx context.Context, db bun.IDB, mp *MatchPlayer) (bool, error) {
	db = r.resolveDB(db)
	res, err := db.NewInsert().
		Model(mp).
		On("CONFLICT (match_id, player_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to add match player: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *Impl) IsMember(ctx context.Context, db bun.IDB, matchID, playerID uuid.UUID) (bool, error) {
	db = r.resolveDB(db)
	exists, err := db.NewSelect().
		Model((*MatchPlayer)(nil)).
		Where("match_id = ?", matchID).
		Where("player_id = ?", playerID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

func (r *Impl) ListPlayers(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]MatchPlayer, error) {
	db = r.resolveDB(db)
	var players []MatchPlayer
	err := db.NewSelect().
		Model(&players).
		Where("match_id = ?", matchID).
		OrderExpr("joined_at ASC, player_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list match players: %w", err)
	}
	return players, nil
}

func (r *Impl) ListRounds(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]Round, error) {
	db = r.resolveDB(db)
	var rounds []Round
	err := db.NewSelect().
		Model(&rounds).
		Where("match_id = ?", matchID).
		OrderExpr("created_at ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	return rounds, nil
}

func (r *Impl) InsertRound(ctx context.Context, db bun.IDB, round *Round) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(round).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateRound
		}
		return fmt.Errorf("failed to insert round: %w", err)
	}
	return nil
}

func (r *Impl) InsertAttempt(ctx context.Context, db bun.IDB, a *RoundAttempt) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(a).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateAttempt
		}
		return fmt.Errorf("failed to insert attempt: %w", err)
	}
	return nil
}

func (r *Impl) MarkRoundAnswered(ctx context.Context, db bun.IDB, roundID, playerID uuid.UUID, isCorrect bool, at time.Time) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Round)(nil)).
		Set("answered_by = ?", playerID).
		Set("is_correct = ?", isCorrect).
		Set("answered_at = ?", at).
		Where("id = ?", roundID).
		Where("answered_by IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark round answered: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *Impl) DeleteRoundsForFlashcard(ctx context.Context, db bun.IDB, flashcardID uuid.UUID) (int, int, error) {
	db = r.resolveDB(db)

	roundIDs := db.NewSelect().
		Model((*Round)(nil)).
		Column("id").
		Where("flashcard_id = ?", flashcardID)

	res, err := db.NewDelete().
		Model((*RoundAttempt)(nil)).
		Where("round_id IN (?)", roundIDs).
		Exec(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete attempts for flashcard: %w", err)
	}
	attempts, err := res.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read rows affected: %w", err)
	}

	res, err = db.NewDelete().
		Model((*Round)(nil)).
		Where("flashcard_id = ?", flashcardID).
		Exec(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete rounds for flashcard: %w", err)
	}
	rounds, err := res.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return int(attempts), int(rounds), nil
}
