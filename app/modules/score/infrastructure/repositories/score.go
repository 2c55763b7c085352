package scoredb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new score repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) MatchExists(ctx context.Context, db bun.IDB, matchID uuid.UUID) (bool, error) {
	db = r.resolveDB(db)
	exists, err := db.NewSelect().
		TableExpr("matches AS m").
		Where("m.id = ?", matchID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check match: %w", err)
	}
	return exists, nil
}

func (r *Impl) ListMembers(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]MemberRow, error) {
	db = r.resolveDB(db)
	var rows []MemberRow
	err := db.NewSelect().
		TableExpr("match_players AS mp").
		ColumnExpr("mp.player_id, mp.joined_at").
		ColumnExpr("COALESCE(p.name, '') AS name").
		Join("LEFT JOIN players AS p ON p.id = mp.player_id").
		Where("mp.match_id = ?", matchID).
		OrderExpr("mp.joined_at ASC, mp.player_id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list match members: %w", err)
	}
	return rows, nil
}

func (r *Impl) ListAttempts(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]AttemptRow, error) {
	db = r.resolveDB(db)
	var rows []AttemptRow
	err := db.NewSelect().
		TableExpr("round_attempts AS ra").
		ColumnExpr("ra.player_id, ra.is_correct, ra.created_at").
		ColumnExpr("COALESCE(p.name, '') AS name").
		Join("JOIN match_rounds AS r ON r.id = ra.round_id").
		Join("LEFT JOIN players AS p ON p.id = ra.player_id").
		Where("r.match_id = ?", matchID).
		OrderExpr("ra.created_at ASC, ra.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list match attempts: %w", err)
	}
	return rows, nil
}

func (r *Impl) CountRounds(ctx context.Context, db bun.IDB, matchID uuid.UUID) (int, error) {
	db = r.resolveDB(db)
	n, err := db.NewSelect().
		TableExpr("match_rounds AS r").
		Where("r.match_id = ?", matchID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count rounds: %w", err)
	}
	return n, nil
}
