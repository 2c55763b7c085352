package playerdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new player repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) GetFirstByUserID(ctx context.Context, db bun.IDB, userID string) (*Player, error) {
	db = r.resolveDB(db)
	p := new(Player)
	err := db.NewSelect().
		Model(p).
		Where("user_id = ?", userID).
		OrderExpr("created_at ASC, id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get player by user id: %w", err)
	}
	return p, nil
}

func (r *Impl) InsertIfAbsent(ctx context.Context, db bun.IDB, p *Player) (bool, error) {
	db = r.resolveDB(db)
	res, err := db.NewInsert().
		Model(p).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to insert player: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *Impl) GetByIDs(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]Player, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	db = r.resolveDB(db)
	var players []Player
	err := db.NewSelect().
		Model(&players).
		Where("id IN (?)", bun.In(ids)).
		OrderExpr("created_at ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get players by ids: %w", err)
	}
	return players, nil
}

func (r *Impl) UpdateName(ctx context.Context, db bun.IDB, id uuid.UUID, name string) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Player)(nil)).
		Set("name = ?", name).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update player name: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
