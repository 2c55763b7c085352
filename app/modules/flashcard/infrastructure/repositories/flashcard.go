package flashcarddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new flashcard repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) Create(ctx context.Context, db bun.IDB, card *Flashcard) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(card).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert flashcard: %w", err)
	}
	return nil
}

func (r *Impl) CreateBatch(ctx context.Context, db bun.IDB, cards []Flashcard) error {
	if len(cards) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(&cards).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert %d flashcards: %w", len(cards), err)
	}
	return nil
}

func (r *Impl) GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*Flashcard, error) {
	db = r.resolveDB(db)
	card := new(Flashcard)
	err := db.NewSelect().Model(card).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get flashcard: %w", err)
	}
	return card, nil
}

func (r *Impl) List(ctx context.Context, db bun.IDB) ([]Flashcard, error) {
	db = r.resolveDB(db)
	var cards []Flashcard
	err := db.NewSelect().Model(&cards).OrderExpr("created_at ASC, id ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list flashcards: %w", err)
	}
	return cards, nil
}

func (r *Impl) ListIDs(ctx context.Context, db bun.IDB) ([]uuid.UUID, error) {
	db = r.resolveDB(db)
	var ids []uuid.UUID
	err := db.NewSelect().Model((*Flashcard)(nil)).Column("id").OrderExpr("created_at ASC, id ASC").Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list flashcard ids: %w", err)
	}
	return ids, nil
}

func (r *Impl) Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	db = r.resolveDB(db)
	res, err := db.NewDelete().Model((*Flashcard)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
			return fmt.Errorf("%w: %s", ErrStillReferenced, pgErr.Field('M'))
		}
		return fmt.Errorf("failed to delete flashcard: %w", err)
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
