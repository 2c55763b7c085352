package flashcarddb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for flashcard persistence.
type Repository interface {
	Create(ctx context.Context, db bun.IDB, card *Flashcard) error
	CreateBatch(ctx context.Context, db bun.IDB, cards []Flashcard) error
	GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*Flashcard, error)
	// List returns every flashcard oldest first.
	List(ctx context.Context, db bun.IDB) ([]Flashcard, error)
	ListIDs(ctx context.Context, db bun.IDB) ([]uuid.UUID, error)
	// Delete removes one flashcard. It returns ErrNoRowsAffected when the id is
	// unknown and ErrStillReferenced when rounds still point at it.
	Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error
}
