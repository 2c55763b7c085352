package flashcardservice

import (
	"context"

	"github.com/Black-And-White-Club/flashcard-frenzy/internal/session"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Service manages the flashcard deck.
type Service interface {
	CreateFlashcard(ctx context.Context, identity session.Identity, draft Draft) (*Flashcard, error)
	GetFlashcard(ctx context.Context, id uuid.UUID) (*Flashcard, error)
	ListFlashcards(ctx context.Context) ([]Flashcard, error)
	ListFlashcardIDs(ctx context.Context) ([]uuid.UUID, error)
	// DeleteFlashcard removes the flashcard with its rounds and attempts, all or nothing.
	DeleteFlashcard(ctx context.Context, id uuid.UUID) (*DeleteResult, error)
	ImportFlashcards(ctx context.Context, identity session.Identity, fileName string, data []byte) (*ImportResult, error)
}

// RoundCascade removes match rounds and their attempts that reference a
// flashcard. It runs inside the caller's transaction.
type RoundCascade interface {
	DeleteRoundsForFlashcard(ctx context.Context, db bun.IDB, flashcardID uuid.UUID) (attempts int, rounds int, err error)
}

// PlayerResolver maps the caller to a player id for created_by.
type PlayerResolver interface {
	ResolvePlayerID(ctx context.Context, identity session.Identity) (uuid.UUID, error)
}
