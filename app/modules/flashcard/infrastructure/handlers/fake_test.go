package flashcardhandlers

import (
	"context"

	flashcardservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/flashcard/application"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/session"
	"github.com/google/uuid"
)

type FakeService struct {
	CreateFlashcardFunc  func(ctx context.Context, identity session.Identity, draft flashcardservice.Draft) (*flashcardservice.Flashcard, error)
	GetFlashcardFunc     func(ctx context.Context, id uuid.UUID) (*flashcardservice.Flashcard, error)
	ListFlashcardsFunc   func(ctx context.Context) ([]flashcardservice.Flashcard, error)
	DeleteFlashcardFunc  func(ctx context.Context, id uuid.UUID) (*flashcardservice.DeleteResult, error)
	ImportFlashcardsFunc func(ctx context.Context, identity session.Identity, fileName string, data []byte) (*flashcardservice.ImportResult, error)
}

func (f *FakeService) CreateFlashcard(ctx context.Context, identity session.Identity, draft flashcardservice.Draft) (*flashcardservice.Flashcard, error) {
	if f.CreateFlashcardFunc != nil {
		return f.CreateFlashcardFunc(ctx, identity, draft)
	}
	return &flashcardservice.Flashcard{ID: uuid.New(), Question: draft.Question}, nil
}

func (f *FakeService) GetFlashcard(ctx context.Context, id uuid.UUID) (*flashcardservice.Flashcard, error) {
	if f.GetFlashcardFunc != nil {
		return f.GetFlashcardFunc(ctx, id)
	}
	return &flashcardservice.Flashcard{ID: id}, nil
}

func (f *FakeService) ListFlashcards(ctx context.Context) ([]flashcardservice.Flashcard, error) {
	if f.ListFlashcardsFunc != nil {
		return f.ListFlashcardsFunc(ctx)
	}
	return []flashcardservice.Flashcard{}, nil
}

func (f *FakeService) ListFlashcardIDs(ctx context.Context) ([]uuid.UUID, error) {
	return nil, nil
}

func (f *FakeService) DeleteFlashcard(ctx context.Context, id uuid.UUID) (*flashcardservice.DeleteResult, error) {
	if f.DeleteFlashcardFunc != nil {
		return f.DeleteFlashcardFunc(ctx, id)
	}
	return &flashcardservice.DeleteResult{FlashcardID: id}, nil
}

func (f *FakeService) ImportFlashcards(ctx context.Context, identity session.Identity, fileName string, data []byte) (*flashcardservice.ImportResult, error) {
	if f.ImportFlashcardsFunc != nil {
		return f.ImportFlashcardsFunc(ctx, identity, fileName, data)
	}
	return &flashcardservice.ImportResult{}, nil
}

var _ flashcardservice.Service = (*FakeService)(nil)
