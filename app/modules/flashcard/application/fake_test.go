package flashcardservice

import (
	"context"

	flashcarddb "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/flashcard/infrastructure/repositories"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/session"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Flashcard Repo
// ------------------------

type FakeFlashcardRepo struct {
	trace *[]string

	CreateFunc      func(ctx context.Context, db bun.IDB, card *flashcarddb.Flashcard) error
	CreateBatchFunc func(ctx context.Context, db bun.IDB, cards []flashcarddb.Flashcard) error
	GetByIDFunc     func(ctx context.Context, db bun.IDB, id uuid.UUID) (*flashcarddb.Flashcard, error)
	ListFunc        func(ctx context.Context, db bun.IDB) ([]flashcarddb.Flashcard, error)
	ListIDsFunc     func(ctx context.Context, db bun.IDB) ([]uuid.UUID, error)
	DeleteFunc      func(ctx context.Context, db bun.IDB, id uuid.UUID) error
}

// NewFakeFlashcardRepo records into trace, which may be shared with other fakes
// to assert cross-repository ordering.
func NewFakeFlashcardRepo(trace *[]string) *FakeFlashcardRepo {
	if trace == nil {
		trace = &[]string{}
	}
	return &FakeFlashcardRepo{trace: trace}
}

func (f *FakeFlashcardRepo) record(step string) { *f.trace = append(*f.trace, step) }

func (f *FakeFlashcardRepo) Trace() []string { return *f.trace }

func (f *FakeFlashcardRepo) Create(ctx context.Context, db bun.IDB, card *flashcarddb.Flashcard) error {
	f.record("Create")
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, db, card)
	}
	return nil
}

func (f *FakeFlashcardRepo) CreateBatch(ctx context.Context, db bun.IDB, cards []flashcarddb.Flashcard) error {
	f.record("CreateBatch")
	if f.CreateBatchFunc != nil {
		return f.CreateBatchFunc(ctx, db, cards)
	}
	return nil
}

func (f *FakeFlashcardRepo) GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*flashcarddb.Flashcard, error) {
	f.record("GetByID")
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, db, id)
	}
	return nil, flashcarddb.ErrNotFound
}

func (f *FakeFlashcardRepo) List(ctx context.Context, db bun.IDB) ([]flashcarddb.Flashcard, error) {
	f.record("List")
	if f.ListFunc != nil {
		return f.ListFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeFlashcardRepo) ListIDs(ctx context.Context, db bun.IDB) ([]uuid.UUID, error) {
	f.record("ListIDs")
	if f.ListIDsFunc != nil {
		return f.ListIDsFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeFlashcardRepo) Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	f.record("Delete")
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, db, id)
	}
	return nil
}

var _ flashcarddb.Repository = (*FakeFlashcardRepo)(nil)

// ------------------------
// Fake Round Cascade
// ------------------------

type FakeRoundCascade struct {
	trace *[]string

	DeleteRoundsForFlashcardFunc func(ctx context.Context, db bun.IDB, flashcardID uuid.UUID) (int, int, error)
}

func (f *FakeRoundCascade) DeleteRoundsForFlashcard(ctx context.Context, db bun.IDB, flashcardID uuid.UUID) (int, int, error) {
	*f.trace = append(*f.trace, "DeleteRoundsForFlashcard")
	if f.DeleteRoundsForFlashcardFunc != nil {
		return f.DeleteRoundsForFlashcardFunc(ctx, db, flashcardID)
	}
	return 0, 0, nil
}

var _ RoundCascade = (*FakeRoundCascade)(nil)

// ------------------------
// Fake Player Resolver
// ------------------------

type FakePlayerResolver struct {
	ID  uuid.UUID
	Err error
}

func (f *FakePlayerResolver) ResolvePlayerID(ctx context.Context, identity session.Identity) (uuid.UUID, error) {
	return f.ID, f.Err
}

var _ PlayerResolver = (*FakePlayerResolver)(nil)
