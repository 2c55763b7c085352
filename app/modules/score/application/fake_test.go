package scoreservice

import (
	"context"

	scoredb "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/score/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Score Repo
// ------------------------

type FakeScoreRepo struct {
	trace []string

	MatchExistsFunc  func(ctx context.Context, db bun.IDB, matchID uuid.UUID) (bool, error)
	ListMembersFunc  func(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]scoredb.MemberRow, error)
	ListAttemptsFunc func(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]scoredb.AttemptRow, error)
	CountRoundsFunc  func(ctx context.Context, db bun.IDB, matchID uuid.UUID) (int, error)
}

func NewFakeScoreRepo() *FakeScoreRepo {
	return &FakeScoreRepo{}
}

func (f *FakeScoreRepo) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeScoreRepo) Trace() []string { return f.trace }

func (f *FakeScoreRepo) MatchExists(ctx context.Context, db bun.IDB, matchID uuid.UUID) (bool, error) {
	f.record("MatchExists")
	if f.MatchExistsFunc != nil {
		return f.MatchExistsFunc(ctx, db, matchID)
	}
	return true, nil
}

func (f *FakeScoreRepo) ListMembers(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]scoredb.MemberRow, error) {
	f.record("ListMembers")
	if f.ListMembersFunc != nil {
		return f.ListMembersFunc(ctx, db, matchID)
	}
	return nil, nil
}

func (f *FakeScoreRepo) ListAttempts(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]scoredb.AttemptRow, error) {
	f.record("ListAttempts")
	if f.ListAttemptsFunc != nil {
		return f.ListAttemptsFunc(ctx, db, matchID)
	}
	return nil, nil
}

func (f *FakeScoreRepo) CountRounds(ctx context.Context, db bun.IDB, matchID uuid.UUID) (int, error) {
	f.record("CountRounds")
	if f.CountRoundsFunc != nil {
		return f.CountRoundsFunc(ctx, db, matchID)
	}
	return 0, nil
}

var _ scoredb.Repository = (*FakeScoreRepo)(nil)
