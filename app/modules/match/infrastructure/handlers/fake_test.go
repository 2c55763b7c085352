package matchhandlers

import (
	"context"

	matchservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/match/application"
	matchdomain "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/match/domain"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/session"
	"github.com/google/uuid"
)

type FakeService struct {
	trace []string

	CreateMatchFunc       func(ctx context.Context, identity session.Identity) (*matchservice.MatchInfo, error)
	JoinMatchFunc         func(ctx context.Context, identity session.Identity, matchID uuid.UUID) (*matchservice.MatchInfo, error)
	ListPlayersFunc       func(ctx context.Context, matchID uuid.UUID) ([]matchservice.MatchPlayer, error)
	GetMatchStateFunc     func(ctx context.Context, matchID uuid.UUID) (*matchservice.MatchState, error)
	StartRoundFunc        func(ctx context.Context, identity session.Identity, matchID uuid.UUID) (*matchservice.MatchState, error)
	AnswerFlashcardFunc   func(ctx context.Context, identity session.Identity, matchID, roundID uuid.UUID, answer string) (*matchservice.AnswerResult, error)
	NextRoundFunc         func(ctx context.Context, identity session.Identity, matchID uuid.UUID) (*matchservice.MatchState, error)
	CancelAutoAdvanceFunc func(ctx context.Context, matchID uuid.UUID) error
}

func (f *FakeService) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeService) Trace() []string { return f.trace }

func (f *FakeService) CreateMatch(ctx context.Context, identity session.Identity) (*matchservice.MatchInfo, error) {
	f.record("CreateMatch")
	if f.CreateMatchFunc != nil {
		return f.CreateMatchFunc(ctx, identity)
	}
	return &matchservice.MatchInfo{ID: uuid.New()}, nil
}

func (f *FakeService) JoinMatch(ctx context.Context, identity session.Identity, matchID uuid.UUID) (*matchservice.MatchInfo, error) {
	f.record("JoinMatch")
	if f.JoinMatchFunc != nil {
		return f.JoinMatchFunc(ctx, identity, matchID)
	}
	return &matchservice.MatchInfo{ID: matchID}, nil
}

func (f *FakeService) ListPlayers(ctx context.Context, matchID uuid.UUID) ([]matchservice.MatchPlayer, error) {
	f.record("ListPlayers")
	if f.ListPlayersFunc != nil {
		return f.ListPlayersFunc(ctx, matchID)
	}
	return []matchservice.MatchPlayer{}, nil
}

func (f *FakeService) GetMatchState(ctx context.Context, matchID uuid.UUID) (*matchservice.MatchState, error) {
	f.record("GetMatchState")
	if f.GetMatchStateFunc != nil {
		return f.GetMatchStateFunc(ctx, matchID)
	}
	return &matchservice.MatchState{MatchID: matchID, State: matchdomain.StateNoRound, QuestionNumber: 1}, nil
}

func (f *FakeService) StartRound(ctx context.Context, identity session.Identity, matchID uuid.UUID) (*matchservice.MatchState, error) {
	f.record("StartRound")
	if f.StartRoundFunc != nil {
		return f.StartRoundFunc(ctx, identity, matchID)
	}
	return &matchservice.MatchState{MatchID: matchID, State: matchdomain.StateRoundInProgress, QuestionNumber: 1}, nil
}

func (f *FakeService) AnswerFlashcard(ctx context.Context, identity session.Identity, matchID, roundID uuid.UUID, answer string) (*matchservice.AnswerResult, error) {
	f.record("AnswerFlashcard")
	if f.AnswerFlashcardFunc != nil {
		return f.AnswerFlashcardFunc(ctx, identity, matchID, roundID, answer)
	}
	return &matchservice.AnswerResult{RoundID: roundID, Answer: answer}, nil
}

func (f *FakeService) NextRound(ctx context.Context, identity session.Identity, matchID uuid.UUID) (*matchservice.MatchState, error) {
	f.record("NextRound")
	if f.NextRoundFunc != nil {
		return f.NextRoundFunc(ctx, identity, matchID)
	}
	return &matchservice.MatchState{MatchID: matchID, State: matchdomain.StateRoundInProgress}, nil
}

func (f *FakeService) CancelAutoAdvance(ctx context.Context, matchID uuid.UUID) error {
	f.record("CancelAutoAdvance")
	if f.CancelAutoAdvanceFunc != nil {
		return f.CancelAutoAdvanceFunc(ctx, matchID)
	}
	return nil
}

func (f *FakeService) AdvanceRound(ctx context.Context, matchID, roundID uuid.UUID) error {
	f.record("AdvanceRound")
	return nil
}

var _ matchservice.Service = (*FakeService)(nil)
