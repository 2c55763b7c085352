package scoreservice

import (
	"context"
	"log/slog"
	"time"

	scoredb "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/score/infrastructure/repositories"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/observability"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/operations"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// MatchStats summarises a match for the results page.
type MatchStats struct {
	TotalQuestions  int     `json:"total_questions"`
	TotalPlayers    int     `json:"total_players"`
	DurationSeconds int     `json:"duration_seconds"`
	DurationMinutes int     `json:"duration_minutes"`
	HighestScore    int     `json:"highest_score"`
	AverageScore    float64 `json:"average_score"`
}

// Results is the final ranking of a match.
type Results struct {
	MatchID uuid.UUID     `json:"match_id"`
	Players []PlayerScore `json:"players"`
	Stats   MatchStats    `json:"stats"`
}

// ScoreService implements the Service interface.
type ScoreService struct {
	repo scoredb.Repository
	in   *operations.Instrument
}

// NewScoreService creates a new ScoreService.
func NewScoreService(
	repo scoredb.Repository,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *ScoreService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoreService{
		repo: repo,
		in: &operations.Instrument{
			Service: "ScoreService",
			Logger:  logger,
			Metrics: metrics,
			Tracer:  tracer,
			DB:      db,
		},
	}
}

var _ Service = (*ScoreService)(nil)

func (s *ScoreService) Scoreboard(ctx context.Context, matchID uuid.UUID) ([]PlayerScore, error) {
	result, err := operations.WithTelemetry(s.in, ctx, "Scoreboard", matchID.String(), func(ctx context.Context) (results.OperationResult[[]PlayerScore, error], error) {
		return s.scoreboard(ctx, matchID)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

func (s *ScoreService) scoreboard(ctx context.Context, matchID uuid.UUID) (results.OperationResult[[]PlayerScore, error], error) {
	members, attempts, err := s.load(ctx, matchID)
	if err != nil {
		return results.OperationResult[[]PlayerScore, error]{}, err
	}
	if members == nil {
		return results.FailureResult[[]PlayerScore, error](ErrMatchNotFound), nil
	}
	return results.SuccessResult[[]PlayerScore, error](Aggregate(members, attempts)), nil
}

func (s *ScoreService) Results(ctx context.Context, matchID uuid.UUID) (*Results, error) {
	result, err := operations.WithTelemetry(s.in, ctx, "Results", matchID.String(), func(ctx context.Context) (results.OperationResult[*Results, error], error) {
		return s.results(ctx, matchID)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

func (s *ScoreService) results(ctx context.Context, matchID uuid.UUID) (results.OperationResult[*Results, error], error) {
	members, attempts, err := s.load(ctx, matchID)
	if err != nil {
		return results.OperationResult[*Results, error]{}, err
	}
	if members == nil {
		return results.FailureResult[*Results, error](ErrMatchNotFound), nil
	}
	rounds, err := s.repo.CountRounds(ctx, nil, matchID)
	if err != nil {
		return results.OperationResult[*Results, error]{}, err
	}

	board := Aggregate(members, attempts)
	return results.SuccessResult[*Results, error](&Results{
		MatchID: matchID,
		Players: board,
		Stats:   Stats(board, attempts, rounds),
	}), nil
}

// Stats computes match statistics from an aggregated board.
func Stats(board []PlayerScore, attempts []Attempt, rounds int) MatchStats {
	stats := MatchStats{
		TotalQuestions: rounds,
		TotalPlayers:   len(board),
	}
	if len(board) > 0 {
		total := 0
		for _, p := range board {
			total += p.Score
			if p.Score > stats.HighestScore {
				stats.HighestScore = p.Score
			}
		}
		stats.AverageScore = round1(float64(total) / float64(len(board)))
	}
	if len(attempts) > 0 {
		first, last := attempts[0].CreatedAt, attempts[0].CreatedAt
		for _, a := range attempts[1:] {
			if a.CreatedAt.Before(first) {
				first = a.CreatedAt
			}
			if a.CreatedAt.After(last) {
				last = a.CreatedAt
			}
		}
		d := last.Sub(first)
		stats.DurationSeconds = int(d / time.Second)
		stats.DurationMinutes = int(d.Round(time.Minute) / time.Minute)
	}
	return stats
}

// load returns nil members when the match does not exist.
func (s *ScoreService) load(ctx context.Context, matchID uuid.UUID) ([]Member, []Attempt, error) {
	exists, err := s.repo.MatchExists(ctx, nil, matchID)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, nil
	}

	memberRows, err := s.repo.ListMembers(ctx, nil, matchID)
	if err != nil {
		return nil, nil, err
	}
	attemptRows, err := s.repo.ListAttempts(ctx, nil, matchID)
	if err != nil {
		return nil, nil, err
	}

	members := make([]Member, 0, len(memberRows))
	for _, m := range memberRows {
		members = append(members, Member{PlayerID: m.PlayerID, Name: m.Name})
	}
	attempts := make([]Attempt, 0, len(attemptRows))
	for _, a := range attemptRows {
		attempts = append(attempts, Attempt{PlayerID: a.PlayerID, Name: a.Name, IsCorrect: a.IsCorrect, CreatedAt: a.CreatedAt})
	}
	return members, attempts, nil
}
