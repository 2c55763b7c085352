package matchservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	matchdomain "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/match/domain"
	matchqueue "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/match/infrastructure/queue"
	matchdb "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/match/infrastructure/repositories"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/attr"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/eventbus"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/events"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/observability"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/operations"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/results"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/session"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// DefaultAutoAdvanceDelay is how long an answered round stays on screen.
const DefaultAutoAdvanceDelay = 2 * time.Second

// Option configures a MatchService.
type Option func(*MatchService)

// WithAutoAdvanceDelay overrides DefaultAutoAdvanceDelay.
func WithAutoAdvanceDelay(d time.Duration) Option {
	return func(s *MatchService) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithPicker sets the random source used to choose flashcards. intn must
// return a value in [0, n).
func WithPicker(intn func(n int) int) Option {
	return func(s *MatchService) { s.intn = intn }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *MatchService) { s.now = now }
}

// MatchService implements the Service interface.
type MatchService struct {
	repo       matchdb.Repository
	flashcards FlashcardReader
	players    PlayerResolver
	scores     ScoreReader
	scheduler  matchqueue.Scheduler
	bus        eventbus.EventBus
	metrics    observability.MatchMetrics
	logger     *slog.Logger
	in         *operations.Instrument

	delay time.Duration
	intn  func(n int) int
	now   func() time.Time
}

var _ Service = (*MatchService)(nil)

// NewMatchService creates a new MatchService. bus may be nil when nobody
// observes matches live.
func NewMatchService(
	repo matchdb.Repository,
	flashcards FlashcardReader,
	players PlayerResolver,
	scores ScoreReader,
	scheduler matchqueue.Scheduler,
	bus eventbus.EventBus,
	logger *slog.Logger,
	metrics observability.MatchMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	opts ...Option,
) *MatchService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoOpMetrics{}
	}
	s := &MatchService{
		repo:       repo,
		flashcards: flashcards,
		players:    players,
		scores:     scores,
		scheduler:  scheduler,
		bus:        bus,
		metrics:    metrics,
		logger:     logger,
		in: &operations.Instrument{
			Service: "MatchService",
			Logger:  logger,
			Metrics: metrics,
			Tracer:  tracer,
			DB:      db,
		},
		delay: DefaultAutoAdvanceDelay,
		intn:  rand.IntN,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func unwrap[S any](result results.OperationResult[S, error], err error) (S, error) {
	var zero S
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	return *result.Success, nil
}

// ensureMember adds playerID to the match unless already a member.
func (s *MatchService) ensureMember(ctx context.Context, db bun.IDB, matchID, playerID uuid.UUID) (bool, error) {
	member, err := s.repo.IsMember(ctx, db, matchID, playerID)
	if err != nil {
		return false, err
	}
	if member {
		return false, nil
	}
	return s.repo.AddPlayer(ctx, db, &matchdb.MatchPlayer{MatchID: matchID, PlayerID: playerID, JoinedAt: s.now()})
}

// loadSnapshot rehydrates the match from its rounds and the current deck.
func (s *MatchService) loadSnapshot(ctx context.Context, db bun.IDB, matchID uuid.UUID) (matchdomain.Snapshot, int, error) {
	deck, err := s.flashcards.ListFlashcardIDs(ctx)
	if err != nil {
		return matchdomain.Snapshot{}, 0, fmt.Errorf("failed to load deck: %w", err)
	}
	rounds, err := s.repo.ListRounds(ctx, db, matchID)
	if err != nil {
		return matchdomain.Snapshot{}, 0, err
	}
	return matchdomain.Rehydrate(deck, toDomainRounds(rounds)), len(deck), nil
}

func (s *MatchService) playerName(ctx context.Context, playerID uuid.UUID) string {
	profiles, err := s.players.GetProfiles(ctx, []uuid.UUID{playerID})
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to load player name", attr.UUID("player_id", playerID), attr.Error(err))
		return session.DefaultDisplayName
	}
	if p, ok := profiles[playerID]; ok && p.Name != "" {
		return p.Name
	}
	return session.DefaultDisplayName
}

// publish sends a realtime event. Failures are logged, the operation that
// produced the event has already been committed.
func (s *MatchService) publish(ctx context.Context, topic string, matchID uuid.UUID, payload any) {
	if s.bus == nil {
		return
	}
	msg, err := eventbus.NewMessage(ctx, payload, map[string]string{
		events.MetadataMatchID:      matchID.String(),
		events.MetadataEventVersion: "v1",
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build event", attr.String("topic", topic), attr.Error(err))
		return
	}
	if err := s.bus.Publish(topic, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event",
			attr.ExtractCorrelationID(ctx),
			attr.String("topic", topic),
			attr.UUID("match_id", matchID),
			attr.Error(err),
		)
	}
}

func (s *MatchService) completed(ctx context.Context, matchID uuid.UUID, rounds int) {
	s.metrics.RecordMatchCompleted(ctx)
	s.publish(ctx, events.MatchCompletedV1, matchID, events.MatchCompletedPayloadV1{
		MatchID:     matchID,
		TotalRounds: rounds,
	})
}

func toDomainRound(r matchdb.Round) matchdomain.Round {
	return matchdomain.Round{
		ID:          r.ID,
		FlashcardID: r.FlashcardID,
		AnsweredBy:  r.AnsweredBy,
		IsCorrect:   r.IsCorrect,
		CreatedAt:   r.CreatedAt,
		AnsweredAt:  r.AnsweredAt,
	}
}

func toDomainRounds(rows []matchdb.Round) []matchdomain.Round {
	out := make([]matchdomain.Round, 0, len(rows))
	for _, r := range rows {
		out = append(out, toDomainRound(r))
	}
	return out
}

func notFound(err error) bool {
	return errors.Is(err, matchdb.ErrNotFound)
}
