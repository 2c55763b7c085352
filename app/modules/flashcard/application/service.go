package flashcardservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	flashcarddb "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/flashcard/infrastructure/repositories"
	"github.com/Black-And-White-Club/flashcard-frenzy/app/modules/flashcard/infrastructure/parsers"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/attr"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/observability"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/operations"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/results"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/session"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Flashcard is the public view of a stored flashcard.
type Flashcard struct {
	ID            uuid.UUID  `json:"id"`
	Question      string     `json:"question"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correct_answer"`
	CreatedBy     *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// DeleteResult reports what the cascade removed.
type DeleteResult struct {
	FlashcardID     uuid.UUID `json:"flashcard_id"`
	RoundsDeleted   int       `json:"rounds_deleted"`
	AttemptsDeleted int       `json:"attempts_deleted"`
}

// RowError is a rejected import row.
type RowError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

// ImportResult reports an import. Valid rows are stored even when others fail.
type ImportResult struct {
	Created int        `json:"created"`
	Errors  []RowError `json:"errors,omitempty"`
}

// FlashcardService implements the Service interface.
type FlashcardService struct {
	repo    flashcarddb.Repository
	cascade RoundCascade
	players PlayerResolver
	parsers *parsers.Factory
	in      *operations.Instrument
	now     func() time.Time
}

// NewFlashcardService creates a new FlashcardService.
func NewFlashcardService(
	repo flashcarddb.Repository,
	cascade RoundCascade,
	players PlayerResolver,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *FlashcardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FlashcardService{
		repo:    repo,
		cascade: cascade,
		players: players,
		parsers: parsers.NewFactory(),
		in: &operations.Instrument{
			Service: "FlashcardService",
			Logger:  logger,
			Metrics: metrics,
			Tracer:  tracer,
			DB:      db,
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// CreateFlashcard validates draft and stores it.
func (s *FlashcardService) CreateFlashcard(ctx context.Context, identity session.Identity, draft Draft) (*Flashcard, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	result, err := operations.WithTelemetry(s.in, ctx, "CreateFlashcard", identity.UserID, func(ctx context.Context) (results.OperationResult[*Flashcard, error], error) {
		creator, err := s.creatorID(ctx, identity)
		if err != nil {
			return results.OperationResult[*Flashcard, error]{}, err
		}
		card := s.newRecord(draft, creator)
		if err := s.repo.Create(ctx, nil, card); err != nil {
			return results.OperationResult[*Flashcard, error]{}, err
		}
		return results.SuccessResult[*Flashcard, error](toFlashcard(card)), nil
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}

// GetFlashcard returns one flashcard.
func (s *FlashcardService) GetFlashcard(ctx context.Context, id uuid.UUID) (*Flashcard, error) {
	result, err := operations.WithTelemetry(s.in, ctx, "GetFlashcard", id.String(), func(ctx context.Context) (results.OperationResult[*Flashcard, error], error) {
		card, err := s.repo.GetByID(ctx, nil, id)
		if err != nil {
			if errors.Is(err, flashcarddb.ErrNotFound) {
				return results.FailureResult[*Flashcard, error](ErrFlashcardNotFound), nil
			}
			return results.OperationResult[*Flashcard, error]{}, err
		}
		return results.SuccessResult[*Flashcard, error](toFlashcard(card)), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// ListFlashcards returns the whole deck, oldest first.
func (s *FlashcardService) ListFlashcards(ctx context.Context) ([]Flashcard, error) {
	result, err := operations.WithTelemetry(s.in, ctx, "ListFlashcards", "", func(ctx context.Context) (results.OperationResult[[]Flashcard, error], error) {
		cards, err := s.repo.List(ctx, nil)
		if err != nil {
			return results.OperationResult[[]Flashcard, error]{}, err
		}
		out := make([]Flashcard, 0, len(cards))
		for i := range cards {
			out = append(out, *toFlashcard(&cards[i]))
		}
		return results.SuccessResult[[]Flashcard, error](out), nil
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}

// ListFlashcardIDs returns the ids of the full deck.
func (s *FlashcardService) ListFlashcardIDs(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := s.repo.ListIDs(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ListFlashcardIDs: %w", err)
	}
	return ids, nil
}

// DeleteFlashcard deletes attempts, then rounds, then the flashcard in one
// transaction. Any failure rolls the whole deletion back.
func (s *FlashcardService) DeleteFlashcard(ctx context.Context, id uuid.UUID) (*DeleteResult, error) {
	result, err := operations.WithTelemetry(s.in, ctx, "DeleteFlashcard", id.String(), func(ctx context.Context) (results.OperationResult[*DeleteResult, error], error) {
		return operations.RunInTx(s.in, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*DeleteResult, error], error) {
			return s.deleteLogic(ctx, db, id)
		})
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

func (s *FlashcardService) deleteLogic(ctx context.Context, db bun.IDB, id uuid.UUID) (results.OperationResult[*DeleteResult, error], error) {
	if _, err := s.repo.GetByID(ctx, db, id); err != nil {
		if errors.Is(err, flashcarddb.ErrNotFound) {
			return results.FailureResult[*DeleteResult, error](ErrFlashcardNotFound), nil
		}
		return results.OperationResult[*DeleteResult, error]{}, err
	}

	attempts, rounds, err := s.cascade.DeleteRoundsForFlashcard(ctx, db, id)
	if err != nil {
		return results.OperationResult[*DeleteResult, error]{}, fmt.Errorf("failed to delete rounds for flashcard: %w", err)
	}

	if err := s.repo.Delete(ctx, db, id); err != nil {
		switch {
		case errors.Is(err, flashcarddb.ErrStillReferenced):
			return results.FailureResult[*DeleteResult, error](ErrFlashcardInUse), nil
		case errors.Is(err, flashcarddb.ErrNoRowsAffected):
			return results.FailureResult[*DeleteResult, error](ErrFlashcardNotFound), nil
		default:
			return results.OperationResult[*DeleteResult, error]{}, err
		}
	}

	s.in.Logger.InfoContext(ctx, "Flashcard deleted with cascade",
		attr.UUID("flashcard_id", id),
		attr.Int("rounds_deleted", rounds),
		attr.Int("attempts_deleted", attempts),
	)

	return results.SuccessResult[*DeleteResult, error](&DeleteResult{
		FlashcardID:     id,
		RoundsDeleted:   rounds,
		AttemptsDeleted: attempts,
	}), nil
}

// ImportFlashcards parses a CSV or XLSX deck and stores every valid row in one batch.
func (s *FlashcardService) ImportFlashcards(ctx context.Context, identity session.Identity, fileName string, data []byte) (*ImportResult, error) {
	parser, err := s.parsers.GetParser(fileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFile, err)
	}
	deck, err := parser.Parse(data, fileName)
	if err != nil {
		return nil, &ValidationError{Field: "file", Message: err.Error()}
	}

	result, err := operations.WithTelemetry(s.in, ctx, "ImportFlashcards", fileName, func(ctx context.Context) (results.OperationResult[*ImportResult, error], error) {
		creator, err := s.creatorID(ctx, identity)
		if err != nil {
			return results.OperationResult[*ImportResult, error]{}, err
		}

		report := &ImportResult{}
		var cards []flashcarddb.Flashcard
		for _, row := range deck.Rows {
			draft := Draft{Question: row.Question, Options: row.Options, CorrectAnswer: row.CorrectAnswer}.Normalize()
			if err := draft.Validate(); err != nil {
				report.Errors = append(report.Errors, RowError{Line: row.Line, Error: err.Error()})
				continue
			}
			cards = append(cards, *s.newRecord(draft, creator))
		}

		if err := s.repo.CreateBatch(ctx, nil, cards); err != nil {
			return results.OperationResult[*ImportResult, error]{}, err
		}
		report.Created = len(cards)
		return results.SuccessResult[*ImportResult, error](report), nil
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}

func (s *FlashcardService) creatorID(ctx context.Context, identity session.Identity) (*uuid.UUID, error) {
	if s.players == nil || identity.UserID == "" {
		return nil, nil
	}
	id, err := s.players.ResolvePlayerID(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve creator: %w", err)
	}
	return &id, nil
}

func (s *FlashcardService) newRecord(d Draft, creator *uuid.UUID) *flashcarddb.Flashcard {
	return &flashcarddb.Flashcard{
		ID:            uuid.New(),
		Question:      d.Question,
		Options:       d.Options,
		CorrectAnswer: d.CorrectAnswer,
		CreatedBy:     creator,
		CreatedAt:     s.now(),
	}
}

func toFlashcard(c *flashcarddb.Flashcard) *Flashcard {
	return &Flashcard{
		ID:            c.ID,
		Question:      c.Question,
		Options:       append([]string(nil), c.Options...),
		CorrectAnswer: c.CorrectAnswer,
		CreatedBy:     c.CreatedBy,
		CreatedAt:     c.CreatedAt,
	}
}
