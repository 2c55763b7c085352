package matchservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	flashcardservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/flashcard/application"
	matchdomain "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/match/domain"
	matchdb "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/match/infrastructure/repositories"
	playerservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/player/application"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/attr"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/events"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/operations"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/results"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/session"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// GetMatchState rebuilds the match for a fresh page load. The correct answer
// of an open round is withheld.
func (s *MatchService) GetMatchState(ctx context.Context, matchID uuid.UUID) (*MatchState, error) {
	return unwrap(operations.WithTelemetry(s.in, ctx, "GetMatchState", matchID.String(), func(ctx context.Context) (results.OperationResult[*MatchState, error], error) {
		if _, err := s.repo.GetMatch(ctx, nil, matchID); err != nil {
			if notFound(err) {
				return results.FailureResult[*MatchState, error](ErrMatchNotFound), nil
			}
			return results.OperationResult[*MatchState, error]{}, err
		}
		snap, deckSize, err := s.loadSnapshot(ctx, nil, matchID)
		if err != nil {
			return results.OperationResult[*MatchState, error]{}, err
		}
		state, err := s.view(ctx, matchID, snap, deckSize, nil, false)
		if err != nil {
			return results.OperationResult[*MatchState, error]{}, err
		}
		return results.SuccessResult[*MatchState, error](state), nil
	}))
}

// StartRound opens the next round. A scheduled auto-advance is dropped once
// the new round is written.
func (s *MatchService) StartRound(ctx context.Context, identity session.Identity, matchID uuid.UUID) (*MatchState, error) {
	return unwrap(operations.WithTelemetry(s.in, ctx, "StartRound", matchID.String(), func(ctx context.Context) (results.OperationResult[*MatchState, error], error) {
		profile, err := s.players.ResolvePlayer(ctx, identity)
		if err != nil {
			return results.OperationResult[*MatchState, error]{}, err
		}
		return s.startRound(ctx, matchID, &profile.ID, nil)
	}))
}

func (s *MatchService) NextRound(ctx context.Context, identity session.Identity, matchID uuid.UUID) (*MatchState, error) {
	return unwrap(operations.WithTelemetry(s.in, ctx, "NextRound", matchID.String(), func(ctx context.Context) (results.OperationResult[*MatchState, error], error) {
		profile, err := s.players.ResolvePlayer(ctx, identity)
		if err != nil {
			return results.OperationResult[*MatchState, error]{}, err
		}
		return s.startRound(ctx, matchID, &profile.ID, nil)
	}))
}

func (s *MatchService) CancelAutoAdvance(ctx context.Context, matchID uuid.UUID) error {
	found, err := s.scheduler.CancelAdvance(ctx, matchID)
	if err != nil {
		return fmt.Errorf("CancelAutoAdvance: %w", err)
	}
	if found {
		s.metrics.RecordAutoAdvance(ctx, "cancelled")
	}
	return nil
}

func (s *MatchService) AdvanceRound(ctx context.Context, matchID, roundID uuid.UUID) error {
	result, err := operations.WithTelemetry(s.in, ctx, "AdvanceRound", matchID.String(), func(ctx context.Context) (results.OperationResult[*MatchState, error], error) {
		return s.startRound(ctx, matchID, nil, &roundID)
	})
	if err != nil {
		s.metrics.RecordAutoAdvance(ctx, "failed")
		return err
	}
	if result.IsFailure() {
		s.metrics.RecordAutoAdvance(ctx, "stale")
		return nil
	}
	s.metrics.RecordAutoAdvance(ctx, "fired")
	return nil
}

// cancelPending drops a scheduled advance and reports whether one was
// pending. A scheduler error is logged only: the advance re-checks the match
// state when it fires.
func (s *MatchService) cancelPending(ctx context.Context, matchID uuid.UUID) bool {
	found, err := s.scheduler.CancelAdvance(ctx, matchID)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to cancel pending advance", attr.UUID("match_id", matchID), attr.Error(err))
		return false
	}
	return found
}

type startedRound struct {
	snap      matchdomain.Snapshot
	deckSize  int
	card      *flashcardservice.Flashcard
	preempted bool
}

// startRound opens a round under the match row lock. starter joins the match
// when set. expectLast turns the call into an auto-advance that only proceeds
// while that round is the latest and answered. A manual start drops the
// pending advance only after its round is inserted, while the match row is
// still locked, so a failed start leaves the timer armed.
func (s *MatchService) startRound(ctx context.Context, matchID uuid.UUID, starter, expectLast *uuid.UUID) (results.OperationResult[*MatchState, error], error) {
	res, err := operations.RunInTx(s.in, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[startedRound, error], error) {
		if err := s.repo.LockMatch(ctx, db, matchID); err != nil {
			if notFound(err) {
				return results.FailureResult[startedRound, error](ErrMatchNotFound), nil
			}
			return results.OperationResult[startedRound, error]{}, err
		}
		if starter != nil {
			if _, err := s.ensureMember(ctx, db, matchID, *starter); err != nil {
				return results.OperationResult[startedRound, error]{}, err
			}
		}

		snap, deckSize, err := s.loadSnapshot(ctx, db, matchID)
		if err != nil {
			return results.OperationResult[startedRound, error]{}, err
		}

		if expectLast != nil {
			last := snap.Last()
			if snap.State != matchdomain.StateRoundAnswered || last == nil || last.ID != *expectLast {
				return results.FailureResult[startedRound, error](errStaleAdvance), nil
			}
		}

		if snap.State == matchdomain.StateMatchCompleted {
			return results.SuccessResult[startedRound, error](startedRound{snap: snap, deckSize: deckSize}), nil
		}
		if err := snap.CanStart(); err != nil {
			return results.FailureResult[startedRound, error](err), nil
		}

		flashcardID, err := snap.Pick(s.intn)
		if err != nil {
			return results.OperationResult[startedRound, error]{}, err
		}
		card, err := s.flashcards.GetFlashcard(ctx, flashcardID)
		if err != nil {
			return results.OperationResult[startedRound, error]{}, fmt.Errorf("failed to load flashcard %s: %w", flashcardID, err)
		}

		round := matchdb.Round{ID: uuid.New(), MatchID: matchID, FlashcardID: flashcardID, CreatedAt: s.now()}
		if err := s.repo.InsertRound(ctx, db, &round); err != nil {
			if errors.Is(err, matchdb.ErrDuplicateRound) {
				return results.FailureResult[startedRound, error](ErrRoundInProgress), nil
			}
			return results.OperationResult[startedRound, error]{}, err
		}

		preempted := starter != nil && s.cancelPending(ctx, matchID)

		return results.SuccessResult[startedRound, error](startedRound{
			snap:      snap.WithRound(toDomainRound(round)),
			deckSize:  deckSize,
			card:      card,
			preempted: preempted,
		}), nil
	})
	if err != nil {
		return results.OperationResult[*MatchState, error]{}, err
	}
	if res.IsFailure() {
		return results.FailureResult[*MatchState, error](*res.Failure), nil
	}

	started := *res.Success
	if started.snap.State == matchdomain.StateMatchCompleted {
		s.completed(ctx, matchID, len(started.snap.Rounds))
		state, err := s.view(ctx, matchID, started.snap, started.deckSize, nil, false)
		if err != nil {
			return results.OperationResult[*MatchState, error]{}, err
		}
		return results.SuccessResult[*MatchState, error](state), nil
	}

	if started.preempted {
		s.metrics.RecordAutoAdvance(ctx, "preempted")
	}
	s.metrics.RecordRoundStarted(ctx)
	state, err := s.view(ctx, matchID, started.snap, started.deckSize, started.card, true)
	if err != nil {
		return results.OperationResult[*MatchState, error]{}, err
	}

	s.publish(ctx, events.RoundStartedV1, matchID, events.RoundStartedPayloadV1{
		MatchID:        matchID,
		RoundID:        state.Current.RoundID,
		FlashcardID:    state.Current.FlashcardID,
		QuestionNumber: state.QuestionNumber,
		Question:       state.Current.Question,
		Options:        state.Current.Options,
		StartedAt:      state.Current.StartedAt,
	})
	return results.SuccessResult[*MatchState, error](state), nil
}

type answeredRound struct {
	snap    matchdomain.Snapshot
	card    *flashcardservice.Flashcard
	correct bool
	at      time.Time
}

func (s *MatchService) AnswerFlashcard(ctx context.Context, identity session.Identity, matchID, roundID uuid.UUID, answer string) (*AnswerResult, error) {
	return unwrap(operations.WithTelemetry(s.in, ctx, "AnswerFlashcard", roundID.String(), func(ctx context.Context) (results.OperationResult[*AnswerResult, error], error) {
		profile, err := s.players.ResolvePlayer(ctx, identity)
		if err != nil {
			return results.OperationResult[*AnswerResult, error]{}, err
		}

		res, err := operations.RunInTx(s.in, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[answeredRound, error], error) {
			if err := s.repo.LockMatch(ctx, db, matchID); err != nil {
				if notFound(err) {
					return results.FailureResult[answeredRound, error](ErrMatchNotFound), nil
				}
				return results.OperationResult[answeredRound, error]{}, err
			}

			snap, _, err := s.loadSnapshot(ctx, db, matchID)
			if err != nil {
				return results.OperationResult[answeredRound, error]{}, err
			}
			if err := snap.CanAnswer(roundID); err != nil {
				return results.FailureResult[answeredRound, error](err), nil
			}

			card, err := s.flashcards.GetFlashcard(ctx, snap.Active().FlashcardID)
			if err != nil {
				return results.OperationResult[answeredRound, error]{}, err
			}
			correct := answer == card.CorrectAnswer

			if _, err := s.ensureMember(ctx, db, matchID, profile.ID); err != nil {
				return results.OperationResult[answeredRound, error]{}, err
			}

			at := s.now()
			attempt := &matchdb.RoundAttempt{
				ID:        uuid.New(),
				RoundID:   roundID,
				PlayerID:  profile.ID,
				Answer:    answer,
				IsCorrect: correct,
				CreatedAt: at,
			}
			if err := s.repo.InsertAttempt(ctx, db, attempt); err != nil {
				if errors.Is(err, matchdb.ErrDuplicateAttempt) {
					return results.FailureResult[answeredRound, error](ErrRoundAlreadyAnswered), nil
				}
				return results.OperationResult[answeredRound, error]{}, err
			}
			if err := s.repo.MarkRoundAnswered(ctx, db, roundID, profile.ID, correct, at); err != nil {
				if errors.Is(err, matchdb.ErrNoRowsAffected) {
					return results.FailureResult[answeredRound, error](ErrRoundAlreadyAnswered), nil
				}
				return results.OperationResult[answeredRound, error]{}, err
			}

			return results.SuccessResult[answeredRound, error](answeredRound{
				snap:    snap.WithAnswer(profile.ID, correct, at),
				card:    card,
				correct: correct,
				at:      at,
			}), nil
		})
		if err != nil {
			return results.OperationResult[*AnswerResult, error]{}, err
		}
		if res.IsFailure() {
			return results.FailureResult[*AnswerResult, error](*res.Failure), nil
		}

		return results.SuccessResult[*AnswerResult, error](s.afterAnswer(ctx, matchID, roundID, profile, answer, *res.Success)), nil
	}))
}

// afterAnswer runs once the answer is committed: it publishes the outcome,
// refreshes the scoreboard on a correct answer, then schedules the advance or
// completes the match.
func (s *MatchService) afterAnswer(ctx context.Context, matchID, roundID uuid.UUID, profile *playerservice.Profile, answer string, a answeredRound) *AnswerResult {
	s.metrics.RecordAnswer(ctx, a.correct)

	out := &AnswerResult{
		RoundID:       roundID,
		PlayerID:      profile.ID,
		Answer:        answer,
		IsCorrect:     a.correct,
		CorrectAnswer: a.card.CorrectAnswer,
		State:         a.snap.State,
	}
	finished := a.snap.State == matchdomain.StateMatchCompleted

	var advanceAt time.Time
	if !finished {
		advanceAt = a.at.Add(s.delay)
	}
	s.publish(ctx, events.RoundAnsweredV1, matchID, events.RoundAnsweredPayloadV1{
		MatchID:       matchID,
		RoundID:       roundID,
		PlayerID:      profile.ID,
		PlayerName:    profile.Name,
		Answer:        answer,
		IsCorrect:     a.correct,
		CorrectAnswer: a.card.CorrectAnswer,
		AdvanceAt:     advanceAt,
	})

	if a.correct {
		board, err := s.scores.Scoreboard(ctx, matchID)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to refresh scoreboard",
				attr.ExtractCorrelationID(ctx),
				attr.UUID("match_id", matchID),
				attr.Error(err),
			)
		} else {
			out.Scoreboard = board
			entries := make([]events.ScoreEntryV1, 0, len(board))
			for _, p := range board {
				entries = append(entries, events.ScoreEntryV1{PlayerID: p.PlayerID, Name: p.Name, Score: p.Score})
			}
			s.publish(ctx, events.ScoreboardUpdatedV1, matchID, events.ScoreboardUpdatedPayloadV1{MatchID: matchID, Scores: entries})
		}
	}

	if finished {
		s.completed(ctx, matchID, len(a.snap.Rounds))
		return out
	}

	if err := s.scheduler.ScheduleAdvance(ctx, matchID, roundID, advanceAt); err != nil {
		s.metrics.RecordAutoAdvance(ctx, "schedule_failed")
		s.logger.ErrorContext(ctx, "Failed to schedule auto-advance",
			attr.UUID("match_id", matchID),
			attr.UUID("round_id", roundID),
			attr.Error(err),
		)
		return out
	}
	s.metrics.RecordAutoAdvance(ctx, "scheduled")
	out.AdvanceAt = &advanceAt
	return out
}

// view renders a snapshot. card is the flashcard of the latest round when the
// caller already has it. reveal includes the correct answer of an open round.
func (s *MatchService) view(ctx context.Context, matchID uuid.UUID, snap matchdomain.Snapshot, deckSize int, card *flashcardservice.Flashcard, reveal bool) (*MatchState, error) {
	state := &MatchState{
		MatchID:          matchID,
		State:            snap.State,
		QuestionNumber:   snap.QuestionNumber,
		TotalFlashcards:  deckSize,
		UsedFlashcardIDs: make([]uuid.UUID, 0, len(snap.Rounds)),
	}
	for _, r := range snap.Rounds {
		state.UsedFlashcardIDs = append(state.UsedFlashcardIDs, r.FlashcardID)
	}

	last := snap.Last()
	if last == nil {
		return state, nil
	}
	if card == nil || card.ID != last.FlashcardID {
		c, err := s.flashcards.GetFlashcard(ctx, last.FlashcardID)
		if err != nil {
			return nil, fmt.Errorf("failed to load flashcard %s: %w", last.FlashcardID, err)
		}
		card = c
	}

	if !last.Answered() {
		current := &RoundView{
			RoundID:        last.ID,
			FlashcardID:    card.ID,
			QuestionNumber: len(snap.Rounds),
			Question:       card.Question,
			Options:        card.Options,
			StartedAt:      last.CreatedAt,
		}
		if reveal {
			current.CorrectAnswer = card.CorrectAnswer
		}
		state.Current = current
		return state, nil
	}

	outcome := &RoundOutcome{
		RoundID:       last.ID,
		FlashcardID:   card.ID,
		Question:      card.Question,
		AnsweredBy:    *last.AnsweredBy,
		PlayerName:    s.playerName(ctx, *last.AnsweredBy),
		IsCorrect:     last.IsCorrect != nil && *last.IsCorrect,
		CorrectAnswer: card.CorrectAnswer,
	}
	if last.AnsweredAt != nil {
		outcome.AnsweredAt = *last.AnsweredAt
	}
	state.LastOutcome = outcome
	return state, nil
}
