// Package matchdomain holds the round state machine of a match. It is pure:
// the state is always derived from the persisted rounds and the current deck,
// so a reload reaches the same state the players saw.
package matchdomain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// State is the position of a match in its round lifecycle.
type State string

const (
	StateNoRound         State = "no_round"
	StateRoundInProgress State = "round_in_progress"
	StateRoundAnswered   State = "round_answered"
	StateMatchCompleted  State = "match_completed"
)

var (
	ErrRoundInProgress      = errors.New("a round is already in progress")
	ErrNoActiveRound        = errors.New("no round is in progress")
	ErrRoundNotActive       = errors.New("round is not the active round")
	ErrRoundAlreadyAnswered = errors.New("round has already been answered")
	ErrMatchCompleted       = errors.New("match is completed")
	ErrNoFlashcardsLeft     = errors.New("no unused flashcards left")
)

// Round is one question of a match.
type Round struct {
	ID          uuid.UUID
	FlashcardID uuid.UUID
	AnsweredBy  *uuid.UUID
	IsCorrect   *bool
	CreatedAt   time.Time
	AnsweredAt  *time.Time
}

// Answered reports whether a player has claimed the round.
func (r Round) Answered() bool { return r.AnsweredBy != nil }

// Snapshot is the derived state of a match.
type Snapshot struct {
	State State
	// Rounds in creation order.
	Rounds []Round
	// Available are the deck ids not yet used by this match, in deck order.
	Available []uuid.UUID
	// QuestionNumber is the 1-based number of the current or next question.
	QuestionNumber int
}

// Rehydrate derives the snapshot from persisted rounds and the full deck.
func Rehydrate(deck []uuid.UUID, rounds []Round) Snapshot {
	used := make(map[uuid.UUID]struct{}, len(rounds))
	for _, r := range rounds {
		used[r.FlashcardID] = struct{}{}
	}
	available := make([]uuid.UUID, 0, len(deck))
	for _, id := range deck {
		if _, ok := used[id]; !ok {
			available = append(available, id)
		}
	}

	snap := Snapshot{Rounds: rounds, Available: available}
	last := snap.Last()

	switch {
	case last != nil && !last.Answered():
		snap.State = StateRoundInProgress
		snap.QuestionNumber = len(rounds)
	case len(available) == 0:
		snap.State = StateMatchCompleted
		snap.QuestionNumber = len(rounds)
	case last != nil:
		snap.State = StateRoundAnswered
		snap.QuestionNumber = len(rounds) + 1
	default:
		snap.State = StateNoRound
		snap.QuestionNumber = 1
	}
	return snap
}

// Last returns the most recent round, or nil before the first round.
func (s Snapshot) Last() *Round {
	if len(s.Rounds) == 0 {
		return nil
	}
	return &s.Rounds[len(s.Rounds)-1]
}

// Active returns the unanswered round, if any.
func (s Snapshot) Active() *Round {
	if s.State != StateRoundInProgress {
		return nil
	}
	return s.Last()
}

// CanStart checks that a new round may begin.
func (s Snapshot) CanStart() error {
	switch s.State {
	case StateRoundInProgress:
		return ErrRoundInProgress
	case StateMatchCompleted:
		return ErrMatchCompleted
	}
	return nil
}

// CanAnswer checks that roundID is the round accepting answers.
func (s Snapshot) CanAnswer(roundID uuid.UUID) error {
	active := s.Active()
	if active == nil {
		for _, r := range s.Rounds {
			if r.ID == roundID && r.Answered() {
				return ErrRoundAlreadyAnswered
			}
		}
		return ErrNoActiveRound
	}
	if active.ID != roundID {
		for _, r := range s.Rounds {
			if r.ID == roundID {
				return ErrRoundAlreadyAnswered
			}
		}
		return ErrRoundNotActive
	}
	return nil
}

// Pick selects the next flashcard uniformly at random from the available set.
// intn must return a value in [0, n).
func (s Snapshot) Pick(intn func(n int) int) (uuid.UUID, error) {
	if len(s.Available) == 0 {
		return uuid.Nil, ErrNoFlashcardsLeft
	}
	return s.Available[intn(len(s.Available))], nil
}

// WithRound is the snapshot after r has been started.
func (s Snapshot) WithRound(r Round) Snapshot {
	rounds := append(append([]Round(nil), s.Rounds...), r)
	available := make([]uuid.UUID, 0, len(s.Available))
	for _, id := range s.Available {
		if id != r.FlashcardID {
			available = append(available, id)
		}
	}
	return Snapshot{
		State:          StateRoundInProgress,
		Rounds:         rounds,
		Available:      available,
		QuestionNumber: len(rounds),
	}
}

// WithAnswer is the snapshot after the active round was claimed by playerID.
func (s Snapshot) WithAnswer(playerID uuid.UUID, correct bool, at time.Time) Snapshot {
	if s.State != StateRoundInProgress {
		return s
	}
	rounds := append([]Round(nil), s.Rounds...)
	last := &rounds[len(rounds)-1]
	last.AnsweredBy = &playerID
	last.IsCorrect = &correct
	last.AnsweredAt = &at

	next := Snapshot{Rounds: rounds, Available: s.Available}
	if len(s.Available) == 0 {
		next.State = StateMatchCompleted
		next.QuestionNumber = len(rounds)
	} else {
		next.State = StateRoundAnswered
		next.QuestionNumber = len(rounds) + 1
	}
	return next
}
