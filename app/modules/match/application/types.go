package matchservice

import (
	"time"

	matchdomain "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/match/domain"
	scoreservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/score/application"
	"github.com/google/uuid"
)

// MatchPlayer is a member of a match.
type MatchPlayer struct {
	PlayerID uuid.UUID `json:"player_id"`
	Name     string    `json:"name"`
	IsHost   bool      `json:"is_host"`
	JoinedAt time.Time `json:"joined_at"`
}

// MatchInfo describes a match and its members.
type MatchInfo struct {
	ID        uuid.UUID     `json:"id"`
	CreatedBy uuid.UUID     `json:"created_by"`
	CreatedAt time.Time     `json:"created_at"`
	Players   []MatchPlayer `json:"players"`
}

// RoundView is the question of a round. CorrectAnswer is only set for the
// player who started the round.
type RoundView struct {
	RoundID        uuid.UUID `json:"round_id"`
	FlashcardID    uuid.UUID `json:"flashcard_id"`
	QuestionNumber int       `json:"question_number"`
	Question       string    `json:"question"`
	Options        []string  `json:"options"`
	CorrectAnswer  string    `json:"correct_answer,omitempty"`
	StartedAt      time.Time `json:"started_at"`
}

// RoundOutcome is how the latest answered round ended.
type RoundOutcome struct {
	RoundID       uuid.UUID `json:"round_id"`
	FlashcardID   uuid.UUID `json:"flashcard_id"`
	Question      string    `json:"question"`
	AnsweredBy    uuid.UUID `json:"answered_by"`
	PlayerName    string    `json:"player_name"`
	IsCorrect     bool      `json:"is_correct"`
	CorrectAnswer string    `json:"correct_answer"`
	AnsweredAt    time.Time `json:"answered_at"`
}

// MatchState is the rehydrated view of a match.
type MatchState struct {
	MatchID          uuid.UUID         `json:"match_id"`
	State            matchdomain.State `json:"state"`
	QuestionNumber   int               `json:"question_number"`
	TotalFlashcards  int               `json:"total_flashcards"`
	UsedFlashcardIDs []uuid.UUID       `json:"used_flashcard_ids"`
	Current          *RoundView        `json:"current,omitempty"`
	LastOutcome      *RoundOutcome     `json:"last_outcome,omitempty"`
}

// AnswerResult reports an accepted answer.
type AnswerResult struct {
	RoundID       uuid.UUID                  `json:"round_id"`
	PlayerID      uuid.UUID                  `json:"player_id"`
	Answer        string                     `json:"answer"`
	IsCorrect     bool                       `json:"is_correct"`
	CorrectAnswer string                     `json:"correct_answer"`
	State         matchdomain.State          `json:"state"`
	AdvanceAt     *time.Time                 `json:"advance_at,omitempty"`
	Scoreboard    []scoreservice.PlayerScore `json:"scoreboard,omitempty"`
}
