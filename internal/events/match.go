// Package events defines the realtime topics and payloads published while a
// match is played.
package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoundStartedV1       = "frenzy.match.round.started.v1"
	RoundAnsweredV1      = "frenzy.match.round.answered.v1"
	ScoreboardUpdatedV1  = "frenzy.match.scoreboard.updated.v1"
	MatchCompletedV1     = "frenzy.match.completed.v1"
	PlayerJoinedV1       = "frenzy.match.player.joined.v1"
	MetadataMatchID      = "match_id"
	MetadataEventVersion = "event_version"
)

// Topics lists every topic a realtime observer receives.
var Topics = []string{
	RoundStartedV1,
	RoundAnsweredV1,
	ScoreboardUpdatedV1,
	MatchCompletedV1,
	PlayerJoinedV1,
}

// RoundStartedPayloadV1 announces a new question. The correct answer is withheld.
type RoundStartedPayloadV1 struct {
	MatchID        uuid.UUID `json:"match_id"`
	RoundID        uuid.UUID `json:"round_id"`
	FlashcardID    uuid.UUID `json:"flashcard_id"`
	QuestionNumber int       `json:"question_number"`
	Question       string    `json:"question"`
	Options        []string  `json:"options"`
	StartedAt      time.Time `json:"started_at"`
}

// RoundAnsweredPayloadV1 reports the accepted answer of a round.
type RoundAnsweredPayloadV1 struct {
	MatchID       uuid.UUID `json:"match_id"`
	RoundID       uuid.UUID `json:"round_id"`
	PlayerID      uuid.UUID `json:"player_id"`
	PlayerName    string    `json:"player_name"`
	Answer        string    `json:"answer"`
	IsCorrect     bool      `json:"is_correct"`
	CorrectAnswer string    `json:"correct_answer"`
	AdvanceAt     time.Time `json:"advance_at"`
}

// ScoreEntryV1 is one scoreboard row.
type ScoreEntryV1 struct {
	PlayerID uuid.UUID `json:"player_id"`
	Name     string    `json:"name"`
	Score    int       `json:"score"`
}

// ScoreboardUpdatedPayloadV1 carries the full scoreboard after a correct answer.
type ScoreboardUpdatedPayloadV1 struct {
	MatchID uuid.UUID      `json:"match_id"`
	Scores  []ScoreEntryV1 `json:"scores"`
}

// MatchCompletedPayloadV1 is published once every flashcard has been used.
type MatchCompletedPayloadV1 struct {
	MatchID     uuid.UUID `json:"match_id"`
	TotalRounds int       `json:"total_rounds"`
}

// PlayerJoinedPayloadV1 is published when a player joins a match for the first time.
type PlayerJoinedPayloadV1 struct {
	MatchID    uuid.UUID `json:"match_id"`
	PlayerID   uuid.UUID `json:"player_id"`
	PlayerName string    `json:"player_name"`
}
