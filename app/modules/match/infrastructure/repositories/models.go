package matchdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Match is a game session. CreatedBy is a player id.
type Match struct {
	bun.BaseModel `bun:"table:matches,alias:m"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	CreatedBy uuid.UUID `bun:"created_by,type:uuid,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// MatchPlayer records membership. (match_id, player_id) is unique.
type MatchPlayer struct {
	bun.BaseModel `bun:"table:match_players,alias:mp"`

	MatchID  uuid.UUID `bun:"match_id,pk,type:uuid"`
	PlayerID uuid.UUID `bun:"player_id,pk,type:uuid"`
	JoinedAt time.Time `bun:"joined_at,notnull,default:current_timestamp"`
}

// Round is one flashcard shown in a match. (match_id, flashcard_id) is unique.
type Round struct {
	bun.BaseModel `bun:"table:match_rounds,alias:r"`

	ID          uuid.UUID  `bun:"id,pk,type:uuid"`
	MatchID     uuid.UUID  `bun:"match_id,type:uuid,notnull"`
	FlashcardID uuid.UUID  `bun:"flashcard_id,type:uuid,notnull"`
	AnsweredBy  *uuid.UUID `bun:"answered_by,type:uuid"`
	IsCorrect   *bool      `bun:"is_correct"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	AnsweredAt  *time.Time `bun:"answered_at"`
}

// RoundAttempt is a submitted answer. (round_id, player_id) is unique.
type RoundAttempt struct {
	bun.BaseModel `bun:"table:round_attempts,alias:ra"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	RoundID   uuid.UUID `bun:"round_id,type:uuid,notnull"`
	PlayerID  uuid.UUID `bun:"player_id,type:uuid,notnull"`
	Answer    string    `bun:"answer,notnull"`
	IsCorrect bool      `bun:"is_correct,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
