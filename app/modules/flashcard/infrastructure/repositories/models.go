package flashcarddb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Flashcard is a stored question with its answer options.
type Flashcard struct {
	bun.BaseModel `bun:"table:flashcards,alias:f"`

	ID            uuid.UUID  `bun:"id,pk,type:uuid"`
	Question      string     `bun:"question,notnull"`
	Options       []string   `bun:"options,type:jsonb,notnull"`
	CorrectAnswer string     `bun:"correct_answer,notnull"`
	CreatedBy     *uuid.UUID `bun:"created_by,type:uuid"`
	CreatedAt     time.Time  `bun:"created_at,notnull,default:current_timestamp"`
}
