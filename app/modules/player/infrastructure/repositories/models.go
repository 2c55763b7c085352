package playerdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Player is the per-user participant record. UserID is the auth subject.
type Player struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	UserID    string    `bun:"user_id,notnull,unique"`
	Name      string    `bun:"name,notnull"`
	Email     *string   `bun:"email"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
