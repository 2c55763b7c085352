package matchdb

import (
	"errors"

	"github.com/uptrace/bun/driver/pgdriver"
)

var (
	// ErrNotFound is returned when a match or round does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoRowsAffected is returned when a conditional update matched nothing.
	ErrNoRowsAffected = errors.New("no rows affected")
	// ErrDuplicateRound is returned when a flashcard is already used by the match.
	ErrDuplicateRound = errors.New("flashcard already used in match")
	// ErrDuplicateAttempt is returned when the player already answered the round.
	ErrDuplicateAttempt = errors.New("player already answered round")
)

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}
