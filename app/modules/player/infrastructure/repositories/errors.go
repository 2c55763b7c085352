package playerdb

import "errors"

var (
	// ErrNotFound is returned when a player is not found.
	ErrNotFound = errors.New("player not found")
	// ErrNoRowsAffected is returned when an update or delete matched no rows.
	ErrNoRowsAffected = errors.New("no rows affected")
)
