package flashcarddb

import "errors"

var (
	// ErrNotFound is returned when a flashcard is not found.
	ErrNotFound = errors.New("flashcard not found")
	// ErrNoRowsAffected is returned when a delete matched no rows.
	ErrNoRowsAffected = errors.New("no rows affected")
	// ErrStillReferenced is returned when a delete hits a foreign key.
	ErrStillReferenced = errors.New("flashcard is still referenced")
)
