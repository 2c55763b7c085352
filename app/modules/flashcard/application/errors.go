package flashcardservice

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFlashcard is the parent of every validation failure.
	ErrInvalidFlashcard = errors.New("invalid flashcard")
	// ErrFlashcardNotFound is returned for an unknown flashcard id.
	ErrFlashcardNotFound = errors.New("flashcard not found")
	// ErrFlashcardInUse is returned when the cascade could not clear every reference.
	ErrFlashcardInUse = errors.New("could not delete flashcard: it is still used by a match, nothing was deleted")
	// ErrUnsupportedFile is returned for import files that are neither CSV nor XLSX.
	ErrUnsupportedFile = errors.New("unsupported import file")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidFlashcard }
