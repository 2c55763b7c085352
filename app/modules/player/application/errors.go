package playerservice

import "errors"

var (
	// ErrMissingUserID is returned when the identity carries no auth subject.
	ErrMissingUserID = errors.New("identity has no user id")
	// ErrInvalidName is returned when a rename is blank or too long.
	ErrInvalidName = errors.New("name must be between 1 and 40 characters")
)
