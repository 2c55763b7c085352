package scoredb

import "errors"

// ErrMatchNotFound is returned when the match does not exist.
var ErrMatchNotFound = errors.New("match not found")
