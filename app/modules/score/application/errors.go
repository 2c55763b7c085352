package scoreservice

import "errors"

// ErrMatchNotFound is returned for an unknown match id.
var ErrMatchNotFound = errors.New("match not found")
