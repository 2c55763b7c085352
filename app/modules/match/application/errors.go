package matchservice

import (
	"errors"

	matchdomain "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/match/domain"
)

// ErrMatchNotFound is returned for an unknown match id.
var ErrMatchNotFound = errors.New("match not found")

// Round lifecycle failures, returned unchanged from the state machine.
var (
	ErrRoundInProgress      = matchdomain.ErrRoundInProgress
	ErrNoActiveRound        = matchdomain.ErrNoActiveRound
	ErrRoundNotActive       = matchdomain.ErrRoundNotActive
	ErrRoundAlreadyAnswered = matchdomain.ErrRoundAlreadyAnswered
	ErrMatchCompleted       = matchdomain.ErrMatchCompleted
)

// errStaleAdvance marks an auto-advance overtaken by a manual next.
var errStaleAdvance = errors.New("advance no longer applies")
