package matchservice

import (
	"context"

	flashcardservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/flashcard/application"
	playerservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/player/application"
	scoreservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/score/application"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/session"
	"github.com/google/uuid"
)

// Service runs matches: membership, the round lifecycle and auto-advance.
type Service interface {
	CreateMatch(ctx context.Context, identity session.Identity) (*MatchInfo, error)
	// JoinMatch is idempotent.
	JoinMatch(ctx context.Context, identity session.Identity, matchID uuid.UUID) (*MatchInfo, error)
	ListPlayers(ctx context.Context, matchID uuid.UUID) ([]MatchPlayer, error)

	// GetMatchState rebuilds the match from persisted rounds.
	GetMatchState(ctx context.Context, matchID uuid.UUID) (*MatchState, error)
	// StartRound picks an unused flashcard at random and opens a round for it.
	StartRound(ctx context.Context, identity session.Identity, matchID uuid.UUID) (*MatchState, error)
	// AnswerFlashcard records the caller's answer to the active round. The
	// first answer claims the round.
	AnswerFlashcard(ctx context.Context, identity session.Identity, matchID, roundID uuid.UUID, answer string) (*AnswerResult, error)
	// NextRound cancels a pending auto-advance and starts a round.
	NextRound(ctx context.Context, identity session.Identity, matchID uuid.UUID) (*MatchState, error)
	CancelAutoAdvance(ctx context.Context, matchID uuid.UUID) error
	// AdvanceRound is the auto-advance callback. It is a no-op unless roundID
	// is still the latest, answered round.
	AdvanceRound(ctx context.Context, matchID, roundID uuid.UUID) error
}

// FlashcardReader is the part of the flashcard service a match needs.
type FlashcardReader interface {
	ListFlashcardIDs(ctx context.Context) ([]uuid.UUID, error)
	GetFlashcard(ctx context.Context, id uuid.UUID) (*flashcardservice.Flashcard, error)
}

// PlayerResolver is the part of the player service a match needs.
type PlayerResolver interface {
	ResolvePlayer(ctx context.Context, identity session.Identity) (*playerservice.Profile, error)
	GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*playerservice.Profile, error)
}

// ScoreReader recomputes the scoreboard after a correct answer.
type ScoreReader interface {
	Scoreboard(ctx context.Context, matchID uuid.UUID) ([]scoreservice.PlayerScore, error)
}
