package playerservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	playerdb "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/player/infrastructure/repositories"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/observability"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/operations"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/results"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/session"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

const maxNameLength = 40

// Profile is the public view of a player.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PlayerService implements the Service interface.
type PlayerService struct {
	repo playerdb.Repository
	in   *operations.Instrument
}

// NewPlayerService creates a new PlayerService.
func NewPlayerService(
	repo playerdb.Repository,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *PlayerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlayerService{
		repo: repo,
		in: &operations.Instrument{
			Service: "PlayerService",
			Logger:  logger,
			Metrics: metrics,
			Tracer:  tracer,
			DB:      db,
		},
	}
}

// ResolvePlayer looks the player up by auth user id and creates it when absent.
// Concurrent first calls race on the user_id unique constraint; the loser's
// insert is a no-op and both re-read the same row.
func (s *PlayerService) ResolvePlayer(ctx context.Context, identity session.Identity) (*Profile, error) {
	if strings.TrimSpace(identity.UserID) == "" {
		return nil, ErrMissingUserID
	}

	result, err := operations.WithTelemetry(s.in, ctx, "ResolvePlayer", identity.UserID, func(ctx context.Context) (results.OperationResult[*Profile, error], error) {
		return s.resolve(ctx, nil, identity)
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}

func (s *PlayerService) resolve(ctx context.Context, db bun.IDB, identity session.Identity) (results.OperationResult[*Profile, error], error) {
	existing, err := s.repo.GetFirstByUserID(ctx, db, identity.UserID)
	if err == nil {
		return results.SuccessResult[*Profile, error](toProfile(existing)), nil
	}
	if !errors.Is(err, playerdb.ErrNotFound) {
		return results.OperationResult[*Profile, error]{}, fmt.Errorf("failed to look up player: %w", err)
	}

	candidate := &playerdb.Player{
		ID:        uuid.New(),
		UserID:    identity.UserID,
		Name:      identity.DisplayName(),
		CreatedAt: time.Now().UTC(),
	}
	if identity.Email != "" {
		email := identity.Email
		candidate.Email = &email
	}

	if _, err := s.repo.InsertIfAbsent(ctx, db, candidate); err != nil {
		return results.OperationResult[*Profile, error]{}, fmt.Errorf("failed to create player: %w", err)
	}

	created, err := s.repo.GetFirstByUserID(ctx, db, identity.UserID)
	if err != nil {
		return results.OperationResult[*Profile, error]{}, fmt.Errorf("failed to re-read player after insert: %w", err)
	}
	return results.SuccessResult[*Profile, error](toProfile(created)), nil
}

func (s *PlayerService) ResolvePlayerID(ctx context.Context, identity session.Identity) (uuid.UUID, error) {
	p, err := s.ResolvePlayer(ctx, identity)
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

// GetProfiles loads players by id.
func (s *PlayerService) GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Profile, error) {
	result, err := operations.WithTelemetry(s.in, ctx, "GetProfiles", fmt.Sprintf("%d ids", len(ids)), func(ctx context.Context) (results.OperationResult[map[uuid.UUID]*Profile, error], error) {
		players, err := s.repo.GetByIDs(ctx, nil, ids)
		if err != nil {
			return results.OperationResult[map[uuid.UUID]*Profile, error]{}, err
		}
		out := make(map[uuid.UUID]*Profile, len(players))
		for i := range players {
			out[players[i].ID] = toProfile(&players[i])
		}
		return results.SuccessResult[map[uuid.UUID]*Profile, error](out), nil
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}

// Rename resolves the caller and stores a new display name.
func (s *PlayerService) Rename(ctx context.Context, identity session.Identity, name string) (*Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return nil, ErrInvalidName
	}
	if strings.TrimSpace(identity.UserID) == "" {
		return nil, ErrMissingUserID
	}

	result, err := operations.WithTelemetry(s.in, ctx, "Rename", identity.UserID, func(ctx context.Context) (results.OperationResult[*Profile, error], error) {
		return operations.RunInTx(s.in, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*Profile, error], error) {
			resolved, err := s.resolve(ctx, db, identity)
			if err != nil {
				return resolved, err
			}
			profile := *resolved.Success
			if err := s.repo.UpdateName(ctx, db, profile.ID, name); err != nil {
				return results.OperationResult[*Profile, error]{}, err
			}
			profile.Name = name
			return results.SuccessResult[*Profile, error](profile), nil
		})
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}

func toProfile(p *playerdb.Player) *Profile {
	profile := &Profile{
		ID:        p.ID,
		UserID:    p.UserID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
	}
	if p.Email != nil {
		profile.Email = *p.Email
	}
	return profile
}
