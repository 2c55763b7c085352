package matchservice

import (
	"context"

	matchdb "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/match/infrastructure/repositories"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/events"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/operations"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/results"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/session"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CreateMatch opens a match hosted by the caller, who joins it.
func (s *MatchService) CreateMatch(ctx context.Context, identity session.Identity) (*MatchInfo, error) {
	return unwrap(operations.WithTelemetry(s.in, ctx, "CreateMatch", identity.UserID, func(ctx context.Context) (results.OperationResult[*MatchInfo, error], error) {
		profile, err := s.players.ResolvePlayer(ctx, identity)
		if err != nil {
			return results.OperationResult[*MatchInfo, error]{}, err
		}

		now := s.now()
		match := &matchdb.Match{ID: uuid.New(), CreatedBy: profile.ID, CreatedAt: now}

		return operations.RunInTx(s.in, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*MatchInfo, error], error) {
			if err := s.repo.CreateMatch(ctx, db, match); err != nil {
				return results.OperationResult[*MatchInfo, error]{}, err
			}
			if _, err := s.repo.AddPlayer(ctx, db, &matchdb.MatchPlayer{MatchID: match.ID, PlayerID: profile.ID, JoinedAt: now}); err != nil {
				return results.OperationResult[*MatchInfo, error]{}, err
			}
			return results.SuccessResult[*MatchInfo, error](&MatchInfo{
				ID:        match.ID,
				CreatedBy: match.CreatedBy,
				CreatedAt: match.CreatedAt,
				Players: []MatchPlayer{{
					PlayerID: profile.ID,
					Name:     profile.Name,
					IsHost:   true,
					JoinedAt: now,
				}},
			}), nil
		})
	}))
}

// JoinMatch adds the caller to the match. Joining twice changes nothing.
func (s *MatchService) JoinMatch(ctx context.Context, identity session.Identity, matchID uuid.UUID) (*MatchInfo, error) {
	return unwrap(operations.WithTelemetry(s.in, ctx, "JoinMatch", matchID.String(), func(ctx context.Context) (results.OperationResult[*MatchInfo, error], error) {
		profile, err := s.players.ResolvePlayer(ctx, identity)
		if err != nil {
			return results.OperationResult[*MatchInfo, error]{}, err
		}

		match, err := s.repo.GetMatch(ctx, nil, matchID)
		if err != nil {
			if notFound(err) {
				return results.FailureResult[*MatchInfo, error](ErrMatchNotFound), nil
			}
			return results.OperationResult[*MatchInfo, error]{}, err
		}

		joined, err := s.repo.AddPlayer(ctx, nil, &matchdb.MatchPlayer{MatchID: matchID, PlayerID: profile.ID, JoinedAt: s.now()})
		if err != nil {
			return results.OperationResult[*MatchInfo, error]{}, err
		}

		players, err := s.listPlayers(ctx, match)
		if err != nil {
			return results.OperationResult[*MatchInfo, error]{}, err
		}

		if joined {
			s.publish(ctx, events.PlayerJoinedV1, matchID, events.PlayerJoinedPayloadV1{
				MatchID:    matchID,
				PlayerID:   profile.ID,
				PlayerName: profile.Name,
			})
		}

		return results.SuccessResult[*MatchInfo, error](&MatchInfo{
			ID:        match.ID,
			CreatedBy: match.CreatedBy,
			CreatedAt: match.CreatedAt,
			Players:   players,
		}), nil
	}))
}

// ListPlayers returns the members of a match in join order.
func (s *MatchService) ListPlayers(ctx context.Context, matchID uuid.UUID) ([]MatchPlayer, error) {
	return unwrap(operations.WithTelemetry(s.in, ctx, "ListPlayers", matchID.String(), func(ctx context.Context) (results.OperationResult[[]MatchPlayer, error], error) {
		match, err := s.repo.GetMatch(ctx, nil, matchID)
		if err != nil {
			if notFound(err) {
				return results.FailureResult[[]MatchPlayer, error](ErrMatchNotFound), nil
			}
			return results.OperationResult[[]MatchPlayer, error]{}, err
		}
		players, err := s.listPlayers(ctx, match)
		if err != nil {
			return results.OperationResult[[]MatchPlayer, error]{}, err
		}
		return results.SuccessResult[[]MatchPlayer, error](players), nil
	}))
}

func (s *MatchService) listPlayers(ctx context.Context, match *matchdb.Match) ([]MatchPlayer, error) {
	rows, err := s.repo.ListPlayers(ctx, nil, match.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.PlayerID)
	}
	profiles, err := s.players.GetProfiles(ctx, ids)
	if err != nil {
		return nil, err
	}

	players := make([]MatchPlayer, 0, len(rows))
	for _, row := range rows {
		name := session.DefaultDisplayName
		if p, ok := profiles[row.PlayerID]; ok && p.Name != "" {
			name = p.Name
		}
		players = append(players, MatchPlayer{
			PlayerID: row.PlayerID,
			Name:     name,
			IsHost:   row.PlayerID == match.CreatedBy,
			JoinedAt: row.JoinedAt,
		})
	}
	return players, nil
}
