package playerhandlers

import (
	"context"

	playerservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/player/application"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/session"
	"github.com/google/uuid"
)

type FakeService struct {
	ResolvePlayerFunc func(ctx context.Context, identity session.Identity) (*playerservice.Profile, error)
	GetProfilesFunc   func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*playerservice.Profile, error)
	RenameFunc        func(ctx context.Context, identity session.Identity, name string) (*playerservice.Profile, error)
}

func (f *FakeService) ResolvePlayer(ctx context.Context, identity session.Identity) (*playerservice.Profile, error) {
	if f.ResolvePlayerFunc != nil {
		return f.ResolvePlayerFunc(ctx, identity)
	}
	return &playerservice.Profile{ID: uuid.New(), UserID: identity.UserID, Name: identity.DisplayName()}, nil
}

func (f *FakeService) ResolvePlayerID(ctx context.Context, identity session.Identity) (uuid.UUID, error) {
	p, err := f.ResolvePlayer(ctx, identity)
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

func (f *FakeService) GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*playerservice.Profile, error) {
	if f.GetProfilesFunc != nil {
		return f.GetProfilesFunc(ctx, ids)
	}
	return map[uuid.UUID]*playerservice.Profile{}, nil
}

func (f *FakeService) Rename(ctx context.Context, identity session.Identity, name string) (*playerservice.Profile, error) {
	if f.RenameFunc != nil {
		return f.RenameFunc(ctx, identity, name)
	}
	return &playerservice.Profile{UserID: identity.UserID, Name: name}, nil
}

var _ playerservice.Service = (*FakeService)(nil)
