package playerservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	playerdb "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/player/infrastructure/repositories"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/observability"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestService(repo playerdb.Repository) *PlayerService {
	return NewPlayerService(
		repo,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NoOpMetrics{},
		noop.NewTracerProvider().Tracer("test"),
		nil,
	)
}

func TestResolvePlayer(t *testing.T) {
	existingID := uuid.New()

	tests := []struct {
		name      string
		identity  session.Identity
		setupRepo func(*FakePlayerRepo)
		wantName  string
		wantID    *uuid.UUID
		wantErr   error
		wantTrace []string
	}{
		{
			name:      "creates player on first sight using metadata name",
			identity:  session.Identity{UserID: "auth-1", Email: "ada@example.com", Metadata: map[string]string{"name": "Ada"}},
			wantName:  "Ada",
			wantTrace: []string{"GetFirstByUserID", "InsertIfAbsent", "GetFirstByUserID"},
		},
		{
			name:      "falls back to email local part",
			identity:  session.Identity{UserID: "auth-2", Email: "grace@example.com"},
			wantName:  "grace",
			wantTrace: []string{"GetFirstByUserID", "InsertIfAbsent", "GetFirstByUserID"},
		},
		{
			name:      "falls back to literal Player",
			identity:  session.Identity{UserID: "auth-3"},
			wantName:  session.DefaultDisplayName,
			wantTrace: []string{"GetFirstByUserID", "InsertIfAbsent", "GetFirstByUserID"},
		},
		{
			name:     "returns existing player without writing",
			identity: session.Identity{UserID: "auth-4", Metadata: map[string]string{"name": "New Name"}},
			setupRepo: func(f *FakePlayerRepo) {
				f.Seed(playerdb.Player{ID: existingID, UserID: "auth-4", Name: "Stored Name", CreatedAt: time.Now()})
			},
			wantName:  "Stored Name",
			wantID:    &existingID,
			wantTrace: []string{"GetFirstByUserID"},
		},
		{
			name:     "lookup failure is surfaced",
			identity: session.Identity{UserID: "auth-5"},
			setupRepo: func(f *FakePlayerRepo) {
				f.GetFirstByUserIDFunc = func(ctx context.Context, db bun.IDB, userID string) (*playerdb.Player, error) {
					return nil, errors.New("connection reset")
				}
			},
			wantErr: errors.New("connection reset"),
		},
		{
			name:     "missing user id is rejected before any query",
			identity: session.Identity{Email: "x@example.com"},
			wantErr:  ErrMissingUserID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakePlayerRepo()
			if tt.setupRepo != nil {
				tt.setupRepo(repo)
			}
			svc := newTestService(repo)

			got, err := svc.ResolvePlayer(context.Background(), tt.identity)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.identity.UserID, got.UserID)
			if tt.wantID != nil {
				assert.Equal(t, *tt.wantID, got.ID)
			}
			assert.Equal(t, tt.wantTrace, repo.Trace())
		})
	}
}

func TestResolvePlayer_ConcurrentCallsCreateOneRow(t *testing.T) {
	repo := NewFakePlayerRepo()
	svc := newTestService(repo)
	identity := session.Identity{UserID: "auth-race", Email: "race@example.com"}

	const callers = 16
	ids := make([]uuid.UUID, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := svc.ResolvePlayer(context.Background(), identity)
			if err != nil {
				t.Errorf("resolve %d: %v", i, err)
				return
			}
			ids[i] = p.ID
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, repo.Count("auth-race"))
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestResolvePlayer_LegacyDuplicatesPickFirst(t *testing.T) {
	repo := NewFakePlayerRepo()
	older := playerdb.Player{ID: uuid.New(), UserID: "auth-dup", Name: "First", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := playerdb.Player{ID: uuid.New(), UserID: "auth-dup", Name: "Second", CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	repo.Seed(newer, older)

	svc := newTestService(repo)
	for i := 0; i < 3; i++ {
		got, err := svc.ResolvePlayer(context.Background(), session.Identity{UserID: "auth-dup"})
		require.NoError(t, err)
		assert.Equal(t, older.ID, got.ID)
	}
}

func TestGetProfiles(t *testing.T) {
	repo := NewFakePlayerRepo()
	a := playerdb.Player{ID: uuid.New(), UserID: "a", Name: "A"}
	b := playerdb.Player{ID: uuid.New(), UserID: "b", Name: "B"}
	repo.Seed(a, b)

	got, err := newTestService(repo).GetProfiles(context.Background(), []uuid.UUID{a.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[a.ID].Name)
}

func TestRename(t *testing.T) {
	repo := NewFakePlayerRepo()
	svc := newTestService(repo)
	identity := session.Identity{UserID: "auth-r"}

	_, err := svc.Rename(context.Background(), identity, "   ")
	assert.ErrorIs(t, err, ErrInvalidName)

	got, err := svc.Rename(context.Background(), identity, "  Quiz Wizard ")
	require.NoError(t, err)
	assert.Equal(t, "Quiz Wizard", got.Name)

	again, err := svc.ResolvePlayer(context.Background(), identity)
	require.NoError(t, err)
	assert.Equal(t, "Quiz Wizard", again.Name)
	assert.Equal(t, got.ID, again.ID)
}
