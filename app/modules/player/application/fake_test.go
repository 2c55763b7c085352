package playerservice

import (
	"context"
	"sort"
	"sync"

	playerdb "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/player/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Player Repo
// ------------------------

// FakePlayerRepo keeps rows in memory and enforces the user_id unique
// constraint, so concurrent get-or-create behaves like Postgres.
type FakePlayerRepo struct {
	mu    sync.Mutex
	trace []string
	rows  []playerdb.Player

	GetFirstByUserIDFunc func(ctx context.Context, db bun.IDB, userID string) (*playerdb.Player, error)
	InsertIfAbsentFunc   func(ctx context.Context, db bun.IDB, p *playerdb.Player) (bool, error)
	GetByIDsFunc         func(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]playerdb.Player, error)
	UpdateNameFunc       func(ctx context.Context, db bun.IDB, id uuid.UUID, name string) error
}

func NewFakePlayerRepo() *FakePlayerRepo {
	return &FakePlayerRepo{trace: []string{}}
}

func (f *FakePlayerRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakePlayerRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

// Seed stores rows as-is, bypassing the unique constraint to model legacy duplicates.
func (f *FakePlayerRepo) Seed(rows ...playerdb.Player) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, rows...)
}

func (f *FakePlayerRepo) Count(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.rows {
		if r.UserID == userID {
			n++
		}
	}
	return n
}

// --- Repository Interface Implementation ---

func (f *FakePlayerRepo) GetFirstByUserID(ctx context.Context, db bun.IDB, userID string) (*playerdb.Player, error) {
	f.record("GetFirstByUserID")
	if f.GetFirstByUserIDFunc != nil {
		return f.GetFirstByUserIDFunc(ctx, db, userID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var matches []playerdb.Player
	for _, r := range f.rows {
		if r.UserID == userID {
			matches = append(matches, r)
		}
	}
	if len(matches) == 0 {
		return nil, playerdb.ErrNotFound
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.Before(matches[j].CreatedAt)
		}
		return matches[i].ID.String() < matches[j].ID.String()
	})
	p := matches[0]
	return &p, nil
}

func (f *FakePlayerRepo) InsertIfAbsent(ctx context.Context, db bun.IDB, p *playerdb.Player) (bool, error) {
	f.record("InsertIfAbsent")
	if f.InsertIfAbsentFunc != nil {
		return f.InsertIfAbsentFunc(ctx, db, p)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.UserID == p.UserID {
			return false, nil
		}
	}
	f.rows = append(f.rows, *p)
	return true, nil
}

func (f *FakePlayerRepo) GetByIDs(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]playerdb.Player, error) {
	f.record("GetByIDs")
	if f.GetByIDsFunc != nil {
		return f.GetByIDsFunc(ctx, db, ids)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []playerdb.Player
	for _, r := range f.rows {
		if want[r.ID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *FakePlayerRepo) UpdateName(ctx context.Context, db bun.IDB, id uuid.UUID, name string) error {
	f.record("UpdateName")
	if f.UpdateNameFunc != nil {
		return f.UpdateNameFunc(ctx, db, id, name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].Name = name
			return nil
		}
	}
	return playerdb.ErrNoRowsAffected
}

var _ playerdb.Repository = (*FakePlayerRepo)(nil)
