package matchservice

import (
	"context"
	"sort"
	"sync"
	"time"

	flashcardservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/flashcard/application"
	matchqueue "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/match/infrastructure/queue"
	matchdb "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/match/infrastructure/repositories"
	playerservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/player/application"
	scoreservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/score/application"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/observability"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/session"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Match Repo
// ------------------------

// FakeMatchRepo is an in-memory repository with the same uniqueness rules as
// the tables. The Func fields override single methods.
type FakeMatchRepo struct {
	mu       sync.Mutex
	trace    []string
	matches  map[uuid.UUID]matchdb.Match
	members  []matchdb.MatchPlayer
	rounds   []matchdb.Round
	attempts []matchdb.RoundAttempt

	InsertRoundFunc       func(ctx context.Context, db bun.IDB, r *matchdb.Round) error
	InsertAttemptFunc     func(ctx context.Context, db bun.IDB, a *matchdb.RoundAttempt) error
	MarkRoundAnsweredFunc func(ctx context.Context, db bun.IDB, roundID, playerID uuid.UUID, isCorrect bool, at time.Time) error
}

func NewFakeMatchRepo() *FakeMatchRepo {
	return &FakeMatchRepo{matches: map[uuid.UUID]matchdb.Match{}}
}

func (f *FakeMatchRepo) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeMatchRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

func (f *FakeMatchRepo) Rounds() []matchdb.Round {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]matchdb.Round(nil), f.rounds...)
}

func (f *FakeMatchRepo) Attempts() []matchdb.RoundAttempt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]matchdb.RoundAttempt(nil), f.attempts...)
}

func (f *FakeMatchRepo) Members(matchID uuid.UUID) []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uuid.UUID
	for _, m := range f.members {
		if m.MatchID == matchID {
			ids = append(ids, m.PlayerID)
		}
	}
	return ids
}

// SeedRound stores a round as if an earlier session had played it.
func (f *FakeMatchRepo) SeedRound(r matchdb.Round) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rounds = append(f.rounds, r)
}

func (f *FakeMatchRepo) CreateMatch(_ context.Context, _ bun.IDB, m *matchdb.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateMatch")
	f.matches[m.ID] = *m
	return nil
}

func (f *FakeMatchRepo) GetMatch(_ context.Context, _ bun.IDB, id uuid.UUID) (*matchdb.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetMatch")
	m, ok := f.matches[id]
	if !ok {
		return nil, matchdb.ErrNotFound
	}
	return &m, nil
}

func (f *FakeMatchRepo) LockMatch(_ context.Context, _ bun.IDB, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("LockMatch")
	if _, ok := f.matches[id]; !ok {
		return matchdb.ErrNotFound
	}
	return nil
}

func (f *FakeMatchRepo) AddPlayer(_ context.Context, _ bun.IDB, mp *matchdb.MatchPlayer) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AddPlayer")
	for _, m := range f.members {
		if m.MatchID == mp.MatchID && m.PlayerID == mp.PlayerID {
			return false, nil
		}
	}
	f.members = append(f.members, *mp)
	return true, nil
}

func (f *FakeMatchRepo) IsMember(_ context.Context, _ bun.IDB, matchID, playerID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("IsMember")
	for _, m := range f.members {
		if m.MatchID == matchID && m.PlayerID == playerID {
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeMatchRepo) ListPlayers(_ context.Context, _ bun.IDB, matchID uuid.UUID) ([]matchdb.MatchPlayer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListPlayers")
	var out []matchdb.MatchPlayer
	for _, m := range f.members {
		if m.MatchID == matchID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *FakeMatchRepo) ListRounds(_ context.Context, _ bun.IDB, matchID uuid.UUID) ([]matchdb.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListRounds")
	var out []matchdb.Round
	for _, r := range f.rounds {
		if r.MatchID == matchID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *FakeMatchRepo) InsertRound(ctx context.Context, db bun.IDB, r *matchdb.Round) error {
	if f.InsertRoundFunc != nil {
		f.mu.Lock()
		f.record("InsertRound")
		f.mu.Unlock()
		return f.InsertRoundFunc(ctx, db, r)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("InsertRound")
	for _, existing := range f.rounds {
		if existing.MatchID == r.MatchID && existing.FlashcardID == r.FlashcardID {
			return matchdb.ErrDuplicateRound
		}
	}
	f.rounds = append(f.rounds, *r)
	return nil
}

func (f *FakeMatchRepo) InsertAttempt(ctx context.Context, db bun.IDB, a *matchdb.RoundAttempt) error {
	if f.InsertAttemptFunc != nil {
		f.mu.Lock()
		f.record("InsertAttempt")
		f.mu.Unlock()
		return f.InsertAttemptFunc(ctx, db, a)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("InsertAttempt")
	for _, existing := range f.attempts {
		if existing.RoundID == a.RoundID && existing.PlayerID == a.PlayerID {
			return matchdb.ErrDuplicateAttempt
		}
	}
	f.attempts = append(f.attempts, *a)
	return nil
}

func (f *FakeMatchRepo) MarkRoundAnswered(ctx context.Context, db bun.IDB, roundID, playerID uuid.UUID, isCorrect bool, at time.Time) error {
	if f.MarkRoundAnsweredFunc != nil {
		f.mu.Lock()
		f.record("MarkRoundAnswered")
		f.mu.Unlock()
		return f.MarkRoundAnsweredFunc(ctx, db, roundID, playerID, isCorrect, at)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("MarkRoundAnswered")
	for i := range f.rounds {
		r := &f.rounds[i]
		if r.ID != roundID {
			continue
		}
		if r.AnsweredBy != nil {
			return matchdb.ErrNoRowsAffected
		}
		r.AnsweredBy = &playerID
		r.IsCorrect = &isCorrect
		r.AnsweredAt = &at
		return nil
	}
	return matchdb.ErrNoRowsAffected
}

func (f *FakeMatchRepo) DeleteRoundsForFlashcard(_ context.Context, _ bun.IDB, flashcardID uuid.UUID) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteRoundsForFlashcard")
	removed := map[uuid.UUID]bool{}
	kept := f.rounds[:0]
	for _, r := range f.rounds {
		if r.FlashcardID == flashcardID {
			removed[r.ID] = true
			continue
		}
		kept = append(kept, r)
	}
	f.rounds = kept
	keptAttempts := f.attempts[:0]
	for _, a := range f.attempts {
		if !removed[a.RoundID] {
			keptAttempts = append(keptAttempts, a)
		}
	}
	attempts := len(f.attempts) - len(keptAttempts)
	f.attempts = keptAttempts
	return attempts, len(removed), nil
}

var _ matchdb.Repository = (*FakeMatchRepo)(nil)

// ------------------------
// Fake Flashcards
// ------------------------

type FakeFlashcards struct {
	cards []flashcardservice.Flashcard
}

func NewFakeFlashcards(cards ...flashcardservice.Flashcard) *FakeFlashcards {
	return &FakeFlashcards{cards: cards}
}

func (f *FakeFlashcards) ListFlashcardIDs(context.Context) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(f.cards))
	for _, c := range f.cards {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (f *FakeFlashcards) GetFlashcard(_ context.Context, id uuid.UUID) (*flashcardservice.Flashcard, error) {
	for _, c := range f.cards {
		if c.ID == id {
			card := c
			return &card, nil
		}
	}
	return nil, flashcardservice.ErrFlashcardNotFound
}

var _ FlashcardReader = (*FakeFlashcards)(nil)

// ------------------------
// Fake Players
// ------------------------

type FakePlayers struct {
	mu       sync.Mutex
	byUserID map[string]*playerservice.Profile
	err      error
}

func NewFakePlayers() *FakePlayers {
	return &FakePlayers{byUserID: map[string]*playerservice.Profile{}}
}

func (f *FakePlayers) ResolvePlayer(_ context.Context, identity session.Identity) (*playerservice.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if identity.UserID == "" {
		return nil, playerservice.ErrMissingUserID
	}
	if p, ok := f.byUserID[identity.UserID]; ok {
		return p, nil
	}
	p := &playerservice.Profile{ID: uuid.New(), UserID: identity.UserID, Name: identity.DisplayName()}
	f.byUserID[identity.UserID] = p
	return p, nil
}

func (f *FakePlayers) GetProfiles(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*playerservice.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[uuid.UUID]*playerservice.Profile{}
	for _, p := range f.byUserID {
		for _, id := range ids {
			if p.ID == id {
				out[id] = p
			}
		}
	}
	return out, nil
}

var _ PlayerResolver = (*FakePlayers)(nil)

// ------------------------
// Fake Scores
// ------------------------

// FakeScores aggregates straight from the fake repository.
type FakeScores struct {
	repo  *FakeMatchRepo
	calls int
}

func (f *FakeScores) Scoreboard(_ context.Context, matchID uuid.UUID) ([]scoreservice.PlayerScore, error) {
	f.calls++
	var members []scoreservice.Member
	for _, id := range f.repo.Members(matchID) {
		members = append(members, scoreservice.Member{PlayerID: id})
	}
	var attempts []scoreservice.Attempt
	for _, a := range f.repo.Attempts() {
		attempts = append(attempts, scoreservice.Attempt{PlayerID: a.PlayerID, IsCorrect: a.IsCorrect, CreatedAt: a.CreatedAt})
	}
	return scoreservice.Aggregate(members, attempts), nil
}

var _ ScoreReader = (*FakeScores)(nil)

// ------------------------
// Fake Scheduler
// ------------------------

type scheduledAdvance struct {
	roundID uuid.UUID
	at      time.Time
}

type FakeScheduler struct {
	mu        sync.Mutex
	fn        matchqueue.AdvanceFunc
	pending   map[uuid.UUID]scheduledAdvance
	cancelled int
	cancelErr error
}

func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{pending: map[uuid.UUID]scheduledAdvance{}}
}

func (f *FakeScheduler) Bind(fn matchqueue.AdvanceFunc) { f.fn = fn }
func (f *FakeScheduler) Start(context.Context) error { return nil }
func (f *FakeScheduler) Stop(context.Context) error { return nil }

func (f *FakeScheduler) ScheduleAdvance(_ context.Context, matchID, roundID uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[matchID] = scheduledAdvance{roundID: roundID, at: at}
	return nil
}

func (f *FakeScheduler) CancelAdvance(_ context.Context, matchID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelErr != nil {
		return false, f.cancelErr
	}
	if _, ok := f.pending[matchID]; !ok {
		return false, nil
	}
	delete(f.pending, matchID)
	f.cancelled++
	return true, nil
}

func (f *FakeScheduler) Pending(matchID uuid.UUID) (scheduledAdvance, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pending[matchID]
	return p, ok
}

// Fire runs the pending advance of matchID as the timer would.
func (f *FakeScheduler) Fire(ctx context.Context, matchID uuid.UUID) error {
	f.mu.Lock()
	p, ok := f.pending[matchID]
	delete(f.pending, matchID)
	f.mu.Unlock()
	if !ok {
		return nil
	}
	return f.fn(ctx, matchID, p.roundID)
}

var _ matchqueue.Scheduler = (*FakeScheduler)(nil)

// ------------------------
// Fake Event Bus
// ------------------------

type FakeBus struct {
	mu     sync.Mutex
	topics []string
}

func (f *FakeBus) Publish(topic string, messages ...*message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for range messages {
		f.topics = append(f.topics, topic)
	}
	return nil
}

func (f *FakeBus) Subscribe(context.Context, string) (<-chan *message.Message, error) {
	return make(chan *message.Message), nil
}

func (f *FakeBus) Close() error { return nil }

func (f *FakeBus) Topics() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.topics...)
}

func (f *FakeBus) Count(topic string) int {
	n := 0
	for _, t := range f.Topics() {
		if t == topic {
			n++
		}
	}
	return n
}

// ------------------------
// Fake Metrics
// ------------------------

// FakeMetrics counts auto-advance outcomes and ignores everything else.
type FakeMetrics struct {
	observability.NoOpMetrics
	mu       sync.Mutex
	outcomes map[string]int
}

func (f *FakeMetrics) RecordAutoAdvance(_ context.Context, outcome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.outcomes == nil {
		f.outcomes = map[string]int{}
	}
	f.outcomes[outcome]++
}

func (f *FakeMetrics) AutoAdvance(outcome string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outcomes[outcome]
}
