package matchqueue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Black-And-White-Club/flashcard-frenzy/internal/attr"
	"github.com/google/uuid"
)

// LocalScheduler keeps pending advances as in-process timers. Pending
// advances are lost on restart; a reloaded match then waits in the answered
// state until a player asks for the next round.
type LocalScheduler struct {
	logger *slog.Logger

	mu      sync.Mutex
	fn      AdvanceFunc
	base    context.Context
	stopped bool
	pending map[uuid.UUID]*pendingAdvance
	wg      sync.WaitGroup
}

type pendingAdvance struct {
	roundID uuid.UUID
	timer   *time.Timer
}

var _ Scheduler = (*LocalScheduler)(nil)

// NewLocalScheduler creates an in-process scheduler.
func NewLocalScheduler(logger *slog.Logger) *LocalScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalScheduler{
		logger:  logger.With(attr.String("component", "local_scheduler")),
		base:    context.Background(),
		pending: make(map[uuid.UUID]*pendingAdvance),
	}
}

func (s *LocalScheduler) Bind(fn AdvanceFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fn = fn
}

func (s *LocalScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base = context.WithoutCancel(ctx)
	s.stopped = false
	return nil
}

// Stop cancels every pending advance and waits for running callbacks.
func (s *LocalScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	for matchID, p := range s.pending {
		if p.timer.Stop() {
			s.wg.Done()
		}
		delete(s.pending, matchID)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *LocalScheduler) ScheduleAdvance(_ context.Context, matchID, roundID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}

	s.cancelLocked(matchID)

	p := &pendingAdvance{roundID: roundID}
	s.wg.Add(1)
	p.timer = time.AfterFunc(time.Until(at), func() { s.fire(matchID, p) })
	s.pending[matchID] = p

	s.logger.Debug("Advance scheduled",
		attr.UUID("match_id", matchID),
		attr.UUID("round_id", roundID),
		attr.String("at", at.Format(time.RFC3339Nano)),
	)
	return nil
}

func (s *LocalScheduler) CancelAdvance(_ context.Context, matchID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cancelLocked(matchID) {
		return false, nil
	}
	s.logger.Debug("Advance cancelled", attr.UUID("match_id", matchID))
	return true, nil
}

// Pending reports whether an advance is waiting for matchID.
func (s *LocalScheduler) Pending(matchID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[matchID]
	return ok
}

func (s *LocalScheduler) cancelLocked(matchID uuid.UUID) bool {
	p, ok := s.pending[matchID]
	if !ok {
		return false
	}
	delete(s.pending, matchID)
	if p.timer.Stop() {
		s.wg.Done()
	}
	return true
}

func (s *LocalScheduler) fire(matchID uuid.UUID, p *pendingAdvance) {
	defer s.wg.Done()

	s.mu.Lock()
	if current, ok := s.pending[matchID]; !ok || current != p {
		s.mu.Unlock()
		return
	}
	delete(s.pending, matchID)
	fn, ctx := s.fn, s.base
	s.mu.Unlock()

	if fn == nil {
		s.logger.Warn("Advance fired without a bound handler", attr.UUID("match_id", matchID))
		return
	}
	if err := fn(ctx, matchID, p.roundID); err != nil {
		s.logger.Error("Auto-advance failed",
			attr.UUID("match_id", matchID),
			attr.UUID("round_id", p.roundID),
			attr.Error(err),
		)
	}
}
