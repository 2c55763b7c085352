package matchqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Black-And-White-Club/flashcard-frenzy/internal/attr"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"
	"github.com/uptrace/bun"
)

// QueueName is the River queue auto-advance jobs run on.
const QueueName = "match"

// AdvanceRoundJob starts the next round of a match once its delay has passed.
type AdvanceRoundJob struct {
	MatchID uuid.UUID `json:"match_id"`
	RoundID uuid.UUID `json:"round_id"`
}

// Kind returns the job type identifier for River.
func (AdvanceRoundJob) Kind() string { return "match_advance_round" }

// AdvanceRoundWorker runs AdvanceRoundJob through the bound AdvanceFunc.
type AdvanceRoundWorker struct {
	river.WorkerDefaults[AdvanceRoundJob]
	scheduler *RiverScheduler
}

func (w *AdvanceRoundWorker) Work(ctx context.Context, job *river.Job[AdvanceRoundJob]) error {
	fn := w.scheduler.handler()
	if fn == nil {
		return errors.New("no advance handler bound")
	}
	w.scheduler.logger.Info("Running auto-advance job",
		attr.UUID("match_id", job.Args.MatchID),
		attr.UUID("round_id", job.Args.RoundID),
		attr.Any("job_id", job.ID),
	)
	return fn(ctx, job.Args.MatchID, job.Args.RoundID)
}

// RiverScheduler persists pending advances as River jobs so they survive a
// restart and run on exactly one instance.
type RiverScheduler struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	db      *bun.DB
	logger  *slog.Logger
	metrics observability.OperationMetrics

	mu sync.RWMutex
	fn AdvanceFunc
}

var _ Scheduler = (*RiverScheduler)(nil)

// NewRiverScheduler connects a River client to dsn. Cancellation looks jobs up
// through db.
func NewRiverScheduler(ctx context.Context, db *bun.DB, dsn string, logger *slog.Logger, metrics observability.OperationMetrics) (*RiverScheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoOpMetrics{}
	}
	ctxLogger := logger.With(attr.String("component", "river_scheduler"))

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_scheduler", "river")

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_scheduler", "river")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_scheduler", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_scheduler", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &RiverScheduler{
		pool:    pool,
		db:      db,
		logger:  ctxLogger,
		metrics: metrics,
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &AdvanceRoundWorker{scheduler: s})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			QueueName: {MaxWorkers: 25},
		},
		Workers: workers,
		Logger:  ctxLogger,
	})
	if err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_scheduler", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}
	s.client = client

	metrics.RecordOperationSuccess(ctx, "initialize_scheduler", "river")
	metrics.RecordOperationDuration(ctx, "initialize_scheduler", "river", time.Since(start))
	ctxLogger.Info("River scheduler initialized")
	return s, nil
}

func (s *RiverScheduler) Bind(fn AdvanceFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fn = fn
}

func (s *RiverScheduler) handler() AdvanceFunc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fn
}

func (s *RiverScheduler) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.logger.Info("River scheduler started")
	return nil
}

func (s *RiverScheduler) Stop(ctx context.Context) error {
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.logger.Info("River scheduler stopped")
	return nil
}

func (s *RiverScheduler) ScheduleAdvance(ctx context.Context, matchID, roundID uuid.UUID, at time.Time) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "schedule_advance", "river")

	if _, err := s.CancelAdvance(ctx, matchID); err != nil {
		s.metrics.RecordOperationFailure(ctx, "schedule_advance", "river")
		return err
	}

	res, err := s.client.Insert(ctx, AdvanceRoundJob{MatchID: matchID, RoundID: roundID}, &river.InsertOpts{
		Queue:       QueueName,
		ScheduledAt: at,
		MaxAttempts: 3,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	})
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "schedule_advance", "river")
		return fmt.Errorf("failed to schedule advance job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "schedule_advance", "river")
	s.metrics.RecordOperationDuration(ctx, "schedule_advance", "river", time.Since(start))
	s.logger.Info("Advance job scheduled",
		attr.UUID("match_id", matchID),
		attr.UUID("round_id", roundID),
		attr.Any("job_id", res.Job.ID),
		attr.Bool("duplicate", res.UniqueSkippedAsDuplicate),
	)
	return nil
}

func (s *RiverScheduler) CancelAdvance(ctx context.Context, matchID uuid.UUID) (bool, error) {
	var jobIDs []int64
	err := s.db.NewSelect().
		Table("river_job").
		Column("id").
		Where("kind = ?", AdvanceRoundJob{}.Kind()).
		Where("state IN (?)", bun.In([]string{
			string(rivertype.JobStateAvailable),
			string(rivertype.JobStateScheduled),
			string(rivertype.JobStateRetryable),
		})).
		Where("args->>'match_id' = ?", matchID.String()).
		Scan(ctx, &jobIDs)
	if err != nil {
		return false, fmt.Errorf("failed to query advance jobs: %w", err)
	}

	cancelled := 0
	for _, id := range jobIDs {
		if _, err := s.client.JobCancel(ctx, id); err != nil {
			s.logger.Warn("Failed to cancel advance job", attr.Any("job_id", id), attr.Error(err))
			continue
		}
		cancelled++
	}
	if cancelled > 0 {
		s.logger.Info("Advance jobs cancelled", attr.UUID("match_id", matchID), attr.Int("count", cancelled))
	}
	return cancelled > 0, nil
}
