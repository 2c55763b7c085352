// Package matchqueue schedules the delayed auto-advance after a round has
// been answered. Only one advance is pending per match.
package matchqueue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AdvanceFunc starts the next round of matchID if roundID is still the
// latest answered round.
type AdvanceFunc func(ctx context.Context, matchID, roundID uuid.UUID) error

// Scheduler runs AdvanceFunc at a point in time unless cancelled first.
type Scheduler interface {
	// Bind sets the callback. It must be called before Start.
	Bind(fn AdvanceFunc)
	// ScheduleAdvance replaces any pending advance of matchID.
	ScheduleAdvance(ctx context.Context, matchID, roundID uuid.UUID, at time.Time) error
	// CancelAdvance drops the pending advance of matchID, if any, and reports
	// whether one was pending.
	CancelAdvance(ctx context.Context, matchID uuid.UUID) (bool, error)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
