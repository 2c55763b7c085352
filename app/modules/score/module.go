package score

import (
	"context"
	"sync"

	scoreservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/score/application"
	scorehandlers "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/score/infrastructure/handlers"
	scoredb "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/score/infrastructure/repositories"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the score module.
type Module struct {
	ScoreService  scoreservice.Service
	Handlers      scorehandlers.Handlers
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewScoreModule creates and initializes a new score module.
func NewScoreModule(ctx context.Context, obs observability.Observability, db *bun.DB) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer

	logger.InfoContext(ctx, "score.NewScoreModule initializing")

	repo := scoredb.NewRepository(db)
	service := scoreservice.NewScoreService(repo, logger, obs.Registry.ScoreMetrics, tracer, db)

	return &Module{
		ScoreService:  service,
		Handlers:      scorehandlers.NewScoreHandlers(service, logger, tracer),
		observability: obs,
	}, nil
}

// RegisterMatchRoutes mounts the score endpoints under a /matches/{matchID}
// route owned by the match module.
func (m *Module) RegisterMatchRoutes(r chi.Router) {
	r.Get("/scoreboard", m.Handlers.HandleScoreboard)
	r.Get("/results", m.Handlers.HandleResults)
	r.Get("/results/chart.png", m.Handlers.HandleResultsChart)
	r.Get("/results.xlsx", m.Handlers.HandleExportResults)
}

// Run starts the score module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Provider.Logger
	logger.InfoContext(ctx, "Starting score module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Score module goroutine stopped")
}

// Close shuts down the score module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	m.observability.Provider.Logger.Info("Score module stopped")
	return nil
}
