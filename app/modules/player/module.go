package player

import (
	"context"
	"sync"

	playerservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/player/application"
	playerhandlers "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/player/infrastructure/handlers"
	playerdb "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/player/infrastructure/repositories"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the player module.
type Module struct {
	PlayerService playerservice.Service
	Handlers      playerhandlers.Handlers
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewPlayerModule creates and initializes a new player module.
func NewPlayerModule(ctx context.Context, obs observability.Observability, db *bun.DB) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer

	logger.InfoContext(ctx, "player.NewPlayerModule initializing")

	repo := playerdb.NewRepository(db)
	service := playerservice.NewPlayerService(repo, logger, obs.Registry.PlayerMetrics, tracer, db)
	handlers := playerhandlers.NewPlayerHandlers(service, logger, tracer)

	return &Module{
		PlayerService: service,
		Handlers:      handlers,
		observability: obs,
	}, nil
}

// RegisterRoutes mounts the player endpoints on an authenticated router.
func (m *Module) RegisterRoutes(r chi.Router) {
	r.Route("/players", func(r chi.Router) {
		r.Get("/me", m.Handlers.HandleGetMe)
		r.Patch("/me", m.Handlers.HandleRenameMe)
	})
}

// Run starts the player module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Provider.Logger
	logger.InfoContext(ctx, "Starting player module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Player module goroutine stopped")
}

// Close shuts down the player module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	m.observability.Provider.Logger.Info("Player module stopped")
	return nil
}
