package flashcard

import (
	"context"
	"sync"

	flashcardservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/flashcard/application"
	flashcardhandlers "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/flashcard/infrastructure/handlers"
	flashcarddb "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/flashcard/infrastructure/repositories"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the flashcard module.
type Module struct {
	FlashcardService flashcardservice.Service
	Handlers         flashcardhandlers.Handlers
	cancelFunc       context.CancelFunc
	observability    observability.Observability
}

// NewFlashcardModule creates and initializes a new flashcard module. cascade
// owns the match tables that reference flashcards.
func NewFlashcardModule(
	ctx context.Context,
	obs observability.Observability,
	db *bun.DB,
	cascade flashcardservice.RoundCascade,
	players flashcardservice.PlayerResolver,
) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer

	logger.InfoContext(ctx, "flashcard.NewFlashcardModule initializing")

	repo := flashcarddb.NewRepository(db)
	service := flashcardservice.NewFlashcardService(repo, cascade, players, logger, obs.Registry.FlashcardMetrics, tracer, db)
	handlers := flashcardhandlers.NewFlashcardHandlers(service, logger, tracer)

	return &Module{
		FlashcardService: service,
		Handlers:         handlers,
		observability:    obs,
	}, nil
}

// RegisterRoutes mounts the flashcard endpoints on an authenticated router.
func (m *Module) RegisterRoutes(r chi.Router) {
	r.Route("/flashcards", func(r chi.Router) {
		r.Get("/", m.Handlers.HandleList)
		r.Post("/", m.Handlers.HandleCreate)
		r.Post("/import", m.Handlers.HandleImport)
		r.Get("/{flashcardID}", m.Handlers.HandleGet)
		r.Delete("/{flashcardID}", m.Handlers.HandleDelete)
	})
}

// Run starts the flashcard module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Provider.Logger
	logger.InfoContext(ctx, "Starting flashcard module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Flashcard module goroutine stopped")
}

// Close shuts down the flashcard module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	m.observability.Provider.Logger.Info("Flashcard module stopped")
	return nil
}
