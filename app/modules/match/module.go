package match

import (
	"context"
	"fmt"
	"sync"
	"time"

	matchservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/match/application"
	matchhandlers "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/match/infrastructure/handlers"
	matchqueue "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/match/infrastructure/queue"
	matchrealtime "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/match/infrastructure/realtime"
	matchdb "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/match/infrastructure/repositories"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/attr"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/eventbus"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Deps are the collaborators a match needs from other modules.
type Deps struct {
	Repo       matchdb.Repository
	Flashcards matchservice.FlashcardReader
	Players    matchservice.PlayerResolver
	Scores     matchservice.ScoreReader
	Scheduler  matchqueue.Scheduler
	// Bus may be nil, which disables the live feed.
	Bus eventbus.EventBus
}

// Settings tune the round lifecycle and the live feed.
type Settings struct {
	AutoAdvanceDelay time.Duration
	AllowedOrigins   []string
}

// Module represents the match module.
type Module struct {
	MatchService matchservice.Service
	Handlers     matchhandlers.Handlers
	Live         *matchrealtime.LiveHandler

	scheduler     matchqueue.Scheduler
	hub           *matchrealtime.Hub
	eventRouter   *matchrealtime.EventRouter
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewMatchModule creates and initializes a new match module. The scheduler is
// bound to the service here and started by Run.
func NewMatchModule(ctx context.Context, obs observability.Observability, db *bun.DB, deps Deps, settings Settings) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer

	logger.InfoContext(ctx, "match.NewMatchModule initializing")

	service := matchservice.NewMatchService(
		deps.Repo,
		deps.Flashcards,
		deps.Players,
		deps.Scores,
		deps.Scheduler,
		deps.Bus,
		logger,
		obs.Registry.MatchMetrics,
		tracer,
		db,
		matchservice.WithAutoAdvanceDelay(settings.AutoAdvanceDelay),
	)
	deps.Scheduler.Bind(service.AdvanceRound)

	m := &Module{
		MatchService:  service,
		Handlers:      matchhandlers.NewMatchHandlers(service, logger, tracer),
		scheduler:     deps.Scheduler,
		observability: obs,
	}

	if deps.Bus != nil {
		m.hub = matchrealtime.NewHub(logger)
		router, err := matchrealtime.NewEventRouter(logger, deps.Bus, m.hub, obs.Provider.Prometheus)
		if err != nil {
			return nil, fmt.Errorf("failed to create realtime router: %w", err)
		}
		m.eventRouter = router
		m.Live = matchrealtime.NewLiveHandler(m.hub, logger, tracer, settings.AllowedOrigins)
	}

	return m, nil
}

// RegisterRoutes mounts the match endpoints on an authenticated router.
// Routes in extra are mounted under /matches/{matchID}.
func (m *Module) RegisterRoutes(r chi.Router, extra ...func(chi.Router)) {
	r.Route("/matches", func(r chi.Router) {
		r.Post("/", m.Handlers.HandleCreateMatch)
		r.Route("/{matchID}", func(r chi.Router) {
			r.Get("/", m.Handlers.HandleGetMatchState)
			r.Post("/join", m.Handlers.HandleJoinMatch)
			r.Get("/players", m.Handlers.HandleListPlayers)
			r.Post("/rounds", m.Handlers.HandleStartRound)
			r.Post("/rounds/{roundID}/answer", m.Handlers.HandleAnswer)
			r.Post("/next", m.Handlers.HandleNextRound)
			r.Delete("/auto-advance", m.Handlers.HandleCancelAutoAdvance)
			if m.Live != nil {
				r.Get("/live", m.Live.HandleLive)
			}
			for _, register := range extra {
				register(r)
			}
		})
	})
}

// Run starts the scheduler and the live event router, then blocks until ctx is
// done.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Provider.Logger
	logger.InfoContext(ctx, "Starting match module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if err := m.scheduler.Start(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to start auto-advance scheduler", attr.Error(err))
		return
	}

	var routerDone chan struct{}
	if m.eventRouter != nil {
		routerDone = make(chan struct{})
		go func() {
			defer close(routerDone)
			if err := m.eventRouter.Run(ctx); err != nil {
				logger.ErrorContext(ctx, "Realtime router stopped", attr.Error(err))
			}
		}()
	}

	<-ctx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := m.scheduler.Stop(stopCtx); err != nil {
		logger.Error("Failed to stop auto-advance scheduler", attr.Error(err))
	}
	if routerDone != nil {
		<-routerDone
	}
	logger.InfoContext(ctx, "Match module goroutine stopped")
}

// Close shuts down the match module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	if m.eventRouter != nil {
		if err := m.eventRouter.Close(); err != nil {
			m.observability.Provider.Logger.Error("Failed to close realtime router", attr.Error(err))
		}
	}
	if m.hub != nil {
		m.hub.Close()
	}
	m.observability.Provider.Logger.Info("Match module stopped")
	return nil
}

// LiveReady is closed once the live event router has subscribed to every
// topic. It is nil when the module runs without an event bus.
func (m *Module) LiveReady() <-chan struct{} {
	if m.eventRouter == nil {
		return nil
	}
	return m.eventRouter.Running()
}
