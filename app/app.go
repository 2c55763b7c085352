// Package app wires the modules of the quiz server together and runs them
// behind one HTTP listener.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/flashcard-frenzy/app/modules/auth"
	"github.com/Black-And-White-Club/flashcard-frenzy/app/modules/flashcard"
	"github.com/Black-And-White-Club/flashcard-frenzy/app/modules/match"
	matchqueue "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/match/infrastructure/queue"
	matchdb "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/match/infrastructure/repositories"
	"github.com/Black-And-White-Club/flashcard-frenzy/app/modules/player"
	"github.com/Black-And-White-Club/flashcard-frenzy/app/modules/score"
	"github.com/Black-And-White-Club/flashcard-frenzy/config"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/attr"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/db/bundb"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/eventbus"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/observability"
	"github.com/uptrace/bun"
)

const shutdownTimeout = 15 * time.Second

// App holds the shared infrastructure and every module.
type App struct {
	Config        *config.Config
	Observability observability.Observability
	DB            *bun.DB
	EventBus      eventbus.EventBus

	AuthModule      *auth.Module
	PlayerModule    *player.Module
	FlashcardModule *flashcard.Module
	ScoreModule     *score.Module
	MatchModule     *match.Module

	wg sync.WaitGroup
}

// NewApp opens the database, picks the event bus and the auto-advance
// scheduler from cfg, and builds the modules.
func NewApp(ctx context.Context, cfg *config.Config, obs observability.Observability) (*App, error) {
	logger := obs.Provider.Logger

	db, err := bundb.Open(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	bus, err := newEventBus(cfg, obs)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	app := &App{
		Config:        cfg,
		Observability: obs,
		DB:            db,
		EventBus:      bus,
	}
	if err := app.initializeModules(ctx); err != nil {
		_ = app.closeInfrastructure()
		return nil, err
	}

	logger.InfoContext(ctx, "Application initialized",
		attr.String("scheduler", cfg.Match.Scheduler),
		attr.Bool("nats", cfg.NATS.URL != ""),
	)
	return app, nil
}

func newEventBus(cfg *config.Config, obs observability.Observability) (eventbus.EventBus, error) {
	if cfg.NATS.URL == "" {
		return eventbus.NewInProcessEventBus(obs.Provider.Logger), nil
	}
	bus, err := eventbus.NewNATSEventBus(cfg.NATS.URL, obs.Provider.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect event bus: %w", err)
	}
	return bus, nil
}

func (app *App) newScheduler(ctx context.Context) (matchqueue.Scheduler, error) {
	logger := app.Observability.Provider.Logger
	if app.Config.Match.Scheduler != config.SchedulerRiver {
		return matchqueue.NewLocalScheduler(logger), nil
	}
	return matchqueue.NewRiverScheduler(ctx, app.DB, app.Config.Postgres.DSN, logger, app.Observability.Registry.MatchMetrics)
}

func (app *App) initializeModules(ctx context.Context) error {
	obs := app.Observability
	var err error

	if app.AuthModule, err = auth.NewModule(ctx, app.Config, obs); err != nil {
		return fmt.Errorf("failed to initialize auth module: %w", err)
	}
	if app.PlayerModule, err = player.NewPlayerModule(ctx, obs, app.DB); err != nil {
		return fmt.Errorf("failed to initialize player module: %w", err)
	}

	// Deleting a flashcard cascades into the match tables.
	matchRepo := matchdb.NewRepository(app.DB)

	if app.FlashcardModule, err = flashcard.NewFlashcardModule(ctx, obs, app.DB, matchRepo, app.PlayerModule.PlayerService); err != nil {
		return fmt.Errorf("failed to initialize flashcard module: %w", err)
	}
	if app.ScoreModule, err = score.NewScoreModule(ctx, obs, app.DB); err != nil {
		return fmt.Errorf("failed to initialize score module: %w", err)
	}

	scheduler, err := app.newScheduler(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize auto-advance scheduler: %w", err)
	}

	app.MatchModule, err = match.NewMatchModule(ctx, obs, app.DB,
		match.Deps{
			Repo:       matchRepo,
			Flashcards: app.FlashcardModule.FlashcardService,
			Players:    app.PlayerModule.PlayerService,
			Scores:     app.ScoreModule.ScoreService,
			Scheduler:  scheduler,
			Bus:        app.EventBus,
		},
		match.Settings{
			AutoAdvanceDelay: app.Config.Match.AutoAdvanceDelay,
			AllowedOrigins:   app.Config.HTTP.AllowedOrigins,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to initialize match module: %w", err)
	}
	return nil
}

type runner interface {
	Run(ctx context.Context, wg *sync.WaitGroup)
}

// StartModules runs every module in its own goroutine until ctx is done.
func (app *App) StartModules(ctx context.Context) {
	for _, m := range []runner{app.AuthModule, app.PlayerModule, app.FlashcardModule, app.ScoreModule, app.MatchModule} {
		app.wg.Add(1)
		go m.Run(ctx, &app.wg)
	}
}

// Run starts every module and serves HTTP until ctx is done, then shuts the
// listeners down gracefully.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Provider.Logger

	app.StartModules(ctx)

	servers := []*http.Server{newServer(app.Config.HTTP.Address, app.Router())}
	if addr := app.Config.Observability.MetricsAddress; addr != "" {
		servers = append(servers, newServer(addr, app.Observability.Provider.MetricsHandler()))
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			logger.InfoContext(ctx, "HTTP server listening", attr.String("address", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("listen on %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errCh:
		logger.Error("HTTP server failed", attr.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shut down HTTP server", attr.String("address", srv.Addr), attr.Error(err))
		}
	}
	return runErr
}

func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Close stops the modules, waits for their goroutines and releases the event
// bus and the database.
func (app *App) Close() error {
	logger := app.Observability.Provider.Logger

	for _, m := range []interface{ Close() error }{app.MatchModule, app.ScoreModule, app.FlashcardModule, app.PlayerModule, app.AuthModule} {
		if err := m.Close(); err != nil {
			logger.Error("Failed to close module", attr.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		app.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		logger.Warn("Timed out waiting for modules to stop")
	}

	return app.closeInfrastructure()
}

func (app *App) closeInfrastructure() error {
	var errs []error
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close event bus: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
