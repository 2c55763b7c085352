package app

import (
	"context"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/flashcard-frenzy/internal/attr"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/httpx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router builds the HTTP surface:
//
//	GET  /healthz           database liveness
//	GET  /metrics           Prometheus, unless a separate metrics address is set
//	POST /api/auth/...      public auth endpoints
//	     /api/...           everything else, behind a bearer token
func (app *App) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", app.handleHealth)
	if app.Config.Observability.MetricsAddress == "" {
		r.Handle("/metrics", app.Observability.Provider.MetricsHandler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(app.AuthModule.Middleware()...)
		app.AuthModule.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(app.AuthModule.RequireIdentity)
			app.PlayerModule.RegisterRoutes(r)
			app.FlashcardModule.RegisterRoutes(r)
			app.MatchModule.RegisterRoutes(r, app.ScoreModule.RegisterMatchRoutes)
		})
	})
	return r
}

type healthResponse struct {
	Status string `json:"status"`
}

func (app *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := app.DB.PingContext(ctx); err != nil {
		app.Observability.Provider.Logger.WarnContext(ctx, "Health check failed", attr.Error(err))
		httpx.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
