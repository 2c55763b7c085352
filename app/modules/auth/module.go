package auth

import (
	"context"
	"errors"
	"net/http"
	"sync"

	authservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/auth/application"
	authhandlers "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/auth/infrastructure/handlers"
	authjwt "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/auth/infrastructure/jwt"
	"github.com/Black-And-White-Club/flashcard-frenzy/config"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/observability"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

// ErrMissingSecret is returned when no JWT secret is configured.
var ErrMissingSecret = errors.New("jwt.secret is required")

// Module represents the auth module.
type Module struct {
	config        *config.Config
	observability observability.Observability
	service       authservice.Service
	handlers      authhandlers.Handlers
	limiter       *authhandlers.ClientRateLimiter
	cancelFunc    context.CancelFunc
}

// NewModule creates a new auth module.
func NewModule(ctx context.Context, cfg *config.Config, obs observability.Observability) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer

	logger.InfoContext(ctx, "Initializing auth module")

	if cfg.JWT.Secret == "" {
		return nil, ErrMissingSecret
	}

	service := authservice.NewService(
		authjwt.NewProvider(cfg.JWT.Secret),
		authservice.Config{DefaultTTL: cfg.JWT.DefaultTTL},
		logger,
		tracer,
	)

	return &Module{
		config:        cfg,
		observability: obs,
		service:       service,
		handlers:      authhandlers.NewAuthHandlers(service, logger, tracer),
		limiter:       authhandlers.NewClientRateLimiter(rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.RateBurst),
	}, nil
}

// Middleware is the chain every /api route runs through: CORS, rate limit.
func (m *Module) Middleware() []func(next http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		authhandlers.CORSMiddleware(m.config.HTTP.AllowedOrigins),
		authhandlers.RateLimitMiddleware(m.limiter),
	}
}

// RequireIdentity authenticates the bearer token of each request.
func (m *Module) RequireIdentity(next http.Handler) http.Handler {
	return m.handlers.RequireIdentity(next)
}

// RegisterRoutes mounts the public auth endpoints. The dev token endpoint is
// only mounted when jwt.dev_tokens_enabled is set.
func (m *Module) RegisterRoutes(r chi.Router) {
	if !m.config.JWT.DevTokensEnabled {
		return
	}
	m.observability.Provider.Logger.Warn("Dev token endpoint enabled; any caller can mint tokens")
	r.Route("/auth", func(r chi.Router) {
		r.Post("/dev-token", m.handlers.HandleIssueDevToken)
	})
}

// Run starts the auth module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Provider.Logger
	logger.InfoContext(ctx, "Starting auth module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Auth module goroutine stopped")
}

// Close stops the auth module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	m.observability.Provider.Logger.Info("Auth module stopped")
	return nil
}

// GetService returns the auth service for use by other modules.
func (m *Module) GetService() authservice.Service {
	return m.service
}
