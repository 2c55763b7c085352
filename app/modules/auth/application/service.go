package authservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	authdomain "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/auth/infrastructure/jwt"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/attr"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/session"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTokenTTL applies when neither the caller nor the config set one.
const DefaultTokenTTL = 24 * time.Hour

// Config holds the configuration for the auth service.
type Config struct {
	DefaultTTL time.Duration
}

// service implements the Service interface.
type service struct {
	jwtProvider authjwt.Provider
	config      Config
	logger      *slog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewService creates a new auth service.
func NewService(jwtProvider authjwt.Provider, config Config, logger *slog.Logger, tracer trace.Tracer) Service {
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = DefaultTokenTTL
	}
	return &service{
		jwtProvider: jwtProvider,
		config:      config,
		logger:      logger,
		tracer:      tracer,
		now:         time.Now,
	}
}

func (s *service) Authenticate(ctx context.Context, tokenString string) (session.Identity, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Authenticate")
	defer span.End()

	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return session.Identity{}, ErrMissingToken
	}

	claims, err := s.jwtProvider.ValidateToken(tokenString)
	if err != nil {
		s.logger.DebugContext(ctx, "Token rejected", attr.Error(err))
		if errors.Is(err, authjwt.ErrExpiredToken) {
			return session.Identity{}, ErrExpiredToken
		}
		return session.Identity{}, ErrInvalidToken
	}
	if claims.UserID == "" {
		return session.Identity{}, ErrInvalidToken
	}
	return claims.Identity(), nil
}

func (s *service) IssueToken(ctx context.Context, identity session.Identity, ttl time.Duration) (*TokenResponse, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.IssueToken")
	defer span.End()

	if identity.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrGenerateToken)
	}
	if ttl <= 0 {
		ttl = s.config.DefaultTTL
	}

	token, err := s.jwtProvider.GenerateToken(authdomain.ClaimsFor(identity), ttl)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to generate token",
			attr.String("user_id", identity.UserID),
			attr.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrGenerateToken, err)
	}

	s.logger.InfoContext(ctx, "Issued access token",
		attr.String("user_id", identity.UserID),
		attr.String("ttl", ttl.String()),
	)
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   s.now().Add(ttl),
	}, nil
}
