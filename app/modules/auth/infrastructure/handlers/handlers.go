package authhandlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	authservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/auth/application"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/attr"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/httpx"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/session"
	"go.opentelemetry.io/otel/trace"
)

// accessTokenParam carries the token for WebSocket upgrades, which cannot
// set an Authorization header from a browser.
const accessTokenParam = "access_token"

// DevTokenRequest is the body of a development token request.
type DevTokenRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	TTL    string `json:"ttl"`
}

// AuthHandlers implements the Handlers interface.
type AuthHandlers struct {
	service authservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewAuthHandlers creates a new AuthHandlers instance.
func NewAuthHandlers(service authservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &AuthHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// RequireIdentity rejects requests without a valid bearer token and stores
// the caller in the request context.
func (h *AuthHandlers) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := h.tracer.Start(r.Context(), "AuthHandlers.RequireIdentity")
		identity, err := h.service.Authenticate(ctx, bearerToken(r))
		span.End()
		if err != nil {
			msg := "sign in to continue"
			if errors.Is(err, authservice.ErrExpiredToken) {
				msg = "session expired, sign in again"
			}
			w.Header().Set("WWW-Authenticate", `Bearer realm="flashcard-frenzy"`)
			httpx.WriteError(w, http.StatusUnauthorized, msg)
			return
		}
		next.ServeHTTP(w, r.WithContext(session.WithIdentity(r.Context(), identity)))
	})
}

func (h *AuthHandlers) HandleIssueDevToken(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AuthHandlers.HandleIssueDevToken")
	defer span.End()

	var req DevTokenRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	var ttl time.Duration
	if req.TTL != "" {
		d, err := time.ParseDuration(req.TTL)
		if err != nil || d <= 0 {
			httpx.WriteError(w, http.StatusBadRequest, "ttl must be a positive duration such as 2h")
			return
		}
		ttl = d
	}

	identity := session.Identity{UserID: req.UserID, Email: req.Email}
	if req.Name != "" {
		identity.Metadata = map[string]string{"name": req.Name}
	}

	resp, err := h.service.IssueToken(ctx, identity, ttl)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to issue dev token", attr.String("user_id", req.UserID), attr.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "could not issue token, please retry")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, resp)
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get(accessTokenParam)
}
