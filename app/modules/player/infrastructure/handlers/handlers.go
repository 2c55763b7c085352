package playerhandlers

import (
	"errors"
	"log/slog"
	"net/http"

	playerservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/player/application"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/attr"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/httpx"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/session"
	"go.opentelemetry.io/otel/trace"
)

// PlayerHandlers implements the Handlers interface.
type PlayerHandlers struct {
	service playerservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewPlayerHandlers creates a new PlayerHandlers instance.
func NewPlayerHandlers(service playerservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &PlayerHandlers{service: service, logger: logger, tracer: tracer}
}

// HandleGetMe returns the caller's player, creating it on first visit.
func (h *PlayerHandlers) HandleGetMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PlayerHandlers.HandleGetMe")
	defer span.End()

	identity, err := session.FromContext(ctx)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := h.service.ResolvePlayer(ctx, identity)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to resolve player", attr.String("user_id", identity.UserID), attr.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "could not load your player profile, please retry")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, profile)
}

type renameRequest struct {
	Name string `json:"name"`
}

// HandleRenameMe changes the caller's display name.
func (h *PlayerHandlers) HandleRenameMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PlayerHandlers.HandleRenameMe")
	defer span.End()

	identity, err := session.FromContext(ctx)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req renameRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.service.Rename(ctx, identity, req.Name)
	if err != nil {
		if errors.Is(err, playerservice.ErrInvalidName) {
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(ctx, "Failed to rename player", attr.String("user_id", identity.UserID), attr.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "could not update your name, please retry")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, profile)
}
