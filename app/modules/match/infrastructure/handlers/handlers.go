package matchhandlers

import (
	"errors"
	"log/slog"
	"net/http"

	matchservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/match/application"
	playerservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/player/application"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/attr"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/httpx"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/session"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// AnswerRequest is the body of an answer submission.
type AnswerRequest struct {
	Answer string `json:"answer"`
}

// MatchHandlers implements the Handlers interface.
type MatchHandlers struct {
	service matchservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewMatchHandlers creates a new MatchHandlers instance.
func NewMatchHandlers(service matchservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &MatchHandlers{service: service, logger: logger, tracer: tracer}
}

func (h *MatchHandlers) HandleCreateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "MatchHandlers.HandleCreateMatch")
	defer span.End()

	identity, err := session.FromContext(ctx)
	if err != nil {
		h.writeServiceError(w, r, "create match", err)
		return
	}

	info, err := h.service.CreateMatch(ctx, identity)
	if err != nil {
		h.writeServiceError(w, r, "create match", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, info)
}

func (h *MatchHandlers) HandleGetMatchState(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "MatchHandlers.HandleGetMatchState")
	defer span.End()

	matchID, ok := matchIDParam(w, r)
	if !ok {
		return
	}

	state, err := h.service.GetMatchState(ctx, matchID)
	if err != nil {
		h.writeServiceError(w, r, "load match", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, state)
}

func (h *MatchHandlers) HandleJoinMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "MatchHandlers.HandleJoinMatch")
	defer span.End()

	matchID, ok := matchIDParam(w, r)
	if !ok {
		return
	}
	identity, err := session.FromContext(ctx)
	if err != nil {
		h.writeServiceError(w, r, "join match", err)
		return
	}

	info, err := h.service.JoinMatch(ctx, identity, matchID)
	if err != nil {
		h.writeServiceError(w, r, "join match", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, info)
}

func (h *MatchHandlers) HandleListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "MatchHandlers.HandleListPlayers")
	defer span.End()

	matchID, ok := matchIDParam(w, r)
	if !ok {
		return
	}

	players, err := h.service.ListPlayers(ctx, matchID)
	if err != nil {
		h.writeServiceError(w, r, "load players", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, players)
}

func (h *MatchHandlers) HandleStartRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "MatchHandlers.HandleStartRound")
	defer span.End()

	matchID, ok := matchIDParam(w, r)
	if !ok {
		return
	}
	identity, err := session.FromContext(ctx)
	if err != nil {
		h.writeServiceError(w, r, "start round", err)
		return
	}

	state, err := h.service.StartRound(ctx, identity, matchID)
	if err != nil {
		h.writeServiceError(w, r, "start round", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, state)
}

func (h *MatchHandlers) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "MatchHandlers.HandleAnswer")
	defer span.End()

	matchID, ok := matchIDParam(w, r)
	if !ok {
		return
	}
	roundID, err := httpx.URLParamUUID(r, "roundID")
	if err != nil {
		httpx.WriteMalformedID(w, "round id")
		return
	}
	identity, err := session.FromContext(ctx)
	if err != nil {
		h.writeServiceError(w, r, "submit answer", err)
		return
	}

	var req AnswerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.service.AnswerFlashcard(ctx, identity, matchID, roundID, req.Answer)
	if err != nil {
		h.writeServiceError(w, r, "submit answer", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *MatchHandlers) HandleNextRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "MatchHandlers.HandleNextRound")
	defer span.End()

	matchID, ok := matchIDParam(w, r)
	if !ok {
		return
	}
	identity, err := session.FromContext(ctx)
	if err != nil {
		h.writeServiceError(w, r, "start next round", err)
		return
	}

	state, err := h.service.NextRound(ctx, identity, matchID)
	if err != nil {
		h.writeServiceError(w, r, "start next round", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, state)
}

func (h *MatchHandlers) HandleCancelAutoAdvance(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "MatchHandlers.HandleCancelAutoAdvance")
	defer span.End()

	matchID, ok := matchIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.CancelAutoAdvance(ctx, matchID); err != nil {
		h.writeServiceError(w, r, "cancel auto-advance", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func matchIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := httpx.URLParamUUID(r, "matchID")
	if err != nil {
		httpx.WriteMalformedID(w, "match id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *MatchHandlers) writeServiceError(w http.ResponseWriter, r *http.Request, action string, err error) {
	switch {
	case errors.Is(err, session.ErrNoIdentity), errors.Is(err, playerservice.ErrMissingUserID):
		httpx.WriteError(w, http.StatusUnauthorized, "sign in to play")
	case errors.Is(err, matchservice.ErrMatchNotFound):
		httpx.WriteJSON(w, http.StatusNotFound, httpx.ErrorResponse{Error: "match not found", Redirect: "/"})
	case errors.Is(err, matchservice.ErrRoundInProgress),
		errors.Is(err, matchservice.ErrRoundAlreadyAnswered),
		errors.Is(err, matchservice.ErrRoundNotActive),
		errors.Is(err, matchservice.ErrNoActiveRound),
		errors.Is(err, matchservice.ErrMatchCompleted):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "Match request failed",
			attr.ExtractCorrelationID(r.Context()),
			attr.String("action", action),
			attr.Error(err),
		)
		httpx.WriteError(w, http.StatusInternalServerError, "could not "+action+", please retry")
	}
}
