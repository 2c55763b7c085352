package scorehandlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	scoreservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/score/application"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/attr"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/httpx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ScoreHandlers implements the Handlers interface.
type ScoreHandlers struct {
	service scoreservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewScoreHandlers creates a new ScoreHandlers instance.
func NewScoreHandlers(service scoreservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &ScoreHandlers{service: service, logger: logger, tracer: tracer}
}

func (h *ScoreHandlers) HandleScoreboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ScoreHandlers.HandleScoreboard")
	defer span.End()

	matchID, ok := matchIDParam(w, r)
	if !ok {
		return
	}
	board, err := h.service.Scoreboard(ctx, matchID)
	if err != nil {
		h.writeServiceError(w, r, "load scoreboard", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, board)
}

func (h *ScoreHandlers) HandleResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ScoreHandlers.HandleResults")
	defer span.End()

	matchID, ok := matchIDParam(w, r)
	if !ok {
		return
	}
	res, err := h.service.Results(ctx, matchID)
	if err != nil {
		h.writeServiceError(w, r, "load results", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *ScoreHandlers) HandleResultsChart(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ScoreHandlers.HandleResultsChart")
	defer span.End()

	matchID, ok := matchIDParam(w, r)
	if !ok {
		return
	}
	png, err := h.service.ResultsChart(ctx, matchID)
	if err != nil {
		h.writeServiceError(w, r, "render results chart", err)
		return
	}
	writeBinary(w, "image/png", "", png)
}

func (h *ScoreHandlers) HandleExportResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ScoreHandlers.HandleExportResults")
	defer span.End()

	matchID, ok := matchIDParam(w, r)
	if !ok {
		return
	}
	data, err := h.service.ExportResults(ctx, matchID)
	if err != nil {
		h.writeServiceError(w, r, "export results", err)
		return
	}
	writeBinary(w, xlsxContentType, fmt.Sprintf("match-%s-results.xlsx", matchID), data)
}

func matchIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := httpx.URLParamUUID(r, "matchID")
	if err != nil {
		httpx.WriteMalformedID(w, "match id")
		return uuid.Nil, false
	}
	return id, true
}

func writeBinary(w http.ResponseWriter, contentType, fileName string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if fileName != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *ScoreHandlers) writeServiceError(w http.ResponseWriter, r *http.Request, action string, err error) {
	if errors.Is(err, scoreservice.ErrMatchNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "match not found")
		return
	}
	h.logger.ErrorContext(r.Context(), "Score request failed", attr.String("action", action), attr.Error(err))
	httpx.WriteError(w, http.StatusInternalServerError, "could not "+action+", please retry")
}
