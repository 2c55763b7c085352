package flashcardhandlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	flashcardservice "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/flashcard/application"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/attr"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/httpx"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/session"
	"go.opentelemetry.io/otel/trace"
)

// maxImportBytes caps uploaded deck files.
const maxImportBytes = 5 << 20

// FlashcardHandlers implements the Handlers interface.
type FlashcardHandlers struct {
	service flashcardservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewFlashcardHandlers creates a new FlashcardHandlers instance.
func NewFlashcardHandlers(service flashcardservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &FlashcardHandlers{service: service, logger: logger, tracer: tracer}
}

func (h *FlashcardHandlers) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "FlashcardHandlers.HandleList")
	defer span.End()

	cards, err := h.service.ListFlashcards(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list flashcards", attr.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "could not load flashcards, please retry")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cards)
}

func (h *FlashcardHandlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "FlashcardHandlers.HandleCreate")
	defer span.End()

	identity, _ := session.FromContext(ctx)

	var draft flashcardservice.Draft
	if err := httpx.DecodeJSON(r, &draft); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	card, err := h.service.CreateFlashcard(ctx, identity, draft)
	if err != nil {
		h.writeServiceError(w, r, "create flashcard", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, card)
}

func (h *FlashcardHandlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "FlashcardHandlers.HandleGet")
	defer span.End()

	id, err := httpx.URLParamUUID(r, "flashcardID")
	if err != nil {
		httpx.WriteMalformedID(w, "flashcard id")
		return
	}

	card, err := h.service.GetFlashcard(ctx, id)
	if err != nil {
		h.writeServiceError(w, r, "get flashcard", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, card)
}

func (h *FlashcardHandlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "FlashcardHandlers.HandleDelete")
	defer span.End()

	id, err := httpx.URLParamUUID(r, "flashcardID")
	if err != nil {
		httpx.WriteMalformedID(w, "flashcard id")
		return
	}

	res, err := h.service.DeleteFlashcard(ctx, id)
	if err != nil {
		h.writeServiceError(w, r, "delete flashcard", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *FlashcardHandlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "FlashcardHandlers.HandleImport")
	defer span.End()

	identity, _ := session.FromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "expected a multipart upload under 5 MB")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "missing 'file' field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	report, err := h.service.ImportFlashcards(ctx, identity, header.Filename, data)
	if err != nil {
		h.writeServiceError(w, r, "import flashcards", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, report)
}

func (h *FlashcardHandlers) writeServiceError(w http.ResponseWriter, r *http.Request, action string, err error) {
	var verr *flashcardservice.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.WriteError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, flashcardservice.ErrUnsupportedFile):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, flashcardservice.ErrFlashcardNotFound):
		httpx.WriteError(w, http.StatusNotFound, "flashcard not found")
	case errors.Is(err, flashcardservice.ErrFlashcardInUse):
		httpx.WriteError(w, http.StatusConflict, flashcardservice.ErrFlashcardInUse.Error())
	default:
		h.logger.ErrorContext(r.Context(), "Flashcard request failed", attr.String("action", action), attr.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "could not "+action+", please retry")
	}
}
