package handler

import (
	"log/slog"
	"net/http"
	"time"

	"contentpilot/internal/domain/services"
	"contentpilot/internal/httputil"
)

// GenerationHandler starts, cancels and publishes article runs
type GenerationHandler struct {
	generation services.GenerationService
	publisher  services.ArticlePublisher
	logger     *slog.Logger
}

// NewGenerationHandler creates a new generation handler
func NewGenerationHandler(generation services.GenerationService, publisher services.ArticlePublisher, logger *slog.Logger) *GenerationHandler {
	return &GenerationHandler{
		generation: generation,
		publisher:  publisher,
		logger:     logger,
	}
}

// StartGeneration launches the pipeline in the background
// POST /api/articles/{id}/generate
func (h *GenerationHandler) StartGeneration(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Article ID")
	if !ok {
		return
	}

	article, err := h.generation.StartGeneration(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusAccepted, article)
}

// CancelGeneration stops a running pipeline
// POST /api/articles/{id}/generation/cancel
func (h *GenerationHandler) CancelGeneration(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Article ID")
	if !ok {
		return
	}

	if err := h.generation.CancelGeneration(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"article_id": id,
		"status":     "cancelled",
	})
}

type publishRequest struct {
	ScheduleAt *time.Time `json:"schedule_at"`
}

// PublishArticle publishes now or schedules; the body is optional
// POST /api/articles/{id}/publish
func (h *GenerationHandler) PublishArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Article ID")
	if !ok {
		return
	}

	var req publishRequest
	if !parseOptionalBody(w, r, &req) {
		return
	}

	article, err := h.publisher.PublishArticle(r.Context(), httputil.GetUserID(r), id, req.ScheduleAt)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, article)
}
