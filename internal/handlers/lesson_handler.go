package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/skillbridge/backend/internal/models"
	"go.uber.org/zap"
)

// LessonService is the interface that wraps the public lesson catalogue.
type LessonService interface {
	// Method ListTrackLessons returns approved lessons of a track, oldest first.
	//
	// "track" parameter must be one of design, data-entry or coding, otherwise a validation error is returned.
	ListTrackLessons(ctx context.Context, track string) ([]models.PublicLesson, error)
}

// LessonHandler handles public lesson HTTP requests
type LessonHandler struct {
	BaseHandler
	service LessonService
}

// NewLessonHandler creates a new lesson handler
func NewLessonHandler(service LessonService, logger *zap.Logger) *LessonHandler {
	return &LessonHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     service,
	}
}

// RegisterRoutes registers public lesson routes
// Note: This assumes the router is already scoped to /api
func (h *LessonHandler) RegisterRoutes(r chi.Router) {
	r.Get("/lessons/{track}", h.ListTrackLessons)
}

// ListTrackLessons handles GET /lessons/{track}
// @Summary List lessons of a track
// @Description Get approved lessons of a track ordered by creation time
// @Tags lessons
// @Produce json
// @Param track path string true "Track" Enums(design, data-entry, coding)
// @Success 200 {object} map[string][]models.PublicLesson
// @Failure 400 {object} map[string]string "Invalid track"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lessons/{track} [get]
func (h *LessonHandler) ListTrackLessons(w http.ResponseWriter, r *http.Request) {
	track := chi.URLParam(r, "track")

	lessons, err := h.service.ListTrackLessons(r.Context(), track)
	if err != nil {
		h.RespondServiceError(w, err, "failed to list track lessons")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{"lessons": lessons})
}
