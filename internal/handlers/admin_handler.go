package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/skillbridge/backend/internal/models"
	"go.uber.org/zap"
)

// AdminService is the interface that wraps methods for lesson curation and user oversight.
type AdminService interface {
	// Method ListLessons returns every lesson regardless of approval, newest first.
	ListLessons(ctx context.Context) ([]models.Lesson, error)
	// Method CreateLesson validates and stores a new unapproved lesson.
	//
	// Missing fields, an unknown track or a negative duration give a validation error.
	CreateLesson(ctx context.Context, req *models.CreateLessonRequest) (*models.Lesson, error)
	// Method SetLessonApproval sets the approval flag and returns the updated lesson.
	//
	// If the lesson does not exist a not found error is returned.
	SetLessonApproval(ctx context.Context, id string, approved bool) (*models.Lesson, error)
	// Method ListUsers returns every user without credentials, newest first.
	ListUsers(ctx context.Context) ([]models.UserListItem, error)
}

// AdminHandler handles admin HTTP requests
type AdminHandler struct {
	BaseHandler
	service AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(service AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     service,
	}
}

// RegisterRoutes registers admin routes
// Note: This assumes the router is already scoped to /api/admin and restricted to admins
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/lessons", h.ListLessons)
	r.Post("/lessons", h.CreateLesson)
	r.Patch("/lessons/{id}/approve", h.SetLessonApproval)
	r.Get("/users", h.ListUsers)
}

// ListLessons handles GET /admin/lessons
// @Summary List all lessons
// @Description Get every lesson including unapproved ones, newest first
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]models.Lesson
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /admin/lessons [get]
func (h *AdminHandler) ListLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.service.ListLessons(r.Context())
	if err != nil {
		h.RespondServiceError(w, err, "failed to list lessons")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{"lessons": lessons})
}

// CreateLesson handles POST /admin/lessons
// @Summary Upload a lesson
// @Description Create a new lesson awaiting approval
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateLessonRequest true "Lesson"
// @Success 201 {object} map[string]any "Lesson uploaded"
// @Failure 400 {object} map[string]string "Invalid lesson"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /admin/lessons [post]
func (h *AdminHandler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLessonRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lesson, err := h.service.CreateLesson(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, err, "failed to create lesson")
		return
	}

	h.RespondJSON(w, http.StatusCreated, map[string]any{
		"message": "lesson uploaded, awaiting approval",
		"lesson":  lesson,
	})
}

// SetLessonApproval handles PATCH /admin/lessons/{id}/approve
// @Summary Approve or reject a lesson
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lesson ID"
// @Param request body models.ApproveLessonRequest true "Approval flag"
// @Success 200 {object} map[string]any "Lesson approved or rejected"
// @Failure 400 {object} map[string]string "Approved flag required"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Router /admin/lessons/{id}/approve [patch]
func (h *AdminHandler) SetLessonApproval(w http.ResponseWriter, r *http.Request) {
	var req models.ApproveLessonRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Approved == nil {
		h.RespondError(w, http.StatusBadRequest, "approved flag required")
		return
	}

	lesson, err := h.service.SetLessonApproval(r.Context(), chi.URLParam(r, "id"), *req.Approved)
	if err != nil {
		h.RespondServiceError(w, err, "failed to set lesson approval")
		return
	}

	message := "lesson rejected"
	if lesson.Approved {
		message = "lesson approved"
	}
	h.RespondJSON(w, http.StatusOK, map[string]any{
		"message": message,
		"lesson":  lesson,
	})
}

// ListUsers handles GET /admin/users
// @Summary List users
// @Description Get every user with progress and certificates, credentials excluded
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]models.UserListItem
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.RespondServiceError(w, err, "failed to list users")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{"users": users})
}
