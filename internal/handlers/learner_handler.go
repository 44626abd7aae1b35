package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/skillbridge/backend/internal/auth/middleware"
	"github.com/skillbridge/backend/internal/models"
	"go.uber.org/zap"
)

// LearnerService is the interface that wraps methods for the authenticated learner.
type LearnerService interface {
	// Method SubmitQuiz assigns a track from the quiz answers and returns it.
	//
	// Empty answers give a validation error, a user who already has a track gets a conflict error.
	SubmitQuiz(ctx context.Context, userID string, answers []models.QuizAnswer) (models.Track, error)
	// Method GetDashboard returns the lessons of the user's track with completion flags and the progress percentage.
	//
	// A user without a track gets models.ErrTrackNotAssigned.
	GetDashboard(ctx context.Context, userID string) (*models.Dashboard, error)
	// Method CompleteLesson marks a lesson as completed and mints a certificate when the track is finished.
	//
	// Lessons that do not exist, are not approved or belong to another track give a not found error.
	CompleteLesson(ctx context.Context, userID string, lessonID string) (*models.CompletionResult, error)
	// Method ListCertificates returns the user's certificates in issue order.
	ListCertificates(ctx context.Context, userID string) ([]models.CertificateEntry, error)
}

// LearnerHandler handles learner HTTP requests
type LearnerHandler struct {
	BaseHandler
	service LearnerService
}

// NewLearnerHandler creates a new learner handler
func NewLearnerHandler(service LearnerService, logger *zap.Logger) *LearnerHandler {
	return &LearnerHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     service,
	}
}

// RegisterRoutes registers learner routes
// Note: This assumes the router is already scoped to /api/users and authenticated
func (h *LearnerHandler) RegisterRoutes(r chi.Router) {
	r.Post("/quiz", h.SubmitQuiz)
	r.Get("/dashboard", h.GetDashboard)
	r.Post("/lesson/{id}/complete", h.CompleteLesson)
	r.Get("/certificates", h.ListCertificates)
}

// userID extracts the authenticated user ID or answers 401
func (h *LearnerHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
	}
	return userID, ok
}

// SubmitQuiz handles POST /users/quiz
// @Summary Submit track quiz
// @Description Assign a learning track from quiz answers
// @Tags learner
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.QuizRequest true "Quiz answers"
// @Success 200 {object} map[string]string "Track assigned"
// @Failure 400 {object} map[string]string "Invalid request body or empty answers"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Track already assigned"
// @Router /users/quiz [post]
func (h *LearnerHandler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req models.QuizRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	track, err := h.service.SubmitQuiz(r.Context(), userID, req.Answers)
	if err != nil {
		h.RespondServiceError(w, err, "failed to submit quiz")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{
		"message": "track assigned",
		"track":   track,
	})
}

// GetDashboard handles GET /users/dashboard
// @Summary Get learner dashboard
// @Description Get the lessons of the user's track with completion flags and progress percentage
// @Tags learner
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Dashboard
// @Failure 400 {object} map[string]string "Track not assigned"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /users/dashboard [get]
func (h *LearnerHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	dashboard, err := h.service.GetDashboard(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to get dashboard")
		return
	}

	h.RespondJSON(w, http.StatusOK, dashboard)
}

// CompleteLesson handles POST /users/lesson/{id}/complete
// @Summary Complete a lesson
// @Description Mark a lesson of the user's track as completed. Finishing the track mints a QR certificate.
// @Tags learner
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lesson ID"
// @Success 200 {object} map[string]any "Lesson marked complete"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Router /users/lesson/{id}/complete [post]
func (h *LearnerHandler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	lessonID := chi.URLParam(r, "id")
	result, err := h.service.CompleteLesson(r.Context(), userID, lessonID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to complete lesson")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{
		"message":        "lesson marked complete",
		"newlyCompleted": result.NewlyCompleted,
		"allCompleted":   result.AllCompleted,
		"certificateUrl": result.CertificateURL,
	})
}

// ListCertificates handles GET /users/certificates
// @Summary List certificates
// @Description Get the certificates issued to the user
// @Tags learner
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]models.CertificateEntry
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /users/certificates [get]
func (h *LearnerHandler) ListCertificates(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	certificates, err := h.service.ListCertificates(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, err, "failed to list certificates")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{"certificates": certificates})
}
