package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/skillbridge/backend/internal/models"
	"go.uber.org/zap"
)

// BaseHandler holds the helpers shared by all handlers
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// RespondServiceError maps an error returned by a service to a status code.
// Errors of an unknown kind are logged and answered with an opaque 500.
func (h *BaseHandler) RespondServiceError(w http.ResponseWriter, err error, logMessage string) {
	var status int
	switch {
	case errors.Is(err, models.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, models.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		status = http.StatusForbidden
	default:
		h.Logger.Error(logMessage, zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	message := err.Error()
	var appErr *models.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	h.Logger.Debug(logMessage, zap.Int("status", status), zap.String("reason", message))
	h.RespondError(w, status, message)
}

// decodeJSON decodes the request body into dst
func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
