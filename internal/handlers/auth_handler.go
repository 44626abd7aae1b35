package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/skillbridge/backend/internal/models"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for authentication business logic.
type AuthService interface {
	// Method Register validates the credentials and creates a new user with role user and no track.
	//
	// If a field is missing or the email is malformed a validation error is returned,
	// if the email is taken a conflict error is returned.
	Register(ctx context.Context, req *models.RegisterRequest) error
	// Method Login verifies the credentials and returns an access token with the user summary.
	//
	// Unknown email and wrong password both return the same unauthorized error.
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
}

// AuthHandler handles registration and login
type AuthHandler struct {
	BaseHandler
	authService AuthService
	tokenTTL    time.Duration
}

// NewAuthHandler creates a new auth handler.
// "tokenTTL" sets the lifetime of the access_token cookie and should match the token expiry.
func NewAuthHandler(authService AuthService, tokenTTL time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		authService: authService,
		tokenTTL:    tokenTTL,
	}
}

// RegisterRoutes registers auth routes behind the given limiter
// Note: This assumes the router is already scoped to /api/users
func (h *AuthHandler) RegisterRoutes(r chi.Router, limiter func(http.Handler) http.Handler) {
	r.With(limiter).Post("/register", h.Register)
	r.With(limiter).Post("/login", h.Login)
}

// Register handles POST /users/register
// @Summary Register a new user
// @Description Register a new learner with name, email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Register request"
// @Success 201 {object} map[string]string "User registered"
// @Failure 400 {object} map[string]string "Invalid request body or missing fields"
// @Failure 409 {object} map[string]string "User already exists"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /users/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.authService.Register(r.Context(), &req); err != nil {
		h.RespondServiceError(w, err, "failed to register user")
		return
	}

	h.RespondJSON(w, http.StatusCreated, map[string]string{"message": "user registered"})
}

// Login handles POST /users/login
// @Summary Login user
// @Description Authenticate with email and password. The access token is returned in the body and as an HTTP-only cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /users/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, err, "failed to login user")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    resp.Token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	h.RespondJSON(w, http.StatusOK, resp)
}
