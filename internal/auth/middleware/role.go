package middleware

import (
	"net/http"

	"github.com/skillbridge/backend/internal/models"
)

// RoleMiddleware checks that the authenticated user's role is at least requiredRole.
// It must run after AuthMiddleware.
func RoleMiddleware(requiredRole models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetUserID(r.Context()); !ok {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			role, _ := GetRole(r.Context())
			if !role.AtLeast(requiredRole) {
				writeError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
