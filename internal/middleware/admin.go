package middleware

import (
	"net/http"

	"workshop-backend/internal/auth"
	"workshop-backend/internal/models"
	"workshop-backend/internal/transport"
)

const AccessCookie = "workshop_access"

// AdminAuth accepts either the X-Admin-Key header or a valid access cookie.
// With neither credential configured the workshop runs in open mode and
// requests pass through.
func AdminAuth(adminKey string, manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey == "" && manager == nil {
				next.ServeHTTP(w, r)
				return
			}

			if adminKey != "" && r.Header.Get("X-Admin-Key") == adminKey {
				next.ServeHTTP(w, r)
				return
			}

			if manager != nil {
				cookie, err := r.Cookie(AccessCookie)
				if err == nil && cookie.Value != "" {
					claims, err := manager.Parse(cookie.Value)
					if err == nil && claims.Role == models.UserRoleAdmin {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		})
	}
}
