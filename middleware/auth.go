// Package middleware holds the net/http middlewares: session auth, request
// language and access logging.
package middleware

import (
	"context"
	"net/http"

	"github.com/mysupport/mysupport/handlers"
	"github.com/mysupport/mysupport/pkg"
	"github.com/mysupport/mysupport/services"
)

// AuthMiddleware resolves the session token of a request into its user.
type AuthMiddleware struct {
	authService services.AuthService
}

func NewAuthMiddleware(authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Require rejects requests without an active session with 401 and stores
// the session user under handlers.UserContextKey otherwise.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := handlers.SessionToken(r)
		if token == "" {
			pkg.Error(w, r, pkg.Localized(pkg.ErrUnauthorized, "auth.unauthorized"))
			return
		}

		user, err := m.authService.ValidateSession(r.Context(), token)
		if err != nil {
			pkg.Error(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), handlers.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
