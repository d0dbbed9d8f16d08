// Package handlers holds the HTTP handlers. They decode requests, call a
// service and write the result with pkg.JSON / pkg.Error; no business logic
// lives here.
package handlers

import (
	"net/http"
	"strings"

	"github.com/mysupport/mysupport/models"
)

type contextKey string

// UserContextKey is where the auth middleware stores the *models.User.
const UserContextKey contextKey = "user"

// SessionTokenHeader carries the session token on API requests.
const SessionTokenHeader = "X-Session-Token"

// SessionToken reads the session token from X-Session-Token, falling back
// to an "Authorization: Bearer" header.
func SessionToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(SessionTokenHeader)); token != "" {
		return token
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func userFromContext(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	return user, ok && user != nil
}
