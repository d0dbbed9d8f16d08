package main

import (
	"net/http"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/mysupport/mysupport/handlers"
	"github.com/mysupport/mysupport/middleware"
	"github.com/mysupport/mysupport/services"
)

// initRoutes registers every endpoint and wraps the mux with the middleware
// chain: access log → language → CORS → mux.
func initRoutes(h *Handlers, authService services.AuthService, allowedOrigins []string, log *zap.Logger) http.Handler {
	authMw := middleware.NewAuthMiddleware(authService)
	auth := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(handler)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", handlers.Health)

	// Action-style endpoint used by the web client.
	mux.HandleFunc("POST /api/auth", h.Auth.Action)
	mux.HandleFunc("GET /api/auth", h.Auth.Session)

	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)
	mux.HandleFunc("GET /api/users/me", h.Auth.Session)

	mux.Handle("GET /api/diary", auth(h.Diary.List))
	mux.Handle("POST /api/diary", auth(h.Diary.Create))
	mux.Handle("GET /api/progress", auth(h.Progress.Get))

	mux.HandleFunc("GET /api/content", h.Content.Catalogue)

	mux.HandleFunc("GET /ws", h.WS.HandleConnection)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Content-Type",
			"Authorization",
			"Accept-Language",
			handlers.SessionTokenHeader,
			"X-User-Id",
		},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         86400,
	})

	return middleware.RequestLogger(log)(middleware.Language(corsHandler.Handler(mux)))
}
