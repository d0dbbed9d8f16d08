package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/mysupport/mysupport/models"
	"github.com/mysupport/mysupport/pkg"
	"github.com/mysupport/mysupport/pkg/ratelimit"
	"github.com/mysupport/mysupport/services"
)

// AuthHandler serves the action-style auth endpoint and its REST aliases.
type AuthHandler struct {
	authService  services.AuthService
	loginLimiter *ratelimit.LoginRateLimiter
	log          *zap.Logger
}

func NewAuthHandler(authService services.AuthService, loginLimiter *ratelimit.LoginRateLimiter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		loginLimiter: loginLimiter,
		log:          logger,
	}
}

// Action handles POST /api/auth with {action: login|register|logout, ...}.
func (h *AuthHandler) Action(w http.ResponseWriter, r *http.Request) {
	var req models.AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.Error(w, r, pkg.Localized(pkg.ErrBadRequest, "errors.invalidBody"))
		return
	}

	switch req.Action {
	case models.AuthActionLogin:
		h.login(w, r, &models.LoginRequest{Email: req.Email, Password: req.Password})
	case models.AuthActionRegister:
		h.register(w, r, &models.RegisterRequest{Email: req.Email, Password: req.Password, Name: req.Name})
	case models.AuthActionLogout:
		h.Logout(w, r)
	default:
		pkg.Error(w, r, pkg.Localized(pkg.ErrBadRequest, "auth.unknownAction"))
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.Error(w, r, pkg.Localized(pkg.ErrBadRequest, "errors.invalidBody"))
		return
	}
	h.register(w, r, &req)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.Error(w, r, pkg.Localized(pkg.ErrBadRequest, "errors.invalidBody"))
		return
	}
	h.login(w, r, &req)
}

// Logout revokes the session of the request token. It always succeeds for
// the caller.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), SessionToken(r)); err != nil {
		h.log.Error("logout failed", zap.Error(err))
		pkg.Error(w, r, err)
		return
	}
	pkg.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Session handles GET /api/auth and GET /api/users/me: it resolves the
// request token into the session's user.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.ValidateSession(r.Context(), SessionToken(r))
	if err != nil {
		pkg.Error(w, r, err)
		return
	}
	pkg.JSON(w, http.StatusOK, models.MeResponse{Success: true, User: *user})
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request, req *models.RegisterRequest) {
	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		pkg.Error(w, r, err)
		return
	}
	pkg.JSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, req *models.LoginRequest) {
	ip := ratelimit.ExtractIP(r)
	if h.loginLimiter != nil && !h.loginLimiter.Allow(ip) {
		retryAfter := strconv.Itoa(h.loginLimiter.RetryAfterSeconds(ip))
		w.Header().Set("Retry-After", retryAfter)
		h.log.Warn("login rate limited", zap.String("ip", ip))
		pkg.Error(w, r, pkg.LocalizedWithParams(pkg.ErrTooManyRequests, "auth.tooManyAttempts",
			map[string]string{"seconds": retryAfter}))
		return
	}

	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		pkg.Error(w, r, err)
		return
	}

	if h.loginLimiter != nil {
		h.loginLimiter.Reset(ip)
	}
	pkg.JSON(w, http.StatusOK, resp)
}
