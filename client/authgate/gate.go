// Package authgate drives the login/register form: it validates input,
// posts it to /api/auth and persists the session on success.
package authgate

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mysupport/mysupport/client/api"
	"github.com/mysupport/mysupport/client/session"
	"github.com/mysupport/mysupport/models"
)

// Mode is the form mode.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

func (m Mode) String() string {
	if m == ModeRegister {
		return "register"
	}
	return "login"
}

// ErrInFlight is returned by Submit while another submission is running.
var ErrInFlight = errors.New("submission already in progress")

// ValidationError is a local input failure; no request was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Credentials is the form input. Name is read only in register mode.
type Credentials struct {
	Email    string
	Password string
	Name     string
}

// Gate holds the form state.
type Gate struct {
	client    *api.Client
	store     *session.Store
	log       *zap.Logger
	onSuccess func(session.State)

	mu      sync.Mutex
	mode    Mode
	busy    bool
	lastErr error
}

// New returns a Gate in login mode. onSuccess may be nil.
func New(client *api.Client, store *session.Store, onSuccess func(session.State), logger *zap.Logger) *Gate {
	return &Gate{
		client:    client,
		store:     store,
		log:       logger,
		onSuccess: onSuccess,
	}
}

// Mode returns the current mode.
func (g *Gate) Mode() Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

// Toggle switches between login and register and clears the shown error.
func (g *Gate) Toggle() Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mode == ModeLogin {
		g.mode = ModeRegister
	} else {
		g.mode = ModeLogin
	}
	g.lastErr = nil
	return g.mode
}

// Busy reports whether a submission is running.
func (g *Gate) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy
}

// LastError is the error of the last finished submission, nil after a
// success or a Toggle.
func (g *Gate) LastError() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastErr
}

// Submit validates creds, posts them and saves the session. The returned
// error is one of *ValidationError, *api.ServerError, an error matching
// api.ErrUnreachable, or ErrInFlight.
func (g *Gate) Submit(ctx context.Context, creds Credentials) (session.State, error) {
	g.mu.Lock()
	if g.busy {
		g.mu.Unlock()
		return session.State{}, ErrInFlight
	}
	mode := g.mode
	g.busy = true
	g.lastErr = nil
	g.mu.Unlock()

	state, err := g.submit(ctx, mode, creds)

	g.mu.Lock()
	g.busy = false
	g.lastErr = err
	g.mu.Unlock()

	if err == nil && g.onSuccess != nil {
		g.onSuccess(state)
	}
	return state, err
}

func (g *Gate) submit(ctx context.Context, mode Mode, creds Credentials) (session.State, error) {
	if err := g.validate(mode, creds); err != nil {
		return session.State{}, err
	}

	req := models.AuthRequest{
		Action:   models.AuthActionLogin,
		Email:    creds.Email,
		Password: creds.Password,
	}
	if mode == ModeRegister {
		req.Action = models.AuthActionRegister
		req.Name = creds.Name
	}

	resp, err := g.client.Do(ctx, http.MethodPost, "/api/auth", "", req)
	if err != nil {
		return session.State{}, err
	}
	if !resp.OK() || !resp.Success {
		return session.State{}, g.client.ServerError(resp)
	}

	var out models.AuthResponse
	if err := resp.Decode(&out); err != nil || out.SessionToken == "" || out.User.ID == 0 {
		return session.State{}, g.client.ServerError(&api.Response{Status: resp.Status})
	}

	if err := g.store.Save(out.SessionToken, out.User); err != nil {
		return session.State{}, err
	}
	return session.State{Token: out.SessionToken, User: &out.User}, nil
}

func (g *Gate) validate(mode Mode, creds Credentials) error {
	loc := g.client.Localizer()
	switch {
	case strings.TrimSpace(creds.Email) == "":
		return &ValidationError{Field: "email", Message: loc.T("client.emailRequired")}
	case creds.Password == "":
		return &ValidationError{Field: "password", Message: loc.T("client.passwordRequired")}
	case mode == ModeRegister && strings.TrimSpace(creds.Name) == "":
		return &ValidationError{Field: "name", Message: loc.T("client.nameRequired")}
	case utf8.RuneCountInString(creds.Password) < models.MinPasswordLength:
		return &ValidationError{Field: "password", Message: loc.T("client.passwordTooShort")}
	}
	return nil
}

// Logout clears the local session and tells the server to revoke the token.
// The server call is best effort; its failure is only logged.
func (g *Gate) Logout(ctx context.Context) error {
	state, err := g.store.Load()
	if err != nil {
		return err
	}
	if err := g.store.Clear(); err != nil {
		return err
	}

	if state.Token != "" {
		req := models.AuthRequest{Action: models.AuthActionLogout}
		if _, err := g.client.Do(ctx, http.MethodPost, "/api/auth", state.Token, req); err != nil {
			g.log.Warn("logout notification failed", zap.Error(err))
		}
	}
	return nil
}
