package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mysupport/mysupport/models"
	"github.com/mysupport/mysupport/pkg"
)

func wantLocalized(t *testing.T, err error, kind error, key string) {
	t.Helper()
	var lerr *pkg.LocalizedError
	if !errors.As(err, &lerr) {
		t.Fatalf("error = %v, want LocalizedError %s", err, key)
	}
	if lerr.Key != key || !errors.Is(err, kind) {
		t.Errorf("error = %v (key %s), want %v / %s", err, lerr.Key, kind, key)
	}
}

func TestRegisterAndValidate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp := env.register(t, " A@B.com ")
	if !resp.Success || resp.SessionToken == "" {
		t.Fatalf("Register() = %+v", resp)
	}
	if resp.User.Email != "a@b.com" || resp.User.Name != "Ann" || resp.User.ID == 0 {
		t.Errorf("user = %+v", resp.User)
	}

	user, err := env.auth.ValidateSession(ctx, resp.SessionToken)
	if err != nil {
		t.Fatalf("ValidateSession() error = %v", err)
	}
	if user.ID != resp.User.ID {
		t.Errorf("ValidateSession() user = %d, want %d", user.ID, resp.User.ID)
	}

	stored, err := env.users.GetByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatal(err)
	}
	if stored.PasswordHash == "secret" || stored.PasswordHash == "" {
		t.Error("password stored in plain text")
	}
}

func TestRegisterErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "a@b.com")

	_, err := env.auth.Register(ctx, &models.RegisterRequest{Email: "A@b.com", Password: "secret", Name: "Other"})
	wantLocalized(t, err, pkg.ErrAlreadyExists, "auth.emailTaken")

	_, err = env.auth.Register(ctx, &models.RegisterRequest{Email: "c@d.com", Password: "123", Name: "C"})
	wantLocalized(t, err, pkg.ErrBadRequest, "auth.passwordTooShort")

	_, err = env.auth.Register(ctx, &models.RegisterRequest{Email: "c@d.com", Password: "secret"})
	wantLocalized(t, err, pkg.ErrBadRequest, "auth.fieldsRequired")
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := env.register(t, "a@b.com")

	resp, err := env.auth.Login(ctx, &models.LoginRequest{Email: "A@B.COM ", Password: "secret"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.User.ID != reg.User.ID || resp.SessionToken == reg.SessionToken {
		t.Errorf("Login() = %+v", resp)
	}

	tests := []struct {
		name string
		req  models.LoginRequest
		kind error
		key  string
	}{
		{"wrong password", models.LoginRequest{Email: "a@b.com", Password: "nope12"}, pkg.ErrUnauthorized, "auth.invalidCredentials"},
		{"unknown email", models.LoginRequest{Email: "x@b.com", Password: "secret"}, pkg.ErrUnauthorized, "auth.invalidCredentials"},
		{"missing password", models.LoginRequest{Email: "a@b.com"}, pkg.ErrBadRequest, "auth.credentialsRequired"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Login(ctx, &tt.req)
			wantLocalized(t, err, tt.kind, tt.key)
		})
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	resp := env.register(t, "a@b.com")

	if _, err := env.auth.ValidateSession(ctx, resp.SessionToken); err != nil {
		t.Fatal(err)
	}

	if err := env.auth.Logout(ctx, resp.SessionToken); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	_, err := env.auth.ValidateSession(ctx, resp.SessionToken)
	wantLocalized(t, err, pkg.ErrUnauthorized, "auth.sessionExpired")

	if err := env.auth.Logout(ctx, "garbage"); err != nil {
		t.Errorf("Logout(garbage) error = %v", err)
	}
	if err := env.auth.Logout(ctx, ""); err != nil {
		t.Errorf("Logout(\"\") error = %v", err)
	}
}

func TestValidateSessionRejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	resp := env.register(t, "a@b.com")

	_, err := env.auth.ValidateSession(ctx, "")
	wantLocalized(t, err, pkg.ErrUnauthorized, "auth.unauthorized")

	_, err = env.auth.ValidateSession(ctx, "not-a-token")
	wantLocalized(t, err, pkg.ErrUnauthorized, "auth.sessionNotFound")

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "whatever",
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = env.auth.ValidateSession(ctx, forged)
	wantLocalized(t, err, pkg.ErrUnauthorized, "auth.sessionNotFound")

	unknown, err := jwt.NewWithClaims(jwt.SigningMethodHS256, models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "missing-session",
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	_, err = env.auth.ValidateSession(ctx, unknown)
	wantLocalized(t, err, pkg.ErrUnauthorized, "auth.sessionNotFound")

	svc := env.auth.(*authService)
	svc.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }
	_, err = env.auth.ValidateSession(ctx, resp.SessionToken)
	wantLocalized(t, err, pkg.ErrUnauthorized, "auth.sessionExpired")
}

func TestValidateSessionUsesCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	resp := env.register(t, "a@b.com")

	if _, err := env.auth.ValidateSession(ctx, resp.SessionToken); err != nil {
		t.Fatal(err)
	}

	claims := &models.SessionClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(resp.SessionToken, claims); err != nil {
		t.Fatal(err)
	}
	cached, ok, err := env.cache.Get(ctx, claims.ID)
	if err != nil || !ok {
		t.Fatalf("cache Get() = %v, %v", ok, err)
	}
	if cached.ID != resp.User.ID {
		t.Errorf("cached user = %d, want %d", cached.ID, resp.User.ID)
	}
}

func TestPurgeExpiredSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "a@b.com")

	svc := env.auth.(*authService)
	svc.now = func() time.Time { return time.Now().Add(40 * 24 * time.Hour) }

	n, err := env.auth.PurgeExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("PurgeExpiredSessions() error = %v", err)
	}
	if n != 1 {
		t.Errorf("purged = %d, want 1", n)
	}
}
