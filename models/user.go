// Package models holds the domain types shared by every layer: database rows,
// request bodies and the wire shapes of the API.
package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mysupport/mysupport/pkg"
)

// MinPasswordLength is the minimum password length in runes.
const MinPasswordLength = 6

// User is a registered account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// AuthAction is the "action" field of the auth endpoint.
type AuthAction string

const (
	AuthActionLogin    AuthAction = "login"
	AuthActionRegister AuthAction = "register"
	AuthActionLogout   AuthAction = "logout"
)

// AuthRequest is the body of POST /api/auth.
type AuthRequest struct {
	Action   AuthAction `json:"action"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Name     string     `json:"name,omitempty"`
}

// AuthResponse is returned by a successful login or registration.
type AuthResponse struct {
	Success      bool   `json:"success"`
	SessionToken string `json:"session_token"`
	User         User   `json:"user"`
}

// MeResponse is returned by the session check.
type MeResponse struct {
	Success bool `json:"success"`
	User    User `json:"user"`
}

// RegisterRequest carries the fields needed to create an account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Validate normalizes the request (email trimmed and lowercased, name
// trimmed) and checks the required fields and password length.
func (r *RegisterRequest) Validate() error {
	r.Email = normalizeEmail(r.Email)
	r.Name = strings.TrimSpace(r.Name)

	if r.Email == "" || r.Password == "" || r.Name == "" {
		return pkg.Localized(pkg.ErrBadRequest, "auth.fieldsRequired")
	}
	if utf8.RuneCountInString(r.Password) < MinPasswordLength {
		return pkg.Localized(pkg.ErrBadRequest, "auth.passwordTooShort")
	}
	return nil
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate normalizes the email and checks both fields are present.
func (r *LoginRequest) Validate() error {
	r.Email = normalizeEmail(r.Email)
	if r.Email == "" || r.Password == "" {
		return pkg.Localized(pkg.ErrBadRequest, "auth.credentialsRequired")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
