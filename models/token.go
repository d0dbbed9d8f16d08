package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the payload of a session token. RegisteredClaims.ID holds
// the session ID and Subject the user ID.
type SessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}
