package models

import "time"

// Session is a server-side login session. The token handed to clients names
// the session by ID; logging out sets RevokedAt.
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Active reports whether the session can still authenticate requests at now.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
