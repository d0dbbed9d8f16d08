package repository

import (
	"context"
	"time"

	"github.com/mysupport/mysupport/models"
)

// SessionRepository stores login sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	// Revoke marks the session revoked at the given time. Revoking an
	// unknown or already revoked session is not an error.
	Revoke(ctx context.Context, id string, at time.Time) error
	// DeleteExpired removes sessions that expired before now and returns
	// how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
