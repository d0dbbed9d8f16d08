package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mysupport/mysupport/database"
	"github.com/mysupport/mysupport/models"
	"github.com/mysupport/mysupport/pkg"
)

type sqlSessionRepo struct {
	db      database.TxQuerier
	dialect database.Dialect
}

// NewSQLSessionRepo returns a SessionRepository on db.
func NewSQLSessionRepo(db database.TxQuerier, dialect database.Dialect) SessionRepository {
	return &sqlSessionRepo{db: db, dialect: dialect}
}

func (r *sqlSessionRepo) Create(ctx context.Context, session *models.Session) error {
	query := r.dialect.Rebind(`
		INSERT INTO sessions (id, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.ExpiresAt.UTC(),
		session.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *sqlSessionRepo) GetByID(ctx context.Context, id string) (*models.Session, error) {
	query := r.dialect.Rebind(`
		SELECT id, user_id, expires_at, revoked_at, created_at
		FROM sessions WHERE id = ?`)

	session := &models.Session{}
	var revokedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID, &session.UserID, &session.ExpiresAt, &revokedAt, &session.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if revokedAt.Valid {
		session.RevokedAt = &revokedAt.Time
	}

	return session, nil
}

func (r *sqlSessionRepo) Revoke(ctx context.Context, id string, at time.Time) error {
	query := r.dialect.Rebind(`UPDATE sessions SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL`)

	if _, err := r.db.ExecContext(ctx, query, at.UTC(), id); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (r *sqlSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := r.dialect.Rebind(`DELETE FROM sessions WHERE expires_at < ?`)

	result, err := r.db.ExecContext(ctx, query, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return n, nil
}
