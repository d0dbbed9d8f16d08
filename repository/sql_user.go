package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mysupport/mysupport/database"
	"github.com/mysupport/mysupport/models"
	"github.com/mysupport/mysupport/pkg"
)

type sqlUserRepo struct {
	db      database.TxQuerier
	dialect database.Dialect
}

// NewSQLUserRepo returns a UserRepository on db.
func NewSQLUserRepo(db database.TxQuerier, dialect database.Dialect) UserRepository {
	return &sqlUserRepo{db: db, dialect: dialect}
}

func (r *sqlUserRepo) Create(ctx context.Context, user *models.User) error {
	query := r.dialect.Rebind(`
		INSERT INTO users (email, name, password_hash, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowContext(ctx, query,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.CreatedAt.UTC(),
	).Scan(&user.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email already in use", pkg.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *sqlUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := r.dialect.Rebind(`
		SELECT id, email, name, password_hash, created_at
		FROM users WHERE id = ?`)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

func (r *sqlUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := r.dialect.Rebind(`
		SELECT id, email, name, password_hash, created_at
		FROM users WHERE email = ?`)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
