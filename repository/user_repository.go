// Package repository is the data access layer. Each aggregate has an
// interface here and an implementation in sql_*.go that runs on either
// SQLite or PostgreSQL. Constructors accept a database.TxQuerier so a
// service can bind repositories to a transaction.
package repository

import (
	"context"

	"github.com/mysupport/mysupport/models"
)

// UserRepository stores accounts.
type UserRepository interface {
	// Create inserts user and fills in its ID. A taken email yields
	// pkg.ErrAlreadyExists.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
