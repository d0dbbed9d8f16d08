package main

import (
	"github.com/mysupport/mysupport/database"
	"github.com/mysupport/mysupport/repository"
)

// Repositories groups every repository bound to the main connection pool.
// Transaction-bound copies are created inside services.
type Repositories struct {
	User     repository.UserRepository
	Session  repository.SessionRepository
	Diary    repository.DiaryRepository
	Progress repository.ProgressRepository
}

func initRepositories(db *database.DB) *Repositories {
	return &Repositories{
		User:     repository.NewSQLUserRepo(db.Conn, db.Dialect),
		Session:  repository.NewSQLSessionRepo(db.Conn, db.Dialect),
		Diary:    repository.NewSQLDiaryRepo(db.Conn, db.Dialect),
		Progress: repository.NewSQLProgressRepo(db.Conn, db.Dialect),
	}
}
