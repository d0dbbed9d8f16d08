package database

import "embed"

// EmbeddedMigrations holds migrations/<dialect>/*.sql.
//
//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var EmbeddedMigrations embed.FS
