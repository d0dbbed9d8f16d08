package repository

import (
	"context"
	"time"

	"github.com/mysupport/mysupport/models"
)

// DiaryRepository stores diary entries.
type DiaryRepository interface {
	// Create inserts entry and fills in its ID.
	Create(ctx context.Context, entry *models.DiaryEntry) error
	// ListByUser returns at most limit entries, newest first.
	ListByUser(ctx context.Context, userID int64, limit int) ([]models.DiaryEntry, error)
	// CountMoodsSince counts the user's entries per mood created at or after since.
	CountMoodsSince(ctx context.Context, userID int64, since time.Time) (map[models.Mood]int, error)
}

// ProgressRepository stores the per-user diary counter.
type ProgressRepository interface {
	// Increment adds one to the user's diary count, creating the row on first use.
	Increment(ctx context.Context, userID int64, at time.Time) error
	// Get returns the counter and its last update, or pkg.ErrNotFound.
	Get(ctx context.Context, userID int64) (count int, updatedAt time.Time, err error)
}
