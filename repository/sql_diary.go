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

type sqlDiaryRepo struct {
	db      database.TxQuerier
	dialect database.Dialect
}

// NewSQLDiaryRepo returns a DiaryRepository on db.
func NewSQLDiaryRepo(db database.TxQuerier, dialect database.Dialect) DiaryRepository {
	return &sqlDiaryRepo{db: db, dialect: dialect}
}

func (r *sqlDiaryRepo) Create(ctx context.Context, entry *models.DiaryEntry) error {
	query := r.dialect.Rebind(`
		INSERT INTO diary_entries (user_id, mood, entry_text, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowContext(ctx, query,
		entry.UserID,
		string(entry.Mood),
		entry.Text,
		entry.CreatedAt.UTC(),
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to create diary entry: %w", err)
	}
	return nil
}

func (r *sqlDiaryRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]models.DiaryEntry, error) {
	query := r.dialect.Rebind(`
		SELECT id, user_id, mood, entry_text, created_at
		FROM diary_entries
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`)

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list diary entries: %w", err)
	}
	defer rows.Close()

	entries := make([]models.DiaryEntry, 0, limit)
	for rows.Next() {
		var e models.DiaryEntry
		var mood string
		if err := rows.Scan(&e.ID, &e.UserID, &mood, &e.Text, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan diary entry: %w", err)
		}
		e.Mood = models.Mood(mood)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating diary entries: %w", err)
	}

	return entries, nil
}

func (r *sqlDiaryRepo) CountMoodsSince(ctx context.Context, userID int64, since time.Time) (map[models.Mood]int, error) {
	query := r.dialect.Rebind(`
		SELECT mood, COUNT(*)
		FROM diary_entries
		WHERE user_id = ? AND created_at >= ?
		GROUP BY mood`)

	rows, err := r.db.QueryContext(ctx, query, userID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to count moods: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Mood]int, len(models.AllMoods))
	for rows.Next() {
		var mood string
		var n int
		if err := rows.Scan(&mood, &n); err != nil {
			return nil, fmt.Errorf("failed to scan mood count: %w", err)
		}
		counts[models.Mood(mood)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mood counts: %w", err)
	}

	return counts, nil
}

type sqlProgressRepo struct {
	db      database.TxQuerier
	dialect database.Dialect
}

// NewSQLProgressRepo returns a ProgressRepository on db.
func NewSQLProgressRepo(db database.TxQuerier, dialect database.Dialect) ProgressRepository {
	return &sqlProgressRepo{db: db, dialect: dialect}
}

func (r *sqlProgressRepo) Increment(ctx context.Context, userID int64, at time.Time) error {
	query := r.dialect.Rebind(`
		INSERT INTO user_progress (user_id, diary_count, updated_at)
		VALUES (?, 1, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			diary_count = user_progress.diary_count + 1,
			updated_at = excluded.updated_at`)

	if _, err := r.db.ExecContext(ctx, query, userID, at.UTC()); err != nil {
		return fmt.Errorf("failed to increment progress: %w", err)
	}
	return nil
}

func (r *sqlProgressRepo) Get(ctx context.Context, userID int64) (int, time.Time, error) {
	query := r.dialect.Rebind(`SELECT diary_count, updated_at FROM user_progress WHERE user_id = ?`)

	var count int
	var updatedAt time.Time
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&count, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, time.Time{}, pkg.ErrNotFound
	}
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to get progress: %w", err)
	}
	return count, updatedAt, nil
}
