package services

import (
	"context"
	"errors"
	"time"

	"github.com/mysupport/mysupport/models"
	"github.com/mysupport/mysupport/pkg"
	"github.com/mysupport/mysupport/repository"
)

// ProgressService reports diary activity.
type ProgressService interface {
	// Get returns the diary counter and the per-mood counts of the last
	// models.ProgressWindow. Every mood is present in Moods.
	Get(ctx context.Context, userID int64) (*models.Progress, error)
}

type progressService struct {
	progressRepo repository.ProgressRepository
	diaryRepo    repository.DiaryRepository
	now          func() time.Time
}

func NewProgressService(progressRepo repository.ProgressRepository, diaryRepo repository.DiaryRepository) ProgressService {
	return &progressService{
		progressRepo: progressRepo,
		diaryRepo:    diaryRepo,
		now:          time.Now,
	}
}

func (s *progressService) Get(ctx context.Context, userID int64) (*models.Progress, error) {
	progress := &models.Progress{Moods: make(map[models.Mood]int, len(models.AllMoods))}

	count, updatedAt, err := s.progressRepo.Get(ctx, userID)
	switch {
	case errors.Is(err, pkg.ErrNotFound):
	case err != nil:
		return nil, err
	default:
		progress.DiaryCount = count
		progress.UpdatedAt = &updatedAt
	}

	counts, err := s.diaryRepo.CountMoodsSince(ctx, userID, s.now().Add(-models.ProgressWindow))
	if err != nil {
		return nil, err
	}
	for _, m := range models.AllMoods {
		progress.Moods[m] = counts[m]
	}

	return progress, nil
}
