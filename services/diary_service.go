package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mysupport/mysupport/database"
	"github.com/mysupport/mysupport/models"
	"github.com/mysupport/mysupport/repository"
	"github.com/mysupport/mysupport/ws"
)

// DiaryService lists and records diary entries.
type DiaryService interface {
	// List returns the user's most recent entries, newest first.
	List(ctx context.Context, userID int64) ([]models.DiaryEntryView, error)
	// Create validates req, stores the entry, bumps the progress counter
	// and notifies the user's open connections.
	Create(ctx context.Context, userID int64, req *models.CreateDiaryEntryRequest) (*models.CreateDiaryEntryResponse, error)
}

type diaryService struct {
	db        *database.DB
	diaryRepo repository.DiaryRepository
	progress  ProgressService
	hub       ws.EventPublisher
	log       *zap.Logger
	listLimit int
	now       func() time.Time
}

// NewDiaryService wires the service. db is used to run Create in a
// transaction; diaryRepo serves reads.
func NewDiaryService(
	db *database.DB,
	diaryRepo repository.DiaryRepository,
	progress ProgressService,
	hub ws.EventPublisher,
	listLimit int,
	logger *zap.Logger,
) DiaryService {
	return &diaryService{
		db:        db,
		diaryRepo: diaryRepo,
		progress:  progress,
		hub:       hub,
		log:       logger,
		listLimit: listLimit,
		now:       time.Now,
	}
}

func (s *diaryService) List(ctx context.Context, userID int64) ([]models.DiaryEntryView, error) {
	entries, err := s.diaryRepo.ListByUser(ctx, userID, s.listLimit)
	if err != nil {
		return nil, err
	}

	views := make([]models.DiaryEntryView, len(entries))
	for i := range entries {
		views[i] = entries[i].View()
	}
	return views, nil
}

func (s *diaryService) Create(ctx context.Context, userID int64, req *models.CreateDiaryEntryRequest) (*models.CreateDiaryEntryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	entry := &models.DiaryEntry{
		UserID:    userID,
		Mood:      req.Mood,
		Text:      req.Text,
		CreatedAt: s.now().UTC(),
	}

	err := database.WithTx(ctx, s.db.Conn, func(tx *sql.Tx) error {
		txDiaryRepo := repository.NewSQLDiaryRepo(tx, s.db.Dialect)
		txProgressRepo := repository.NewSQLProgressRepo(tx, s.db.Dialect)

		if err := txDiaryRepo.Create(ctx, entry); err != nil {
			return err
		}
		if err := txProgressRepo.Increment(ctx, userID, entry.CreatedAt); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save diary entry: %w", err)
	}

	view := entry.View()
	s.publish(ctx, userID, view)

	return &models.CreateDiaryEntryResponse{
		Success: true,
		ID:      entry.ID,
		Date:    view.Date,
	}, nil
}

func (s *diaryService) publish(ctx context.Context, userID int64, view models.DiaryEntryView) {
	if !s.hub.IsOnline(userID) {
		return
	}

	s.hub.BroadcastToUser(userID, ws.Event{Op: ws.OpDiaryEntryCreate, Data: view})

	progress, err := s.progress.Get(ctx, userID)
	if err != nil {
		s.log.Warn("failed to load progress for event", zap.Int64("user_id", userID), zap.Error(err))
		return
	}
	s.hub.BroadcastToUser(userID, ws.Event{Op: ws.OpProgressUpdate, Data: progress})
}
