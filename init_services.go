package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mysupport/mysupport/config"
	"github.com/mysupport/mysupport/database"
	"github.com/mysupport/mysupport/models"
	"github.com/mysupport/mysupport/pkg/cache"
	"github.com/mysupport/mysupport/pkg/ratelimit"
	"github.com/mysupport/mysupport/services"
	"github.com/mysupport/mysupport/ws"
)

const sessionCachePrefix = "mysupport:session:"

// Services groups the services plus the stateful helpers they own.
type Services struct {
	Auth     services.AuthService
	Diary    services.DiaryService
	Progress services.ProgressService
	Content  services.ContentService

	LoginLimiter *ratelimit.LoginRateLimiter
	SessionCache cache.Store[models.User]
}

func initServices(
	ctx context.Context,
	cfg *config.Config,
	db *database.DB,
	repos *Repositories,
	hub ws.EventPublisher,
	log *zap.Logger,
) (*Services, error) {
	sessionCache, err := initSessionCache(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	content, err := services.NewContentService()
	if err != nil {
		_ = sessionCache.Close()
		return nil, err
	}

	authService := services.NewAuthService(repos.User, repos.Session, sessionCache, services.AuthConfig{
		Secret:     cfg.Session.Secret,
		SessionTTL: cfg.Session.TTL,
		CacheTTL:   cfg.Session.CacheTTL,
		BcryptCost: cfg.Session.BcryptCost,
	}, log.Named("auth"))

	progressService := services.NewProgressService(repos.Progress, repos.Diary)
	diaryService := services.NewDiaryService(db, repos.Diary, progressService, hub, cfg.Diary.ListLimit, log.Named("diary"))

	return &Services{
		Auth:         authService,
		Diary:        diaryService,
		Progress:     progressService,
		Content:      content,
		LoginLimiter: ratelimit.NewLoginRateLimiter(cfg.RateLimit.LoginMaxAttempts, cfg.RateLimit.LoginWindow),
		SessionCache: sessionCache,
	}, nil
}

// initSessionCache uses Redis when REDIS_URL is set so several instances
// see the same logouts; otherwise an in-process TTL cache.
func initSessionCache(ctx context.Context, cfg *config.Config, log *zap.Logger) (cache.Store[models.User], error) {
	if cfg.Redis.URL == "" {
		return cache.NewMemoryStore[models.User](cfg.Session.CacheTTL, time.Minute), nil
	}

	rdb, err := cache.ConnectRedis(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info("session cache backed by redis")
	return cache.NewRedisStore[models.User](rdb, sessionCachePrefix), nil
}

// Close releases the limiter and cache.
func (s *Services) Close() {
	s.LoginLimiter.Close()
	_ = s.SessionCache.Close()
}

// runSessionJanitor deletes expired sessions every interval until ctx ends.
func runSessionJanitor(ctx context.Context, auth services.AuthService, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := auth.PurgeExpiredSessions(ctx)
			if err != nil {
				log.Warn("failed to purge expired sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("expired sessions purged", zap.Int64("count", n))
			}
		}
	}
}
