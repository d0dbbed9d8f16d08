package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/mysupport/mysupport/services"
	"github.com/mysupport/mysupport/ws"
)

// registerHubCallbacks sends the ready event with the user's progress when
// their first connection opens.
func registerHubCallbacks(hub *ws.Hub, repos *Repositories, progress services.ProgressService, log *zap.Logger) {
	hub.OnUserFirstConnect(func(userID int64) {
		ctx := context.Background()

		user, err := repos.User.GetByID(ctx, userID)
		if err != nil {
			log.Warn("ready: failed to load user", zap.Int64("user_id", userID), zap.Error(err))
			return
		}
		snapshot, err := progress.Get(ctx, userID)
		if err != nil {
			log.Warn("ready: failed to load progress", zap.Int64("user_id", userID), zap.Error(err))
			return
		}

		hub.BroadcastToUser(userID, ws.Event{
			Op:   ws.OpReady,
			Data: ws.ReadyData{User: *user, Progress: *snapshot},
		})
	})

	hub.OnUserFullyDisconnected(func(userID int64) {
		log.Debug("user offline", zap.Int64("user_id", userID))
	})
}
