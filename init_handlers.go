package main

import (
	"go.uber.org/zap"

	"github.com/mysupport/mysupport/handlers"
	"github.com/mysupport/mysupport/ws"
)

// Handlers groups the HTTP handlers.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Diary    *handlers.DiaryHandler
	Progress *handlers.ProgressHandler
	Content  *handlers.ContentHandler
	WS       *ws.Handler
}

func initHandlers(svcs *Services, hub *ws.Hub, log *zap.Logger) *Handlers {
	return &Handlers{
		Auth:     handlers.NewAuthHandler(svcs.Auth, svcs.LoginLimiter, log.Named("auth")),
		Diary:    handlers.NewDiaryHandler(svcs.Diary),
		Progress: handlers.NewProgressHandler(svcs.Progress),
		Content:  handlers.NewContentHandler(svcs.Content),
		WS:       ws.NewHandler(hub, svcs.Auth),
	}
}
