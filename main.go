// Command mysupport runs the "Моя Поддержка" API server: accounts and
// sessions, the mood diary, progress, static content and the realtime
// channel.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mysupport/mysupport/config"
	"github.com/mysupport/mysupport/database"
	"github.com/mysupport/mysupport/pkg/i18n"
	"github.com/mysupport/mysupport/pkg/logger"
	"github.com/mysupport/mysupport/ws"
)

const sessionJanitorInterval = time.Hour

// application is the wired server without its listener.
type application struct {
	db       *database.DB
	hub      *ws.Hub
	services *Services
	handler  http.Handler
}

func newApplication(ctx context.Context, cfg *config.Config, log *zap.Logger) (*application, error) {
	if err := i18n.LoadEmbedded(); err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}

	dialect, err := database.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}
	db, err := database.New(ctx, dialect, cfg.Database.DSN(), log.Named("database"))
	if err != nil {
		return nil, err
	}

	repos := initRepositories(db)
	hub := ws.NewHub(log.Named("ws"))

	svcs, err := initServices(ctx, cfg, db, repos, hub, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	registerHubCallbacks(hub, repos, svcs.Progress, log.Named("ws"))
	go hub.Run()

	h := initHandlers(svcs, hub, log)

	return &application{
		db:       db,
		hub:      hub,
		services: svcs,
		handler:  initRoutes(h, svcs.Auth, cfg.CORS.AllowedOrigins, log.Named("http")),
	}, nil
}

func (a *application) Close() {
	a.hub.Shutdown()
	a.services.Close()
	_ = a.db.Close()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to start", zap.Error(err))
	}
	defer app.Close()

	go runSessionJanitor(ctx, app.services.Auth, sessionJanitorInterval, log.Named("auth"))

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", cfg.Server.Addr()), zap.String("database", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
