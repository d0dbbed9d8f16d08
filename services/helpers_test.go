package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mysupport/mysupport/database"
	"github.com/mysupport/mysupport/models"
	"github.com/mysupport/mysupport/pkg/cache"
	"github.com/mysupport/mysupport/repository"
	"github.com/mysupport/mysupport/ws"
)

const testSecret = "test-secret"

type testEnv struct {
	db       *database.DB
	users    repository.UserRepository
	sessions repository.SessionRepository
	cache    cache.Store[models.User]
	auth     AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.New(context.Background(), database.SQLite, filepath.Join(t.TempDir(), "svc.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := cache.NewMemoryStore[models.User](time.Minute, time.Minute)
	t.Cleanup(func() { store.Close() })

	env := &testEnv{
		db:       db,
		users:    repository.NewSQLUserRepo(db.Conn, db.Dialect),
		sessions: repository.NewSQLSessionRepo(db.Conn, db.Dialect),
		cache:    store,
	}
	env.auth = NewAuthService(env.users, env.sessions, store, AuthConfig{
		Secret:     testSecret,
		SessionTTL: 30 * 24 * time.Hour,
		CacheTTL:   30 * time.Second,
		BcryptCost: bcrypt.MinCost,
	}, zap.NewNop())
	return env
}

func (e *testEnv) register(t *testing.T, email string) *models.AuthResponse {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), &models.RegisterRequest{Email: email, Password: "secret", Name: "Ann"})
	if err != nil {
		t.Fatalf("Register(%s) error = %v", email, err)
	}
	return resp
}

// recordingPublisher collects published events.
type recordingPublisher struct {
	mu     sync.Mutex
	online bool
	events []ws.Event
}

func (p *recordingPublisher) BroadcastToUser(_ int64, event ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) IsOnline(int64) bool {
	return p.online
}

func (p *recordingPublisher) ops() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ops := make([]string, len(p.events))
	for i, e := range p.events {
		ops[i] = e.Op
	}
	return ops
}
