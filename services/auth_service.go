// Package services holds the business logic. Handlers call services,
// services call repositories and publish realtime events.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mysupport/mysupport/models"
	"github.com/mysupport/mysupport/pkg"
	"github.com/mysupport/mysupport/pkg/cache"
	"github.com/mysupport/mysupport/repository"
)

// AuthService manages accounts and login sessions.
//
// Session model:
//   - every login or registration inserts a sessions row keyed by a random
//     UUID and returns an HS256 JWT whose jti is that UUID and whose sub is
//     the user ID;
//   - ValidateSession checks the signature and exp first, then the row, so a
//     revoked session is rejected even while its JWT is still unexpired;
//   - validated sessions are cached by session ID for a short time (CacheTTL,
//     capped at the session's remaining lifetime) to keep the row lookup off
//     every request; Logout deletes the cache entry together with revoking the
//     row, so revocation is visible immediately on this instance and, with the
//     Redis store, on every instance.
//
// The token is opaque to clients; only the server interprets its claims.
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	// Logout revokes the session named by token. Unknown or malformed
	// tokens are ignored.
	Logout(ctx context.Context, token string) error
	// ValidateSession returns the user owning an active session token.
	ValidateSession(ctx context.Context, token string) (*models.User, error)
	// PurgeExpiredSessions deletes expired session rows.
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// AuthConfig carries the session settings of AuthService.
type AuthConfig struct {
	Secret     string
	SessionTTL time.Duration
	CacheTTL   time.Duration
	BcryptCost int
}

type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	sessions    cache.Store[models.User]
	log         *zap.Logger

	secret     []byte
	sessionTTL time.Duration
	cacheTTL   time.Duration
	bcryptCost int
	now        func() time.Time
}

// NewAuthService wires the service. sessions caches validated tokens by
// session ID and may be shared between instances (Redis).
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	sessions cache.Store[models.User],
	cfg AuthConfig,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		sessions:    sessions,
		log:         logger,
		secret:      []byte(cfg.Secret),
		sessionTTL:  cfg.SessionTTL,
		cacheTTL:    cfg.CacheTTL,
		bcryptCost:  cfg.BcryptCost,
		now:         time.Now,
	}
}

// Register creates the account and logs it in. A taken email is reported as
// ErrAlreadyExists (409) with auth.emailTaken. The legacy endpoint answered
// 400 for this case; clients only read the error string, which is unchanged.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, pkg.ErrAlreadyExists) {
			return nil, pkg.Localized(pkg.ErrAlreadyExists, "auth.emailTaken")
		}
		return nil, err
	}

	s.log.Info("user registered", zap.Int64("user_id", user.ID))
	return s.issueSession(ctx, user)
}

// Login checks the password against the stored bcrypt hash. Unknown email
// and wrong password produce the same error so the endpoint does not reveal
// which accounts exist.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, pkg.Localized(pkg.ErrUnauthorized, "auth.invalidCredentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, pkg.Localized(pkg.ErrUnauthorized, "auth.invalidCredentials")
	}

	return s.issueSession(ctx, user)
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	// Expired tokens may still be logged out, so claims are not validated here.
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	claims := &models.SessionClaims{}
	if _, err := parser.ParseWithClaims(token, claims, s.keyFunc); err != nil || claims.ID == "" {
		return nil
	}

	if err := s.sessionRepo.Revoke(ctx, claims.ID, s.now()); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		s.log.Warn("failed to evict cached session", zap.String("session_id", claims.ID), zap.Error(err))
	}

	s.log.Info("session revoked", zap.String("session_id", claims.ID))
	return nil
}

func (s *authService) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, pkg.Localized(pkg.ErrUnauthorized, "auth.unauthorized")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	claims := &models.SessionClaims{}
	if _, err := parser.ParseWithClaims(token, claims, s.keyFunc); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, pkg.Localized(pkg.ErrUnauthorized, "auth.sessionExpired")
		}
		return nil, pkg.Localized(pkg.ErrUnauthorized, "auth.sessionNotFound")
	}

	if user, ok, err := s.sessions.Get(ctx, claims.ID); err != nil {
		s.log.Warn("session cache lookup failed", zap.Error(err))
	} else if ok {
		return &user, nil
	}

	session, err := s.sessionRepo.GetByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, pkg.Localized(pkg.ErrUnauthorized, "auth.sessionNotFound")
		}
		return nil, err
	}

	now := s.now()
	if !session.Active(now) {
		return nil, pkg.Localized(pkg.ErrUnauthorized, "auth.sessionExpired")
	}
	if claims.Subject != strconv.FormatInt(session.UserID, 10) {
		return nil, pkg.Localized(pkg.ErrUnauthorized, "auth.sessionNotFound")
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, pkg.Localized(pkg.ErrUnauthorized, "auth.sessionNotFound")
		}
		return nil, err
	}

	ttl := s.cacheTTL
	if remaining := session.ExpiresAt.Sub(now); remaining < ttl {
		ttl = remaining
	}
	if ttl > 0 {
		if err := s.sessions.Set(ctx, claims.ID, *user, ttl); err != nil {
			s.log.Warn("failed to cache session", zap.Error(err))
		}
	}

	return user, nil
}

func (s *authService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessionRepo.DeleteExpired(ctx, s.now())
}

// issueSession stores a new session row and signs its token.
func (s *authService) issueSession(ctx context.Context, user *models.User) (*models.AuthResponse, error) {
	now := s.now()
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	claims := models.SessionClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &models.AuthResponse{
		Success:      true,
		SessionToken: token,
		User:         *user,
	}, nil
}

func (s *authService) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return s.secret, nil
}
