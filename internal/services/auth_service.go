package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anonto42/snapshare/backend/internal/auth"
	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/anonto42/snapshare/backend/internal/repositories"
	"github.com/anonto42/snapshare/backend/internal/storage"
	"github.com/anonto42/snapshare/backend/validators"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Session is the pair of tokens handed out as cookies
type Session struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// AuthService registers users and manages their token sessions
type AuthService struct {
	users    repositories.UserRepository
	sessions repositories.SessionRepository
	tokens   *auth.TokenService
	store    storage.ObjectStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users repositories.UserRepository,
	sessions repositories.SessionRepository,
	tokens *auth.TokenService,
	store storage.ObjectStore,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates the account and opens a session. avatar may be nil, in
// which case a generated placeholder is used. An uploaded avatar is removed
// again if the account cannot be created.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest, avatar *storage.Image, userAgent string) (*Session, error) {
	username := validators.NormalizeUsername(req.Username)
	if err := validators.ValidateUsername(username); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.users.GetUserByLogin(ctx, username, email); err == nil {
		return nil, models.NewConflictError("User with this username or email already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	bio := strings.TrimSpace(req.Bio)
	if bio == "" {
		bio = models.DefaultBio
	}
	user := &models.User{
		Username:     username,
		Email:        email,
		HashPassword: string(hash),
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Bio:          bio,
	}

	if avatar != nil {
		res, err := s.store.Upload(ctx, storage.AvatarFolder, avatar.Reader(), avatar.ContentType)
		if err != nil {
			return nil, objectStoreErr("upload", "", err)
		}
		user.AvatarURL = res.URL
		user.AvatarPublicID = res.PublicID
	} else {
		user.AvatarURL = models.DefaultAvatarURL(user.DisplayName, user.Username)
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if user.AvatarPublicID != "" {
			s.discard(ctx, user.AvatarPublicID)
		}
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, models.NewConflictError("User with this username or email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.open(ctx, user, userAgent)
}

// Login checks the credentials and opens a session
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest, userAgent string) (*Session, error) {
	username := validators.NormalizeUsername(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if (username == "" && email == "") || req.Password == "" {
		return nil, models.NewValidationError("Username or email and password are required")
	}

	user, err := s.users.GetUserByLogin(ctx, username, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.NewNotFoundError("User")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashPassword), []byte(req.Password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	return s.open(ctx, user, userAgent)
}

// Refresh mints a new access token from a refresh token whose session is still active
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Verify(refreshToken, auth.RefreshToken)
	if err != nil {
		return "", models.NewUnauthorizedError("Invalid refresh token")
	}
	session, err := s.sessions.GetSession(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", models.NewUnauthorizedError("Session not found")
		}
		return "", fmt.Errorf("load session: %w", err)
	}
	if !session.Active(s.now()) {
		return "", models.NewUnauthorizedError("Session expired or revoked")
	}

	identity, err := auth.IdentityFromClaims(claims)
	if err != nil {
		return "", models.NewUnauthorizedError("Invalid refresh token")
	}
	user, err := s.users.GetUserByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", models.NewUnauthorizedError("User no longer exists")
		}
		return "", fmt.Errorf("load user: %w", err)
	}

	access, _, err := s.tokens.Issue(user, auth.AccessToken, auth.AccessTTL)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}
	return access, nil
}

// Logout revokes the session behind the refresh token. Invalid or unknown
// tokens are ignored so that logout always succeeds.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := s.tokens.Verify(refreshToken, auth.RefreshToken)
	if err != nil {
		return nil
	}
	if err := s.sessions.RevokeSession(ctx, claims.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// RevokeAll ends every session of the user, used after account deletion
func (s *AuthService) RevokeAll(ctx context.Context, userID string) error {
	n, err := s.sessions.RevokeUserSessions(ctx, userID)
	if err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	s.logger.Debug("sessions revoked", zap.String("user_id", userID), zap.Int64("count", n))
	return nil
}

func (s *AuthService) open(ctx context.Context, user *models.User, userAgent string) (*Session, error) {
	access, _, err := s.tokens.Issue(user, auth.AccessToken, auth.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, claims, err := s.tokens.Issue(user, auth.RefreshToken, auth.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	if len(userAgent) > 255 {
		userAgent = userAgent[:255]
	}
	err = s.sessions.CreateSession(ctx, &models.RefreshSession{
		ID:        claims.ID,
		UserID:    user.ID.Hex(),
		UserAgent: userAgent,
		ExpiresAt: claims.ExpiresAt.Time,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &Session{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) discard(ctx context.Context, publicID string) {
	if err := s.store.Delete(ctx, publicID); err != nil {
		s.logger.Warn("object store cleanup failed", zap.Error(objectStoreErr("delete", publicID, err)))
	}
}

// PurgeExpired drops sessions that expired before now
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpiredSessions(ctx, s.now())
}
