package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/snapshare/backend/internal/models"
	"gorm.io/gorm"
)

// SessionRepository defines the interface for refresh-token session operations
type SessionRepository interface {
	CreateSession(ctx context.Context, session *models.RefreshSession) error
	GetSession(ctx context.Context, id string) (*models.RefreshSession, error)
	RevokeSession(ctx context.Context, id string) error
	RevokeUserSessions(ctx context.Context, userID string) (int64, error)
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}

// GormSessionRepository implements SessionRepository on any GORM dialect
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository creates a new GormSessionRepository
func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// CreateSession records an issued refresh token
func (r *GormSessionRepository) CreateSession(ctx context.Context, session *models.RefreshSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// GetSession retrieves a session by its token id
func (r *GormSessionRepository) GetSession(ctx context.Context, id string) (*models.RefreshSession, error) {
	var session models.RefreshSession
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// RevokeSession marks a session revoked; revoking twice is a no-op
func (r *GormSessionRepository) RevokeSession(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&models.RefreshSession{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", time.Now().UTC()).Error
}

// RevokeUserSessions revokes every live session of a user
func (r *GormSessionRepository) RevokeUserSessions(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.RefreshSession{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", time.Now().UTC())
	return res.RowsAffected, res.Error
}

// DeleteExpiredSessions purges sessions that expired before the cutoff
func (r *GormSessionRepository) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", before).Delete(&models.RefreshSession{})
	return res.RowsAffected, res.Error
}
