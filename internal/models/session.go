package models

import "time"

// RefreshSession tracks an issued refresh token so it can be revoked (SQL store)
type RefreshSession struct {
	ID        string     `json:"id" gorm:"primaryKey;size:36"` // token jti
	UserID    string     `json:"user_id" gorm:"size:24;index"`
	UserAgent string     `json:"user_agent" gorm:"size:255"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"index"`
	RevokedAt *time.Time `json:"revoked_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// Active reports whether the session can still mint access tokens
func (s *RefreshSession) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
