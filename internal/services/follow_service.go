package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/anonto42/snapshare/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FollowService manages the directed follow graph
type FollowService struct {
	follows repositories.FollowRepository
	users   repositories.UserRepository
}

// NewFollowService creates a new FollowService
func NewFollowService(follows repositories.FollowRepository, users repositories.UserRepository) *FollowService {
	return &FollowService{follows: follows, users: users}
}

// Follow makes the caller follow the target user
func (s *FollowService) Follow(ctx context.Context, identity models.Identity, targetID string) (*models.Follow, error) {
	target, err := s.target(ctx, identity, targetID)
	if err != nil {
		return nil, err
	}
	if _, err := activeUser(ctx, s.users, identity.UserID); err != nil {
		return nil, err
	}

	follow := &models.Follow{FollowerID: identity.UserID, FollowingID: target}
	if err := s.follows.CreateFollow(ctx, follow); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, models.NewConflictError("Already following this user")
		}
		return nil, fmt.Errorf("create follow: %w", err)
	}
	return follow, nil
}

// Unfollow removes the caller's edge to the target user
func (s *FollowService) Unfollow(ctx context.Context, identity models.Identity, targetID string) error {
	target, err := repositories.ParseID(targetID)
	if err != nil {
		return models.NewValidationError("Invalid user ID")
	}
	removed, err := s.follows.DeleteFollow(ctx, identity.UserID, target)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	if !removed {
		return models.NewNotFoundError("Follow")
	}
	return nil
}

// Followers lists who follows the user
func (s *FollowService) Followers(ctx context.Context, userID string) ([]models.FollowEntry, error) {
	id, err := repositories.ParseID(userID)
	if err != nil {
		return nil, models.NewValidationError("Invalid user ID")
	}
	edges, err := s.follows.GetFollowers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	return s.entries(ctx, edges, func(f models.Follow) primitive.ObjectID { return f.FollowerID })
}

// Following lists whom the user follows
func (s *FollowService) Following(ctx context.Context, userID string) ([]models.FollowEntry, error) {
	id, err := repositories.ParseID(userID)
	if err != nil {
		return nil, models.NewValidationError("Invalid user ID")
	}
	edges, err := s.follows.GetFollowing(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	return s.entries(ctx, edges, func(f models.Follow) primitive.ObjectID { return f.FollowingID })
}

func (s *FollowService) target(ctx context.Context, identity models.Identity, targetID string) (primitive.ObjectID, error) {
	id, err := repositories.ParseID(targetID)
	if err != nil {
		return primitive.NilObjectID, models.NewValidationError("Invalid user ID")
	}
	if id == identity.UserID {
		return primitive.NilObjectID, models.NewValidationError("You cannot follow yourself")
	}
	if _, err := s.users.GetUserByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return primitive.NilObjectID, models.NewNotFoundError("User")
		}
		return primitive.NilObjectID, fmt.Errorf("load user: %w", err)
	}
	return id, nil
}

func (s *FollowService) entries(ctx context.Context, edges []models.Follow, other func(models.Follow) primitive.ObjectID) ([]models.FollowEntry, error) {
	ids := make([]primitive.ObjectID, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, other(e))
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	out := make([]models.FollowEntry, 0, len(edges))
	for _, e := range edges {
		u, ok := users[other(e)]
		if !ok {
			continue
		}
		compact := u.Compact()
		out = append(out, models.FollowEntry{ID: e.ID, User: &compact, CreatedAt: e.CreatedAt})
	}
	return out, nil
}
