package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/snapshare/backend/internal/metrics"
	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/anonto42/snapshare/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ToggleResult is the state of the (user, post) like after a toggle
type ToggleResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}

// LikeToggler flips a user's like on a post. The unique (user_id, post_id)
// index and the atomic $inc on like_count are the only concurrency controls;
// no transaction is used.
type LikeToggler struct {
	users  repositories.UserRepository
	posts  repositories.PostRepository
	likes  repositories.LikeRepository
	logger *zap.Logger
}

// NewLikeToggler creates a new LikeToggler
func NewLikeToggler(users repositories.UserRepository, posts repositories.PostRepository, likes repositories.LikeRepository, logger *zap.Logger) *LikeToggler {
	return &LikeToggler{users: users, posts: posts, likes: likes, logger: logger}
}

// Toggle likes the post if the user has not liked it yet, unlikes it otherwise
func (t *LikeToggler) Toggle(ctx context.Context, userID primitive.ObjectID, postID string) (*ToggleResult, error) {
	if postID == "" {
		return nil, models.NewValidationError("postId is required")
	}
	id, err := repositories.ParseID(postID)
	if err != nil {
		return nil, models.NewValidationError("Invalid post ID")
	}

	post, err := t.posts.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, fmt.Errorf("load post: %w", err)
	}

	existing, err := t.likes.GetLike(ctx, userID, id)
	switch {
	case err == nil:
		return t.unlike(ctx, post, existing)
	case errors.Is(err, repositories.ErrNotFound):
		return t.like(ctx, post, userID)
	default:
		return nil, fmt.Errorf("find like: %w", err)
	}
}

func (t *LikeToggler) unlike(ctx context.Context, post *models.Post, like *models.Like) (*ToggleResult, error) {
	removed, err := t.likes.DeleteLike(ctx, like.ID)
	if err != nil {
		return nil, fmt.Errorf("delete like: %w", err)
	}
	if !removed {
		// a concurrent unlike already removed it and decremented
		metrics.LikeToggles.WithLabelValues("race_unliked").Inc()
		return t.current(ctx, post.ID, false)
	}

	count, err := t.posts.IncrementLikeCount(ctx, post.ID, -1)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, fmt.Errorf("decrement like count: %w", err)
	}
	metrics.LikeToggles.WithLabelValues("unliked").Inc()
	return &ToggleResult{Liked: false, LikeCount: count}, nil
}

func (t *LikeToggler) like(ctx context.Context, post *models.Post, userID primitive.ObjectID) (*ToggleResult, error) {
	if _, err := activeUser(ctx, t.users, userID); err != nil {
		return nil, err
	}
	err := t.likes.CreateLike(ctx, &models.Like{UserID: userID, PostID: post.ID})
	if errors.Is(err, repositories.ErrDuplicate) {
		// lost the race to a concurrent like by the same user
		metrics.LikeToggles.WithLabelValues("race_liked").Inc()
		t.logger.Debug("duplicate like ignored",
			zap.String("user_id", userID.Hex()),
			zap.String("post_id", post.ID.Hex()),
		)
		return t.current(ctx, post.ID, true)
	}
	if err != nil {
		return nil, fmt.Errorf("create like: %w", err)
	}

	count, err := t.posts.IncrementLikeCount(ctx, post.ID, 1)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, fmt.Errorf("increment like count: %w", err)
	}
	metrics.LikeToggles.WithLabelValues("liked").Inc()
	return &ToggleResult{Liked: true, LikeCount: count}, nil
}

func (t *LikeToggler) current(ctx context.Context, postID primitive.ObjectID, liked bool) (*ToggleResult, error) {
	post, err := t.posts.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, fmt.Errorf("reload post: %w", err)
	}
	return &ToggleResult{Liked: liked, LikeCount: post.LikeCount}, nil
}
