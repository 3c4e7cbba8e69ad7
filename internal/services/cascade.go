package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/snapshare/backend/internal/metrics"
	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/anonto42/snapshare/backend/internal/repositories"
	"github.com/anonto42/snapshare/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CascadeDeleter removes a user or a post together with everything that
// references it. The document store has no cascade of its own, so the order
// below is what keeps dangling references from surviving a deletion.
type CascadeDeleter struct {
	users    repositories.UserRepository
	posts    repositories.PostRepository
	likes    repositories.LikeRepository
	comments repositories.CommentRepository
	follows  repositories.FollowRepository
	store    storage.ObjectStore
	logger   *zap.Logger
}

// NewCascadeDeleter creates a new CascadeDeleter
func NewCascadeDeleter(
	users repositories.UserRepository,
	posts repositories.PostRepository,
	likes repositories.LikeRepository,
	comments repositories.CommentRepository,
	follows repositories.FollowRepository,
	store storage.ObjectStore,
	logger *zap.Logger,
) *CascadeDeleter {
	return &CascadeDeleter{
		users:    users,
		posts:    posts,
		likes:    likes,
		comments: comments,
		follows:  follows,
		store:    store,
		logger:   logger,
	}
}

// DeleteUser removes the user, their posts, the likes and comments on those
// posts, their own likes and comments, and every follow edge touching them.
// A user that does not exist is a no-op. Object store failures are logged and
// skipped; any document store failure aborts and is returned.
//
// Likes the user left on other people's posts are removed without adjusting
// those posts' like_count.
//
// Posts are deleted by the IDs that were listed and the listing is repeated
// until it comes back empty, so a post created mid-cascade still loses its
// image, likes and comments.
func (d *CascadeDeleter) DeleteUser(ctx context.Context, userID primitive.ObjectID) error {
	user, err := d.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load user: %w", err)
	}
	log := d.logger.With(zap.String("user_id", userID.Hex()))

	if user.AvatarPublicID != "" {
		d.deleteObject(ctx, log, "avatar", user.AvatarPublicID)
	}

	postCount, err := d.deleteUserPosts(ctx, log, userID)
	if err != nil {
		return err
	}
	likeCount, err := d.likes.DeleteLikesByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete likes: %w", err)
	}
	commentCount, err := d.comments.DeleteCommentsByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	followCount, err := d.follows.DeleteFollowsByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete follows: %w", err)
	}
	if _, err := d.users.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	metrics.CascadeDeletions.WithLabelValues("user").Inc()
	log.Info("user deleted",
		zap.Int64("posts", postCount),
		zap.Int64("likes", likeCount),
		zap.Int64("comments", commentCount),
		zap.Int64("follows", followCount),
	)
	return nil
}

// DeletePost removes a post owned by actorID along with its likes and comments
func (d *CascadeDeleter) DeletePost(ctx context.Context, actorID primitive.ObjectID, postID string) error {
	id, err := repositories.ParseID(postID)
	if err != nil {
		return models.NewValidationError("Invalid post ID")
	}

	post, err := d.posts.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.NewNotFoundError("Post")
		}
		return fmt.Errorf("load post: %w", err)
	}
	if post.UserID != actorID {
		return models.NewForbiddenError("You are not allowed to delete this post")
	}
	log := d.logger.With(zap.String("post_id", id.Hex()))

	if post.ImagePublicID != "" {
		d.deleteObject(ctx, log, "post_image", post.ImagePublicID)
	}

	ids := []primitive.ObjectID{id}
	if _, err := d.likes.DeleteLikesByPostIDs(ctx, ids); err != nil {
		return fmt.Errorf("delete likes: %w", err)
	}
	if _, err := d.comments.DeleteCommentsByPostIDs(ctx, ids); err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	deleted, err := d.posts.DeletePost(ctx, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	// a concurrent delete got there first
	if deleted == 0 {
		return models.NewNotFoundError("Post")
	}

	metrics.CascadeDeletions.WithLabelValues("post").Inc()
	log.Info("post deleted")
	return nil
}

// maxPostSweeps bounds how often DeleteUser re-lists posts that appeared
// while it was running
const maxPostSweeps = 5

func (d *CascadeDeleter) deleteUserPosts(ctx context.Context, log *zap.Logger, userID primitive.ObjectID) (int64, error) {
	var total int64
	for sweep := 0; ; sweep++ {
		posts, err := d.posts.GetPostsByUserID(ctx, userID, 0, 0)
		if err != nil {
			return total, fmt.Errorf("list posts: %w", err)
		}
		if len(posts) == 0 {
			return total, nil
		}
		if sweep == maxPostSweeps {
			return total, fmt.Errorf("delete posts: %d posts still present after %d sweeps", len(posts), sweep)
		}

		postIDs := make([]primitive.ObjectID, 0, len(posts))
		for _, p := range posts {
			postIDs = append(postIDs, p.ID)
			if p.ImagePublicID != "" {
				d.deleteObject(ctx, log, "post_image", p.ImagePublicID)
			}
		}
		if _, err := d.likes.DeleteLikesByPostIDs(ctx, postIDs); err != nil {
			return total, fmt.Errorf("delete likes on posts: %w", err)
		}
		if _, err := d.comments.DeleteCommentsByPostIDs(ctx, postIDs); err != nil {
			return total, fmt.Errorf("delete comments on posts: %w", err)
		}
		n, err := d.posts.DeletePostsByIDs(ctx, postIDs)
		if err != nil {
			return total, fmt.Errorf("delete posts: %w", err)
		}
		total += n
	}
}

func (d *CascadeDeleter) deleteObject(ctx context.Context, log *zap.Logger, kind, publicID string) {
	if err := d.store.Delete(ctx, publicID); err != nil {
		metrics.ObjectCleanupFailures.WithLabelValues(kind).Inc()
		log.Warn("object store cleanup failed",
			zap.String("kind", kind),
			zap.Error(objectStoreErr("delete", publicID, err)),
		)
	}
}
