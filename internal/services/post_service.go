package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/anonto42/snapshare/backend/internal/repositories"
	"github.com/anonto42/snapshare/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PostService creates posts and builds the post listings
type PostService struct {
	posts  repositories.PostRepository
	users  repositories.UserRepository
	store  storage.ObjectStore
	logger *zap.Logger
}

// NewPostService creates a new PostService
func NewPostService(posts repositories.PostRepository, users repositories.UserRepository, store storage.ObjectStore, logger *zap.Logger) *PostService {
	return &PostService{posts: posts, users: users, store: store, logger: logger}
}

// CreatePost uploads the image then inserts the post. If the insert fails the
// uploaded image is deleted again.
func (s *PostService) CreatePost(ctx context.Context, identity models.Identity, req *models.CreatePostRequest, img *storage.Image) (*models.Post, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if img == nil {
		return nil, models.NewValidationError("Image is required")
	}
	if _, err := activeUser(ctx, s.users, identity.UserID); err != nil {
		return nil, err
	}

	res, err := s.store.Upload(ctx, storage.PostFolder, img.Reader(), img.ContentType)
	if err != nil {
		return nil, objectStoreErr("upload", "", err)
	}

	post := &models.Post{
		UserID:        identity.UserID,
		Title:         title,
		Caption:       strings.TrimSpace(req.Caption),
		ImageURL:      res.URL,
		ImagePublicID: res.PublicID,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		if derr := s.store.Delete(ctx, res.PublicID); derr != nil {
			s.logger.Warn("object store cleanup failed", zap.Error(objectStoreErr("delete", res.PublicID, derr)))
		}
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// Feed returns a page of all posts newest first, each with its author
func (s *PostService) Feed(ctx context.Context, page, limit int64) (*models.PostPage, error) {
	page, limit = ClampPage(page, limit)
	posts, total, err := s.posts.GetAllPosts(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	withAuthors, err := s.attachAuthors(ctx, posts)
	if err != nil {
		return nil, err
	}
	return &models.PostPage{Posts: withAuthors, Pagination: models.NewPagination(page, limit, total)}, nil
}

// UserPosts returns every post of one user newest first
func (s *PostService) UserPosts(ctx context.Context, userID string) ([]models.PostWithAuthor, error) {
	id, err := repositories.ParseID(userID)
	if err != nil {
		return nil, models.NewValidationError("Invalid user ID")
	}
	if _, err := s.users.GetUserByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.NewNotFoundError("User")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	posts, err := s.posts.GetPostsByUserID(ctx, id, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list user posts: %w", err)
	}
	return s.attachAuthors(ctx, posts)
}

func (s *PostService) attachAuthors(ctx context.Context, posts []models.Post) ([]models.PostWithAuthor, error) {
	ids := make([]primitive.ObjectID, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.UserID)
	}
	authors, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}

	out := make([]models.PostWithAuthor, 0, len(posts))
	for _, p := range posts {
		item := models.PostWithAuthor{Post: p}
		if u, ok := authors[p.UserID]; ok {
			compact := u.Compact()
			item.Author = &compact
		}
		out = append(out, item)
	}
	return out, nil
}
