package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/anonto42/snapshare/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxCommentLen = 500

// CommentService manages comments on posts
type CommentService struct {
	comments repositories.CommentRepository
	posts    repositories.PostRepository
	users    repositories.UserRepository
}

// NewCommentService creates a new CommentService
func NewCommentService(comments repositories.CommentRepository, posts repositories.PostRepository, users repositories.UserRepository) *CommentService {
	return &CommentService{comments: comments, posts: posts, users: users}
}

// CreateComment adds a comment by the caller to an existing post
func (s *CommentService) CreateComment(ctx context.Context, identity models.Identity, postID, text string) (*models.CommentWithAuthor, error) {
	id, err := repositories.ParseID(postID)
	if err != nil {
		return nil, models.NewValidationError("Invalid post ID")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.NewValidationError("Comment text is required")
	}
	if utf8.RuneCountInString(text) > maxCommentLen {
		return nil, models.NewValidationError("Comment must be at most 500 characters")
	}

	author, err := activeUser(ctx, s.users, identity.UserID)
	if err != nil {
		return nil, err
	}
	if _, err := s.posts.GetPostByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, fmt.Errorf("load post: %w", err)
	}

	comment := &models.Comment{PostID: id, UserID: identity.UserID, Text: text}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	compact := author.Compact()
	return &models.CommentWithAuthor{Comment: *comment, Author: &compact}, nil
}

// PostComments lists a post's comments newest first with their authors
func (s *CommentService) PostComments(ctx context.Context, postID string) ([]models.CommentWithAuthor, error) {
	id, err := repositories.ParseID(postID)
	if err != nil {
		return nil, models.NewValidationError("Invalid post ID")
	}
	if _, err := s.posts.GetPostByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, fmt.Errorf("load post: %w", err)
	}

	comments, err := s.comments.GetCommentsByPostID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	ids := make([]primitive.ObjectID, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.UserID)
	}
	authors, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}

	out := make([]models.CommentWithAuthor, 0, len(comments))
	for _, c := range comments {
		item := models.CommentWithAuthor{Comment: c}
		if u, ok := authors[c.UserID]; ok {
			compact := u.Compact()
			item.Author = &compact
		}
		out = append(out, item)
	}
	return out, nil
}

// DeleteComment removes a comment; only its author may do so
func (s *CommentService) DeleteComment(ctx context.Context, identity models.Identity, commentID string) error {
	id, err := repositories.ParseID(commentID)
	if err != nil {
		return models.NewValidationError("Invalid comment ID")
	}
	comment, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.NewNotFoundError("Comment")
		}
		return fmt.Errorf("load comment: %w", err)
	}
	if comment.UserID != identity.UserID {
		return models.NewForbiddenError("You can only delete your own comments")
	}

	n, err := s.comments.DeleteComment(ctx, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if n == 0 {
		return models.NewNotFoundError("Comment")
	}
	return nil
}
