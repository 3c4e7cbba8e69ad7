package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/anonto42/snapshare/backend/internal/repositories"
	"github.com/anonto42/snapshare/backend/internal/storage"
	"github.com/anonto42/snapshare/backend/validators"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Listing bounds shared by paginated endpoints
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// UserService serves profiles and profile edits
type UserService struct {
	users  repositories.UserRepository
	store  storage.ObjectStore
	logger *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(users repositories.UserRepository, store storage.ObjectStore, logger *zap.Logger) *UserService {
	return &UserService{users: users, store: store, logger: logger}
}

// GetUser loads a profile by hex id, filling in the placeholder avatar
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	objID, err := repositories.ParseID(id)
	if err != nil {
		return nil, models.NewValidationError("Invalid user ID")
	}
	return s.load(ctx, objID)
}

// Me loads the authenticated user's own profile
func (s *UserService) Me(ctx context.Context, identity models.Identity) (*models.User, error) {
	return s.load(ctx, identity.UserID)
}

// ListUsers pages through users newest first; search may be empty
func (s *UserService) ListUsers(ctx context.Context, search string, page, limit int64) (*models.UserPage, error) {
	page, limit = ClampPage(page, limit)
	users, total, err := s.users.ListUsers(ctx, strings.TrimSpace(search), (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		users[i].AvatarURL = users[i].AvatarOrDefault()
	}
	return &models.UserPage{Users: users, Pagination: models.NewPagination(page, limit, total)}, nil
}

// UpdateProfile applies the whitelisted fields of req to the caller's own profile
func (s *UserService) UpdateProfile(ctx context.Context, identity models.Identity, id string, req *models.UpdateUserRequest) (*models.User, error) {
	objID, err := s.authorizeSelf(identity, id)
	if err != nil {
		return nil, err
	}

	fields := bson.M{}
	if req.DisplayName != nil {
		fields["display_name"] = strings.TrimSpace(*req.DisplayName)
	}
	if req.Bio != nil {
		fields["bio"] = strings.TrimSpace(*req.Bio)
	}
	if req.Website != nil {
		fields["website"] = strings.TrimSpace(*req.Website)
	}
	if req.Username != nil {
		username := validators.NormalizeUsername(*req.Username)
		if err := validators.ValidateUsername(username); err != nil {
			return nil, err
		}
		fields["username"] = username
	}
	if len(fields) == 0 {
		return nil, models.NewValidationError("No valid fields to update")
	}

	user, err := s.users.UpdateUser(ctx, objID, fields)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, models.NewConflictError("Username is already taken")
		case errors.Is(err, repositories.ErrNotFound):
			return nil, models.NewNotFoundError("User")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// UpdateAvatar uploads a new avatar for the caller and drops the previous one.
// Removing the old image is best-effort.
func (s *UserService) UpdateAvatar(ctx context.Context, identity models.Identity, id string, img *storage.Image) (*models.User, error) {
	objID, err := s.authorizeSelf(identity, id)
	if err != nil {
		return nil, err
	}
	current, err := s.load(ctx, objID)
	if err != nil {
		return nil, err
	}

	res, err := s.store.Upload(ctx, storage.AvatarFolder, img.Reader(), img.ContentType)
	if err != nil {
		return nil, objectStoreErr("upload", "", err)
	}

	user, err := s.users.UpdateUser(ctx, objID, bson.M{"avatar_url": res.URL, "avatar_public_id": res.PublicID})
	if err != nil {
		s.discard(ctx, res.PublicID)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.NewNotFoundError("User")
		}
		return nil, fmt.Errorf("update avatar: %w", err)
	}

	if current.AvatarPublicID != "" {
		s.discard(ctx, current.AvatarPublicID)
	}
	return user, nil
}

// AuthorizeDelete resolves the target of an account deletion, which must be the caller
func (s *UserService) AuthorizeDelete(identity models.Identity, id string) (primitive.ObjectID, error) {
	return s.authorizeSelf(identity, id)
}

func (s *UserService) authorizeSelf(identity models.Identity, id string) (primitive.ObjectID, error) {
	objID, err := repositories.ParseID(id)
	if err != nil {
		return primitive.NilObjectID, models.NewValidationError("Invalid user ID")
	}
	if objID != identity.UserID {
		return primitive.NilObjectID, models.NewForbiddenError("You can only modify your own account")
	}
	return objID, nil
}

func (s *UserService) load(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.NewNotFoundError("User")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	user.AvatarURL = user.AvatarOrDefault()
	return user, nil
}

func (s *UserService) discard(ctx context.Context, publicID string) {
	if err := s.store.Delete(ctx, publicID); err != nil {
		s.logger.Warn("object store cleanup failed", zap.Error(objectStoreErr("delete", publicID, err)))
	}
}

// ClampPage applies the listing defaults: page >= 1 and 1 <= limit <= MaxPageSize
func ClampPage(page, limit int64) (int64, int64) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}
