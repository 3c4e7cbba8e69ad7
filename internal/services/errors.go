package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/anonto42/snapshare/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// objectStoreErr tags err as an object store failure unless the store already did
func objectStoreErr(op, id string, err error) error {
	var storeErr *models.ObjectStoreError
	if errors.As(err, &storeErr) {
		return err
	}
	return &models.ObjectStoreError{Op: op, ID: id, Err: err}
}

// activeUser loads the acting user for a write. Access tokens outlive account
// deletion, and a write under a deleted account would leave records no
// cascade can reach, so a missing user is Unauthorized.
func activeUser(ctx context.Context, users repositories.UserRepository, id primitive.ObjectID) (*models.User, error) {
	user, err := users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.NewUnauthorizedError("Account no longer exists")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}
