package repositories

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when a lookup or conditional write matched nothing
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a unique index rejected a write
	ErrDuplicate = errors.New("duplicate key")
	// ErrInvalidID is returned when a hex identifier cannot be parsed
	ErrInvalidID = errors.New("invalid id format")
)

// ParseID converts a hex string into an ObjectID
func ParseID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return objID, nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	}
	return err
}
