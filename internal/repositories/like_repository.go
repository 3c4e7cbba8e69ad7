package repositories

import (
	"context"
	"time"

	"github.com/anonto42/snapshare/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	CreateLike(ctx context.Context, like *models.Like) error
	GetLike(ctx context.Context, userID, postID primitive.ObjectID) (*models.Like, error)
	DeleteLike(ctx context.Context, id primitive.ObjectID) (bool, error)
	DeleteLikesByPostIDs(ctx context.Context, postIDs []primitive.ObjectID) (int64, error)
	DeleteLikesByUserID(ctx context.Context, userID primitive.ObjectID) (int64, error)
	GetLikesCountByPostID(ctx context.Context, postID primitive.ObjectID) (int64, error)
}

// MongoLikeRepository implements LikeRepository for MongoDB
type MongoLikeRepository struct {
	collection *mongo.Collection
}

// NewMongoLikeRepository creates a new MongoLikeRepository
func NewMongoLikeRepository(db *mongo.Database) *MongoLikeRepository {
	return &MongoLikeRepository{collection: db.Collection(LikesCollection)}
}

// CreateLike inserts a like. A second like for the same (user, post) is
// rejected by the unique index and reported as ErrDuplicate.
func (r *MongoLikeRepository) CreateLike(ctx context.Context, like *models.Like) error {
	like.ID = primitive.NewObjectID()
	like.CreatedAt = time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, like)
	return translate(err)
}

// GetLike retrieves the like for a (user, post) pair
func (r *MongoLikeRepository) GetLike(ctx context.Context, userID, postID primitive.ObjectID) (*models.Like, error) {
	var like models.Like
	if err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "post_id": postID}).Decode(&like); err != nil {
		return nil, translate(err)
	}
	return &like, nil
}

// DeleteLike removes a like by ID with find-and-delete. It returns false when
// another request already removed it.
func (r *MongoLikeRepository) DeleteLike(ctx context.Context, id primitive.ObjectID) (bool, error) {
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Err()
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// DeleteLikesByPostIDs removes every like referencing any of the posts
func (r *MongoLikeRepository) DeleteLikesByPostIDs(ctx context.Context, postIDs []primitive.ObjectID) (int64, error) {
	if len(postIDs) == 0 {
		return 0, nil
	}
	res, err := r.collection.DeleteMany(ctx, bson.M{"post_id": bson.M{"$in": postIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteLikesByUserID removes every like the user made
func (r *MongoLikeRepository) DeleteLikesByUserID(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// GetLikesCountByPostID counts likes from the Like collection itself; use it
// when the cached Post.LikeCount may have drifted.
func (r *MongoLikeRepository) GetLikesCountByPostID(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"post_id": postID})
}
