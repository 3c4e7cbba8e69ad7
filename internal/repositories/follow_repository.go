package repositories

import (
	"context"
	"time"

	"github.com/anonto42/snapshare/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *models.Follow) error
	DeleteFollow(ctx context.Context, followerID, followingID primitive.ObjectID) (bool, error)
	GetFollowers(ctx context.Context, userID primitive.ObjectID) ([]models.Follow, error)
	GetFollowing(ctx context.Context, userID primitive.ObjectID) ([]models.Follow, error)
	DeleteFollowsByUserID(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// MongoFollowRepository implements FollowRepository for MongoDB
type MongoFollowRepository struct {
	collection *mongo.Collection
}

// NewMongoFollowRepository creates a new MongoFollowRepository
func NewMongoFollowRepository(db *mongo.Database) *MongoFollowRepository {
	return &MongoFollowRepository{collection: db.Collection(FollowsCollection)}
}

// CreateFollow inserts a follow edge; an existing edge yields ErrDuplicate
func (r *MongoFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	follow.ID = primitive.NewObjectID()
	follow.CreatedAt = time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, follow)
	return translate(err)
}

// DeleteFollow removes the edge with find-and-delete; false means there was no edge
func (r *MongoFollowRepository) DeleteFollow(ctx context.Context, followerID, followingID primitive.ObjectID) (bool, error) {
	err := r.collection.FindOneAndDelete(ctx, bson.M{"follower_id": followerID, "following_id": followingID}).Err()
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *MongoFollowRepository) GetFollowers(ctx context.Context, userID primitive.ObjectID) ([]models.Follow, error) {
	return r.find(ctx, bson.M{"following_id": userID})
}

func (r *MongoFollowRepository) GetFollowing(ctx context.Context, userID primitive.ObjectID) ([]models.Follow, error) {
	return r.find(ctx, bson.M{"follower_id": userID})
}

// DeleteFollowsByUserID removes every edge where the user is either endpoint
func (r *MongoFollowRepository) DeleteFollowsByUserID(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{"follower_id": userID},
		bson.M{"following_id": userID},
	}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoFollowRepository) find(ctx context.Context, filter bson.M) ([]models.Follow, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	follows := []models.Follow{}
	if err = cursor.All(ctx, &follows); err != nil {
		return nil, err
	}
	return follows, nil
}
