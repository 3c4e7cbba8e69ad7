package repositories

import (
	"context"
	"testing"

	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func duplicateKeyResponse() bson.D {
	return mtest.CreateWriteErrorsResponse(mtest.WriteError{
		Index:   0,
		Code:    11000,
		Message: "E11000 duplicate key error collection: snapshare.likes index: user_id_1_post_id_1",
	})
}

func TestMongoLikeRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	userID, postID := primitive.NewObjectID(), primitive.NewObjectID()

	mt.Run("create like", func(mt *mtest.T) {
		repo := NewMongoLikeRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		like := &models.Like{UserID: userID, PostID: postID}
		require.NoError(mt, repo.CreateLike(ctx, like))
		assert.False(mt, like.ID.IsZero())
		assert.False(mt, like.CreatedAt.IsZero())
	})

	mt.Run("duplicate like maps to ErrDuplicate", func(mt *mtest.T) {
		repo := NewMongoLikeRepository(mt.DB)
		mt.AddMockResponses(duplicateKeyResponse())

		err := repo.CreateLike(ctx, &models.Like{UserID: userID, PostID: postID})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("get missing like", func(mt *mtest.T) {
		repo := NewMongoLikeRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".likes", mtest.FirstBatch))

		_, err := repo.GetLike(ctx, userID, postID)
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("get existing like", func(mt *mtest.T) {
		repo := NewMongoLikeRepository(mt.DB)
		likeID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".likes", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: likeID},
			{Key: "user_id", Value: userID},
			{Key: "post_id", Value: postID},
		}))

		like, err := repo.GetLike(ctx, userID, postID)
		require.NoError(mt, err)
		assert.Equal(mt, likeID, like.ID)
	})

	mt.Run("delete like already removed", func(mt *mtest.T) {
		repo := NewMongoLikeRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		deleted, err := repo.DeleteLike(ctx, primitive.NewObjectID())
		require.NoError(mt, err)
		assert.False(mt, deleted)
	})

	mt.Run("delete like", func(mt *mtest.T) {
		repo := NewMongoLikeRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{{Key: "_id", Value: id}}}))

		deleted, err := repo.DeleteLike(ctx, id)
		require.NoError(mt, err)
		assert.True(mt, deleted)
	})

	mt.Run("bulk delete by posts", func(mt *mtest.T) {
		repo := NewMongoLikeRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 4}))

		n, err := repo.DeleteLikesByPostIDs(ctx, []primitive.ObjectID{postID})
		require.NoError(mt, err)
		assert.Equal(mt, int64(4), n)

		n, err = repo.DeleteLikesByPostIDs(ctx, nil)
		require.NoError(mt, err)
		assert.Zero(mt, n)
	})

	mt.Run("count by post", func(mt *mtest.T) {
		repo := NewMongoLikeRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".likes", mtest.FirstBatch, bson.D{
			{Key: "n", Value: 7},
		}))

		n, err := repo.GetLikesCountByPostID(ctx, postID)
		require.NoError(mt, err)
		assert.Equal(mt, int64(7), n)
	})
}

func TestMongoPostRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	postID := primitive.NewObjectID()

	mt.Run("increment like count returns new value", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: postID},
			{Key: "like_count", Value: int64(3)},
		}}))

		n, err := repo.IncrementLikeCount(ctx, postID, 1)
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), n)
	})

	mt.Run("increment on missing post", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.IncrementLikeCount(ctx, postID, -1)
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("get post", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		owner := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".posts", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: postID},
			{Key: "user_id", Value: owner},
			{Key: "title", Value: "sunset"},
			{Key: "like_count", Value: int64(2)},
		}))

		post, err := repo.GetPostByID(ctx, postID)
		require.NoError(mt, err)
		assert.Equal(mt, owner, post.UserID)
		assert.Equal(mt, "sunset", post.Title)
		assert.Equal(mt, int64(2), post.LikeCount)
	})

	mt.Run("delete reports count", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		n, err := repo.DeletePost(ctx, postID)
		require.NoError(mt, err)
		assert.Zero(mt, n)
	})

	mt.Run("bulk delete by ids", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}))

		n, err := repo.DeletePostsByIDs(ctx, []primitive.ObjectID{postID, primitive.NewObjectID()})
		require.NoError(mt, err)
		assert.Equal(mt, int64(2), n)

		n, err = repo.DeletePostsByIDs(ctx, nil)
		require.NoError(mt, err)
		assert.Zero(mt, n)
	})
}

func TestMongoUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("duplicate username", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(duplicateKeyResponse())

		err := repo.CreateUser(ctx, &models.User{Username: "kree", Email: "kree@test.com"})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("login with no identifiers never queries", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)

		_, err := repo.GetUserByLogin(ctx, "", "")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("batch load by ids", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		ns := mt.DB.Name() + ".users"
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: a}, {Key: "username", Value: "alpha"}},
				bson.D{{Key: "_id", Value: b}, {Key: "username", Value: "beta"}},
			),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch),
		)

		users, err := repo.GetUsersByIDs(ctx, []primitive.ObjectID{a, b})
		require.NoError(mt, err)
		require.Len(mt, users, 2)
		assert.Equal(mt, "beta", users[b].Username)
	})
}

func TestParseID(t *testing.T) {
	_, err := ParseID("not-an-id")
	assert.ErrorIs(t, err, ErrInvalidID)

	id := primitive.NewObjectID()
	got, err := ParseID(id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, got)
}
