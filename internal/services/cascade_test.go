package services

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/anonto42/snapshare/backend/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newCascade(store *memory.Store, objects *objectStoreStub) *CascadeDeleter {
	return NewCascadeDeleter(store, store, store, store, store, objects, zap.NewNop())
}

func TestCascadeDeleter_DeleteUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	objects := &objectStoreStub{}
	deleter := newCascade(store, objects)

	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	carol := seedUser(t, store, "carol")
	_, err := store.UpdateUser(ctx, alice.ID, bson.M{"avatar_public_id": "avatars/alice.jpg"})
	require.NoError(t, err)

	var alicePosts []*models.Post
	for _, img := range []string{"posts/a1.jpg", "posts/a2.jpg", "posts/a3.jpg"} {
		alicePosts = append(alicePosts, seedPost(t, store, alice.ID, img))
	}
	bobPost := seedPost(t, store, bob.ID, "posts/b1.jpg")

	// others like alice's posts, alice likes and comments on bob's
	require.NoError(t, store.CreateLike(ctx, &models.Like{UserID: bob.ID, PostID: alicePosts[0].ID}))
	require.NoError(t, store.CreateLike(ctx, &models.Like{UserID: carol.ID, PostID: alicePosts[1].ID}))
	require.NoError(t, store.CreateLike(ctx, &models.Like{UserID: alice.ID, PostID: bobPost.ID}))
	require.NoError(t, store.CreateComment(ctx, &models.Comment{UserID: bob.ID, PostID: alicePosts[2].ID, Text: "nice"}))
	require.NoError(t, store.CreateComment(ctx, &models.Comment{UserID: alice.ID, PostID: bobPost.ID, Text: "hey"}))
	require.NoError(t, store.CreateComment(ctx, &models.Comment{UserID: carol.ID, PostID: bobPost.ID, Text: "yo"}))
	require.NoError(t, store.CreateFollow(ctx, &models.Follow{FollowerID: bob.ID, FollowingID: alice.ID}))
	require.NoError(t, store.CreateFollow(ctx, &models.Follow{FollowerID: alice.ID, FollowingID: carol.ID}))
	require.NoError(t, store.CreateFollow(ctx, &models.Follow{FollowerID: bob.ID, FollowingID: carol.ID}))

	require.NoError(t, deleter.DeleteUser(ctx, alice.ID))

	users, posts, likes, comments, follows := store.Counts()
	assert.Equal(t, 2, users)
	assert.Equal(t, 1, posts)
	assert.Equal(t, 0, likes)
	assert.Equal(t, 1, comments)
	assert.Equal(t, 1, follows)

	_, err = store.GetUserByID(ctx, alice.ID)
	assert.Error(t, err)
	remaining, err := store.GetCommentsByPostID(ctx, bobPost.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, carol.ID, remaining[0].UserID)

	assert.ElementsMatch(t,
		[]string{"avatars/alice.jpg", "posts/a1.jpg", "posts/a2.jpg", "posts/a3.jpg"},
		objects.deleted)
}

func TestCascadeDeleter_DeleteUser_MissingIsNoop(t *testing.T) {
	store := memory.NewStore()
	deleter := newCascade(store, &objectStoreStub{})

	require.NoError(t, deleter.DeleteUser(context.Background(), primitive.NewObjectID()))

	u := seedUser(t, store, "dave")
	require.NoError(t, deleter.DeleteUser(context.Background(), u.ID))
	require.NoError(t, deleter.DeleteUser(context.Background(), u.ID))
}

func TestCascadeDeleter_DeleteUser_ObjectStoreFailureSwallowed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	objects := &objectStoreStub{failDelete: true}
	deleter := newCascade(store, objects)

	u := seedUser(t, store, "erin")
	seedPost(t, store, u.ID, "posts/e1.jpg")

	require.NoError(t, deleter.DeleteUser(ctx, u.ID))
	users, posts, _, _, _ := store.Counts()
	assert.Zero(t, users)
	assert.Zero(t, posts)
	assert.Equal(t, []string{"posts/e1.jpg"}, objects.deleted)
}

func TestCascadeDeleter_DeleteUser_StoreFailureAborts(t *testing.T) {
	store := memory.NewStore()
	deleter := newCascade(store, &objectStoreStub{})
	u := seedUser(t, store, "frank")
	seedPost(t, store, u.ID, "posts/f1.jpg")

	store.Fail = errors.New("connection reset")
	err := deleter.DeleteUser(context.Background(), u.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.Fail)

	store.Fail = nil
	users, posts, _, _, _ := store.Counts()
	assert.Equal(t, 1, users)
	assert.Equal(t, 1, posts)
}

func TestCascadeDeleter_DeletePost(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	objects := &objectStoreStub{}
	deleter := newCascade(store, objects)

	owner := seedUser(t, store, "grace")
	post := seedPost(t, store, owner.ID, "posts/g1.jpg")
	other := seedPost(t, store, owner.ID, "posts/g2.jpg")

	for i := 0; i < 4; i++ {
		liker := seedUser(t, store, "liker"+string(rune('a'+i)))
		require.NoError(t, store.CreateLike(ctx, &models.Like{UserID: liker.ID, PostID: post.ID}))
	}
	require.NoError(t, store.CreateLike(ctx, &models.Like{UserID: owner.ID, PostID: other.ID}))
	for i := 0; i < 2; i++ {
		require.NoError(t, store.CreateComment(ctx, &models.Comment{UserID: owner.ID, PostID: post.ID, Text: "c"}))
	}

	require.NoError(t, deleter.DeletePost(ctx, owner.ID, post.ID.Hex()))

	_, posts, likes, comments, _ := store.Counts()
	assert.Equal(t, 1, posts)
	assert.Equal(t, 1, likes)
	assert.Equal(t, 0, comments)
	assert.Equal(t, []string{"posts/g1.jpg"}, objects.deleted)

	err := deleter.DeletePost(ctx, owner.ID, post.ID.Hex())
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestCascadeDeleter_DeletePost_Errors(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	deleter := newCascade(store, &objectStoreStub{})
	owner := seedUser(t, store, "heidi")
	intruder := seedUser(t, store, "ivan")
	post := seedPost(t, store, owner.ID, "posts/h1.jpg")

	tests := []struct {
		name   string
		actor  primitive.ObjectID
		postID string
		code   string
	}{
		{"invalid id", owner.ID, "not-an-id", models.CodeValidation},
		{"missing post", owner.ID, primitive.NewObjectID().Hex(), models.CodeNotFound},
		{"not the owner", intruder.ID, post.ID.Hex(), models.CodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := deleter.DeletePost(ctx, tt.actor, tt.postID)
			assert.True(t, models.HasCode(err, tt.code), "got %v", err)
		})
	}

	_, posts, _, _, _ := store.Counts()
	assert.Equal(t, 1, posts)
}

func TestCascadeDeleter_DeletePost_ObjectStoreFailureSwallowed(t *testing.T) {
	store := memory.NewStore()
	deleter := newCascade(store, &objectStoreStub{failDelete: true})
	owner := seedUser(t, store, "judy")
	post := seedPost(t, store, owner.ID, "posts/j1.jpg")

	require.NoError(t, deleter.DeletePost(context.Background(), owner.ID, post.ID.Hex()))
	_, posts, _, _, _ := store.Counts()
	assert.Zero(t, posts)
}

// postsAddedMidCascade inserts a liked, commented post for the user right
// after the first listing, as a concurrent create would
type postsAddedMidCascade struct {
	*memory.Store
	t      *testing.T
	liker  primitive.ObjectID
	listed int
}

func (p *postsAddedMidCascade) GetPostsByUserID(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Post, error) {
	posts, err := p.Store.GetPostsByUserID(ctx, userID, skip, limit)
	p.listed++
	if p.listed == 1 {
		late := seedPost(p.t, p.Store, userID, "posts/late.jpg")
		require.NoError(p.t, p.Store.CreateLike(ctx, &models.Like{UserID: p.liker, PostID: late.ID}))
		require.NoError(p.t, p.Store.CreateComment(ctx, &models.Comment{UserID: p.liker, PostID: late.ID, Text: "late"}))
	}
	return posts, err
}

func TestCascadeDeleter_DeleteUser_PostCreatedDuringCascade(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	objects := &objectStoreStub{}
	kate := seedUser(t, store, "kate")
	leo := seedUser(t, store, "leo")
	seedPost(t, store, kate.ID, "posts/k1.jpg")

	posts := &postsAddedMidCascade{Store: store, t: t, liker: leo.ID}
	deleter := NewCascadeDeleter(store, posts, store, store, store, objects, zap.NewNop())

	require.NoError(t, deleter.DeleteUser(ctx, kate.ID))

	users, postCount, likes, comments, _ := store.Counts()
	assert.Equal(t, 1, users)
	assert.Zero(t, postCount)
	assert.Zero(t, likes)
	assert.Zero(t, comments)
	assert.ElementsMatch(t, []string{"posts/k1.jpg", "posts/late.jpg"}, objects.deleted)
	assert.Equal(t, 3, posts.listed)
}
