package services

import (
	"context"
	"sync"
	"testing"

	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/anonto42/snapshare/backend/internal/repositories"
	"github.com/anonto42/snapshare/backend/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestLikeToggler_Toggle(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	toggler := NewLikeToggler(store, store, store, zap.NewNop())

	author := seedUser(t, store, "author")
	fan := seedUser(t, store, "fan")
	post := seedPost(t, store, author.ID, "posts/p.jpg")

	res, err := toggler.Toggle(ctx, fan.ID, post.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, &ToggleResult{Liked: true, LikeCount: 1}, res)

	res, err = toggler.Toggle(ctx, fan.ID, post.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, &ToggleResult{Liked: false, LikeCount: 0}, res)

	_, err = store.GetLike(ctx, fan.ID, post.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestLikeToggler_EvenTogglesRestoreState(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	toggler := NewLikeToggler(store, store, store, zap.NewNop())

	author := seedUser(t, store, "author")
	other := seedUser(t, store, "other")
	fan := seedUser(t, store, "fan")
	post := seedPost(t, store, author.ID, "posts/p.jpg")

	_, err := toggler.Toggle(ctx, other.ID, post.ID.Hex())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		_, err := toggler.Toggle(ctx, fan.ID, post.ID.Hex())
		require.NoError(t, err)
	}

	reloaded, err := store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reloaded.LikeCount)
	count, err := store.GetLikesCountByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestLikeToggler_ConcurrentLikesBySameUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	toggler := NewLikeToggler(store, store, store, zap.NewNop())

	author := seedUser(t, store, "author")
	fan := seedUser(t, store, "fan")
	post := seedPost(t, store, author.ID, "posts/p.jpg")

	// every request sees "no like yet" before any insert lands
	start := make(chan struct{})
	var wg sync.WaitGroup
	results := make([]*ToggleResult, 8)
	gate := newGatedLikes(store, start)
	racer := NewLikeToggler(store, store, gate, zap.NewNop())
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := racer.Toggle(ctx, fan.ID, post.ID.Hex())
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	gate.waitAll(len(results))
	close(start)
	wg.Wait()

	for _, res := range results {
		require.NotNil(t, res)
		assert.True(t, res.Liked)
	}
	count, err := store.GetLikesCountByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	reloaded, err := store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reloaded.LikeCount)

	// the next toggle unlikes
	res, err := toggler.Toggle(ctx, fan.ID, post.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, &ToggleResult{Liked: false, LikeCount: 0}, res)
}

func TestLikeToggler_ConcurrentUnlikesBySameUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	toggler := NewLikeToggler(store, store, store, zap.NewNop())

	author := seedUser(t, store, "author")
	fan := seedUser(t, store, "fan")
	post := seedPost(t, store, author.ID, "posts/p.jpg")
	_, err := toggler.Toggle(ctx, fan.ID, post.ID.Hex())
	require.NoError(t, err)

	start := make(chan struct{})
	gate := newGatedLikes(store, start)
	racer := NewLikeToggler(store, store, gate, zap.NewNop())
	var wg sync.WaitGroup
	results := make([]*ToggleResult, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := racer.Toggle(ctx, fan.ID, post.ID.Hex())
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	gate.waitAll(len(results))
	close(start)
	wg.Wait()

	for _, res := range results {
		require.NotNil(t, res)
		assert.False(t, res.Liked)
	}
	reloaded, err := store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), reloaded.LikeCount)
}

func TestLikeToggler_Errors(t *testing.T) {
	store := memory.NewStore()
	toggler := NewLikeToggler(store, store, store, zap.NewNop())
	fan := seedUser(t, store, "fan")

	tests := []struct {
		name   string
		postID string
		code   string
	}{
		{"empty post id", "", models.CodeValidation},
		{"malformed post id", "xyz", models.CodeValidation},
		{"missing post", primitive.NewObjectID().Hex(), models.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := toggler.Toggle(context.Background(), fan.ID, tt.postID)
			assert.True(t, models.HasCode(err, tt.code), "got %v", err)
		})
	}
}

// gatedLikes holds every GetLike caller until all have arrived, so that each
// one decides to insert
type gatedLikes struct {
	*memory.Store
	start   chan struct{}
	mu      sync.Mutex
	arrived int
	cond    *sync.Cond
}

func newGatedLikes(store *memory.Store, start chan struct{}) *gatedLikes {
	g := &gatedLikes{Store: store, start: start}
	g.cond = sync.NewCond(&g.mu)
	return g
}

func (g *gatedLikes) GetLike(ctx context.Context, userID, postID primitive.ObjectID) (*models.Like, error) {
	like, err := g.Store.GetLike(ctx, userID, postID)
	g.mu.Lock()
	g.arrived++
	g.cond.Broadcast()
	g.mu.Unlock()
	<-g.start
	return like, err
}

func (g *gatedLikes) waitAll(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for g.arrived < n {
		g.cond.Wait()
	}
}
