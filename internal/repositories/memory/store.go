// Package memory is an in-process implementation of the Mongo repositories
// with the same unique index semantics. It backs service and handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/anonto42/snapshare/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store implements the user, post, like, comment and follow repositories
type Store struct {
	mu       sync.Mutex
	users    map[primitive.ObjectID]models.User
	posts    map[primitive.ObjectID]models.Post
	likes    map[primitive.ObjectID]models.Like
	comments map[primitive.ObjectID]models.Comment
	follows  map[primitive.ObjectID]models.Follow

	// Fail, when set, is returned by every write
	Fail error
}

var (
	_ repositories.UserRepository    = (*Store)(nil)
	_ repositories.PostRepository    = (*Store)(nil)
	_ repositories.LikeRepository    = (*Store)(nil)
	_ repositories.CommentRepository = (*Store)(nil)
	_ repositories.FollowRepository  = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		users:    map[primitive.ObjectID]models.User{},
		posts:    map[primitive.ObjectID]models.Post{},
		likes:    map[primitive.ObjectID]models.Like{},
		comments: map[primitive.ObjectID]models.Comment{},
		follows:  map[primitive.ObjectID]models.Follow{},
	}
}

// Counts returns the number of users, posts, likes, comments and follows
func (s *Store) Counts() (users, posts, likes, comments, follows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), len(s.posts), len(s.likes), len(s.comments), len(s.follows)
}

// ---- users ----

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByLogin(_ context.Context, username, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[primitive.ObjectID]*models.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = &u
		}
	}
	return out, nil
}

func (s *Store) UpdateUser(_ context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	u, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if name, ok := fields["username"].(string); ok {
		for otherID, other := range s.users {
			if otherID != id && other.Username == name {
				return nil, repositories.ErrDuplicate
			}
		}
	}
	for k, v := range fields {
		str, _ := v.(string)
		switch k {
		case "username":
			u.Username = str
		case "display_name":
			u.DisplayName = str
		case "bio":
			u.Bio = str
		case "website":
			u.Website = str
		case "avatar_url":
			u.AvatarURL = str
		case "avatar_public_id":
			u.AvatarPublicID = str
		}
	}
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return &u, nil
}

func (s *Store) DeleteUser(_ context.Context, id primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}
	if _, ok := s.users[id]; !ok {
		return 0, nil
	}
	delete(s.users, id)
	return 1, nil
}

func (s *Store) ListUsers(_ context.Context, search string, skip, limit int64) ([]models.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	needle := strings.ToLower(search)
	matched := []models.User{}
	for _, u := range s.users {
		if needle == "" ||
			strings.Contains(strings.ToLower(u.Username), needle) ||
			strings.Contains(strings.ToLower(u.DisplayName), needle) ||
			strings.Contains(strings.ToLower(u.Bio), needle) {
			matched = append(matched, u)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return newer(matched[i].ID, matched[j].ID) })
	return page(matched, skip, limit), int64(len(matched)), nil
}

// ---- posts ----

func (s *Store) CreatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	now := time.Now().UTC()
	post.ID = primitive.NewObjectID()
	post.LikeCount = 0
	post.CreatedAt = now
	post.UpdatedAt = now
	s.posts[post.ID] = *post
	return nil
}

func (s *Store) GetPostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (s *Store) GetPostsByUserID(_ context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	posts := []models.Post{}
	for _, p := range s.posts {
		if p.UserID == userID {
			posts = append(posts, p)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return newer(posts[i].ID, posts[j].ID) })
	return page(posts, skip, limit), nil
}

func (s *Store) GetAllPosts(_ context.Context, skip, limit int64) ([]models.Post, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	posts := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool { return newer(posts[i].ID, posts[j].ID) })
	return page(posts, skip, limit), int64(len(posts)), nil
}

func (s *Store) DeletePost(_ context.Context, id primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}
	if _, ok := s.posts[id]; !ok {
		return 0, nil
	}
	delete(s.posts, id)
	return 1, nil
}

func (s *Store) DeletePostsByIDs(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}
	var n int64
	for id := range idSet(ids) {
		if _, ok := s.posts[id]; ok {
			delete(s.posts, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) IncrementLikeCount(_ context.Context, id primitive.ObjectID, delta int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	p.LikeCount += int64(delta)
	s.posts[id] = p
	return p.LikeCount, nil
}

// ---- likes ----

func (s *Store) CreateLike(_ context.Context, like *models.Like) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	for _, l := range s.likes {
		if l.UserID == like.UserID && l.PostID == like.PostID {
			return repositories.ErrDuplicate
		}
	}
	like.ID = primitive.NewObjectID()
	like.CreatedAt = time.Now().UTC()
	s.likes[like.ID] = *like
	return nil
}

func (s *Store) GetLike(_ context.Context, userID, postID primitive.ObjectID) (*models.Like, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.likes {
		if l.UserID == userID && l.PostID == postID {
			return &l, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) DeleteLike(_ context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return false, s.Fail
	}
	if _, ok := s.likes[id]; !ok {
		return false, nil
	}
	delete(s.likes, id)
	return true, nil
}

func (s *Store) DeleteLikesByPostIDs(_ context.Context, postIDs []primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}
	ids := idSet(postIDs)
	var n int64
	for id, l := range s.likes {
		if ids[l.PostID] {
			delete(s.likes, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteLikesByUserID(_ context.Context, userID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}
	var n int64
	for id, l := range s.likes {
		if l.UserID == userID {
			delete(s.likes, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) GetLikesCountByPostID(_ context.Context, postID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, l := range s.likes {
		if l.PostID == postID {
			n++
		}
	}
	return n, nil
}

// ---- comments ----

func (s *Store) CreateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	now := time.Now().UTC()
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	s.comments[comment.ID] = *comment
	return nil
}

func (s *Store) GetCommentByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (s *Store) GetCommentsByPostID(_ context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comments := []models.Comment{}
	for _, c := range s.comments {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return newer(comments[i].ID, comments[j].ID) })
	return comments, nil
}

func (s *Store) DeleteComment(_ context.Context, id primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}
	if _, ok := s.comments[id]; !ok {
		return 0, nil
	}
	delete(s.comments, id)
	return 1, nil
}

func (s *Store) DeleteCommentsByPostIDs(_ context.Context, postIDs []primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}
	ids := idSet(postIDs)
	var n int64
	for id, c := range s.comments {
		if ids[c.PostID] {
			delete(s.comments, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteCommentsByUserID(_ context.Context, userID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}
	var n int64
	for id, c := range s.comments {
		if c.UserID == userID {
			delete(s.comments, id)
			n++
		}
	}
	return n, nil
}

// ---- follows ----

func (s *Store) CreateFollow(_ context.Context, follow *models.Follow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	for _, f := range s.follows {
		if f.FollowerID == follow.FollowerID && f.FollowingID == follow.FollowingID {
			return repositories.ErrDuplicate
		}
	}
	follow.ID = primitive.NewObjectID()
	follow.CreatedAt = time.Now().UTC()
	s.follows[follow.ID] = *follow
	return nil
}

func (s *Store) DeleteFollow(_ context.Context, followerID, followingID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return false, s.Fail
	}
	for id, f := range s.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			delete(s.follows, id)
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) GetFollowers(_ context.Context, userID primitive.ObjectID) ([]models.Follow, error) {
	return s.findFollows(func(f models.Follow) bool { return f.FollowingID == userID }), nil
}

func (s *Store) GetFollowing(_ context.Context, userID primitive.ObjectID) ([]models.Follow, error) {
	return s.findFollows(func(f models.Follow) bool { return f.FollowerID == userID }), nil
}

func (s *Store) DeleteFollowsByUserID(_ context.Context, userID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}
	var n int64
	for id, f := range s.follows {
		if f.FollowerID == userID || f.FollowingID == userID {
			delete(s.follows, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) findFollows(match func(models.Follow) bool) []models.Follow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Follow{}
	for _, f := range s.follows {
		if match(f) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i].ID, out[j].ID) })
	return out
}

// ObjectIDs embed a timestamp and a counter, so hex order is creation order
func newer(a, b primitive.ObjectID) bool {
	return a.Hex() > b.Hex()
}

func page[T any](items []T, skip, limit int64) []T {
	if skip >= int64(len(items)) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < int64(len(items)) {
		items = items[:limit]
	}
	return items
}

func idSet(ids []primitive.ObjectID) map[primitive.ObjectID]bool {
	set := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
