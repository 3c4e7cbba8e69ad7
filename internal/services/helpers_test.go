package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/anonto42/snapshare/backend/internal/repositories/memory"
	"github.com/anonto42/snapshare/backend/internal/storage"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// objectStoreStub records uploads and deletes; failDelete makes every Delete fail
type objectStoreStub struct {
	mu         sync.Mutex
	uploaded   []string
	deleted    []string
	failUpload bool
	failDelete bool
}

func (s *objectStoreStub) Upload(_ context.Context, folder string, body io.Reader, _ string) (*storage.UploadResult, error) {
	if s.failUpload {
		return nil, errors.New("bucket unavailable")
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := fmt.Sprintf("%s/%d.jpg", folder, len(s.uploaded)+1)
	s.uploaded = append(s.uploaded, id)
	return &storage.UploadResult{URL: "https://cdn.test/" + id, PublicID: id}, nil
}

func (s *objectStoreStub) Delete(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, publicID)
	if s.failDelete {
		return errors.New("bucket unavailable")
	}
	return nil
}

func seedUser(t *testing.T, store *memory.Store, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", DisplayName: username}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func seedPost(t *testing.T, store *memory.Store, owner primitive.ObjectID, imageID string) *models.Post {
	t.Helper()
	p := &models.Post{UserID: owner, Title: "post", ImageURL: "https://cdn.test/" + imageID, ImagePublicID: imageID}
	require.NoError(t, store.CreatePost(context.Background(), p))
	return p
}

func identityOf(u *models.User) models.Identity {
	return models.Identity{UserID: u.ID, Username: u.Username, Email: u.Email}
}

func jpegImage() *storage.Image {
	return &storage.Image{Data: []byte{0xFF, 0xD8, 0xFF, 0xE0}, ContentType: "image/jpeg", Ext: ".jpg"}
}
