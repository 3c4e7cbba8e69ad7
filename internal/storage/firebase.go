package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	gcs "cloud.google.com/go/storage"
	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/google/uuid"
)

// FirebaseStore stores images in a Firebase (Cloud Storage) bucket
type FirebaseStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

// NewFirebaseStore wraps a bucket handle obtained from the Firebase app
func NewFirebaseStore(bucket *gcs.BucketHandle, bucketName string) *FirebaseStore {
	return &FirebaseStore{bucket: bucket, bucketName: bucketName}
}

// Upload writes the object and returns a tokenized download URL
func (s *FirebaseStore) Upload(ctx context.Context, folder string, body io.Reader, contentType string) (*UploadResult, error) {
	name := objectName(folder, extensionFor(contentType))
	token := uuid.NewString()

	w := s.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000"
	w.Metadata = map[string]string{"firebaseStorageDownloadTokens": token}

	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return nil, &models.ObjectStoreError{Op: "upload", ID: name, Err: err}
	}
	if err := w.Close(); err != nil {
		return nil, &models.ObjectStoreError{Op: "upload", ID: name, Err: err}
	}

	return &UploadResult{
		URL:      fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s", s.bucketName, url.PathEscape(name), token),
		PublicID: name,
	}, nil
}

// Delete removes the object; a missing object counts as deleted
func (s *FirebaseStore) Delete(ctx context.Context, publicID string) error {
	err := s.bucket.Object(publicID).Delete(ctx)
	if err == nil || errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return &models.ObjectStoreError{Op: "delete", ID: publicID, Err: err}
}

func extensionFor(contentType string) string {
	if ext, ok := allowedImageTypes[contentType]; ok {
		return ext
	}
	return ""
}
