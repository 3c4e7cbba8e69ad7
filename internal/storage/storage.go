// Package storage holds the image object stores used for avatars and post images.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// Folders images are uploaded into
const (
	AvatarFolder = "avatars"
	PostFolder   = "posts"
)

// UploadResult is what callers persist: a public URL and the identifier to delete by
type UploadResult struct {
	URL      string
	PublicID string
}

// ObjectStore is durable blob storage for uploaded images
type ObjectStore interface {
	Upload(ctx context.Context, folder string, body io.Reader, contentType string) (*UploadResult, error)
	Delete(ctx context.Context, publicID string) error
}

func objectName(folder, ext string) string {
	return fmt.Sprintf("%s/%d-%s%s", folder, time.Now().UnixMilli(), uuid.NewString(), ext)
}
