package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/anonto42/snapshare/backend/internal/models"
)

// LocalStore keeps images on disk; the router serves the directory under URLPrefix
type LocalStore struct {
	root    string
	baseURL string
}

// URLPrefix is the route local uploads are served from
const URLPrefix = "/uploads"

// NewLocalStore creates the root directory if needed
func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root returns the directory images are written to
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Upload(ctx context.Context, folder string, body io.Reader, contentType string) (*UploadResult, error) {
	name := objectName(folder, extensionFor(contentType))
	path := filepath.Join(s.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &models.ObjectStoreError{Op: "upload", ID: name, Err: err}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, &models.ObjectStoreError{Op: "upload", ID: name, Err: err}
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		_ = os.Remove(path)
		return nil, &models.ObjectStoreError{Op: "upload", ID: name, Err: err}
	}
	if err := f.Close(); err != nil {
		return nil, &models.ObjectStoreError{Op: "upload", ID: name, Err: err}
	}

	return &UploadResult{URL: s.baseURL + URLPrefix + "/" + name, PublicID: name}, nil
}

func (s *LocalStore) Delete(ctx context.Context, publicID string) error {
	clean := filepath.Clean(filepath.FromSlash(publicID))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return &models.ObjectStoreError{Op: "delete", ID: publicID, Err: errors.New("invalid object id")}
	}
	err := os.Remove(filepath.Join(s.root, clean))
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return &models.ObjectStoreError{Op: "delete", ID: publicID, Err: err}
}
