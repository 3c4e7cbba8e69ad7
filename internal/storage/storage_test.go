package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestDetectImage(t *testing.T) {
	img, err := DetectImage(pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, ".png", img.Ext)

	img, err = DetectImage([]byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.ContentType)

	_, err = DetectImage([]byte("plain text, not an image"))
	assert.True(t, models.HasCode(err, models.CodeValidation))

	_, err = DetectImage(nil)
	assert.True(t, models.HasCode(err, models.CodeValidation))

	_, err = DetectImage(make([]byte, MaxImageSize+1))
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestLocalStore_UploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:8080/")
	require.NoError(t, err)
	ctx := context.Background()

	res, err := store.Upload(ctx, PostFolder, bytes.NewReader(pngHeader), "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.PublicID, "posts/"))
	assert.True(t, strings.HasSuffix(res.PublicID, ".png"))
	assert.Equal(t, "http://localhost:8080/uploads/"+res.PublicID, res.URL)

	onDisk, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(res.PublicID)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, onDisk)

	require.NoError(t, store.Delete(ctx, res.PublicID))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(res.PublicID)))
	assert.True(t, os.IsNotExist(err))

	// already gone
	assert.NoError(t, store.Delete(ctx, res.PublicID))
}

func TestLocalStore_DeleteRejectsEscapes(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "")
	require.NoError(t, err)

	err = store.Delete(context.Background(), "../outside.png")
	var storeErr *models.ObjectStoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "delete", storeErr.Op)
}
