package storage

import (
	"bytes"
	"io"
	"mime/multipart"

	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/gabriel-vasile/mimetype"
)

// MaxImageSize is the upload limit for avatars and post images
const MaxImageSize = 5 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// Image is a validated upload held in memory
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
}

// Reader returns a fresh reader over the image bytes
func (i *Image) Reader() io.Reader {
	return bytes.NewReader(i.Data)
}

// ReadImage loads a multipart file and checks its size and sniffed type.
// The client-supplied Content-Type header is ignored.
func ReadImage(fh *multipart.FileHeader) (*Image, error) {
	if fh.Size > MaxImageSize {
		return nil, models.NewValidationError("Image must be 5MB or smaller")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, models.NewValidationError("Could not read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return nil, models.NewValidationError("Could not read uploaded file")
	}
	return DetectImage(data)
}

// DetectImage validates raw bytes as an allowed image
func DetectImage(data []byte) (*Image, error) {
	if len(data) > MaxImageSize {
		return nil, models.NewValidationError("Image must be 5MB or smaller")
	}
	if len(data) == 0 {
		return nil, models.NewValidationError("Uploaded file is empty")
	}
	mt := mimetype.Detect(data)
	for ct, ext := range allowedImageTypes {
		if mt.Is(ct) {
			return &Image{Data: data, ContentType: ct, Ext: ext}, nil
		}
	}
	return nil, models.NewValidationError("Only jpg, jpeg and png images are allowed")
}
