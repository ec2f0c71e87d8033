package services

import (
	"bytes"
	"context"
	"image"
	"path/filepath"
	"strings"

	"proshop/internal/errs"
	"proshop/internal/storage"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // registers the webp decoder with image.Decode
)

// MaxImageWidth bounds the width of stored product images.
const MaxImageWidth = 1200

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// UploadService validates product images and stores them.
type UploadService struct {
	disk storage.Disk
}

// NewUploadService creates a new UploadService.
func NewUploadService(disk storage.Disk) *UploadService {
	return &UploadService{disk: disk}
}

// UploadImage checks that data is an image of an accepted type, narrows it to
// MaxImageWidth and stores it under a fresh name. It returns the public path of the file.
func (s *UploadService) UploadImage(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	mimeType, ok := imageTypes[ext]
	if !ok {
		return "", errs.BadRequest("Images only! (jpg, jpeg, png, webp)")
	}
	if contentType != "" && contentType != "application/octet-stream" && contentType != mimeType {
		return "", errs.BadRequest("Images only! (jpg, jpeg, png, webp)")
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", errs.BadRequest("Uploaded file is not a valid image")
	}

	out := data
	if img.Bounds().Dx() > MaxImageWidth {
		if format, err := imaging.FormatFromExtension(ext); err == nil {
			resized := imaging.Resize(img, MaxImageWidth, 0, imaging.Lanczos)
			var buf bytes.Buffer
			if err := imaging.Encode(&buf, resized, format); err != nil {
				return "", errs.Internal(err)
			}
			out = buf.Bytes()
		}
	}

	key := "image-" + uuid.New().String() + ext
	url, err := s.disk.Upload(ctx, key, mimeType, out)
	if err != nil {
		return "", errs.Internal(err)
	}
	return url, nil
}
