package services_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"proshop/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadService_UploadImage(t *testing.T) {
	ctx := context.Background()
	disk := new(MockDisk)
	service := services.NewUploadService(disk)
	data := pngBytes(t, 10, 10)

	disk.On("Upload", ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "image-") && strings.HasSuffix(key, ".png")
	}), "image/png", data).Return("/uploads/image-x.png", nil).Once()

	url, err := service.UploadImage(ctx, "Photo.PNG", "image/png", data)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/image-x.png", url)
	disk.AssertExpectations(t)
}

func TestUploadService_ResizesWideImages(t *testing.T) {
	ctx := context.Background()
	disk := new(MockDisk)
	service := services.NewUploadService(disk)
	data := pngBytes(t, services.MaxImageWidth+300, 20)

	disk.On("Upload", ctx, mock.Anything, "image/png", mock.MatchedBy(func(out []byte) bool {
		img, _, err := image.Decode(bytes.NewReader(out))
		return err == nil && img.Bounds().Dx() == services.MaxImageWidth
	})).Return("/uploads/wide.png", nil).Once()

	_, err := service.UploadImage(ctx, "wide.png", "image/png", data)
	require.NoError(t, err)
	disk.AssertExpectations(t)
}

func TestUploadService_RejectsNonImages(t *testing.T) {
	ctx := context.Background()
	disk := new(MockDisk)
	service := services.NewUploadService(disk)

	_, err := service.UploadImage(ctx, "notes.txt", "text/plain", []byte("hello"))
	assert.Equal(t, 400, statusOf(err))

	_, err = service.UploadImage(ctx, "fake.png", "image/png", []byte("not really a png"))
	assert.Equal(t, 400, statusOf(err))

	_, err = service.UploadImage(ctx, "mismatch.png", "image/gif", pngBytes(t, 2, 2))
	assert.Equal(t, 400, statusOf(err))

	disk.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
