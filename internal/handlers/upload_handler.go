package handlers

import (
	"io"

	"proshop/internal/errs"
	"proshop/internal/middleware"
	"proshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UploadHandler handles product image uploads.
type UploadHandler struct {
	service *services.UploadService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(service *services.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

// RegisterRoutes registers the upload route. Only admins edit products, so only admins upload.
func (h *UploadHandler) RegisterRoutes(router fiber.Router, protect middleware.Guard) {
	router.Post("/upload", middleware.Guarded(h.HandleUpload, protect, middleware.Admin))
}

// HandleUpload stores the multipart "image" file.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return &errs.Error{Status: fiber.StatusBadRequest, Message: "No image uploaded", Err: err}
	}
	f, err := fh.Open()
	if err != nil {
		return errs.Internal(err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return errs.Internal(err)
	}

	url, err := h.service.UploadImage(c.UserContext(), fh.Filename, fh.Header.Get(fiber.HeaderContentType), data)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Image uploaded successfully",
		"image":   url,
	})
}
